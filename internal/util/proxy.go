// Package util holds HTTP helpers shared by the source fetcher.
package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc builds a Transport.Proxy function from configured proxy URLs.
// Unset values fall back to the HTTP_PROXY, HTTPS_PROXY and NO_PROXY
// environment variables. noProxy uses the same syntax as NO_PROXY.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" && noProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.NoProxy = noProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}
