package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "hr": true,
}

// extractText returns the visible text of an HTML document, one block per line
func extractText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(n *html.Node, pre bool)
	walk = func(n *html.Node, pre bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			case "pre":
				pre = true
			}
		}

		if n.Type == html.TextNode {
			if pre {
				buf.WriteString(n.Data)
			} else if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, pre)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(doc, false)
	return buf.String(), nil
}
