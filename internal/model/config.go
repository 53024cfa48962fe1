package model

import "time"

// DefaultSourceURL is the published Luganda translation document
const DefaultSourceURL = "https://ndlvawhavwyvqergzvng.supabase.co/storage/v1/object/public/Luganda%20Quran/Holy%20Quran%20Luganda%20new.txt"

// DefaultInvocation is the Luganda rendering of the opening invocation
const DefaultInvocation = "Mu linnya lya Allah, Omusaasizi ennyo, Ow'ekisa ekingi."

// Config is the complete runtime configuration
type Config struct {
	Source       SourceConfig      `yaml:"source" mapstructure:"source"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Alignment    AlignmentConfig   `yaml:"alignment" mapstructure:"alignment"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig selects the translation document and its grammar dialect
type SourceConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Dialect string `yaml:"dialect" mapstructure:"dialect"` // "auto" or a dialect name
}

// HTTPConfig configures the document fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	Retries       int           `yaml:"retries" mapstructure:"retries"`
}

// RateLimitConfig configures per-host request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AlignmentConfig holds the verse numbering policy.
// UnshiftedChapters must change in lockstep with the canonical verse source.
type AlignmentConfig struct {
	UnshiftedChapters []int  `yaml:"unshifted_chapters" mapstructure:"unshifted_chapters"`
	Invocation        string `yaml:"invocation" mapstructure:"invocation"`
	ProbeChapter      int    `yaml:"probe_chapter" mapstructure:"probe_chapter"` // 0 disables the check
	Strict            bool   `yaml:"strict" mapstructure:"strict"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	ParseWorkers  int `yaml:"parse_workers" mapstructure:"parse_workers"`
	ExportWorkers int `yaml:"export_workers" mapstructure:"export_workers"`
}

// CacheConfig configures the translation cache
type CacheConfig struct {
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:     DefaultSourceURL,
			Dialect: "auto",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Ssuula/0.1 (+https://github.com/ppiankov/ssuula)",
			MaxBodyBytes: 32 << 20,
			Retries:      3,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Alignment: AlignmentConfig{
			UnshiftedChapters: []int{1, 9},
			Invocation:        DefaultInvocation,
			ProbeChapter:      2,
		},
		Concurrency: ConcurrencyConfig{
			ParseWorkers:  4,
			ExportWorkers: 8,
		},
		Cache: CacheConfig{
			LoadTimeout: 2 * time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
