package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds runtime settings for the back office client.
//
// Fields:
//   - APIURL: base URL of the REST backend; every admin path is appended to it.
//   - StoragePath: sqlite file holding the saved session.
//   - PollInterval: how often the notification poller refetches.
//   - SearchDebounce: quiet period after the last search keystroke.
//   - PageSize: rows per list page.
//   - RequestTimeout: limit for a single list fetch.
//   - RateLimit: outgoing requests per second; 0 disables the limit.
//   - LogLevel / LogFile: logging; an empty LogFile logs to stderr.
type Config struct {
	APIURL         string
	StoragePath    string
	PollInterval   time.Duration
	SearchDebounce time.Duration
	PageSize       int
	RequestTimeout time.Duration
	RateLimit      float64
	LogLevel       string
	LogFile        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:8080"
	c.StoragePath = "backoffice.db"
	c.PollInterval = 10 * time.Second
	c.SearchDebounce = 500 * time.Millisecond
	c.PageSize = 10
	c.RequestTimeout = 15 * time.Second
	c.RateLimit = 10
	c.LogLevel = "info"
	c.LogFile = ""
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an http(s) URL", ErrInvalid, c.APIURL)
	}
	if c.StoragePath == "" {
		return fmt.Errorf("%w: storage_path is empty", ErrInvalid)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalid)
	}
	if c.PollInterval <= 0 || c.RequestTimeout <= 0 || c.SearchDebounce < 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalid)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalid)
	}
	return nil
}

// Load builds a Config from every source in order of precedence. fs must
// already be parsed and have been prepared with BindFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	envFile, _ := fs.GetString(FlagEnvFile)
	if err := parseEnv(cfg, envFile); err != nil {
		return nil, err
	}
	path, _ := fs.GetString(FlagConfig)
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
