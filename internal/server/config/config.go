// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Addr: HTTP listen address.
//   - SecretKey: HMAC secret for signing tokens (HS256). Do not use the default outside development.
//   - TokenValidityDuration: lifetime of issued bearer tokens.
//   - RateLimit: requests per minute allowed per client IP; 0 disables the limit.
//   - AdminEmail / AdminPassword: the seeded administrator account.
//   - StaffEmail / StaffPassword: the seeded non-admin account.
type Config struct {
	Addr                  string
	SecretKey             string
	TokenValidityDuration time.Duration
	RateLimit             int
	ShutdownTimeout       time.Duration
	AdminEmail            string
	AdminPassword         string
	StaffEmail            string
	StaffPassword         string
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 12 * time.Hour
	c.RateLimit = 600
	c.ShutdownTimeout = 5 * time.Second
	c.AdminEmail = "admin@backoffice.local"
	c.AdminPassword = "secret"
	c.StaffEmail = "staff@backoffice.local"
	c.StaffPassword = "secret"
	c.LogLevel = "info"
}

// Load builds a Config by applying defaults, then overlaying values from
// the JSON file named by --config and finally the flags set on fs. fs must
// already be parsed and have been prepared with BindFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, _ := fs.GetString(FlagConfig)
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	return cfg, nil
}
