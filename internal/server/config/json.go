package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/backoffice/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "12h" and integer nanoseconds are accepted. Absent fields keep the
// value they had before the file was read.
type JsonConfig struct {
	Addr                  string         `json:"addr"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	RateLimit             *int           `json:"rate_limit"`
	ShutdownTimeout       timex.Duration `json:"shutdown_timeout"`
	AdminEmail            string         `json:"admin_email"`
	AdminPassword         string         `json:"admin_password"`
	StaffEmail            string         `json:"staff_email"`
	StaffPassword         string         `json:"staff_password"`
	LogLevel              string         `json:"log_level"`
}

// parseJson overlays cfg with the file at path. An empty path loads nothing.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.Addr, jc.Addr)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.AdminEmail, jc.AdminEmail)
	setString(&cfg.AdminPassword, jc.AdminPassword)
	setString(&cfg.StaffEmail, jc.StaffEmail)
	setString(&cfg.StaffPassword, jc.StaffPassword)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.TokenValidityDuration.Duration > 0 {
		cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	if jc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	if jc.RateLimit != nil {
		cfg.RateLimit = *jc.RateLimit
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
