package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/backoffice/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent fields keep the value
// they had before the file was read.
type JsonConfig struct {
	APIURL         string         `json:"api_url"`
	StoragePath    string         `json:"storage_path"`
	PollInterval   timex.Duration `json:"poll_interval"`
	SearchDebounce timex.Duration `json:"search_debounce"`
	PageSize       int            `json:"page_size"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	RateLimit      *float64       `json:"rate_limit"`
	LogLevel       string         `json:"log_level"`
	LogFile        string         `json:"log_file"`
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

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFile, jc.LogFile)
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.SearchDebounce.Duration > 0 {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
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
