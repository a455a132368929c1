package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL         = "BACKOFFICE_API_URL"
	EnvStoragePath    = "BACKOFFICE_STORAGE_PATH"
	EnvPollInterval   = "BACKOFFICE_POLL_INTERVAL"
	EnvSearchDebounce = "BACKOFFICE_SEARCH_DEBOUNCE"
	EnvPageSize       = "BACKOFFICE_PAGE_SIZE"
	EnvRequestTimeout = "BACKOFFICE_REQUEST_TIMEOUT"
	EnvRateLimit      = "BACKOFFICE_RATE_LIMIT"
	EnvLogLevel       = "BACKOFFICE_LOG_LEVEL"
	EnvLogFile        = "BACKOFFICE_LOG_FILE"
)

// parseEnv overlays cfg with BACKOFFICE_* variables. Values come from the
// process environment, or from the dotenv file at path when the process
// does not set them. A missing file is not an error.
func parseEnv(cfg *Config, path string) error {
	file := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("read env file %s: %w", path, err)
		default:
			file = m
		}
	}
	get := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	var err error
	str := func(key string, dst *string) {
		if v, ok := get(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok && v != "" && err == nil {
			d, e := time.ParseDuration(v)
			if e != nil {
				err = fmt.Errorf("%s: %w", key, e)
				return
			}
			*dst = d
		}
	}

	str(EnvAPIURL, &cfg.APIURL)
	str(EnvStoragePath, &cfg.StoragePath)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFile, &cfg.LogFile)
	dur(EnvPollInterval, &cfg.PollInterval)
	dur(EnvSearchDebounce, &cfg.SearchDebounce)
	dur(EnvRequestTimeout, &cfg.RequestTimeout)

	if v, ok := get(EnvPageSize); ok && v != "" && err == nil {
		n, e := strconv.Atoi(v)
		if e != nil {
			err = fmt.Errorf("%s: %w", EnvPageSize, e)
		}
		cfg.PageSize = n
	}
	if v, ok := get(EnvRateLimit); ok && v != "" && err == nil {
		f, e := strconv.ParseFloat(v, 64)
		if e != nil {
			err = fmt.Errorf("%s: %w", EnvRateLimit, e)
		}
		cfg.RateLimit = f
	}
	return err
}
