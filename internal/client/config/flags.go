package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	FlagConfig         = "config"
	FlagEnvFile        = "env-file"
	FlagAPIURL         = "api-url"
	FlagStoragePath    = "storage"
	FlagPollInterval   = "poll-interval"
	FlagSearchDebounce = "search-debounce"
	FlagPageSize       = "page-size"
	FlagRequestTimeout = "request-timeout"
	FlagRateLimit      = "rate-limit"
	FlagLogLevel       = "log-level"
	FlagLogFile        = "log-file"
)

// BindFlags registers the client flags on fs, normally the persistent
// flags of the root command.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "JSON config file")
	fs.String(FlagEnvFile, ".env", "dotenv file with BACKOFFICE_* variables")
	fs.StringP(FlagAPIURL, "u", d.APIURL, "backend base URL")
	fs.String(FlagStoragePath, d.StoragePath, "local session database")
	fs.Duration(FlagPollInterval, d.PollInterval, "notification poll interval")
	fs.Duration(FlagSearchDebounce, d.SearchDebounce, "search debounce window")
	fs.Int(FlagPageSize, d.PageSize, "rows per page")
	fs.Duration(FlagRequestTimeout, d.RequestTimeout, "timeout of one list fetch")
	fs.Float64(FlagRateLimit, d.RateLimit, "outgoing requests per second (0 disables)")
	fs.String(FlagLogLevel, d.LogLevel, "debug, info, warn or error")
	fs.String(FlagLogFile, d.LogFile, "log file (rotated); empty logs to stderr")
}

// parseFlags copies every flag the user actually set into cfg.
func parseFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		if e := apply(); e != nil {
			err = fmt.Errorf("flag --%s: %w", name, e)
		}
	}

	set(FlagAPIURL, func() (e error) { cfg.APIURL, e = fs.GetString(FlagAPIURL); return })
	set(FlagStoragePath, func() (e error) { cfg.StoragePath, e = fs.GetString(FlagStoragePath); return })
	set(FlagPollInterval, func() (e error) { cfg.PollInterval, e = fs.GetDuration(FlagPollInterval); return })
	set(FlagSearchDebounce, func() (e error) { cfg.SearchDebounce, e = fs.GetDuration(FlagSearchDebounce); return })
	set(FlagPageSize, func() (e error) { cfg.PageSize, e = fs.GetInt(FlagPageSize); return })
	set(FlagRequestTimeout, func() (e error) { cfg.RequestTimeout, e = fs.GetDuration(FlagRequestTimeout); return })
	set(FlagRateLimit, func() (e error) { cfg.RateLimit, e = fs.GetFloat64(FlagRateLimit); return })
	set(FlagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagLogFile, func() (e error) { cfg.LogFile, e = fs.GetString(FlagLogFile); return })

	return err
}
