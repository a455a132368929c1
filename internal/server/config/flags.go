package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	FlagConfig    = "config"
	FlagAddr      = "addr"
	FlagSecret    = "secret"
	FlagTokenTTL  = "token-ttl"
	FlagRateLimit = "rate-limit"
	FlagLogLevel  = "log-level"
)

// BindFlags registers the backend flags on fs.
//
//	-c, --config string       JSON config file
//	-a, --addr string         listen address
//	-s, --secret string       token signing secret
//	-t, --token-ttl duration  token lifetime
//	-r, --rate-limit int      requests per minute per IP
//	    --log-level string    debug, info, warn or error
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "JSON config file")
	fs.StringP(FlagAddr, "a", d.Addr, "address and port to run server")
	fs.StringP(FlagSecret, "s", d.SecretKey, "secret key")
	fs.DurationP(FlagTokenTTL, "t", d.TokenValidityDuration, "token validity duration")
	fs.IntP(FlagRateLimit, "r", d.RateLimit, "requests per minute per client IP (0 disables)")
	fs.String(FlagLogLevel, d.LogLevel, "log level")
}

// parseFlags copies every flag the user actually set into cfg, so flags
// override the JSON file but unset flags do not reset it to defaults.
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

	set(FlagAddr, func() (e error) { cfg.Addr, e = fs.GetString(FlagAddr); return })
	set(FlagSecret, func() (e error) { cfg.SecretKey, e = fs.GetString(FlagSecret); return })
	set(FlagTokenTTL, func() (e error) { cfg.TokenValidityDuration, e = fs.GetDuration(FlagTokenTTL); return })
	set(FlagRateLimit, func() (e error) { cfg.RateLimit, e = fs.GetInt(FlagRateLimit); return })
	set(FlagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(FlagLogLevel); return })

	return err
}
