package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{name: "all set", args: []string{
			"-a", "127.0.0.1:9090", "-s", "secret", "-t", "90m", "-r", "0", "--log-level", "debug",
		}, expected: &Config{
			Addr:                  "127.0.0.1:9090",
			SecretKey:             "secret",
			TokenValidityDuration: 90 * time.Minute,
			RateLimit:             0,
			LogLevel:              "debug",
		}},
		{name: "nothing set keeps config", args: nil, expected: &Config{}},
		{name: "bad duration", args: []string{"-t", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			BindFlags(fs)
			err := fs.Parse(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			cfg := &Config{}
			require.NoError(t, parseFlags(cfg, fs))
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
