package config

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 120.0, cfg.Tempo)
	assert.Equal(t, 48000.0, cfg.SampleRate)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 100000, cfg.MaxSteps)
	assert.Empty(t, cfg.DB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero tempo", func(c *Config) { c.Tempo = 0 }, EnvTempo},
		{"nan tempo", func(c *Config) { c.Tempo = math.NaN() }, EnvTempo},
		{"negative sample rate", func(c *Config) { c.SampleRate = -1 }, EnvSampleRate},
		{"bad format", func(c *Config) { c.Format = "yaml" }, EnvFormat},
		{"zero steps", func(c *Config) { c.MaxSteps = 0 }, EnvMaxSteps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateAcceptsJSON(t *testing.T) {
	cfg := Default()
	cfg.Format = "json"
	cfg.DB = "builds.db"
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutEnvironment(t *testing.T) {
	for _, name := range []string{EnvTempo, EnvSampleRate, EnvDB, EnvFormat, EnvMaxSteps} {
		if _, ok := os.LookupEnv(name); ok {
			t.Skipf("%s is set in the environment", name)
		}
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
