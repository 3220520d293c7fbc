// Package config resolves process defaults from the environment. Command
// line flags take precedence over everything here.
package config

import (
	"fmt"

	"github.com/xyproto/env/v2"
)

// Environment variable names.
const (
	EnvTempo      = "SYNTHGEN_TEMPO"
	EnvSampleRate = "SYNTHGEN_SAMPLE_RATE"
	EnvDB         = "SYNTHGEN_DB"
	EnvFormat     = "SYNTHGEN_FORMAT"
	EnvMaxSteps   = "SYNTHGEN_MAX_STEPS"
)

// Defaults used when a variable is unset or unparseable.
const (
	DefaultTempo      = 120.0
	DefaultSampleRate = 48000.0
	DefaultFormat     = "text"
	DefaultMaxSteps   = 100000
)

// Config holds process-wide defaults.
type Config struct {
	Tempo      float64 `json:"tempo"`       // beats per minute
	SampleRate float64 `json:"sample_rate"` // samples per second
	DB         string  `json:"db"`          // store path; empty disables the store
	Format     string  `json:"format"`      // "text" | "json"
	MaxSteps   int     `json:"max_steps"`   // interpreter step quota
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Tempo:      DefaultTempo,
		SampleRate: DefaultSampleRate,
		Format:     DefaultFormat,
		MaxSteps:   DefaultMaxSteps,
	}
}

// Load reads the environment over the defaults and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Tempo:      env.Float64(EnvTempo, DefaultTempo),
		SampleRate: env.Float64(EnvSampleRate, DefaultSampleRate),
		DB:         env.Str(EnvDB),
		Format:     env.Str(EnvFormat, DefaultFormat),
		MaxSteps:   env.Int(EnvMaxSteps, DefaultMaxSteps),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if !(c.Tempo > 0) {
		return fmt.Errorf("%s: tempo must be positive, got %g", EnvTempo, c.Tempo)
	}
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%s: sample rate must be positive, got %g", EnvSampleRate, c.SampleRate)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("%s: format must be text or json, got %q", EnvFormat, c.Format)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%s: step quota must be positive, got %d", EnvMaxSteps, c.MaxSteps)
	}
	return nil
}
