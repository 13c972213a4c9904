package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ncomconv/internal/batch"
)

// DefaultThreshold is the threshold used when none is configured.
const DefaultThreshold = batch.DefaultThreshold

const (
	DirectionToGCJ02 = "wgs84-to-gcj02"
	DirectionToWGS84 = "gcj02-to-wgs84"
)

type Config struct {
	Extension string        `yaml:"extension"`
	Threshold float64       `yaml:"threshold"`
	Workers   int           `yaml:"workers"`
	Direction string        `yaml:"direction"`
	Log       LogConfig     `yaml:"log"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Ledger    LedgerConfig  `yaml:"ledger"`
}

type LogConfig struct {
	// Dir receives one log_<timestamp>.txt per run. Empty disables the file
	// sink.
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	// Textfile is written in Prometheus text format at the end of a run.
	Textfile string `yaml:"textfile"`
}

type LedgerConfig struct {
	Path          string `yaml:"path"`
	SkipUnchanged bool   `yaml:"skip_unchanged"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{Threshold: DefaultThreshold}
	_ = cfg.Normalize()
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	// Keys absent from the file keep their defaults.
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) && unknownFieldsOnly(te) {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(stripLines(te.Errors), "; "))
		}
		return Config{}, err
	}

	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize fills defaults and validates cfg. It is safe to call again after
// command-line overrides.
func (cfg *Config) Normalize() error {
	if cfg.Extension == "" {
		cfg.Extension = ".NCOM"
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}

	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0,1]")
	}

	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be > 0")
	}

	if cfg.Direction == "" {
		cfg.Direction = DirectionToGCJ02
	}
	switch cfg.Direction {
	case DirectionToGCJ02, DirectionToWGS84:
	default:
		return fmt.Errorf("direction must be %q or %q", DirectionToGCJ02, DirectionToWGS84)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}

	if cfg.Ledger.SkipUnchanged && cfg.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required when ledger.skip_unchanged is true")
	}
	return nil
}

func unknownFieldsOnly(te *yaml.TypeError) bool {
	for _, e := range te.Errors {
		if !strings.Contains(e, " not found in type ") {
			return false
		}
	}
	return len(te.Errors) > 0
}

// stripLines drops the "line N: " prefix yaml.v3 puts on each error.
func stripLines(errs []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if strings.HasPrefix(e, "line ") {
			if i := strings.Index(e, ": "); i >= 0 {
				e = e[i+2:]
			}
		}
		out = append(out, e)
	}
	return out
}
