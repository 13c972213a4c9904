package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want %+v", cfg, Default())
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "log:\n  dir: ./logs\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Extension != ".NCOM" {
		t.Fatalf("extension=%q want .NCOM", cfg.Extension)
	}
	if cfg.Threshold != DefaultThreshold {
		t.Fatalf("threshold=%v want %v", cfg.Threshold, DefaultThreshold)
	}
	if cfg.Workers != 1 {
		t.Fatalf("workers=%d want 1", cfg.Workers)
	}
	if cfg.Direction != DirectionToGCJ02 {
		t.Fatalf("direction=%q want %q", cfg.Direction, DirectionToGCJ02)
	}
	if cfg.Log.Level != "info" || cfg.Log.Dir != "./logs" {
		t.Fatalf("log=%+v", cfg.Log)
	}
}

func TestLoad_ValuesKept(t *testing.T) {
	body := "extension: ncom\nthreshold: 0.95\nworkers: 4\ndirection: gcj02-to-wgs84\nlog:\n  level: DEBUG\nmetrics:\n  textfile: /tmp/ncom.prom\nledger:\n  path: /tmp/ledger\n  skip_unchanged: true\n"
	cfg, err := Load(writeTempConfig(t, body))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Config{
		Extension: ".ncom",
		Threshold: 0.95,
		Workers:   4,
		Direction: DirectionToWGS84,
		Log:       LogConfig{Level: "debug"},
		Metrics:   MetricsConfig{Textfile: "/tmp/ncom.prom"},
		Ledger:    LedgerConfig{Path: "/tmp/ledger", SkipUnchanged: true},
	}
	if cfg != want {
		t.Fatalf("cfg=%+v want %+v", cfg, want)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "ThresholdAboveOne", body: "threshold: 1.5\n", want: "threshold must be in (0,1]"},
		{name: "ZeroThreshold", body: "threshold: 0\n", want: "threshold must be in (0,1]"},
		{name: "NegativeThreshold", body: "threshold: -0.1\n", want: "threshold must be in (0,1]"},
		{name: "NegativeWorkers", body: "workers: -2\n", want: "workers must be > 0"},
		{name: "BadDirection", body: "direction: bd09\n", want: `direction must be "wgs84-to-gcj02" or "gcj02-to-wgs84"`},
		{name: "BadLevel", body: "log:\n  level: loud\n", want: "log.level must be one of debug, info, warn, error"},
		{name: "SkipNeedsLedger", body: "ledger:\n  skip_unchanged: true\n", want: "ledger.path is required when ledger.skip_unchanged is true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.body))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "threshold: 0.9\nbogus: 1\n")
	_, err := Load(path)
	requireErrEq(t, err, "config contains unknown fields: field bogus not found in type config.Config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNormalize_AfterOverride(t *testing.T) {
	cfg := Default()
	cfg.Threshold = 2
	requireErrEq(t, cfg.Normalize(), "threshold must be in (0,1]")

	cfg = Default()
	cfg.Threshold = 0
	requireErrEq(t, cfg.Normalize(), "threshold must be in (0,1]")
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "ncomconv.example.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Dir != "./logs" || cfg.Threshold != DefaultThreshold || cfg.Direction != DirectionToGCJ02 {
		t.Fatalf("unexpected example config: %+v", cfg)
	}
}
