package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Period != "week" || cfg.Alignment != "rolling" || cfg.TopN != 5 {
		t.Fatalf("expected week/rolling/5, got %s/%s/%d", cfg.Period, cfg.Alignment, cfg.TopN)
	}
	if cfg.DurationFallback != 30*time.Minute || cfg.Watch.Interval != time.Minute {
		t.Fatalf("expected duration defaults, got %v and %v", cfg.DurationFallback, cfg.Watch.Interval)
	}
	if !cfg.Now.IsZero() || cfg.IncludeUndatedInLifetime {
		t.Fatalf("expected unpinned clock and dated-only lifetime by default")
	}
	if cfg.Output.Destination != "console" || cfg.Source.Limit != 5000 || cfg.Generator.Seed != 42 {
		t.Fatalf("unexpected section defaults: %+v %+v", cfg.Output, cfg.Source)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodrollup.yaml")
	body := `period: month
alignment: calendar
now: "2024-05-01T12:00:00Z"
duration_fallback: 45m
scoped_reports:
  - kind: restaurant
    id: r1
source:
  type: file
  path: orders.json
database:
  host: db
  user: rollup
  password: "p@ss word"
  dbname: analytics
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("FOODROLLUP_TOP_N", "9")
	t.Setenv("FOODROLLUP_OUTPUT_DESTINATION", "kafka")

	cfg, err := LoadConfigFrom(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Period != "month" || cfg.Alignment != "calendar" {
		t.Fatalf("expected file values, got %s/%s", cfg.Period, cfg.Alignment)
	}
	if want := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC); !cfg.Now.Equal(want) {
		t.Fatalf("expected now %v, got %v", want, cfg.Now)
	}
	if cfg.DurationFallback != 45*time.Minute {
		t.Fatalf("expected 45m fallback, got %v", cfg.DurationFallback)
	}
	if len(cfg.ScopedReports) != 1 || cfg.ScopedReports[0].Kind != "restaurant" || cfg.ScopedReports[0].ID != "r1" {
		t.Fatalf("expected one restaurant scope, got %+v", cfg.ScopedReports)
	}
	if cfg.TopN != 9 || cfg.Output.Destination != "kafka" {
		t.Fatalf("expected env overrides, got top %d and destination %s", cfg.TopN, cfg.Output.Destination)
	}
	if cfg.Database.Port != "5432" {
		t.Fatalf("expected default port to survive a partial section, got %q", cfg.Database.Port)
	}
	if want := "postgres://rollup:p%40ss%20word@db:5432/analytics?sslmode=disable"; cfg.Database.URL() != want {
		t.Fatalf("expected %s, got %s", want, cfg.Database.URL())
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfigFrom(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit config file")
	}
}
