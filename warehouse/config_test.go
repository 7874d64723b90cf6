package warehouse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfig_MappingSources(t *testing.T) {
	p := writeYAML(t, `
database: data/warehouse.db
sources:
  traffic: data/raw/traffic
  accidents:
    raw_dir: data/raw/accidents
    clean_dir: data/clean/accidents
    error_dir: data/error/accidents
report:
  vehicles: 3
watch:
  interval: 5m
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/warehouse.db", cfg.Database)
	traffic, ok := cfg.Sources.Get(CategoryTraffic)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("data/raw/traffic", "clean"), traffic.CleanDir)
	acc, ok := cfg.Sources.Get(CategoryAccidents)
	require.True(t, ok)
	assert.Equal(t, "data/error/accidents", acc.ErrorDir)
	_, ok = cfg.Sources.Get(CategoryVehicles)
	assert.False(t, ok)

	assert.Equal(t, 3, cfg.Report.limit(CategoryVehicles))
	assert.Equal(t, 20, cfg.Report.limit(CategoryAccidents))
	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, DefaultDateStart, cfg.DateTime.Start)
	assert.Equal(t, DefaultKmEnd, cfg.Km.End)
}

func TestLoadConfig_ListSources(t *testing.T) {
	p := writeYAML(t, `
database: w.db
sources:
  - category: vehicles
    raw_dir: raw/v
    clean_dir: clean/v
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	v, ok := cfg.Sources.Get(CategoryVehicles)
	require.True(t, ok)
	assert.Equal(t, "clean/v", v.CleanDir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	p := writeYAML(t, "database: file.db\nsources:\n  traffic: raw\n")
	t.Setenv("ROADWH_DATABASE", "env.db")
	t.Setenv("ROADWH_REPORT_ACCIDENTS", "7")
	t.Setenv("ROADWH_DATETIME_START", "2020-01-01")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database)
	assert.Equal(t, 7, cfg.Report.Accidents)
	assert.Equal(t, "2020-01-01", cfg.DateTime.Start)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Database: "w.db", Sources: Sources{Items: []Source{{Category: CategoryTraffic, RawDir: "raw"}}}}
		c.ApplyDefaults()
		return c
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"no database":        func(c *Config) { c.Database = "" },
		"no sources":         func(c *Config) { c.Sources.Items = nil },
		"unknown category":   func(c *Config) { c.Sources.Items[0].Category = "weather" },
		"duplicate category": func(c *Config) { c.Sources.Items = append(c.Sources.Items, c.Sources.Items[0]) },
		"bad date":           func(c *Config) { c.DateTime.Start = "01/03/2024" },
		"reversed dates":     func(c *Config) { c.DateTime.Start, c.DateTime.End = "2024-02-01", "2024-01-01" },
		"reversed km":        func(c *Config) { c.Km.Start, c.Km.End = 600, 500 },
		"bad log level":      func(c *Config) { c.Logging.Level = "verbose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNewRunner_RejectsInvalidConfig(t *testing.T) {
	cfg := Config{Database: filepath.Join(t.TempDir(), "w.db")}
	cfg.ApplyDefaults()
	_, err := NewRunner(RunnerConfig{Config: cfg})
	assert.ErrorContains(t, err, "sources")
}
