package warehouse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Source categories, in load order.
const (
	CategoryTraffic   = "traffic"
	CategoryAccidents = "accidents"
	CategoryVehicles  = "vehicles"
)

// Categories lists every category in the order facts are loaded. Vehicles
// come last because they reference loaded accidents.
var Categories = []string{CategoryTraffic, CategoryAccidents, CategoryVehicles}

// EnvPrefix prefixes every environment override, e.g. ROADWH_DATABASE.
const EnvPrefix = "ROADWH"

// Source is one category's directories. Workbooks are found under RawDir,
// clean files are written under CleanDir and workbooks that cannot be read
// are moved to ErrorDir when it is set.
type Source struct {
	Category string `yaml:"category" validate:"oneof=traffic accidents vehicles"`
	RawDir   string `yaml:"raw_dir" validate:"required"`
	CleanDir string `yaml:"clean_dir" validate:"required"`
	ErrorDir string `yaml:"error_dir"`
}

// Sources accepts either:
//  1. mapping form (preferred):
//     sources:
//     traffic: data/raw/traffic
//     accidents: {raw_dir: ..., clean_dir: ..., error_dir: ...}
//  2. list form:
//     sources:
//     - category: vehicles
//     raw_dir: ...
//
// A bare directory in mapping form is the raw directory; the clean
// directory then defaults to <dir>/clean.
type Sources struct {
	Items []Source `validate:"dive"`
}

func (s *Sources) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case yaml.MappingNode:
		items := make([]Source, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			category := strings.TrimSpace(value.Content[i].Value)
			v := value.Content[i+1]
			if category == "" {
				continue
			}
			src := Source{Category: category}
			switch v.Kind {
			case yaml.ScalarNode:
				src.RawDir = strings.TrimSpace(v.Value)
			case yaml.MappingNode:
				if err := v.Decode(&src); err != nil {
					return fmt.Errorf("sources.%s: %w", category, err)
				}
				src.Category = category
			default:
				return fmt.Errorf("sources.%s: expected a directory or a mapping", category)
			}
			items = append(items, src)
		}
		s.Items = items
		return nil
	case yaml.SequenceNode:
		var items []Source
		if err := value.Decode(&items); err != nil {
			return err
		}
		s.Items = items
		return nil
	default:
		return fmt.Errorf("sources: expected a mapping or a list")
	}
}

// Get returns the source of category.
func (s Sources) Get(category string) (Source, bool) {
	for _, it := range s.Items {
		if it.Category == category {
			return it, true
		}
	}
	return Source{}, false
}

// DateRange bounds the per-minute date dimension, both days inclusive.
type DateRange struct {
	Start string `yaml:"start" envconfig:"START" validate:"datetime=2006-01-02"`
	End   string `yaml:"end" envconfig:"END" validate:"datetime=2006-01-02"`
}

// KmRange bounds the per-metre road dimension.
type KmRange struct {
	Start float64 `yaml:"start" envconfig:"START" validate:"gte=0"`
	End   float64 `yaml:"end" envconfig:"END" validate:"gtefield=Start"`
}

// ReportConfig caps the rejected rows listed per category in the executive
// report.
type ReportConfig struct {
	Accidents int `yaml:"accidents" envconfig:"ACCIDENTS" validate:"gte=0"`
	Vehicles  int `yaml:"vehicles" envconfig:"VEHICLES" validate:"gte=0"`
	Traffic   int `yaml:"traffic" envconfig:"TRAFFIC" validate:"gte=0"`
}

func (c ReportConfig) limit(category string) int {
	switch category {
	case CategoryAccidents:
		return c.Accidents
	case CategoryVehicles:
		return c.Vehicles
	default:
		return c.Traffic
	}
}

type WatchConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json console"`
}

// Config is the resolved configuration of a warehouse run. It is built once
// by LoadConfig and passed by value to NewRunner.
type Config struct {
	Database    string        `yaml:"database" envconfig:"DATABASE" validate:"required"`
	Sources     Sources       `yaml:"sources" ignored:"true"`
	DateTime    DateRange     `yaml:"datetime" envconfig:"DATETIME"`
	Km          KmRange       `yaml:"km" envconfig:"KM"`
	Report      ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Watch       WatchConfig   `yaml:"watch" envconfig:"WATCH"`
	MetricsFile string        `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Debug       bool          `yaml:"debug" envconfig:"DEBUG"`
	Logging     LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// Defaults of the original road section and date span.
const (
	DefaultDateStart = "2016-01-01"
	DefaultDateEnd   = "2036-12-31"
	DefaultKmStart   = 473.0
	DefaultKmEnd     = 665.0
	DefaultInterval  = 15 * time.Minute
)

// LoadConfig reads path (when non-empty), applies ROADWH_* environment
// overrides and fills defaults. The result is not validated; NewRunner
// validates it after CLI flags have been merged.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.DateTime.Start == "" {
		c.DateTime.Start = DefaultDateStart
	}
	if c.DateTime.End == "" {
		c.DateTime.End = DefaultDateEnd
	}
	if c.Km.Start == 0 && c.Km.End == 0 {
		c.Km.Start, c.Km.End = DefaultKmStart, DefaultKmEnd
	}
	if c.Report.Accidents == 0 {
		c.Report.Accidents = 20
	}
	if c.Report.Vehicles == 0 {
		c.Report.Vehicles = 10
	}
	if c.Report.Traffic == 0 {
		c.Report.Traffic = 15
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = DefaultInterval
	}
	for i := range c.Sources.Items {
		it := &c.Sources.Items[i]
		if it.CleanDir == "" && it.RawDir != "" {
			it.CleanDir = filepath.Join(it.RawDir, "clean")
		}
	}
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Sources.Items) == 0 {
		return errors.New("sources: at least one category is required")
	}
	seen := make(map[string]bool)
	for _, it := range c.Sources.Items {
		if seen[it.Category] {
			return fmt.Errorf("sources: category %q listed twice", it.Category)
		}
		seen[it.Category] = true
	}
	start, _ := time.Parse(time.DateOnly, c.DateTime.Start)
	end, _ := time.Parse(time.DateOnly, c.DateTime.End)
	if end.Before(start) {
		return fmt.Errorf("datetime: end %s is before start %s", c.DateTime.End, c.DateTime.Start)
	}
	return nil
}
