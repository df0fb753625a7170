package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides, e.g. SG_SCHEDULE__RELEASES=12.
const EnvPrefix = "SG_"

// DotenvPath is the optional dotenv file read before environment overrides.
var DotenvPath = ".env"

type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Input    InputConfig    `json:"input"`
	Output   OutputConfig   `json:"output"`
	Journal  JournalConfig  `json:"journal"`
	Metrics  MetricsConfig  `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load layers built-in defaults, the optional file at path and environment
// overrides, then validates the result. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(DotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotenvPath, err)
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Journal.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func defaults() map[string]any {
	return map[string]any{
		"schedule.releases":             10,
		"schedule.welcome_date":         "2022-07-26",
		"schedule.initial_date":         "2022-07-26",
		"schedule.first_remaining_date": "2022-08-26",
		"schedule.release_time":         "12:00",
		"schedule.cutoff_time":          "12:00",
		"schedule.location":             "UTC",
		"schedule.min_lead":             "2h",
		"input.delimiter":               ";",
		"input.decimal_separator":       ".",
		"input.thousands_separator":     ",",
		"input.skip_header":             false,
		"output.dir":                    ".",
		"output.expiry":                 "2h",
		"output.overwrite":              false,
		"journal.backend":               "none",
		"logging.level":                 "info",
	}
}
