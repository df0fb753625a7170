package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `json:"level"`
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return nil
}

// JournalConfig defines settings for the run journal.
type JournalConfig struct {
	// Backend selects the journal store type: "none", "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the journal.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *JournalConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "schedulegen-journal.jsonl"
		case "sqlite":
			c.Path = "schedulegen-journal.db"
		}
	}
}

// Validate checks mandatory fields.
func (c JournalConfig) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
