package types

import (
	"errors"
	"strings"
)

// Config holds the database location and logging parameters loaded at startup.
type Config struct {
	Database string `json:"database" yaml:"database"`
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Defaults applied when a key is absent from config.yaml.
const (
	DefaultDatabase = "online_store.db"
	DefaultLogLevel = "info"
)

// Config validation errors.
var (
	ErrDatabaseEmpty   = errors.New("database path must not be empty")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

// knownLogLevels lists the levels that Validate accepts.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return ErrDatabaseEmpty
	}
	if c.LogLevel != "" && !knownLogLevels[strings.ToLower(c.LogLevel)] {
		return ErrLogLevelUnknown
	}
	return nil
}
