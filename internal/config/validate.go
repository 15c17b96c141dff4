package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Ingest.Extension, ".") {
		return fmt.Errorf("ingest.extension must start with '.', got %q", c.Ingest.Extension)
	}
	if c.Ingest.Parallelism < 1 {
		return errors.New("ingest.parallelism must be >= 1")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.hostname is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.database_name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.username is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	switch strings.ToLower(db.SQLType) {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("%s.sql_type %q is not supported", prefix, db.SQLType)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level %q is invalid", level)
	}
	return l, nil
}
