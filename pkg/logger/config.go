package logger

import (
	"fmt"
	"strings"
)

var encodings = map[string]bool{"json": true, "console": true}

// Config selects the service logger's name, level and encoding. Entries go
// to stdout and zap's own errors to stderr.
type Config struct {
	Name     string
	Level    string // zap level name, "info" when empty
	Encoding string // json or console, "json" when empty
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	out.Level = strings.ToLower(strings.TrimSpace(out.Level))
	if out.Level == "" {
		out.Level = "info"
	}
	if out.Encoding == "" {
		out.Encoding = "json"
	}
	return out
}

// Validate reports an unsupported encoding. Levels are checked by zap when
// the logger is built.
func (c Config) Validate() error {
	if !encodings[c.Encoding] {
		return fmt.Errorf("%w %q, want json or console", ErrInvalidEncoding, c.Encoding)
	}
	return nil
}
