// Package config loads engine configuration from TOML: the syntax token
// table both the renderer and the correspondence scan are driven by, sync
// tuning, logging, and plugin scripts. A watcher can hot-reload the file
// so the token table never drifts from what the user configured.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/marksync/internal/markup"
)

// Config is the full engine configuration.
type Config struct {
	Tokens  Tokens  `toml:"tokens"`
	Sync    Sync    `toml:"sync"`
	Logging Logging `toml:"logging"`
	Plugins Plugins `toml:"plugins"`
}

// Tokens configures the syntax token table.
type Tokens struct {
	// Paired lists zero-width paired delimiters.
	Paired []string `toml:"paired"`
	// Links enables link-bracket consumption.
	Links bool `toml:"links"`
	// LineMarkers enables line-anchored marker consumption.
	LineMarkers bool `toml:"line_markers"`
}

// Sync tunes the pairing controller.
type Sync struct {
	// DebounceMillis is the re-annotation debounce delay after edits.
	DebounceMillis int `toml:"debounce_ms"`
	// GuardMillis is the scroll re-entrancy suppression window.
	GuardMillis int `toml:"guard_ms"`
	// WrapWidth is the buffer view's wrap width in cells.
	WrapWidth int `toml:"wrap_width"`
}

// Logging configures log output.
type Logging struct {
	Level string `toml:"level"`
}

// Plugins lists Lua token-rule scripts to load.
type Plugins struct {
	Scripts []string `toml:"scripts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tokens: Tokens{
			Paired:      []string{"**", "__", "~~", "*", "_", "`"},
			Links:       true,
			LineMarkers: true,
		},
		Sync: Sync{
			DebounceMillis: 150,
			GuardMillis:    100,
			WrapWidth:      80,
		},
		Logging: Logging{Level: "info"},
	}
}

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads configuration from a TOML file, applying defaults for
// anything unset. A missing file is not an error: defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// Parse reads configuration from TOML source text.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: "<data>", Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// TokenSet builds the markup token table this configuration describes.
func (c Config) TokenSet() *markup.TokenSet {
	ts := &markup.TokenSet{
		Links:       c.Tokens.Links,
		LineMarkers: c.Tokens.LineMarkers,
	}
	for _, tok := range c.Tokens.Paired {
		ts.AddPaired(tok)
	}
	return ts
}
