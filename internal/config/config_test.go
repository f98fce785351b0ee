package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultTokenSet(t *testing.T) {
	ts := Default().TokenSet()

	if n := ts.MatchPaired("**x"); n != 2 {
		t.Errorf("MatchPaired(**) = %d, want 2", n)
	}
	if !ts.Links || !ts.LineMarkers {
		t.Error("default token set should enable links and line markers")
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
[tokens]
paired = ["=="]
links = false
line_markers = true

[sync]
debounce_ms = 42
wrap_width = 100
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Sync.DebounceMillis != 42 {
		t.Errorf("debounce = %d, want 42", cfg.Sync.DebounceMillis)
	}
	if cfg.Sync.WrapWidth != 100 {
		t.Errorf("wrap width = %d, want 100", cfg.Sync.WrapWidth)
	}
	// Guard keeps its default when unset.
	if cfg.Sync.GuardMillis != 100 {
		t.Errorf("guard = %d, want default 100", cfg.Sync.GuardMillis)
	}

	ts := cfg.TokenSet()
	if ts.Links {
		t.Error("links should be disabled")
	}
	if n := ts.MatchPaired("==x"); n != 2 {
		t.Errorf("MatchPaired(==) = %d, want 2", n)
	}
	if n := ts.MatchPaired("**x"); n != 0 {
		t.Error("default delimiters should be replaced, not merged")
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("not [valid toml"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sync.DebounceMillis != Default().Sync.DebounceMillis {
		t.Error("missing file should yield defaults")
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marksync.toml")
	if err := os.WriteFile(path, []byte("[sync]\ndebounce_ms = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := make(chan Config, 1)
	w, err := NewWatcher(path, func(c Config) {
		select {
		case got <- c:
		default:
		}
	}, WithWatcherDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[sync]\ndebounce_ms = 77\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Sync.DebounceMillis != 77 {
			t.Errorf("reloaded debounce = %d, want 77", cfg.Sync.DebounceMillis)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "c.toml"), func(Config) {})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
