// Package plugin hosts user-supplied Lua scripts that extend the syntax
// token table: custom markup dialects register their own zero-width
// delimiters without the engine hard-coding them. Scripts run in a
// sandboxed state with a bounded execution time.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/marksync/internal/logging"
	"github.com/dshills/marksync/internal/markup"
)

// Errors returned by the plugin host.
var (
	ErrScriptTimeout = errors.New("plugin script exceeded execution timeout")
	ErrBadToken      = errors.New("plugin registered an invalid token")
)

// DefaultExecutionTimeout bounds how long one script may run.
const DefaultExecutionTimeout = 2 * time.Second

// Host loads token-rule scripts and collects the delimiters they register.
type Host struct {
	timeout time.Duration
	logger  *logging.Logger

	// tokens are the paired delimiters scripts registered, in order.
	tokens []string
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithExecutionTimeout sets the per-script execution timeout.
func WithExecutionTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithLogger sets the host's logger.
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		h.logger = l
	}
}

// NewHost creates a plugin host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		timeout: DefaultExecutionTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LoadFile runs a script from disk.
func (h *Host) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading plugin %s: %w", path, err)
	}
	if err := h.LoadString(string(src)); err != nil {
		return fmt.Errorf("plugin %s: %w", path, err)
	}
	h.logger.Info("loaded plugin %s", path)
	return nil
}

// LoadString runs a script from source text. The script calls
// marksync.register_token(delim) for each paired delimiter it adds.
func (h *Host) LoadString(src string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	L.SetContext(ctx)

	var loadErr error
	mod := L.NewTable()
	L.SetGlobal("marksync", mod)
	L.SetField(mod, "register_token", L.NewFunction(func(L *lua.LState) int {
		tok := L.CheckString(1)
		if tok == "" || len(tok) > 8 {
			loadErr = fmt.Errorf("%w: %q", ErrBadToken, tok)
			return 0
		}
		h.tokens = append(h.tokens, tok)
		return 0
	}))

	if err := L.DoString(src); err != nil {
		if ctx.Err() != nil {
			return ErrScriptTimeout
		}
		return fmt.Errorf("running plugin: %w", err)
	}
	return loadErr
}

// Tokens returns the delimiters registered so far.
func (h *Host) Tokens() []string {
	out := make([]string, len(h.tokens))
	copy(out, h.tokens)
	return out
}

// Apply adds every registered delimiter to the token table.
func (h *Host) Apply(ts *markup.TokenSet) {
	for _, tok := range h.tokens {
		ts.AddPaired(tok)
	}
}
