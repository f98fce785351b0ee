package plugin

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/marksync/internal/markup"
)

func TestRegisterToken(t *testing.T) {
	h := NewHost()

	err := h.LoadString(`
marksync.register_token("==")
marksync.register_token("++")
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	toks := h.Tokens()
	if len(toks) != 2 || toks[0] != "==" || toks[1] != "++" {
		t.Errorf("tokens = %v, want [== ++]", toks)
	}

	ts := markup.DefaultTokenSet()
	h.Apply(ts)
	if n := ts.MatchPaired("==mark=="); n != 2 {
		t.Errorf("MatchPaired(==) = %d after Apply, want 2", n)
	}
}

func TestRegisterTokenValidation(t *testing.T) {
	h := NewHost()

	err := h.LoadString(`marksync.register_token("")`)
	if !errors.Is(err, ErrBadToken) {
		t.Errorf("err = %v, want ErrBadToken", err)
	}
}

func TestScriptError(t *testing.T) {
	h := NewHost()
	if err := h.LoadString(`this is not lua`); err == nil {
		t.Error("expected error for invalid script")
	}
}

func TestScriptTimeout(t *testing.T) {
	h := NewHost(WithExecutionTimeout(50 * time.Millisecond))

	err := h.LoadString(`while true do end`)
	if !errors.Is(err, ErrScriptTimeout) {
		t.Errorf("err = %v, want ErrScriptTimeout", err)
	}
}
