package viewsync

import "time"

// Guard is the re-entrancy flag suppressing reciprocal scroll
// synchronization. After one viewport is scrolled programmatically, scroll
// events it emits are ignored until the guard expires, breaking the
// A -> B -> A feedback cycle.
type Guard struct {
	duration time.Duration
	until    time.Time

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// DefaultGuardDuration is how long reciprocal sync stays suppressed after
// a programmatic scroll.
const DefaultGuardDuration = 100 * time.Millisecond

// NewGuard creates a guard with the given suppression window. A
// non-positive duration uses the default.
func NewGuard(d time.Duration) *Guard {
	if d <= 0 {
		d = DefaultGuardDuration
	}
	return &Guard{duration: d, now: time.Now}
}

// Begin arms the guard for its suppression window.
func (g *Guard) Begin() {
	g.until = g.now().Add(g.duration)
}

// Active reports whether reciprocal sync is currently suppressed.
func (g *Guard) Active() bool {
	return g.now().Before(g.until)
}

// Cancel clears the guard immediately.
func (g *Guard) Cancel() {
	g.until = time.Time{}
}
