package pair

import (
	"sync"
	"time"

	"github.com/dshills/marksync/internal/annotate"
	"github.com/dshills/marksync/internal/correspond"
	"github.com/dshills/marksync/internal/logging"
	"github.com/dshills/marksync/internal/overlay"
	"github.com/dshills/marksync/internal/resolve"
	"github.com/dshills/marksync/internal/source"
	"github.com/dshills/marksync/internal/viewsync"
	"github.com/dshills/marksync/internal/vtree"
)

// Controller is the pairing controller owning all shared synchronization
// state: the current render pass (buffer, tree, correspondence cache,
// resolver, overlays), the measured line heights, the scroll positions,
// the current cursor and highlight, and the re-entrancy guards. The state
// lives in explicit fields here rather than free-floating globals so the
// guards and cache invalidation are independently testable.
//
// Edits replace the render-pass state wholesale; nothing is merged. Rapid
// edit bursts are debounced into one recomputation, and a generation
// counter discards deferred recomputations that fire against stale input.
type Controller struct {
	mu sync.Mutex

	logger    *logging.Logger
	ann       *annotate.Annotator
	syncer    *viewsync.Synchronizer
	debounce  time.Duration
	wrapWidth int

	// Guards: after programmatically moving one viewport, scroll events
	// it emits are suppressed until the guard expires.
	editorGuard  *viewsync.Guard
	previewGuard *viewsync.Guard

	// Current render pass, replaced as a unit.
	buf      *source.Buffer
	tree     *vtree.Tree
	cache    *correspond.Cache
	resolver *resolve.Resolver
	overlays *overlay.Manager

	// Ambient synchronization state.
	cursorAt     source.Span
	hasCursor    bool
	highlight    source.Span
	hasHighlight bool
	bufferScroll float64
	visualScroll float64

	// Deferred recomputation.
	generation  uint64
	pending     *time.Timer
	pendingText string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithAnnotator sets the annotator (and with it the parser and token set).
func WithAnnotator(a *annotate.Annotator) Option {
	return func(c *Controller) {
		c.ann = a
	}
}

// WithDebounce sets the edit-burst debounce delay. Zero recomputes
// synchronously.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = d
	}
}

// WithGuardDuration sets the scroll re-entrancy suppression window.
func WithGuardDuration(d time.Duration) Option {
	return func(c *Controller) {
		c.editorGuard = viewsync.NewGuard(d)
		c.previewGuard = viewsync.NewGuard(d)
	}
}

// WithWrapWidth sets the buffer view's wrap width in cells.
func WithWrapWidth(w int) Option {
	return func(c *Controller) {
		c.wrapWidth = w
	}
}

// New creates a controller with an empty document.
func New(opts ...Option) *Controller {
	c := &Controller{
		logger:       logging.Discard(),
		ann:          annotate.New(),
		syncer:       viewsync.NewSynchronizer(),
		debounce:     150 * time.Millisecond,
		wrapWidth:    80,
		editorGuard:  viewsync.NewGuard(viewsync.DefaultGuardDuration),
		previewGuard: viewsync.NewGuard(viewsync.DefaultGuardDuration),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute(c.generation, "")
	return c
}

// SetAnnotator replaces the annotator, and with it the token table, then
// schedules a re-render of the current text. The previous annotator and
// its table are discarded whole; nothing is merged, so a reload can never
// race a render against a half-updated grammar.
func (c *Controller) SetAnnotator(a *annotate.Annotator) {
	c.mu.Lock()
	c.ann = a
	text := ""
	if c.buf != nil {
		text = c.buf.Text()
	}
	if c.pending != nil {
		text = c.pendingText
	}
	c.mu.Unlock()

	c.SetText(text)
}

// SetText schedules a re-annotation for the new text, deferred and
// debounced so rapid edit bursts coalesce into a single recomputation.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.pendingText = text
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	d := c.debounce
	c.mu.Unlock()

	if d <= 0 {
		c.recompute(gen, text)
		return
	}

	t := time.AfterFunc(d, func() {
		c.recompute(gen, text)
	})
	c.mu.Lock()
	if gen == c.generation {
		c.pending = t
	} else {
		t.Stop()
	}
	c.mu.Unlock()
}

// Flush forces a pending recomputation to run immediately.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.pending.Stop()
	c.pending = nil
	gen := c.generation
	text := c.pendingText
	c.mu.Unlock()

	c.recompute(gen, text)
}

// recompute rebuilds the render pass for text. Stale generations are
// discarded so a deferred callback can never overwrite newer state.
func (c *Controller) recompute(gen uint64, text string) {
	c.mu.Lock()
	ann := c.ann
	width := c.wrapWidth
	c.mu.Unlock()

	buf := source.NewBuffer(text)
	tree, err := ann.Render(buf)
	if err != nil {
		c.logger.Error("render failed: %v", err)
		return
	}
	cache := correspond.NewCache(ann.Tokens())
	resolver := resolve.New(tree, cache, buf)
	overlays := overlay.NewManager(tree)
	heights := viewsync.MeasureBuffer(buf, width)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale recompute generation=%d current=%d", gen, c.generation)
		return
	}

	// Replace the cache pair wholesale; stale tables must not survive.
	c.buf = buf
	c.tree = tree
	c.cache = cache
	c.resolver = resolver
	c.overlays = overlays
	c.syncer.SetHeights(heights)
	c.pending = nil

	// Re-apply ambient decorations against the fresh tree.
	if c.hasHighlight {
		overlays.HighlightSpan(resolver, c.highlight)
	}
	if c.hasCursor {
		if p, err := resolver.Locate(c.cursorAt.Start); err == nil {
			_ = overlays.PlaceCursor(p)
		}
	}
}

// Resize re-measures wrapped line heights for a new wrap width. Heights
// recompute on resize and text change, never per scroll event.
func (c *Controller) Resize(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.wrapWidth {
		return
	}
	c.wrapWidth = width
	c.syncer.SetHeights(viewsync.MeasureBuffer(c.buf, width))
}

// Buffer returns the current source buffer.
func (c *Controller) Buffer() *source.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// Tree returns the current annotated tree.
func (c *Controller) Tree() *vtree.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Resolver returns the resolver for the current render pass.
func (c *Controller) Resolver() *resolve.Resolver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolver
}

// Overlays returns the overlay manager for the current render pass.
func (c *Controller) Overlays() *overlay.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlays
}

// Click resolves a text insertion point to a source span and records it as
// the current cursor position.
func (c *Controller) Click(hit resolve.Hit) (source.Span, error) {
	c.mu.Lock()
	resolver := c.resolver
	c.mu.Unlock()

	span, err := resolver.ResolveHit(hit)
	if err != nil {
		c.logger.Debug("click unresolved: %v", err)
		return source.Span{}, err
	}

	c.mu.Lock()
	c.cursorAt = span
	c.hasCursor = true
	c.mu.Unlock()
	return span, nil
}

// Select resolves a live selection's endpoints to one ordered source span
// and records it as the current highlight.
func (c *Controller) Select(anchor, focus resolve.Hit) (source.Span, error) {
	c.mu.Lock()
	resolver := c.resolver
	c.mu.Unlock()

	span, err := resolver.ResolveSelection(anchor, focus)
	if err != nil {
		c.logger.Debug("selection unresolved: %v", err)
		return source.Span{}, err
	}

	c.mu.Lock()
	c.highlight = span
	c.hasHighlight = true
	c.mu.Unlock()
	return span, nil
}

// ShowCursor places the cursor marker at the source offset's visual
// position. Unresolvable positions mean "no marker", never a guess.
func (c *Controller) ShowCursor(off source.Offset) error {
	c.mu.Lock()
	resolver := c.resolver
	overlays := c.overlays
	c.mu.Unlock()

	p, err := resolver.Locate(off)
	if err != nil {
		overlays.RemoveCursor()
		c.logger.Debug("cursor at %d unresolved: %v", off, err)
		return err
	}
	if err := overlays.PlaceCursor(p); err != nil {
		return err
	}

	c.mu.Lock()
	c.cursorAt = source.Caret(off)
	c.hasCursor = true
	c.mu.Unlock()
	return nil
}

// HideCursor removes the cursor marker.
func (c *Controller) HideCursor() {
	c.mu.Lock()
	overlays := c.overlays
	c.hasCursor = false
	c.mu.Unlock()
	overlays.RemoveCursor()
}

// Highlight wraps the source span's visual sub-ranges and records it as
// the current highlight.
func (c *Controller) Highlight(span source.Span) {
	c.mu.Lock()
	resolver := c.resolver
	overlays := c.overlays
	c.highlight = span.Ordered()
	c.hasHighlight = true
	c.mu.Unlock()

	overlays.HighlightSpan(resolver, span)
}

// ClearHighlight removes all highlight wraps as a batch.
func (c *Controller) ClearHighlight() {
	c.mu.Lock()
	overlays := c.overlays
	c.hasHighlight = false
	c.mu.Unlock()
	overlays.ClearHighlights()
}

// EditorScrolled handles a scroll event from the buffer viewport and
// returns the rendered view's new scroll offset. Returns false while the
// editor guard is active: the event is an echo of a programmatic move and
// must not bounce back.
func (c *Controller) EditorScrolled(rows float64, geom viewsync.NodeGeometry) (float64, bool) {
	c.mu.Lock()
	if c.editorGuard.Active() {
		c.mu.Unlock()
		return 0, false
	}
	c.bufferScroll = rows
	buf, resolver := c.buf, c.resolver
	c.mu.Unlock()

	y := c.syncer.SyncToVisual(buf, resolver, geom, rows)

	c.mu.Lock()
	c.visualScroll = y
	c.previewGuard.Begin()
	c.mu.Unlock()
	return y, true
}

// PreviewScrolled handles a scroll event from the rendered viewport and
// returns the buffer view's new scroll position in rows. Returns false
// while the preview guard is active.
func (c *Controller) PreviewScrolled(y float64, geom viewsync.NodeGeometry) (float64, bool) {
	c.mu.Lock()
	if c.previewGuard.Active() {
		c.mu.Unlock()
		return 0, false
	}
	c.visualScroll = y
	buf, resolver := c.buf, c.resolver
	c.mu.Unlock()

	rows := c.syncer.SyncToBuffer(buf, resolver, geom, y)

	c.mu.Lock()
	c.bufferScroll = rows
	c.editorGuard.Begin()
	c.mu.Unlock()
	return rows, true
}

// ScrollState returns the recorded scroll positions of both viewports.
func (c *Controller) ScrollState() (bufferRows, visualTop float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferScroll, c.visualScroll
}
