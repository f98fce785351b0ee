package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/marksync/internal/logging"
	"github.com/dshills/marksync/internal/pair"
	"github.com/dshills/marksync/internal/resolve"
	"github.com/dshills/marksync/internal/viewsync"
	"github.com/dshills/marksync/internal/vtree"
)

// viewer is the split-pane terminal frontend: source on the left, the
// rendered view on the right, scroll positions kept paired through the
// controller.
type viewer struct {
	screen tcell.Screen
	ctrl   *pair.Controller
	logger *logging.Logger
	text   string

	srcTop float64
	visTop float64
	status string

	paneW  int
	height int
	geom   *viewsync.StackGeometry
}

var _ resolve.HitTester = (*viewer)(nil)

func newViewer(ctrl *pair.Controller, logger *logging.Logger, text string) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	v := &viewer{
		screen: screen,
		ctrl:   ctrl,
		logger: logger,
		text:   text,
		status: "marksync: j/k scroll source, PgUp/PgDn scroll preview, click preview, q quits",
	}
	v.resize()
	ctrl.SetText(text)
	ctrl.Flush()
	v.rebuildGeometry()
	return v, nil
}

// Close releases the terminal.
func (v *viewer) Close() {
	v.screen.Fini()
}

// Run drives the event loop until quit.
func (v *viewer) Run() error {
	for {
		v.draw()
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.resize()
			v.rebuildGeometry()
			v.screen.Sync()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			v.handleMouse(ev)
		}
	}
}

func (v *viewer) resize() {
	w, h := v.screen.Size()
	v.paneW = (w - 1) / 2
	if v.paneW < 1 {
		v.paneW = 1
	}
	v.height = h
	v.ctrl.Resize(v.paneW)
}

// rebuildGeometry measures the rendered pane's block layout: each text run
// occupies as many rows as its display text wraps into, plus one separator
// row per block.
func (v *viewer) rebuildGeometry() {
	geom := viewsync.NewStackGeometry()
	tree := v.ctrl.Tree()
	if tree == nil {
		v.geom = geom
		return
	}
	for _, blk := range tree.Root.Children {
		geom.Push(blk, float64(v.blockRows(blk)+1))
	}
	v.geom = geom
}

func (v *viewer) blockRows(blk *vtree.Node) int {
	rows := 0
	for _, run := range blk.Children {
		if run.Kind != vtree.KindText {
			continue
		}
		w := runewidth.StringWidth(run.TextContent())
		r := (w + v.paneW - 1) / v.paneW
		if r < 1 {
			r = 1
		}
		rows += r
	}
	if rows == 0 {
		rows = 1
	}
	return rows
}

func (v *viewer) handleKey(ev *tcell.EventKey) (quit bool) {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
		ev.Rune() == 'q', ev.Rune() == 'Q':
		return true
	case ev.Key() == tcell.KeyDown, ev.Rune() == 'j':
		v.scrollSource(1)
	case ev.Key() == tcell.KeyUp, ev.Rune() == 'k':
		v.scrollSource(-1)
	case ev.Key() == tcell.KeyPgDn:
		v.scrollPreview(float64(v.height - 2))
	case ev.Key() == tcell.KeyPgUp:
		v.scrollPreview(float64(-(v.height - 2)))
	}
	return false
}

// scrollSource moves the source pane and lets the preview follow.
func (v *viewer) scrollSource(delta int) {
	next := v.srcTop + float64(delta)
	if next < 0 {
		next = 0
	}
	v.srcTop = next
	if y, ok := v.ctrl.EditorScrolled(next, v.geom); ok {
		v.visTop = y
	}
}

// scrollPreview moves the rendered pane and lets the source follow.
func (v *viewer) scrollPreview(delta float64) {
	next := v.visTop + delta
	if next < 0 {
		next = 0
	}
	v.visTop = next
	if rows, ok := v.ctrl.PreviewScrolled(next, v.geom); ok {
		v.srcTop = rows
	}
}

func (v *viewer) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	if x <= v.paneW || y >= v.height-1 {
		return
	}

	hit, ok := v.HitTest(x-v.paneW-1, y)
	if !ok {
		// Failed hit test: fall back to the nearest block's midpoint.
		if blk, found := v.nearestBlock(v.visTop + float64(y)); found {
			if span, err := v.ctrl.Resolver().BlockMidpoint(blk); err == nil {
				v.status = fmt.Sprintf("source [%d:%d) (block midpoint)", span.Start, span.End)
				return
			}
		}
		v.status = "click: nothing there"
		return
	}
	span, err := v.ctrl.Click(hit)
	if err != nil {
		v.status = fmt.Sprintf("click: %v", err)
		v.logger.Debug("click unresolved: %v", err)
		return
	}
	v.status = fmt.Sprintf("source [%d:%d)", span.Start, span.End)
	if err := v.ctrl.ShowCursor(span.Start); err == nil {
		// Keep the clicked position visible on the source side.
		line := v.ctrl.Buffer().Lines().LineAt(span.Start)
		v.srcTop = float64(line)
	}
}

// HitTest maps preview-pane cell coordinates to a text insertion point.
func (v *viewer) HitTest(x, y int) (resolve.Hit, bool) {
	abs := v.visTop + float64(y)
	blk, ok := v.geom.NodeAt(abs)
	if !ok {
		return resolve.Hit{}, false
	}
	top, _, _ := v.geom.NodeExtent(blk)
	row := int(abs - top)

	for _, run := range blk.Children {
		if run.Kind != vtree.KindText {
			continue
		}
		text := run.TextContent()
		rows := (runewidth.StringWidth(text) + v.paneW - 1) / v.paneW
		if rows < 1 {
			rows = 1
		}
		if row >= rows {
			row -= rows
			continue
		}
		return resolve.Hit{Node: run, Offset: cellToByte(text, row*v.paneW+x)}, true
	}
	return resolve.Hit{Node: blk}, true
}

// nearestBlock clamps an absolute visual position into the rendered content
// and returns the block covering it. Clicks below the last block land on it.
func (v *viewer) nearestBlock(abs float64) (*vtree.Node, bool) {
	ch := v.geom.ContentHeight()
	if ch <= 0 {
		return nil, false
	}
	if abs < 0 {
		abs = 0
	}
	if abs >= ch {
		abs = ch - 0.5
	}
	return v.geom.NodeAt(abs)
}

// cellToByte finds the byte offset in text at the given cell column.
func cellToByte(text string, cell int) int {
	col := 0
	for i, r := range text {
		w := runewidth.RuneWidth(r)
		if col+w > cell {
			return i
		}
		col += w
	}
	return len(text)
}

func (v *viewer) draw() {
	v.screen.Clear()
	v.drawSource()
	v.drawDivider()
	v.drawPreview()
	v.drawStatus()
	v.screen.Show()
}

func (v *viewer) drawSource() {
	buf := v.ctrl.Buffer()
	if buf == nil {
		return
	}
	style := tcell.StyleDefault
	row := -int(v.srcTop)
	for i := uint32(0); i < buf.LineCount(); i++ {
		line := buf.LineText(i)
		for _, chunk := range wrapCells(line, v.paneW) {
			if row >= 0 && row < v.height-1 {
				v.drawText(0, row, v.paneW, chunk, style)
			}
			row++
		}
	}
}

func (v *viewer) drawDivider() {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for y := 0; y < v.height-1; y++ {
		v.screen.SetContent(v.paneW, y, '│', nil, style)
	}
}

func (v *viewer) drawPreview() {
	tree := v.ctrl.Tree()
	if tree == nil {
		return
	}
	left := v.paneW + 1
	for _, blk := range tree.Root.Children {
		top, _, ok := v.geom.NodeExtent(blk)
		if !ok {
			continue
		}
		row := int(top - v.visTop)
		for _, run := range blk.Children {
			if run.Kind != vtree.KindText {
				continue
			}
			row = v.drawRun(left, row, run)
		}
	}
}

// drawRun paints one text run fragment by fragment so highlight wraps and
// the cursor marker render with their own styles. Returns the next row.
func (v *viewer) drawRun(left, row int, run *vtree.Node) int {
	plain := tcell.StyleDefault
	marked := tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	caret := tcell.StyleDefault.Reverse(true)

	col := 0
	atCaret := false
	var paint func(n *vtree.Node, style tcell.Style)
	paint = func(n *vtree.Node, style tcell.Style) {
		switch n.Kind {
		case vtree.KindFragment:
			for _, r := range n.Text {
				if col >= v.paneW {
					col = 0
					row++
				}
				if row >= 0 && row < v.height-1 {
					s := style
					if atCaret {
						s = caret
						atCaret = false
					}
					v.screen.SetContent(left+col, row, r, nil, s)
				}
				col += runewidth.RuneWidth(r)
			}
		case vtree.KindCursor:
			// Zero width; render as the style of the rune that follows.
			atCaret = true
		case vtree.KindHighlight:
			for _, c := range n.Children {
				paint(c, marked)
			}
			return
		}
		for _, c := range n.Children {
			paint(c, style)
		}
	}
	for _, c := range run.Children {
		paint(c, plain)
	}
	if atCaret && row >= 0 && row < v.height-1 && col < v.paneW {
		v.screen.SetContent(left+col, row, ' ', nil, caret)
	}
	return row + 1
}

func (v *viewer) drawStatus() {
	style := tcell.StyleDefault.Reverse(true)
	w, _ := v.screen.Size()
	v.drawText(0, v.height-1, w, v.status, style)
}

func (v *viewer) drawText(x, y, maxW int, s string, style tcell.Style) {
	col := 0
	for _, r := range s {
		if col >= maxW {
			break
		}
		v.screen.SetContent(x+col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

// wrapCells splits s into cell-width chunks. Empty input yields one empty
// chunk so blank lines keep their row.
func wrapCells(s string, width int) []string {
	if s == "" {
		return []string{""}
	}
	var chunks []string
	start, col := 0, 0
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if col+w > width {
			chunks = append(chunks, s[start:i])
			start, col = i, 0
		}
		col += w
	}
	chunks = append(chunks, s[start:])
	return chunks
}
