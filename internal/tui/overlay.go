package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/baydesk/internal/geometry"
)

// screen is a fixed grid of styled rows, each exactly width cells wide.
// Panels are stamped onto it in z order.
type screen struct {
	width int
	rows  []string
}

// newScreen lays s out as height rows of width cells, cutting or padding both ways.
func newScreen(s string, width, height int) *screen {
	src := strings.Split(s, "\n")
	sc := &screen{width: width, rows: make([]string, max(height, 0))}
	for i := range sc.rows {
		var line string
		if i < len(src) {
			line = src[i]
		}
		sc.rows[i] = padCells(line, width)
	}
	return sc
}

func (sc *screen) String() string { return strings.Join(sc.rows, "\n") }

// dim flattens every row to the backdrop style.
func (sc *screen) dim() {
	for i, row := range sc.rows {
		sc.rows[i] = backdropStyle.Render(ansi.Strip(row))
	}
}

// stamp draws block with its top-left cell at (x, y). Whatever falls outside
// the screen is clipped; the base row stays visible on both sides.
func (sc *screen) stamp(block string, x, y int) {
	lines := strings.Split(block, "\n")
	bw := 0
	for _, l := range lines {
		bw = max(bw, ansi.StringWidth(l))
	}
	if x < 0 {
		for i := range lines {
			lines[i] = ansi.TruncateLeft(lines[i], -x, "")
		}
		bw, x = max(bw+x, 0), 0
	}
	for i, l := range lines {
		row := y + i
		if row < 0 || row >= len(sc.rows) {
			continue
		}
		base := sc.rows[row]
		left := padCells(ansi.Truncate(base, x, ""), x)
		right := ansi.TruncateLeft(base, x+bw, "")
		sc.rows[row] = padCells(left+padCells(l, bw)+right, sc.width)
	}
}

// padCells cuts or space-pads s to exactly w cells.
func padCells(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "")
	if gap := w - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// renderPanel draws body inside a bordered box exactly r.W by r.H cells. The
// first inner row is the title, which doubles as the drag handle.
func renderPanel(r geometry.Rect, title, body string, focused, gesture bool) string {
	iw, ih := r.W-2, r.H-2
	if iw < 1 || ih < 1 {
		return ""
	}
	inner := newScreen(headerStyle.Render(ansi.Truncate(" "+title, iw, "…"))+"\n"+body, iw, ih)
	return panelBorder(focused, gesture).Render(inner.String())
}
