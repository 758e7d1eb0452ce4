// Package popup computes the geometry of the completion popup: the argument
// hint header, the match grid, and the trailing docstring block, sized and
// anchored against the terminal without ever crossing its edges.
package popup

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis replaces the last visible grid slot when candidates are trimmed.
const Ellipsis = "..."

// widthFraction caps the popup at a share of the screen width; the grid
// interior additionally loses two columns to the border.
const widthFraction = 0.8

type Geometry struct {
	Width  int
	Height int
}

// Degenerate reports a zero-sized surface, on which all drawing is skipped.
func (g Geometry) Degenerate() bool { return g.Width <= 0 || g.Height <= 0 }

// Layout is the fully computed popup, rebuilt from scratch whenever the
// match set, the selection, or the terminal size changes.
type Layout struct {
	X, Y   int
	Width  int
	Height int
	Above  bool

	Rows, Cols int
	ColWidth   int
	// Items are the visible candidates, row-major, possibly ending in the
	// ellipsis marker when the full set did not fit.
	Items     []string
	SpecLines []string
	DocLines  []string
}

// Compute lays out the popup. cursorRow is the cursor's screen row; the
// popup opens downward when the cursor sits in the top half of the screen.
// Returns false when the geometry is degenerate or nothing would be shown.
func Compute(g Geometry, cursorRow int, specLines, items []string, doc string) (Layout, bool) {
	if g.Degenerate() || (len(items) == 0 && len(specLines) == 0) {
		return Layout{}, false
	}

	maxW := int(widthFraction * float64(g.Width))
	if maxW < 4 {
		maxW = g.Width
	}

	lay := Layout{SpecLines: specLines}
	lay.Above = cursorRow >= g.Height/2

	avail := g.Height - cursorRow - 1 // rows below the cursor
	if lay.Above {
		avail = cursorRow
	}
	avail -= 2 // border
	if avail < 1 {
		avail = 1
	}

	if len(items) > 0 {
		lay.ColWidth = longestWidth(items) + 1
		lay.Cols = (maxW - 2) / lay.ColWidth
		if lay.Cols < 1 {
			lay.Cols = 1
		}
		lay.Rows = ceilDiv(len(items), lay.Cols)
	}

	interior := maxW - 2
	if lay.Cols > 0 && lay.Cols*lay.ColWidth < interior {
		interior = lay.Cols * lay.ColWidth
	}

	// Fit, dropping the docstring before touching the grid.
	gridAvail := avail - len(specLines)
	if gridAvail < 1 {
		// Severe pressure: the header alone does not fit, shrink it too.
		if len(specLines) > avail-1 && avail > 1 {
			lay.SpecLines = specLines[:avail-1]
		} else if avail <= 1 {
			lay.SpecLines = nil
		}
		gridAvail = 1
	}
	if doc != "" {
		docLines := wrapDoc(doc, interior)
		if lay.Rows+len(docLines) <= gridAvail {
			lay.DocLines = docLines
		} else if lay.Rows < gridAvail {
			lay.DocLines = docLines[:gridAvail-lay.Rows]
		}
	}
	lay.Items = items
	if lay.Rows > gridAvail {
		lay.Rows = gridAvail
		visible := lay.Rows * lay.Cols
		lay.Items = append([]string(nil), items[:visible]...)
		lay.Items[visible-1] = Ellipsis
	}

	lay.Width = interior + 2
	if lay.Width > g.Width {
		lay.Width = g.Width
	}
	lay.Height = lay.Rows + len(lay.SpecLines) + len(lay.DocLines) + 2

	lay.X = 0
	if lay.Above {
		lay.Y = cursorRow - lay.Height
		if lay.Y < 0 {
			lay.Y = 0
		}
	} else {
		lay.Y = cursorRow + 1
		if lay.Y+lay.Height > g.Height {
			lay.Y = g.Height - lay.Height
		}
	}
	return lay, true
}

// GridLines formats the visible candidates row-major into padded lines,
// passing the selected candidate through highlight.
func (l Layout) GridLines(selected int, highlight func(string) string) []string {
	if l.Rows == 0 {
		return nil
	}
	lines := make([]string, 0, l.Rows)
	for r := 0; r < l.Rows; r++ {
		var b strings.Builder
		for c := 0; c < l.Cols; c++ {
			i := r*l.Cols + c
			if i >= len(l.Items) {
				break
			}
			cell := l.Items[i]
			pad := l.ColWidth - ansi.StringWidth(cell)
			if i == selected && highlight != nil {
				cell = highlight(cell)
			}
			b.WriteString(cell)
			if pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

func wrapDoc(doc string, width int) []string {
	if width < 1 {
		return nil
	}
	wrapped := ansi.Wrap(strings.TrimRight(doc, "\n"), width, "")
	return strings.Split(wrapped, "\n")
}

func longestWidth(items []string) int {
	w := 0
	for _, it := range items {
		if iw := ansi.StringWidth(it); iw > w {
			w = iw
		}
	}
	return w
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
