package pagination

import "fmt"

// Navigator holds the position of a viewer within one document
type Navigator struct {
	spread int
	total  int
	layout Layout
}

// NewNavigator creates a navigator positioned on the cover
func NewNavigator(totalPages int, layout Layout) *Navigator {
	return &Navigator{total: totalPages, layout: layout}
}

// Reset switches to a new document and returns to the cover
func (n *Navigator) Reset(totalPages int) {
	n.total = totalPages
	n.spread = 0
}

// SetTotal changes the page count of the current document, keeping the
// position when it is still valid
func (n *Navigator) SetTotal(totalPages int) {
	n.total = totalPages
	if last := LastSpread(totalPages, n.layout); n.spread > last {
		n.spread = last
	}
}

// Spread returns the current spread index
func (n *Navigator) Spread() int { return n.spread }

// Total returns the page count
func (n *Navigator) Total() int { return n.total }

// Layout returns the current layout
func (n *Navigator) Layout() Layout { return n.layout }

// Pages returns the visible pages
func (n *Navigator) Pages() []int {
	return CurrentPages(n.spread, n.total, n.layout)
}

// IsFirst reports whether the cover is shown
func (n *Navigator) IsFirst() bool { return n.spread == 0 }

// IsLast reports whether the final page is visible
func (n *Navigator) IsLast() bool {
	return IsLastSpread(n.Pages(), n.total)
}

// Contains reports whether page is currently visible
func (n *Navigator) Contains(page int) bool {
	for _, p := range n.Pages() {
		if p == page {
			return true
		}
	}
	return false
}

// Next moves forward one spread and reports whether the position changed
func (n *Navigator) Next() bool {
	return n.move(Advance(n.spread, +1, n.IsLast()))
}

// Prev moves back one spread and reports whether the position changed
func (n *Navigator) Prev() bool {
	return n.move(Advance(n.spread, -1, n.IsLast()))
}

// First jumps to the cover
func (n *Navigator) First() bool {
	return n.move(0)
}

// Last jumps to the final spread
func (n *Navigator) Last() bool {
	return n.move(LastSpread(n.total, n.layout))
}

// GoTo jumps to the spread showing page
func (n *Navigator) GoTo(page int) error {
	s, err := GoToPage(page, n.total, n.layout)
	if err != nil {
		return err
	}
	n.spread = s
	return nil
}

// SetLayout switches layout, keeping the first visible page on screen. It
// reports whether the layout changed.
func (n *Navigator) SetLayout(layout Layout) bool {
	if layout == n.layout {
		return false
	}
	n.spread = Relayout(n.spread, n.total, n.layout, layout)
	n.layout = layout
	return true
}

// Label renders the position, e.g. "Pages 2-3 / 41"
func (n *Navigator) Label() string {
	pages := n.Pages()
	switch len(pages) {
	case 0:
		return fmt.Sprintf("- / %d", n.total)
	case 1:
		return fmt.Sprintf("Page %d / %d", pages[0], n.total)
	default:
		return fmt.Sprintf("Pages %d-%d / %d", pages[0], pages[len(pages)-1], n.total)
	}
}

func (n *Navigator) move(spread int) bool {
	if spread == n.spread {
		return false
	}
	n.spread = spread
	return true
}
