// Package pagination maps a linear page sequence onto the spreads shown by
// the flipbook. Spread 0 is the cover, shown alone; every later spread shows
// an even page on the left and the following odd page on the right.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPageOutOfRange is returned when a requested page does not exist
var ErrPageOutOfRange = errors.New("page out of range")

// Layout is the page arrangement of the viewer
type Layout int

const (
	// Single shows one page at a time
	Single Layout = iota
	// Spread shows two facing pages, the cover alone
	Spread
)

// String returns the name of the layout
func (l Layout) String() string {
	switch l {
	case Single:
		return "single"
	case Spread:
		return "spread"
	default:
		return "unknown"
	}
}

// ParseLayout parses a layout name
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "page":
		return Single, nil
	case "spread", "double":
		return Spread, nil
	default:
		return Single, fmt.Errorf("unknown layout %q", s)
	}
}

// LayoutForWidth derives the layout from the viewport width. Viewports
// narrower than threshold fall back to single pages.
func LayoutForWidth(width, threshold int) Layout {
	if width < threshold {
		return Single
	}
	return Spread
}

// CurrentPages returns the pages visible at spreadIndex. The result has one
// or two elements for any valid index and is empty for an invalid one.
func CurrentPages(spreadIndex, totalPages int, layout Layout) []int {
	if totalPages < 1 || spreadIndex < 0 {
		return nil
	}

	if layout == Single {
		page := spreadIndex + 1
		if page > totalPages {
			return nil
		}
		return []int{page}
	}

	if spreadIndex == 0 {
		return []int{1}
	}

	left := spreadIndex * 2
	if left > totalPages {
		return nil
	}
	right := left + 1
	if right > totalPages {
		return []int{left}
	}
	return []int{left, right}
}

// IsLastSpread reports whether currentPages already shows the final page.
// An empty set counts as last so navigation never runs past the end.
func IsLastSpread(currentPages []int, totalPages int) bool {
	if len(currentPages) == 0 {
		return true
	}
	highest := currentPages[0]
	for _, p := range currentPages[1:] {
		if p > highest {
			highest = p
		}
	}
	return highest >= totalPages
}

// Advance moves one spread in direction (+1 or -1). Moving past either end
// is a no-op.
func Advance(spreadIndex, direction int, isLastSpread bool) int {
	switch {
	case direction > 0 && !isLastSpread:
		return spreadIndex + 1
	case direction < 0 && spreadIndex > 0:
		return spreadIndex - 1
	default:
		return spreadIndex
	}
}

// GoToPage returns the spread index showing pageNumber. Pages outside
// [1, totalPages] are rejected rather than clamped.
func GoToPage(pageNumber, totalPages int, layout Layout) (int, error) {
	if pageNumber < 1 || pageNumber > totalPages {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, pageNumber, totalPages)
	}
	if pageNumber == 1 {
		return 0, nil
	}
	if layout == Single {
		return pageNumber - 1, nil
	}
	// Spread n starts at page 2n, so both 2n and 2n+1 land on n
	return pageNumber / 2, nil
}

// LastSpread returns the index of the final spread
func LastSpread(totalPages int, layout Layout) int {
	if totalPages < 1 {
		return 0
	}
	if layout == Single {
		return totalPages - 1
	}
	return totalPages / 2
}

// SpreadCount returns the number of spreads of a document
func SpreadCount(totalPages int, layout Layout) int {
	if totalPages < 1 {
		return 0
	}
	return LastSpread(totalPages, layout) + 1
}

// Relayout converts spreadIndex computed under from into the index under to
// that keeps the first visible page on screen.
func Relayout(spreadIndex, totalPages int, from, to Layout) int {
	pages := CurrentPages(spreadIndex, totalPages, from)
	if len(pages) == 0 {
		return 0
	}
	s, err := GoToPage(pages[0], totalPages, to)
	if err != nil {
		return 0
	}
	return s
}

// ThumbnailGroup is a labelled run of consecutive pages
type ThumbnailGroup struct {
	Label string
	Pages []int
}

// ThumbnailGroups splits the document into groups of size pages
func ThumbnailGroups(totalPages, size int) []ThumbnailGroup {
	if totalPages < 1 || size < 1 {
		return nil
	}
	groups := make([]ThumbnailGroup, 0, (totalPages+size-1)/size)
	for start := 1; start <= totalPages; start += size {
		end := min(start+size-1, totalPages)
		pages := make([]int, 0, end-start+1)
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
		groups = append(groups, ThumbnailGroup{
			Label: fmt.Sprintf("Pages %d-%d", start, end),
			Pages: pages,
		})
	}
	return groups
}

// FilterPages returns the pages whose number contains query. An empty query
// matches every page.
func FilterPages(totalPages int, query string) []int {
	query = strings.TrimSpace(query)
	var out []int
	for p := 1; p <= totalPages; p++ {
		if query == "" || strings.Contains(strconv.Itoa(p), query) {
			out = append(out, p)
		}
	}
	return out
}
