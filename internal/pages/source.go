// Package pages provides page images for the viewers: pre-rendered images
// from a local directory or the asset host, and pages rendered from PDFs.
package pages

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPage is returned for page numbers outside the document
var ErrNoPage = errors.New("no such page")

// Source yields encoded page images of one document
type Source interface {
	// PageCount returns the number of pages
	PageCount(ctx context.Context) (int, error)
	// Page returns the encoded image of page n (1-based)
	Page(ctx context.Context, n int) ([]byte, error)
}

// Sizer is implemented by sources that know the intrinsic page size, in
// points, without rendering
type Sizer interface {
	PageSize(ctx context.Context, n int) (width, height float64, err error)
}

// Scaler is implemented by sources that can render a page at a scale
type Scaler interface {
	PageAt(ctx context.Context, n int, scale float64) ([]byte, error)
}

func checkPage(n, total int) error {
	if n < 1 || n > total {
		return fmt.Errorf("%w: %d of %d", ErrNoPage, n, total)
	}
	return nil
}
