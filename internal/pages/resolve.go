package pages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"

	"github.com/justyntemme/brahmand-t/internal/api"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// Locator finds the assets of a magazine, locally under LibraryDir first and
// then on the asset host
type Locator struct {
	LibraryDir string
	CacheDir   string
	Client     *api.Client
	PDF        PDFOptions
}

// LocalPath maps a catalog asset path onto the library directory
func (l Locator) LocalPath(asset string) string {
	if asset == "" {
		return ""
	}
	if filepath.IsAbs(asset) {
		if _, err := os.Stat(asset); err == nil {
			return asset
		}
	}
	return filepath.Join(l.LibraryDir, filepath.FromSlash(strings.TrimLeft(asset, "/")))
}

func (l Locator) remote() bool {
	return l.Client != nil && l.Client.BaseURL() != ""
}

// Flipbook returns the page source for the image flipbook. Pre-rendered page
// images are preferred; without them the pages are rendered from the PDF.
func (l Locator) Flipbook(ctx context.Context, m models.Magazine) (Source, error) {
	if m.PagesDir != "" {
		dir := l.LocalPath(m.PagesDir)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return NewDirSource(dir)
		}
		if l.remote() {
			return NewRemoteSource(l.Client, m.PagesDir, m.TotalPages()), nil
		}
	}
	if m.File == "" {
		return nil, fmt.Errorf("magazine %s: page images not found and no PDF", m.ID)
	}
	path, err := l.PDFPath(ctx, m)
	if err != nil {
		return nil, err
	}
	return NewPDFSource(path, l.PDF), nil
}

// PDFPath returns a local path of the magazine PDF, fetching it into the
// cache directory when it only exists on the asset host
func (l Locator) PDFPath(ctx context.Context, m models.Magazine) (string, error) {
	if m.File == "" {
		return "", fmt.Errorf("magazine %s has no PDF", m.ID)
	}
	local := l.LocalPath(m.File)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if !l.remote() {
		return "", fmt.Errorf("magazine %s: %s not found", m.ID, local)
	}

	cached := filepath.Join(l.CacheDir, "pdf", FileName(m))
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}
	if _, err := l.Client.Download(ctx, m.File, cached); err != nil {
		return "", err
	}
	return cached, nil
}

// FileName is the name a downloaded issue is saved under
func FileName(m models.Magazine) string {
	name := slug.Make(m.Title)
	if name == "" {
		name = "brahmand-" + slug.Make(m.ID)
	}
	return name + ".pdf"
}

// Export saves the magazine PDF into dir and returns the written path and
// size. A local PDF is copied; a remote one is downloaded.
func (l Locator) Export(ctx context.Context, m models.Magazine, dir string) (string, int64, error) {
	if m.File == "" {
		return "", 0, fmt.Errorf("magazine %s has no PDF", m.ID)
	}
	dst := filepath.Join(dir, FileName(m))

	local := l.LocalPath(m.File)
	if _, err := os.Stat(local); err == nil {
		n, err := copyFile(local, dst)
		return dst, n, err
	}
	if !l.remote() {
		return "", 0, fmt.Errorf("magazine %s: %s not found", m.ID, local)
	}
	n, err := l.Client.Download(ctx, m.File, dst)
	return dst, n, err
}

func copyFile(src, dst string) (n int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create download directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	n, err = io.Copy(out, in)
	if err != nil {
		return 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return n, nil
}
