package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrRendererMissing is returned when the PDF rasterizer is not installed
var ErrRendererMissing = errors.New("pdf renderer not found")

// DefaultRenderer is the poppler rasterizer used to draw PDF pages
const DefaultRenderer = "pdftoppm"

// DefaultDPI is the resolution of a page rendered at scale 1
const DefaultDPI = 110

// PDFOptions configures a PDFSource
type PDFOptions struct {
	Renderer string
	DPI      int
}

// PDFSource renders the pages of a local PDF. Page count and page sizes are
// read with pdfcpu; page surfaces are drawn by pdftoppm.
type PDFSource struct {
	path     string
	renderer string
	dpi      int
	conf     *model.Configuration

	mu     sync.Mutex
	loaded bool
	dims   []types.Dim
}

// NewPDFSource creates a source for the PDF at path
func NewPDFSource(path string, opts PDFOptions) *PDFSource {
	if opts.Renderer == "" {
		opts.Renderer = DefaultRenderer
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFSource{
		path:     path,
		renderer: opts.Renderer,
		dpi:      opts.DPI,
		conf:     conf,
	}
}

// Path returns the PDF file
func (s *PDFSource) Path() string { return s.path }

// load reads page count and dimensions once
func (s *PDFSource) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, s.conf)
	if err != nil {
		return fmt.Errorf("failed to get page count for %s: %w", s.path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	dims, err := api.PageDims(f, s.conf)
	if err != nil {
		return fmt.Errorf("failed to get page sizes for %s: %w", s.path, err)
	}
	if len(dims) != count {
		return fmt.Errorf("%s: %d page sizes for %d pages", s.path, len(dims), count)
	}
	s.dims = dims
	s.loaded = true
	return nil
}

// PageCount implements Source
func (s *PDFSource) PageCount(context.Context) (int, error) {
	if err := s.load(); err != nil {
		return 0, err
	}
	return len(s.dims), nil
}

// PageSize implements Sizer
func (s *PDFSource) PageSize(_ context.Context, n int) (float64, float64, error) {
	if err := s.load(); err != nil {
		return 0, 0, err
	}
	if err := checkPage(n, len(s.dims)); err != nil {
		return 0, 0, err
	}
	d := s.dims[n-1]
	return d.Width, d.Height, nil
}

// Page implements Source
func (s *PDFSource) Page(ctx context.Context, n int) ([]byte, error) {
	return s.PageAt(ctx, n, 1)
}

// PageAt implements Scaler. The page is rendered at the base resolution
// multiplied by scale.
func (s *PDFSource) PageAt(ctx context.Context, n int, scale float64) ([]byte, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	if err := checkPage(n, len(s.dims)); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	return s.render(ctx, n, int(math.Round(float64(s.dpi)*scale)))
}

// render draws a single page with pdftoppm
func (s *PDFSource) render(ctx context.Context, n, dpi int) ([]byte, error) {
	bin, err := exec.LookPath(s.renderer)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRendererMissing, s.renderer)
	}

	tmpDir, err := os.MkdirTemp("", "brahmand-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// -singlefile writes <prefix>.png without a page suffix
	prefix := filepath.Join(tmpDir, "page")
	page := strconv.Itoa(n)
	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-f", page,
		"-l", page,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		s.path,
		prefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (output: %s)", s.renderer, err, string(output))
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("%s did not create expected output: %w", s.renderer, err)
	}
	return data, nil
}

// RendererAvailable reports whether the rasterizer can be found on PATH
func RendererAvailable(renderer string) bool {
	if renderer == "" {
		renderer = DefaultRenderer
	}
	_, err := exec.LookPath(renderer)
	return err == nil
}
