package pages

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/justyntemme/brahmand-t/internal/api"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func pageDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= n; i++ {
		writePNG(t, filepath.Join(dir, itoa(i)+".png"), 10+i, 20)
	}
	return dir
}

func itoa(i int) string {
	return string(rune('0'+i/10)) + string(rune('0'+i%10))
}

func TestDirSourceNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.png", "2.png", "1.png"} {
		writePNG(t, filepath.Join(dir, name), 4, 4)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "thumbs"), 0o755); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := src.PageCount(context.Background())
	if n != 3 {
		t.Fatalf("got %d pages, want 3", n)
	}
	want := []string{"1.png", "2.png", "10.png"}
	for i, f := range src.Files() {
		if filepath.Base(f) != want[i] {
			t.Errorf("page %d is %s, want %s", i+1, filepath.Base(f), want[i])
		}
	}
}

func TestDirSourcePage(t *testing.T) {
	src, err := NewDirSource(pageDir(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.Page(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 12 {
		t.Errorf("page 2 width %d, want 12", img.Bounds().Dx())
	}
	for _, n := range []int{0, 4} {
		if _, err := src.Page(context.Background(), n); !errors.Is(err, ErrNoPage) {
			t.Errorf("page %d: got %v, want ErrNoPage", n, err)
		}
	}
}

func TestDirSourceEmpty(t *testing.T) {
	if _, err := NewDirSource(t.TempDir()); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestCompose(t *testing.T) {
	left := imaging.New(40, 60, color.White)
	right := imaging.New(20, 30, color.White)
	out := Compose([]image.Image{left, right}, 4)
	if got := out.Bounds(); got.Dx() != 40+4+40 || got.Dy() != 60 {
		t.Errorf("got %v, want 84x60", got)
	}
	if Compose(nil, 4) != nil {
		t.Error("expected nil for no pages")
	}
	if Compose([]image.Image{left}, 4) != image.Image(left) {
		t.Error("single page should be returned unchanged")
	}
}

func TestTransform(t *testing.T) {
	img := imaging.New(100, 50, color.White)
	tests := []struct {
		name string
		view View
		w, h int
	}{
		{"identity", View{Zoom: 1}, 100, 50},
		{"rotate 90", View{Zoom: 1, Rotation: 90}, 50, 100},
		{"rotate 180", View{Zoom: 1, Rotation: 180}, 100, 50},
		{"zoom in", View{Zoom: 2, PanX: 0.5, PanY: 0.5}, 50, 25},
		{"zoom out", View{Zoom: 0.5}, 200, 100},
		{"zoom in rotated", View{Zoom: 2, Rotation: 270}, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Transform(img, tt.view).Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	img := imaging.New(100, 50, color.NRGBA{R: 255, A: 255})
	img = imaging.Paste(img, imaging.New(50, 50, color.NRGBA{B: 255, A: 255}), image.Pt(50, 0))

	if got := Window(img, 200, 200, 0.5, 0.5); got.Bounds().Dx() != 100 {
		t.Errorf("image smaller than the window was cropped to %v", got.Bounds())
	}

	right := Window(img, 50, 50, 1, 0)
	if b := right.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Fatalf("got %v, want 50x50", b)
	}
	if r, _, b, _ := right.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Errorf("pan right shows the left half")
	}
	left := Window(img, 50, 50, 0, 0)
	if r, _, _, _ := left.At(0, 0).RGBA(); r == 0 {
		t.Errorf("pan left shows the right half")
	}
}

func TestFitAndEncode(t *testing.T) {
	img := Fit(imaging.New(400, 200, color.White), 100, 100)
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("got %v, want 100x50", b)
	}
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data); err != nil {
		t.Errorf("encoded page does not decode: %v", err)
	}
}

func TestCacheSessions(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatal(err)
	}
	s1, s2 := uuid.New(), uuid.New()
	img := imaging.New(1, 1, color.White)

	c.Put(CacheKey{Session: s1, Page: 1}, img)
	if _, ok := c.Get(CacheKey{Session: s2, Page: 1}); ok {
		t.Error("page served across sessions")
	}
	c.Put(CacheKey{Session: s1, Page: 2}, img)
	c.Put(CacheKey{Session: s1, Page: 3}, img)
	if c.Contains(CacheKey{Session: s1, Page: 1}) {
		t.Error("least recently used page not evicted")
	}
	if c.Len() != 2 {
		t.Errorf("got %d entries, want 2", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Error("purge left entries")
	}
}

func TestRemoteSource(t *testing.T) {
	withManifest := http.NewServeMux()
	withManifest.HandleFunc("/pages/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page_count": 3, "extension": ".jpg"}`))
	})
	withManifest.HandleFunc("/pages/2.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	})
	srv := httptest.NewServer(withManifest)
	defer srv.Close()

	src := NewRemoteSource(api.NewClient(srv.URL), "/pages/", 40)
	n, err := src.PageCount(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("PageCount = %d, %v; want 3 from manifest", n, err)
	}
	data, err := src.Page(context.Background(), 2)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Errorf("Page(2) = %q, %v", data, err)
	}
	if _, err := src.Page(context.Background(), 4); !errors.Is(err, ErrNoPage) {
		t.Errorf("got %v, want ErrNoPage", err)
	}
}

func TestRemoteSourceWithoutManifest(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src := NewRemoteSource(api.NewClient(srv.URL), "/pages", 39)
	n, err := src.PageCount(context.Background())
	if err != nil || n != 39 {
		t.Errorf("PageCount = %d, %v; want catalog count 39", n, err)
	}
}

func TestLocatorPrefersPageImages(t *testing.T) {
	lib := t.TempDir()
	if err := os.MkdirAll(filepath.Join(lib, "Brahmand-APOGEE"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(lib, "Brahmand-APOGEE", "1.png"), 4, 4)

	l := Locator{LibraryDir: lib}
	m := models.Magazine{ID: "1", Title: "Brahmand Issue 1", File: "/Brahmand1.pdf", PagesDir: "/Brahmand-APOGEE", Pages: 40}
	src, err := l.Flipbook(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*DirSource); !ok {
		t.Errorf("got %T, want *DirSource", src)
	}

	m.PagesDir = "/missing"
	if err := os.WriteFile(filepath.Join(lib, "Brahmand1.pdf"), []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err = l.Flipbook(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if pdf, ok := src.(*PDFSource); !ok || pdf.Path() != filepath.Join(lib, "Brahmand1.pdf") {
		t.Errorf("got %T, want PDF source for the local file", src)
	}
}

func TestLocatorDownloadsRemotePDF(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Brahmand2.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 remote"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := Locator{LibraryDir: t.TempDir(), CacheDir: t.TempDir(), Client: api.NewClient(srv.URL)}
	m := models.Magazine{ID: "2", Title: "Brahmand Issue 2", File: "/Brahmand2.pdf", Pages: 66}

	path, err := l.PDFPath(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "brahmand-issue-2.pdf" {
		t.Errorf("cached as %s", path)
	}

	out := t.TempDir()
	dst, n, err := l.Export(context.Background(), m, out)
	if err != nil {
		t.Fatal(err)
	}
	if dst != filepath.Join(out, "brahmand-issue-2.pdf") || n != int64(len("%PDF-1.7 remote")) {
		t.Errorf("exported %s (%d bytes)", dst, n)
	}
}

func TestExportCopiesLocalPDF(t *testing.T) {
	lib := t.TempDir()
	if err := os.WriteFile(filepath.Join(lib, "Brahmand1.pdf"), []byte("%PDF-local"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := Locator{LibraryDir: lib}
	m := models.Magazine{ID: "1", Title: "Brahmand Issue 1", File: "/Brahmand1.pdf", Pages: 40}

	dst, n, err := l.Export(context.Background(), m, filepath.Join(t.TempDir(), "dl"))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "%PDF-local" || n != 10 {
		t.Errorf("copied %q (%d bytes)", data, n)
	}
}

func TestLocatorMissingAssets(t *testing.T) {
	l := Locator{LibraryDir: t.TempDir()}
	m := models.Magazine{ID: "1", Title: "x", File: "/none.pdf", Pages: 1}
	if _, err := l.PDFPath(context.Background(), m); err == nil {
		t.Error("expected error without local file or asset host")
	}
}

func TestRendererAvailable(t *testing.T) {
	if RendererAvailable("brahmand-no-such-renderer") {
		t.Error("nonexistent renderer reported available")
	}
}
