package pages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
)

// sniffLen is enough for filetype to recognise every image format
const sniffLen = 262

// DirSource serves the images of a local directory, one file per page,
// ordered naturally by name (2.png before 10.png)
type DirSource struct {
	dir   string
	files []string
}

// NewDirSource scans dir for images. Files that are not images are skipped.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read page directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ok, err := isImage(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no page images in %s", dir)
	}
	sort.Sort(natural.StringSlice(names))

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	return &DirSource{dir: dir, files: files}, nil
}

// Dir returns the scanned directory
func (s *DirSource) Dir() string { return s.dir }

// Files returns the page files in page order
func (s *DirSource) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// PageCount implements Source
func (s *DirSource) PageCount(context.Context) (int, error) {
	return len(s.files), nil
}

// Page implements Source
func (s *DirSource) Page(_ context.Context, n int) ([]byte, error) {
	if err := checkPage(n, len(s.files)); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.files[n-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", n, err)
	}
	return data, nil
}

func isImage(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return filetype.IsImage(head[:n]), nil
}
