package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Brahmand-APOGEE/3.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page-three"))
	})
	mux.HandleFunc("/Brahmand-APOGEE/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page_count": 39, "extension": "png"}`))
	})
	mux.HandleFunc("/Brahmand1.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 fake"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "disk on fire"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestURL(t *testing.T) {
	c := NewClient("https://example.org/assets/")
	tests := map[string]string{
		"/Brahmand1.pdf":            "https://example.org/assets/Brahmand1.pdf",
		"team/a.png":                "https://example.org/assets/team/a.png",
		"https://cdn.example.org/x": "https://cdn.example.org/x",
	}
	for in, want := range tests {
		if got := c.URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)

	data, err := c.Fetch(context.Background(), "/Brahmand-APOGEE/3.png")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "page-three" {
		t.Errorf("got %q", data)
	}

	_, err = c.Fetch(context.Background(), "/Brahmand-APOGEE/99.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	_, err = c.Fetch(context.Background(), "/broken")
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("got %v, want server error message", err)
	}
}

func TestManifest(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)

	m, err := c.Manifest(context.Background(), "/Brahmand-APOGEE/")
	if err != nil {
		t.Fatal(err)
	}
	if m.PageCount != 39 || m.Extension != "png" {
		t.Errorf("got %+v", m)
	}
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)
	dst := filepath.Join(t.TempDir(), "out", "brahmand-issue-1.pdf")

	n, err := c.Download(context.Background(), "/Brahmand1.pdf", dst)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(data)) != n || !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("downloaded %d bytes: %q", n, data)
	}
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL)
	dir := t.TempDir()
	dst := filepath.Join(dir, "missing.pdf")

	if _, err := c.Download(context.Background(), "/nope.pdf", dst); err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("left files behind: %v", entries)
	}
}

func TestNoBaseURL(t *testing.T) {
	c := NewClient("")
	if _, err := c.Fetch(context.Background(), "/Brahmand1.pdf"); err == nil {
		t.Fatal("expected error without base URL")
	}
}
