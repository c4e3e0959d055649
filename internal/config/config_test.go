package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// isolate points the user config directory at a temp dir so a developer's
// own settings never leak into tests
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Viewer.SpreadMinWidth != 96 || cfg.Viewer.TabletMinWidth != 128 {
		t.Errorf("unexpected thresholds %d/%d", cfg.Viewer.SpreadMinWidth, cfg.Viewer.TabletMinWidth)
	}
	if cfg.Viewer.PreloadAttempts != 2 {
		t.Errorf("expected 2 preload attempts, got %d", cfg.Viewer.PreloadAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("uses defaults without a config file", func(t *testing.T) {
		isolate(t)
		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Viewer.PreloadRadius != 1 {
			t.Errorf("expected preload radius 1, got %d", cfg.Viewer.PreloadRadius)
		}
		if cfg.PDF.Renderer != "pdftoppm" {
			t.Errorf("expected pdftoppm, got %s", cfg.PDF.Renderer)
		}
	})

	t.Run("loads from config file", func(t *testing.T) {
		isolate(t)
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		configContent := `
catalog: /srv/brahmand/catalog.yaml
asset_base_url: https://brahmand.example.org
viewer:
  preload_radius: 2
  minimap: false
pdf:
  dpi: 150
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Catalog != "/srv/brahmand/catalog.yaml" {
			t.Errorf("expected catalog path, got %s", cfg.Catalog)
		}
		if cfg.Viewer.PreloadRadius != 2 || cfg.Viewer.Minimap {
			t.Errorf("viewer settings not applied: %+v", cfg.Viewer)
		}
		if !cfg.Viewer.Bookmarks {
			t.Error("expected unset bookmarks flag to keep its default")
		}
		if cfg.PDF.DPI != 150 {
			t.Errorf("expected dpi 150, got %d", cfg.PDF.DPI)
		}
		if mgr.ConfigFile() != configFile {
			t.Errorf("expected %s, got %s", configFile, mgr.ConfigFile())
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("BRAHMAND_VIEWER_PRELOAD_RADIUS", "3")
		t.Setenv("BRAHMAND_THEME", "nord")

		mgr, err := NewManager("")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.Viewer.PreloadRadius != 3 {
			t.Errorf("expected radius 3 from env, got %d", cfg.Viewer.PreloadRadius)
		}
		if cfg.Theme != "nord" {
			t.Errorf("expected theme nord, got %s", cfg.Theme)
		}
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		isolate(t)
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(configFile, []byte("log:\n  level: loud\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for unknown log level")
		}
	})
}

func TestManager_Set(t *testing.T) {
	isolate(t)
	mgr, err := NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Set("catalog", "/tmp/other.yaml"); err != nil {
		t.Fatal(err)
	}
	if got := mgr.Get().Catalog; got != "/tmp/other.yaml" {
		t.Errorf("got %s", got)
	}
	if err := mgr.Set("pdf.dpi", 0); err == nil {
		t.Error("expected validation error for dpi 0")
	}
}

func TestManager_WatchConfig(t *testing.T) {
	isolate(t)
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("theme: default\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value
	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Theme)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("theme: dracula\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if v, _ := lastValue.Load().(string); v != "dracula" {
		t.Errorf("expected dracula, got %q", v)
	}
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default config does not load: %v", err)
	}
	if mgr.Get().Viewer.ThumbnailGroup != 6 {
		t.Errorf("expected thumbnail group 6, got %d", mgr.Get().Viewer.ThumbnailGroup)
	}
}
