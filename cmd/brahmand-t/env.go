package main

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/brahmand-t/internal/api"
	"github.com/justyntemme/brahmand-t/internal/catalog"
	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/internal/logging"
	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/version"
)

// env is what every command needs: settings, a logger, the catalog and asset
// access
type env struct {
	manager *config.Manager
	cfg     *config.Config
	log     *logging.Logger
	store   *catalog.Store
	locator pages.Locator
}

// setup loads the settings, applies the persistent flags and opens the
// catalog. console is the console log level: the TUI passes none.
func setup(console string) (*env, error) {
	manager, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}

	overrides := map[string]string{
		"catalog":   catalogFile,
		"log.level": logLevel,
		"log.file":  logFile,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := manager.Set(key, value); err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", flagName(key), err)
		}
	}
	cfg := manager.Get()

	log, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Destination: cfg.Log.File,
		Mode:        cfg.Log.Mode,
		Console:     console,
	})
	if err != nil {
		return nil, err
	}

	store, err := catalog.NewStore(cfg.Catalog, log.Logger)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to load catalog: %w", err), log.Close())
	}

	client := api.NewClient(cfg.AssetBaseURL)
	client.SetUserAgent(version.UserAgent())

	return &env{
		manager: manager,
		cfg:     cfg,
		log:     log,
		store:   store,
		locator: pages.Locator{
			LibraryDir: cfg.LibraryDir,
			CacheDir:   cfg.CacheDir,
			Client:     client,
			PDF:        pages.PDFOptions{Renderer: cfg.PDF.Renderer, DPI: cfg.PDF.DPI},
		},
	}, nil
}

func (e *env) close() {
	_ = e.log.Close()
}

func flagName(key string) string {
	switch key {
	case "log.level":
		return "log-level"
	case "log.file":
		return "log-file"
	}
	return key
}

// output writes data as yaml or json. It returns false for text output, which
// each command formats itself.
func output(w io.Writer, data any) (bool, error) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(data)
	case "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format: %s", outputFormat)
	}
}
