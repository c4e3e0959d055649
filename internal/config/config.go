package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "brahmand-t"
	configFileName = "config"
	envPrefix      = "BRAHMAND"

	// localConfigFile in the working directory takes precedence over the
	// user config directory
	localConfigFile = "brahmand-t.yaml"
)

// LogConfig controls the log file
type LogConfig struct {
	// Level is one of none, normal, debug
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
	// Mode is append or overwrite
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// ViewerConfig tunes the flipbook and PDF reader
type ViewerConfig struct {
	PreloadRadius   int  `mapstructure:"preload_radius" yaml:"preload_radius"`
	PreloadAttempts uint `mapstructure:"preload_attempts" yaml:"preload_attempts"`
	// SpreadMinWidth is the narrowest terminal, in columns, that shows two
	// pages side by side; narrower terminals also count as mobile
	SpreadMinWidth int  `mapstructure:"spread_min_width" yaml:"spread_min_width"`
	TabletMinWidth int  `mapstructure:"tablet_min_width" yaml:"tablet_min_width"`
	CachePages     int  `mapstructure:"cache_pages" yaml:"cache_pages"`
	ThumbnailGroup int  `mapstructure:"thumbnail_group" yaml:"thumbnail_group"`
	Bookmarks      bool `mapstructure:"bookmarks" yaml:"bookmarks"`
	Minimap        bool `mapstructure:"minimap" yaml:"minimap"`
	Thumbnails     bool `mapstructure:"thumbnails" yaml:"thumbnails"`
	// ImageProtocol is auto, kitty, iterm, sixel or none
	ImageProtocol string `mapstructure:"image_protocol" yaml:"image_protocol"`
}

// PDFConfig configures page rendering of PDFs
type PDFConfig struct {
	Renderer string `mapstructure:"renderer" yaml:"renderer"`
	DPI      int    `mapstructure:"dpi" yaml:"dpi"`
}

// Config holds the application settings
type Config struct {
	// Catalog is a YAML catalog file; empty uses the built-in catalog
	Catalog      string       `mapstructure:"catalog" yaml:"catalog"`
	LibraryDir   string       `mapstructure:"library_dir" yaml:"library_dir"`
	AssetBaseURL string       `mapstructure:"asset_base_url" yaml:"asset_base_url"`
	DownloadDir  string       `mapstructure:"download_dir" yaml:"download_dir"`
	CacheDir     string       `mapstructure:"cache_dir" yaml:"cache_dir"`
	Theme        string       `mapstructure:"theme" yaml:"theme"`
	Log          LogConfig    `mapstructure:"log" yaml:"log"`
	Viewer       ViewerConfig `mapstructure:"viewer" yaml:"viewer"`
	PDF          PDFConfig    `mapstructure:"pdf" yaml:"pdf"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		LibraryDir:   ".",
		AssetBaseURL: "",
		DownloadDir:  defaultDownloadDir(),
		CacheDir:     defaultCacheDir(),
		Theme:        "",
		Log: LogConfig{
			Level: "none",
			File:  filepath.Join(defaultCacheDir(), "brahmand-t.log"),
			Mode:  "append",
		},
		Viewer: ViewerConfig{
			PreloadRadius:   1,
			PreloadAttempts: 2,
			SpreadMinWidth:  96,
			TabletMinWidth:  128,
			CachePages:      24,
			ThumbnailGroup:  6,
			Bookmarks:       true,
			Minimap:         true,
			Thumbnails:      true,
			ImageProtocol:   "auto",
		},
		PDF: PDFConfig{
			Renderer: "pdftoppm",
			DPI:      110,
		},
	}
}

// Manager handles loading and hot-reloading configuration
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. An empty
// cfgFile searches ./brahmand-t.yaml and the user config directory.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file
func (cm *Manager) initViper(cfgFile string) error {
	v := cm.v
	d := DefaultConfig()

	// Every leaf needs a default for AutomaticEnv to see it on Unmarshal
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("library_dir", d.LibraryDir)
	v.SetDefault("asset_base_url", d.AssetBaseURL)
	v.SetDefault("download_dir", d.DownloadDir)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("viewer.preload_radius", d.Viewer.PreloadRadius)
	v.SetDefault("viewer.preload_attempts", d.Viewer.PreloadAttempts)
	v.SetDefault("viewer.spread_min_width", d.Viewer.SpreadMinWidth)
	v.SetDefault("viewer.tablet_min_width", d.Viewer.TabletMinWidth)
	v.SetDefault("viewer.cache_pages", d.Viewer.CachePages)
	v.SetDefault("viewer.thumbnail_group", d.Viewer.ThumbnailGroup)
	v.SetDefault("viewer.bookmarks", d.Viewer.Bookmarks)
	v.SetDefault("viewer.minimap", d.Viewer.Minimap)
	v.SetDefault("viewer.thumbnails", d.Viewer.Thumbnails)
	v.SetDefault("viewer.image_protocol", d.Viewer.ImageProtocol)
	v.SetDefault("pdf.renderer", d.PDF.Renderer)
	v.SetDefault("pdf.dpi", d.PDF.DPI)

	// Environment variables with BRAHMAND_ prefix, BRAHMAND_VIEWER_PRELOAD_RADIUS
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		if _, err := os.Stat(localConfigFile); err == nil {
			cfgFile = localConfigFile
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe)
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file the settings were read from, if any
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Set overrides a single key, as command line flags do
func (cm *Manager) Set(key string, value any) error {
	cm.v.Set(key, value)
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// OnChange registers a callback for config changes
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration
func (cm *Manager) WatchConfig() {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Validate rejects settings the viewers cannot work with
func (c *Config) Validate() error {
	switch {
	case c.Viewer.PreloadRadius < 0:
		return fmt.Errorf("viewer.preload_radius must not be negative")
	case c.Viewer.SpreadMinWidth <= 0:
		return fmt.Errorf("viewer.spread_min_width must be positive")
	case c.Viewer.TabletMinWidth < c.Viewer.SpreadMinWidth:
		return fmt.Errorf("viewer.tablet_min_width must not be below viewer.spread_min_width")
	case c.Viewer.ThumbnailGroup <= 0:
		return fmt.Errorf("viewer.thumbnail_group must be positive")
	case c.PDF.DPI <= 0:
		return fmt.Errorf("pdf.dpi must be positive")
	}
	switch c.Log.Level {
	case "none", "normal", "debug":
	default:
		return fmt.Errorf("log.level must be none, normal or debug, got %q", c.Log.Level)
	}
	switch c.Viewer.ImageProtocol {
	case "", "auto", "kitty", "iterm", "iterm2", "sixel", "none", "text":
	default:
		return fmt.Errorf("viewer.image_protocol %q is not supported", c.Viewer.ImageProtocol)
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# brahmand-t configuration
# Every key can be overridden from the environment, e.g. BRAHMAND_VIEWER_PRELOAD_RADIUS=2

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}

// Dir returns the per-user configuration directory
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, configDirName), nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), configDirName)
	}
	return filepath.Join(dir, configDirName)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
