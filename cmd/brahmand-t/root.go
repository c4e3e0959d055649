package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/catalog"
	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/internal/ui"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/internal/ui/views"
	"github.com/justyntemme/brahmand-t/internal/version"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

var (
	cfgFile      string
	catalogFile  string
	logLevel     string
	logFile      string
	outputFormat string

	openID  string
	openPDF bool
	page    int
)

var rootCmd = &cobra.Command{
	Use:   "brahmand-t",
	Short: "Read Brahmand magazine issues in the terminal",
	Long: `brahmand-t is a terminal reader for the Brahmand magazine.

Browse the issue catalog, read issues as a page-turning flipbook or in a PDF
reader, and download the PDF of any issue. Page images are drawn with the
Kitty, iTerm2 or Sixel graphics protocol when the terminal supports one.

Examples:
  brahmand-t                       # Browse the catalog
  brahmand-t --open brahmand-2     # Open an issue as a flipbook
  brahmand-t --open brahmand-2 --pdf --page 12
  brahmand-t list -o json`,
	Version:      version.GitRelease,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./brahmand-t.yaml or the user config directory)",
	)
	rootCmd.PersistentFlags().StringVar(
		&catalogFile, "catalog", "", "catalog file (default: the built-in catalog)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: none, normal or debug",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFile, "log-file", "", "log file",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)

	rootCmd.Flags().StringVar(&openID, "open", "", "open an issue on start; unknown ids open the latest issue")
	rootCmd.Flags().BoolVar(&openPDF, "pdf", false, "open the issue in the PDF reader instead of the flipbook")
	rootCmd.Flags().IntVar(&page, "page", 0, "page to open the issue at (default: where you left off)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(configCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; logs only go to the file
	e, err := setup("none")
	if err != nil {
		return err
	}
	defer e.close()
	log := e.log.Logger

	state, err := config.LoadState()
	if err != nil {
		log.Warn("failed to load state, starting fresh", zap.Error(err))
		state = &config.State{}
	}

	theme := e.cfg.Theme
	if state.Theme != "" {
		theme = state.Theme
	}
	styles.SetCurrentTheme(theme)

	protocol, err := terminal.ParseProtocol(e.cfg.Viewer.ImageProtocol)
	if err != nil {
		return err
	}
	log.Info("starting",
		zap.String("version", version.GitRelease),
		zap.String("config", e.manager.ConfigFile()),
		zap.String("catalog", e.store.Path()),
		zap.Stringer("protocol", protocol))

	app := ui.NewApp(views.Deps{
		Catalog:  e.store,
		Locator:  e.locator,
		Settings: e.cfg,
		State:    state,
		Protocol: protocol,
		Log:      log,
	})

	if cmd.Flags().Changed("open") {
		m, ok := e.store.Get().Resolve(openID)
		if !ok {
			log.Warn("unknown issue, opening the latest", zap.String("id", openID), zap.String("opened", m.ID))
		}
		mode := models.ModeFlipbook
		if openPDF {
			mode = models.ModePDF
		}
		start := page
		if !cmd.Flags().Changed("page") {
			start = state.LastPage(m.ID)
		}
		app.OpenOnStart(m, mode, start)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	e.store.OnChange(func(c *catalog.Catalog) {
		p.Send(views.CatalogChangedMsg{Catalog: c})
	})
	if err := e.store.Watch(cmd.Context()); err != nil {
		log.Warn("catalog will not be reloaded on change", zap.Error(err))
	}
	e.manager.OnChange(func(c *config.Config) {
		log.Info("settings changed; restart to apply them", zap.String("config", e.manager.ConfigFile()))
	})
	e.manager.WatchConfig()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
