package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/catalog"
	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// ViewType represents different screens in the application
type ViewType int

const (
	ViewHome ViewType = iota
	ViewDetail
	ViewTeam
	ViewFlipbook
	ViewReader
	ViewDownload
)

// String returns the name of the view
func (v ViewType) String() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewDetail:
		return "Magazine"
	case ViewTeam:
		return "Team"
	case ViewFlipbook:
		return "Flipbook"
	case ViewReader:
		return "PDF Reader"
	case ViewDownload:
		return "Download"
	default:
		return "Unknown"
	}
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Deps is what the views share: the catalog, asset access, settings and the
// user's state file
type Deps struct {
	Catalog  *catalog.Store
	Locator  pages.Locator
	Settings *config.Config
	State    *config.State
	Protocol terminal.Protocol
	Log      *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Message types for inter-view communication

// OpenMagazineMsg opens an issue in a reading mode. Page 0 starts at the
// cover.
type OpenMagazineMsg struct {
	Magazine models.Magazine
	Mode     string
	Page     int
}

// ShowDetailMsg shows the detail page of an issue
type ShowDetailMsg struct {
	Magazine models.Magazine
}

// ShowTeamMsg shows the team page of an issue
type ShowTeamMsg struct {
	Magazine models.Magazine
}

// DownloadMsg starts saving the PDF of an issue
type DownloadMsg struct {
	Magazine models.Magazine
}

// CatalogChangedMsg is sent after the catalog file was reloaded
type CatalogChangedMsg struct {
	Catalog *catalog.Catalog
}

// ThemeChangedMsg is sent after the theme was switched
type ThemeChangedMsg struct {
	Theme string
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the current error
type ClearErrorMsg struct{}

// SwitchViewMsg requests a view switch
type SwitchViewMsg struct {
	View ViewType
}

// SendError creates an error message command
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// ClearError creates a command to clear errors
func ClearError() tea.Cmd {
	return func() tea.Msg {
		return ClearErrorMsg{}
	}
}

// SwitchTo creates a command to switch views
func SwitchTo(view ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: view}
	}
}

// Open creates a command that opens m in mode
func Open(m models.Magazine, mode string, page int) tea.Cmd {
	return func() tea.Msg {
		return OpenMagazineMsg{Magazine: m, Mode: mode, Page: page}
	}
}

// ShowDetail creates a command that shows the detail page of m
func ShowDetail(m models.Magazine) tea.Cmd {
	return func() tea.Msg {
		return ShowDetailMsg{Magazine: m}
	}
}

// NotifyThemeChanged creates a theme change notification
func NotifyThemeChanged(theme string) tea.Cmd {
	return func() tea.Msg {
		return ThemeChangedMsg{Theme: theme}
	}
}
