package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Colors of the active theme
var (
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
)

// Styles of the active theme, rebuilt by ApplyTheme
var (
	TitleBar  lipgloss.Style
	StatusBar lipgloss.Style
	FooterBar lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	AccentText    lipgloss.Style
	ErrorStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style

	InputField        lipgloss.Style
	InputFieldFocused lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListItemDimmed   lipgloss.Style

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style
	SectionHead lipgloss.Style

	IssueTitle    lipgloss.Style
	IssueSubtitle lipgloss.Style
	IssueMeta     lipgloss.Style

	BadgeFeatured lipgloss.Style
	BadgeCategory lipgloss.Style

	// Page cells of the thumbnail grid and minimap
	PageCell         lipgloss.Style
	PageCellCurrent  lipgloss.Style
	PageCellSelected lipgloss.Style
	PageCellMarked   lipgloss.Style

	// PagePlaceholder frames a page that is loading or cannot be drawn
	PagePlaceholder lipgloss.Style
)

// TruncateText shortens s to width cells, adding an ellipsis when cut
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// Dimensions returns styled content with proper dimensions
func Dimensions(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height)
}
