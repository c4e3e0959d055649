package styles

import "github.com/charmbracelet/lipgloss"

// Theme represents a color scheme for the application
type Theme struct {
	Name        string
	Description string

	// Core colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	// UI element colors
	Border        lipgloss.Color
	Selection     lipgloss.Color
	SelectionText lipgloss.Color
	Featured      lipgloss.Color
	FeaturedText  lipgloss.Color
}

// Built-in themes
var (
	// CosmosTheme is the default, after the magazine's night-sky palette
	CosmosTheme = Theme{
		Name:          "cosmos",
		Description:   "Deep space (default)",
		Primary:       lipgloss.Color("#3B82F6"),
		Secondary:     lipgloss.Color("#60A5FA"),
		Accent:        lipgloss.Color("#A855F7"),
		Background:    lipgloss.Color("#030712"),
		Foreground:    lipgloss.Color("#F9FAFB"),
		Success:       lipgloss.Color("#10B981"),
		Warning:       lipgloss.Color("#FBBF24"),
		Error:         lipgloss.Color("#EF4444"),
		Muted:         lipgloss.Color("#6B7280"),
		Border:        lipgloss.Color("#1F2937"),
		Selection:     lipgloss.Color("#1D4ED8"),
		SelectionText: lipgloss.Color("#F9FAFB"),
		Featured:      lipgloss.Color("#FBBF24"),
		FeaturedText:  lipgloss.Color("#030712"),
	}

	// DarkTheme is the neutral dark theme
	DarkTheme = Theme{
		Name:          "dark",
		Description:   "Dark theme",
		Primary:       lipgloss.Color("#7C3AED"),
		Secondary:     lipgloss.Color("#06B6D4"),
		Accent:        lipgloss.Color("#F472B6"),
		Background:    lipgloss.Color("#1F2937"),
		Foreground:    lipgloss.Color("#F9FAFB"),
		Success:       lipgloss.Color("#10B981"),
		Warning:       lipgloss.Color("#F59E0B"),
		Error:         lipgloss.Color("#EF4444"),
		Muted:         lipgloss.Color("#6B7280"),
		Border:        lipgloss.Color("#374151"),
		Selection:     lipgloss.Color("#7C3AED"),
		SelectionText: lipgloss.Color("#F9FAFB"),
		Featured:      lipgloss.Color("#F59E0B"),
		FeaturedText:  lipgloss.Color("#1F2937"),
	}

	// LightTheme is a light color scheme
	LightTheme = Theme{
		Name:          "light",
		Description:   "Light theme",
		Primary:       lipgloss.Color("#2563EB"),
		Secondary:     lipgloss.Color("#0891B2"),
		Accent:        lipgloss.Color("#9333EA"),
		Background:    lipgloss.Color("#FFFFFF"),
		Foreground:    lipgloss.Color("#1F2937"),
		Success:       lipgloss.Color("#059669"),
		Warning:       lipgloss.Color("#D97706"),
		Error:         lipgloss.Color("#DC2626"),
		Muted:         lipgloss.Color("#9CA3AF"),
		Border:        lipgloss.Color("#E5E7EB"),
		Selection:     lipgloss.Color("#2563EB"),
		SelectionText: lipgloss.Color("#FFFFFF"),
		Featured:      lipgloss.Color("#D97706"),
		FeaturedText:  lipgloss.Color("#FFFFFF"),
	}

	// NordTheme is based on the Nord color palette
	NordTheme = Theme{
		Name:          "nord",
		Description:   "Nord theme",
		Primary:       lipgloss.Color("#88C0D0"),
		Secondary:     lipgloss.Color("#81A1C1"),
		Accent:        lipgloss.Color("#B48EAD"),
		Background:    lipgloss.Color("#2E3440"),
		Foreground:    lipgloss.Color("#ECEFF4"),
		Success:       lipgloss.Color("#A3BE8C"),
		Warning:       lipgloss.Color("#EBCB8B"),
		Error:         lipgloss.Color("#BF616A"),
		Muted:         lipgloss.Color("#4C566A"),
		Border:        lipgloss.Color("#3B4252"),
		Selection:     lipgloss.Color("#88C0D0"),
		SelectionText: lipgloss.Color("#2E3440"),
		Featured:      lipgloss.Color("#EBCB8B"),
		FeaturedText:  lipgloss.Color("#2E3440"),
	}

	// GruvboxTheme is based on the Gruvbox color scheme
	GruvboxTheme = Theme{
		Name:          "gruvbox",
		Description:   "Gruvbox dark theme",
		Primary:       lipgloss.Color("#D79921"),
		Secondary:     lipgloss.Color("#458588"),
		Accent:        lipgloss.Color("#B16286"),
		Background:    lipgloss.Color("#282828"),
		Foreground:    lipgloss.Color("#EBDBB2"),
		Success:       lipgloss.Color("#98971A"),
		Warning:       lipgloss.Color("#D79921"),
		Error:         lipgloss.Color("#CC241D"),
		Muted:         lipgloss.Color("#928374"),
		Border:        lipgloss.Color("#3C3836"),
		Selection:     lipgloss.Color("#D79921"),
		SelectionText: lipgloss.Color("#282828"),
		Featured:      lipgloss.Color("#FABD2F"),
		FeaturedText:  lipgloss.Color("#282828"),
	}

	// BuiltinThemes is a list of all available built-in themes
	BuiltinThemes = []Theme{
		CosmosTheme,
		DarkTheme,
		LightTheme,
		NordTheme,
		GruvboxTheme,
	}

	// currentTheme holds the active theme
	currentTheme = CosmosTheme
)

// GetTheme returns a theme by name, or the default theme if not found
func GetTheme(name string) Theme {
	for _, t := range BuiltinThemes {
		if t.Name == name {
			return t
		}
	}
	return CosmosTheme
}

// GetThemeNames returns a list of all available theme names
func GetThemeNames() []string {
	names := make([]string, len(BuiltinThemes))
	for i, t := range BuiltinThemes {
		names[i] = t.Name
	}
	return names
}

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetCurrentTheme sets the active theme by name
func SetCurrentTheme(name string) {
	currentTheme = GetTheme(name)
	ApplyTheme(currentTheme)
}

// NextTheme cycles to the next theme and returns its name
func NextTheme() string {
	for i, t := range BuiltinThemes {
		if t.Name == currentTheme.Name {
			next := BuiltinThemes[(i+1)%len(BuiltinThemes)]
			SetCurrentTheme(next.Name)
			return next.Name
		}
	}
	return currentTheme.Name
}

// ApplyTheme updates all global styles to use the given theme's colors
func ApplyTheme(theme Theme) {
	Primary = theme.Primary
	Secondary = theme.Secondary
	Accent = theme.Accent
	Success = theme.Success
	Warning = theme.Warning
	Error = theme.Error
	Muted = theme.Muted
	Background = theme.Background
	Foreground = theme.Foreground
	Border = theme.Border

	TitleBar = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Background(theme.Primary).
		Padding(0, 1).
		Bold(true)

	StatusBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 1)

	FooterBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border)

	Help = lipgloss.NewStyle().
		Foreground(theme.Muted)

	HelpKey = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)

	MutedText = lipgloss.NewStyle().
		Foreground(theme.Muted)

	SecondaryText = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	AccentText = lipgloss.NewStyle().
		Foreground(theme.Accent)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true).
		Padding(0, 1)

	InputField = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	InputFieldFocused = InputField.
		BorderForeground(theme.Primary)

	ListItem = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Padding(0, 2)

	ListItemSelected = lipgloss.NewStyle().
		Foreground(theme.SelectionText).
		Background(theme.Selection).
		Padding(0, 2).
		Bold(true)

	ListItemDimmed = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 2)

	DialogTitle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginBottom(1)

	SectionHead = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)

	IssueTitle = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Bold(true)

	IssueSubtitle = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	IssueMeta = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	BadgeFeatured = lipgloss.NewStyle().
		Foreground(theme.FeaturedText).
		Background(theme.Featured).
		Padding(0, 1).
		Bold(true)

	BadgeCategory = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Border(lipgloss.NormalBorder(), false, true).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	PageCell = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Width(5).
		Align(lipgloss.Center)

	PageCellCurrent = PageCell.
		Foreground(theme.SelectionText).
		Background(theme.Primary).
		Bold(true)

	PageCellSelected = PageCell.
		Foreground(theme.SelectionText).
		Background(theme.Selection).
		Underline(true)

	PageCellMarked = PageCell.
		Foreground(theme.Warning).
		Bold(true)

	PagePlaceholder = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Align(lipgloss.Center, lipgloss.Center)
}

func init() {
	ApplyTheme(CosmosTheme)
}
