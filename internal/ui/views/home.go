package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/brahmand-t/internal/catalog"
	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// HomeView lists the issues of the catalog
type HomeView struct {
	deps Deps

	magazines []models.Magazine
	cursor    int
	offset    int // For scrolling

	// Filters
	searchMode   bool
	searchInput  textinput.Model
	category     string
	featuredOnly bool
	recentMode   bool

	// Dimensions
	width  int
	height int
}

// NewHomeView creates the home view
func NewHomeView(deps Deps) *HomeView {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search issues, topics..."
	searchInput.CharLimit = 100
	searchInput.Width = 40

	return &HomeView{
		deps:        deps,
		searchInput: searchInput,
		width:       80,
		height:      24,
	}
}

// CapturesInput reports whether keys go to the search field
func (v *HomeView) CapturesInput() bool {
	return v.searchMode
}

// Init implements View
func (v *HomeView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// Update implements View
func (v *HomeView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case CatalogChangedMsg:
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		if v.searchMode {
			switch msg.String() {
			case "esc":
				v.searchMode = false
				v.searchInput.Blur()
				return v, nil
			case "enter":
				v.searchMode = false
				v.searchInput.Blur()
				v.cursor, v.offset = 0, 0
				v.refresh()
				return v, nil
			default:
				var cmd tea.Cmd
				v.searchInput, cmd = v.searchInput.Update(msg)
				// Filter as the user types
				v.refresh()
				return v, cmd
			}
		}

		switch msg.String() {
		case "j", "down":
			v.moveCursor(1)
		case "k", "up":
			v.moveCursor(-1)
		case "g", "home":
			v.cursor = 0
			v.offset = 0
		case "G", "end":
			v.cursor = max(0, len(v.magazines)-1)
			v.updateOffset()
		case "ctrl+d", "pgdown":
			v.moveCursor(v.visibleLines() / 2)
		case "ctrl+u", "pgup":
			v.moveCursor(-v.visibleLines() / 2)
		case "/":
			v.searchMode = true
			v.searchInput.Focus()
			return v, textinput.Blink
		case "enter", "i":
			if m, ok := v.selected(); ok {
				return v, ShowDetail(m)
			}
		case "r":
			if m, ok := v.selected(); ok {
				return v, Open(m, models.ModeFlipbook, v.resumePage(m.ID))
			}
		case "p":
			if m, ok := v.selected(); ok {
				return v, Open(m, models.ModePDF, v.resumePage(m.ID))
			}
		case "c":
			// Continue the most recently read issue where it was left
			if v.deps.State != nil && len(v.deps.State.RecentlyRead) > 0 {
				last := v.deps.State.RecentlyRead[0]
				if m, ok := v.deps.Catalog.Get().GetByID(last.MagazineID); ok {
					mode := last.Mode
					if mode == "" {
						mode = models.ModeFlipbook
					}
					return v, Open(m, mode, last.LastPage)
				}
			}
		case "v":
			v.category = nextCategory(v.deps.Catalog.Get().Categories(), v.category)
			v.cursor, v.offset = 0, 0
			v.refresh()
		case "F":
			v.featuredOnly = !v.featuredOnly
			v.cursor, v.offset = 0, 0
			v.refresh()
		case "R":
			v.recentMode = !v.recentMode
			v.cursor, v.offset = 0, 0
			v.refresh()
		case "x":
			v.category = ""
			v.featuredOnly = false
			v.recentMode = false
			v.searchInput.SetValue("")
			v.cursor, v.offset = 0, 0
			v.refresh()
		case "T":
			newTheme := styles.NextTheme()
			if v.deps.State != nil {
				if err := v.deps.State.SetTheme(newTheme); err != nil {
					return v, SendError(fmt.Errorf("failed to save theme: %w", err))
				}
			}
			return v, NotifyThemeChanged(newTheme)
		}
	}

	return v, nil
}

// refresh rebuilds the list from the current catalog snapshot and filters
func (v *HomeView) refresh() {
	c := v.deps.Catalog.Get()
	if v.recentMode {
		v.magazines = recentlyRead(c, v.deps.State)
	} else {
		v.magazines = c.Search(catalog.Filter{
			Query:        v.searchInput.Value(),
			Category:     v.category,
			FeaturedOnly: v.featuredOnly,
		})
	}
	if v.cursor >= len(v.magazines) {
		v.cursor = max(0, len(v.magazines)-1)
	}
	v.updateOffset()
}

// recentlyRead returns the issues of the state file that still exist, most
// recent first
func recentlyRead(c *catalog.Catalog, st *config.State) []models.Magazine {
	if st == nil {
		return nil
	}
	var out []models.Magazine
	for _, id := range st.RecentlyReadIDs() {
		if m, ok := c.GetByID(id); ok {
			out = append(out, m)
		}
	}
	return out
}

func nextCategory(categories []string, current string) string {
	if current == "" {
		if len(categories) == 0 {
			return ""
		}
		return categories[0]
	}
	for i, c := range categories {
		if c == current && i+1 < len(categories) {
			return categories[i+1]
		}
	}
	return ""
}

func (v *HomeView) resumePage(id string) int {
	if v.deps.State == nil {
		return 0
	}
	return v.deps.State.LastPage(id)
}

func (v *HomeView) selected() (models.Magazine, bool) {
	if v.cursor < 0 || v.cursor >= len(v.magazines) {
		return models.Magazine{}, false
	}
	return v.magazines[v.cursor], true
}

// View implements View
func (v *HomeView) View() string {
	var b strings.Builder

	b.WriteString(v.renderHeader() + "\n")
	if hero := v.renderLatest(); hero != "" {
		b.WriteString(hero + "\n")
	}

	if v.searchMode {
		b.WriteString(styles.InputFieldFocused.Render(v.searchInput.View()) + "\n")
	}

	if len(v.magazines) == 0 {
		empty := "No issues match"
		if v.recentMode {
			empty = "Nothing read yet"
		}
		b.WriteString(lipgloss.Place(
			v.width,
			max(1, v.height-6),
			lipgloss.Center,
			lipgloss.Center,
			styles.MutedText.Render(empty),
		))
		b.WriteString("\n" + v.renderFooter())
		return b.String()
	}

	visible := v.visibleLines()
	for i := v.offset; i < min(v.offset+visible, len(v.magazines)); i++ {
		b.WriteString(v.renderIssueLine(v.magazines[i], i == v.cursor) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

// SetSize implements View
func (v *HomeView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.searchInput.Width = min(40, width-10)
}

func (v *HomeView) renderHeader() string {
	titleText := " Brahmand "
	switch {
	case v.recentMode:
		titleText = " Brahmand · Recently Read "
	case v.featuredOnly:
		titleText = " Brahmand · Featured "
	}
	left := styles.TitleBar.Render(titleText) + styles.MutedText.Render(" APOGEE Space Club")

	if v.category != "" {
		left += styles.SecondaryText.Render(" [" + v.category + "]")
	}
	if q := v.searchInput.Value(); q != "" {
		left += styles.SecondaryText.Render(fmt.Sprintf(" [Search: %s]", q))
	}

	right := styles.Help.Render(fmt.Sprintf(" %d of %d issues ", len(v.magazines), v.deps.Catalog.Get().Count()))

	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderLatest shows the newest issue above the list, as the landing page
// does
func (v *HomeView) renderLatest() string {
	if v.recentMode || v.searchInput.Value() != "" {
		return ""
	}
	latest := v.deps.Catalog.Get().Latest()
	line := styles.AccentText.Render(" Latest issue: ") + styles.IssueTitle.Render(latest.Title)
	if latest.Subtitle != "" {
		line += styles.MutedText.Render(" · " + latest.Subtitle)
	}
	return styles.TruncateText(line, v.width)
}

func (v *HomeView) renderIssueLine(m models.Magazine, selected bool) string {
	badge := ""
	if m.Featured {
		badge = styles.BadgeFeatured.Render("Featured") + " "
	}

	meta := m.Pages.String()
	if m.ReleaseDate != "" {
		meta += " · " + m.ReleaseDate
	}
	if v.deps.State != nil {
		if p := v.deps.State.LastPage(m.ID); p > 0 {
			meta += fmt.Sprintf(" · read to p.%d", p)
		}
	}

	line := m.Title
	if m.Subtitle != "" {
		line += " - " + m.Subtitle
	}
	maxWidth := v.width - 8 - lipgloss.Width(badge) - lipgloss.Width(meta)
	line = styles.TruncateText(line, maxWidth)

	if selected {
		return styles.ListItemSelected.Width(v.width).Render("▸ " + badge + line + "  " + meta)
	}
	return styles.ListItem.Render("  "+badge+line) + styles.MutedText.Render("  "+meta)
}

func (v *HomeView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" details"),
		styles.HelpKey.Render("r") + styles.Help.Render(" read"),
		styles.HelpKey.Render("p") + styles.Help.Render(" pdf"),
		styles.HelpKey.Render("/") + styles.Help.Render(" search"),
		styles.HelpKey.Render("v") + styles.Help.Render(" category"),
		styles.HelpKey.Render("R") + styles.Help.Render(" recent"),
		styles.HelpKey.Render("q") + styles.Help.Render(" quit"),
	}
	if v.deps.State != nil && len(v.deps.State.RecentlyRead) > 0 {
		help = append(help[:len(help)-1],
			styles.HelpKey.Render("c")+styles.Help.Render(" continue"),
			help[len(help)-1])
	}

	themeIndicator := styles.MutedText.Render(" [Theme: "+styles.CurrentTheme().Name+"] ") +
		styles.HelpKey.Render("T") + styles.Help.Render(" change")

	helpText := strings.Join(help, "  ")
	gap := max(0, v.width-lipgloss.Width(helpText)-lipgloss.Width(themeIndicator))
	return helpText + strings.Repeat(" ", gap) + themeIndicator
}

// moveCursor moves the cursor by delta
func (v *HomeView) moveCursor(delta int) {
	v.cursor = max(0, min(v.cursor+delta, len(v.magazines)-1))
	v.updateOffset()
}

// updateOffset ensures the cursor is visible
func (v *HomeView) updateOffset() {
	visible := v.visibleLines()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

// visibleLines returns the number of visible issue lines
func (v *HomeView) visibleLines() int {
	// Header, latest issue, footer and margins
	lines := v.height - 6
	if v.searchMode {
		lines -= 3
	}
	return max(1, lines)
}
