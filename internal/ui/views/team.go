package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// TeamView lists the editorial team and featured visionaries of an issue
type TeamView struct {
	deps Deps

	magazine models.Magazine
	people   []person
	cursor   int
	offset   int

	// State
	status      string
	filterMode  bool
	filterInput textinput.Model

	// Dimensions
	width  int
	height int
}

// person is a row of the team page
type person struct {
	name      string
	role      string
	avatar    string
	visionary bool
}

// NewTeamView creates a new team view
func NewTeamView(deps Deps) *TeamView {
	filterInput := textinput.New()
	filterInput.Placeholder = "Filter by name or role..."
	filterInput.CharLimit = 60
	filterInput.Width = 40

	return &TeamView{
		deps:        deps,
		filterInput: filterInput,
		width:       80,
		height:      24,
	}
}

// SetMagazine sets the issue whose team is shown
func (v *TeamView) SetMagazine(m models.Magazine) {
	v.magazine = m
	v.cursor, v.offset = 0, 0
	v.status = ""
	v.filterInput.SetValue("")
	v.refresh()
}

// CapturesInput reports whether keys go to the filter field
func (v *TeamView) CapturesInput() bool {
	return v.filterMode
}

// Init implements View
func (v *TeamView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// Update implements View
func (v *TeamView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case CatalogChangedMsg:
		if fresh, ok := msg.Catalog.GetByID(v.magazine.ID); ok {
			v.magazine = fresh
			v.refresh()
		}
		return v, nil

	case statusMsg:
		v.status = msg.text
		return v, clearStatusAfter(3 * time.Second)

	case clearStatusMsg:
		v.status = ""
		return v, nil

	case tea.KeyMsg:
		// Filter mode
		if v.filterMode {
			switch msg.String() {
			case "esc":
				v.filterMode = false
				v.filterInput.Blur()
				v.filterInput.SetValue("")
				v.refresh()
				return v, nil
			case "enter":
				v.filterMode = false
				v.filterInput.Blur()
				return v, nil
			default:
				var cmd tea.Cmd
				v.filterInput, cmd = v.filterInput.Update(msg)
				v.cursor, v.offset = 0, 0
				v.refresh()
				return v, cmd
			}
		}

		// Normal mode
		switch msg.String() {
		case "j", "down":
			v.move(1)
		case "k", "up":
			v.move(-1)
		case "g", "home":
			v.cursor, v.offset = 0, 0
		case "G", "end":
			v.move(len(v.people))
		case "/":
			v.filterMode = true
			v.filterInput.Focus()
			return v, textinput.Blink
		case "o", "enter":
			// Show the portrait in the desktop image viewer
			if p, ok := v.selected(); ok && p.avatar != "" {
				return v, v.openAvatar(p)
			}
		}
	}

	return v, nil
}

func (v *TeamView) refresh() {
	q := strings.ToLower(strings.TrimSpace(v.filterInput.Value()))
	v.people = v.people[:0]
	add := func(p person) {
		if q == "" || strings.Contains(strings.ToLower(p.name), q) || strings.Contains(strings.ToLower(p.role), q) {
			v.people = append(v.people, p)
		}
	}
	for _, vis := range v.magazine.FeaturedVisionaries {
		add(person{name: vis.Name, role: vis.Title, avatar: vis.Avatar, visionary: true})
	}
	for _, m := range v.magazine.Team {
		add(person{name: m.Name, role: m.Role, avatar: m.Avatar})
	}
	if v.cursor >= len(v.people) {
		v.cursor = max(0, len(v.people)-1)
	}
}

func (v *TeamView) selected() (person, bool) {
	if v.cursor < 0 || v.cursor >= len(v.people) {
		return person{}, false
	}
	return v.people[v.cursor], true
}

func (v *TeamView) move(delta int) {
	v.cursor = max(0, min(v.cursor+delta, len(v.people)-1))
	visible := v.visibleLines()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

func (v *TeamView) visibleLines() int {
	lines := v.height - 7
	if v.filterMode {
		lines -= 3
	}
	return max(1, lines)
}

// openAvatar opens a portrait from the library, or from the asset host
func (v *TeamView) openAvatar(p person) tea.Cmd {
	deps := v.deps
	log := deps.logger()
	return func() tea.Msg {
		target := deps.Locator.LocalPath(p.avatar)
		if deps.Locator.Client != nil && deps.Locator.Client.BaseURL() != "" && !fileExists(target) {
			target = deps.Locator.Client.URL(p.avatar)
		}
		if err := terminal.OpenExternal(target); err != nil {
			log.Warn("open portrait failed", zap.String("target", target), zap.Error(err))
			return ErrorMsg{Err: err}
		}
		return statusMsg{text: "Opened portrait of " + p.name}
	}
}

// View implements View
func (v *TeamView) View() string {
	var b strings.Builder

	// Header
	header := styles.TitleBar.Render(" Team ") + " " + styles.IssueTitle.Render(v.magazine.Title)
	right := styles.Help.Render(fmt.Sprintf(" %d members ", len(v.magazine.Team)))
	gap := max(0, v.width-lipgloss.Width(header)-lipgloss.Width(right))
	b.WriteString(header + strings.Repeat(" ", gap) + right + "\n\n")

	if v.filterMode {
		b.WriteString(styles.InputFieldFocused.Render(v.filterInput.View()) + "\n")
	}

	// Empty state
	if len(v.people) == 0 {
		empty := "No team listed for this issue"
		if v.filterInput.Value() != "" {
			empty = "Nobody matches"
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

	section := ""
	end := min(v.offset+v.visibleLines(), len(v.people))
	for i := v.offset; i < end; i++ {
		p := v.people[i]
		head := "Editorial team"
		if p.visionary {
			head = "Featured visionaries"
		}
		if head != section {
			section = head
			b.WriteString(styles.SectionHead.Render(head) + "\n")
		}

		line := styles.TruncateText(p.name, max(10, v.width/2))
		if i == v.cursor {
			b.WriteString(styles.ListItemSelected.Render("▸ "+line+"  "+p.role) + "\n")
		} else {
			b.WriteString(styles.ListItem.Render("  "+line) + styles.MutedText.Render("  "+p.role) + "\n")
		}
	}

	if v.status != "" {
		b.WriteString("\n" + styles.SuccessStyle.Render(v.status))
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(v.renderFooter())

	return b.String()
}

func (v *TeamView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("/") + styles.Help.Render(" filter"),
		styles.HelpKey.Render("o") + styles.Help.Render(" portrait"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" back"),
	}
	return strings.Join(help, "  ")
}

// SetSize implements View
func (v *TeamView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.filterInput.Width = min(40, width-10)
}
