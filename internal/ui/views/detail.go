package views

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/zoom"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// teamPreview is the number of team members listed on the detail page
const teamPreview = 4

// DetailView displays everything the catalog knows about an issue
type DetailView struct {
	deps Deps

	magazine *models.Magazine
	viewport viewport.Model
	status   string

	// Dimensions
	width  int
	height int
}

// NewDetailView creates a new detail view
func NewDetailView(deps Deps) *DetailView {
	return &DetailView{
		deps:     deps,
		viewport: viewport.New(76, 18),
		width:    80,
		height:   24,
	}
}

// SetMagazine sets the issue to display
func (v *DetailView) SetMagazine(m models.Magazine) {
	v.magazine = &m
	v.status = ""
	v.viewport.GotoTop()
	v.viewport.SetContent(v.renderBody())
}

// Magazine returns the displayed issue
func (v *DetailView) Magazine() (models.Magazine, bool) {
	if v.magazine == nil {
		return models.Magazine{}, false
	}
	return *v.magazine, true
}

// Init implements View
func (v *DetailView) Init() tea.Cmd {
	if v.magazine != nil {
		v.viewport.SetContent(v.renderBody())
	}
	return nil
}

// Update implements View
func (v *DetailView) Update(msg tea.Msg) (View, tea.Cmd) {
	if v.magazine == nil {
		return v, nil
	}
	m := *v.magazine

	switch msg := msg.(type) {
	case CatalogChangedMsg:
		// The issue may have been edited or removed
		if fresh, ok := msg.Catalog.GetByID(m.ID); ok {
			v.magazine = &fresh
			v.viewport.SetContent(v.renderBody())
		}
		return v, nil

	case statusMsg:
		v.status = msg.text
		return v, clearStatusAfter(3 * time.Second)

	case clearStatusMsg:
		v.status = ""
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "r":
			return v, Open(m, models.ModeFlipbook, v.resumePage())
		case "p":
			return v, Open(m, models.ModePDF, v.resumePage())
		case "t":
			return v, func() tea.Msg { return ShowTeamMsg{Magazine: m} }
		case "d":
			return v, func() tea.Msg { return DownloadMsg{Magazine: m} }
		case "o":
			return v, openExternally(v.deps, m, v.device())
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *DetailView) resumePage() int {
	if v.deps.State == nil || v.magazine == nil {
		return 0
	}
	return v.deps.State.LastPage(v.magazine.ID)
}

func (v *DetailView) device() zoom.DeviceMode {
	if v.deps.Settings == nil {
		return zoom.DeviceForWidth(v.width, 96, 128)
	}
	return zoom.DeviceForWidth(v.width, v.deps.Settings.Viewer.SpreadMinWidth, v.deps.Settings.Viewer.TabletMinWidth)
}

// View implements View
func (v *DetailView) View() string {
	if v.magazine == nil {
		return "No issue selected"
	}

	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")
	b.WriteString(v.viewport.View() + "\n")
	if v.status != "" {
		b.WriteString(styles.SuccessStyle.Render(v.status) + "\n")
	}
	b.WriteString(v.renderFooter())
	return b.String()
}

// SetSize implements View
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(3, height-4)
	if v.magazine != nil {
		v.viewport.SetContent(v.renderBody())
	}
}

func (v *DetailView) renderHeader() string {
	m := v.magazine
	left := styles.TitleBar.Render(" "+m.Title+" ") + " "
	if m.Featured {
		left += styles.BadgeFeatured.Render("Featured") + " "
	}
	if m.Category != "" {
		left += styles.BadgeCategory.Render(m.Category)
	}
	right := styles.Help.Render(fmt.Sprintf(" %d%% ", int(v.viewport.ScrollPercent()*100)))
	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderBody renders the scrollable part of the page
func (v *DetailView) renderBody() string {
	m := v.magazine
	textWidth := max(20, min(v.width-4, 100))
	para := lipgloss.NewStyle().Width(textWidth)

	var b strings.Builder
	if m.Subtitle != "" {
		b.WriteString(styles.IssueSubtitle.Render(m.Subtitle) + "\n\n")
	}

	b.WriteString(v.renderField("Pages", m.Pages.String()))
	b.WriteString(v.renderField("Released", m.ReleaseDate))
	b.WriteString(v.renderField("Publisher", m.Publisher))
	b.WriteString(v.renderField("Language", m.Language))
	b.WriteString(v.renderField("ISSN", m.ISSN))
	b.WriteString(v.renderField("Read time", m.ReadTime))
	b.WriteString(v.renderField("Size", v.fileSize()))
	b.WriteString(v.renderField("Progress", v.progress()))

	if m.Description != "" {
		b.WriteString("\n" + para.Render(m.Description) + "\n")
	}

	if len(m.Highlights) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("Highlights") + "\n")
		for _, h := range m.Highlights {
			b.WriteString(para.Render("  • "+h) + "\n")
		}
	}

	if len(m.TableOfContents) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("In this issue") + "\n")
		for i, entry := range m.TableOfContents {
			b.WriteString(fmt.Sprintf("  %2d. %s\n", i+1, entry))
		}
	}

	if len(m.KeyArticles) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("Key articles") + "\n")
		for _, a := range m.KeyArticles {
			b.WriteString("  " + styles.IssueTitle.Render(a.Title) + "\n")
			if a.Description != "" {
				b.WriteString(para.Render("    "+a.Description) + "\n")
			}
		}
	}

	if len(m.Topics) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("Topics") + "\n")
		b.WriteString(para.Render("  "+strings.Join(m.Topics, " · ")) + "\n")
	}

	if len(m.FeaturedVisionaries) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("Featured visionaries") + "\n")
		for _, p := range m.FeaturedVisionaries {
			b.WriteString("  " + styles.IssueTitle.Render(p.Name) + styles.MutedText.Render("  "+p.Title) + "\n")
		}
	}

	if len(m.Team) > 0 {
		b.WriteString("\n" + styles.SectionHead.Render("Team") + "\n")
		for i, member := range m.Team {
			if i == teamPreview {
				b.WriteString(styles.MutedText.Render(fmt.Sprintf("  …and %d more, press t for the full team", len(m.Team)-teamPreview)) + "\n")
				break
			}
			b.WriteString("  " + member.Name + styles.MutedText.Render("  "+member.Role) + "\n")
		}
	}

	return b.String()
}

// renderField renders a label-value pair, nothing for empty values
func (v *DetailView) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Width(12)
	return labelStyle.Render(label+":") + " " + value + "\n"
}

// fileSize reports the size of the local PDF, falling back to the size the
// catalog advertises
func (v *DetailView) fileSize() string {
	m := v.magazine
	if local := v.deps.Locator.LocalPath(m.File); local != "" {
		if fi, err := os.Stat(local); err == nil && !fi.IsDir() {
			return humanize.Bytes(uint64(fi.Size())) + " (local)"
		}
	}
	return m.DownloadSize
}

func (v *DetailView) progress() string {
	if v.deps.State == nil {
		return ""
	}
	for _, e := range v.deps.State.RecentlyRead {
		if e.MagazineID != v.magazine.ID {
			continue
		}
		s := "opened " + humanize.Time(e.OpenedAt)
		if e.LastPage > 0 {
			s = fmt.Sprintf("page %d of %d, %s", e.LastPage, v.magazine.TotalPages(), s)
		}
		return s
	}
	return "not started"
}

func (v *DetailView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("enter") + styles.Help.Render(" flipbook"),
		styles.HelpKey.Render("p") + styles.Help.Render(" pdf"),
		styles.HelpKey.Render("t") + styles.Help.Render(" team"),
		styles.HelpKey.Render("d") + styles.Help.Render(" download"),
		styles.HelpKey.Render("o") + styles.Help.Render(" open externally"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" back"),
	}
	return strings.Join(help, "  ")
}
