package views

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/pagination"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
)

// spreadGap is the gutter between facing pages, in pixels
const spreadGap = 8

// View implements View
func (v *FlipbookView) View() string {
	var b strings.Builder

	if !v.fullscreen {
		b.WriteString(v.renderHeader() + "\n")
	}

	contentHeight := v.contentHeight()
	switch {
	case v.loading:
		b.WriteString(v.placeCenter(contentHeight, styles.MutedText.Render("Opening "+v.magazine.Title+"...")))
	case v.err != nil:
		b.WriteString(v.placeCenter(contentHeight, v.renderError()))
	case v.panel == panelThumbnails:
		b.WriteString(v.placeCenter(contentHeight, v.renderThumbnails()))
	case v.panel == panelBookmarks:
		b.WriteString(v.placeCenter(contentHeight, v.renderBookmarks()))
	default:
		b.WriteString(v.renderSpread(contentHeight))
	}

	if v.fullscreen {
		return b.String()
	}

	if v.panel == panelGoTo {
		b.WriteString("\n" + v.renderGoTo())
	} else if viewerConfig(v.deps).Minimap && v.err == nil && !v.loading {
		b.WriteString("\n" + v.renderMinimap())
	}
	b.WriteString("\n" + v.renderFooter())
	return b.String()
}

// contentHeight is the number of rows left for the page surface
func (v *FlipbookView) contentHeight() int {
	if v.fullscreen {
		return max(1, v.height)
	}
	// Header, minimap or prompt, footer with its border
	return max(1, v.height-5)
}

func (v *FlipbookView) placeCenter(height int, content string) string {
	return lipgloss.Place(v.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (v *FlipbookView) renderHeader() string {
	maxTitleWidth := min(40, max(10, v.width/2))
	title := styles.TruncateText(v.magazine.Title, maxTitleWidth)
	left := styles.IssueTitle.Render(title)
	if page := v.CurrentPage(); page > 0 && v.marks.Contains(page) {
		left += styles.PageCellMarked.UnsetWidth().Render(" ★")
	}

	right := v.nav.Label()
	if v.zoom.Level != 1 {
		right += fmt.Sprintf(" [%d%%]", v.zoom.Percent())
	}
	if v.zoom.Rotation != 0 {
		right += fmt.Sprintf(" [%d°]", v.zoom.Rotation)
	}
	if v.override != layoutAuto {
		right += " [" + v.override.String() + "]"
	}
	rightPart := styles.MutedText.Render(right)

	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(rightPart))
	return left + strings.Repeat(" ", gap) + rightPart
}

// renderSpread draws the visible pages: as an inline image when every page
// is decoded and the terminal speaks an image protocol, otherwise as one
// placeholder card per page
func (v *FlipbookView) renderSpread(height int) string {
	visible := v.nav.Pages()
	if len(visible) == 0 {
		return v.placeCenter(height, styles.MutedText.Render("No pages"))
	}

	imgs := make([]image.Image, 0, len(visible))
	for _, page := range visible {
		img, ok := v.cache.Get(v.cacheKey(page))
		if !ok {
			break
		}
		imgs = append(imgs, img)
	}

	if v.deps.Protocol != terminal.ProtocolNone && len(imgs) == len(visible) {
		s, err := v.renderImage(imgs, visible, height)
		if err == nil {
			return s
		}
		v.log.Warn("image render failed", zap.Error(err))
	}
	return v.renderPlaceholders(visible, height)
}

// renderImage composes, transforms and encodes the spread. The encoded
// surface is reused while nothing that affects it changes.
func (v *FlipbookView) renderImage(imgs []image.Image, visible []int, height int) (string, error) {
	sig := fmt.Sprintf("%s|%v|%.2f|%d|%.2f|%.2f|%dx%d",
		v.session, visible, v.zoom.Level, v.zoom.Rotation, v.panX, v.panY, v.width, height)
	if sig == v.renderSig {
		return v.rendered, nil
	}

	surface := pages.Compose(imgs, spreadGap)
	surface = pages.Transform(surface, pages.View{
		Zoom:     v.zoom.Level,
		Rotation: v.zoom.Rotation,
		PanX:     v.panX,
		PanY:     v.panY,
	})
	pw, ph := terminal.PixelSize(v.width, height)
	surface = pages.Fit(surface, pw, ph)

	s, err := terminal.Render(surface, v.deps.Protocol, terminal.PageImageID)
	if err != nil {
		return "", err
	}
	if v.deps.Protocol == terminal.ProtocolKitty {
		// Replace the previous page surface
		s = terminal.ClearPage(v.deps.Protocol) + s
	}
	v.rendered, v.renderSig = s, sig
	return s, nil
}

func (v *FlipbookView) renderPlaceholders(visible []int, height int) string {
	cardWidth := max(12, (v.width-4)/len(visible)-2)
	cardHeight := max(3, height-2)

	cards := make([]string, 0, len(visible))
	for _, page := range visible {
		cards = append(cards, styles.PagePlaceholder.
			Width(cardWidth).
			Height(cardHeight).
			Render(v.pageStatus(page)))
	}
	return v.placeCenter(height, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

// pageStatus describes a page on its placeholder card
func (v *FlipbookView) pageStatus(page int) string {
	lines := []string{styles.IssueTitle.Render(fmt.Sprintf("Page %d", page))}
	if v.marks.Contains(page) {
		lines = append(lines, styles.PageCellMarked.UnsetWidth().Render("★ bookmarked"))
	}

	switch img, ok := v.cache.Get(v.cacheKey(page)); {
	case ok:
		b := img.Bounds()
		lines = append(lines, styles.MutedText.Render(fmt.Sprintf("%d×%d px", b.Dx(), b.Dy())))
		if v.deps.Protocol == terminal.ProtocolNone {
			lines = append(lines, styles.MutedText.Render("no inline images in this terminal"))
		}
	case v.pageErrs[page] != nil:
		lines = append(lines,
			styles.ErrorStyle.Render("Failed to load"),
			styles.MutedText.Render(styles.TruncateText(v.pageErrs[page].Error(), 40)),
			styles.Help.Render("R to retry"))
	default:
		lines = append(lines, styles.MutedText.Render("Loading..."))
	}
	return strings.Join(lines, "\n")
}

func (v *FlipbookView) renderError() string {
	var b strings.Builder
	b.WriteString(styles.ErrorStyle.Render("Could not open "+v.magazine.Title) + "\n\n")
	b.WriteString(styles.MutedText.Render(v.err.Error()) + "\n\n")
	help := []string{
		styles.HelpKey.Render("R") + styles.Help.Render(" reload"),
		styles.HelpKey.Render("o") + styles.Help.Render(" open externally"),
		styles.HelpKey.Render("d") + styles.Help.Render(" download"),
		styles.HelpKey.Render("q") + styles.Help.Render(" back"),
	}
	b.WriteString(strings.Join(help, "  "))
	return styles.Dialog.Width(min(70, max(30, v.width-4))).Render(b.String())
}

func (v *FlipbookView) renderThumbnails() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Pages") + "\n")
	if v.searching || v.thumbSearch.Value() != "" {
		b.WriteString(styles.InputFieldFocused.Render(v.thumbSearch.View()) + "\n")
	}

	inFilter := make(map[int]bool, len(v.thumbPages))
	for _, p := range v.thumbPages {
		inFilter[p] = true
	}
	selected := 0
	if v.thumbCursor < len(v.thumbPages) {
		selected = v.thumbPages[v.thumbCursor]
	}

	groups := pagination.ThumbnailGroups(v.nav.Total(), viewerConfig(v.deps).ThumbnailGroup)
	shown := 0
	for _, g := range groups {
		var cells []string
		for _, p := range g.Pages {
			if !inFilter[p] {
				continue
			}
			label := fmt.Sprintf("%d", p)
			switch {
			case p == selected:
				cells = append(cells, styles.PageCellSelected.Render(label))
			case v.nav.Contains(p):
				cells = append(cells, styles.PageCellCurrent.Render(label))
			case v.marks.Contains(p):
				cells = append(cells, styles.PageCellMarked.Render(label))
			default:
				cells = append(cells, styles.PageCell.Render(label))
			}
		}
		if len(cells) == 0 {
			continue
		}
		shown++
		b.WriteString(styles.MutedText.Width(12).Render(g.Label) + " " + strings.Join(cells, "") + "\n")
	}
	if shown == 0 {
		b.WriteString(styles.MutedText.Render("No pages match") + "\n")
	}

	b.WriteString("\n")
	help := []string{
		styles.HelpKey.Render("hjkl") + styles.Help.Render(" move"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("/") + styles.Help.Render(" search"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" close"),
	}
	b.WriteString(strings.Join(help, "  "))
	return styles.Dialog.Render(b.String())
}

func (v *FlipbookView) renderBookmarks() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Bookmarks") + "\n")

	list := v.marks.List()
	if len(list) == 0 {
		b.WriteString(styles.MutedText.Render("No bookmarks yet. Press b on a page to add one.") + "\n")
	}
	for i, page := range list {
		line := fmt.Sprintf("Page %d", page)
		if i == v.markCursor {
			b.WriteString(styles.ListItemSelected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(styles.ListItem.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	help := []string{
		styles.HelpKey.Render("enter") + styles.Help.Render(" go"),
		styles.HelpKey.Render("d") + styles.Help.Render(" remove"),
		styles.HelpKey.Render("X") + styles.Help.Render(" clear"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" close"),
	}
	b.WriteString(strings.Join(help, "  "))
	return styles.Dialog.Render(b.String())
}

func (v *FlipbookView) renderGoTo() string {
	line := styles.SecondaryText.Render("Go to page: ") + v.gotoInput.View() +
		styles.MutedText.Render(fmt.Sprintf(" of %d", v.nav.Total()))
	if v.gotoErr != "" {
		line += "  " + styles.ErrorStyle.Render(v.gotoErr)
	}
	return line
}

// renderMinimap draws one cell per page, or per run of pages when the
// issue is wider than the terminal
func (v *FlipbookView) renderMinimap() string {
	total := v.nav.Total()
	if total == 0 {
		return ""
	}
	cols := max(1, min(total, v.width-2))

	var b strings.Builder
	for c := 0; c < cols; c++ {
		from := 1 + c*total/cols
		to := max(from, (c+1)*total/cols)

		// The strongest state of the pages under the cell wins
		rank := 0
		for p := from; p <= to; p++ {
			switch {
			case v.nav.Contains(p):
				rank = max(rank, 3)
			case v.marks.Contains(p):
				rank = max(rank, 2)
			case v.sched.IsLoaded(p):
				rank = max(rank, 1)
			}
		}
		switch rank {
		case 3:
			b.WriteString(styles.AccentText.Render("█"))
		case 2:
			b.WriteString(styles.PageCellMarked.UnsetWidth().Render("◆"))
		case 1:
			b.WriteString(styles.SecondaryText.Render("▪"))
		default:
			b.WriteString(styles.MutedText.Render("·"))
		}
	}
	return " " + b.String()
}

func (v *FlipbookView) renderFooter() string {
	var help []string
	switch {
	case v.err != nil:
		help = []string{
			styles.HelpKey.Render("R") + styles.Help.Render(" reload"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	case v.isZoomed():
		help = []string{
			styles.HelpKey.Render("hjkl") + styles.Help.Render(" pan"),
			styles.HelpKey.Render("+/-") + styles.Help.Render(fmt.Sprintf(" zoom (%d%%)", v.zoom.Percent())),
			styles.HelpKey.Render("0") + styles.Help.Render(" reset"),
			styles.HelpKey.Render("n/p") + styles.Help.Render(" page"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	default:
		help = []string{
			styles.HelpKey.Render("h/l") + styles.Help.Render(" prev/next"),
			styles.HelpKey.Render(":") + styles.Help.Render(" go to"),
			styles.HelpKey.Render("space") + styles.Help.Render(" pages"),
			styles.HelpKey.Render("b/B") + styles.Help.Render(" bookmark"),
			styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
			styles.HelpKey.Render("r") + styles.Help.Render(" rotate"),
			styles.HelpKey.Render("L") + styles.Help.Render(" layout"),
			styles.HelpKey.Render("f") + styles.Help.Render(" fullscreen"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	}

	text := strings.Join(help, "  ")
	if v.status != "" {
		text = styles.SuccessStyle.Render(v.status) + " " + text
	}
	return styles.FooterBar.Width(v.width).Render(styles.TruncateText(text, v.width))
}
