package views

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/internal/zoom"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// pointsPerInch converts PDF user space to pixels at a DPI
const pointsPerInch = 72.0

// PDFReaderView renders the PDF of an issue one page at a time
type PDFReaderView struct {
	deps Deps
	log  *zap.Logger

	magazine  models.Magazine
	startPage int
	session   uuid.UUID

	src   *pages.PDFSource
	cache *pages.Cache
	page  int
	total int

	zoom       zoom.State
	fitLevel   float64
	panX, panY float64
	overflow   bool

	loading   bool
	rendering bool
	err       error
	pageErr   error

	gotoMode  bool
	gotoInput textinput.Model
	status    string

	rendered  string
	renderSig string

	width  int
	height int
}

type pdfOpenedMsg struct {
	session uuid.UUID
	src     *pages.PDFSource
	total   int
	err     error
}

type pdfPageMsg struct {
	session uuid.UUID
	key     pages.CacheKey
	img     image.Image
	err     error
}

// NewPDFReaderView creates a new PDF reader
func NewPDFReaderView(deps Deps) *PDFReaderView {
	cache, err := pages.NewCache(8)
	if err != nil {
		cache, _ = pages.NewCache(pages.DefaultCacheSize)
	}

	gotoInput := textinput.New()
	gotoInput.Placeholder = "Page"
	gotoInput.CharLimit = 4
	gotoInput.Width = 8

	return &PDFReaderView{
		deps:      deps,
		log:       deps.logger().Named("reader"),
		cache:     cache,
		zoom:      zoom.New(zoom.ReaderBounds),
		panX:      0.5,
		panY:      0.5,
		gotoInput: gotoInput,
		width:     80,
		height:    24,
	}
}

// SetMagazine sets the issue to read, opening on page once loaded
func (v *PDFReaderView) SetMagazine(m models.Magazine, page int) {
	v.magazine = m
	v.startPage = page
	v.session = uuid.New()
	v.src = nil
	v.page, v.total = 0, m.TotalPages()
	v.zoom = zoom.New(zoom.ReaderBounds)
	v.fitLevel = 1
	v.panX, v.panY = 0.5, 0.5
	v.loading = true
	v.rendering = false
	v.err, v.pageErr = nil, nil
	v.gotoMode = false
	v.status = ""
	v.rendered, v.renderSig = "", ""
	v.cache.Purge()
}

// Magazine returns the open issue
func (v *PDFReaderView) Magazine() models.Magazine {
	return v.magazine
}

// CurrentPage returns the page shown
func (v *PDFReaderView) CurrentPage() int {
	return v.page
}

// CapturesInput reports whether the go-to prompt owns the keyboard
func (v *PDFReaderView) CapturesInput() bool {
	return v.gotoMode
}

// Leave records the reading position when the reader is closed
func (v *PDFReaderView) Leave() {
	if v.deps.State == nil || v.magazine.ID == "" || v.page == 0 {
		return
	}
	if err := v.deps.State.UpdateLastPage(v.magazine.ID, v.page); err != nil {
		v.log.Warn("failed to save reading position", zap.String("magazine", v.magazine.ID), zap.Error(err))
	}
}

// Init implements View
func (v *PDFReaderView) Init() tea.Cmd {
	if v.magazine.ID == "" {
		return nil
	}
	v.loading = true
	return v.open(v.session)
}

// Update implements View
func (v *PDFReaderView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v, v.renderPage()
	case pdfOpenedMsg:
		return v.handleOpened(msg)
	case pdfPageMsg:
		if msg.session != v.session {
			return v, nil
		}
		v.rendering = false
		if msg.err != nil {
			v.pageErr = msg.err
			v.log.Warn("page render failed", zap.Int("page", msg.key.Page), zap.Error(msg.err))
			return v, nil
		}
		v.pageErr = nil
		v.cache.Put(msg.key, msg.img)
		return v, nil
	case statusMsg:
		v.status = msg.text
		return v, clearStatusAfter(3 * time.Second)
	case clearStatusMsg:
		v.status = ""
		return v, nil
	case tea.KeyMsg:
		if v.gotoMode {
			return v.handleGoToKey(msg)
		}
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *PDFReaderView) handleKeyMsg(msg tea.KeyMsg) (View, tea.Cmd) {
	key := msg.String()

	// Recovery actions are available whatever failed
	switch key {
	case "R":
		v.SetMagazine(v.magazine, max(v.page, v.startPage))
		return v, v.Init()
	case "o":
		return v, openExternally(v.deps, v.magazine, v.device())
	case "d":
		m := v.magazine
		return v, func() tea.Msg { return DownloadMsg{Magazine: m} }
	}
	if v.err != nil || v.loading {
		return v, nil
	}

	switch key {
	case "+", "=":
		if v.zoom.ZoomIn() {
			return v, v.renderPage()
		}
		return v, nil
	case "-", "_":
		if v.zoom.ZoomOut() {
			return v, v.renderPage()
		}
		return v, nil
	case "0":
		v.zoom.SetLevel(v.fitLevel)
		v.panX, v.panY = 0.5, 0.5
		return v, v.renderPage()
	case "r":
		v.zoom.Rotate()
		return v, nil
	}

	// A page larger than the screen is panned with hjkl
	if v.overflow {
		switch key {
		case "h", "left":
			v.panX = max(0, v.panX-panStep)
			return v, nil
		case "l", "right":
			v.panX = min(1, v.panX+panStep)
			return v, nil
		case "k", "up":
			v.panY = max(0, v.panY-panStep)
			return v, nil
		case "j", "down":
			v.panY = min(1, v.panY+panStep)
			return v, nil
		}
	}

	switch key {
	case "n", " ", "pgdown", "l", "right", "j", "down":
		return v, v.goTo(v.page + 1)
	case "p", "pgup", "h", "left", "k", "up":
		return v, v.goTo(v.page - 1)
	case "g", "home":
		return v, v.goTo(1)
	case "G", "end":
		return v, v.goTo(v.total)
	case ":":
		v.gotoMode = true
		v.gotoInput.SetValue("")
		v.gotoInput.Focus()
		return v, textinput.Blink
	}
	return v, nil
}

func (v *PDFReaderView) handleGoToKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.gotoMode = false
		v.gotoInput.Blur()
		return v, nil
	case "enter":
		page, err := strconv.Atoi(strings.TrimSpace(v.gotoInput.Value()))
		if err != nil || page < 1 || page > v.total {
			v.status = fmt.Sprintf("Enter a page between 1 and %d", v.total)
			return v, nil
		}
		v.gotoMode = false
		v.gotoInput.Blur()
		return v, v.goTo(page)
	}
	var cmd tea.Cmd
	v.gotoInput, cmd = v.gotoInput.Update(msg)
	return v, cmd
}

// goTo shows page, ignoring pages outside the document
func (v *PDFReaderView) goTo(page int) tea.Cmd {
	if page < 1 || page > v.total || page == v.page {
		return nil
	}
	v.page = page
	v.panX, v.panY = 0.5, 0.5
	v.pageErr = nil
	return v.renderPage()
}

func (v *PDFReaderView) device() zoom.DeviceMode {
	cfg := viewerConfig(v.deps)
	return zoom.DeviceForWidth(v.width, cfg.SpreadMinWidth, cfg.TabletMinWidth)
}

// open resolves the PDF, downloading it when only the asset host has it
func (v *PDFReaderView) open(session uuid.UUID) tea.Cmd {
	loc, m := v.deps.Locator, v.magazine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sourceTimeout)
		defer cancel()

		path, err := loc.PDFPath(ctx, m)
		if err != nil {
			return pdfOpenedMsg{session: session, err: err}
		}
		src := pages.NewPDFSource(path, loc.PDF)
		n, err := src.PageCount(ctx)
		if err != nil {
			return pdfOpenedMsg{session: session, err: err}
		}
		return pdfOpenedMsg{session: session, src: src, total: n}
	}
}

func (v *PDFReaderView) handleOpened(msg pdfOpenedMsg) (View, tea.Cmd) {
	if msg.session != v.session {
		return v, nil
	}
	v.loading = false
	if msg.err != nil {
		v.err = msg.err
		v.log.Error("failed to open PDF", zap.String("magazine", v.magazine.ID), zap.Error(msg.err))
		return v, nil
	}

	v.src = msg.src
	v.total = msg.total
	v.page = 1
	if v.startPage >= 1 && v.startPage <= v.total {
		v.page = v.startPage
	}
	v.fitLevel = v.optimalLevel()
	v.zoom.SetLevel(v.fitLevel)
	v.log.Debug("opened PDF",
		zap.String("magazine", v.magazine.ID),
		zap.Int("pages", v.total),
		zap.Stringer("device", v.device()),
		zap.Float64("scale", v.zoom.Level))
	return v, v.renderPage()
}

// optimalLevel fits the current page into the page area for the device
func (v *PDFReaderView) optimalLevel() float64 {
	if v.src == nil {
		return 1
	}
	w, h, err := v.src.PageSize(context.Background(), v.page)
	if err != nil {
		return 1
	}
	dpi := float64(v.deps.Locator.PDF.DPI)
	if dpi <= 0 {
		dpi = pages.DefaultDPI
	}
	vw, vh := terminal.PixelSize(v.width, v.contentHeight())
	return zoom.OptimalScale(w*dpi/pointsPerInch, h*dpi/pointsPerInch, float64(vw), float64(vh), v.device())
}

func (v *PDFReaderView) pageKey() pages.CacheKey {
	return pages.CacheKey{Session: v.session, Page: v.page, Variant: fmt.Sprintf("%.2f", v.zoom.Level)}
}

// renderPage draws the current page at the current scale unless it is
// cached. Terminals without an image protocol skip rendering.
func (v *PDFReaderView) renderPage() tea.Cmd {
	if v.src == nil || v.page == 0 || v.deps.Protocol == terminal.ProtocolNone {
		return nil
	}
	key := v.pageKey()
	if v.cache.Contains(key) {
		return nil
	}
	v.rendering = true
	src, session, scale := v.src, v.session, v.zoom.Level
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		data, err := src.PageAt(ctx, key.Page, scale)
		if err != nil {
			return pdfPageMsg{session: session, key: key, err: err}
		}
		img, err := pages.Decode(data)
		return pdfPageMsg{session: session, key: key, img: img, err: err}
	}
}

// View implements View
func (v *PDFReaderView) View() string {
	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")

	height := v.contentHeight()
	switch {
	case v.loading:
		b.WriteString(v.placeCenter(height, styles.MutedText.Render("Opening PDF...")))
	case v.err != nil:
		b.WriteString(v.placeCenter(height, v.renderError("Could not open "+v.magazine.Title, v.err)))
	case v.pageErr != nil:
		b.WriteString(v.placeCenter(height, v.renderError(fmt.Sprintf("Could not render page %d", v.page), v.pageErr)))
	default:
		b.WriteString(v.renderSurface(height))
	}

	b.WriteString("\n")
	if v.gotoMode {
		b.WriteString(styles.SecondaryText.Render("Go to page: ") + v.gotoInput.View() +
			styles.MutedText.Render(fmt.Sprintf(" of %d", v.total)))
		if v.status != "" {
			b.WriteString("  " + styles.ErrorStyle.Render(v.status))
		}
	} else {
		b.WriteString(v.renderFooter())
	}
	return b.String()
}

func (v *PDFReaderView) contentHeight() int {
	return max(1, v.height-4)
}

func (v *PDFReaderView) placeCenter(height int, content string) string {
	return lipgloss.Place(v.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (v *PDFReaderView) renderHeader() string {
	title := styles.TruncateText(v.magazine.Title, max(10, v.width/3))
	left := styles.TitleBar.Render(" "+title+" ") + styles.Help.Render(" PDF")

	var right string
	if v.total > 0 && v.page > 0 {
		progress := float64(v.page) / float64(v.total)
		right = styles.MutedText.Render(fmt.Sprintf("Page %d/%d ", v.page, v.total)) +
			renderProgressBar(10, progress) +
			styles.AccentText.Render(fmt.Sprintf(" %d%%", v.zoom.Percent()))
		if v.zoom.Rotation != 0 {
			right += styles.MutedText.Render(fmt.Sprintf(" %d°", v.zoom.Rotation))
		}
	}

	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (v *PDFReaderView) renderSurface(height int) string {
	img, ok := v.cache.Get(v.pageKey())
	if v.deps.Protocol == terminal.ProtocolNone || !ok {
		return v.placeCenter(height, v.renderPageCard())
	}

	sig := fmt.Sprintf("%v|%d|%.2f|%.2f|%dx%d", v.pageKey(), v.zoom.Rotation, v.panX, v.panY, v.width, height)
	if sig == v.renderSig {
		return v.rendered
	}

	pw, ph := terminal.PixelSize(v.width, height)
	surface := pages.Transform(img, pages.View{Zoom: 1, Rotation: v.zoom.Rotation})
	sb := surface.Bounds()
	v.overflow = sb.Dx() > pw || sb.Dy() > ph
	surface = pages.Window(surface, pw, ph, v.panX, v.panY)

	s, err := terminal.Render(surface, v.deps.Protocol, terminal.PageImageID)
	if err != nil {
		v.log.Warn("image render failed", zap.Error(err))
		return v.placeCenter(height, v.renderPageCard())
	}
	if v.deps.Protocol == terminal.ProtocolKitty {
		s = terminal.ClearPage(v.deps.Protocol) + s
	}
	v.rendered, v.renderSig = s, sig
	return s
}

// renderPageCard describes the page when it cannot be drawn
func (v *PDFReaderView) renderPageCard() string {
	lines := []string{styles.IssueTitle.Render(fmt.Sprintf("Page %d of %d", v.page, v.total))}
	if v.src != nil {
		if w, h, err := v.src.PageSize(context.Background(), v.page); err == nil {
			lines = append(lines, styles.MutedText.Render(fmt.Sprintf("%.0f×%.0f pt at %d%%", w, h, v.zoom.Percent())))
		}
	}
	switch {
	case v.deps.Protocol == terminal.ProtocolNone:
		lines = append(lines, "", styles.MutedText.Render("This terminal cannot show images."),
			styles.Help.Render("Press o to open the PDF in your viewer"))
	case v.rendering:
		lines = append(lines, styles.MutedText.Render("Rendering..."))
	}
	return styles.PagePlaceholder.
		Width(min(60, max(24, v.width-8))).
		Height(max(3, v.contentHeight()-2)).
		Render(strings.Join(lines, "\n"))
}

func (v *PDFReaderView) renderError(title string, err error) string {
	var b strings.Builder
	b.WriteString(styles.ErrorStyle.Render(title) + "\n\n")
	b.WriteString(styles.MutedText.Render(err.Error()) + "\n\n")
	help := []string{
		styles.HelpKey.Render("R") + styles.Help.Render(" reload"),
		styles.HelpKey.Render("o") + styles.Help.Render(" open externally"),
		styles.HelpKey.Render("d") + styles.Help.Render(" download"),
		styles.HelpKey.Render("q") + styles.Help.Render(" back"),
	}
	b.WriteString(strings.Join(help, "  "))
	return styles.Dialog.Width(min(70, max(30, v.width-4))).Render(b.String())
}

func (v *PDFReaderView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("n/p") + styles.Help.Render(" page"),
		styles.HelpKey.Render(":") + styles.Help.Render(" go to"),
		styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
		styles.HelpKey.Render("0") + styles.Help.Render(" fit"),
		styles.HelpKey.Render("r") + styles.Help.Render(" rotate"),
		styles.HelpKey.Render("o") + styles.Help.Render(" external"),
		styles.HelpKey.Render("q") + styles.Help.Render(" back"),
	}
	if v.overflow {
		help = append([]string{styles.HelpKey.Render("hjkl") + styles.Help.Render(" pan")}, help...)
	}
	text := strings.Join(help, "  ")
	if v.status != "" {
		text = styles.SuccessStyle.Render(v.status) + " " + text
	}
	return styles.TruncateText(text, v.width)
}

// SetSize implements View
func (v *PDFReaderView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// renderProgressBar renders a progress bar of width cells using Unicode
// block characters; progress is 0.0-1.0
func renderProgressBar(width int, progress float64) string {
	width = max(3, width)
	progress = max(0, min(1, progress))

	const (
		empty    = "░"
		filled   = "█"
		partials = "▏▎▍▌▋▊▉" // 1/8 to 7/8 filled
	)

	filledWidth := progress * float64(width)
	fullBlocks := int(filledWidth)
	remainder := filledWidth - float64(fullBlocks)

	var bar strings.Builder
	for i := 0; i < fullBlocks && i < width; i++ {
		bar.WriteString(filled)
	}
	if fullBlocks < width && remainder > 0 {
		if idx := min(7, int(remainder*8)); idx > 0 {
			bar.WriteRune([]rune(partials)[idx-1])
			fullBlocks++
		}
	}
	for i := fullBlocks; i < width; i++ {
		bar.WriteString(empty)
	}
	return bar.String()
}
