package views

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/bookmarks"
	"github.com/justyntemme/brahmand-t/internal/config"
	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/pagination"
	"github.com/justyntemme/brahmand-t/internal/preload"
	"github.com/justyntemme/brahmand-t/internal/zoom"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

const (
	// sourceTimeout covers opening a document, including fetching a remote PDF
	sourceTimeout = 2 * time.Minute
	pageTimeout   = 30 * time.Second

	// panStep moves the zoomed window in 10% increments
	panStep = 0.1
)

// panel is an overlay of the flipbook
type panel int

const (
	panelNone panel = iota
	panelThumbnails
	panelBookmarks
	panelGoTo
)

// layoutOverride is the manual layout choice, cycled with L
type layoutOverride int

const (
	layoutAuto layoutOverride = iota
	layoutSingle
	layoutSpread
)

func (o layoutOverride) String() string {
	switch o {
	case layoutSingle:
		return "single"
	case layoutSpread:
		return "spread"
	default:
		return "auto"
	}
}

// FlipbookView shows an issue page by page or as two-page spreads
type FlipbookView struct {
	deps Deps
	log  *zap.Logger

	magazine  models.Magazine
	startPage int

	// Document session
	nav     *pagination.Navigator
	sched   *preload.Scheduler
	cache   *pages.Cache
	src     pages.Source
	session uuid.UUID

	loading    bool
	err        error
	pageErrs   map[int]error
	refetching map[int]bool

	// Reading state
	marks      *bookmarks.Store
	zoom       zoom.State
	panX, panY float64
	override   layoutOverride
	fullscreen bool

	// Overlays
	panel       panel
	thumbPages  []int
	thumbCursor int
	thumbSearch textinput.Model
	searching   bool
	markCursor  int
	gotoInput   textinput.Model
	gotoErr     string
	status      string

	// Last rendered page surface
	rendered  string
	renderSig string

	// Dimensions
	width  int
	height int
}

// sourceReadyMsg is sent when the page source of a document was opened
type sourceReadyMsg struct {
	session uuid.UUID
	source  pages.Source
	total   int
	err     error
}

// pageLoadedMsg is sent when a page finished loading, successfully or not
type pageLoadedMsg struct {
	session uuid.UUID
	page    int
	img     image.Image
	err     error
}

// NewFlipbookView creates a new flipbook
func NewFlipbookView(deps Deps) *FlipbookView {
	cfg := viewerConfig(deps)
	log := deps.logger().Named("flipbook")

	cache, err := pages.NewCache(cfg.CachePages)
	if err != nil {
		log.Warn("falling back to default page cache", zap.Error(err))
		cache, _ = pages.NewCache(pages.DefaultCacheSize)
	}

	thumbSearch := textinput.New()
	thumbSearch.Placeholder = "Page number..."
	thumbSearch.CharLimit = 4
	thumbSearch.Width = 12

	gotoInput := textinput.New()
	gotoInput.Placeholder = "Page"
	gotoInput.CharLimit = 4
	gotoInput.Width = 8

	return &FlipbookView{
		deps: deps,
		log:  log,
		nav:  pagination.NewNavigator(0, pagination.Spread),
		sched: preload.New(preload.Options{
			Radius:   cfg.PreloadRadius,
			Attempts: cfg.PreloadAttempts,
			Layout:   pagination.Spread,
			Logger:   deps.logger(),
		}),
		cache:       cache,
		pageErrs:    make(map[int]error),
		refetching:  make(map[int]bool),
		marks:       bookmarks.New(),
		zoom:        zoom.New(zoom.FlipbookBounds),
		panX:        0.5,
		panY:        0.5,
		thumbSearch: thumbSearch,
		gotoInput:   gotoInput,
		width:       80,
		height:      24,
	}
}

// viewerConfig returns the viewer settings, or the defaults without a config
func viewerConfig(deps Deps) config.ViewerConfig {
	if deps.Settings == nil {
		return config.DefaultConfig().Viewer
	}
	return deps.Settings.Viewer
}

// SetMagazine switches the flipbook to m and positions it on page once the
// source is open. Page 0 starts at the cover. Bookmarks are kept.
func (v *FlipbookView) SetMagazine(m models.Magazine, page int) {
	v.magazine = m
	v.startPage = page
	v.src = nil
	v.err = nil
	v.loading = true
	v.status = ""
	v.panel = panelNone
	clear(v.pageErrs)
	clear(v.refetching)
	v.cache.Purge()
	v.resetZoomPan()
	v.zoom.Rotation = 0
	v.rendered, v.renderSig = "", ""

	v.session = v.sched.Reset(m.ID, m.TotalPages())
	v.nav.Reset(m.TotalPages())
	v.applyLayout()
}

// Magazine returns the open issue
func (v *FlipbookView) Magazine() models.Magazine {
	return v.magazine
}

// CurrentPage is the first visible page
func (v *FlipbookView) CurrentPage() int {
	if p := v.nav.Pages(); len(p) > 0 {
		return p[0]
	}
	return 0
}

// CapturesInput reports whether an overlay owns the keyboard
func (v *FlipbookView) CapturesInput() bool {
	return v.panel != panelNone
}

// Leave records the reading position when the flipbook is closed
func (v *FlipbookView) Leave() {
	if v.deps.State == nil || v.magazine.ID == "" {
		return
	}
	if err := v.deps.State.UpdateLastPage(v.magazine.ID, v.CurrentPage()); err != nil {
		v.log.Warn("failed to save reading position", zap.String("magazine", v.magazine.ID), zap.Error(err))
	}
}

// Init implements View
func (v *FlipbookView) Init() tea.Cmd {
	if v.magazine.ID == "" {
		return nil
	}
	v.loading = true
	return v.loadSource(v.session)
}

// Update implements View
func (v *FlipbookView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v, v.preload()
	case sourceReadyMsg:
		return v.handleSourceReady(msg)
	case pageLoadedMsg:
		return v.handlePageLoaded(msg)
	case statusMsg:
		v.status = msg.text
		return v, clearStatusAfter(3 * time.Second)
	case clearStatusMsg:
		v.status = ""
		return v, nil
	case tea.KeyMsg:
		switch v.panel {
		case panelGoTo:
			return v.handleGoToKey(msg)
		case panelThumbnails:
			return v.handleThumbnailKey(msg)
		case panelBookmarks:
			return v.handleBookmarkKey(msg)
		}
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

// handleKeyMsg processes key presses on the page surface
func (v *FlipbookView) handleKeyMsg(msg tea.KeyMsg) (View, tea.Cmd) {
	key := msg.String()
	cfg := viewerConfig(v.deps)

	if v.err != nil {
		switch key {
		case "R":
			v.SetMagazine(v.magazine, v.startPage)
			return v, v.Init()
		case "o":
			return v, openExternally(v.deps, v.magazine, v.device())
		case "d":
			m := v.magazine
			return v, func() tea.Msg { return DownloadMsg{Magazine: m} }
		}
		return v, nil
	}

	// Zoom and rotation
	switch key {
	case "+", "=":
		v.zoom.ZoomIn()
		return v, nil
	case "-", "_":
		if v.zoom.ZoomOut() && v.zoom.Level <= 1 {
			v.panX, v.panY = 0.5, 0.5
		}
		return v, nil
	case "0":
		v.resetZoomPan()
		return v, nil
	case "r":
		v.zoom.Rotate()
		return v, nil
	}

	// When zoomed in, hjkl pan the page
	if v.isZoomed() {
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
	case "l", "right", "j", "down", "n", "pgdown":
		return v, v.navigate(v.nav.Next())
	case "h", "left", "k", "up", "p", "pgup":
		return v, v.navigate(v.nav.Prev())
	case "g", "home":
		return v, v.navigate(v.nav.First())
	case "G", "end":
		return v, v.navigate(v.nav.Last())

	case ":":
		v.panel = panelGoTo
		v.gotoErr = ""
		v.gotoInput.SetValue("")
		v.gotoInput.Focus()
		return v, textinput.Blink

	case " ":
		if !cfg.Thumbnails {
			return v, nil
		}
		v.openThumbnails()
		return v, nil

	case "b":
		if !cfg.Bookmarks {
			return v, nil
		}
		page := v.CurrentPage()
		if page == 0 {
			return v, nil
		}
		if v.marks.Toggle(page) {
			v.status = fmt.Sprintf("Bookmarked page %d", page)
		} else {
			v.status = fmt.Sprintf("Removed bookmark on page %d", page)
		}
		return v, clearStatusAfter(2 * time.Second)
	case "B":
		if !cfg.Bookmarks {
			return v, nil
		}
		v.panel = panelBookmarks
		v.markCursor = 0
		return v, nil
	case "]":
		visible := v.nav.Pages()
		if len(visible) == 0 {
			return v, nil
		}
		if page, ok := v.marks.Next(visible[len(visible)-1]); ok {
			return v, v.goTo(page)
		}
		return v, nil
	case "[":
		if page, ok := v.marks.Prev(v.CurrentPage()); ok {
			return v, v.goTo(page)
		}
		return v, nil
	case "X":
		v.marks.Clear()
		return v, nil

	case "L":
		v.override = (v.override + 1) % 3
		v.applyLayout()
		return v, v.preload()
	case "f":
		v.fullscreen = !v.fullscreen
		return v, nil

	case "R":
		// Retry failed pages
		clear(v.pageErrs)
		return v, v.preload()
	case "o":
		return v, openExternally(v.deps, v.magazine, v.device())
	case "d":
		m := v.magazine
		return v, func() tea.Msg { return DownloadMsg{Magazine: m} }
	}

	return v, nil
}

func (v *FlipbookView) handleGoToKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.closePanel()
		return v, nil
	case "enter":
		page, err := strconv.Atoi(strings.TrimSpace(v.gotoInput.Value()))
		if err != nil || page < 1 || page > v.nav.Total() {
			v.gotoErr = fmt.Sprintf("Enter a page between 1 and %d", v.nav.Total())
			return v, nil
		}
		v.closePanel()
		return v, v.goTo(page)
	}
	var cmd tea.Cmd
	v.gotoInput, cmd = v.gotoInput.Update(msg)
	v.gotoErr = ""
	return v, cmd
}

func (v *FlipbookView) openThumbnails() {
	v.panel = panelThumbnails
	v.searching = false
	v.thumbSearch.SetValue("")
	v.thumbPages = pagination.FilterPages(v.nav.Total(), "")
	v.thumbCursor = max(0, v.CurrentPage()-1)
}

func (v *FlipbookView) handleThumbnailKey(msg tea.KeyMsg) (View, tea.Cmd) {
	key := msg.String()

	if v.searching {
		switch key {
		case "esc":
			v.searching = false
			v.thumbSearch.Blur()
			v.thumbSearch.SetValue("")
			v.thumbPages = pagination.FilterPages(v.nav.Total(), "")
			v.thumbCursor = 0
			return v, nil
		case "enter":
			v.searching = false
			v.thumbSearch.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.thumbSearch, cmd = v.thumbSearch.Update(msg)
		v.thumbPages = pagination.FilterPages(v.nav.Total(), v.thumbSearch.Value())
		v.thumbCursor = 0
		return v, cmd
	}

	group := max(1, viewerConfig(v.deps).ThumbnailGroup)
	switch key {
	case "esc", "q", " ":
		v.closePanel()
	case "l", "right":
		v.moveThumb(1)
	case "h", "left":
		v.moveThumb(-1)
	case "j", "down":
		v.moveThumb(group)
	case "k", "up":
		v.moveThumb(-group)
	case "/":
		v.searching = true
		v.thumbSearch.Focus()
		return v, textinput.Blink
	case "enter":
		if v.thumbCursor < len(v.thumbPages) {
			page := v.thumbPages[v.thumbCursor]
			v.closePanel()
			return v, v.goTo(page)
		}
	}
	return v, nil
}

func (v *FlipbookView) moveThumb(delta int) {
	v.thumbCursor = max(0, min(v.thumbCursor+delta, len(v.thumbPages)-1))
}

func (v *FlipbookView) handleBookmarkKey(msg tea.KeyMsg) (View, tea.Cmd) {
	list := v.marks.List()
	switch msg.String() {
	case "esc", "q", "B":
		v.closePanel()
	case "j", "down":
		v.markCursor = min(v.markCursor+1, max(0, len(list)-1))
	case "k", "up":
		v.markCursor = max(0, v.markCursor-1)
	case "d", "x":
		if v.markCursor < len(list) {
			v.marks.Remove(list[v.markCursor])
			v.markCursor = max(0, min(v.markCursor, v.marks.Len()-1))
		}
	case "X":
		v.marks.Clear()
		v.markCursor = 0
	case "enter":
		if v.markCursor < len(list) {
			v.closePanel()
			return v, v.goTo(list[v.markCursor])
		}
	}
	return v, nil
}

func (v *FlipbookView) closePanel() {
	v.panel = panelNone
	v.searching = false
	v.thumbSearch.Blur()
	v.gotoInput.Blur()
}

// goTo jumps to the spread showing page. Pages outside the document are
// ignored.
func (v *FlipbookView) goTo(page int) tea.Cmd {
	before := v.nav.Spread()
	if err := v.nav.GoTo(page); err != nil {
		v.log.Debug("ignoring jump", zap.Int("page", page), zap.Error(err))
		return nil
	}
	return v.navigate(v.nav.Spread() != before)
}

// navigate follows a position change with a new preload window
func (v *FlipbookView) navigate(moved bool) tea.Cmd {
	if !moved {
		return nil
	}
	if v.isZoomed() {
		v.panX, v.panY = 0.5, 0.5
	}
	return v.preload()
}

// applyLayout derives the layout from the width unless overridden
func (v *FlipbookView) applyLayout() {
	var layout pagination.Layout
	switch v.override {
	case layoutSingle:
		layout = pagination.Single
	case layoutSpread:
		layout = pagination.Spread
	default:
		layout = pagination.LayoutForWidth(v.width, viewerConfig(v.deps).SpreadMinWidth)
	}
	if v.nav.SetLayout(layout) {
		v.sched.SetLayout(layout)
	}
}

func (v *FlipbookView) device() zoom.DeviceMode {
	cfg := viewerConfig(v.deps)
	return zoom.DeviceForWidth(v.width, cfg.SpreadMinWidth, cfg.TabletMinWidth)
}

func (v *FlipbookView) isZoomed() bool {
	return v.zoom.Level > 1
}

func (v *FlipbookView) resetZoomPan() {
	v.zoom.Reset()
	v.panX, v.panY = 0.5, 0.5
}

func (v *FlipbookView) cacheKey(page int) pages.CacheKey {
	return pages.CacheKey{Session: v.session, Page: page}
}

// loadSource opens the page source of the current issue
func (v *FlipbookView) loadSource(session uuid.UUID) tea.Cmd {
	loc, m := v.deps.Locator, v.magazine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sourceTimeout)
		defer cancel()

		src, err := loc.Flipbook(ctx, m)
		if err != nil {
			return sourceReadyMsg{session: session, err: err}
		}
		n, err := src.PageCount(ctx)
		if err != nil {
			return sourceReadyMsg{session: session, err: err}
		}
		return sourceReadyMsg{session: session, source: src, total: n}
	}
}

func (v *FlipbookView) handleSourceReady(msg sourceReadyMsg) (View, tea.Cmd) {
	if !v.sched.IsCurrent(msg.session) {
		// The user moved on to another issue
		return v, nil
	}
	v.loading = false
	if msg.err != nil {
		v.err = msg.err
		v.log.Error("failed to open issue", zap.String("magazine", v.magazine.ID), zap.Error(msg.err))
		return v, nil
	}

	total := msg.total
	if total <= 0 {
		total = v.magazine.TotalPages()
	}
	if total != v.magazine.TotalPages() {
		v.log.Info("page count differs from catalog",
			zap.String("magazine", v.magazine.ID),
			zap.Int("catalog", v.magazine.TotalPages()),
			zap.Int("source", total))
	}

	v.src = msg.source
	v.session = v.sched.Reset(v.magazine.ID, total)
	v.nav.SetTotal(total)
	if v.startPage > 0 {
		if err := v.nav.GoTo(v.startPage); err != nil && !errors.Is(err, pagination.ErrPageOutOfRange) {
			v.log.Debug("cannot resume", zap.Int("page", v.startPage), zap.Error(err))
		}
	}
	return v, v.preload()
}

func (v *FlipbookView) handlePageLoaded(msg pageLoadedMsg) (View, tea.Cmd) {
	if msg.err != nil {
		if err := v.sched.Fail(msg.session, msg.page, msg.err); err != nil {
			return v, nil
		}
		delete(v.refetching, msg.page)
		v.pageErrs[msg.page] = msg.err
		return v, nil
	}
	if err := v.sched.MarkLoaded(msg.session, msg.page); err != nil {
		v.log.Debug("dropping page of previous issue", zap.Int("page", msg.page))
		return v, nil
	}
	delete(v.refetching, msg.page)
	delete(v.pageErrs, msg.page)
	v.cache.Put(v.cacheKey(msg.page), msg.img)
	return v, nil
}

// preload requests the unloaded pages around the current spread. Visible
// pages that were evicted from the cache are fetched again.
func (v *FlipbookView) preload() tea.Cmd {
	if v.src == nil {
		return nil
	}
	session, planned := v.sched.Plan(v.nav.Spread())

	var cmds []tea.Cmd
	for _, page := range planned {
		cmds = append(cmds, v.loadPage(session, page))
	}
	for _, page := range v.nav.Pages() {
		if v.sched.IsLoaded(page) && !v.cache.Contains(v.cacheKey(page)) && !v.refetching[page] {
			v.refetching[page] = true
			cmds = append(cmds, v.loadPage(session, page))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// loadPage fetches and decodes one page
func (v *FlipbookView) loadPage(session uuid.UUID, page int) tea.Cmd {
	src, sched := v.src, v.sched
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		var img image.Image
		err := sched.Fetch(ctx, page, func(ctx context.Context) error {
			data, err := src.Page(ctx, page)
			if err != nil {
				return err
			}
			img, err = pages.Decode(data)
			return err
		})
		if err != nil {
			return pageLoadedMsg{session: session, page: page, err: fmt.Errorf("page %d: %w", page, err)}
		}
		return pageLoadedMsg{session: session, page: page, img: img}
	}
}

// SetSize implements View
func (v *FlipbookView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.applyLayout()
}
