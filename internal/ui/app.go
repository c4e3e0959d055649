package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/internal/ui/views"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// inputCapturer is implemented by views with a focused text field; while it
// reports true, q and Esc go to the view
type inputCapturer interface {
	CapturesInput() bool
}

// leaver is implemented by views that persist state when closed
type leaver interface {
	Leave()
}

// busy is implemented by views that cannot be left while working
type busy interface {
	Busy() bool
}

// App is the main application model
type App struct {
	deps views.Deps
	keys KeyMap
	log  *zap.Logger

	// Current view state
	currentView views.ViewType
	back        map[views.ViewType]views.ViewType
	start       *views.OpenMagazineMsg

	// Window dimensions
	width  int
	height int

	// View models
	homeView     *views.HomeView
	detailView   *views.DetailView
	teamView     *views.TeamView
	downloadView *views.DownloadView
	flipbookView *views.FlipbookView
	readerView   *views.PDFReaderView

	// Images are cleared on this writer when a viewer closes
	out io.Writer

	// Error message
	err      error
	showHelp bool
}

// NewApp creates a new application instance
func NewApp(deps views.Deps) *App {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		deps:         deps,
		keys:         DefaultKeyMap(),
		log:          log.Named("ui"),
		currentView:  views.ViewHome,
		back:         make(map[views.ViewType]views.ViewType),
		width:        80,
		height:       24,
		homeView:     views.NewHomeView(deps),
		detailView:   views.NewDetailView(deps),
		teamView:     views.NewTeamView(deps),
		downloadView: views.NewDownloadView(deps),
		flipbookView: views.NewFlipbookView(deps),
		readerView:   views.NewPDFReaderView(deps),
		out:          os.Stdout,
	}
}

// OpenOnStart opens m in mode as soon as the program starts. Leaving the
// viewer returns to the detail page of the issue.
func (a *App) OpenOnStart(m models.Magazine, mode string, page int) {
	a.start = &views.OpenMagazineMsg{Magazine: m, Mode: mode, Page: page}
}

// SetOutput sets where image clearing sequences are written
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Current returns the active view type
func (a *App) Current() views.ViewType {
	return a.currentView
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.getCurrentView().Init(),
		tea.SetWindowTitle("Brahmand"),
	}
	if a.start != nil {
		start := *a.start
		a.detailView.SetMagazine(start.Magazine)
		a.currentView = views.ViewDetail
		cmds = append(cmds, func() tea.Msg { return start })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeAll()
		// The viewers relayout and refetch on resize
		return a, a.delegate(msg)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a.quit()
		}
		if c, ok := a.getCurrentView().(inputCapturer); ok && c.CapturesInput() {
			return a, a.delegate(msg)
		}

		switch {
		case key.Matches(msg, a.keys.Help):
			a.showHelp = !a.showHelp
			return a, nil

		case key.Matches(msg, a.keys.Back):
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
			if b, ok := a.getCurrentView().(busy); ok && b.Busy() {
				return a, nil
			}
			if a.currentView == views.ViewHome {
				if msg.String() == "q" {
					return a.quit()
				}
				return a, nil
			}
			return a.switchView(a.previous(), false)
		}

	case views.OpenMagazineMsg:
		if a.deps.State != nil {
			if err := a.deps.State.AddRecentlyRead(msg.Magazine.ID, msg.Magazine.Title, msg.Mode, msg.Page); err != nil {
				a.log.Warn("failed to save recently read", zap.Error(err))
			}
		}
		a.log.Info("open magazine",
			zap.String("magazine", msg.Magazine.ID),
			zap.String("mode", msg.Mode),
			zap.Int("page", msg.Page))
		if msg.Mode == models.ModePDF {
			a.readerView.SetMagazine(msg.Magazine, msg.Page)
			return a.switchView(views.ViewReader, true)
		}
		a.flipbookView.SetMagazine(msg.Magazine, msg.Page)
		return a.switchView(views.ViewFlipbook, true)

	case views.ShowDetailMsg:
		a.detailView.SetMagazine(msg.Magazine)
		return a.switchView(views.ViewDetail, true)

	case views.ShowTeamMsg:
		a.teamView.SetMagazine(msg.Magazine)
		return a.switchView(views.ViewTeam, true)

	case views.DownloadMsg:
		a.downloadView.SetMagazine(msg.Magazine)
		return a.switchView(views.ViewDownload, true)

	case views.CatalogChangedMsg:
		// Every list and page showing catalog data refreshes
		var cmds []tea.Cmd
		for _, v := range []views.View{a.homeView, a.detailView, a.teamView} {
			_, cmd := v.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case views.ThemeChangedMsg:
		a.resizeAll()
		return a, nil

	case views.ErrorMsg:
		a.err = msg.Err
		return a, nil

	case views.ClearErrorMsg:
		a.err = nil
		return a, nil

	case views.SwitchViewMsg:
		return a.switchView(msg.View, true)
	}

	return a, a.delegate(msg)
}

// delegate passes msg to the current view
func (a *App) delegate(msg tea.Msg) tea.Cmd {
	_, cmd := a.getCurrentView().Update(msg)
	return cmd
}

func (a *App) resizeAll() {
	for _, v := range a.allViews() {
		v.SetSize(a.width, a.height)
	}
}

func (a *App) allViews() []views.View {
	return []views.View{a.homeView, a.detailView, a.teamView, a.downloadView, a.flipbookView, a.readerView}
}

// previous returns the view to go back to
func (a *App) previous() views.ViewType {
	if prev, ok := a.back[a.currentView]; ok && prev != a.currentView {
		return prev
	}
	return views.ViewHome
}

// View implements tea.Model
func (a *App) View() string {
	// Add help overlay if shown
	if a.showHelp {
		return a.renderHelp()
	}

	content := a.getCurrentView().View()

	// Add error bar if there's an error
	if a.err != nil {
		errorBar := styles.ErrorStyle.Render("Error: " + a.err.Error())
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorBar)
	}
	return content
}

// switchView changes the current view. Forward navigation initializes the
// target; going back resumes it as it was left.
func (a *App) switchView(view views.ViewType, init bool) (*App, tea.Cmd) {
	if view == a.currentView && !init {
		return a, nil
	}
	a.leave()

	if init && view != a.currentView {
		a.back[view] = a.currentView
	}
	a.currentView = view
	a.err = nil
	a.showHelp = false

	// The viewers keep their document and position
	if !init && (view == views.ViewFlipbook || view == views.ViewReader) {
		return a, nil
	}
	return a, a.getCurrentView().Init()
}

// leave lets the current view persist its state and removes page images
// from the terminal
func (a *App) leave() {
	if l, ok := a.getCurrentView().(leaver); ok {
		l.Leave()
	}
	if a.currentView == views.ViewFlipbook || a.currentView == views.ViewReader {
		terminal.Clear(a.out, a.deps.Protocol)
	}
}

func (a *App) quit() (*App, tea.Cmd) {
	a.leave()
	return a, tea.Quit
}

// getCurrentView returns the current view model
func (a *App) getCurrentView() views.View {
	switch a.currentView {
	case views.ViewDetail:
		return a.detailView
	case views.ViewTeam:
		return a.teamView
	case views.ViewDownload:
		return a.downloadView
	case views.ViewFlipbook:
		return a.flipbookView
	case views.ViewReader:
		return a.readerView
	default:
		return a.homeView
	}
}

// renderHelp renders the help overlay from the key map
func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Keyboard Shortcuts") + "\n")
	for i, section := range a.keys.helpSections() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.HelpKey.Render(section.title) + "\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString("  " + lipgloss.NewStyle().Width(10).Render(h.Key) + h.Desc + "\n")
		}
	}
	b.WriteString("\n" + styles.MutedText.Render("Image protocol: "+a.deps.Protocol.String()))

	help := styles.Dialog.Width(min(60, max(30, a.width-4))).Render(b.String())

	// Center the help dialog
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		help,
	)
}
