package views

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/pages"
	"github.com/justyntemme/brahmand-t/internal/ui/styles"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// downloadTimeout bounds a single export, remote downloads included
const downloadTimeout = 5 * time.Minute

// DownloadView lets the user pick a directory and saves the PDF of an issue
// into it
type DownloadView struct {
	deps Deps

	magazine    models.Magazine
	filepicker  filepicker.Model
	downloading bool
	target      string
	result      *downloadResult

	width  int
	height int
}

type downloadResult struct {
	path string
	size int64
	err  error
}

type downloadCompleteMsg struct {
	path string
	size int64
	err  error
}

type clearResultMsg struct{}

// NewDownloadView creates a new download view
func NewDownloadView(deps Deps) *DownloadView {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = false
	fp.AutoHeight = false
	fp.SetHeight(12)
	fp.CurrentDirectory = startDir(deps)

	return &DownloadView{
		deps:       deps,
		filepicker: fp,
		width:      80,
		height:     24,
	}
}

// startDir is the configured download directory, created on demand, or the
// working directory when that fails
func startDir(deps Deps) string {
	if deps.Settings != nil && deps.Settings.DownloadDir != "" {
		if err := os.MkdirAll(deps.Settings.DownloadDir, 0o755); err == nil {
			return deps.Settings.DownloadDir
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// SetMagazine sets the issue to save
func (v *DownloadView) SetMagazine(m models.Magazine) {
	v.magazine = m
	v.result = nil
	v.target = ""
}

// Busy reports whether an export is running
func (v *DownloadView) Busy() bool {
	return v.downloading
}

// Init implements View
func (v *DownloadView) Init() tea.Cmd {
	return v.filepicker.Init()
}

// Update implements View
func (v *DownloadView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.downloading {
			// Can't navigate away during a download
			return v, nil
		}
		switch msg.String() {
		case ".", "s":
			return v, v.startDownload(v.filepicker.CurrentDirectory)
		}

	case downloadCompleteMsg:
		v.downloading = false
		v.result = &downloadResult{path: msg.path, size: msg.size, err: msg.err}
		return v, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
			return clearResultMsg{}
		})

	case clearResultMsg:
		v.result = nil
		v.target = ""
		return v, nil
	}

	var cmd tea.Cmd
	v.filepicker, cmd = v.filepicker.Update(msg)

	if didSelect, path := v.filepicker.DidSelectFile(msg); didSelect {
		return v, tea.Batch(cmd, v.startDownload(path))
	}

	return v, cmd
}

func (v *DownloadView) startDownload(dir string) tea.Cmd {
	v.downloading = true
	v.target = dir
	v.result = nil

	deps, m := v.deps, v.magazine
	log := deps.logger()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()

		path, n, err := deps.Locator.Export(ctx, m, dir)
		if err != nil {
			log.Error("download failed", zap.String("magazine", m.ID), zap.String("dir", dir), zap.Error(err))
			return downloadCompleteMsg{err: err}
		}
		log.Info("downloaded", zap.String("magazine", m.ID), zap.String("path", path), zap.Int64("bytes", n))
		return downloadCompleteMsg{path: path, size: n}
	}
}

// View implements View
func (v *DownloadView) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleBar.Render(" Download ") + " " + styles.IssueTitle.Render(v.magazine.Title) + "\n\n")

	b.WriteString(styles.Help.Render("Choose a directory and press Enter, or press s to save here") + "\n")
	b.WriteString(styles.MutedText.Render("Saving as "+pages.FileName(v.magazine)) + "\n")
	b.WriteString(styles.SecondaryText.Render(v.filepicker.CurrentDirectory) + "\n\n")

	if v.downloading {
		b.WriteString(styles.SecondaryText.Render(fmt.Sprintf("Saving to %s...", v.target)) + "\n\n")
	}

	if v.result != nil {
		if v.result.err == nil {
			saved := fmt.Sprintf("Saved %s (%s)", v.result.path, humanize.Bytes(uint64(v.result.size)))
			b.WriteString(styles.SuccessStyle.Render(saved) + "\n\n")
		} else {
			b.WriteString(styles.ErrorStyle.Render("Download failed: "+v.result.err.Error()) + "\n\n")
		}
	}

	b.WriteString(v.filepicker.View())

	b.WriteString("\n\n")
	help := []string{
		styles.HelpKey.Render("↑/↓") + styles.Help.Render(" navigate"),
		styles.HelpKey.Render("l") + styles.Help.Render(" open"),
		styles.HelpKey.Render("h") + styles.Help.Render(" up"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" save in selected"),
		styles.HelpKey.Render("s") + styles.Help.Render(" save here"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" back"),
	}
	b.WriteString(strings.Join(help, "  "))

	content := styles.Dialog.Width(max(20, v.width-4)).Render(b.String())

	return lipgloss.Place(
		v.width,
		v.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// SetSize implements View
func (v *DownloadView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.filepicker.SetHeight(max(5, height-16))
}
