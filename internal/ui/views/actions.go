package views

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/brahmand-t/internal/ui/terminal"
	"github.com/justyntemme/brahmand-t/internal/zoom"
	"github.com/justyntemme/brahmand-t/pkg/models"
)

// statusMsg shows a transient note in the footer of a view
type statusMsg struct {
	text string
}

type clearStatusMsg struct{}

// clearStatusAfter clears the status line after d
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// externalTarget returns what "open externally" hands to the desktop: the
// local PDF when there is one, otherwise its URL with viewer parameters for
// the device class
func externalTarget(deps Deps, m models.Magazine, device zoom.DeviceMode) (string, error) {
	if m.File == "" {
		return "", fmt.Errorf("%s has no PDF", m.Title)
	}
	if local := deps.Locator.LocalPath(m.File); local != "" {
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}
	if deps.Locator.Client == nil || deps.Locator.Client.BaseURL() == "" {
		return "", fmt.Errorf("%s: PDF not found in the library and no asset host configured", m.Title)
	}
	return deps.Locator.Client.URL(m.File) + "#" + zoom.ViewParams(device), nil
}

// openExternally opens the PDF of m with the desktop viewer. A missing
// opener is reported but does not end the session.
func openExternally(deps Deps, m models.Magazine, device zoom.DeviceMode) tea.Cmd {
	log := deps.logger()
	return func() tea.Msg {
		target, err := externalTarget(deps, m, device)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		if err := terminal.OpenExternal(target); err != nil {
			log.Warn("open externally failed", zap.String("target", target), zap.Error(err))
			return ErrorMsg{Err: err}
		}
		log.Info("opened externally", zap.String("magazine", m.ID), zap.String("target", target))
		return statusMsg{text: "Opened in external viewer"}
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
