package terminal

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoOpener is returned when the platform has no known URL/file opener
var ErrNoOpener = errors.New("no external opener available")

// opener returns the command that hands target to the desktop
func opener(target string) (*exec.Cmd, error) {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		name = "xdg-open"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoOpener, name)
	}
	return exec.Command(bin, append(args, target)...), nil
}

// OpenExternal opens a file or URL with the desktop's default application.
// It does not wait for the application to exit.
func OpenExternal(target string) error {
	cmd, err := opener(target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
