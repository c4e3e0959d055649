// Package zoom holds the zoom and rotation state of the viewers and the
// device-dependent sizing rules of the PDF reader.
package zoom

import (
	"fmt"
	"math"
	"net/url"
)

// Bounds describes the allowed zoom range and the step per user action
type Bounds struct {
	Min, Max, Step float64
}

var (
	// FlipbookBounds is used by the image flipbook
	FlipbookBounds = Bounds{Min: 0.5, Max: 2.0, Step: 0.2}
	// ReaderBounds is used by the PDF reader
	ReaderBounds = Bounds{Min: 0.3, Max: 3.0, Step: 0.1}
)

// MinReadableScale is the floor applied by OptimalScale
const MinReadableScale = 0.3

// State is the zoom level and rotation of a viewer
type State struct {
	Level    float64
	Rotation int
	Bounds   Bounds
}

// New creates a state at 100% inside bounds
func New(b Bounds) State {
	return State{Level: clamp(1.0, b.Min, b.Max), Bounds: b}
}

// ZoomIn raises the level by one step, saturating at the maximum
func (s *State) ZoomIn() bool {
	return s.set(s.Level + s.Bounds.Step)
}

// ZoomOut lowers the level by one step, saturating at the minimum
func (s *State) ZoomOut() bool {
	return s.set(s.Level - s.Bounds.Step)
}

// SetLevel sets an explicit level, clamped to the bounds
func (s *State) SetLevel(level float64) bool {
	return s.set(level)
}

// Reset returns to 100% without touching rotation
func (s *State) Reset() {
	s.Level = clamp(1.0, s.Bounds.Min, s.Bounds.Max)
}

// Rotate turns the page clockwise by 90 degrees
func (s *State) Rotate() {
	s.Rotation = (s.Rotation + 90) % 360
}

// AtMax reports whether the level cannot grow further
func (s State) AtMax() bool { return s.Level >= s.Bounds.Max }

// AtMin reports whether the level cannot shrink further
func (s State) AtMin() bool { return s.Level <= s.Bounds.Min }

// Percent returns the level as a whole percentage
func (s State) Percent() int {
	return int(math.Round(s.Level * 100))
}

// String renders e.g. "120% 90°"
func (s State) String() string {
	if s.Rotation == 0 {
		return fmt.Sprintf("%d%%", s.Percent())
	}
	return fmt.Sprintf("%d%% %d°", s.Percent(), s.Rotation)
}

func (s *State) set(level float64) bool {
	level = clamp(round2(level), s.Bounds.Min, s.Bounds.Max)
	if level == s.Level {
		return false
	}
	s.Level = level
	return true
}

// DeviceMode is the size class of the viewport
type DeviceMode int

const (
	Desktop DeviceMode = iota
	Tablet
	Mobile
)

func (m DeviceMode) String() string {
	switch m {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// DeviceForWidth classifies a viewport width. Widths below mobileMax are
// mobile, below tabletMax tablet, anything else desktop.
func DeviceForWidth(width, mobileMax, tabletMax int) DeviceMode {
	switch {
	case width < mobileMax:
		return Mobile
	case width < tabletMax:
		return Tablet
	default:
		return Desktop
	}
}

// Cap returns the largest scale allowed for the mode
func (m DeviceMode) Cap() float64 {
	switch m {
	case Mobile:
		return 1.5
	case Tablet:
		return 1.2
	default:
		return 1.0
	}
}

// OptimalScale fits a page of pageW x pageH into viewW x viewH. The result is
// capped by the device mode and never drops below MinReadableScale.
// Non-positive dimensions yield 1.
func OptimalScale(pageW, pageH, viewW, viewH float64, mode DeviceMode) float64 {
	if pageW <= 0 || pageH <= 0 || viewW <= 0 || viewH <= 0 {
		return 1.0
	}
	scale := math.Min(viewW/pageW, viewH/pageH)
	scale = math.Min(scale, mode.Cap())
	return math.Max(scale, MinReadableScale)
}

// ViewParams returns the open parameters passed to an external PDF viewer
// for the mode, encoded as a URL fragment
func ViewParams(mode DeviceMode) string {
	v := url.Values{}
	v.Set("toolbar", "1")
	v.Set("scrollbar", "1")
	switch mode {
	case Mobile:
		v.Set("view", "FitV")
		v.Set("navpanes", "0")
	case Tablet:
		v.Set("view", "FitH")
		v.Set("navpanes", "1")
	default:
		v.Set("view", "Fit")
		v.Set("navpanes", "1")
		v.Set("statusbar", "1")
	}
	return v.Encode()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
