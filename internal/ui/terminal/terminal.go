package terminal

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"io"
	"strings"

	"github.com/BourgeoisBear/rasterm"
)

// Protocol is the inline image protocol spoken by the terminal
type Protocol int

const (
	// ProtocolNone means pages are drawn as text placeholders
	ProtocolNone Protocol = iota
	ProtocolKitty
	ProtocolIterm
	ProtocolSixel
)

// PageImageID is the Kitty image ID of the page surface, so it can be
// replaced or deleted without touching other images
const PageImageID uint32 = 4040

// Approximate cell size in pixels, used to size page images
const (
	CellWidth  = 10
	CellHeight = 20
)

// String returns a human-readable name for the protocol
func (p Protocol) String() string {
	switch p {
	case ProtocolKitty:
		return "Kitty"
	case ProtocolIterm:
		return "iTerm2"
	case ProtocolSixel:
		return "Sixel"
	default:
		return "None"
	}
}

// ParseProtocol maps a setting to a protocol. "auto" and "" detect it.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Detect(), nil
	case "kitty":
		return ProtocolKitty, nil
	case "iterm", "iterm2":
		return ProtocolIterm, nil
	case "sixel":
		return ProtocolSixel, nil
	case "none", "text":
		return ProtocolNone, nil
	}
	return ProtocolNone, fmt.Errorf("unknown image protocol %q", s)
}

// Detect checks which image protocol the terminal supports
func Detect() Protocol {
	if rasterm.IsKittyCapable() {
		return ProtocolKitty
	}
	if rasterm.IsItermCapable() {
		return ProtocolIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return ProtocolSixel
	}
	return ProtocolNone
}

// PixelSize converts a cell area to an image size in pixels
func PixelSize(cols, rows int) (int, int) {
	return max(cols, 1) * CellWidth, max(rows, 1) * CellHeight
}

// ToPaletted converts an image to a paletted image required for Sixel
func ToPaletted(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	return paletted
}

// Render encodes img as an escape sequence for protocol p. For Kitty the
// image is tagged with id so ClearPage can remove it.
func Render(img image.Image, p Protocol, id uint32) (string, error) {
	var buf bytes.Buffer
	var err error

	switch p {
	case ProtocolKitty:
		err = rasterm.KittyWriteImage(&buf, img, rasterm.KittyImgOpts{ImageId: id})
	case ProtocolIterm:
		err = rasterm.ItermWriteImage(&buf, img)
	case ProtocolSixel:
		// Written to a buffer so bubbletea owns the output
		err = rasterm.SixelWriteImage(&buf, ToPaletted(img))
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ClearPage returns the escape sequence that removes the page surface while
// leaving the header in place
func ClearPage(p Protocol) string {
	switch p {
	case ProtocolKitty:
		return fmt.Sprintf("\x1b_Ga=d,i=%d\x1b\\", PageImageID)
	case ProtocolIterm, ProtocolSixel:
		// Inline images live in the character grid: clear below the header
		return "\x1b[2;1H\x1b[J"
	default:
		return ""
	}
}

// ClearAll returns the escape sequence that removes every image
func ClearAll(p Protocol) string {
	switch p {
	case ProtocolKitty:
		return "\x1b_Ga=d,d=A\x1b\\"
	case ProtocolIterm, ProtocolSixel:
		return "\x1b[2J\x1b[H"
	default:
		return ""
	}
}

// Clear writes the ClearAll sequence to w. Views call it before switching
// away from a screen that shows images.
func Clear(w io.Writer, p Protocol) {
	if seq := ClearAll(p); seq != "" {
		_, _ = io.WriteString(w, seq)
	}
}
