package pages

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Background fills the gaps between and around pages
var Background = color.NRGBA{R: 10, G: 10, B: 16, A: 255}

// Compose lays pages side by side with gap pixels between them. Pages of
// different heights are scaled to the tallest one.
func Compose(imgs []image.Image, gap int) image.Image {
	switch len(imgs) {
	case 0:
		return nil
	case 1:
		return imgs[0]
	}

	height := 0
	for _, img := range imgs {
		height = max(height, img.Bounds().Dy())
	}

	scaled := make([]image.Image, len(imgs))
	width := gap * (len(imgs) - 1)
	for i, img := range imgs {
		if img.Bounds().Dy() != height {
			img = imaging.Resize(img, 0, height, imaging.Lanczos)
		}
		scaled[i] = img
		width += img.Bounds().Dx()
	}

	canvas := imaging.New(width, height, Background)
	x := 0
	for _, img := range scaled {
		canvas = imaging.Paste(canvas, img, image.Pt(x, 0))
		x += img.Bounds().Dx() + gap
	}
	return canvas
}

// View describes how a page image is shown
type View struct {
	Zoom     float64
	Rotation int
	// PanX and PanY place the visible window when zoomed in, 0 is
	// left/top and 1 is right/bottom
	PanX, PanY float64
}

// Transform applies rotation and zoom. Zooming in crops a window around the
// pan position; zooming out pads the page on a background canvas.
func Transform(img image.Image, v View) image.Image {
	if img == nil {
		return nil
	}

	switch v.Rotation % 360 {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch {
	case v.Zoom > 1:
		vw := int(float64(w) / v.Zoom)
		vh := int(float64(h) / v.Zoom)
		x := int(clamp01(v.PanX) * float64(w-vw))
		y := int(clamp01(v.PanY) * float64(h-vh))
		return imaging.Crop(img, image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+vw, b.Min.Y+y+vh))
	case v.Zoom > 0 && v.Zoom < 1:
		cw := int(float64(w) / v.Zoom)
		ch := int(float64(h) / v.Zoom)
		return imaging.PasteCenter(imaging.New(cw, ch, Background), img)
	default:
		return img
	}
}

// Fit scales img down to fit maxW x maxH pixels, keeping the aspect ratio
func Fit(img image.Image, maxW, maxH int) image.Image {
	if img == nil || maxW <= 0 || maxH <= 0 {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// Window crops img to at most w x h pixels. The pan position picks the part
// shown when the image is larger, 0 is left/top and 1 is right/bottom.
func Window(img image.Image, w, h int, panX, panY float64) image.Image {
	if img == nil || w <= 0 || h <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	vw, vh := min(w, b.Dx()), min(h, b.Dy())
	x := int(clamp01(panX) * float64(b.Dx()-vw))
	y := int(clamp01(panY) * float64(b.Dy()-vh))
	return imaging.Crop(img, image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+vw, b.Min.Y+y+vh))
}

// EncodePNG encodes img for the terminal image protocols
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
