package zoom

import (
	"math"
	"testing"
)

func TestFlipbookSaturates(t *testing.T) {
	s := New(FlipbookBounds)
	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	if s.Level != 2.0 {
		t.Errorf("got %v, want 2.0", s.Level)
	}
	if s.ZoomIn() {
		t.Error("ZoomIn at max reported a change")
	}
	for i := 0; i < 20; i++ {
		s.ZoomOut()
	}
	if s.Level != 0.5 {
		t.Errorf("got %v, want 0.5", s.Level)
	}
}

func TestReaderSteps(t *testing.T) {
	s := New(ReaderBounds)
	s.ZoomIn()
	s.ZoomIn()
	if s.Percent() != 120 {
		t.Errorf("got %d%%, want 120%%", s.Percent())
	}
	for i := 0; i < 40; i++ {
		s.ZoomOut()
	}
	if s.Level != 0.3 || !s.AtMin() {
		t.Errorf("got %v, want 0.3", s.Level)
	}
	s.SetLevel(10)
	if s.Level != 3.0 || !s.AtMax() {
		t.Errorf("got %v, want 3.0", s.Level)
	}
}

func TestStepsDoNotDrift(t *testing.T) {
	s := New(FlipbookBounds)
	s.ZoomIn()
	s.ZoomIn()
	s.ZoomOut()
	s.ZoomOut()
	if s.Level != 1.0 {
		t.Errorf("got %v after in/in/out/out, want 1.0", s.Level)
	}
}

func TestRotateCycles(t *testing.T) {
	s := New(FlipbookBounds)
	want := []int{90, 180, 270, 0, 90}
	for i, w := range want {
		s.Rotate()
		if s.Rotation != w {
			t.Errorf("rotation %d: got %d, want %d", i, s.Rotation, w)
		}
	}
	s.Reset()
	if s.Rotation != 90 {
		t.Error("Reset touched rotation")
	}
	if s.String() != "100% 90°" {
		t.Errorf("got %q", s.String())
	}
}

func TestDeviceForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  DeviceMode
	}{
		{40, Mobile},
		{95, Mobile},
		{96, Tablet},
		{127, Tablet},
		{128, Desktop},
		{300, Desktop},
	}
	for _, tt := range tests {
		if got := DeviceForWidth(tt.width, 96, 128); got != tt.want {
			t.Errorf("DeviceForWidth(%d) = %s, want %s", tt.width, got, tt.want)
		}
	}
}

func TestOptimalScale(t *testing.T) {
	tests := []struct {
		name                       string
		pageW, pageH, viewW, viewH float64
		mode                       DeviceMode
		want                       float64
	}{
		{"fits width", 600, 800, 300, 800, Desktop, 0.5},
		{"desktop cap", 600, 800, 2000, 2000, Desktop, 1.0},
		{"tablet cap", 600, 800, 2000, 2000, Tablet, 1.2},
		{"mobile cap", 600, 800, 2000, 2000, Mobile, 1.5},
		{"floor", 600, 800, 60, 80, Desktop, 0.3},
		{"invalid page", 0, 800, 100, 100, Desktop, 1.0},
		{"invalid view", 600, 800, -1, 100, Mobile, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimalScale(tt.pageW, tt.pageH, tt.viewW, tt.viewH, tt.mode)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewParams(t *testing.T) {
	tests := map[DeviceMode]string{
		Mobile:  "navpanes=0&scrollbar=1&toolbar=1&view=FitV",
		Tablet:  "navpanes=1&scrollbar=1&toolbar=1&view=FitH",
		Desktop: "navpanes=1&scrollbar=1&statusbar=1&toolbar=1&view=Fit",
	}
	for mode, want := range tests {
		if got := ViewParams(mode); got != want {
			t.Errorf("%s: got %q, want %q", mode, got, want)
		}
	}
}
