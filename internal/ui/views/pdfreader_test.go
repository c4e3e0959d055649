package views

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/justyntemme/brahmand-t/pkg/models"
)

func TestPDFReaderMissingFile(t *testing.T) {
	v := NewPDFReaderView(testDeps(t))
	v.SetSize(100, 30)
	v.SetMagazine(models.Magazine{ID: "7", Title: "Lost Issue", File: "issues/lost.pdf", Pages: 12}, 3)

	if !strings.Contains(v.View(), "Opening PDF...") {
		t.Error("no loading state before the PDF opens")
	}
	run(t, v, v.Init())

	if v.err == nil {
		t.Fatal("missing PDF did not fail")
	}
	if out := v.View(); !strings.Contains(out, "Could not open Lost Issue") {
		t.Errorf("error not shown:\n%s", out)
	}

	// Navigation is disabled, recovery is not
	if _, cmd := v.Update(keyMsg("n")); cmd != nil || v.CurrentPage() != 0 {
		t.Error("navigated without a document")
	}
	_, cmd := v.Update(keyMsg("d"))
	if cmd == nil {
		t.Fatal("d offered no download")
	}
	if msg, ok := cmd().(DownloadMsg); !ok || msg.Magazine.ID != "7" {
		t.Errorf("got %#v", msg)
	}
}

func TestPDFReaderIgnoresStaleOpen(t *testing.T) {
	v := NewPDFReaderView(testDeps(t))
	v.SetMagazine(models.Magazine{ID: "1", Title: "First", File: "a.pdf", Pages: 4}, 0)
	old := v.session
	v.SetMagazine(models.Magazine{ID: "2", Title: "Second", File: "b.pdf", Pages: 8}, 0)

	v.Update(pdfOpenedMsg{session: old, total: 4})
	if !v.loading || v.total != 8 {
		t.Errorf("stale open applied: loading %v, total %d", v.loading, v.total)
	}
	v.Update(pdfPageMsg{session: uuid.New()})
	if v.rendering {
		t.Error("stale page changed render state")
	}
}

func TestPDFReaderGoToPrompt(t *testing.T) {
	v := NewPDFReaderView(testDeps(t))
	v.SetMagazine(models.Magazine{ID: "1", Title: "First", File: "a.pdf", Pages: 4}, 0)
	// Pretend the document opened
	v.loading = false
	v.page, v.total = 1, 4

	v.Update(keyMsg(":"))
	if !v.CapturesInput() {
		t.Fatal("prompt does not capture input")
	}
	v.gotoInput.SetValue("12")
	v.Update(keyMsg("enter"))
	if v.status != "Enter a page between 1 and 4" || !v.CapturesInput() {
		t.Errorf("status %q", v.status)
	}
	v.gotoInput.SetValue("3")
	v.Update(keyMsg("enter"))
	if v.CapturesInput() || v.CurrentPage() != 3 {
		t.Errorf("page %d after go to 3", v.CurrentPage())
	}

	v.Update(keyMsg("n"))
	v.Update(keyMsg("n"))
	if v.CurrentPage() != 4 {
		t.Errorf("page %d, want to stop at 4", v.CurrentPage())
	}
	v.Update(keyMsg("g"))
	if v.CurrentPage() != 1 {
		t.Errorf("page %d after g", v.CurrentPage())
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		width    int
		progress float64
		want     string
	}{
		{10, 0, "░░░░░░░░░░"},
		{10, 0.5, "█████░░░░░"},
		{10, 1, "██████████"},
		{8, 0.5625, "████▌░░░"},
		{4, 2, "████"},
		{1, 0, "░░░"},
	}
	for _, tt := range tests {
		if got := renderProgressBar(tt.width, tt.progress); got != tt.want {
			t.Errorf("renderProgressBar(%d, %v) = %q, want %q", tt.width, tt.progress, got, tt.want)
		}
	}
}
