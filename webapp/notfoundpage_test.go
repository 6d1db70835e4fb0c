package webapp

import (
	"testing"
)

// TestNotFoundPageRender tests that the component can be rendered
func TestNotFoundPageRender(t *testing.T) {
	page := &NotFoundPage{}

	ui := page.Render()
	if ui == nil {
		t.Error("NotFoundPage Render should not return nil")
	}

	t.Log("NotFoundPage renders successfully")
}

// TestConvertPageRender tests the convert page renders without browser state
func TestConvertPageRender(t *testing.T) {
	page := &ConvertPage{}

	ui := page.Render()
	if ui == nil {
		t.Error("ConvertPage Render should not return nil")
	}
}

// TestJobsPageFormatting exercises the display helpers
func TestJobsPageFormatting(t *testing.T) {
	page := &JobsPage{}

	if got := page.formatJobType("mergePdfs"); got != "Merge PDFs" {
		t.Errorf("formatJobType(mergePdfs) = %q", got)
	}
	if got := page.formatJobType("cleanup"); got != "Cleanup" {
		t.Errorf("formatJobType(cleanup) = %q", got)
	}

	if got := page.formatResult(`{"outputs": 3}`); got != "Outputs: 3" {
		t.Errorf("formatResult = %q", got)
	}
	if got := page.formatResult("not json"); got != "not json" {
		t.Errorf("formatResult should pass non JSON through, got %q", got)
	}
}
