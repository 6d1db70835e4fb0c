package convert

import (
	"errors"
	"testing"
)

func selectIndices(indices ...int) Selection {
	selection := Selection{}
	for _, i := range indices {
		selection[i] = struct{}{}
	}
	return selection
}

func TestResolveNothingSelected(t *testing.T) {
	queue := FileQueue{testFile("a.pdf", "application/pdf")}
	for _, op := range Operations {
		if _, err := Resolve(op, queue, Selection{}, Parameters{}); err == nil {
			t.Errorf("Resolve(%s) with empty selection expected error, got nil", op)
		}
	}
}

func TestResolveConvertImageFormat(t *testing.T) {
	queue := FileQueue{
		testFile("photo.png", "image/png"),
		testFile("scan.pdf", "application/pdf"),
		testFile("holiday.jpeg", "image/jpeg"),
	}

	job, err := Resolve(OpConvertImageFormat, queue, selectIndices(0, 1, 2), Parameters{TargetFormat: "jpg"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// The PDF in the selection is filtered out, not an error
	if len(job.Inputs) != 2 {
		t.Fatalf("job has %d inputs, want 2", len(job.Inputs))
	}
	if job.Inputs[0].Name != "photo.png" || job.Inputs[1].Name != "holiday.jpeg" {
		t.Errorf("inputs not in queue order: %v", job.Inputs)
	}

	// Only the PDF selected: no images left after filtering
	_, err = Resolve(OpConvertImageFormat, queue, selectIndices(1), Parameters{TargetFormat: "jpg"})
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected *SelectionError, got %T: %v", err, err)
	}
	if selErr.Message != "no images selected" {
		t.Errorf("message = %q, want %q", selErr.Message, "no images selected")
	}

	// Unknown target format is rejected before dispatch
	if _, err := Resolve(OpConvertImageFormat, queue, selectIndices(0), Parameters{TargetFormat: "webp"}); err == nil {
		t.Error("expected error for unsupported target format, got nil")
	}
}

func TestResolvePdfToImagesCardinality(t *testing.T) {
	queue := FileQueue{
		testFile("a.pdf", "application/pdf"),
		testFile("b.pdf", "application/pdf"),
	}

	if _, err := Resolve(OpPdfToImages, queue, selectIndices(0, 1), Parameters{}); err == nil {
		t.Error("two PDFs selected: expected SelectionError, got nil")
	}

	job, err := Resolve(OpPdfToImages, queue, selectIndices(1), Parameters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(job.Inputs) != 1 || job.Inputs[0].Name != "b.pdf" {
		t.Errorf("job inputs = %v, want just b.pdf", job.Inputs)
	}
}

func TestResolveMergeUsesWholeQueue(t *testing.T) {
	queue := FileQueue{
		testFile("a.pdf", "application/pdf"),
		testFile("b.pdf", "application/pdf"),
		testFile("c.pdf", "application/pdf"),
	}

	// Only one file selected, but merge considers every queued PDF
	job, err := Resolve(OpMergePdfs, queue, selectIndices(0), Parameters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(job.Inputs) != 3 {
		t.Errorf("merge job has %d inputs, want all 3 queued PDFs", len(job.Inputs))
	}
}

func TestResolveMergeNeedsTwoPdfs(t *testing.T) {
	queue := FileQueue{
		testFile("a.pdf", "application/pdf"),
		testFile("photo.png", "image/png"),
	}

	_, err := Resolve(OpMergePdfs, queue, selectIndices(0), Parameters{})
	var selErr *SelectionError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected *SelectionError, got %T: %v", err, err)
	}
	if selErr.Message != "need at least two PDFs" {
		t.Errorf("message = %q, want %q", selErr.Message, "need at least two PDFs")
	}
}

func TestResolveExcludePagesKeepsRawSpec(t *testing.T) {
	queue := FileQueue{testFile("report.pdf", "application/pdf")}
	params := Parameters{Exclusions: "1,4-6"}

	job, err := Resolve(OpExcludePages, queue, selectIndices(0), params)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// The exclusion string is parsed at dispatch, once the page count is known
	if job.Params.Exclusions != "1,4-6" {
		t.Errorf("job exclusion spec = %q, want %q", job.Params.Exclusions, "1,4-6")
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	queue := FileQueue{
		testFile("a.pdf", "application/pdf"),
		testFile("b.png", "image/png"),
	}
	selection := selectIndices(0, 1)

	Resolve(OpImagesToPdf, queue, selection, Parameters{})
	Resolve(OpMergePdfs, queue, selection, Parameters{})

	if len(queue) != 2 {
		t.Errorf("queue mutated by Resolve: length %d", len(queue))
	}
	if len(selection) != 2 {
		t.Errorf("selection mutated by Resolve: length %d", len(selection))
	}
}

func TestResolveUnknownOperation(t *testing.T) {
	queue := FileQueue{testFile("a.pdf", "application/pdf")}
	if _, err := Resolve(Operation("rotatePages"), queue, selectIndices(0), Parameters{}); err == nil {
		t.Error("unknown operation expected error, got nil")
	}
}
