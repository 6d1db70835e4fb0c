package convert

import (
	"reflect"
	"testing"
)

func testFile(name, mediaType string) SelectableFile {
	return SelectableFile{Name: name, MediaType: mediaType, SizeBytes: 100}
}

func TestQueueRemoveRenumbersSelection(t *testing.T) {
	queue := NewQueue()
	for i := 0; i < 5; i++ {
		queue.Add(testFile("doc.pdf", "application/pdf"))
	}
	for _, i := range []int{1, 2, 3} {
		if err := queue.Select(i); err != nil {
			t.Fatalf("Select(%d) failed: %v", i, err)
		}
	}

	// Removing index 2: selected 2 is dropped, selected 3 shifts to 2
	if _, err := queue.Remove(2); err != nil {
		t.Fatalf("Remove(2) failed: %v", err)
	}

	want := []int{1, 2}
	if got := queue.Selected.Indices(); !reflect.DeepEqual(got, want) {
		t.Errorf("selection after removal = %v, want %v", got, want)
	}
	for _, index := range queue.Selected.Indices() {
		if index >= len(queue.Files) {
			t.Errorf("selection references index %d beyond queue length %d", index, len(queue.Files))
		}
	}
}

func TestQueueRemoveSelectionBelowUnchanged(t *testing.T) {
	queue := NewQueue()
	for i := 0; i < 4; i++ {
		queue.Add(testFile("img.png", "image/png"))
	}
	queue.Select(0)
	queue.Select(1)

	if _, err := queue.Remove(3); err != nil {
		t.Fatalf("Remove(3) failed: %v", err)
	}
	if got := queue.Selected.Indices(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("selection = %v, want [0 1]", got)
	}
}

func TestQueueRemoveOutOfRange(t *testing.T) {
	queue := NewQueue()
	queue.Add(testFile("a.png", "image/png"))
	if _, err := queue.Remove(5); err == nil {
		t.Error("Remove(5) on single-file queue expected error, got nil")
	}
	if _, err := queue.Remove(-1); err == nil {
		t.Error("Remove(-1) expected error, got nil")
	}
}

func TestQueueClearDropsSelection(t *testing.T) {
	queue := NewQueue()
	queue.Add(testFile("a.png", "image/png"))
	queue.Select(0)
	queue.Clear()
	if len(queue.Files) != 0 || len(queue.Selected) != 0 {
		t.Errorf("Clear left files=%d selected=%d", len(queue.Files), len(queue.Selected))
	}
}

func TestQueueAllowsDuplicateNames(t *testing.T) {
	queue := NewQueue()
	queue.Add(testFile("same.pdf", "application/pdf"))
	index := queue.Add(testFile("same.pdf", "application/pdf"))
	if index != 1 {
		t.Errorf("second Add returned index %d, want 1", index)
	}
	if len(queue.Files) != 2 {
		t.Errorf("queue length = %d, want 2 (duplicates by name are allowed)", len(queue.Files))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mediaType string
		want      FileClass
	}{
		{"image/png", ClassImage},
		{"image/jpeg", ClassImage},
		{"image/webp", ClassImage},
		{"application/pdf", ClassPdf},
		{"application/pdf+extra", ClassUnsupported},
		{"text/plain", ClassUnsupported},
		{"", ClassUnsupported},
	}
	for _, tt := range tests {
		file := testFile("x", tt.mediaType)
		if got := Classify(file); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
		// Classification has no state - a second call must agree
		if got := Classify(file); got != tt.want {
			t.Errorf("Classify(%q) second call = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}
