package convert

import (
	"fmt"
	"sort"
)

// FileQueue is the ordered sequence of files the user has added. Insertion
// order is preserved and duplicates by name are allowed.
type FileQueue []SelectableFile

// Selection is the set of queue indices the user has ticked. The UI uses
// checkbox semantics: toggling adds or removes a single index.
type Selection map[int]struct{}

// Indices returns the selected indices in ascending order
func (s Selection) Indices() []int {
	indices := make([]int, 0, len(s))
	for index := range s {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

// Queue owns the file queue together with its selection so the two can
// never drift apart. Callers needing concurrent access must serialize
// externally - the HTTP layer holds it behind a mutex.
type Queue struct {
	Files    FileQueue
	Selected Selection
}

// NewQueue returns an empty queue with an empty selection
func NewQueue() *Queue {
	return &Queue{
		Files:    FileQueue{},
		Selected: Selection{},
	}
}

// Add appends a file to the queue and returns its index
func (q *Queue) Add(file SelectableFile) int {
	q.Files = append(q.Files, file)
	return len(q.Files) - 1
}

// Remove deletes the file at index i. The selection is renumbered in the
// same step: selected indices above i shift down by one, an entry equal to
// i is dropped and entries below i are untouched, so the selection can
// never reference a removed or renumbered-incorrectly position.
func (q *Queue) Remove(i int) (SelectableFile, error) {
	if i < 0 || i >= len(q.Files) {
		return SelectableFile{}, fmt.Errorf("queue index %d out of range (queue has %d files)", i, len(q.Files))
	}
	removed := q.Files[i]
	q.Files = append(q.Files[:i], q.Files[i+1:]...)

	renumbered := Selection{}
	for index := range q.Selected {
		switch {
		case index < i:
			renumbered[index] = struct{}{}
		case index > i:
			renumbered[index-1] = struct{}{}
		}
	}
	q.Selected = renumbered
	return removed, nil
}

// Clear empties the queue and the selection
func (q *Queue) Clear() {
	q.Files = FileQueue{}
	q.Selected = Selection{}
}

// Select marks the file at index i as selected
func (q *Queue) Select(i int) error {
	if i < 0 || i >= len(q.Files) {
		return fmt.Errorf("queue index %d out of range (queue has %d files)", i, len(q.Files))
	}
	q.Selected[i] = struct{}{}
	return nil
}

// Deselect removes index i from the selection
func (q *Queue) Deselect(i int) error {
	if i < 0 || i >= len(q.Files) {
		return fmt.Errorf("queue index %d out of range (queue has %d files)", i, len(q.Files))
	}
	delete(q.Selected, i)
	return nil
}
