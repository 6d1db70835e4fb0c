package convert

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseExclusions(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		totalPages int
		want       []int
	}{
		{"single pages and a range", "1,4-6", 10, []int{0, 3, 4, 5}},
		{"reversed range is normalized", "6-4", 10, []int{3, 4, 5}},
		{"empty spec excludes nothing", "", 5, []int{}},
		{"whitespace around tokens", " 1 , 4 - 6 ", 10, []int{0, 3, 4, 5}},
		{"duplicates collapse", "2,2,1-3", 10, []int{0, 1, 2}},
		{"out of range entries dropped", "1,999", 5, []int{0}},
		{"zero is dropped", "0,2", 5, []int{1}},
		{"trailing comma", "3,", 5, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExclusions(tt.spec, tt.totalPages)
			if err != nil {
				t.Fatalf("ParseExclusions(%q, %d) returned error: %v", tt.spec, tt.totalPages, err)
			}
			if !reflect.DeepEqual(got.Sorted(), tt.want) {
				t.Errorf("ParseExclusions(%q, %d) = %v, want %v", tt.spec, tt.totalPages, got.Sorted(), tt.want)
			}
		})
	}
}

func TestParseExclusionsErrors(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		totalPages int
	}{
		{"non numeric token", "abc", 5},
		{"non numeric range endpoint", "1-x", 5},
		{"excludes every page", "1,2,3", 3},
		{"range covering whole document", "1-5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExclusions(tt.spec, tt.totalPages)
			if err == nil {
				t.Fatalf("ParseExclusions(%q, %d) expected error, got nil", tt.spec, tt.totalPages)
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected *ValidationError, got %T: %v", err, err)
			}
		})
	}
}

// TestParseExclusionsHugeRange checks that a range token spanning most of
// the int64 space is clamped to the document instead of iterated, so the
// call returns promptly
func TestParseExclusionsHugeRange(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)

		got, err := ParseExclusions("3-9223372036854775807", 5)
		if err != nil {
			t.Errorf("ParseExclusions returned error: %v", err)
			return
		}
		if !reflect.DeepEqual(got.Sorted(), []int{2, 3, 4}) {
			t.Errorf("ParseExclusions = %v, want [2 3 4]", got.Sorted())
		}

		// Same token from page 1 covers the whole document
		if _, err := ParseExclusions("1-9223372036854775807", 5); err == nil {
			t.Error("expected full-document exclusion error, got nil")
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ParseExclusions did not return within 5s on a huge range token")
	}
}

// TestParseExclusionsNeverOutOfRange checks the parser never emits an index
// outside [0, totalPages) for a spread of inputs
func TestParseExclusionsNeverOutOfRange(t *testing.T) {
	specs := []string{"1", "1-100", "50,60-70", "10-2", "1,1,1", "99"}
	for _, spec := range specs {
		for totalPages := 2; totalPages <= 20; totalPages++ {
			got, err := ParseExclusions(spec, totalPages)
			if err != nil {
				continue // full-document exclusions are expected for small counts
			}
			for page := range got {
				if page < 0 || page >= totalPages {
					t.Errorf("ParseExclusions(%q, %d) produced out of range index %d", spec, totalPages, page)
				}
			}
		}
	}
}
