package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValidationError is returned when a user-entered exclusion spec cannot be
// parsed or would produce an empty document
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PageIndexSet is a set of zero-based page indices
type PageIndexSet map[int]struct{}

// Sorted returns the member indices in ascending order
func (s PageIndexSet) Sorted() []int {
	pages := make([]int, 0, len(s))
	for page := range s {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// ParseExclusions parses a user-entered exclusion spec like "1, 4-6, 9" into
// the zero-based set of page indices to exclude. Page numbers are 1-based as
// the user typed them; entries outside 1..totalPages are silently dropped
// since users tend to fat-finger values near document boundaries. Reversed
// ranges ("6-4") are accepted as the same inclusive range. Excluding every
// page would produce an empty document and is an error.
func ParseExclusions(spec string, totalPages int) (PageIndexSet, error) {
	excluded := PageIndexSet{}

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		var first, last int
		if strings.Contains(token, "-") {
			endpoints := strings.SplitN(token, "-", 2)
			lo, errLo := strconv.Atoi(strings.TrimSpace(endpoints[0]))
			hi, errHi := strconv.Atoi(strings.TrimSpace(endpoints[1]))
			if errLo != nil || errHi != nil {
				return nil, &ValidationError{Message: fmt.Sprintf("malformed range %q", token)}
			}
			first, last = lo, hi
			if first > last {
				first, last = last, first
			}
		} else {
			page, err := strconv.Atoi(token)
			if err != nil {
				return nil, &ValidationError{Message: fmt.Sprintf("malformed page number %q", token)}
			}
			first, last = page, page
		}

		// Clamp to the document before iterating so a huge range token
		// costs at most totalPages iterations
		if first < 1 {
			first = 1
		}
		if last > totalPages {
			last = totalPages
		}
		for page := first; page <= last; page++ {
			excluded[page-1] = struct{}{}
		}
	}

	if totalPages > 0 && len(excluded) == totalPages {
		return nil, &ValidationError{Message: "cannot exclude all pages"}
	}

	return excluded, nil
}
