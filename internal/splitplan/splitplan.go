// Package splitplan partitions a document's pages into contiguous, near-equal parts.
package splitplan

import "fmt"

// Range is a 1-based inclusive page range.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Size returns the number of pages in r.
func (r Range) Size() int { return r.End - r.Start + 1 }

func (r Range) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Pages lists the page numbers covered by r.
func (r Range) Pages() []int {
	pages := make([]int, 0, r.Size())
	for p := r.Start; p <= r.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

// InvalidSplitError reports a split count that cannot partition the document.
type InvalidSplitError struct {
	Total  int
	Splits int
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("invalid split of %d pages into %d parts: %s", e.Total, e.Splits, e.Reason)
}

// Distribute splits totalPages into numSplits contiguous ranges whose sizes
// differ by at most one; the first totalPages%numSplits ranges get the extra page.
// Requesting more parts than pages is rejected so no part is ever empty.
func Distribute(totalPages, numSplits int) ([]Range, error) {
	switch {
	case numSplits < 1:
		return nil, &InvalidSplitError{Total: totalPages, Splits: numSplits, Reason: "number of splits must be at least 1"}
	case totalPages < 1:
		return nil, &InvalidSplitError{Total: totalPages, Splits: numSplits, Reason: "document has no pages"}
	case numSplits > totalPages:
		return nil, &InvalidSplitError{Total: totalPages, Splits: numSplits, Reason: fmt.Sprintf("number of splits exceeds page count %d", totalPages)}
	}

	base := totalPages / numSplits
	remainder := totalPages % numSplits

	plan := make([]Range, 0, numSplits)
	start := 1
	for i := 0; i < numSplits; i++ {
		size := base
		if i < remainder {
			size++
		}
		plan = append(plan, Range{Start: start, End: start + size - 1})
		start += size
	}
	return plan, nil
}
