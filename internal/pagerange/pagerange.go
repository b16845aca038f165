// Package pagerange turns page selection expressions such as "1-3,5" or "all"
// into a sorted, duplicate-free list of 1-based page numbers.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// All selects every page of the document.
const All = "all"

// InvalidRangeError reports a malformed or out-of-bounds page expression.
type InvalidRangeError struct {
	Spec   string
	Token  string
	Page   int
	Max    int
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Reason == reasonOutOfBounds {
		return fmt.Sprintf("invalid page range %q: page %d out of bounds, pages must be between 1 and %d", e.Spec, e.Page, e.Max)
	}
	if e.Token != "" {
		return fmt.Sprintf("invalid page range %q: token %q: %s", e.Spec, e.Token, e.Reason)
	}
	return fmt.Sprintf("invalid page range %q: %s", e.Spec, e.Reason)
}

const reasonOutOfBounds = "out of bounds"

// Resolve parses spec against a document of maxPages pages.
// A descending token such as "5-3" is rejected rather than ignored.
func Resolve(spec string, maxPages int) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(spec), All) {
		if maxPages < 1 {
			return nil, &InvalidRangeError{Spec: spec, Max: maxPages, Reason: "document has no pages"}
		}
		pages := make([]int, maxPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]struct{})
	for _, raw := range strings.Split(spec, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return nil, &InvalidRangeError{Spec: spec, Max: maxPages, Reason: "empty token"}
		}
		start, end, err := parseToken(spec, tok, maxPages)
		if err != nil {
			return nil, err
		}
		for _, p := range []int{start, end} {
			if p < 1 || p > maxPages {
				return nil, &InvalidRangeError{Spec: spec, Token: tok, Page: p, Max: maxPages, Reason: reasonOutOfBounds}
			}
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parseToken(spec, tok string, maxPages int) (int, int, error) {
	if !strings.Contains(tok, "-") {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, 0, &InvalidRangeError{Spec: spec, Token: tok, Max: maxPages, Reason: "not an integer"}
		}
		return n, n, nil
	}

	parts := strings.Split(tok, "-")
	if len(parts) != 2 {
		return 0, 0, &InvalidRangeError{Spec: spec, Token: tok, Max: maxPages, Reason: "malformed range"}
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &InvalidRangeError{Spec: spec, Token: tok, Max: maxPages, Reason: "malformed range start"}
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &InvalidRangeError{Spec: spec, Token: tok, Max: maxPages, Reason: "malformed range end"}
	}
	if start > end {
		return 0, 0, &InvalidRangeError{Spec: spec, Token: tok, Max: maxPages, Reason: "descending range"}
	}
	return start, end, nil
}

// Format renders sorted pages in compact form, e.g. []int{1,2,3,5} -> "1-3,5".
func Format(pages []int) string {
	var b strings.Builder
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if j == i {
			b.WriteString(strconv.Itoa(pages[i]))
		} else {
			fmt.Fprintf(&b, "%d-%d", pages[i], pages[j])
		}
		i = j + 1
	}
	return b.String()
}
