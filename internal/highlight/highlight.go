// Package highlight computes the byte spans of matched substrings so the
// front end can emphasize them in result names.
package highlight

import (
	"sort"
	"strings"

	"github.com/usestring/searchbox/internal/indexer"
)

// Span is a half-open byte range [Start, End) into the display name.
type Span struct {
	Start int
	End   int
}

// Spans returns the merged, sorted spans of every case-insensitive
// occurrence of each term in name. Overlapping and adjacent spans are
// coalesced. Empty terms are ignored.
//
// Matching runs over the folded name; spans are only returned when the
// folding did not change byte offsets (the common case for ASCII and
// most Latin text), since offsets into the folded form would not line up
// with the original name otherwise.
func Spans(name string, terms []string) []Span {
	folded := indexer.Fold(name)
	if len(folded) != len(name) {
		return nil
	}

	var spans []Span
	for _, term := range terms {
		t := indexer.Fold(term)
		if t == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(folded[from:], t)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, Span{Start: start, End: start + len(t)})
			from = start + 1
		}
	}

	return merge(spans)
}

// Mark renders name with pre/post inserted around every span. Spans must
// come from Spans (sorted, non-overlapping).
func Mark(name string, spans []Span, pre, post string) string {
	if len(spans) == 0 {
		return name
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		if s.Start < last || s.End > len(name) {
			continue
		}
		b.WriteString(name[last:s.Start])
		b.WriteString(pre)
		b.WriteString(name[s.Start:s.End])
		b.WriteString(post)
		last = s.End
	}
	b.WriteString(name[last:])
	return b.String()
}

func merge(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		top := &merged[len(merged)-1]
		if s.Start <= top.End {
			if s.End > top.End {
				top.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
