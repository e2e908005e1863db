// Package search plans and ranks queries against the token index.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/searchbox/internal/dataset"
	"github.com/usestring/searchbox/internal/highlight"
	"github.com/usestring/searchbox/internal/indexer"
)

// Result is one ranked match. Spans cover the matched substrings of the
// record's display name.
type Result struct {
	Record dataset.Record
	Score  float64
	Spans  []highlight.Span
}

// Normalize maps a raw search-box query to its canonical form: Unicode
// case folding plus whitespace trimming and collapsing. The session uses
// the normalized form as its cache key.
func Normalize(query string) string {
	return strings.Join(strings.Fields(indexer.Fold(query)), " ")
}

// Index is the subset of the indexer the engine plans against.
// *indexer.Index satisfies it; reads on a built index are lock-free.
type Index interface {
	AllDocIDs() *roaring.Bitmap
	BitmapForPrefix(prefix string) *roaring.Bitmap
	Meta(docID uint32) *dataset.Record
}

// Engine ranks records against as-you-type queries. It holds no per-query
// cache; sessions memoize results on their side.
type Engine struct {
	idx Index

	// group collapses identical queries computed concurrently by
	// different sessions.
	group singleflight.Group
}

// New creates an engine over a built index.
func New(idx Index) *Engine {
	return &Engine{idx: idx}
}

// Search returns every record matching the query, ranked best-first.
// The query is normalized internally; an empty normalized query yields no
// results. The returned slice is freshly allocated on every computation
// but shared between callers collapsed by singleflight, so callers must
// not mutate it.
func (e *Engine) Search(ctx context.Context, query string) ([]Result, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return nil, nil
	}

	v, err, _ := e.group.Do(normalized, func() (any, error) {
		return e.compute(normalized), nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.([]Result), nil
}

// compute runs the actual plan: AND across query tokens of prefix unions,
// then a substring post-filter, then scoring.
func (e *Engine) compute(normalized string) []Result {
	tokens := indexer.Tokenize(normalized)
	terms := strings.Fields(normalized)

	candidates := e.planTokens(tokens)
	results := e.score(candidates, normalized, terms)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Record.Name != results[j].Record.Name {
			return results[i].Record.Name < results[j].Record.Name
		}
		return results[i].Record.ID < results[j].Record.ID
	})

	return results
}

// planTokens narrows the candidate set with the posting bitmaps: each
// query token must match some indexed token by prefix. Terms too short to
// tokenize (single runes) contribute no bitmap and are handled entirely
// by the post-filter scan.
func (e *Engine) planTokens(tokens []string) *roaring.Bitmap {
	result := e.idx.AllDocIDs()

	for _, token := range tokens {
		result.And(e.idx.BitmapForPrefix(token))
		if result.IsEmpty() {
			break
		}
	}

	return result
}

// score post-filters candidates (every term must appear as a substring of
// the folded name or a folded keyword) and assigns ranking scores.
func (e *Engine) score(candidates *roaring.Bitmap, normalized string, terms []string) []Result {
	results := make([]Result, 0, candidates.GetCardinality())

	iter := candidates.Iterator()
	for iter.HasNext() {
		docID := iter.Next()
		meta := e.idx.Meta(docID)
		if meta == nil {
			continue
		}

		foldedName := indexer.Fold(meta.Name)
		score, ok := scoreRecord(foldedName, meta.Keywords, normalized, terms)
		if !ok {
			continue
		}

		results = append(results, Result{
			Record: *meta,
			Score:  score,
			Spans:  highlight.Spans(meta.Name, terms),
		})
	}

	return results
}

// scoreRecord checks that every term occurs in the record and weighs how
// well the record matches:
//   - whole-query prefix of the name: 0.5
//   - per-term name hits, boosted by how early the earliest hit is: up to 0.3
//   - short names edge out long ones at equal relevance: up to 0.1
//   - keyword-only matches score below any name match.
func scoreRecord(foldedName string, keywords []string, normalized string, terms []string) (float64, bool) {
	var score float64

	if strings.HasPrefix(foldedName, normalized) {
		score += 0.5
	}

	nameHits := 0
	earliest := len(foldedName)
	for _, term := range terms {
		if i := strings.Index(foldedName, term); i >= 0 {
			nameHits++
			if i < earliest {
				earliest = i
			}
			continue
		}
		if !keywordMatch(keywords, term) {
			return 0, false
		}
	}

	if nameHits > 0 {
		hitShare := float64(nameHits) / float64(len(terms))
		position := 1.0 - float64(earliest)/float64(len(foldedName)+1)
		score += hitShare * position * 0.3
	}

	score += 0.1 / float64(1+len(foldedName))

	return score, true
}

func keywordMatch(keywords []string, term string) bool {
	for _, kw := range keywords {
		if strings.Contains(indexer.Fold(kw), term) {
			return true
		}
	}
	return false
}
