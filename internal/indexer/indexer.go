// Package indexer builds the token inverted index the search engine plans
// queries against.
package indexer

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/searchbox/internal/dataset"
)

// Index maps tokens to posting bitmaps of docIDs. DocIDs are dense and
// assigned in Add order, so they double as positions in the dataset's
// original ordering.
//
// The index has a single-writer build phase (Add) after which every
// method is a pure read, so a built index may be shared across
// goroutines without locking.
type Index struct {
	docs     []dataset.Record
	postings map[string]*roaring.Bitmap

	// vocab is the sorted token list used for prefix scans. addPosting
	// keeps it sorted so reads never mutate the index.
	vocab []string
}

// New creates an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]*roaring.Bitmap),
	}
}

// Add indexes one record and returns its docID.
func (idx *Index) Add(rec dataset.Record) uint32 {
	docID := uint32(len(idx.docs))
	idx.docs = append(idx.docs, rec)

	for _, token := range Tokenize(rec.Name) {
		idx.addPosting(token, docID)
	}
	for _, kw := range rec.Keywords {
		for _, token := range Tokenize(kw) {
			idx.addPosting(token, docID)
		}
	}

	return docID
}

func (idx *Index) addPosting(token string, docID uint32) {
	bm, ok := idx.postings[token]
	if !ok {
		bm = roaring.New()
		idx.postings[token] = bm

		i := sort.SearchStrings(idx.vocab, token)
		idx.vocab = append(idx.vocab, "")
		copy(idx.vocab[i+1:], idx.vocab[i:])
		idx.vocab[i] = token
	}
	bm.Add(docID)
}

// BitmapForToken returns the posting bitmap for an exact token, or nil.
func (idx *Index) BitmapForToken(token string) *roaring.Bitmap {
	return idx.postings[token]
}

// BitmapForPrefix returns the union of posting bitmaps of every vocabulary
// token starting with prefix. The result is always a fresh bitmap the
// caller may mutate. An empty union is an empty bitmap, not nil.
func (idx *Index) BitmapForPrefix(prefix string) *roaring.Bitmap {
	union := roaring.New()
	if prefix == "" {
		return union
	}

	start := sort.SearchStrings(idx.vocab, prefix)
	for i := start; i < len(idx.vocab) && strings.HasPrefix(idx.vocab[i], prefix); i++ {
		union.Or(idx.postings[idx.vocab[i]])
	}

	return union
}

// AllDocIDs returns a fresh bitmap of every indexed docID.
func (idx *Index) AllDocIDs() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(len(idx.docs)))
	return bm
}

// Meta returns the record behind docID, or nil for an unknown docID.
func (idx *Index) Meta(docID uint32) *dataset.Record {
	if int(docID) >= len(idx.docs) {
		return nil
	}
	return &idx.docs[docID]
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.docs)
}
