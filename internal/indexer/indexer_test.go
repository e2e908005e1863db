package indexer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/searchbox/internal/dataset"
)

func buildIndex(records ...dataset.Record) *Index {
	idx := New()
	for _, r := range records {
		idx.Add(r)
	}
	return idx
}

func TestAdd_AssignsDenseDocIDs(t *testing.T) {
	idx := New()
	assert.Equal(t, uint32(0), idx.Add(dataset.Record{ID: "r1", Name: "Apple"}))
	assert.Equal(t, uint32(1), idx.Add(dataset.Record{ID: "r2", Name: "Banana"}))
	assert.Equal(t, 2, idx.Len())
}

func TestBitmapForToken(t *testing.T) {
	idx := buildIndex(
		dataset.Record{ID: "r1", Name: "Apple Pie"},
		dataset.Record{ID: "r2", Name: "Apple Juice"},
		dataset.Record{ID: "r3", Name: "Banana"},
	)

	bm := idx.BitmapForToken("apple")
	require.NotNil(t, bm)
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())

	assert.Nil(t, idx.BitmapForToken("cherry"))
}

func TestBitmapForToken_Keywords(t *testing.T) {
	idx := buildIndex(
		dataset.Record{ID: "r1", Name: "Apple", Keywords: []string{"fruit", "red"}},
		dataset.Record{ID: "r2", Name: "Fire Truck", Keywords: []string{"red"}},
	)

	bm := idx.BitmapForToken("red")
	require.NotNil(t, bm)
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())
}

func TestBitmapForPrefix(t *testing.T) {
	idx := buildIndex(
		dataset.Record{ID: "r1", Name: "Apple"},
		dataset.Record{ID: "r2", Name: "Apricot"},
		dataset.Record{ID: "r3", Name: "Banana"},
	)

	bm := idx.BitmapForPrefix("ap")
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())

	bm = idx.BitmapForPrefix("appl")
	assert.Equal(t, []uint32{0}, bm.ToArray())

	assert.True(t, idx.BitmapForPrefix("zz").IsEmpty())
	assert.True(t, idx.BitmapForPrefix("").IsEmpty())
}

func TestBitmapForPrefix_AfterLaterAdds(t *testing.T) {
	idx := buildIndex(dataset.Record{ID: "r1", Name: "Apple"})
	assert.Equal(t, []uint32{0}, idx.BitmapForPrefix("ap").ToArray())

	// The sorted vocabulary must pick up tokens added after the first scan.
	idx.Add(dataset.Record{ID: "r2", Name: "Apricot"})
	assert.Equal(t, []uint32{0, 1}, idx.BitmapForPrefix("ap").ToArray())
}

func TestBitmapForPrefix_ConcurrentReads(t *testing.T) {
	// A built index must serve prefix scans from multiple goroutines
	// without mutation; run under -race.
	idx := buildIndex(
		dataset.Record{ID: "r1", Name: "Apple"},
		dataset.Record{ID: "r2", Name: "Apricot"},
		dataset.Record{ID: "r3", Name: "Banana"},
	)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.Equal(t, []uint32{0, 1}, idx.BitmapForPrefix("ap").ToArray())
				assert.Equal(t, []uint32{2}, idx.BitmapForPrefix("ban").ToArray())
			}
		}()
	}
	wg.Wait()
}

func TestAllDocIDs(t *testing.T) {
	idx := buildIndex(
		dataset.Record{ID: "r1", Name: "Apple"},
		dataset.Record{ID: "r2", Name: "Banana"},
	)
	assert.Equal(t, []uint32{0, 1}, idx.AllDocIDs().ToArray())
	assert.True(t, New().AllDocIDs().IsEmpty())
}

func TestMeta(t *testing.T) {
	idx := buildIndex(dataset.Record{ID: "r1", Name: "Apple"})

	meta := idx.Meta(0)
	require.NotNil(t, meta)
	assert.Equal(t, "r1", meta.ID)

	assert.Nil(t, idx.Meta(99))
}
