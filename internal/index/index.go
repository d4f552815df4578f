package index

import (
	"fmt"
	"sort"

	"github.com/dshills/docrag/pkg/types"
)

// Entry pairs an embedding vector with the chunk it was computed from.
// Entries are owned by their VectorIndex; callers must not mutate them.
type Entry struct {
	Vector []float32
	Chunk  types.Chunk
}

// SearchResult is one scored entry from a similarity search.
type SearchResult struct {
	Chunk types.Chunk
	Score float64
}

// VectorIndex is an append-only in-memory collection of embedded chunks.
// The first Add pins the dimensionality; every later vector must match.
// A VectorIndex is not safe for concurrent mutation; the pipelines build
// one single-threaded and treat it as read-only afterwards.
type VectorIndex struct {
	entries   []Entry
	dimension int
}

// New creates an empty VectorIndex.
func New() *VectorIndex {
	return &VectorIndex{}
}

// Add appends one embedded chunk. The first vector added pins the index
// dimension.
func (ix *VectorIndex) Add(vector []float32, chunk types.Chunk) error {
	if len(vector) == 0 {
		return fmt.Errorf("cannot add empty vector for %s", chunk.SourceRef())
	}
	if ix.dimension == 0 {
		ix.dimension = len(vector)
	}
	if len(vector) != ix.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d",
			len(vector), ix.dimension)
	}
	ix.entries = append(ix.entries, Entry{Vector: vector, Chunk: chunk})
	return nil
}

// Merge absorbs the other index's entries in their existing order, without
// re-embedding. Merging an empty or nil index is a no-op.
func (ix *VectorIndex) Merge(other *VectorIndex) error {
	if other == nil || len(other.entries) == 0 {
		return nil
	}
	if ix.dimension == 0 {
		ix.dimension = other.dimension
	}
	if other.dimension != ix.dimension {
		return fmt.Errorf("cannot merge index of dimension %d into index of dimension %d",
			other.dimension, ix.dimension)
	}
	ix.entries = append(ix.entries, other.entries...)
	return nil
}

// Search scores every entry against the query with cosine similarity and
// returns the topK best in descending score order. Equal scores resolve to
// the earlier-inserted entry (the sort is stable over insertion order). A
// topK larger than the entry count returns everything.
func (ix *VectorIndex) Search(query []float32, topK int) ([]SearchResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be at least 1, got %d",
			types.ErrInvalidConfig, topK)
	}
	if len(ix.entries) == 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d",
			len(query), ix.dimension)
	}

	scored := make([]SearchResult, len(ix.entries))
	for i, e := range ix.entries {
		scored[i] = SearchResult{Chunk: e.Chunk, Score: cosineSimilarity(query, e.Vector)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Len returns the number of entries.
func (ix *VectorIndex) Len() int {
	return len(ix.entries)
}

// Dimension returns the pinned vector dimension, 0 while the index is
// empty.
func (ix *VectorIndex) Dimension() int {
	return ix.dimension
}

// Entries exposes the backing entry slice for persistence. Read-only.
func (ix *VectorIndex) Entries() []Entry {
	return ix.entries
}
