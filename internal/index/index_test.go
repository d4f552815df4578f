package index

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docrag/pkg/types"
)

func chunkNamed(name string) types.Chunk {
	return types.Chunk{Text: name, SourcePath: name + ".txt"}
}

func TestAdd_PinsDimension(t *testing.T) {
	ix := New()
	assert.Equal(t, 0, ix.Dimension())

	require.NoError(t, ix.Add([]float32{1, 0, 0}, chunkNamed("a")))
	assert.Equal(t, 3, ix.Dimension())
	assert.Equal(t, 1, ix.Len())

	err := ix.Add([]float32{1, 0}, chunkNamed("b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")

	err = ix.Add(nil, chunkNamed("c"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := New()
	require.NoError(t, a.Add([]float32{1, 0}, chunkNamed("a1")))

	b := New()
	require.NoError(t, b.Add([]float32{0, 1}, chunkNamed("b1")))
	require.NoError(t, b.Add([]float32{1, 1}, chunkNamed("b2")))

	require.NoError(t, a.Merge(b))
	require.Equal(t, 3, a.Len())

	entries := a.Entries()
	assert.Equal(t, "a1", entries[0].Chunk.Text)
	assert.Equal(t, "b1", entries[1].Chunk.Text)
	assert.Equal(t, "b2", entries[2].Chunk.Text)
}

func TestMerge_EmptyAndNil(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1}, chunkNamed("a")))

	require.NoError(t, ix.Merge(New()))
	require.NoError(t, ix.Merge(nil))
	assert.Equal(t, 1, ix.Len())

	// Merging into an empty accumulator adopts the other's dimension.
	empty := New()
	require.NoError(t, empty.Merge(ix))
	assert.Equal(t, 1, empty.Dimension())
	assert.Equal(t, 1, empty.Len())
}

func TestMerge_DimensionMismatch(t *testing.T) {
	a := New()
	require.NoError(t, a.Add([]float32{1, 0}, chunkNamed("a")))
	b := New()
	require.NoError(t, b.Add([]float32{1, 0, 0}, chunkNamed("b")))

	assert.Error(t, a.Merge(b))
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{0, 1}, chunkNamed("orthogonal")))
	require.NoError(t, ix.Add([]float32{1, 0.1}, chunkNamed("close")))
	require.NoError(t, ix.Add([]float32{1, 0}, chunkNamed("exact")))
	require.NoError(t, ix.Add([]float32{-1, 0}, chunkNamed("opposite")))

	results, err := ix.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "exact", results[0].Chunk.Text)
	assert.Equal(t, "close", results[1].Chunk.Text)
	assert.Equal(t, "orthogonal", results[2].Chunk.Text)
	assert.Equal(t, "opposite", results[3].Chunk.Text)

	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
	assert.InDelta(t, -1.0, results[3].Score, 1e-9)
}

func TestSearch_TiesResolveToEarlierInsertion(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1, 0}, chunkNamed("first")))
	require.NoError(t, ix.Add([]float32{0, 1}, chunkNamed("off-axis")))
	require.NoError(t, ix.Add([]float32{2, 0}, chunkNamed("second"))) // same direction, same score

	results, err := ix.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.InDelta(t, results[0].Score, results[1].Score, 1e-9)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
}

func TestSearch_TopKLargerThanIndex(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1, 0}, chunkNamed("only")))

	results, err := ix.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_InvalidTopK(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1}, chunkNamed("a")))

	for _, k := range []int{0, -1} {
		_, err := ix.Search([]float32{1}, k)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidConfig))
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	results, err := New().Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix := New()
	require.NoError(t, ix.Add([]float32{1, 0}, chunkNamed("a")))

	_, err := ix.Search([]float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

// Grouping must not affect retrieval: entries added one by one and entries
// merged in batches produce identical search results.
func TestMerge_GroupingIndependent(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {0, 1, 1},
	}

	flat := New()
	for i, v := range vectors {
		require.NoError(t, flat.Add(v, chunkNamed(fmt.Sprintf("c%d", i))))
	}

	grouped := New()
	for start := 0; start < len(vectors); start += 2 {
		end := start + 2
		if end > len(vectors) {
			end = len(vectors)
		}
		sub := New()
		for i := start; i < end; i++ {
			require.NoError(t, sub.Add(vectors[i], chunkNamed(fmt.Sprintf("c%d", i))))
		}
		require.NoError(t, grouped.Merge(sub))
	}

	query := []float32{1, 0.5, 0.25}
	flatResults, err := flat.Search(query, len(vectors))
	require.NoError(t, err)
	groupedResults, err := grouped.Search(query, len(vectors))
	require.NoError(t, err)

	assert.Equal(t, flatResults, groupedResults)
}
