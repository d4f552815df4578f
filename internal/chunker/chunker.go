package chunker

import (
	"fmt"

	"github.com/dshills/docrag/pkg/types"
)

// Default window geometry, measured in runes.
const (
	DefaultChunkSize    = 4000
	DefaultChunkOverlap = 2000
)

// Chunker splits document text into fixed-size overlapping windows.
// Splitting is deterministic: the same document and parameters always
// produce the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given window size and overlap, both in
// runes. The overlap must be smaller than the size or every window would
// start inside the previous one and the sequence could never advance;
// violations return an error wrapping types.ErrInvalidConfig.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			types.ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d",
			types.ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			types.ErrInvalidConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the window overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split windows one document's text. Windows are size runes long and
// advance by size-overlap; the final window may be shorter and always
// reaches the end of the text. Empty text yields no chunks. Chunks carry
// the document's source metadata and a 0-based window index.
func (c *Chunker) Split(doc types.Document) []types.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []types.Chunk
	for start, idx := 0, 0; ; idx++ {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, types.Chunk{
			Text:       string(runes[start:end]),
			SourcePath: doc.SourcePath,
			PageNumber: doc.PageNumber,
			ChunkIndex: idx,
		})
		if end == len(runes) {
			break
		}
		start += step
	}

	return chunks
}

// SplitAll windows every document in order and returns the flattened
// chunk sequence. Chunk indexes restart at 0 for each document.
func (c *Chunker) SplitAll(docs []types.Document) []types.Chunk {
	var chunks []types.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.Split(doc)...)
	}
	return chunks
}
