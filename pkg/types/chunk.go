package types

import "fmt"

// Chunk is one bounded window of a Document's text. Chunks are the atomic
// unit of embedding and retrieval; the orchestrator surfaces them verbatim
// as cited context.
type Chunk struct {
	Text       string
	SourcePath string

	// PageNumber is inherited from the parent Document, 0 when the source
	// has no page structure.
	PageNumber int

	// ChunkIndex is the 0-based window position within the parent
	// Document.
	ChunkIndex int
}

// SourceRef renders the chunk's origin for citation. Paginated sources get
// a page anchor in PDF open-parameter form (path#page=N), everything else
// the bare path.
func (c Chunk) SourceRef() string {
	if c.PageNumber > 0 {
		return fmt.Sprintf("%s#page=%d", c.SourcePath, c.PageNumber)
	}
	return c.SourcePath
}

// TokenCount estimates the chunk's token count.
func (c Chunk) TokenCount() int {
	return EstimateTokens(c.Text)
}

// EstimateTokens approximates the token count of text using the chars/4
// heuristic. The estimate is used for prompt window budgeting only and
// never has to match a particular model's tokenizer.
func EstimateTokens(text string) int {
	return len(text) / 4
}
