package ingest

import (
	"context"
	"fmt"

	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/pkg/types"
)

// DefaultBatchSize is the number of chunks embedded per provider call.
const DefaultBatchSize = 10

// ProgressFunc receives the overall completion percentage after each
// embedded batch. Values never decrease and the final call reports
// exactly 100.
type ProgressFunc func(percent int)

// Builder turns chunks into a vector index by embedding them in batches
// and merging each batch's sub-index into the accumulated result.
type Builder struct {
	embedder  embedder.Embedder
	batchSize int
}

// NewBuilder creates a Builder. A batchSize of zero or less falls back to
// DefaultBatchSize.
func NewBuilder(emb embedder.Embedder, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{
		embedder:  emb,
		batchSize: batchSize,
	}
}

// BatchSize returns the effective batch size.
func (b *Builder) BatchSize() int { return b.batchSize }

// Build embeds the chunks and assembles them into a VectorIndex in input
// order. onProgress may be nil. Zero chunks yield an empty index with no
// progress callbacks and no error. Any embedding failure aborts the build.
func (b *Builder) Build(ctx context.Context, chunks []types.Chunk, onProgress ProgressFunc) (*index.VectorIndex, error) {
	acc := index.New()
	if len(chunks) == 0 {
		return acc, nil
	}

	total := len(chunks)
	processed := 0

	for start := 0; start < total; start += b.batchSize {
		end := start + b.batchSize
		if end > total {
			end = total
		}
		batch := chunks[start:end]

		sub, err := b.buildBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if err := acc.Merge(sub); err != nil {
			return nil, err
		}

		processed += len(batch)
		if onProgress != nil {
			onProgress(100 * processed / total)
		}
	}

	return acc, nil
}

// buildBatch embeds one batch of chunks into its own sub-index.
func (b *Builder) buildBatch(ctx context.Context, batch []types.Chunk) (*index.VectorIndex, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	resp, err := b.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Embeddings) != len(batch) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks",
			len(resp.Embeddings), len(batch))
	}

	sub := index.New()
	for i, emb := range resp.Embeddings {
		if err := sub.Add(emb.Vector, batch[i]); err != nil {
			return nil, fmt.Errorf("indexing chunk %s: %w", batch[i].SourceRef(), err)
		}
	}

	return sub, nil
}
