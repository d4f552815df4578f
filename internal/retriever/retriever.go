package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/pkg/types"
)

// Retriever answers similarity queries over the persisted index. The
// index is loaded lazily on first use and the snapshot is cached for the
// retriever's lifetime; a failed load is not cached, so a later call can
// succeed once an index exists. Ingestion does not touch live retrievers;
// callers construct a fresh one to pick up a new index.
type Retriever struct {
	store    *index.Store
	embedder embedder.Embedder
	logger   *slog.Logger

	mu  sync.Mutex
	idx *index.VectorIndex
}

// New creates a Retriever over the given store and embedder.
func New(store *index.Store, emb embedder.Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:    store,
		embedder: emb,
		logger:   logger,
	}
}

// Retrieve embeds the query and returns the topK most similar chunks in
// descending score order. A missing index surfaces as an error wrapping
// types.ErrIndexUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]index.SearchResult, error) {
	idx, err := r.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	emb, err := r.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := idx.Search(emb.Vector, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}

// ensureIndex returns the cached snapshot, loading it on first use. Only
// successful loads are cached.
func (r *Retriever) ensureIndex(ctx context.Context) (*index.VectorIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idx != nil {
		return r.idx, nil
	}

	idx, info, err := r.store.Load(ctx)
	if err != nil {
		if errors.Is(err, types.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: run ingestion first: %v", types.ErrIndexUnavailable, err)
		}
		return nil, err
	}

	r.logger.Info("index loaded",
		"entries", idx.Len(),
		"dimension", idx.Dimension(),
		"provider", info.Provider,
		"model", info.Model)

	r.idx = idx
	return idx, nil
}
