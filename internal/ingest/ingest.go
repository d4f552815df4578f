package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/docrag/internal/chunker"
	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/internal/loader"
)

// ErrIngestionInProgress is returned by Run when another ingestion run is
// already executing.
var ErrIngestionInProgress = errors.New("ingestion already in progress")

// Stats summarizes one ingestion run.
type Stats struct {
	FilesScanned int
	FilesParsed  int
	FilesSkipped int
	FilesFailed  int
	Documents    int
	Chunks       int
	Entries      int
	Provider     string // embedding provider that built the index
	Model        string
	Failures     []string // one message per parse failure
	Duration     time.Duration
}

// Service coordinates the ingestion pipeline: load -> chunk -> embed ->
// persist. At most one run executes at a time; concurrent attempts fail
// with ErrIngestionInProgress.
type Service struct {
	loader   *loader.Loader
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	builder  *Builder
	store    *index.Store
	logger   *slog.Logger

	lock *runLock
}

// NewService creates an ingestion Service. A batchSize of zero or less
// falls back to DefaultBatchSize.
func NewService(ld *loader.Loader, ch *chunker.Chunker, emb embedder.Embedder, store *index.Store, batchSize int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loader:   ld,
		chunker:  ch,
		embedder: emb,
		builder:  NewBuilder(emb, batchSize),
		store:    store,
		logger:   logger,
		lock:     &runLock{},
	}
}

// With returns a copy of the Service that chunks with ch and embeds in
// batches of batchSize. The copy shares the receiver's single-flight
// guard, so runs stay mutually exclusive across derived services.
func (s *Service) With(ch *chunker.Chunker, batchSize int) *Service {
	derived := *s
	derived.chunker = ch
	derived.builder = NewBuilder(s.embedder, batchSize)
	return &derived
}

// Running reports whether an ingestion run is currently executing.
func (s *Service) Running() bool {
	return s.lock.Locked()
}

// Run ingests every supported document under root and replaces the
// persisted index wholesale. onProgress may be nil; it receives embedding
// completion percentages. The returned Stats describe the completed run.
func (s *Service) Run(ctx context.Context, root string, onProgress ProgressFunc) (*Stats, error) {
	if !s.lock.TryAcquire() {
		return nil, ErrIngestionInProgress
	}
	defer s.lock.Release()

	start := time.Now()
	log := s.logger.With("run_id", uuid.New().String(), "root", root)
	log.Info("ingestion started")

	docs, loadStats, err := s.loader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	chunks := s.chunker.SplitAll(docs)
	log.Info("documents chunked",
		"documents", len(docs),
		"chunks", len(chunks),
		"parse_failures", loadStats.FilesFailed)

	idx, err := s.builder.Build(ctx, chunks, onProgress)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	if err := s.store.Save(ctx, idx, s.embedder.Provider(), s.embedder.Model()); err != nil {
		return nil, fmt.Errorf("saving index: %w", err)
	}

	stats := &Stats{
		FilesScanned: loadStats.FilesScanned,
		FilesParsed:  loadStats.FilesParsed,
		FilesSkipped: loadStats.FilesSkipped,
		FilesFailed:  loadStats.FilesFailed,
		Documents:    loadStats.Documents,
		Chunks:       len(chunks),
		Entries:      idx.Len(),
		Provider:     s.embedder.Provider(),
		Model:        s.embedder.Model(),
		Failures:     loadStats.Failures,
		Duration:     time.Since(start),
	}

	log.Info("ingestion complete",
		"entries", stats.Entries,
		"failed_files", stats.FilesFailed,
		"duration", stats.Duration)

	return stats, nil
}
