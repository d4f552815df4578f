// Package ingest coordinates the end-to-end ingestion pipeline for
// document collections.
//
// The service orchestrates loading, chunking, embedding, and persistence,
// replacing the stored index wholesale on every successful run.
//
// # Basic Usage
//
//	svc := ingest.NewService(ld, ch, emb, store, 10, logger)
//
//	stats, err := svc.Run(ctx, "/path/to/docs", func(percent int) {
//	    fmt.Printf("\rembedding: %d%%", percent)
//	})
//
//	fmt.Printf("Indexed %d chunks from %d documents in %v\n",
//	    stats.Entries, stats.Documents, stats.Duration)
//
// # Ingestion Pipeline
//
// Run executes a four-stage pipeline:
//
//  1. Load: walk the root, parse every supported file (parallel)
//  2. Chunk: window each document's text with overlap
//  3. Embed: batch chunks through the embedding provider
//  4. Persist: replace the on-disk index in one transaction
//
// Unparseable files are logged, counted in Stats.FilesFailed, and
// skipped; they never abort the run. Embedding and persistence failures
// are fatal and leave no partially written index behind.
//
// # Embedding Batching
//
// Chunks are embedded in fixed-size batches (default 10). Each batch
// becomes a sub-index that is merged into the accumulated result, and the
// progress callback fires after every merge:
//
//	// 25 chunks, batch size 10
//	// onProgress receives 40, 80, 100
//
// Percentages never decrease and the final call always reports 100. An
// empty corpus produces an empty index without any callback.
//
// # Single-Flight Runs
//
// At most one ingestion runs at a time. A second Run returns
// ErrIngestionInProgress immediately instead of queueing:
//
//	if errors.Is(err, ingest.ErrIngestionInProgress) {
//	    // tell the caller to retry later
//	}
//
// Running() exposes the same state for status reporting.
package ingest
