// Package index provides the in-memory vector index and its SQLite
// persistence.
//
// # VectorIndex
//
// VectorIndex is an append-only collection of (vector, chunk) entries.
// The first insert pins the dimensionality:
//
//	ix := index.New()
//	if err := ix.Add(vector, chunk); err != nil {
//	    log.Fatal(err)
//	}
//
// Sub-indexes built from embedding batches merge into an accumulator
// without re-embedding:
//
//	if err := accumulated.Merge(batchIndex); err != nil {
//	    log.Fatal(err)
//	}
//
// Search scores every entry with cosine similarity and returns the top K
// in descending order. The sort is stable, so equal scores resolve to the
// earlier-inserted entry; persistence keeps entry positions so that order
// survives a save/load round trip.
//
//	results, err := ix.Search(queryVector, 4)
//	for _, r := range results {
//	    fmt.Printf("%.3f  %s\n", r.Score, r.Chunk.SourceRef())
//	}
//
// # Persistence
//
// Store writes the whole index to one SQLite database, index.db inside the
// configured index directory. Saving is a wholesale overwrite: the old
// database files are removed, the schema is recreated, and metadata plus
// entries are written in one transaction. There is no incremental update.
//
//	store := index.NewStore(indexDir, logger)
//	if err := store.Save(ctx, ix, "local", "sha256-chain"); err != nil {
//	    log.Fatal(err)
//	}
//
// Load distinguishes two failure classes: types.ErrIndexNotFound when no
// database exists yet, and types.ErrCorruptIndex when the file cannot be
// read back as an index (not a database, missing metadata, blob size or
// dimension inconsistency). Corrupt indexes are never repaired; re-running
// ingestion replaces them.
//
// # Drivers
//
// The SQLite driver is chosen at build time: the default build uses the
// pure Go modernc.org/sqlite, and the sqlite_cgo tag switches to
// github.com/mattn/go-sqlite3.
package index
