package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/docrag/pkg/types"
)

// DBFileName is the index database file inside the index directory.
const DBFileName = "index.db"

// Info is the persisted index metadata, cheap to read for status surfaces.
type Info struct {
	SchemaVersion string
	Dimension     int
	Entries       int
	Provider      string
	Model         string
	CreatedAt     time.Time
	SizeBytes     int64
}

// Store persists a VectorIndex to a single SQLite database. Save is a
// wholesale overwrite; there is no incremental update path.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// DBPath returns the full path of the index database file.
func (s *Store) DBPath() string {
	return filepath.Join(s.dir, DBFileName)
}

// openDatabase opens the index database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Save replaces any persisted index with idx. The previous database files
// are deleted first, so a save that fails midway never leaves a mix of old
// and new entries behind. Entry positions are preserved.
func (s *Store) Save(ctx context.Context, idx *VectorIndex, provider, model string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	path := s.DBPath()
	if err := removeDatabaseFiles(path); err != nil {
		return fmt.Errorf("remove previous index: %w", err)
	}

	db, err := openDatabase(path)
	if err != nil {
		return fmt.Errorf("open index database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := ApplyMigrations(ctx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertMeta(ctx, tx, idx, provider, model); err != nil {
		return err
	}
	if err := insertEntries(ctx, tx, idx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}

	s.logger.Info("index saved",
		"path", path,
		"entries", idx.Len(),
		"dimension", idx.Dimension(),
		"provider", provider,
		"model", model,
	)
	return nil
}

// Load reads the persisted index back into memory. A missing database maps
// to types.ErrIndexNotFound; a database that cannot be read as an index
// maps to types.ErrCorruptIndex. Entries come back in stored position
// order so search tie-breaking survives the round trip.
func (s *Store) Load(ctx context.Context) (*VectorIndex, *Info, error) {
	path := s.DBPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: no index at %s", types.ErrIndexNotFound, path)
		}
		return nil, nil, fmt.Errorf("stat index: %w", err)
	}

	db, err := openDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
	}
	defer func() { _ = db.Close() }()

	info, err := readInfo(ctx, db, path)
	if err != nil {
		return nil, nil, err
	}

	idx, err := readEntries(ctx, db, info)
	if err != nil {
		return nil, nil, err
	}

	return idx, info, nil
}

// Info reads the index metadata without loading the entries.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	path := s.DBPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no index at %s", types.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("stat index: %w", err)
	}

	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
	}
	defer func() { _ = db.Close() }()

	return readInfo(ctx, db, path)
}

// removeDatabaseFiles deletes the database and its WAL sidecars.
func removeDatabaseFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func insertMeta(ctx context.Context, q querier, idx *VectorIndex, provider, model string) error {
	query := `
		INSERT INTO index_meta (id, dimension, entry_count, provider, model, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, idx.Dimension(), idx.Len(), provider, model, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert index meta: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, q querier, idx *VectorIndex) error {
	query := `
		INSERT INTO entries (position, vector, text, source_path, page_number, chunk_index)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, entry := range idx.Entries() {
		_, err := q.ExecContext(ctx, query,
			i,
			serializeVector(entry.Vector),
			entry.Chunk.Text,
			entry.Chunk.SourcePath,
			entry.Chunk.PageNumber,
			entry.Chunk.ChunkIndex,
		)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return nil
}

func readInfo(ctx context.Context, q querier, path string) (*Info, error) {
	info := &Info{}

	err := q.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").
		Scan(&info.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: missing schema version: %v", types.ErrCorruptIndex, err)
	}

	err = q.QueryRowContext(ctx, "SELECT dimension, entry_count, provider, model, created_at FROM index_meta WHERE id = 1").
		Scan(&info.Dimension, &info.Entries, &info.Provider, &info.Model, &info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: missing index metadata: %v", types.ErrCorruptIndex, err)
	}

	if fi, err := os.Stat(path); err == nil {
		info.SizeBytes = fi.Size()
	}

	return info, nil
}

func readEntries(ctx context.Context, q querier, info *Info) (*VectorIndex, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT vector, text, source_path, page_number, chunk_index FROM entries ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read entries: %v", types.ErrCorruptIndex, err)
	}
	defer func() { _ = rows.Close() }()

	idx := New()
	for rows.Next() {
		var blob []byte
		var chunk types.Chunk
		if err := rows.Scan(&blob, &chunk.Text, &chunk.SourcePath, &chunk.PageNumber, &chunk.ChunkIndex); err != nil {
			return nil, fmt.Errorf("%w: cannot scan entry: %v", types.ErrCorruptIndex, err)
		}
		if len(blob)%4 != 0 || len(blob)/4 != info.Dimension {
			return nil, fmt.Errorf("%w: entry vector has %d bytes, want %d",
				types.ErrCorruptIndex, len(blob), info.Dimension*4)
		}
		if err := idx.Add(deserializeVector(blob), chunk); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
	}

	if idx.Len() != info.Entries {
		return nil, fmt.Errorf("%w: index holds %d entries, metadata says %d",
			types.ErrCorruptIndex, idx.Len(), info.Entries)
	}

	return idx, nil
}
