package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/docrag/pkg/types"
)

// Kind identifies a supported document format. The set is closed; dispatch
// never falls through to a default parser, and unknown extensions are
// skipped rather than guessed at.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

// kindByExt maps lower-case file extensions to their format kind.
var kindByExt = map[string]Kind{
	".pdf":      KindPDF,
	".docx":     KindDOCX,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".txt":      KindText,
	".text":     KindText,
}

// KindForPath resolves the format kind for a path from its extension.
func KindForPath(path string) (Kind, bool) {
	kind, ok := kindByExt[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// Parser turns one source file into its parsed documents. Paginated
// formats return one Document per page, everything else exactly one.
type Parser interface {
	Parse(path string) ([]types.Document, error)
}

// Stats summarizes one Load run.
type Stats struct {
	FilesScanned int // regular files seen during the walk
	FilesMatched int // files with a supported extension
	FilesParsed  int // matched files parsed successfully
	FilesSkipped int // unsupported extensions
	FilesFailed  int // matched files that failed to parse
	Documents    int
	Failures     []string // one message per parse failure
	Duration     time.Duration
}

// Loader discovers supported files under a root and parses them into
// documents through a bounded worker pool.
type Loader struct {
	parsers map[Kind]Parser
	workers int
	logger  *slog.Logger
}

// New creates a Loader with all format parsers registered.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		parsers: map[Kind]Parser{
			KindPDF:      PDFParser{},
			KindDOCX:     DOCXParser{},
			KindMarkdown: MarkdownParser{},
			KindText:     TextParser{},
		},
		workers: runtime.NumCPU(),
		logger:  logger,
	}
}

// Load walks root and parses every supported file, returning the documents
// in discovery order. Files that fail to parse are logged, counted in
// Stats, and skipped; they never abort the run.
func (l *Loader) Load(ctx context.Context, root string) ([]types.Document, *Stats, error) {
	start := time.Now()
	stats := &Stats{}

	files, err := l.discoverFiles(root, stats)
	if err != nil {
		return nil, nil, fmt.Errorf("discover files: %w", err)
	}
	stats.FilesMatched = len(files)

	// Parse concurrently with results slotted by file position, so document
	// order stays deterministic regardless of completion order.
	results := make([][]types.Document, len(files))
	parseErrs := make([]error, len(files))

	semaphore := make(chan struct{}, l.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			kind, _ := KindForPath(path)
			docs, err := l.parsers[kind].Parse(path)
			if err != nil {
				parseErrs[i] = &types.ParseError{Path: path, Err: err}
				return nil
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var docs []types.Document
	for i := range files {
		if perr := parseErrs[i]; perr != nil {
			stats.FilesFailed++
			stats.Failures = append(stats.Failures, perr.Error())
			l.logger.Warn("skipping unparseable file", "path", files[i], "error", perr)
			continue
		}
		stats.FilesParsed++
		docs = append(docs, results[i]...)
	}
	stats.Documents = len(docs)
	stats.Duration = time.Since(start)

	return docs, stats, nil
}

// discoverFiles finds supported files under root in walk order. Hidden
// directories are pruned; unsupported files are counted and skipped.
func (l *Loader) discoverFiles(root string, stats *Stats) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		stats.FilesScanned++
		if _, ok := KindForPath(path); !ok {
			stats.FilesSkipped++
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, err
}
