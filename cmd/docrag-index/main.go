package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/dshills/docrag/internal/chunker"
	"github.com/dshills/docrag/internal/config"
	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/internal/ingest"
	"github.com/dshills/docrag/internal/loader"
)

var (
	configPath   = flag.String("config", "", "Path to config file (default: ./docrag.yaml, then the user config dir)")
	indexDir     = flag.String("index-dir", "", "Override the index directory")
	chunkSize    = flag.Int("chunk-size", 0, "Override chunk window size in characters")
	chunkOverlap = flag.Int("chunk-overlap", -1, "Override chunk overlap in characters")
	batchSize    = flag.Int("batch", 0, "Override embedding batch size")
	verbose      = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: docrag-index [flags] <corpus-dir>\n\n")
		fmt.Fprintf(os.Stderr, "Builds the document index for <corpus-dir>, replacing any previous index.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	corpus, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		fatalf("resolving corpus path: %v", err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// API keys may live in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := resolveConfig()
	if err != nil {
		fatalf("loading configuration: %v", err)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Host:      cfg.Embedding.Host,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		fatalf("initializing embedder: %v", err)
	}
	defer emb.Close()

	ch, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		fatalf("invalid chunking parameters: %v", err)
	}

	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		fatalf("creating index directory: %v", err)
	}
	store := index.NewStore(cfg.IndexDir, logger)
	svc := ingest.NewService(loader.New(logger), ch, emb, store, cfg.Embedding.BatchSize, logger)

	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("%s %s\n", bold("Indexing"), cyan(corpus))
	fmt.Printf("  embedder: %s/%s, chunks: %d/%d overlap, batch: %d\n",
		emb.Provider(), emb.Model(), cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Embedding.BatchSize)

	progressSeen := false
	stats, err := svc.Run(ctx, corpus, func(percent int) {
		progressSeen = true
		fmt.Printf("\r  embedding chunks... %3d%%", percent)
	})
	if progressSeen {
		fmt.Println()
	}
	if err != nil {
		fatalf("ingestion failed: %v", err)
	}

	fmt.Printf("%s in %s\n", green("Done"), stats.Duration.Round(10*time.Millisecond))
	fmt.Printf("  files scanned: %d  parsed: %d  skipped: %d  failed: %d\n",
		stats.FilesScanned, stats.FilesParsed, stats.FilesSkipped, stats.FilesFailed)
	fmt.Printf("  documents: %d  chunks: %d  index entries: %d\n",
		stats.Documents, stats.Chunks, stats.Entries)

	if len(stats.Failures) > 0 {
		fmt.Printf("%s\n", yellow("Some files could not be parsed:"))
		for _, failure := range stats.Failures {
			fmt.Printf("  %s\n", failure)
		}
	}
}

// resolveConfig loads the config and applies flag and env overrides.
// Flags win over environment, environment wins over the file.
func resolveConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv("DOCRAG_CONFIG")
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if dir := os.Getenv("DOCRAG_INDEX_DIR"); dir != "" {
		cfg.IndexDir = dir
	}
	if *indexDir != "" {
		cfg.IndexDir = *indexDir
	}
	if *chunkSize > 0 {
		cfg.Chunking.ChunkSize = *chunkSize
	}
	if *chunkOverlap >= 0 {
		cfg.Chunking.ChunkOverlap = *chunkOverlap
	}
	if *batchSize > 0 {
		cfg.Embedding.BatchSize = *batchSize
	}
	return cfg, cfg.Validate()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "docrag-index: "+format+"\n", args...)
	os.Exit(1)
}
