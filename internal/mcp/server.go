package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/docrag/internal/chunker"
	"github.com/dshills/docrag/internal/config"
	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/generator"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/internal/ingest"
	"github.com/dshills/docrag/internal/loader"
	"github.com/dshills/docrag/internal/prompt"
	"github.com/dshills/docrag/internal/retriever"
)

const (
	// ServerName is the MCP server name
	ServerName = "docrag"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	cfg       *config.Config
	store     *index.Store
	embedder  embedder.Embedder
	ingest    *ingest.Service
	generator *generator.Generator
	logger    *slog.Logger

	// retriever is swapped for a fresh instance after each successful
	// ingestion so later questions see the new snapshot.
	mu        sync.RWMutex
	retriever *retriever.Retriever
}

// NewServer creates a new MCP server instance from the given config.
// Logging must go to stderr; stdout carries the protocol.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	store := index.NewStore(cfg.IndexDir, logger)

	// One embedder instance serves both ingestion and retrieval, so
	// embeddings cached while indexing are available to queries.
	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Host:      cfg.Embedding.Host,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	ch, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	svc := ingest.NewService(loader.New(logger), ch, emb, store, cfg.Embedding.BatchSize, logger)

	backend, err := generator.NewOllamaBackend(cfg.Generation.Host, cfg.Generation.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("initializing generation backend: %w", err)
	}

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		cfg:       cfg,
		store:     store,
		embedder:  emb,
		ingest:    svc,
		generator: generator.New(backend, logger),
		logger:    logger,
		retriever: retriever.New(store, emb, logger),
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.generator.Close()
		_ = s.embedder.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexDocumentsTool(), s.handleIndexDocuments)
	s.mcp.AddTool(askTool(), s.handleAsk)
	s.mcp.AddTool(chatTool(), s.handleChat)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}

// currentRetriever returns the retriever serving the live index snapshot.
func (s *Server) currentRetriever() *retriever.Retriever {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retriever
}

// swapRetriever installs a fresh retriever. Called after a successful
// ingestion; the old snapshot stays valid for requests already running.
func (s *Server) swapRetriever() {
	s.mu.Lock()
	s.retriever = retriever.New(s.store, s.embedder, s.logger)
	s.mu.Unlock()
}

// assemblerFor builds a prompt assembler for the given answer budget.
// Construction validates the budget against the configured context window.
func (s *Server) assemblerFor(maxTokens int) (*prompt.Assembler, error) {
	return prompt.NewAssembler(s.cfg.Generation.ContextWindowTokens, maxTokens)
}
