package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docrag/internal/chunker"
	"github.com/dshills/docrag/internal/ingest"
	"github.com/dshills/docrag/internal/rag"
	"github.com/dshills/docrag/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams       = -32602 // Invalid method parameters
	ErrorCodeInternalError       = -32603 // Internal JSON-RPC error
	ErrorCodeIngestionInProgress = -32002 // Another ingestion run is already executing
	ErrorCodeNotIndexed          = -32003 // No index available; ingestion has not run
)

// handleIndexDocuments handles the index_documents tool invocation
func (s *Server) handleIndexDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	chunkSize := getIntDefault(args, "chunk_size", s.cfg.Chunking.ChunkSize)
	chunkOverlap := getIntDefault(args, "chunk_overlap", s.cfg.Chunking.ChunkOverlap)
	batchSize := getIntDefault(args, "batch_size", s.cfg.Embedding.BatchSize)

	svc := s.ingest
	if chunkSize != s.cfg.Chunking.ChunkSize || chunkOverlap != s.cfg.Chunking.ChunkOverlap || batchSize != s.cfg.Embedding.BatchSize {
		ch, err := chunker.New(chunkSize, chunkOverlap)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking parameters", map[string]interface{}{
				"reason": err.Error(),
			})
		}
		svc = s.ingest.With(ch, batchSize)
	}

	stats, err := svc.Run(ctx, path, nil)
	if errors.Is(err, ingest.ErrIngestionInProgress) {
		return nil, newMCPError(ErrorCodeIngestionInProgress, "an ingestion run is already in progress", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Later questions must see the new snapshot.
	s.swapRetriever()

	response := map[string]interface{}{
		"indexed":       true,
		"files_scanned": stats.FilesScanned,
		"files_parsed":  stats.FilesParsed,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"documents":     stats.Documents,
		"chunks":        stats.Chunks,
		"entries":       stats.Entries,
		"provider":      stats.Provider,
		"model":         stats.Model,
		"duration_ms":   stats.Duration.Milliseconds(),
	}

	if len(stats.Failures) > 0 {
		// Include first few failures
		failureCount := len(stats.Failures)
		if failureCount > 5 {
			response["failures"] = stats.Failures[:5]
			response["failure_count"] = failureCount
		} else {
			response["failures"] = stats.Failures
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAsk handles the ask tool invocation
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "question parameter is required", map[string]interface{}{
			"param":  "question",
			"reason": "missing or empty",
		})
	}

	sources := getIntDefault(args, "sources", s.cfg.Retrieval.Sources)
	if sources < 1 || sources > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "sources must be between 1 and 100", map[string]interface{}{
			"param": "sources",
			"value": sources,
		})
	}

	maxTokens := getIntDefault(args, "max_tokens", s.cfg.Generation.MaxAnswerTokens)
	asm, err := s.assemblerFor(maxTokens)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid max_tokens", map[string]interface{}{
			"param":  "max_tokens",
			"reason": err.Error(),
		})
	}

	runner := rag.NewOrchestrator(s.currentRetriever(), asm, s.generator, rag.Options{
		Sources:       sources,
		MaxTokens:     maxTokens,
		StopSequences: s.cfg.Generation.StopSequences,
	}, s.logger)

	start := time.Now()
	sourceRefs := make([]string, 0, sources)
	answer, err := runner.RunChat(ctx, question, func(tok rag.Token) {
		if tok.Kind == rag.TokenSource {
			sourceRefs = append(sourceRefs, tok.Value)
		}
	})
	if errors.Is(err, types.ErrIndexUnavailable) {
		return nil, newMCPError(ErrorCodeNotIndexed, "no index available; run index_documents first", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "answering failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"answer":      answer,
		"sources":     sourceRefs,
		"duration_ms": time.Since(start).Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleChat handles the chat tool invocation
func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	message, ok := args["message"].(string)
	if !ok || message == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "message parameter is required", map[string]interface{}{
			"param":  "message",
			"reason": "missing or empty",
		})
	}

	maxTokens := getIntDefault(args, "max_tokens", s.cfg.Generation.MaxAnswerTokens)
	asm, err := s.assemblerFor(maxTokens)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid max_tokens", map[string]interface{}{
			"param":  "max_tokens",
			"reason": err.Error(),
		})
	}

	runner := rag.NewPlainChat(asm, s.generator, rag.Options{
		MaxTokens:     maxTokens,
		StopSequences: s.cfg.Generation.StopSequences,
	}, s.logger)

	start := time.Now()
	answer, err := runner.RunChat(ctx, message, nil)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "chat failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"answer":      answer,
		"duration_ms": time.Since(start).Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configSummary := map[string]interface{}{
		"chunk_size":            s.cfg.Chunking.ChunkSize,
		"chunk_overlap":         s.cfg.Chunking.ChunkOverlap,
		"embedding_provider":    s.embedder.Provider(),
		"embedding_model":       s.embedder.Model(),
		"generation_model":      s.cfg.Generation.ModelPath,
		"context_window_tokens": s.cfg.Generation.ContextWindowTokens,
		"max_answer_tokens":     s.cfg.Generation.MaxAnswerTokens,
		"sources":               s.cfg.Retrieval.Sources,
	}

	info, err := s.store.Info(ctx)
	if errors.Is(err, types.ErrIndexNotFound) {
		response := map[string]interface{}{
			"indexed":           false,
			"message":           "No index found. Use the index_documents tool to build one.",
			"ingestion_running": s.ingest.Running(),
			"config":            configSummary,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read index metadata", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"index": map[string]interface{}{
			"entries":        info.Entries,
			"dimension":      info.Dimension,
			"provider":       info.Provider,
			"model":          info.Model,
			"schema_version": info.SchemaVersion,
			"created_at":     info.CreatedAt.Format(time.RFC3339),
			"size_bytes":     info.SizeBytes,
		},
		"ingestion_running": s.ingest.Running(),
		"config":            configSummary,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that a corpus path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
