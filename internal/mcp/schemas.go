package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docrag/internal/config"
)

// indexDocumentsTool returns the tool definition for index_documents
func indexDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_documents",
		Description: "Index a directory of documents (md, txt, pdf, docx) to make them answerable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the document corpus root",
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Chunk window size in characters (default from config)",
					"minimum":     1,
				},
				"chunk_overlap": map[string]interface{}{
					"type":        "integer",
					"description": "Overlap between consecutive chunks in characters (must be smaller than chunk_size)",
					"minimum":     0,
				},
				"batch_size": map[string]interface{}{
					"type":        "integer",
					"description": "Number of chunks embedded per provider call",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// askTool returns the tool definition for ask
func askTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the indexed documents, with source citations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer from the corpus",
				},
				"sources": map[string]interface{}{
					"type":        "integer",
					"description": "Number of retrieved chunks to ground the answer on (1-100)",
					"default":     config.DefaultSources,
					"minimum":     1,
					"maximum":     100,
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Answer token budget (must be smaller than the context window)",
					"minimum":     1,
				},
			},
			Required: []string{"question"},
		},
	}
}

// chatTool returns the tool definition for chat
func chatTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chat",
		Description: "Chat with the model directly, without document retrieval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The message to send to the model",
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Answer token budget",
					"minimum":     1,
				},
			},
			Required: []string{"message"},
		},
	}
}

// indexStatusTool returns the tool definition for index_status
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Report the persisted index metadata and the active configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
