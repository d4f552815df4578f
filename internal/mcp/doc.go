// Package mcp implements the Model Context Protocol (MCP) server for docrag.
//
// The MCP server exposes four tools to AI assistants:
//   - index_documents: Index a directory of documents for retrieval
//   - ask: Answer a question from the indexed documents, with citations
//   - chat: Talk to the model directly, without retrieval
//   - index_status: Check index metadata and configuration
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output.
// Logging goes to stderr; stdout is reserved for the protocol.
//
// # Basic Usage
//
// The MCP server is typically started via the main binary:
//
//	docrag
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: index_documents
//
// Index a document corpus to make it answerable:
//
//	Request:
//	{
//	  "name": "index_documents",
//	  "arguments": {
//	    "path": "/path/to/docs",
//	    "chunk_size": 4000,
//	    "chunk_overlap": 2000
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "files_scanned": 132,
//	  "files_parsed": 120,
//	  "files_skipped": 11,
//	  "files_failed": 1,
//	  "chunks": 812,
//	  "entries": 812,
//	  "provider": "ollama",
//	  "model": "nomic-embed-text",
//	  "duration_ms": 35200
//	}
//
// Every run rebuilds the index from scratch and replaces the previous one
// wholesale. Only one run executes at a time; a second request while one
// is running fails with code -32002.
//
// # Tool: ask
//
// Answer a question grounded in the indexed documents:
//
//	Request:
//	{
//	  "name": "ask",
//	  "arguments": {
//	    "question": "How do I rotate the API keys?",
//	    "sources": 4
//	  }
//	}
//
//	Response:
//	{
//	  "answer": "Keys are rotated from the admin panel ...",
//	  "sources": ["ops/runbook.md", "manual.pdf#page=31"],
//	  "duration_ms": 2100
//	}
//
// The sources array lists the retrieved chunks in relevance order, with
// page anchors for paginated formats. Asking before any index exists
// fails with code -32003.
//
// # Tool: chat
//
// Talk to the model without retrieval, for comparing grounded and
// ungrounded answers:
//
//	Request:
//	{
//	  "name": "chat",
//	  "arguments": {"message": "Summarize what RAG is."}
//	}
//
//	Response:
//	{
//	  "answer": "RAG combines retrieval with generation ...",
//	  "duration_ms": 1800
//	}
//
// # Tool: index_status
//
// Check the persisted index and active configuration:
//
//	Request:
//	{
//	  "name": "index_status",
//	  "arguments": {}
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "index": {
//	    "entries": 812,
//	    "dimension": 768,
//	    "provider": "ollama",
//	    "model": "nomic-embed-text",
//	    "created_at": "2025-03-14T10:22:01Z"
//	  },
//	  "ingestion_running": false,
//	  "config": {...}
//	}
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "docrag": {
//	      "command": "/usr/local/bin/docrag",
//	      "env": {
//	        "OLLAMA_HOST": "http://localhost:11434"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "invalid path",
//	    "data": {
//	      "param": "path",
//	      "reason": "path does not exist"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (ingestion, generation, storage)
//   - -32002: Ingestion already in progress
//   - -32003: No index available; run index_documents first
package mcp
