// Package types provides shared type definitions for the docrag engine.
//
// This package defines domain types used across multiple components of
// docrag, including documents, chunks, and the error taxonomy shared by the
// ingestion and chat pipelines.
//
// # Core Types
//
// Document represents the parsed text of one input file, or of one page for
// paginated formats such as PDF:
//
//	doc := types.Document{
//	    SourcePath: "manuals/setup.pdf",
//	    Text:       pageText,
//	    PageNumber: 3,
//	}
//
// Chunk represents one bounded window of a document's text, the atomic unit
// of embedding and retrieval:
//
//	chunk := types.Chunk{
//	    Text:       window,
//	    SourcePath: doc.SourcePath,
//	    PageNumber: doc.PageNumber,
//	    ChunkIndex: 0,
//	}
//
// # Citations
//
// Chunks self-describe their origin for citation. Paginated sources carry a
// page anchor in PDF open-parameter form:
//
//	chunk.SourceRef() // "manuals/setup.pdf#page=3"
//
// Unpaginated sources render as the bare path.
//
// # Errors
//
// The sentinel errors defined here are the failure classes the pipelines
// distinguish. Producers wrap them for detail, consumers branch on them:
//
//	if errors.Is(err, types.ErrIndexUnavailable) {
//	    fmt.Println("no index yet, run ingestion first")
//	}
//
// ParseError is the one structured error: it carries the path of a file
// that could not be parsed so ingestion can report it and move on.
package types
