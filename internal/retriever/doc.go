// Package retriever resolves questions to the most relevant indexed
// chunks.
//
// A Retriever embeds the incoming query with the same provider that
// built the index and ranks every stored entry by cosine similarity,
// returning the top k. The persisted index is read once, on the first
// query, and served from memory afterwards; retrievers are cheap to
// construct, so callers wanting a fresh snapshot after re-ingestion
// simply build a new one.
//
// Querying before any ingestion has run fails with an error wrapping
// types.ErrIndexUnavailable rather than returning empty results, so
// callers can distinguish "nothing indexed yet" from "nothing relevant
// found".
package retriever
