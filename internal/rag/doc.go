// Package rag orchestrates retrieval-augmented chat.
//
// The Orchestrator handles one question end to end: embed the question
// and search the index, emit one source token per retrieved chunk, build
// a context-grounded prompt, then stream the model's answer as answer
// tokens. A request moves through
//
//	RECEIVED -> RETRIEVING -> CONTEXT_EMITTED -> STREAMING_ANSWER -> DONE | FAILED
//
// observable via State(). All source tokens precede the first answer
// token, so a consumer can render "consulting X, Y" before the answer
// starts. The returned answer string contains only answer text.
//
// PlainChat implements the same ChatRunner contract without retrieval,
// for comparing grounded and ungrounded answers over the same model.
//
// Failures follow the error taxonomy in pkg/types: an unindexed corpus
// surfaces as types.ErrIndexUnavailable before any token is emitted, and
// mid-stream generation failures leave already-delivered tokens standing.
package rag
