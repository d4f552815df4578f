// Package generator streams answer text from a language model backend.
//
// A Generator owns its backend exclusively. Runs are serialized on an
// internal mutex, so concurrent callers queue rather than interleave
// their output. Each run moves through a small lifecycle:
//
//	IDLE -> GENERATING -> COMPLETE | STOPPED | FAILED
//
// The current state is observable through State(); a terminal state
// stays visible until the next run begins.
//
// # Streaming and Stop Sequences
//
// Generate invokes onToken once per emitted piece and returns the
// concatenation of all emitted pieces. Stop sequences are matched over
// the accumulated output, not per piece, so a stop split across two
// streamed pieces is still caught. The scanner withholds the longest
// possible stop-sequence prefix from emission; when a stop matches, only
// the text before it is emitted and the run finishes STOPPED. Matched
// stop text never reaches onToken. At a natural end of stream the
// withheld tail is flushed, since it cannot contain a stop.
//
// MaxTokens bounds the number of emitted pieces. Reaching the budget
// finishes the run COMPLETE, the same as a natural end.
//
// # Backends
//
// Backend abstracts the model transport. OllamaBackend talks to a local
// Ollama server via its streaming generate API. Backend errors are
// returned wrapped in types.ErrGenerationFailed and the run finishes
// FAILED; pieces already delivered to onToken are not retracted.
package generator
