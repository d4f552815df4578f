package rag

import "context"

// TokenKind tells a stream consumer what a token carries.
type TokenKind string

const (
	// TokenSource carries a source reference for one retrieved chunk,
	// emitted before any answer text.
	TokenSource TokenKind = "source"
	// TokenAnswer carries a piece of streamed answer text.
	TokenAnswer TokenKind = "answer"
)

// Token is one element of a chat response stream.
type Token struct {
	Kind  TokenKind
	Value string
}

// ChatRunner answers a single chat input, streaming tokens through
// onToken as they become available. The returned string is the complete
// answer text; source tokens are not part of it. Implementations must
// deliver all source tokens before the first answer token.
type ChatRunner interface {
	RunChat(ctx context.Context, input string, onToken func(Token)) (string, error)
}
