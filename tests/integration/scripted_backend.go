package integration

import (
	"context"
	"strings"
	"sync"

	"github.com/dshills/docrag/internal/generator"
)

// ScriptedBackend provides a fake generation backend for testing.
// It streams a fixed sequence of pieces instead of calling a model,
// and records every prompt it is asked to complete.
type ScriptedBackend struct {
	mu      sync.Mutex
	pieces  []string
	failAt  int
	failErr error
	prompts []string
}

// NewScriptedBackend creates a backend that streams the given pieces.
func NewScriptedBackend(pieces ...string) *ScriptedBackend {
	return &ScriptedBackend{pieces: pieces, failAt: -1}
}

// FailAfter makes Stream return err once n pieces have been emitted.
func (s *ScriptedBackend) FailAfter(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt = n
	s.failErr = err
}

// Name identifies the backend.
func (s *ScriptedBackend) Name() string { return "scripted" }

// Stream replays the scripted pieces through emit.
func (s *ScriptedBackend) Stream(ctx context.Context, req generator.Request, emit func(piece string) error) error {
	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	pieces := s.pieces
	failAt := s.failAt
	failErr := s.failErr
	s.mu.Unlock()

	for i, piece := range pieces {
		if failAt >= 0 && i == failAt {
			return failErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(piece); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op.
func (s *ScriptedBackend) Close() error { return nil }

// LastPrompt returns the most recent prompt Stream received, or "".
func (s *ScriptedBackend) LastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

// Answer returns the full scripted completion as one string.
func (s *ScriptedBackend) Answer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.pieces, "")
}
