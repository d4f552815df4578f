package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/docrag/internal/generator"
	"github.com/dshills/docrag/internal/prompt"
)

// PlainChat answers without retrieval. No source tokens are emitted and
// the model sees only the question.
type PlainChat struct {
	assembler *prompt.Assembler
	generator *generator.Generator
	opts      Options
	logger    *slog.Logger
}

var _ ChatRunner = (*PlainChat)(nil)

// NewPlainChat wires a retrieval-free chat runner. Options.Sources is
// ignored.
func NewPlainChat(asm *prompt.Assembler, gen *generator.Generator, opts Options, logger *slog.Logger) *PlainChat {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlainChat{assembler: asm, generator: gen, opts: opts, logger: logger}
}

// RunChat streams an answer to the input. All tokens are answer tokens.
func (p *PlainChat) RunChat(ctx context.Context, input string, onToken func(Token)) (string, error) {
	log := p.logger.With("request_id", uuid.New().String())
	log.Info("chat request", "mode", "plain", "input_chars", len(input))

	answer, err := p.generator.Generate(ctx, generator.Request{
		Prompt:        p.assembler.AssemblePlain(input),
		MaxTokens:     p.opts.MaxTokens,
		StopSequences: p.opts.StopSequences,
	}, func(piece string) {
		if onToken != nil {
			onToken(Token{Kind: TokenAnswer, Value: piece})
		}
	})
	if err != nil {
		log.Error("generation failed", "error", err)
		return answer, fmt.Errorf("generating answer: %w", err)
	}

	log.Info("chat request done", "answer_chars", len(answer))
	return answer, nil
}
