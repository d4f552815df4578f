package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/docrag/internal/generator"
	"github.com/dshills/docrag/internal/prompt"
	"github.com/dshills/docrag/internal/retriever"
	"github.com/dshills/docrag/pkg/types"
)

// State describes where an Orchestrator is in handling a request.
type State string

const (
	StateReceived        State = "RECEIVED"
	StateRetrieving      State = "RETRIEVING"
	StateContextEmitted  State = "CONTEXT_EMITTED"
	StateStreamingAnswer State = "STREAMING_ANSWER"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// Options bounds a chat run. Zero values fall back to nothing; callers
// are expected to fill them from configuration.
type Options struct {
	Sources       int // retrieved chunks per question
	MaxTokens     int // answer token budget, <=0 means no limit
	StopSequences []string
}

// Orchestrator answers questions over the indexed corpus: retrieve,
// emit source references, assemble a grounded prompt, stream the answer.
type Orchestrator struct {
	retriever *retriever.Retriever
	assembler *prompt.Assembler
	generator *generator.Generator
	opts      Options
	logger    *slog.Logger

	stateMu sync.RWMutex
	state   State
}

var _ ChatRunner = (*Orchestrator)(nil)

// NewOrchestrator wires a retrieval-augmented chat runner.
func NewOrchestrator(ret *retriever.Retriever, asm *prompt.Assembler, gen *generator.Generator, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		retriever: ret,
		assembler: asm,
		generator: gen,
		opts:      opts,
		logger:    logger,
		state:     StateReceived,
	}
}

// State returns the current request state.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// RunChat answers one question. Every retrieved chunk yields exactly one
// source token, all delivered before the first answer token; the answer
// tokens concatenate to the returned string. A missing index surfaces as
// an error wrapping types.ErrIndexUnavailable with no tokens emitted.
// Tokens already delivered when an error occurs are not retracted.
func (o *Orchestrator) RunChat(ctx context.Context, input string, onToken func(Token)) (string, error) {
	log := o.logger.With("request_id", uuid.New().String())
	o.setState(StateReceived)
	log.Info("chat request", "mode", "rag", "input_chars", len(input))

	o.setState(StateRetrieving)
	results, err := o.retriever.Retrieve(ctx, input, o.opts.Sources)
	if err != nil {
		o.setState(StateFailed)
		log.Error("retrieval failed", "error", err)
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	chunks := make([]types.Chunk, len(results))
	for i, res := range results {
		chunks[i] = res.Chunk
	}
	for _, chunk := range chunks {
		if onToken != nil {
			onToken(Token{Kind: TokenSource, Value: chunk.SourceRef()})
		}
	}
	o.setState(StateContextEmitted)
	log.Debug("context emitted", "sources", len(chunks))

	promptText := o.assembler.Assemble(input, chunks)

	o.setState(StateStreamingAnswer)
	answer, err := o.generator.Generate(ctx, generator.Request{
		Prompt:        promptText,
		MaxTokens:     o.opts.MaxTokens,
		StopSequences: o.opts.StopSequences,
	}, func(piece string) {
		if onToken != nil {
			onToken(Token{Kind: TokenAnswer, Value: piece})
		}
	})
	if err != nil {
		o.setState(StateFailed)
		log.Error("generation failed", "error", err)
		return answer, fmt.Errorf("generating answer: %w", err)
	}

	o.setState(StateDone)
	log.Info("chat request done", "sources", len(chunks), "answer_chars", len(answer))
	return answer, nil
}
