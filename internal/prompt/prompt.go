package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/docrag/pkg/types"
)

// answerTemplate frames retrieved context for grounded question answering.
// The model is told to refuse rather than guess when the context does not
// contain the answer.
const answerTemplate = `You are a documentation assistant. Answer the question using only the context below. If the context does not contain the answer, say that you do not know. Be concise.

Context:
%s

Question: %s

Answer:`

// plainTemplate is used by the non-retrieval chat mode.
const plainTemplate = `You are a helpful assistant. Answer concisely.

Question: %s

Answer:`

// Assembler renders prompts under a fixed context window. The window and
// the answer reservation are measured in tokens, estimated at four bytes
// per token.
type Assembler struct {
	windowTokens int
	answerTokens int
}

// NewAssembler creates an Assembler. The answer reservation must leave
// room inside the window for at least some prompt text; violations return
// an error wrapping types.ErrInvalidConfig.
func NewAssembler(windowTokens, answerTokens int) (*Assembler, error) {
	if windowTokens <= 0 {
		return nil, fmt.Errorf("%w: context window must be positive, got %d",
			types.ErrInvalidConfig, windowTokens)
	}
	if answerTokens <= 0 {
		return nil, fmt.Errorf("%w: answer token reservation must be positive, got %d",
			types.ErrInvalidConfig, answerTokens)
	}
	if answerTokens >= windowTokens {
		return nil, fmt.Errorf("%w: answer reservation %d must be smaller than context window %d",
			types.ErrInvalidConfig, answerTokens, windowTokens)
	}
	return &Assembler{
		windowTokens: windowTokens,
		answerTokens: answerTokens,
	}, nil
}

// Assemble renders the answer prompt with as many retrieved chunks as the
// window allows. Chunks are taken in the given order until the estimated
// prompt tokens plus the answer reservation exceed the window; the walk
// stops at the first chunk that does not fit. If even the first chunk is
// too large on its own it is truncated to fit, so a non-empty retrieval
// always contributes context.
func (a *Assembler) Assemble(question string, chunks []types.Chunk) string {
	budget := a.windowTokens - a.answerTokens

	var blocks []string
	for i, chunk := range chunks {
		candidate := append(blocks, formatChunk(chunk))
		if types.EstimateTokens(render(candidate, question)) <= budget {
			blocks = candidate
			continue
		}
		if i == 0 {
			blocks = []string{truncateChunkToFit(chunk, question, budget)}
		}
		break
	}

	return render(blocks, question)
}

// AssemblePlain renders the non-retrieval prompt.
func (a *Assembler) AssemblePlain(question string) string {
	return fmt.Sprintf(plainTemplate, question)
}

func render(blocks []string, question string) string {
	return fmt.Sprintf(answerTemplate, strings.Join(blocks, "\n\n"), question)
}

// formatChunk labels a chunk with its source reference so answers can be
// traced back to the document (and page) they came from.
func formatChunk(chunk types.Chunk) string {
	return fmt.Sprintf("[%s]\n%s", chunk.SourceRef(), chunk.Text)
}

// truncateChunkToFit shortens the chunk text until the rendered prompt
// fits the budget. The cut lands on a rune boundary.
func truncateChunkToFit(chunk types.Chunk, question string, budget int) string {
	overhead := types.EstimateTokens(render([]string{formatChunk(withText(chunk, ""))}, question))
	allowedBytes := (budget - overhead) * 4
	return formatChunk(withText(chunk, truncateBytes(chunk.Text, allowedBytes)))
}

func withText(chunk types.Chunk, text string) types.Chunk {
	chunk.Text = text
	return chunk
}

// truncateBytes cuts s to at most maxBytes, backing up to the nearest
// rune boundary so the result stays valid UTF-8.
func truncateBytes(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
