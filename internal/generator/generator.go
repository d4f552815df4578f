package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/docrag/pkg/types"
)

// State describes where a Generator is in its lifecycle. A run moves
// IDLE -> GENERATING -> one of COMPLETE, STOPPED, FAILED; the terminal
// state remains observable until the next run starts.
type State string

const (
	StateIdle       State = "IDLE"
	StateGenerating State = "GENERATING"
	StateComplete   State = "COMPLETE"
	StateStopped    State = "STOPPED"
	StateFailed     State = "FAILED"
)

// Request describes one generation run.
type Request struct {
	Prompt        string
	MaxTokens     int // emitted-piece budget, <=0 means no limit
	StopSequences []string
}

// Backend streams raw model output. Implementations must propagate a
// non-nil error returned by emit and stop streaming.
type Backend interface {
	Name() string
	Stream(ctx context.Context, req Request, emit func(piece string) error) error
	Close() error
}

// Stream-control sentinels returned through emit. They terminate the
// backend stream without marking the run as failed.
var (
	errStopMatched   = errors.New("stop sequence matched")
	errBudgetReached = errors.New("token budget reached")
)

// Generator drives a Backend and owns the model exclusively: runs are
// serialized on an internal mutex, so a second concurrent Generate waits
// for the first instead of interleaving output.
type Generator struct {
	backend Backend
	logger  *slog.Logger

	mu sync.Mutex // serializes generation runs

	stateMu sync.RWMutex
	state   State
}

// New creates a Generator over the given backend.
func New(backend Backend, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		backend: backend,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (g *Generator) State() State {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.state
}

func (g *Generator) setState(s State) {
	g.stateMu.Lock()
	g.state = s
	g.stateMu.Unlock()
}

// Generate streams an answer for the request, invoking onToken for every
// emitted piece. Stop sequences are matched over the accumulated output,
// across piece boundaries; matched stop text is never emitted. The
// returned string is exactly the concatenation of the emitted pieces.
// Backend failures return an error wrapping types.ErrGenerationFailed;
// pieces already delivered to onToken stand.
func (g *Generator) Generate(ctx context.Context, req Request, onToken func(string)) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.setState(StateGenerating)

	scan := newStopScanner(req.StopSequences)
	var answer strings.Builder
	emitted := 0

	emit := func(text string) {
		if text == "" {
			return
		}
		answer.WriteString(text)
		if onToken != nil {
			onToken(text)
		}
		emitted++
	}

	err := g.backend.Stream(ctx, req, func(piece string) error {
		out, stopped := scan.push(piece)
		emit(out)
		if stopped {
			return errStopMatched
		}
		if req.MaxTokens > 0 && emitted >= req.MaxTokens {
			return errBudgetReached
		}
		return nil
	})

	switch {
	case err == nil:
		// Natural end of stream: the withheld tail contains no stop
		// sequence, so it belongs to the answer.
		emit(scan.flush())
		g.setState(StateComplete)
	case errors.Is(err, errStopMatched):
		g.setState(StateStopped)
	case errors.Is(err, errBudgetReached):
		g.setState(StateComplete)
	default:
		g.setState(StateFailed)
		g.logger.Error("generation failed", "backend", g.backend.Name(), "error", err)
		return answer.String(), fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}

	return answer.String(), nil
}

// Close releases the backend.
func (g *Generator) Close() error {
	return g.backend.Close()
}

// stopScanner accumulates streamed text and withholds the longest
// possible stop-sequence prefix, so a stop split across pieces is caught
// before any of it escapes. With stop sequences of maximum length L, the
// last L-1 bytes are always withheld until the stream ends.
type stopScanner struct {
	stops    []string
	holdback int
	buf      string
}

func newStopScanner(stops []string) *stopScanner {
	var kept []string
	maxLen := 0
	for _, s := range stops {
		if s == "" {
			continue
		}
		kept = append(kept, s)
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	holdback := 0
	if maxLen > 0 {
		holdback = maxLen - 1
	}
	return &stopScanner{stops: kept, holdback: holdback}
}

// push absorbs one streamed piece and returns the text that is safe to
// emit. stopped reports that a stop sequence matched; the returned text
// then ends immediately before the match and the rest is discarded.
func (s *stopScanner) push(piece string) (out string, stopped bool) {
	s.buf += piece

	if idx := s.earliestStop(); idx >= 0 {
		out = s.buf[:idx]
		s.buf = ""
		return out, true
	}

	safe := len(s.buf) - s.holdback
	// Never cut in the middle of a rune; withholding more is always safe.
	for safe > 0 && safe < len(s.buf) && !utf8.RuneStart(s.buf[safe]) {
		safe--
	}
	if safe <= 0 {
		return "", false
	}
	out = s.buf[:safe]
	s.buf = s.buf[safe:]
	return out, false
}

// flush returns the withheld tail at end of stream.
func (s *stopScanner) flush() string {
	out := s.buf
	s.buf = ""
	return out
}

// earliestStop returns the index of the first stop-sequence match in the
// buffer, -1 when none match.
func (s *stopScanner) earliestStop() int {
	best := -1
	for _, stop := range s.stops {
		if i := strings.Index(s.buf, stop); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}
