package generator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/dshills/docrag/pkg/types"
)

// OllamaBackend streams completions from a local Ollama server.
//
// No HTTP timeout is set; generation runs until the stream ends or the
// context is canceled. Stop sequences are not forwarded to the server,
// the Generator matches them over the accumulated output itself.
type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend creates a backend for the given model. An empty host
// falls back to OLLAMA_HOST and then to the default localhost address.
func NewOllamaBackend(host, model string) (*OllamaBackend, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: generation model not set", types.ErrInvalidConfig)
	}
	var client *api.Client
	if host == "" {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
	} else {
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid ollama host %q: %v", types.ErrInvalidConfig, host, err)
		}
		client = api.NewClient(base, &http.Client{})
	}
	return &OllamaBackend{client: client, model: model}, nil
}

// Name returns the backend name.
func (b *OllamaBackend) Name() string { return "ollama" }

// Stream sends the prompt to Ollama and forwards each streamed piece to
// emit. MaxTokens is passed along as the num_predict hint.
func (b *OllamaBackend) Stream(ctx context.Context, req Request, emit func(piece string) error) error {
	stream := true
	genReq := &api.GenerateRequest{
		Model:  b.model,
		Prompt: req.Prompt,
		Stream: &stream,
	}
	if req.MaxTokens > 0 {
		genReq.Options = map[string]any{"num_predict": req.MaxTokens}
	}
	return b.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		return emit(resp.Response)
	})
}

// Close releases the backend. The Ollama client holds no persistent
// connection state.
func (b *OllamaBackend) Close() error { return nil }
