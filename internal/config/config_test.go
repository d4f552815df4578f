package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docrag/pkg/types"
)

func TestDefaultValues(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, cfg.Chunking.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, DefaultBatchSize, cfg.Embedding.BatchSize)
	assert.Equal(t, DefaultSources, cfg.Retrieval.Sources)
	assert.Equal(t, DefaultContextWindowTokens, cfg.Generation.ContextWindowTokens)
	assert.Equal(t, DefaultMaxAnswerTokens, cfg.Generation.MaxAnswerTokens)
	assert.Equal(t, ModeRAG, cfg.Chat.Mode)
	assert.NotEmpty(t, cfg.IndexDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, cfg.Chunking.ChunkSize)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")
	content := []byte("chunking:\n  chunk_size: 1000\n  chunk_overlap: 200\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, DefaultBatchSize, cfg.Embedding.BatchSize)
	assert.Equal(t, DefaultSources, cfg.Retrieval.Sources)
}

func TestLoadRejectsInvalidOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")
	content := []byte("chunking:\n  chunk_size: 100\n  chunk_overlap: 100\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidConfig))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docrag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "docrag.yaml")

	cfg, err := Default()
	require.NoError(t, err)
	cfg.Chunking.ChunkSize = 512
	cfg.Chunking.ChunkOverlap = 64
	cfg.Generation.StopSequences = []string{"\n\n", "###"}
	cfg.Chat.Mode = ModePlain

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = -1 }},
		{"negative overlap", func(c *Config) { c.Chunking.ChunkOverlap = -1 }},
		{"overlap equals size", func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize }},
		{"overlap exceeds size", func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize + 1 }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = -1 }},
		{"zero sources", func(c *Config) { c.Retrieval.Sources = -1 }},
		{"zero window", func(c *Config) { c.Generation.ContextWindowTokens = -1 }},
		{"zero answer budget", func(c *Config) { c.Generation.MaxAnswerTokens = -1 }},
		{"unknown chat mode", func(c *Config) { c.Chat.Mode = "hybrid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfig))
		})
	}
}
