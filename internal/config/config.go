package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dshills/docrag/pkg/types"
)

// Default values applied to any field left zero in the config file.
const (
	DefaultChunkSize           = 4000
	DefaultChunkOverlap        = 2000
	DefaultBatchSize           = 10
	DefaultSources             = 4
	DefaultContextWindowTokens = 4096
	DefaultMaxAnswerTokens     = 512
	DefaultGenerationModel     = "llama3.2"
	DefaultCacheSize           = 1000
)

// Chat modes.
const (
	ModeRAG   = "rag"
	ModePlain = "plain"
)

// ChunkingConfig controls how document text is split into windows.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
// The provider may be left empty to auto-detect from the environment.
// API keys are never stored here; they come from the environment.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider,omitempty"`
	Model     string `yaml:"model,omitempty"`
	Host      string `yaml:"host,omitempty"`
	BatchSize int    `yaml:"batch_size"`
	CacheSize int    `yaml:"cache_size"`
}

// GenerationConfig configures the answer model and its streaming limits.
// ModelPath is an opaque model reference interpreted by the generator
// backend (an Ollama model name, a GGUF path for embedded backends).
type GenerationConfig struct {
	ModelPath           string   `yaml:"model_path"`
	Host                string   `yaml:"host,omitempty"`
	ContextWindowTokens int      `yaml:"context_window_tokens"`
	MaxAnswerTokens     int      `yaml:"max_answer_tokens"`
	StopSequences       []string `yaml:"stop_sequences,omitempty"`
}

// RetrievalConfig controls how many chunks back each answer.
type RetrievalConfig struct {
	Sources int `yaml:"sources"`
}

// ChatConfig selects the chat mode, "rag" or "plain".
type ChatConfig struct {
	Mode string `yaml:"mode"`
}

// Config is the root configuration. Loaded once per process and read-only
// thereafter; components receive the values they need at construction.
type Config struct {
	IndexDir   string           `yaml:"index_dir"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Chat       ChatConfig       `yaml:"chat"`
}

// Load reads a config from the given path. A missing file yields the
// defaults rather than an error. The loaded config is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./docrag.yaml first, then the per-user config path.
// If neither exists it writes the defaults to the user path and returns
// them, so a fresh install has a file to edit.
func LoadDefault() (*Config, string, error) {
	cwdPath := "docrag.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg, err := Default()
	if err != nil {
		return nil, "", err
	}
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns a fully populated default configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath is the per-user config file location.
func DefaultConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "docrag", "config.yaml"), nil
}

// DefaultIndexDir is the per-user index directory location.
func DefaultIndexDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "docrag", "index"), nil
}

func applyDefaults(cfg *Config) error {
	if cfg.IndexDir == "" {
		dir, err := DefaultIndexDir()
		if err != nil {
			return err
		}
		cfg.IndexDir = dir
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = DefaultChunkSize
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = DefaultBatchSize
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = DefaultCacheSize
	}
	if cfg.Generation.ModelPath == "" {
		cfg.Generation.ModelPath = DefaultGenerationModel
	}
	if cfg.Generation.ContextWindowTokens == 0 {
		cfg.Generation.ContextWindowTokens = DefaultContextWindowTokens
	}
	if cfg.Generation.MaxAnswerTokens == 0 {
		cfg.Generation.MaxAnswerTokens = DefaultMaxAnswerTokens
	}
	if cfg.Retrieval.Sources == 0 {
		cfg.Retrieval.Sources = DefaultSources
	}
	if cfg.Chat.Mode == "" {
		cfg.Chat.Mode = ModeRAG
	}
	return nil
}

// Validate rejects configurations that can never work. All violations wrap
// types.ErrInvalidConfig so callers can branch on the class.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d",
			types.ErrInvalidConfig, c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d",
			types.ErrInvalidConfig, c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be smaller than chunk_size %d",
			types.ErrInvalidConfig, c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("%w: embedding batch_size must be at least 1, got %d",
			types.ErrInvalidConfig, c.Embedding.BatchSize)
	}
	if c.Retrieval.Sources < 1 {
		return fmt.Errorf("%w: retrieval sources must be at least 1, got %d",
			types.ErrInvalidConfig, c.Retrieval.Sources)
	}
	if c.Generation.ContextWindowTokens < 1 {
		return fmt.Errorf("%w: context_window_tokens must be at least 1, got %d",
			types.ErrInvalidConfig, c.Generation.ContextWindowTokens)
	}
	if c.Generation.MaxAnswerTokens < 1 {
		return fmt.Errorf("%w: max_answer_tokens must be at least 1, got %d",
			types.ErrInvalidConfig, c.Generation.MaxAnswerTokens)
	}
	if c.Chat.Mode != ModeRAG && c.Chat.Mode != ModePlain {
		return fmt.Errorf("%w: chat mode must be %q or %q, got %q",
			types.ErrInvalidConfig, ModeRAG, ModePlain, c.Chat.Mode)
	}
	return nil
}
