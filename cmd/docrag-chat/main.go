package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/dshills/docrag/internal/config"
	"github.com/dshills/docrag/internal/embedder"
	"github.com/dshills/docrag/internal/generator"
	"github.com/dshills/docrag/internal/index"
	"github.com/dshills/docrag/internal/prompt"
	"github.com/dshills/docrag/internal/rag"
	"github.com/dshills/docrag/internal/retriever"
	"github.com/dshills/docrag/pkg/types"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	indexDir   = flag.String("index-dir", "", "Override the index directory")
	plainMode  = flag.Bool("plain", false, "Chat without document retrieval")
	oneShot    = flag.String("q", "", "Ask a single question and exit")
	modelName  = flag.String("model", "", "Override the generation model")
	sources    = flag.Int("sources", 0, "Override the number of retrieved chunks per question")
	maxTokens  = flag.Int("max-tokens", 0, "Override the answer token budget")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// API keys may live in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := resolveConfig()
	if err != nil {
		fatalf("loading configuration: %v", err)
	}

	mode := cfg.Chat.Mode
	if *plainMode {
		mode = config.ModePlain
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Host:      cfg.Embedding.Host,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		fatalf("initializing embedder: %v", err)
	}
	defer emb.Close()

	asm, err := prompt.NewAssembler(cfg.Generation.ContextWindowTokens, cfg.Generation.MaxAnswerTokens)
	if err != nil {
		fatalf("invalid generation limits: %v", err)
	}

	backend, err := generator.NewOllamaBackend(cfg.Generation.Host, cfg.Generation.ModelPath)
	if err != nil {
		fatalf("initializing generation backend: %v", err)
	}
	gen := generator.New(backend, logger)
	defer gen.Close()

	store := index.NewStore(cfg.IndexDir, logger)
	opts := rag.Options{
		Sources:       cfg.Retrieval.Sources,
		MaxTokens:     cfg.Generation.MaxAnswerTokens,
		StopSequences: cfg.Generation.StopSequences,
	}

	var runner rag.ChatRunner
	if mode == config.ModePlain {
		runner = rag.NewPlainChat(asm, gen, opts, logger)
	} else {
		runner = rag.NewOrchestrator(retriever.New(store, emb, logger), asm, gen, opts, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()

	if *oneShot != "" {
		if err := runOnce(ctx, runner, *oneShot); err != nil {
			os.Exit(1)
		}
		return
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Println(boldGreen("docrag chat"))
	fmt.Printf("Model: %s, mode: %s\n", boldCyan(cfg.Generation.ModelPath), mode)
	if mode != config.ModePlain {
		printIndexBanner(ctx, store)
	}
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}

		_ = runOnce(ctx, runner, input)
	}
}

// runOnce streams one answer to stdout: source references first, then the
// answer tokens as they arrive.
func runOnce(ctx context.Context, runner rag.ChatRunner, input string) error {
	bold := color.New(color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	sourcesShown := false
	answering := false
	_, err := runner.RunChat(ctx, input, func(tok rag.Token) {
		switch tok.Kind {
		case rag.TokenSource:
			if !sourcesShown {
				fmt.Println(bold("Sources:"))
				sourcesShown = true
			}
			fmt.Printf("  - %s\n", yellow(tok.Value))
		case rag.TokenAnswer:
			if !answering {
				fmt.Print(boldCyan("Assistant: "))
				answering = true
			}
			fmt.Print(tok.Value)
		}
	})
	if answering {
		fmt.Println()
	}
	if err != nil {
		switch {
		case errors.Is(err, types.ErrIndexUnavailable):
			fmt.Println(yellow("No index found. Build one first: docrag-index <corpus-dir>"))
		case errors.Is(err, types.ErrGenerationFailed):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Println("Make sure Ollama is running with: ollama serve")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		fmt.Println()
		return err
	}
	fmt.Println()
	return nil
}

// printIndexBanner reports what the retriever will answer from.
func printIndexBanner(ctx context.Context, store *index.Store) {
	yellow := color.New(color.FgYellow).SprintFunc()

	info, err := store.Info(ctx)
	if errors.Is(err, types.ErrIndexNotFound) {
		fmt.Println(yellow("No index yet. Build one with: docrag-index <corpus-dir>"))
		return
	}
	if err != nil {
		fmt.Println(yellow("Index could not be read; questions will fail until it is rebuilt."))
		return
	}
	fmt.Printf("Index: %d entries, embedded with %s/%s\n", info.Entries, info.Provider, info.Model)
}

// resolveConfig loads the config and applies flag and env overrides.
func resolveConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = os.Getenv("DOCRAG_CONFIG")
	}

	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if dir := os.Getenv("DOCRAG_INDEX_DIR"); dir != "" {
		cfg.IndexDir = dir
	}
	if *indexDir != "" {
		cfg.IndexDir = *indexDir
	}
	if *modelName != "" {
		cfg.Generation.ModelPath = *modelName
	}
	if *sources > 0 {
		cfg.Retrieval.Sources = *sources
	}
	if *maxTokens > 0 {
		cfg.Generation.MaxAnswerTokens = *maxTokens
	}
	return cfg, cfg.Validate()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "docrag-chat: "+format+"\n", args...)
	os.Exit(1)
}
