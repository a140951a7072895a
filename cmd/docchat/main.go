package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/docchat/docchat-go/internal/adapters/extractor"
	"github.com/docchat/docchat-go/internal/adapters/knowledge"
	"github.com/docchat/docchat-go/internal/adapters/llm"
	"github.com/docchat/docchat-go/internal/config"
	"github.com/docchat/docchat-go/internal/domain/usecases"
	"github.com/docchat/docchat-go/internal/infrastructure/tui"
	"github.com/docchat/docchat-go/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.BoolVar(&verbose, "verbose", false, "Print pipeline debug output to stderr")
	flag.Parse()
	logger.SetVerbose(verbose)

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: docchat [--config=config.yaml] file1.pdf [file2.csv ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	store := knowledge.NewMemoryStore()
	chunker := usecases.NewChunker(cfg.Chunking.TextChunkSize, cfg.Chunking.RowsPerChunk)
	retriever := usecases.NewRetriever(cfg.RetrievalPolicy())
	ingestUC := usecases.NewIngestUseCase(chunker, store, extractor.NewFileExtractor())
	generator := llm.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	chatUC := usecases.NewChatUseCase(retriever, store, generator, cfg.Retrieval.Limit, cfg.Chat.HistoryWindow)

	results, errs := ingestUC.IngestBatch(context.Background(), inputs)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if len(results) == 0 {
		log.Fatalf("no documents ingested")
	}

	total := 0
	skipped := 0
	for _, r := range results {
		total += r.Chunks
		if r.Skipped {
			skipped++
		}
	}
	banner := fmt.Sprintf("Indexed %d file(s), %d chunks", len(results)-skipped, total)
	if skipped > 0 {
		banner += fmt.Sprintf(" (%d already indexed)", skipped)
	}

	m := tui.New(chatUC, banner)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
