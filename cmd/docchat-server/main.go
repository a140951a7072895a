package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docchat/docchat-go/internal/adapters/extractor"
	"github.com/docchat/docchat-go/internal/adapters/filewatcher"
	"github.com/docchat/docchat-go/internal/adapters/knowledge"
	"github.com/docchat/docchat-go/internal/adapters/llm"
	"github.com/docchat/docchat-go/internal/config"
	"github.com/docchat/docchat-go/internal/domain/ports"
	"github.com/docchat/docchat-go/internal/domain/usecases"
	httpserver "github.com/docchat/docchat-go/internal/infrastructure/http"
	"github.com/docchat/docchat-go/internal/logger"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.BoolVar(&verbose, "verbose", false, "Print pipeline debug output to stderr")
	flag.Parse()
	logger.SetVerbose(verbose)

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
	fileExtractor := extractor.NewFileExtractor()
	ingestUC := usecases.NewIngestUseCase(chunker, store, fileExtractor)
	generator := llm.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	chatUC := usecases.NewChatUseCase(retriever, store, generator, cfg.Retrieval.Limit, cfg.Chat.HistoryWindow)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ingest whatever is already in the documents folder, then watch it.
	if err := ingestExisting(ctx, ingestUC, fileExtractor, cfg.Server.DocumentsDir); err != nil {
		logger.Warn("Initial scan failed: %v", err)
	}
	go watchDocuments(ctx, ingestUC, fileExtractor, cfg.Server.DocumentsDir)

	server := httpserver.NewServer(chatUC, ingestUC, store, cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

// ingestExisting indexes supported files already present in dir.
func ingestExisting(ctx context.Context, ingestUC *usecases.IngestUseCase, ext ports.DocumentExtractor, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return err
	}
	supported := make(map[string]struct{})
	for _, e := range ext.SupportedExtensions() {
		supported[e] = struct{}{}
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := supported[filepath.Ext(entry.Name())]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	_, errs := ingestUC.IngestBatch(ctx, paths)
	for _, err := range errs {
		logger.Warn("Scan ingest: %v", err)
	}
	return nil
}

// watchDocuments auto-ingests files dropped into dir.
func watchDocuments(ctx context.Context, ingestUC *usecases.IngestUseCase, ext ports.DocumentExtractor, dir string) {
	watcher, err := filewatcher.NewFSNotifyWatcher(ext.SupportedExtensions())
	if err != nil {
		logger.Warn("Watcher unavailable: %v", err)
		return
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		logger.Warn("Cannot watch %s: %v", dir, err)
		return
	}

	for event := range events {
		if event.Operation == ports.FileDeleted {
			continue // Removal is whole-knowledge-base only
		}
		result, err := ingestUC.IngestPath(ctx, event.Path)
		if err != nil {
			logger.Warn("Auto-ingest %s: %v", event.Path, err)
			continue
		}
		if !result.Skipped {
			logger.Info("Auto-ingested %s: %d chunks", result.SourceName, result.Chunks)
		}
	}
}
