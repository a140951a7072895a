// Package config loads and persists the application configuration.
// All retrieval and chunking constants are policy, not law: the YAML file
// can override any of them, and the reference defaults apply otherwise.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/docchat/docchat-go/internal/domain/usecases"
)

// ChunkingConfig configures how documents are split into chunks.
type ChunkingConfig struct {
	TextChunkSize int `yaml:"text_chunk_size"`
	RowsPerChunk  int `yaml:"rows_per_chunk"`
}

// RetrievalConfig configures lexical scoring and selection bounds.
type RetrievalConfig struct {
	Limit                    int      `yaml:"limit"`
	SmallCorpusThreshold     int      `yaml:"small_corpus_threshold"`
	PhraseBonus              int      `yaml:"phrase_bonus"`
	FallbackLimit            int      `yaml:"fallback_limit"`
	AggregationFallbackLimit int      `yaml:"aggregation_fallback_limit"`
	AggregationKeywords      []string `yaml:"aggregation_keywords,omitempty"`
}

// OllamaConfig contains connection details for the generation collaborator.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	DocumentsDir string `yaml:"documents_dir"`
}

// ChatConfig configures conversation handling.
type ChatConfig struct {
	HistoryWindow int `yaml:"history_window"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Server    ServerConfig    `yaml:"server"`
	Chat      ChatConfig      `yaml:"chat"`
}

// RetrievalPolicy converts the config into the retriever's policy value.
func (c *AppConfig) RetrievalPolicy() usecases.RetrievalPolicy {
	return usecases.RetrievalPolicy{
		Limit:                    c.Retrieval.Limit,
		SmallCorpusThreshold:     c.Retrieval.SmallCorpusThreshold,
		PhraseBonus:              c.Retrieval.PhraseBonus,
		FallbackLimit:            c.Retrieval.FallbackLimit,
		AggregationFallbackLimit: c.Retrieval.AggregationFallbackLimit,
		AggregationKeywords:      c.Retrieval.AggregationKeywords,
	}
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunking.TextChunkSize == 0 {
		cfg.Chunking.TextChunkSize = usecases.DefaultTextChunkSize
	}
	if cfg.Chunking.RowsPerChunk == 0 {
		cfg.Chunking.RowsPerChunk = usecases.DefaultRowsPerChunk
	}
	if cfg.Retrieval.Limit == 0 {
		cfg.Retrieval.Limit = usecases.DefaultSelectLimit
	}
	if cfg.Retrieval.SmallCorpusThreshold == 0 {
		cfg.Retrieval.SmallCorpusThreshold = usecases.DefaultSmallCorpusThreshold
	}
	if cfg.Retrieval.PhraseBonus == 0 {
		cfg.Retrieval.PhraseBonus = usecases.DefaultPhraseBonus
	}
	if cfg.Retrieval.FallbackLimit == 0 {
		cfg.Retrieval.FallbackLimit = usecases.DefaultFallbackLimit
	}
	if cfg.Retrieval.AggregationFallbackLimit == 0 {
		cfg.Retrieval.AggregationFallbackLimit = usecases.DefaultAggregationFallbackLimit
	}
	if len(cfg.Retrieval.AggregationKeywords) == 0 {
		cfg.Retrieval.AggregationKeywords = usecases.DefaultAggregationKeywords
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3.2"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.DocumentsDir == "" {
		cfg.Server.DocumentsDir = "documents"
	}
	if cfg.Chat.HistoryWindow == 0 {
		cfg.Chat.HistoryWindow = usecases.DefaultHistoryWindow
	}
}
