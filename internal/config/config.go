// Package config loads repokb configuration from an optional TOML file
// with environment variable overrides.
//
// Credentials are deliberately not validated here: a missing provider
// key surfaces as domain.ErrNotConfigured when the corresponding
// adapter is first constructed, so the rest of the product can run with
// this subsystem unconfigured.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// BaseURL is the provider endpoint (default: OpenAI).
	BaseURL string `toml:"base_url"`

	// APIKey authenticates requests.
	APIKey string `toml:"api_key"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// RequestsPerSecond bounds the sustained request rate.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// VectorConfig configures the vector store backend.
type VectorConfig struct {
	// URL is the Qdrant base URL. Empty selects the in-memory backend.
	URL string `toml:"url"`

	// APIKey authenticates requests (optional for local instances).
	APIKey string `toml:"api_key"`

	// Collection is the collection holding all namespaces.
	Collection string `toml:"collection"`
}

// LLMConfig configures the optional answer-synthesis model.
type LLMConfig struct {
	// BaseURL is the provider endpoint (default: OpenAI).
	BaseURL string `toml:"base_url"`

	// APIKey authenticates requests.
	APIKey string `toml:"api_key"`

	// Model is the chat model name.
	Model string `toml:"model"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// ChunkSize is the chunk window size in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int `toml:"chunk_overlap"`

	// BatchSize is the number of chunks per embedding/upsert batch.
	BatchSize int `toml:"batch_size"`

	// AllowedExtensions replaces the extension allow-list when set.
	AllowedExtensions []string `toml:"allowed_extensions"`

	// DenyPatterns replaces the deny-pattern list when set.
	DenyPatterns []string `toml:"deny_patterns"`
}

// HistoryConfig configures the interaction log.
type HistoryConfig struct {
	// DataDir is the directory holding the SQLite database.
	// Default: ~/.repokb/data.
	DataDir string `toml:"data_dir"`
}

// Config is the full repokb configuration.
type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	Vector    VectorConfig    `toml:"vector"`
	LLM       LLMConfig       `toml:"llm"`
	Ingest    IngestConfig    `toml:"ingest"`
	History   HistoryConfig   `toml:"history"`
}

// Load reads the TOML file at path (a missing file is not an error)
// and applies REPOKB_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Fall through to env-only configuration.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays REPOKB_* environment variables onto the config.
func (c *Config) applyEnv() {
	overrideString(&c.Embedding.BaseURL, "REPOKB_EMBEDDING_BASE_URL")
	overrideString(&c.Embedding.APIKey, "REPOKB_EMBEDDING_API_KEY")
	overrideString(&c.Embedding.Model, "REPOKB_EMBEDDING_MODEL")
	overrideFloat(&c.Embedding.RequestsPerSecond, "REPOKB_EMBEDDING_RPS")

	overrideString(&c.Vector.URL, "REPOKB_VECTOR_URL")
	overrideString(&c.Vector.APIKey, "REPOKB_VECTOR_API_KEY")
	overrideString(&c.Vector.Collection, "REPOKB_VECTOR_COLLECTION")

	overrideString(&c.LLM.BaseURL, "REPOKB_LLM_BASE_URL")
	overrideString(&c.LLM.APIKey, "REPOKB_LLM_API_KEY")
	overrideString(&c.LLM.Model, "REPOKB_LLM_MODEL")

	overrideInt(&c.Ingest.ChunkSize, "REPOKB_CHUNK_SIZE")
	overrideInt(&c.Ingest.ChunkOverlap, "REPOKB_CHUNK_OVERLAP")
	overrideInt(&c.Ingest.BatchSize, "REPOKB_BATCH_SIZE")

	overrideString(&c.History.DataDir, "REPOKB_HISTORY_DIR")
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func overrideFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}
