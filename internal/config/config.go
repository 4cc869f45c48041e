// Package config provides configuration loading and structs for the yomitori server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Query    QueryConfig    `yaml:"query"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document database, job status store,
// uploaded blobs, and the persisted vector index.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	StatusPath      string `yaml:"status_path"`
	BlobPath        string `yaml:"blob_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	// SigningSecret signs blob preview URLs. Generated per install; URLs stop
	// verifying if it changes.
	SigningSecret string `yaml:"signing_secret"`
}

// AIConfig holds the OpenAI-compatible collaborator endpoints and models.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimensions     int    `yaml:"dimensions"`
	ChatHost       string `yaml:"chat_host"`
	ChatModel      string `yaml:"chat_model"`
}

// PipelineConfig holds processing settings for the document pipeline.
type PipelineConfig struct {
	Workers       int `yaml:"workers"`
	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	MaxTextLength int `yaml:"max_text_length"`
	PreviewLength int `yaml:"preview_length"`
	TagLimit      int `yaml:"tag_limit"`
	FrequencyTagK int `yaml:"frequency_tag_k"`
}

// QueryConfig holds retrieval settings.
type QueryConfig struct {
	TopChunks        int `yaml:"top_chunks"`
	SignedURLMinutes int `yaml:"signed_url_minutes"`
	SearchTextPrefix int `yaml:"search_text_prefix"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.StatusPath = expandPath(cfg.Storage.StatusPath, configDir)
	cfg.Storage.BlobPath = expandPath(cfg.Storage.BlobPath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
