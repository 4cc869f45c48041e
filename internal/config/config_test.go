package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults wrong: %+v", cfg.Server)
	}
	if cfg.AI.Dimensions != 1536 {
		t.Errorf("dimensions=%d", cfg.AI.Dimensions)
	}
	if cfg.AI.ChatHost != cfg.AI.EmbeddingHost {
		t.Errorf("chat host should default to embedding host, got %q", cfg.AI.ChatHost)
	}
	if cfg.Pipeline.ChunkSize != 500 || cfg.Pipeline.ChunkOverlap != 50 {
		t.Errorf("chunk defaults wrong: %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Workers < 1 {
		t.Errorf("workers=%d", cfg.Pipeline.Workers)
	}
	if cfg.Query.TopChunks != 5 {
		t.Errorf("top_chunks=%d", cfg.Query.TopChunks)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
ai:
  embedding_host: http://embeddings.internal/v1
  chat_host: http://chat.internal/v1
  dimensions: 768
pipeline:
  workers: 4
  chunk_size: 256
  chunk_overlap: 32
query:
  top_chunks: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server=%+v", cfg.Server)
	}
	if cfg.AI.Dimensions != 768 {
		t.Errorf("dimensions=%d", cfg.AI.Dimensions)
	}
	if cfg.AI.ChatHost != "http://chat.internal/v1" {
		t.Errorf("chat_host=%q", cfg.AI.ChatHost)
	}
	if cfg.Pipeline.Workers != 4 || cfg.Pipeline.ChunkSize != 256 || cfg.Pipeline.ChunkOverlap != 32 {
		t.Errorf("pipeline=%+v", cfg.Pipeline)
	}
	if cfg.Query.TopChunks != 3 {
		t.Errorf("top_chunks=%d", cfg.Query.TopChunks)
	}
}

func TestLoadExpandsRelativePaths(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: ./data/db/documents.db
  blob_path: ./data/blobs
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if cfg.Storage.DatabasePath != filepath.Join(dir, "data/db/documents.db") {
		t.Errorf("database_path=%q", cfg.Storage.DatabasePath)
	}
	if cfg.Storage.BlobPath != filepath.Join(dir, "data/blobs") {
		t.Errorf("blob_path=%q", cfg.Storage.BlobPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
