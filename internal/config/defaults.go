package config

import "runtime"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/yomitori/data/db/documents.db"
	}
	if cfg.Storage.StatusPath == "" {
		cfg.Storage.StatusPath = "/usr/local/var/yomitori/data/status"
	}
	if cfg.Storage.BlobPath == "" {
		cfg.Storage.BlobPath = "/usr/local/var/yomitori/data/blobs"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/yomitori/data/indices/chunks.idx"
	}
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.Dimensions == 0 {
		cfg.AI.Dimensions = 1536
	}
	if cfg.AI.ChatHost == "" {
		cfg.AI.ChatHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.ChatModel == "" {
		cfg.AI.ChatModel = "gpt-4o-mini"
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = runtime.NumCPU() / 2
	}
	if cfg.Pipeline.Workers < 1 {
		cfg.Pipeline.Workers = 1
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = 500
	}
	if cfg.Pipeline.ChunkOverlap == 0 {
		cfg.Pipeline.ChunkOverlap = 50
	}
	if cfg.Pipeline.MaxTextLength == 0 {
		cfg.Pipeline.MaxTextLength = 100000
	}
	if cfg.Pipeline.PreviewLength == 0 {
		cfg.Pipeline.PreviewLength = 20000
	}
	if cfg.Pipeline.TagLimit == 0 {
		cfg.Pipeline.TagLimit = 50
	}
	if cfg.Pipeline.FrequencyTagK == 0 {
		cfg.Pipeline.FrequencyTagK = 15
	}
	if cfg.Query.TopChunks == 0 {
		cfg.Query.TopChunks = 5
	}
	if cfg.Query.SignedURLMinutes == 0 {
		cfg.Query.SignedURLMinutes = 20
	}
	if cfg.Query.SearchTextPrefix == 0 {
		cfg.Query.SearchTextPrefix = 20000
	}
}
