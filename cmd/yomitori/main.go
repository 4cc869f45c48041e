// Package main is the yomitori CLI entry point.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	aiopenai "github.com/hyperjump/yomitori/internal/ai/openai"
	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/config"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/extract"
	"github.com/hyperjump/yomitori/internal/pipeline"
	"github.com/hyperjump/yomitori/internal/query"
	"github.com/hyperjump/yomitori/internal/server"
	"github.com/hyperjump/yomitori/internal/status"
	"github.com/hyperjump/yomitori/internal/vector"
	"github.com/hyperjump/yomitori/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/yomitori/config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("yomitori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`yomitori - document processing and retrieval service

Usage:
  yomitori server [-config path] [-debug]   start the API server
  yomitori status <job-id> [-addr host:port] show a job's progress
  yomitori version                           print version
  yomitori help                              show this help`)
}

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	statusStore, err := status.Open(cfg.Storage.StatusPath, false, logger)
	if err != nil {
		logger.Fatal("Failed to open status store", zap.Error(err))
	}
	defer statusStore.Close()

	docs, err := docstore.Open(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer docs.Close()

	secret := cfg.Storage.SigningSecret
	if secret == "" {
		// Ephemeral secret: preview URLs stop verifying after a restart.
		secret = randomSecret()
		logger.Warn("no signing_secret configured, preview URLs will not survive restarts")
	}
	blobs, err := blob.NewDiskStore(cfg.Storage.BlobPath, secret)
	if err != nil {
		logger.Fatal("Failed to open blob store", zap.Error(err))
	}

	index, err := vector.NewMemoryIndex(cfg.AI.Dimensions)
	if err != nil {
		logger.Fatal("Failed to create vector index", zap.Error(err))
	}
	if err := index.Load(cfg.Storage.VectorIndexPath); err != nil {
		logger.Fatal("Failed to load vector index", zap.Error(err))
	}
	logger.Info("vector index loaded", zap.Int("chunks", index.Size()))

	embedder, err := aiopenai.NewEmbedder(cfg.AI.EmbeddingHost, cfg.AI.EmbeddingModel, cfg.AI.Dimensions, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	annotator, err := aiopenai.NewAnnotator(cfg.AI.ChatHost, cfg.AI.ChatModel, logger)
	if err != nil {
		logger.Fatal("Failed to create annotator", zap.Error(err))
	}
	completer, err := aiopenai.NewCompleter(cfg.AI.ChatHost, cfg.AI.ChatModel, logger)
	if err != nil {
		logger.Fatal("Failed to create completer", zap.Error(err))
	}

	worker := pipeline.NewWorker(statusStore, docs, blobs, extract.NewExtractor(nil),
		annotator, embedder, index, &cfg.Pipeline, logger)
	pl, err := pipeline.New(worker, cfg.Pipeline.Workers, logger)
	if err != nil {
		logger.Fatal("Failed to create pipeline", zap.Error(err))
	}
	defer pl.Release()

	qs := query.NewService(docs, index, embedder, completer, blobs, &cfg.Query, logger)
	srv := server.NewServer(pl, qs, statusStore, docs, blobs, &cfg.Server, &cfg.Query, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := index.Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Error("failed to save vector index", zap.Error(err))
	}
}

func runStatus() {
	args := os.Args[2:]
	if len(args) < 1 || args[0] == "" {
		fmt.Println("Usage: yomitori status <job-id> [-addr host:port]")
		os.Exit(1)
	}
	jobID := args[0]

	fs := flag.NewFlagSet("status", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8080", "server address")
	_ = fs.Parse(args[1:])

	resp, err := http.Get(fmt.Sprintf("http://%s/api/status/%s", *addr, jobID))
	if err != nil {
		fmt.Printf("Failed to reach server: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		fmt.Printf("Job %s not found\n", jobID)
		os.Exit(1)
	}

	var rec map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(out))
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
