// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command kotoba serves a Japanese document question answering API:
// documents are chunked, embedded with Amazon Titan, stored in Qdrant,
// and questions are answered by Claude grounded on retrieved chunks.
//
// Usage:
//
//	kotoba serve --config config.yaml
//	kotoba validate --config config.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kadirpekel/kotoba/pkg/bedrock"
	"github.com/kadirpekel/kotoba/pkg/config"
	"github.com/kadirpekel/kotoba/pkg/embedder"
	"github.com/kadirpekel/kotoba/pkg/llms"
	"github.com/kadirpekel/kotoba/pkg/rag"
	"github.com/kadirpekel/kotoba/pkg/server"
	"github.com/kadirpekel/kotoba/pkg/vector"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP server."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFormat string `help:"Log format (text, json)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("kotoba version %s\n", version)
	return nil
}

// ValidateCmd loads and validates the configuration file.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if _, err := loadConfig(cli); err != nil {
		return err
	}
	fmt.Println("Configuration is valid")
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides config)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	initLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bedrockClient, err := bedrock.NewClient(bedrock.Config{
		Region:   cfg.Bedrock.Region,
		Endpoint: cfg.Bedrock.Endpoint,
		APIKey:   cfg.Bedrock.APIKey,
		Timeout:  time.Duration(cfg.Bedrock.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bedrock client: %w", err)
	}

	titan, err := embedder.NewTitanEmbedder(bedrockClient, embedder.TitanConfig{
		Model:      cfg.Bedrock.EmbedModel,
		Dimension:  cfg.RAG.Dimension,
		MaxTextLen: cfg.RAG.SanitizeLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	claude, err := llms.NewClaudeGenerator(bedrockClient, llms.ClaudeConfig{
		Model:       cfg.Bedrock.GenerateModel,
		MaxTokens:   cfg.Bedrock.MaxTokens,
		Temperature: cfg.Bedrock.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	provider, err := vector.NewProvider(&vector.ProviderConfig{
		Type: vector.ProviderType(cfg.VectorStore.Type),
		Qdrant: &vector.QdrantConfig{
			Host:   cfg.VectorStore.Host,
			Port:   cfg.VectorStore.Port,
			APIKey: cfg.VectorStore.APIKey,
			UseTLS: cfg.VectorStore.UseTLS,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create vector provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			slog.Warn("Failed to close vector provider", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service, err := rag.NewService(rag.ServiceConfig{
		Embedder:   titan,
		Provider:   provider,
		Generator:  claude,
		Collection: cfg.VectorStore.Collection,
		ChunkSize:  cfg.RAG.ChunkSize,
		TopK:       cfg.RAG.TopK,
		Metrics:    rag.NewMetrics(registry),
	})
	if err != nil {
		return fmt.Errorf("failed to create rag service: %w", err)
	}

	srv, err := server.New(service, server.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Gatherer: registry,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("kotoba started",
		"vector_store", provider.Name(),
		"collection", cfg.VectorStore.Collection,
		"embed_model", cfg.Bedrock.EmbedModel,
		"generate_model", cfg.Bedrock.GenerateModel,
	)

	select {
	case <-ctx.Done():
		slog.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func loadConfig(cli *CLI) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	// CLI flags win over file values.
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Logging.Format = cli.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("kotoba"),
		kong.Description("Japanese document RAG service on Amazon Bedrock and Qdrant."),
		kong.UsageOnError(),
	)

	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
