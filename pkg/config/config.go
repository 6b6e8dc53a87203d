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

// Package config loads the service configuration from YAML with
// environment variable expansion, layered over .env files.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Bedrock     BedrockConfig     `yaml:"bedrock"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	RAG         RAGConfig         `yaml:"rag"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BedrockConfig configures the Bedrock runtime clients.
type BedrockConfig struct {
	Region         string  `yaml:"region"`
	Endpoint       string  `yaml:"endpoint"`
	APIKey         string  `yaml:"api_key"`
	EmbedModel     string  `yaml:"embed_model"`
	GenerateModel  string  `yaml:"generate_model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// VectorStoreConfig configures the vector store gateway.
type VectorStoreConfig struct {
	// Type selects the provider: "qdrant" or "memory".
	Type       string `yaml:"type"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
}

// RAGConfig configures the retrieval pipeline.
type RAGConfig struct {
	Dimension     int `yaml:"dimension"`
	ChunkSize     int `yaml:"chunk_size"`
	SanitizeLimit int `yaml:"sanitize_limit"`
	TopK          int `yaml:"top_k"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Bedrock.Region == "" {
		c.Bedrock.Region = "ap-northeast-1"
	}
	if c.Bedrock.APIKey == "" {
		c.Bedrock.APIKey = os.Getenv("AWS_BEARER_TOKEN_BEDROCK")
	}
	if c.Bedrock.EmbedModel == "" {
		c.Bedrock.EmbedModel = "amazon.titan-embed-text-v2:0"
	}
	if c.Bedrock.GenerateModel == "" {
		c.Bedrock.GenerateModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
	if c.Bedrock.MaxTokens == 0 {
		c.Bedrock.MaxTokens = 1024
	}
	if c.Bedrock.Temperature == 0 {
		c.Bedrock.Temperature = 0.2
	}
	if c.Bedrock.TimeoutSeconds == 0 {
		c.Bedrock.TimeoutSeconds = 60
	}

	if c.VectorStore.Type == "" {
		c.VectorStore.Type = "qdrant"
	}
	if c.VectorStore.Host == "" {
		c.VectorStore.Host = "localhost"
	}
	if c.VectorStore.Port == 0 {
		c.VectorStore.Port = 6334
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = "docs_jp"
	}

	if c.RAG.Dimension == 0 {
		c.RAG.Dimension = 1024
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 800
	}
	if c.RAG.SanitizeLimit == 0 {
		c.RAG.SanitizeLimit = 8000
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 5
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Bedrock.APIKey == "" {
		return fmt.Errorf("bedrock api_key is required (or set AWS_BEARER_TOKEN_BEDROCK)")
	}
	switch c.VectorStore.Type {
	case "qdrant", "memory":
	default:
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	if c.RAG.Dimension <= 0 {
		return fmt.Errorf("rag dimension must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Load reads the YAML file at path, expands ${VAR} references from the
// environment, applies defaults, and validates. An empty path yields a
// default configuration built purely from the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envVarPatterns = struct {
	withDefault *regexp.Regexp
	braced      *regexp.Regexp
}{
	withDefault: regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`),
	braced:      regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`),
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references.
// Unbraced $VAR is left alone so YAML content with dollar signs survives.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	s = envVarPatterns.withDefault.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.withDefault.FindStringSubmatch(match)
		if len(parts) == 3 {
			if val := os.Getenv(parts[1]); val != "" {
				return val
			}
			return parts[2]
		}
		return match
	})

	s = envVarPatterns.braced.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPatterns.braced.FindStringSubmatch(match)
		if len(parts) == 2 {
			return os.Getenv(parts[1])
		}
		return match
	})

	return s
}
