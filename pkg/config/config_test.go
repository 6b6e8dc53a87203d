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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ap-northeast-1", cfg.Bedrock.Region)
	assert.Equal(t, "env-key", cfg.Bedrock.APIKey)
	assert.Equal(t, "amazon.titan-embed-text-v2:0", cfg.Bedrock.EmbedModel)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", cfg.Bedrock.GenerateModel)
	assert.Equal(t, 1024, cfg.Bedrock.MaxTokens)
	assert.Equal(t, 0.2, cfg.Bedrock.Temperature)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	assert.Equal(t, "docs_jp", cfg.VectorStore.Collection)
	assert.Equal(t, 1024, cfg.RAG.Dimension)
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 8000, cfg.RAG.SanitizeLimit)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "env-key")
	path := writeConfig(t, `
server:
  port: 9090
vector_store:
  type: memory
  collection: my_docs
rag:
  top_k: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "my_docs", cfg.VectorStore.Collection)
	assert.Equal(t, 3, cfg.RAG.TopK)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "env-key")
	t.Setenv("TEST_QDRANT_HOST", "qdrant.internal")
	path := writeConfig(t, `
vector_store:
  host: ${TEST_QDRANT_HOST}
  port: ${TEST_QDRANT_PORT:-6334}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Host)
	assert.Equal(t, 6334, cfg.VectorStore.Port)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_InvalidVectorStoreType(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "env-key")
	path := writeConfig(t, "vector_store:\n  type: cassandra\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("AWS_BEARER_TOKEN_BEDROCK", "env-key")
	path := writeConfig(t, "server: [broken")

	_, err := Load(path)
	require.Error(t, err)
}
