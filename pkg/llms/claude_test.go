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

package llms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/kotoba/pkg/bedrock"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *ClaudeGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := bedrock.NewClient(bedrock.Config{
		Endpoint: srv.URL,
		APIKey:   "test-key",
	})
	require.NoError(t, err)

	gen, err := NewClaudeGenerator(client, ClaudeConfig{})
	require.NoError(t, err)
	return gen
}

func TestGenerate_RequestShape(t *testing.T) {
	var captured map[string]any
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.True(t, strings.Contains(r.URL.Path, "/invoke"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "回答です。"}},
		})
	})

	answer, err := gen.Generate(context.Background(), "システム指示", "ユーザー質問")
	require.NoError(t, err)
	assert.Equal(t, "回答です。", answer)

	assert.Equal(t, "bedrock-2023-05-31", captured["anthropic_version"])
	assert.Equal(t, float64(1024), captured["max_tokens"])
	assert.Equal(t, 0.2, captured["temperature"])
	assert.Equal(t, "システム指示", captured["system"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	content := msg["content"].([]any)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	assert.Equal(t, "ユーザー質問", block["text"])
}

func TestGenerate_JoinsTextBlocks(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "一段落目。"},
				{"type": "tool_use", "id": "x"},
				{"type": "text", "text": "二段落目。"},
			},
		})
	})

	answer, err := gen.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "一段落目。\n二段落目。", answer)
}

func TestGenerate_NoTextBlocks(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	})

	answer, err := gen.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestGenerate_APIErrorSurfaces(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "throttled"})
	})

	_, err := gen.Generate(context.Background(), "s", "u")
	var apiErr *bedrock.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestNewClaudeGenerator_Defaults(t *testing.T) {
	client, err := bedrock.NewClient(bedrock.Config{Endpoint: "http://localhost", APIKey: "k"})
	require.NoError(t, err)

	gen, err := NewClaudeGenerator(client, ClaudeConfig{})
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", gen.Model())
}
