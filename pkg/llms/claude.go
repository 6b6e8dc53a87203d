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

// Package llms implements the generation model boundary: Anthropic Claude
// invoked through Amazon Bedrock.
package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kadirpekel/kotoba/pkg/bedrock"
	"github.com/kadirpekel/kotoba/pkg/rag"
)

// anthropicVersion is the Bedrock payload version for Anthropic models.
const anthropicVersion = "bedrock-2023-05-31"

// ClaudeConfig configures the Claude generation client.
type ClaudeConfig struct {
	// Model is the Bedrock model id
	// (default: anthropic.claude-3-5-sonnet-20240620-v1:0).
	Model string

	// MaxTokens caps the generated output length (default: 1024).
	MaxTokens int

	// Temperature favors determinism over creativity (default: 0.2).
	Temperature float64
}

// ClaudeGenerator generates grounded answers with Claude on Bedrock.
type ClaudeGenerator struct {
	client      *bedrock.Client
	model       string
	maxTokens   int
	temperature float64
}

// claudeContent is one typed content block. Only "text" blocks contribute
// to the extracted answer.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// NewClaudeGenerator creates a new Claude generator on the given Bedrock
// client.
func NewClaudeGenerator(client *bedrock.Client, cfg ClaudeConfig) (*ClaudeGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock client is required")
	}

	model := cfg.Model
	if model == "" {
		model = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &ClaudeGenerator{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Generate sends the system instruction and user message to the model and
// returns the concatenated text content blocks, trimmed. An answer with no
// text blocks yields an empty string.
func (g *ClaudeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	req := claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        g.maxTokens,
		Temperature:      g.temperature,
		System:           system,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: []claudeContent{{Type: "text", Text: user}},
			},
		},
	}

	body, err := g.client.InvokeModel(ctx, g.model, req)
	if err != nil {
		return "", fmt.Errorf("claude generation call failed: %w", err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", rag.NewShapeError("generator", "response is not valid JSON", err)
	}

	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// Model returns the model id being used.
func (g *ClaudeGenerator) Model() string {
	return g.model
}

// Ensure ClaudeGenerator implements the pipeline's generator contract.
var _ rag.Generator = (*ClaudeGenerator)(nil)
