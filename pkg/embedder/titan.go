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

// Package embedder converts text into embedding vectors using Amazon
// Titan Text Embeddings on Bedrock.
package embedder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/kotoba/pkg/bedrock"
	"github.com/kadirpekel/kotoba/pkg/rag"
)

// TitanConfig configures the Titan embedder.
type TitanConfig struct {
	// Model is the Bedrock model id (default: amazon.titan-embed-text-v2:0).
	Model string

	// Dimension of embeddings (default: 1024, the Titan v2 default).
	Dimension int

	// MaxTextLen is the per-text sanitization limit in runes
	// (default: 8000).
	MaxTextLen int
}

// TitanEmbedder implements embedding calls against Amazon Titan Text
// Embeddings v2. Inputs are sanitized first; the returned matrix is
// aligned 1:1 with the post-sanitization input order.
type TitanEmbedder struct {
	client     *bedrock.Client
	model      string
	dimension  int
	maxTextLen int
}

// titanRequest is the Titan invoke payload. The API distinguishes a
// single text from a list: exactly one of the two fields is set. Sending
// a 1-element inputTextList breaks the call, so the shaping here is part
// of the contract.
type titanRequest struct {
	InputText     string   `json:"inputText,omitempty"`
	InputTextList []string `json:"inputTextList,omitempty"`
}

// titanResponse covers both recognized response shapes.
type titanResponse struct {
	Embedding     []float32 `json:"embedding,omitempty"`
	EmbeddingList []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"embeddingList,omitempty"`
}

// NewTitanEmbedder creates a new Titan embedder on the given Bedrock client.
func NewTitanEmbedder(client *bedrock.Client, cfg TitanConfig) (*TitanEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock client is required")
	}

	model := cfg.Model
	if model == "" {
		model = "amazon.titan-embed-text-v2:0"
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = 1024
	}

	maxTextLen := cfg.MaxTextLen
	if maxTextLen == 0 {
		maxTextLen = rag.DefaultSanitizeLimit
	}

	return &TitanEmbedder{
		client:     client,
		model:      model,
		dimension:  dimension,
		maxTextLen: maxTextLen,
	}, nil
}

// Embed converts one text to a vector embedding.
func (e *TitanEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("received empty embedding from Titan")
	}
	return embeddings[0], nil
}

// EmbedBatch converts texts to vector embeddings in one call. Texts are
// sanitized and re-chunked first (rag.SanitizeTexts); rag.ErrEmptyInput is
// returned when nothing usable remains.
func (e *TitanEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	texts, err := rag.SanitizeTexts(texts, e.maxTextLen)
	if err != nil {
		return nil, err
	}

	var req titanRequest
	if len(texts) == 1 {
		req.InputText = texts[0]
	} else {
		req.InputTextList = texts
	}

	body, err := e.client.InvokeModel(ctx, e.model, req)
	if err != nil {
		return nil, fmt.Errorf("titan embedding call failed: %w", err)
	}

	var resp titanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, rag.NewShapeError("embedder", "response is not valid JSON", err)
	}

	switch {
	case resp.Embedding != nil:
		return [][]float32{resp.Embedding}, nil
	case resp.EmbeddingList != nil:
		vectors := make([][]float32, 0, len(resp.EmbeddingList))
		for _, item := range resp.EmbeddingList {
			vectors = append(vectors, item.Embedding)
		}
		return vectors, nil
	default:
		return nil, rag.NewShapeError("embedder",
			"response contains neither embedding nor embeddingList", nil)
	}
}

// Dimension returns the embedding vector dimension.
func (e *TitanEmbedder) Dimension() int {
	return e.dimension
}

// Model returns the model id being used.
func (e *TitanEmbedder) Model() string {
	return e.model
}

// Ensure TitanEmbedder implements the pipeline's embedder contract.
var _ rag.Embedder = (*TitanEmbedder)(nil)
