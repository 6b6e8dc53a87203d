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

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/kotoba/pkg/vector"
)

// DefaultTopK is the number of context chunks retrieved per question.
const DefaultTopK = 5

// Embedder converts texts into embedding vectors. Implementations
// sanitize their inputs and return rows aligned with the sanitized input
// order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Generator produces an answer from a system instruction and user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ServiceConfig configures the RAG service.
type ServiceConfig struct {
	// Embedder converts chunks and queries to vectors (required).
	Embedder Embedder

	// Provider is the vector store gateway (required).
	Provider vector.Provider

	// Generator answers questions from retrieved context (required).
	Generator Generator

	// Collection is the vector collection name (default: docs_jp).
	Collection string

	// ChunkSize is the ingestion chunk budget in runes (default: 800).
	ChunkSize int

	// TopK is the default number of retrieved chunks (default: 5).
	TopK int

	// Metrics records pipeline counters and durations (optional).
	Metrics *Metrics
}

// SetDefaults applies default values.
func (c *ServiceConfig) SetDefaults() {
	if c.Collection == "" {
		c.Collection = "docs_jp"
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
}

// Validate checks the configuration.
func (c *ServiceConfig) Validate() error {
	if c.Embedder == nil {
		return fmt.Errorf("embedder is required")
	}
	if c.Provider == nil {
		return fmt.Errorf("vector provider is required")
	}
	if c.Generator == nil {
		return fmt.Errorf("generator is required")
	}
	return nil
}

// Service orchestrates ingestion and retrieval-augmented answering.
// All operations are synchronous chains of external calls with no retries;
// a failure anywhere propagates to the caller, who reissues the request.
type Service struct {
	embedder   Embedder
	provider   vector.Provider
	generator  Generator
	collection string
	chunkSize  int
	topK       int
	metrics    *Metrics
}

// DocumentInput is one document submitted for ingestion. ID is optional;
// a fresh UUID is generated when absent.
type DocumentInput struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// IngestResult reports how many chunk points were written.
type IngestResult struct {
	IndexedPoints int `json:"indexed_points"`
}

// AnswerResult carries the generated answer together with the raw ranked
// hits so callers can show provenance.
type AnswerResult struct {
	Answer   string             `json:"answer"`
	Contexts []vector.SearchHit `json:"contexts"`
}

// ChunkInfo is one stored chunk in a document listing.
type ChunkInfo struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// NewService creates the RAG service from its collaborators.
func NewService(cfg ServiceConfig) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		embedder:   cfg.Embedder,
		provider:   cfg.Provider,
		generator:  cfg.Generator,
		collection: cfg.Collection,
		chunkSize:  cfg.ChunkSize,
		topK:       cfg.TopK,
		metrics:    cfg.Metrics,
	}, nil
}

// Ingest chunks, embeds, and upserts the given documents. Documents with
// empty or whitespace-only text are skipped. All points across all
// documents are written in one batched upsert; a failed embedding call
// aborts the whole ingestion with nothing written.
func (s *Service) Ingest(ctx context.Context, docs []DocumentInput) (*IngestResult, error) {
	if err := s.provider.EnsureCollection(ctx, s.collection, s.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	var points []vector.Point
	for _, doc := range docs {
		docID := doc.ID
		if docID == "" {
			docID = uuid.NewString()
		}
		if strings.TrimSpace(doc.Text) == "" {
			s.metrics.documentSkipped()
			slog.Debug("Skipping empty document", "doc_id", docID)
			continue
		}

		chunks := SplitChunks(doc.Text, s.chunkSize)
		if len(chunks) == 0 {
			s.metrics.documentSkipped()
			continue
		}

		start := time.Now()
		vectors, err := s.embedder.EmbedBatch(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to embed document %s: %w", docID, err)
		}
		s.metrics.embedObserved(time.Since(start))

		// Pair positionally; sanitization inside the embedder can only
		// change the count for abnormal input that bypassed chunking.
		n := len(chunks)
		if len(vectors) < n {
			n = len(vectors)
		}
		for i := 0; i < n; i++ {
			points = append(points, vector.Point{
				ID:     uuid.NewString(),
				Vector: vectors[i],
				Payload: vector.Payload{
					DocID:   docID,
					ChunkID: i,
					Text:    chunks[i],
				},
			})
		}
		s.metrics.documentIngested()
	}

	if len(points) > 0 {
		if err := s.provider.Upsert(ctx, s.collection, points); err != nil {
			return nil, fmt.Errorf("failed to upsert points: %w", err)
		}
	}
	s.metrics.pointsUpserted(len(points))

	slog.Info("Ingested documents", "documents", len(docs), "points", len(points))
	return &IngestResult{IndexedPoints: len(points)}, nil
}

// Search embeds the query and returns the topK nearest chunks.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]vector.SearchHit, error) {
	if err := s.provider.EnsureCollection(ctx, s.collection, s.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	if topK <= 0 {
		topK = s.topK
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	start := time.Now()
	hits, err := s.provider.Search(ctx, s.collection, qvec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	s.metrics.searchObserved(time.Since(start))

	return hits, nil
}

// Answer retrieves the topK most relevant chunks for the query and asks
// the generation model for a grounded answer.
func (s *Service) Answer(ctx context.Context, query string, topK int) (*AnswerResult, error) {
	hits, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, 0, len(hits))
	for _, h := range hits {
		contexts = append(contexts, h.Text)
	}

	start := time.Now()
	answer, err := s.generator.Generate(ctx, SystemInstruction, BuildPrompt(query, contexts))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	s.metrics.generateObserved(time.Since(start))

	return &AnswerResult{Answer: answer, Contexts: hits}, nil
}

// Delete removes every stored chunk of the given document. Deleting an
// unknown doc_id is a successful no-op.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.provider.DeleteByDocID(ctx, s.collection, docID); err != nil {
		return err
	}
	slog.Info("Deleted document", "doc_id", docID)
	return nil
}

// Reingest replaces a document's stored chunks with chunks of new text
// under the same doc_id.
//
// The delete and the write are separate store operations: a concurrent
// reader can observe a transient empty state for this doc_id between them.
func (s *Service) Reingest(ctx context.Context, docID, text string) (*IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if err := s.Delete(ctx, docID); err != nil {
		return nil, fmt.Errorf("failed to delete previous chunks: %w", err)
	}
	return s.Ingest(ctx, []DocumentInput{{ID: docID, Text: text}})
}

// ListDocuments groups all stored chunks by document id, ordered by
// chunk_id within each document.
func (s *Service) ListDocuments(ctx context.Context) (map[string][]ChunkInfo, error) {
	payloads, err := s.provider.ListAll(ctx, s.collection, vector.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}

	docs := make(map[string][]ChunkInfo)
	for _, p := range payloads {
		docs[p.DocID] = append(docs[p.DocID], ChunkInfo{ChunkID: p.ChunkID, Text: p.Text})
	}
	for _, chunks := range docs {
		sort.Slice(chunks, func(i, j int) bool {
			return chunks[i].ChunkID < chunks[j].ChunkID
		})
	}
	return docs, nil
}
