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

// Package vector provides the vector store gateway used by the RAG
// pipeline: collection management, point upserts, similarity search, and
// payload-filtered deletion.
package vector

import (
	"context"
	"fmt"
)

// DefaultListLimit caps how many points a listing enumerates.
const DefaultListLimit = 10000

// Payload is the metadata stored alongside every chunk vector.
// DocID identifies the parent document; ChunkID is the chunk's position
// within it (0-based); Text is the chunk content itself.
type Payload struct {
	DocID   string `json:"doc_id"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// Point is one stored vector plus its payload. ID is a freshly generated
// identifier with no semantic meaning; chunk identity lives in the payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// SearchHit is a single similarity search result, ranked by Score
// (higher is more similar under cosine distance).
type SearchHit struct {
	Score   float32 `json:"score"`
	Text    string  `json:"text"`
	DocID   string  `json:"doc_id"`
	ChunkID int     `json:"chunk_id"`
}

// Provider is the vector store gateway.
//
// EnsureCollection is idempotent and safe under concurrent re-checking:
// a duplicate creation attempt on an existing collection is a no-op.
// DeleteByDocID removes every point whose payload doc_id matches; deleting
// an unknown doc_id succeeds with zero affected points. ListAll skips
// points whose payload lacks a doc_id.
type Provider interface {
	Name() string
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchHit, error)
	DeleteByDocID(ctx context.Context, collection string, docID string) error
	ListAll(ctx context.Context, collection string, limit int) ([]Payload, error)
	Close() error
}

// ProviderType identifies a vector provider implementation.
type ProviderType string

const (
	// ProviderQdrant uses the Qdrant vector database over gRPC.
	ProviderQdrant ProviderType = "qdrant"

	// ProviderMemory uses an in-process brute-force store.
	// No external dependencies; intended for tests and local development.
	ProviderMemory ProviderType = "memory"
)

// ProviderConfig selects and configures the vector provider.
type ProviderConfig struct {
	// Type identifies which provider to create: "qdrant" or "memory".
	Type ProviderType `yaml:"type"`

	// Qdrant configuration (used when Type == "qdrant").
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SetDefaults applies default values.
func (c *ProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = ProviderQdrant
	}
	if c.Type == ProviderQdrant && c.Qdrant == nil {
		c.Qdrant = &QdrantConfig{}
	}
	if c.Qdrant != nil {
		c.Qdrant.SetDefaults()
	}
}

// Validate checks the configuration.
func (c *ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderQdrant:
		if c.Qdrant == nil {
			return fmt.Errorf("qdrant configuration is required")
		}
		if c.Qdrant.Host == "" {
			return fmt.Errorf("qdrant host is required")
		}
		return nil
	case ProviderMemory:
		return nil
	case "":
		return fmt.Errorf("provider type is required")
	default:
		return fmt.Errorf("unknown provider type: %q", c.Type)
	}
}

// NewProvider creates a vector provider from configuration.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	if cfg == nil {
		cfg = &ProviderConfig{}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case ProviderQdrant:
		return NewQdrantProvider(*cfg.Qdrant)
	case ProviderMemory:
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}
