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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadDocID   = "doc_id"
	payloadChunkID = "chunk_id"
	payloadText    = "text"
)

// QdrantConfig configures the Qdrant vector provider.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`

	// Port is the Qdrant gRPC port (default: 6334).
	Port int `yaml:"port"`

	// APIKey for authenticated access (optional).
	APIKey string `yaml:"api_key,omitempty"`

	// UseTLS enables TLS connections.
	UseTLS bool `yaml:"use_tls,omitempty"`
}

// SetDefaults applies default values.
func (c *QdrantConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
}

// QdrantProvider implements Provider using the Qdrant vector database.
type QdrantProvider struct {
	client *qdrant.Client
	config QdrantConfig
}

// NewQdrantProvider creates a new Qdrant provider.
func NewQdrantProvider(cfg QdrantConfig) (*QdrantProvider, error) {
	cfg.SetDefaults()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &QdrantProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *QdrantProvider) Name() string {
	return "qdrant"
}

// EnsureCollection creates the collection with the given dimensionality and
// cosine distance if it does not exist yet. Concurrent creation of the same
// collection is tolerated.
func (p *QdrantProvider) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := p.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = p.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert writes all points in one batch.
func (p *QdrantProvider) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, pt := range points {
		payload, err := buildPayload(pt.Payload)
		if err != nil {
			return err
		}
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(pt.ID),
			Vectors: qdrant.NewVectors(pt.Vector...),
			Payload: payload,
		})
	}

	_, err := p.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns up to topK hits ordered by descending similarity score.
func (p *QdrantProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchHit, error) {
	searchRequest := &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	pointsClient := p.client.GetPointsClient()
	searchResult, err := pointsClient.Search(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	hits := make([]SearchHit, 0, len(searchResult.Result))
	for _, point := range searchResult.Result {
		payload, ok := decodePayload(point.Payload)
		if !ok {
			continue
		}
		hits = append(hits, SearchHit{
			Score:   point.Score,
			Text:    payload.Text,
			DocID:   payload.DocID,
			ChunkID: payload.ChunkID,
		})
	}
	return hits, nil
}

// DeleteByDocID removes all points whose payload doc_id matches docID.
// Deleting a doc_id with no points is a successful no-op.
func (p *QdrantProvider) DeleteByDocID(ctx context.Context, collection string, docID string) error {
	deletePoints := &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						{
							ConditionOneOf: &qdrant.Condition_Field{
								Field: &qdrant.FieldCondition{
									Key: payloadDocID,
									Match: &qdrant.Match{
										MatchValue: &qdrant.Match_Keyword{Keyword: docID},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	_, err := p.client.Delete(ctx, deletePoints)
	if err != nil {
		return fmt.Errorf("failed to delete points for doc %s: %w", docID, err)
	}
	return nil
}

// ListAll enumerates stored payloads up to limit. Points whose payload is
// missing a doc_id are skipped; the skipped count is logged rather than
// silently discarded so data-quality issues stay observable.
func (p *QdrantProvider) ListAll(ctx context.Context, collection string, limit int) ([]Payload, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	points, err := p.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	payloads := make([]Payload, 0, len(points))
	skipped := 0
	for _, point := range points {
		payload, ok := decodePayload(point.Payload)
		if !ok {
			skipped++
			continue
		}
		payloads = append(payloads, payload)
	}
	if skipped > 0 {
		slog.Warn("Skipped points with malformed payload",
			"collection", collection, "skipped", skipped)
	}
	return payloads, nil
}

// Close closes the Qdrant client.
func (p *QdrantProvider) Close() error {
	return p.client.Close()
}

// buildPayload converts a chunk payload to the Qdrant value map.
func buildPayload(payload Payload) (map[string]*qdrant.Value, error) {
	out := make(map[string]*qdrant.Value, 3)
	for key, value := range map[string]any{
		payloadDocID:   payload.DocID,
		payloadChunkID: int64(payload.ChunkID),
		payloadText:    payload.Text,
	} {
		val, err := qdrant.NewValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert payload value for key %s: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}

// decodePayload extracts the chunk payload from a Qdrant value map.
// Returns false when the payload lacks a doc_id.
func decodePayload(values map[string]*qdrant.Value) (Payload, bool) {
	var payload Payload
	if values == nil {
		return payload, false
	}

	if v, ok := values[payloadDocID]; ok {
		payload.DocID = v.GetStringValue()
	}
	if payload.DocID == "" {
		return payload, false
	}
	if v, ok := values[payloadChunkID]; ok {
		payload.ChunkID = int(v.GetIntegerValue())
	}
	if v, ok := values[payloadText]; ok {
		payload.Text = v.GetStringValue()
	}
	return payload, true
}

// Ensure QdrantProvider implements Provider.
var _ Provider = (*QdrantProvider)(nil)
