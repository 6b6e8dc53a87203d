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
	"math"
	"sort"
	"sync"
)

// MemoryProvider is an in-process vector store using brute-force cosine
// similarity. It backs tests and zero-dependency local runs.
type MemoryProvider struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	dimension int
	points    []Point
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		collections: make(map[string]*memCollection),
	}
}

// Name returns the provider name.
func (p *MemoryProvider) Name() string {
	return "memory"
}

// EnsureCollection creates the collection if absent. Re-ensuring an
// existing collection keeps its points.
func (p *MemoryProvider) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.collections[collection]; !ok {
		p.collections[collection] = &memCollection{dimension: dimension}
	}
	return nil
}

// Upsert appends all points in one batch.
func (p *MemoryProvider) Upsert(ctx context.Context, collection string, points []Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	coll, ok := p.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	for _, pt := range points {
		if len(pt.Vector) != coll.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(pt.Vector), coll.dimension)
		}
	}
	coll.points = append(coll.points, points...)
	return nil
}

// Search scores every stored point and returns the topK best hits.
func (p *MemoryProvider) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchHit, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	coll, ok := p.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	if topK <= 0 {
		topK = 5
	}

	hits := make([]SearchHit, 0, len(coll.points))
	for _, pt := range coll.points {
		hits = append(hits, SearchHit{
			Score:   cosine(pt.Vector, vector),
			Text:    pt.Payload.Text,
			DocID:   pt.Payload.DocID,
			ChunkID: pt.Payload.ChunkID,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteByDocID removes all points for the given doc_id. An unknown
// doc_id is a successful no-op.
func (p *MemoryProvider) DeleteByDocID(ctx context.Context, collection string, docID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	coll, ok := p.collections[collection]
	if !ok {
		return nil
	}
	kept := coll.points[:0]
	for _, pt := range coll.points {
		if pt.Payload.DocID != docID {
			kept = append(kept, pt)
		}
	}
	coll.points = kept
	return nil
}

// ListAll returns stored payloads up to limit.
func (p *MemoryProvider) ListAll(ctx context.Context, collection string, limit int) ([]Payload, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	coll, ok := p.collections[collection]
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	payloads := make([]Payload, 0, len(coll.points))
	for _, pt := range coll.points {
		if len(payloads) >= limit {
			break
		}
		if pt.Payload.DocID == "" {
			continue
		}
		payloads = append(payloads, pt.Payload)
	}
	return payloads, nil
}

// Close releases nothing; the provider is purely in-process.
func (p *MemoryProvider) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Ensure MemoryProvider implements Provider.
var _ Provider = (*MemoryProvider)(nil)
