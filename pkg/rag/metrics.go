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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks pipeline counters and latencies. A nil *Metrics is valid
// and records nothing, so wiring metrics stays optional.
type Metrics struct {
	documentsIngested prometheus.Counter
	documentsSkipped  prometheus.Counter
	pointsTotal       prometheus.Counter
	embedDuration     prometheus.Histogram
	searchDuration    prometheus.Histogram
	generateDuration  prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documentsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kotoba",
			Name:      "documents_ingested_total",
			Help:      "Documents successfully chunked and embedded.",
		}),
		documentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kotoba",
			Name:      "documents_skipped_total",
			Help:      "Documents skipped because no usable text remained.",
		}),
		pointsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kotoba",
			Name:      "points_upserted_total",
			Help:      "Chunk points written to the vector store.",
		}),
		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kotoba",
			Name:      "embed_duration_seconds",
			Help:      "Latency of embedding batches.",
			Buckets:   prometheus.DefBuckets,
		}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kotoba",
			Name:      "search_duration_seconds",
			Help:      "Latency of vector similarity searches.",
			Buckets:   prometheus.DefBuckets,
		}),
		generateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kotoba",
			Name:      "generate_duration_seconds",
			Help:      "Latency of answer generation calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.documentsIngested,
		m.documentsSkipped,
		m.pointsTotal,
		m.embedDuration,
		m.searchDuration,
		m.generateDuration,
	)
	return m
}

func (m *Metrics) documentIngested() {
	if m == nil {
		return
	}
	m.documentsIngested.Inc()
}

func (m *Metrics) documentSkipped() {
	if m == nil {
		return
	}
	m.documentsSkipped.Inc()
}

func (m *Metrics) pointsUpserted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsTotal.Add(float64(n))
}

func (m *Metrics) embedObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.embedDuration.Observe(d.Seconds())
}

func (m *Metrics) searchObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(d.Seconds())
}

func (m *Metrics) generateObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.generateDuration.Observe(d.Seconds())
}
