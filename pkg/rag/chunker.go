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

// Package rag implements the ingestion and retrieval-answer pipeline for
// Japanese-language documents: sentence-aware chunking, embedding-input
// sanitization, prompt assembly, and the orchestration that ties the
// embedder, vector store, and generation model together.
package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the chunk budget in runes used during ingestion.
// Sized well below the Titan embedding input limit so that one chunk is
// always a single embedding call input.
const DefaultChunkSize = 800

// SplitChunks splits text into sentence-respecting chunks of at most
// maxChars runes. Lines are processed in order; within a line, sentences
// end at 。, ！, or ？ with the punctuation kept on the preceding fragment.
// Sentences are merged into a chunk until the budget would be exceeded.
//
// A single sentence longer than maxChars is emitted as one oversized chunk;
// SanitizeTexts is the final safety net before the embedding call.
// Empty or whitespace-only input yields no chunks.
func SplitChunks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}

	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentences = append(sentences, splitSentences(line)...)
	}

	var chunks []string
	var buf strings.Builder
	bufLen := 0 // rune count of buf

	for _, sent := range sentences {
		sentLen := utf8.RuneCountInString(sent)
		if bufLen+sentLen+1 <= maxChars {
			buf.WriteString(sent)
			bufLen += sentLen
			continue
		}
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
		buf.WriteString(sent)
		bufLen = sentLen
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

// splitSentences splits one line into sentence fragments, keeping the
// sentence-final punctuation attached to its fragment.
func splitSentences(line string) []string {
	var parts []string
	var b strings.Builder

	for _, r := range line {
		b.WriteRune(r)
		if r == '。' || r == '！' || r == '？' {
			if s := strings.TrimSpace(b.String()); s != "" {
				parts = append(parts, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		parts = append(parts, s)
	}

	return parts
}
