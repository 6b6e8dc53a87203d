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
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitChunks_Empty(t *testing.T) {
	if chunks := SplitChunks("", 100); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := SplitChunks("   \n\n  ", 100); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplitChunks_SingleSentence(t *testing.T) {
	chunks := SplitChunks("これはテストです。", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "これはテストです。" {
		t.Errorf("unexpected chunk content: %q", chunks[0])
	}
}

func TestSplitChunks_SentenceBoundaries(t *testing.T) {
	// Three sentences, budget fits only one at a time.
	text := "これは一文目です。これは二文目です！これは三文目ですか？"
	chunks := SplitChunks(text, 12)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "これは一文目です。" {
		t.Errorf("chunk 0: got %q", chunks[0])
	}
	if chunks[1] != "これは二文目です！" {
		t.Errorf("chunk 1: got %q", chunks[1])
	}
	if chunks[2] != "これは三文目ですか？" {
		t.Errorf("chunk 2: got %q", chunks[2])
	}
}

func TestSplitChunks_MergesUnderBudget(t *testing.T) {
	text := "一文目。二文目。三文目。"
	chunks := SplitChunks(text, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 merged chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "一文目。二文目。三文目。" {
		t.Errorf("unexpected merged chunk: %q", chunks[0])
	}
}

func TestSplitChunks_BudgetRespected(t *testing.T) {
	var sentences []string
	for i := 0; i < 50; i++ {
		sentences = append(sentences, "これは少し長めのテスト用の文章です。")
	}
	text := strings.Join(sentences, "")

	maxChars := 100
	chunks := SplitChunks(text, maxChars)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > maxChars {
			t.Errorf("chunk %d exceeds budget: %d runes", i, n)
		}
	}
}

func TestSplitChunks_OversizedSentenceKept(t *testing.T) {
	// A single sentence beyond the budget must survive as one chunk.
	long := strings.Repeat("あ", 50) + "。"
	chunks := SplitChunks(long, 10)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 oversized chunk, got %d", len(chunks))
	}
	if chunks[0] != long {
		t.Errorf("oversized sentence was altered")
	}
}

func TestSplitChunks_LineBreaksSeparateSentences(t *testing.T) {
	text := "見出しのような行\n本文の一文目です。\n\n本文の二文目です。"
	chunks := SplitChunks(text, 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "見出しのような行本文の一文目です。本文の二文目です。"
	if chunks[0] != want {
		t.Errorf("got %q, want %q", chunks[0], want)
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	parts := splitSentences("完結した文。末尾の断片")
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %v", len(parts), parts)
	}
	if parts[0] != "完結した文。" {
		t.Errorf("part 0: got %q", parts[0])
	}
	if parts[1] != "末尾の断片" {
		t.Errorf("part 1: got %q", parts[1])
	}
}
