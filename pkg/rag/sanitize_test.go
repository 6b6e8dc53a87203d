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
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeTexts_StripsControlCharacters(t *testing.T) {
	out, err := SanitizeTexts([]string{"前\x00中\x1f後"}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 text, got %d", len(out))
	}
	if out[0] != "前 中 後" {
		t.Errorf("got %q, want %q", out[0], "前 中 後")
	}
}

func TestSanitizeTexts_KeepsWhitespaceControls(t *testing.T) {
	out, err := SanitizeTexts([]string{"一行目\n二行目\tタブ"}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "一行目\n二行目\tタブ" {
		t.Errorf("newline or tab was stripped: %q", out[0])
	}
}

func TestSanitizeTexts_DropsEmpty(t *testing.T) {
	out, err := SanitizeTexts([]string{"", "   ", "残るテキスト", "\x00\x01"}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != "残るテキスト" {
		t.Errorf("expected only the surviving text, got %v", out)
	}
}

func TestSanitizeTexts_AllEmpty(t *testing.T) {
	_, err := SanitizeTexts([]string{"", "  ", "\x00"}, 100)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSanitizeTexts_HardSplit(t *testing.T) {
	long := strings.Repeat("あ", 25)
	out, err := SanitizeTexts([]string{long}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(out))
	}
	for i, s := range out {
		if n := utf8.RuneCountInString(s); n > 10 {
			t.Errorf("slice %d exceeds limit: %d runes", i, n)
		}
	}
	if strings.Join(out, "") != long {
		t.Errorf("hard split lost content")
	}
}

func TestSanitizeTexts_OrderPreserved(t *testing.T) {
	out, err := SanitizeTexts([]string{"一番目", "二番目", "三番目"}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"一番目", "二番目", "三番目"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, out[i], want[i])
		}
	}
}
