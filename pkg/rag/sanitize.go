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

import "strings"

// DefaultSanitizeLimit is the hard per-text rune limit applied right before
// an embedding call. The Titan API rejects inputs beyond this size.
const DefaultSanitizeLimit = 8000

// SanitizeTexts prepares texts for an embedding call: ASCII control
// characters in 0x00-0x08, 0x0B-0x0C, and 0x0E-0x1F are replaced with a
// space (tab, newline, and CR stay), each text is trimmed, empties are
// dropped, and anything longer than maxLen runes is hard-split into
// consecutive maxLen slices with no sentence awareness.
//
// Input order is preserved, then slice order. Returns ErrEmptyInput when
// nothing usable survives.
func SanitizeTexts(texts []string, maxLen int) ([]string, error) {
	if maxLen <= 0 {
		maxLen = DefaultSanitizeLimit
	}

	var out []string
	for _, t := range texts {
		cleaned := strings.Map(stripControl, t)
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}

		runes := []rune(cleaned)
		for i := 0; i < len(runes); i += maxLen {
			end := i + maxLen
			if end > len(runes) {
				end = len(runes)
			}
			seg := strings.TrimSpace(string(runes[i:end]))
			if seg != "" {
				out = append(out, seg)
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyInput
	}
	return out, nil
}

func stripControl(r rune) rune {
	if r <= 0x08 || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F) {
		return ' '
	}
	return r
}
