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

package extract

import (
	"html"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
)

// markdownText renders Markdown to HTML and strips the markup, which
// drops link targets and formatting syntax while keeping the prose.
func markdownText(data []byte) (string, error) {
	md := markdown.New(markdown.XHTMLOutput(true), markdown.Typographer(false))
	rendered := md.RenderToString(data)

	text := stripTags(rendered)
	text = html.UnescapeString(text)

	// Rendering leaves blank lines between blocks; collapse runs of them.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n"), nil
}
