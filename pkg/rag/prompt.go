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

// SystemInstruction directs the generation model to answer strictly from
// the supplied context, cite its grounding, and answer 「不明」 rather than
// guess when the context is insufficient.
const SystemInstruction = "あなたは日本語のアシスタントです。以下のコンテキストに厳密に基づき、" +
	"根拠を示しながら簡潔に回答してください。わからない場合は無理に推測せず「不明」と答えてください。" +
	"必要に応じて箇条書きで。"

// BuildPrompt assembles the user message for the generation model: the
// literal query followed by a bulleted block of the retrieved context
// texts in ranked order.
func BuildPrompt(query string, contexts []string) string {
	var b strings.Builder
	b.WriteString("ユーザー質問:\n")
	b.WriteString(query)
	b.WriteString("\n\n参照コンテキスト:\n")
	for i, c := range contexts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("- ")
		b.WriteString(c)
	}
	return b.String()
}
