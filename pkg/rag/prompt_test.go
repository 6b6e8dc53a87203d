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
)

func TestBuildPrompt_WithContexts(t *testing.T) {
	got := BuildPrompt("社内規定は？", []string{"規定その一。", "規定その二。"})
	want := "ユーザー質問:\n社内規定は？\n\n参照コンテキスト:\n- 規定その一。\n\n- 規定その二。"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildPrompt_NoContexts(t *testing.T) {
	got := BuildPrompt("質問", nil)
	want := "ユーザー質問:\n質問\n\n参照コンテキスト:\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSystemInstruction_DeclinesWithUnknown(t *testing.T) {
	if !strings.Contains(SystemInstruction, "「不明」") {
		t.Error("system instruction must direct the model to answer 「不明」 when unsure")
	}
	if !strings.Contains(SystemInstruction, "コンテキスト") {
		t.Error("system instruction must reference the supplied context")
	}
}
