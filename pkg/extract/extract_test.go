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
	"errors"
	"strings"
	"testing"
)

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.xlsx", "d.md", "e.markdown", "f.txt"} {
		if !Supported(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.exe", "b.png", "noext", "c.doc"} {
		if Supported(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}

func TestText_PlainText(t *testing.T) {
	out, err := Text("memo.txt", []byte("そのままのテキスト"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "そのままのテキスト" {
		t.Errorf("got %q", out)
	}
}

func TestText_Unsupported(t *testing.T) {
	_, err := Text("image.png", []byte{0x89, 0x50})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestText_Markdown(t *testing.T) {
	src := "# 見出し\n\nこれは**強調**された本文です。\n\n- 項目一\n- 項目二\n\n[リンク](https://example.com)も含みます。\n"
	out, err := Text("doc.md", []byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"見出し", "これは強調された本文です。", "項目一", "項目二", "リンクも含みます。"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, reject := range []string{"#", "**", "<", ">", "https://example.com"} {
		if strings.Contains(out, reject) {
			t.Errorf("output still contains markup %q:\n%s", reject, out)
		}
	}
}

func TestText_CorruptPDF(t *testing.T) {
	if _, err := Text("broken.pdf", []byte("not a pdf")); err == nil {
		t.Error("expected error for corrupt PDF")
	}
}

func TestText_CorruptDocx(t *testing.T) {
	if _, err := Text("broken.docx", []byte("not a zip")); err == nil {
		t.Error("expected error for corrupt DOCX")
	}
}

func TestText_CorruptXlsx(t *testing.T) {
	if _, err := Text("broken.xlsx", []byte("not a zip")); err == nil {
		t.Error("expected error for corrupt XLSX")
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags("<p>本文<br/>続き</p>")
	if got != "本文続き" {
		t.Errorf("got %q", got)
	}
}
