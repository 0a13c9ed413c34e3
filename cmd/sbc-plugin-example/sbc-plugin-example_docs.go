// Copyright (c) 2024 Zach Champion
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Command sbc-plugin-example is a generator plugin that renders a schema as
// Markdown. Built with TinyGo it becomes sbc-gen-docs.wasm:
//
//	tinygo build -o sbc-gen-docs.wasm -target=wasi ./cmd/sbc-plugin-example
//	sbc -l sbc-gen-docs.wasm docs pixel.sb
//
// Built with the standard toolchain it reads a schema file and prints the
// Markdown to stdout.
package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

const generatorName = "docs"

func renderDocs(s *schema.Schema) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Schema `%s`\n", s.Name())

	for _, id := range s.Decls() {
		switch t := s.Type(id).(type) {
		case *schema.Enum:
			fmt.Fprintf(&buf, "\n## enum `%s`\n\n", t.Name())
			fmt.Fprintf(&buf, "Encoded as a %d-byte unsigned integer.\n\n", t.Width())
			buf.WriteString("| Variant | Value |\n|---|---|\n")
			for _, v := range t.Variants() {
				fmt.Fprintf(&buf, "| `%s` | %d |\n", v.Name, v.Value)
			}
		case *schema.Sequence:
			fmt.Fprintf(&buf, "\n## sequence `%s`\n\n", t.Name())
			fmt.Fprintf(&buf, "Static size: %d bytes.\n", t.StaticSize())
			if len(t.Fields()) == 0 {
				break
			}
			buf.WriteString("\n| Field | Type | Offset |\n|---|---|---|\n")
			for _, f := range t.Fields() {
				fmt.Fprintf(&buf, "| `%s` | `%s` | %d |\n", f.Name, s.TypeName(f.Type), f.Offset)
			}
		}
	}

	for _, o := range s.OneOfs() {
		fmt.Fprintf(&buf, "\n## oneof `%s`\n\n", strings.Join(o.Path(), "::"))
		buf.WriteString("| Variant | Type | Tag |\n|---|---|---|\n")
		for _, v := range o.Variants() {
			fmt.Fprintf(&buf, "| `%s` | `%s` | %d |\n", v.Name, s.TypeName(v.Type), v.Tag)
		}
	}
	return buf.Bytes()
}

func outputName(fileName string) string {
	if fileName == "" {
		fileName = "schema"
	}
	return fileName + ".md"
}
