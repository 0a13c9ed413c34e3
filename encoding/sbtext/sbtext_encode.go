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

// Package sbtext renders a compiled schema as canonical text.
//
// The output lists every declaration in source order followed by every
// oneof, with the computed widths, static sizes, offsets, and tags:
//
//	schema "pixel"
//	enum Color {
//		width = 1
//		red = 0
//	}
//	sequence Pixel {
//		static_size = 4
//		color: Color @ 0
//		extra: oneof Pixel::extra @ 1
//	}
//	oneof Pixel::extra {
//		name: str = 0
//	}
package sbtext

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

func Encode(s *schema.Schema) string {
	var buf strings.Builder
	EncodeTo(s, &buf)
	return buf.String()
}

func EncodeTo(s *schema.Schema, w io.Writer) error {
	e := encoder{w: w, schema: s}
	e.visitSchema()
	return e.err
}

type encoder struct {
	w      io.Writer
	schema *schema.Schema
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) visitSchema() {
	e.linef("schema %s", strconv.Quote(e.schema.Name()))
	for _, id := range e.schema.Decls() {
		switch t := e.schema.Type(id).(type) {
		case *schema.Enum:
			e.visitEnum(t)
		case *schema.Sequence:
			e.visitSequence(t)
		}
	}
	for _, oneof := range e.schema.OneOfs() {
		e.visitOneOf(oneof)
	}
}

func (e *encoder) visitEnum(t *schema.Enum) {
	e.linef("enum %s {", t.Name())
	e.indent += 1
	e.linef("width = %d", t.Width())
	for _, v := range t.Variants() {
		e.linef("%s = %d", v.Name, v.Value)
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitSequence(t *schema.Sequence) {
	e.linef("sequence %s {", t.Name())
	e.indent += 1
	e.linef("static_size = %d", t.StaticSize())
	for _, f := range t.Fields() {
		e.linef("%s: %s @ %d", f.Name, e.schema.TypeName(f.Type), f.Offset)
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitOneOf(t *schema.OneOf) {
	e.linef("oneof %s {", strings.Join(t.Path(), "::"))
	e.indent += 1
	for _, v := range t.Variants() {
		e.linef("%s: %s = %d", v.Name, e.schema.TypeName(v.Type), v.Tag)
	}
	e.indent -= 1
	e.line("}")
}
