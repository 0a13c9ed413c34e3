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

package gogen

import (
	"bytes"
	"fmt"
	"go/format"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

// Emit returns the gofmt-formatted Go source for s. It fails with a
// *NameConflictError if two schema names map to the same Go identifier.
func Emit(s *schema.Schema, opts Options) ([]byte, error) {
	if err := checkIdentifiers(s); err != nil {
		return nil, err
	}
	e := &emitter{schema: s}
	e.line("// Code generated by sbc. DO NOT EDIT.")
	if opts.Source != "" {
		e.line("// source: %s", opts.Source)
	}
	e.line("")
	e.line("package %s", opts.Package)

	if len(s.Decls()) > 0 {
		e.line("")
		e.line("import (")
		if len(s.Enums()) > 0 {
			e.line("\t\"strconv\"")
			e.line("")
		}
		e.line("\tsimplebuffers %q", opts.Runtime)
		e.line(")")
	}

	for _, id := range s.Decls() {
		switch t := s.Type(id).(type) {
		case *schema.Enum:
			e.emitEnum(t)
		case *schema.Sequence:
			e.emitSequence(t)
		}
	}
	for _, oneof := range s.OneOfs() {
		e.emitOneOf(oneof)
	}

	out, err := format.Source(e.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

type emitter struct {
	schema *schema.Schema
	buf    bytes.Buffer
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// Type names {{{

func primitiveGoType(kind schema.PrimitiveKind) string {
	switch kind {
	case schema.F32:
		return "float32"
	case schema.F64:
		return "float64"
	case schema.Bool:
		return "bool"
	}
	bits := kind.String()[1:]
	if kind.Signed() {
		return "int" + bits
	}
	return "uint" + bits
}

// primitiveSuffix names the runtime's Put/Read functions and value writers
// for a primitive.
func primitiveSuffix(kind schema.PrimitiveKind) string {
	if kind == schema.Bool {
		return "Bool"
	}
	name := kind.String()
	return string(name[0]-'a'+'A') + name[1:]
}

func widthSuffix(width uint8) string {
	return fmt.Sprintf("U%d", int(width)*8)
}

func widthGoType(width uint8) string {
	return fmt.Sprintf("uint%d", int(width)*8)
}

func (e *emitter) writerName(t schema.Type) string {
	switch t := t.(type) {
	case *schema.Sequence:
		return exportedName(t.Name()) + "Writer"
	case *schema.OneOf:
		return pathName(t.Path()) + "Writer"
	}
	panic(fmt.Sprintf("no writer name for %T", t))
}

func (e *emitter) readerName(t schema.Type) string {
	switch t := t.(type) {
	case *schema.Sequence:
		return exportedName(t.Name()) + "Reader"
	case *schema.OneOf:
		return pathName(t.Path()) + "Reader"
	}
	panic(fmt.Sprintf("no reader name for %T", t))
}

// fieldType is the Go type of a writer struct field.
func (e *emitter) fieldType(id schema.TypeID) string {
	switch t := e.schema.Type(id).(type) {
	case *schema.Primitive:
		return primitiveGoType(t.PrimitiveKind())
	case *schema.String:
		return "string"
	case *schema.Enum:
		return exportedName(t.Name())
	case *schema.Sequence:
		return e.writerName(t)
	default:
		return e.writerType(id)
	}
}

// writerType is a Go type implementing simplebuffers.Writer for a value of
// type id.
func (e *emitter) writerType(id schema.TypeID) string {
	switch t := e.schema.Type(id).(type) {
	case *schema.Primitive:
		return "simplebuffers." + primitiveSuffix(t.PrimitiveKind())
	case *schema.String:
		return "simplebuffers.String"
	case *schema.Enum:
		return exportedName(t.Name())
	case *schema.Sequence:
		return "*" + e.writerName(t)
	case *schema.OneOf:
		return e.writerName(t)
	case *schema.List:
		if prim, ok := e.schema.Type(t.Elem()).(*schema.Primitive); ok {
			switch prim.PrimitiveKind() {
			case schema.U8:
				return "simplebuffers.Bytes"
			case schema.I8:
				return "simplebuffers.Int8s"
			}
		}
		return "simplebuffers.List[" + e.writerType(t.Elem()) + "]"
	}
	panic("unreachable")
}

// readerType is the Go type returned when reading a value of type id.
func (e *emitter) readerType(id schema.TypeID) string {
	switch t := e.schema.Type(id).(type) {
	case *schema.Primitive:
		return primitiveGoType(t.PrimitiveKind())
	case *schema.String:
		return "string"
	case *schema.Enum:
		return exportedName(t.Name())
	case *schema.Sequence, *schema.OneOf:
		return e.readerName(t)
	case *schema.List:
		return "simplebuffers.ListReader[" + e.readerType(t.Elem()) + "]"
	}
	panic("unreachable")
}

// }}}

// Read expressions {{{

// readExpr decodes a value of type id whose static section is at addr.
func (e *emitter) readExpr(id schema.TypeID, buf, addr string) string {
	switch t := e.schema.Type(id).(type) {
	case *schema.Primitive:
		return fmt.Sprintf("simplebuffers.Read%s(%s, %s)", primitiveSuffix(t.PrimitiveKind()), buf, addr)
	case *schema.String:
		return fmt.Sprintf("simplebuffers.ReadString(%s, %s)", buf, addr)
	case *schema.Enum:
		return fmt.Sprintf(
			"%s(simplebuffers.Read%s(%s, %s))",
			exportedName(t.Name()), widthSuffix(t.Width()), buf, addr,
		)
	case *schema.Sequence, *schema.OneOf:
		return fmt.Sprintf("%s{buf: %s, addr: %s}", e.readerName(t), buf, addr)
	case *schema.List:
		elemSize := e.schema.Type(t.Elem()).StaticSize()
		return fmt.Sprintf(
			"simplebuffers.NewListReader(%s, %s, %d, %s)",
			buf, addr, elemSize, e.decoderFunc(t.Elem()),
		)
	}
	panic("unreachable")
}

// decoderFunc is a func(buf []byte, addr int) T for a list element.
func (e *emitter) decoderFunc(id schema.TypeID) string {
	switch t := e.schema.Type(id).(type) {
	case *schema.Primitive:
		return "simplebuffers.Read" + primitiveSuffix(t.PrimitiveKind())
	case *schema.String:
		return "simplebuffers.ReadString"
	}
	return fmt.Sprintf(
		"func(buf []byte, addr int) %s {\n\treturn %s\n}",
		e.readerType(id), e.readExpr(id, "buf", "addr"),
	)
}

// }}}

func (e *emitter) emitEnum(t *schema.Enum) {
	name := exportedName(t.Name())
	goType := widthGoType(t.Width())

	e.line("")
	e.line("type %s %s", name, goType)
	e.line("")
	e.line("const (")
	for _, v := range t.Variants() {
		e.line("\t%s_%s %s = %d", name, exportedName(v.Name), name, v.Value)
	}
	e.line(")")

	e.line("")
	e.line("func (%s) StaticSize() uint16 { return %d }", name, t.Width())
	e.line("")
	e.line("func (v %s) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {", name)
	e.line("\tsimplebuffers.Put%s(buf, dest, %s(v))", widthSuffix(t.Width()), goType)
	e.line("\treturn dynCursor, nil")
	e.line("}")

	e.line("")
	e.line("func (v %s) String() string {", name)
	e.line("\tswitch v {")
	for _, v := range t.Variants() {
		e.line("\tcase %s_%s:", name, exportedName(v.Name))
		e.line("\t\treturn %q", v.Name)
	}
	e.line("\t}")
	e.line("\treturn %q + strconv.FormatUint(uint64(v), 10) + \")\"", name+"(")
	e.line("}")
}

func fieldAddr(base string, offset uint16) string {
	if offset == 0 {
		return base
	}
	return fmt.Sprintf("%s+%d", base, offset)
}

func (e *emitter) emitSequence(t *schema.Sequence) {
	writer := e.writerName(t)
	reader := e.readerName(t)

	e.line("")
	e.line("type %s struct {", writer)
	for _, field := range t.Fields() {
		e.line("\t%s %s", exportedName(field.Name), e.fieldType(field.Type))
	}
	e.line("}")

	e.line("")
	e.line("func (*%s) StaticSize() uint16 { return %d }", writer, t.StaticSize())
	e.line("")
	e.line("func (w *%s) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {", writer)
	declaredErr := false
	for _, field := range t.Fields() {
		goName := exportedName(field.Name)
		dest := fieldAddr("dest", field.Offset)
		switch ft := e.schema.Type(field.Type).(type) {
		case *schema.Primitive:
			e.line("\tsimplebuffers.Put%s(buf, %s, w.%s)", primitiveSuffix(ft.PrimitiveKind()), dest, goName)
			continue
		case *schema.Enum:
			e.line("\tsimplebuffers.Put%s(buf, %s, %s(w.%s))",
				widthSuffix(ft.Width()), dest, widthGoType(ft.Width()), goName)
			continue
		}
		if !declaredErr {
			e.line("\tvar err error")
			declaredErr = true
		}
		value := "w." + goName
		if _, ok := e.schema.Type(field.Type).(*schema.String); ok {
			value = "simplebuffers.String(" + value + ")"
		}
		e.line("\tdynCursor, err = %s.WriteComponent(buf, %s, dynCursor)", value, dest)
		e.line("\tif err != nil {")
		e.line("\t\treturn 0, err")
		e.line("\t}")
	}
	e.line("\treturn dynCursor, nil")
	e.line("}")

	e.line("")
	e.line("// Write encodes w at the start of buf and returns the number of bytes used.")
	e.line("func (w *%s) Write(buf []byte) (int, error) {", writer)
	e.line("\treturn simplebuffers.Write(w, buf)")
	e.line("}")

	e.line("")
	e.line("type %s struct {", reader)
	e.line("\tbuf  []byte")
	e.line("\taddr int")
	e.line("}")
	e.line("")
	e.line("// New%s returns a reader for the index'th %s in buf.", reader, t.Name())
	e.line("func New%s(buf []byte, index int) %s {", reader, reader)
	e.line("\treturn %s{buf: buf, addr: simplebuffers.Addr(0, index, %d)}", reader, t.StaticSize())
	e.line("}")
	e.line("")
	e.line("func (r %s) Addr() int { return r.addr }", reader)
	for _, field := range t.Fields() {
		e.line("")
		e.line("func (r %s) %s() %s {", reader, exportedName(field.Name), e.readerType(field.Type))
		e.line("\treturn %s", e.readExpr(field.Type, "r.buf", fieldAddr("r.addr", field.Offset)))
		e.line("}")
	}
}

func (e *emitter) emitOneOf(t *schema.OneOf) {
	name := pathName(t.Path())
	writer := e.writerName(t)
	reader := e.readerName(t)

	e.line("")
	e.line("const (")
	for _, v := range t.Variants() {
		e.line("\t%s_%s uint8 = %d", name, exportedName(v.Name), v.Tag)
	}
	e.line(")")

	e.line("")
	e.line("type %s struct {", writer)
	e.line("\tsimplebuffers.OneOf")
	e.line("}")
	for _, v := range t.Variants() {
		variant := exportedName(v.Name)
		paramType := e.writerType(v.Type)
		value := "v"
		switch vt := e.schema.Type(v.Type).(type) {
		case *schema.Primitive:
			paramType = primitiveGoType(vt.PrimitiveKind())
			value = fmt.Sprintf("simplebuffers.%s(v)", primitiveSuffix(vt.PrimitiveKind()))
		case *schema.String:
			paramType = "string"
			value = "simplebuffers.String(v)"
		}
		e.line("")
		e.line("func New%s%s(v %s) %s {", writer, variant, paramType, writer)
		e.line("\treturn %s{simplebuffers.OneOf{Tag: %s_%s, Value: %s}}", writer, name, variant, value)
		e.line("}")
	}

	e.line("")
	e.line("type %s struct {", reader)
	e.line("\tbuf  []byte")
	e.line("\taddr int")
	e.line("}")
	e.line("")
	e.line("func (r %s) Addr() int { return r.addr }", reader)
	e.line("")
	e.line("func (r %s) Tag() uint8 {", reader)
	e.line("\treturn simplebuffers.ReadU8(r.buf, r.addr)")
	e.line("}")
	for _, v := range t.Variants() {
		variant := exportedName(v.Name)
		e.line("")
		e.line("// As%s returns the %s variant, or false if another variant is selected.", variant, v.Name)
		e.line("func (r %s) As%s() (v %s, ok bool) {", reader, variant, e.readerType(v.Type))
		e.line("\ttag, addr := simplebuffers.OneOfHeader(r.buf, r.addr)")
		e.line("\tif tag != %s_%s {", name, variant)
		e.line("\t\treturn v, false")
		e.line("\t}")
		e.line("\treturn %s, true", e.readExpr(v.Type, "r.buf", "addr"))
		e.line("}")
	}
}
