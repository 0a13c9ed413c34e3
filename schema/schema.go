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

// Package schema is the compiled form of a SimpleBuffers schema.
//
// A [Schema] owns an arena of [Type] values addressed by [TypeID]. Named
// declarations (enums and sequences) each have one ID, and every field or
// variant refers to its type by ID. A Schema is immutable once built. Slices
// returned by accessors share the schema's storage and must not be modified;
// they are clipped, so appending to them copies.
package schema

import (
	"fmt"
	"slices"
	"strings"
)

type TypeID uint32

type Kind uint8

const (
	KindPrimitive Kind = iota
	KindString
	KindList
	KindEnum
	KindSequence
	KindOneOf
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindEnum:
		return "enum"
	case KindSequence:
		return "sequence"
	case KindOneOf:
		return "oneof"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is one of [*Primitive], [*String], [*List], [*Enum], [*Sequence],
// or [*OneOf].
type Type interface {
	Kind() Kind
	StaticSize() uint16
	isType()
}

type PrimitiveKind uint8

const (
	U8 PrimitiveKind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
)

var primitiveNames = [...]string{
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	F32:  "f32",
	F64:  "f64",
	Bool: "bool",
}

func (k PrimitiveKind) String() string {
	if int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
}

// Size is the encoded width of the primitive in bytes.
func (k PrimitiveKind) Size() uint16 {
	switch k {
	case U8, I8, Bool:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	default:
		return 8
	}
}

func (k PrimitiveKind) Signed() bool {
	return k >= I8 && k <= I64
}

func (k PrimitiveKind) Float() bool {
	return k == F32 || k == F64
}

// ParsePrimitive looks up a builtin scalar type by its schema name.
func ParsePrimitive(name string) (PrimitiveKind, bool) {
	for ii, primName := range primitiveNames {
		if primName == name {
			return PrimitiveKind(ii), true
		}
	}
	return 0, false
}

// StringTypeName is the schema name of the builtin string type.
const StringTypeName = "str"

// IsBuiltin reports whether name is reserved for a builtin type.
func IsBuiltin(name string) bool {
	if name == StringTypeName {
		return true
	}
	_, ok := ParsePrimitive(name)
	return ok
}

type Primitive struct {
	kind PrimitiveKind
}

func (*Primitive) isType()                      {}
func (*Primitive) Kind() Kind                   { return KindPrimitive }
func (t *Primitive) StaticSize() uint16         { return t.kind.Size() }
func (t *Primitive) PrimitiveKind() PrimitiveKind { return t.kind }

type String struct{}

func (*String) isType()            {}
func (*String) Kind() Kind         { return KindString }
func (*String) StaticSize() uint16 { return 2 }

type List struct {
	elem TypeID
}

func (*List) isType()            {}
func (*List) Kind() Kind         { return KindList }
func (*List) StaticSize() uint16 { return 4 }
func (t *List) Elem() TypeID     { return t.elem }

type EnumVariant struct {
	Name  string
	Value uint64
}

type Enum struct {
	id       TypeID
	name     string
	width    uint8
	variants []EnumVariant
}

func (*Enum) isType()              {}
func (*Enum) Kind() Kind           { return KindEnum }
func (t *Enum) StaticSize() uint16 { return uint16(t.width) }
func (t *Enum) ID() TypeID         { return t.id }
func (t *Enum) Name() string       { return t.name }

// Width is the size of the backing integer in bytes: 1, 2, 4, or 8.
func (t *Enum) Width() uint8 {
	return t.width
}

func (t *Enum) Variants() []EnumVariant {
	return slices.Clip(t.variants)
}

func (t *Enum) MaxValue() uint64 {
	var max uint64
	for _, v := range t.variants {
		if v.Value > max {
			max = v.Value
		}
	}
	return max
}

// EnumWidth is the smallest backing width (in bytes) able to hold max.
func EnumWidth(max uint64) uint8 {
	switch {
	case max < 1<<8:
		return 1
	case max < 1<<16:
		return 2
	case max < 1<<32:
		return 4
	default:
		return 8
	}
}

type Field struct {
	Name   string
	Offset uint16
	Type   TypeID
}

type Sequence struct {
	id     TypeID
	name   string
	size   uint16
	fields []Field
}

func (*Sequence) isType()              {}
func (*Sequence) Kind() Kind           { return KindSequence }
func (t *Sequence) StaticSize() uint16 { return t.size }
func (t *Sequence) ID() TypeID         { return t.id }
func (t *Sequence) Name() string       { return t.name }
func (t *Sequence) Fields() []Field    { return slices.Clip(t.fields) }

func (t *Sequence) Field(name string) (Field, bool) {
	for _, field := range t.fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

type Variant struct {
	Name string
	Tag  uint8
	Type TypeID
}

// OneOf is an inline tagged union. Its path names the declaration and
// fields that lead to it, for example ["Request", "payload"].
type OneOf struct {
	id       TypeID
	path     []string
	variants []Variant
}

func (*OneOf) isType()              {}
func (*OneOf) Kind() Kind           { return KindOneOf }
func (*OneOf) StaticSize() uint16   { return 3 }
func (t *OneOf) ID() TypeID         { return t.id }
func (t *OneOf) Path() []string     { return slices.Clip(t.path) }
func (t *OneOf) Variants() []Variant { return slices.Clip(t.variants) }

func (t *OneOf) Variant(name string) (Variant, bool) {
	for _, v := range t.variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func (t *OneOf) VariantByTag(tag uint8) (Variant, bool) {
	if int(tag) < len(t.variants) {
		return t.variants[tag], true
	}
	return Variant{}, false
}

type Schema struct {
	name   string
	types  []Type
	decls  []TypeID
	oneofs []TypeID
	byName map[string]TypeID
}

// Name is the stem of the schema's source file.
func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) Type(id TypeID) Type {
	return s.types[id]
}

func (s *Schema) NumTypes() int {
	return len(s.types)
}

func (s *Schema) Lookup(name string) (TypeID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Decls returns the IDs of named declarations in source order.
func (s *Schema) Decls() []TypeID {
	return slices.Clip(s.decls)
}

func (s *Schema) Enums() []*Enum {
	var out []*Enum
	for _, id := range s.decls {
		if t, ok := s.types[id].(*Enum); ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *Schema) Sequences() []*Sequence {
	var out []*Sequence
	for _, id := range s.decls {
		if t, ok := s.types[id].(*Sequence); ok {
			out = append(out, t)
		}
	}
	return out
}

// OneOfs returns every oneof in the schema, outer oneofs before the
// oneofs nested in their variants.
func (s *Schema) OneOfs() []*OneOf {
	out := make([]*OneOf, 0, len(s.oneofs))
	for _, id := range s.oneofs {
		out = append(out, s.types[id].(*OneOf))
	}
	return out
}

// TypeName renders a type reference the way it is written in a schema.
func (s *Schema) TypeName(id TypeID) string {
	switch t := s.types[id].(type) {
	case *Primitive:
		return t.kind.String()
	case *String:
		return StringTypeName
	case *List:
		return "[" + s.TypeName(t.elem) + "]"
	case *Enum:
		return t.name
	case *Sequence:
		return t.name
	case *OneOf:
		return "oneof " + strings.Join(t.path, "::")
	default:
		panic(fmt.Sprintf("unknown schema type %T", t))
	}
}
