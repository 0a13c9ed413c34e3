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

package schema

import (
	"fmt"
	"slices"
)

// Builder assembles a [Schema]. Named declarations and oneofs are declared
// first, so that types may refer to each other before their layouts are
// known, and then filled in.
type Builder struct {
	schema     *Schema
	primitives map[PrimitiveKind]TypeID
	lists      map[TypeID]TypeID
	str        *TypeID
	filled     map[TypeID]bool
	built      bool
}

func NewBuilder(name string) *Builder {
	return &Builder{
		schema: &Schema{
			name:   name,
			byName: make(map[string]TypeID),
		},
		primitives: make(map[PrimitiveKind]TypeID),
		lists:      make(map[TypeID]TypeID),
		filled:     make(map[TypeID]bool),
	}
}

func (b *Builder) push(t Type) TypeID {
	if b.built {
		panic("schema.Builder: modified after Build")
	}
	id := TypeID(len(b.schema.types))
	b.schema.types = append(b.schema.types, t)
	return id
}

func (b *Builder) Type(id TypeID) Type {
	return b.schema.types[id]
}

func (b *Builder) Primitive(kind PrimitiveKind) TypeID {
	if id, ok := b.primitives[kind]; ok {
		return id
	}
	id := b.push(&Primitive{kind: kind})
	b.primitives[kind] = id
	return id
}

func (b *Builder) Str() TypeID {
	if b.str != nil {
		return *b.str
	}
	id := b.push(&String{})
	b.str = &id
	return id
}

func (b *Builder) List(elem TypeID) TypeID {
	if id, ok := b.lists[elem]; ok {
		return id
	}
	id := b.push(&List{elem: elem})
	b.lists[elem] = id
	return id
}

func (b *Builder) declare(name string, t Type) (TypeID, error) {
	if _, dup := b.schema.byName[name]; dup {
		return 0, fmt.Errorf("schema: duplicate declaration %q", name)
	}
	id := b.push(t)
	b.schema.byName[name] = id
	b.schema.decls = append(b.schema.decls, id)
	return id, nil
}

func (b *Builder) DeclareEnum(name string) (TypeID, error) {
	t := &Enum{name: name}
	id, err := b.declare(name, t)
	t.id = id
	return id, err
}

func (b *Builder) DeclareSequence(name string) (TypeID, error) {
	t := &Sequence{name: name}
	id, err := b.declare(name, t)
	t.id = id
	return id, err
}

func (b *Builder) DeclareOneOf(path []string) TypeID {
	t := &OneOf{path: slices.Clone(path)}
	id := b.push(t)
	t.id = id
	b.schema.oneofs = append(b.schema.oneofs, id)
	return id
}

// SetEnum sets the variants of a declared enum. The backing width is
// derived from the largest value.
func (b *Builder) SetEnum(id TypeID, variants []EnumVariant) {
	t := b.schema.types[id].(*Enum)
	t.variants = slices.Clone(variants)
	t.width = EnumWidth(t.MaxValue())
	b.filled[id] = true
}

// SetSequence sets the fields of a declared sequence. Offsets must already
// be assigned.
func (b *Builder) SetSequence(id TypeID, fields []Field, size uint16) {
	t := b.schema.types[id].(*Sequence)
	t.fields = slices.Clone(fields)
	t.size = size
	b.filled[id] = true
}

// SetOneOf sets the variants of a declared oneof. Tags must already be
// assigned.
func (b *Builder) SetOneOf(id TypeID, variants []Variant) {
	t := b.schema.types[id].(*OneOf)
	t.variants = slices.Clone(variants)
	b.filled[id] = true
}

// Build freezes the schema. Every declared type must have been filled in.
func (b *Builder) Build() (*Schema, error) {
	for id, t := range b.schema.types {
		switch t.(type) {
		case *Enum, *Sequence, *OneOf:
			if !b.filled[TypeID(id)] {
				return nil, fmt.Errorf("schema: type %d (%s) was declared but never set", id, t.Kind())
			}
		}
	}
	b.built = true
	return b.schema, nil
}
