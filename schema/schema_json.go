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
	"encoding/json"
	"fmt"
)

type jsonType struct {
	Kind      string            `json:"kind"`
	Primitive string            `json:"primitive,omitempty"`
	Elem      *TypeID           `json:"elem,omitempty"`
	Name      string            `json:"name,omitempty"`
	Width     uint8             `json:"width,omitempty"`
	Size      uint16            `json:"size,omitempty"`
	Path      []string          `json:"path,omitempty"`
	Values    []jsonEnumVariant `json:"values,omitempty"`
	Fields    []jsonField       `json:"fields,omitempty"`
	Variants  []jsonVariant     `json:"variants,omitempty"`
}

type jsonEnumVariant struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

type jsonField struct {
	Name   string `json:"name"`
	Offset uint16 `json:"offset"`
	Type   TypeID `json:"type"`
}

type jsonVariant struct {
	Name string `json:"name"`
	Tag  uint8  `json:"tag"`
	Type TypeID `json:"type"`
}

type jsonSchema struct {
	Name  string     `json:"name"`
	Types []jsonType `json:"types"`
	Decls []TypeID   `json:"decls"`
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	out := jsonSchema{
		Name:  s.name,
		Types: make([]jsonType, 0, len(s.types)),
		Decls: s.decls,
	}
	for _, t := range s.types {
		jt := jsonType{Kind: t.Kind().String()}
		switch t := t.(type) {
		case *Primitive:
			jt.Primitive = t.kind.String()
		case *String:
		case *List:
			elem := t.elem
			jt.Elem = &elem
		case *Enum:
			jt.Name = t.name
			jt.Width = t.width
			for _, v := range t.variants {
				jt.Values = append(jt.Values, jsonEnumVariant(v))
			}
		case *Sequence:
			jt.Name = t.name
			jt.Size = t.size
			for _, f := range t.fields {
				jt.Fields = append(jt.Fields, jsonField(f))
			}
		case *OneOf:
			jt.Path = t.path
			for _, v := range t.variants {
				jt.Variants = append(jt.Variants, jsonVariant(v))
			}
		}
		out.Types = append(out.Types, jt)
	}
	return json.Marshal(out)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var in jsonSchema
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	decoded := &Schema{
		name:   in.Name,
		types:  make([]Type, 0, len(in.Types)),
		byName: make(map[string]TypeID),
	}
	numTypes := TypeID(len(in.Types))
	checkRef := func(id TypeID) error {
		if id >= numTypes {
			return fmt.Errorf("schema: type reference %d out of range", id)
		}
		return nil
	}

	for ii, jt := range in.Types {
		id := TypeID(ii)
		switch jt.Kind {
		case "primitive":
			kind, ok := ParsePrimitive(jt.Primitive)
			if !ok {
				return fmt.Errorf("schema: unknown primitive %q", jt.Primitive)
			}
			decoded.types = append(decoded.types, &Primitive{kind: kind})
		case "string":
			decoded.types = append(decoded.types, &String{})
		case "list":
			if jt.Elem == nil {
				return fmt.Errorf("schema: list type %d has no element type", id)
			}
			if err := checkRef(*jt.Elem); err != nil {
				return err
			}
			decoded.types = append(decoded.types, &List{elem: *jt.Elem})
		case "enum":
			t := &Enum{id: id, name: jt.Name, width: jt.Width}
			for _, v := range jt.Values {
				t.variants = append(t.variants, EnumVariant(v))
			}
			if want := EnumWidth(t.MaxValue()); t.width != want {
				return fmt.Errorf("schema: enum %q has width %d, want %d", t.name, t.width, want)
			}
			decoded.types = append(decoded.types, t)
		case "sequence":
			t := &Sequence{id: id, name: jt.Name, size: jt.Size}
			for _, f := range jt.Fields {
				if err := checkRef(f.Type); err != nil {
					return err
				}
				t.fields = append(t.fields, Field(f))
			}
			decoded.types = append(decoded.types, t)
		case "oneof":
			t := &OneOf{id: id, path: jt.Path}
			for _, v := range jt.Variants {
				if err := checkRef(v.Type); err != nil {
					return err
				}
				t.variants = append(t.variants, Variant(v))
			}
			decoded.types = append(decoded.types, t)
			decoded.oneofs = append(decoded.oneofs, id)
		default:
			return fmt.Errorf("schema: unknown type kind %q", jt.Kind)
		}
	}

	for _, id := range in.Decls {
		if err := checkRef(id); err != nil {
			return err
		}
		var name string
		switch t := decoded.types[id].(type) {
		case *Enum:
			name = t.name
		case *Sequence:
			name = t.name
		default:
			return fmt.Errorf("schema: declaration %d is a %s", id, t.Kind())
		}
		if _, dup := decoded.byName[name]; dup {
			return fmt.Errorf("schema: duplicate declaration %q", name)
		}
		decoded.byName[name] = id
		decoded.decls = append(decoded.decls, id)
	}

	*s = *decoded
	return nil
}
