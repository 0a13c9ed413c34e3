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

package sbbin

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	simplebuffers "github.com/ZachDaChampion/simple-buffers"
	"github.com/ZachDaChampion/simple-buffers/schema"
)

// NewWriter builds a writer that encodes value as type id.
func NewWriter(s *schema.Schema, id schema.TypeID, value any) (simplebuffers.Writer, error) {
	w, _, err := build(s, id, value)
	return w, err
}

// Size returns the exact number of bytes needed to encode value as type id.
func Size(s *schema.Schema, id schema.TypeID, value any) (int, error) {
	w, dynSize, err := build(s, id, value)
	if err != nil {
		return 0, err
	}
	return int(w.StaticSize()) + dynSize, nil
}

// Encode encodes value as type id into a buffer of exactly the needed size.
func Encode(s *schema.Schema, id schema.TypeID, value any) ([]byte, error) {
	w, dynSize, err := build(s, id, value)
	if err != nil {
		return nil, err
	}
	size := int(w.StaticSize()) + dynSize
	if size > simplebuffers.MaxBufferSize {
		return nil, fmt.Errorf(
			"sbbin: encoded size %d exceeds maximum %d: %w",
			size, simplebuffers.MaxBufferSize, simplebuffers.ErrInsufficientCapacity,
		)
	}
	buf := make([]byte, size)
	n, err := simplebuffers.Write(w, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// build returns a writer for value and the size of its dynamic payloads.
func build(s *schema.Schema, id schema.TypeID, value any) (simplebuffers.Writer, int, error) {
	switch t := s.Type(id).(type) {
	case *schema.Primitive:
		w, err := primitiveWriter(t.PrimitiveKind(), value)
		if err != nil {
			return nil, 0, fmt.Errorf("%w (%s)", err, s.TypeName(id))
		}
		return w, 0, nil
	case *schema.Enum:
		return buildEnum(s, t, value)
	case *schema.String:
		str, ok := value.(string)
		if !ok {
			return nil, 0, typeMismatch(s, id, value)
		}
		if strings.IndexByte(str, 0) >= 0 {
			return nil, 0, fmt.Errorf("%w: string contains NUL", ErrTypeMismatch)
		}
		return simplebuffers.String(str), len(str) + 1, nil
	case *schema.List:
		return buildList(s, id, t, value)
	case *schema.Sequence:
		return buildSequence(s, t, value)
	case *schema.OneOf:
		return buildOneOf(s, t, value)
	default:
		panic(fmt.Sprintf("unknown schema type %T", t))
	}
}

func primitiveWriter(kind schema.PrimitiveKind, value any) (simplebuffers.Writer, error) {
	var ok bool
	var w simplebuffers.Writer
	switch kind {
	case schema.U8:
		var n uint64
		n, ok = uintValue(value, math.MaxUint8)
		w = simplebuffers.U8(n)
	case schema.U16:
		var n uint64
		n, ok = uintValue(value, math.MaxUint16)
		w = simplebuffers.U16(n)
	case schema.U32:
		var n uint64
		n, ok = uintValue(value, math.MaxUint32)
		w = simplebuffers.U32(n)
	case schema.U64:
		var n uint64
		n, ok = uintValue(value, math.MaxUint64)
		w = simplebuffers.U64(n)
	case schema.I8:
		var n int64
		n, ok = intValue(value, math.MinInt8, math.MaxInt8)
		w = simplebuffers.I8(n)
	case schema.I16:
		var n int64
		n, ok = intValue(value, math.MinInt16, math.MaxInt16)
		w = simplebuffers.I16(n)
	case schema.I32:
		var n int64
		n, ok = intValue(value, math.MinInt32, math.MaxInt32)
		w = simplebuffers.I32(n)
	case schema.I64:
		var n int64
		n, ok = intValue(value, math.MinInt64, math.MaxInt64)
		w = simplebuffers.I64(n)
	case schema.F32:
		var f float64
		f, ok = floatValue(value)
		w = simplebuffers.F32(f)
	case schema.F64:
		var f float64
		f, ok = floatValue(value)
		w = simplebuffers.F64(f)
	case schema.Bool:
		var b bool
		b, ok = value.(bool)
		w = simplebuffers.Bool(b)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v (%T) is not a valid %s", ErrTypeMismatch, value, value, kind)
	}
	return w, nil
}

func buildEnum(s *schema.Schema, t *schema.Enum, value any) (simplebuffers.Writer, int, error) {
	var n uint64
	found := false
	if name, ok := value.(string); ok {
		for _, v := range t.Variants() {
			if v.Name == name {
				n, found = v.Value, true
				break
			}
		}
	} else if num, ok := uintValue(value, math.MaxUint64); ok {
		for _, v := range t.Variants() {
			if v.Value == num {
				n, found = num, true
				break
			}
		}
	}
	if !found {
		return nil, 0, fmt.Errorf("%w: %v is not a variant of enum %s", ErrTypeMismatch, value, t.Name())
	}
	switch t.Width() {
	case 1:
		return simplebuffers.U8(n), 0, nil
	case 2:
		return simplebuffers.U16(n), 0, nil
	case 4:
		return simplebuffers.U32(n), 0, nil
	default:
		return simplebuffers.U64(n), 0, nil
	}
}

func buildList(
	s *schema.Schema,
	id schema.TypeID,
	t *schema.List,
	value any,
) (simplebuffers.Writer, int, error) {
	if raw, ok := value.([]byte); ok {
		if prim, ok := s.Type(t.Elem()).(*schema.Primitive); ok && prim.PrimitiveKind() == schema.U8 {
			if len(raw) > simplebuffers.MaxListLen {
				return nil, 0, simplebuffers.ErrListTooLong
			}
			return simplebuffers.Bytes(raw), len(raw), nil
		}
	}
	items, ok := value.([]any)
	if !ok {
		return nil, 0, typeMismatch(s, id, value)
	}
	if len(items) > simplebuffers.MaxListLen {
		return nil, 0, simplebuffers.ErrListTooLong
	}

	elemSize := int(s.Type(t.Elem()).StaticSize())
	dynSize := len(items) * elemSize
	list := make(simplebuffers.List[simplebuffers.Writer], 0, len(items))
	for ii, item := range items {
		w, itemDyn, err := build(s, t.Elem(), item)
		if err != nil {
			return nil, 0, fmt.Errorf("[%d]: %w", ii, err)
		}
		list = append(list, w)
		dynSize += itemDyn
	}
	return list, dynSize, nil
}

type fieldWriter struct {
	offset uint16
	w      simplebuffers.Writer
}

type sequenceWriter struct {
	size   uint16
	fields []fieldWriter
}

func (w *sequenceWriter) StaticSize() uint16 {
	return w.size
}

func (w *sequenceWriter) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	var err error
	for _, f := range w.fields {
		dynCursor, err = f.w.WriteComponent(buf, dest+int(f.offset), dynCursor)
		if err != nil {
			return 0, err
		}
	}
	return dynCursor, nil
}

func buildSequence(s *schema.Schema, t *schema.Sequence, value any) (simplebuffers.Writer, int, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, 0, typeMismatch(s, t.ID(), value)
	}

	w := &sequenceWriter{size: t.StaticSize()}
	var dynSize int
	for _, field := range t.Fields() {
		fieldValue, ok := fields[field.Name]
		if !ok {
			return nil, 0, fmt.Errorf("sbbin: sequence %s is missing field %q", t.Name(), field.Name)
		}
		fw, fieldDyn, err := build(s, field.Type, fieldValue)
		if err != nil {
			return nil, 0, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		w.fields = append(w.fields, fieldWriter{offset: field.Offset, w: fw})
		dynSize += fieldDyn
	}
	if len(fields) > len(t.Fields()) {
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			if _, ok := t.Field(name); !ok {
				return nil, 0, fmt.Errorf("sbbin: sequence %s has no field %q", t.Name(), name)
			}
		}
	}
	return w, dynSize, nil
}

func buildOneOf(s *schema.Schema, t *schema.OneOf, value any) (simplebuffers.Writer, int, error) {
	var selected Variant
	switch v := value.(type) {
	case Variant:
		selected = v
	case *Variant:
		selected = *v
	default:
		return nil, 0, typeMismatch(s, t.ID(), value)
	}
	variant, ok := t.Variant(selected.Name)
	if !ok {
		return nil, 0, fmt.Errorf("sbbin: oneof %s has no variant %q", s.TypeName(t.ID()), selected.Name)
	}
	w, dynSize, err := build(s, variant.Type, selected.Value)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", selected.Name, err)
	}
	dynSize += int(w.StaticSize())
	return simplebuffers.OneOf{Tag: variant.Tag, Value: w}, dynSize, nil
}
