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
	"bytes"
	"fmt"

	simplebuffers "github.com/ZachDaChampion/simple-buffers"
	"github.com/ZachDaChampion/simple-buffers/schema"
)

type ReaderOption interface {
	applyReaderOption(*readerOptions)
}

type readerOptionFunc func(*readerOptions)

func (fn readerOptionFunc) applyReaderOption(opts *readerOptions) {
	fn(opts)
}

type readerOptions struct {
	checked bool
}

// WithChecked enables bounds checking of every address and offset. A checked
// reader returns ErrOutOfBounds instead of panicking on a malformed buffer,
// and rejects lists and oneofs whose payload does not lie after their own
// slot.
func WithChecked(checked bool) ReaderOption {
	return readerOptionFunc(func(opts *readerOptions) {
		opts.checked = checked
	})
}

// Reader is a view of one encoded value of a schema type.
type Reader struct {
	schema  *schema.Schema
	id      schema.TypeID
	typ     schema.Type
	buf     []byte
	addr    int
	checked bool
}

// NewReader returns a reader for a root value of type id encoded at the
// start of buf.
func NewReader(s *schema.Schema, id schema.TypeID, buf []byte, opts ...ReaderOption) (Reader, error) {
	var options readerOptions
	for _, opt := range opts {
		opt.applyReaderOption(&options)
	}
	typ := s.Type(id)
	if len(buf) < int(typ.StaticSize()) {
		return Reader{}, fmt.Errorf(
			"%w: buffer of %d bytes is too short for %s (%d bytes)",
			ErrOutOfBounds, len(buf), s.TypeName(id), typ.StaticSize(),
		)
	}
	return Reader{
		schema:  s,
		id:      id,
		typ:     typ,
		buf:     buf,
		checked: options.checked,
	}, nil
}

func (r Reader) TypeID() schema.TypeID {
	return r.id
}

func (r Reader) Type() schema.Type {
	return r.typ
}

// Addr returns the address of the value's static section.
func (r Reader) Addr() int {
	return r.addr
}

func (r Reader) at(id schema.TypeID, addr int) Reader {
	return Reader{
		schema:  r.schema,
		id:      id,
		typ:     r.schema.Type(id),
		buf:     r.buf,
		addr:    addr,
		checked: r.checked,
	}
}

func (r Reader) check(addr, n int) error {
	if !r.checked {
		return nil
	}
	if addr < 0 || n < 0 || addr > len(r.buf) || len(r.buf)-addr < n {
		return fmt.Errorf(
			"%w: %d bytes at address %d (buffer is %d bytes)",
			ErrOutOfBounds, n, addr, len(r.buf),
		)
	}
	return nil
}

func (r Reader) mismatch(want string) error {
	return fmt.Errorf("%w: %s is not %s", ErrTypeMismatch, r.schema.TypeName(r.id), want)
}

// Field returns a reader for the named field of a sequence.
func (r Reader) Field(name string) (Reader, error) {
	seq, ok := r.typ.(*schema.Sequence)
	if !ok {
		return Reader{}, r.mismatch("a sequence")
	}
	field, ok := seq.Field(name)
	if !ok {
		return Reader{}, fmt.Errorf("sbbin: sequence %s has no field %q", seq.Name(), name)
	}
	return r.at(field.Type, r.addr+int(field.Offset)), nil
}

func (r Reader) listHeader() (*schema.List, int, int, error) {
	list, ok := r.typ.(*schema.List)
	if !ok {
		return nil, 0, 0, r.mismatch("a list")
	}
	if err := r.check(r.addr, 4); err != nil {
		return nil, 0, 0, err
	}
	count, payload := simplebuffers.ListHeader(r.buf, r.addr)
	if r.checked && count > 0 {
		elemSize := int(r.schema.Type(list.Elem()).StaticSize())
		if err := r.check(payload, count*elemSize); err != nil {
			return nil, 0, 0, err
		}
		if payload < r.addr+4 {
			return nil, 0, 0, fmt.Errorf(
				"%w: list at %d has payload at %d, before the end of its slot",
				ErrOutOfBounds, r.addr, payload,
			)
		}
	}
	return list, count, payload, nil
}

// Len returns the number of elements in a list.
func (r Reader) Len() (int, error) {
	_, count, _, err := r.listHeader()
	return count, err
}

// Index returns a reader for element i of a list.
func (r Reader) Index(i int) (Reader, error) {
	list, count, payload, err := r.listHeader()
	if err != nil {
		return Reader{}, err
	}
	if i < 0 || i >= count {
		return Reader{}, fmt.Errorf("sbbin: index %d out of range for list of length %d", i, count)
	}
	elemSize := r.schema.Type(list.Elem()).StaticSize()
	return r.at(list.Elem(), simplebuffers.Addr(payload, i, elemSize)), nil
}

// Bytes returns the elements of a list of u8. The result aliases the
// underlying buffer.
func (r Reader) Bytes() ([]byte, error) {
	list, count, payload, err := r.listHeader()
	if err != nil {
		return nil, err
	}
	if prim, ok := r.schema.Type(list.Elem()).(*schema.Primitive); !ok || prim.PrimitiveKind() != schema.U8 {
		return nil, r.mismatch("a list of u8")
	}
	return r.buf[payload : payload+count : payload+count], nil
}

func (r Reader) oneOfHeader() (*schema.OneOf, uint8, int, error) {
	oneof, ok := r.typ.(*schema.OneOf)
	if !ok {
		return nil, 0, 0, r.mismatch("a oneof")
	}
	if err := r.check(r.addr, 3); err != nil {
		return nil, 0, 0, err
	}
	tag, payload := simplebuffers.OneOfHeader(r.buf, r.addr)
	return oneof, tag, payload, nil
}

// Tag returns the tag of the selected variant of a oneof.
func (r Reader) Tag() (uint8, error) {
	_, tag, _, err := r.oneOfHeader()
	return tag, err
}

// Variant returns the selected variant of a oneof and a reader for its
// value.
func (r Reader) Variant() (schema.Variant, Reader, error) {
	oneof, tag, payload, err := r.oneOfHeader()
	if err != nil {
		return schema.Variant{}, Reader{}, err
	}
	variant, ok := oneof.VariantByTag(tag)
	if !ok {
		return schema.Variant{}, Reader{}, fmt.Errorf(
			"%w: %d in %s", ErrUnknownTag, tag, r.schema.TypeName(r.id),
		)
	}
	if r.checked {
		size := int(r.schema.Type(variant.Type).StaticSize())
		if err := r.check(payload, size); err != nil {
			return schema.Variant{}, Reader{}, err
		}
		if payload < r.addr+3 {
			return schema.Variant{}, Reader{}, fmt.Errorf(
				"%w: oneof at %d has payload at %d, before the end of its slot",
				ErrOutOfBounds, r.addr, payload,
			)
		}
	}
	return variant, r.at(variant.Type, payload), nil
}

func (r Reader) primitive() (schema.PrimitiveKind, bool) {
	if prim, ok := r.typ.(*schema.Primitive); ok {
		return prim.PrimitiveKind(), true
	}
	return 0, false
}

func (r Reader) readUint(width int) (uint64, error) {
	if err := r.check(r.addr, width); err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(simplebuffers.ReadU8(r.buf, r.addr)), nil
	case 2:
		return uint64(simplebuffers.ReadU16(r.buf, r.addr)), nil
	case 4:
		return uint64(simplebuffers.ReadU32(r.buf, r.addr)), nil
	default:
		return simplebuffers.ReadU64(r.buf, r.addr), nil
	}
}

// Uint returns the value of an unsigned primitive or an enum.
func (r Reader) Uint() (uint64, error) {
	if enum, ok := r.typ.(*schema.Enum); ok {
		return r.readUint(int(enum.Width()))
	}
	kind, ok := r.primitive()
	if !ok || kind.Signed() || kind.Float() || kind == schema.Bool {
		return 0, r.mismatch("an unsigned integer")
	}
	return r.readUint(int(kind.Size()))
}

// Int returns the value of a signed integer primitive.
func (r Reader) Int() (int64, error) {
	kind, ok := r.primitive()
	if !ok || !kind.Signed() || kind.Float() {
		return 0, r.mismatch("a signed integer")
	}
	if err := r.check(r.addr, int(kind.Size())); err != nil {
		return 0, err
	}
	switch kind {
	case schema.I8:
		return int64(simplebuffers.ReadI8(r.buf, r.addr)), nil
	case schema.I16:
		return int64(simplebuffers.ReadI16(r.buf, r.addr)), nil
	case schema.I32:
		return int64(simplebuffers.ReadI32(r.buf, r.addr)), nil
	default:
		return simplebuffers.ReadI64(r.buf, r.addr), nil
	}
}

func (r Reader) Float() (float64, error) {
	kind, ok := r.primitive()
	if !ok || !kind.Float() {
		return 0, r.mismatch("a float")
	}
	if err := r.check(r.addr, int(kind.Size())); err != nil {
		return 0, err
	}
	if kind == schema.F32 {
		return float64(simplebuffers.ReadF32(r.buf, r.addr)), nil
	}
	return simplebuffers.ReadF64(r.buf, r.addr), nil
}

func (r Reader) Bool() (bool, error) {
	if kind, ok := r.primitive(); !ok || kind != schema.Bool {
		return false, r.mismatch("a bool")
	}
	if err := r.check(r.addr, 1); err != nil {
		return false, err
	}
	return simplebuffers.ReadBool(r.buf, r.addr), nil
}

// Str returns a copy of the value of a string.
func (r Reader) Str() (string, error) {
	if _, ok := r.typ.(*schema.String); !ok {
		return "", r.mismatch("a string")
	}
	if !r.checked {
		return simplebuffers.ReadStringCopy(r.buf, r.addr), nil
	}
	if err := r.check(r.addr, 2); err != nil {
		return "", err
	}
	payload := simplebuffers.Deref(r.buf, r.addr)
	if err := r.check(payload, 0); err != nil {
		return "", err
	}
	n := bytes.IndexByte(r.buf[payload:], 0)
	if n < 0 {
		return "", fmt.Errorf("%w: string at %d is not terminated", ErrOutOfBounds, payload)
	}
	return string(r.buf[payload : payload+n]), nil
}

// Decode reads the whole value into the shapes accepted by [Encode].
//
// For a checked reader the walk also fails with ErrOverlap once the
// payloads it has followed add up to more than the length of the buffer.
// Every payload of a well-formed encoding is referenced once, so this only
// rejects buffers whose offsets alias each other, which would otherwise
// take time exponential in their nesting depth.
func Decode(r Reader) (any, error) {
	dec := decoder{budget: -1}
	if r.checked {
		dec.budget = len(r.buf)
	}
	return dec.decode(r)
}

type decoder struct {
	// budget is the number of payload bytes left to decode, or -1 for no
	// limit.
	budget int
}

func (dec *decoder) charge(r Reader, n int) error {
	if dec.budget < 0 {
		return nil
	}
	if n > dec.budget {
		return fmt.Errorf(
			"%w: payload of %d bytes at %d exceeds the %d-byte buffer",
			ErrOverlap, n, r.addr, len(r.buf),
		)
	}
	dec.budget -= n
	return nil
}

func (dec *decoder) decode(r Reader) (any, error) {
	switch t := r.typ.(type) {
	case *schema.Primitive:
		kind := t.PrimitiveKind()
		switch {
		case kind == schema.Bool:
			return r.Bool()
		case kind.Float():
			return r.Float()
		case kind.Signed():
			return r.Int()
		default:
			return r.Uint()
		}
	case *schema.Enum:
		return r.Uint()
	case *schema.String:
		value, err := r.Str()
		if err != nil {
			return nil, err
		}
		if err := dec.charge(r, len(value)+1); err != nil {
			return nil, err
		}
		return value, nil
	case *schema.List:
		return dec.decodeList(r, t)
	case *schema.Sequence:
		fields := make(map[string]any, len(t.Fields()))
		for _, field := range t.Fields() {
			value, err := dec.decode(r.at(field.Type, r.addr+int(field.Offset)))
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
			}
			fields[field.Name] = value
		}
		return fields, nil
	case *schema.OneOf:
		variant, vr, err := r.Variant()
		if err != nil {
			return nil, err
		}
		if err := dec.charge(vr, int(vr.typ.StaticSize())); err != nil {
			return nil, err
		}
		value, err := dec.decode(vr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", variant.Name, err)
		}
		return Variant{Name: variant.Name, Value: value}, nil
	default:
		panic(fmt.Sprintf("unknown schema type %T", t))
	}
}

func (dec *decoder) decodeList(r Reader, t *schema.List) (any, error) {
	if prim, ok := r.schema.Type(t.Elem()).(*schema.Primitive); ok && prim.PrimitiveKind() == schema.U8 {
		raw, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		if err := dec.charge(r, len(raw)); err != nil {
			return nil, err
		}
		return bytes.Clone(raw), nil
	}
	_, count, payload, err := r.listHeader()
	if err != nil {
		return nil, err
	}
	elemSize := r.schema.Type(t.Elem()).StaticSize()
	if err := dec.charge(r, count*int(elemSize)); err != nil {
		return nil, err
	}
	items := make([]any, 0, count)
	for ii := range count {
		item, err := dec.decode(r.at(t.Elem(), simplebuffers.Addr(payload, ii, elemSize)))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", ii, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Validate reports whether buf holds a well-formed root value of type id.
// Offsets that alias each other are rejected with ErrOverlap.
func Validate(s *schema.Schema, id schema.TypeID, buf []byte) error {
	r, err := NewReader(s, id, buf, WithChecked(true))
	if err != nil {
		return err
	}
	_, err = Decode(r)
	return err
}
