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

package simplebuffers

// A Writer encodes one component: its static representation at dest,
// followed by dynamic payloads appended at the dynamic cursor.
//
// WriteComponent requires buf[dest:dest+StaticSize()] to be reserved for it
// by the caller and len(buf) <= MaxBufferSize. It returns the advanced
// dynamic cursor, or ErrInsufficientCapacity if a payload would extend past
// len(buf). After an error the contents of buf are undefined.
type Writer interface {
	StaticSize() uint16
	WriteComponent(buf []byte, dest, dynCursor int) (int, error)
}

// Write encodes w at the start of buf and returns the number of bytes used.
func Write(w Writer, buf []byte) (int, error) {
	if len(buf) > MaxBufferSize {
		buf = buf[:MaxBufferSize]
	}
	staticSize := int(w.StaticSize())
	if len(buf) < staticSize {
		return 0, ErrInsufficientCapacity
	}
	return w.WriteComponent(buf, 0, staticSize)
}

// Primitives {{{

type U8 uint8

func (U8) StaticSize() uint16 { return 1 }

func (v U8) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutU8(buf, dest, uint8(v))
	return dynCursor, nil
}

type U16 uint16

func (U16) StaticSize() uint16 { return 2 }

func (v U16) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutU16(buf, dest, uint16(v))
	return dynCursor, nil
}

type U32 uint32

func (U32) StaticSize() uint16 { return 4 }

func (v U32) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutU32(buf, dest, uint32(v))
	return dynCursor, nil
}

type U64 uint64

func (U64) StaticSize() uint16 { return 8 }

func (v U64) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutU64(buf, dest, uint64(v))
	return dynCursor, nil
}

type I8 int8

func (I8) StaticSize() uint16 { return 1 }

func (v I8) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutI8(buf, dest, int8(v))
	return dynCursor, nil
}

type I16 int16

func (I16) StaticSize() uint16 { return 2 }

func (v I16) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutI16(buf, dest, int16(v))
	return dynCursor, nil
}

type I32 int32

func (I32) StaticSize() uint16 { return 4 }

func (v I32) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutI32(buf, dest, int32(v))
	return dynCursor, nil
}

type I64 int64

func (I64) StaticSize() uint16 { return 8 }

func (v I64) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutI64(buf, dest, int64(v))
	return dynCursor, nil
}

type F32 float32

func (F32) StaticSize() uint16 { return 4 }

func (v F32) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutF32(buf, dest, float32(v))
	return dynCursor, nil
}

type F64 float64

func (F64) StaticSize() uint16 { return 8 }

func (v F64) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutF64(buf, dest, float64(v))
	return dynCursor, nil
}

type Bool bool

func (Bool) StaticSize() uint16 { return 1 }

func (v Bool) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	PutBool(buf, dest, bool(v))
	return dynCursor, nil
}

// }}}

// String {{{

// String is written as a 2-byte offset slot. The payload is the string's
// bytes followed by a NUL terminator, so the value must not contain NUL.
type String string

func (String) StaticSize() uint16 { return 2 }

func (s String) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	end, err := reserve(buf, dynCursor, len(s)+1)
	if err != nil {
		return 0, err
	}
	putOffset(buf, dest, dynCursor)
	copy(buf[dynCursor:], s)
	buf[end-1] = 0
	return end, nil
}

// }}}

// OneOf {{{

// OneOf is a tag plus the writer for the selected variant. Generated oneof
// writers embed it.
type OneOf struct {
	Tag   uint8
	Value Writer
}

func (OneOf) StaticSize() uint16 { return 3 }

func (o OneOf) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	if o.Value == nil {
		return 0, ErrOneOfUnset
	}
	return WriteOneOf(buf, dest, dynCursor, o.Tag, o.Value)
}

// WriteOneOf writes the tag at dest and an offset slot at dest+1, then
// encodes w (static section first) at the dynamic cursor.
func WriteOneOf(buf []byte, dest, dynCursor int, tag uint8, w Writer) (int, error) {
	start := dynCursor
	dynCursor, err := reserve(buf, dynCursor, int(w.StaticSize()))
	if err != nil {
		return 0, err
	}
	PutU8(buf, dest, tag)
	putOffset(buf, dest+1, start)
	return w.WriteComponent(buf, start, dynCursor)
}

// OneOfHeader decodes the oneof slot at addr into its tag and the address of
// the variant payload.
func OneOfHeader(buf []byte, addr int) (uint8, int) {
	return ReadU8(buf, addr), Deref(buf, addr+1)
}

// }}}
