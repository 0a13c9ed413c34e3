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

import (
	"fmt"
	"iter"
	"strings"
	"unsafe"
)

// List writers {{{

// List writes a count and an offset slot. The payload is the static section
// of every element followed by the dynamic content of each element in order.
// All elements must have the same static size.
type List[W Writer] []W

func (List[W]) StaticSize() uint16 { return 4 }

func (l List[W]) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	if len(l) > MaxListLen {
		return 0, ErrListTooLong
	}
	PutU16(buf, dest, uint16(len(l)))
	if len(l) == 0 {
		putOffset(buf, dest+2, dynCursor)
		return dynCursor, nil
	}

	elemSize := int(l[0].StaticSize())
	start := dynCursor
	dynCursor, err := reserve(buf, dynCursor, elemSize*len(l))
	if err != nil {
		return 0, err
	}
	putOffset(buf, dest+2, start)
	for ii, elem := range l {
		dynCursor, err = elem.WriteComponent(buf, start+ii*elemSize, dynCursor)
		if err != nil {
			return 0, err
		}
	}
	return dynCursor, nil
}

// Bytes is a list of u8 written with a single copy. Its encoding is
// identical to a List[U8] holding the same values.
type Bytes []byte

func (Bytes) StaticSize() uint16 { return 4 }

func (b Bytes) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	return writeRaw(buf, dest, dynCursor, b)
}

// Int8s is the i8 counterpart of Bytes.
type Int8s []int8

func (Int8s) StaticSize() uint16 { return 4 }

func (l Int8s) WriteComponent(buf []byte, dest, dynCursor int) (int, error) {
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(l))), len(l))
	return writeRaw(buf, dest, dynCursor, raw)
}

func writeRaw(buf []byte, dest, dynCursor int, raw []byte) (int, error) {
	if len(raw) > MaxListLen {
		return 0, ErrListTooLong
	}
	end, err := reserve(buf, dynCursor, len(raw))
	if err != nil {
		return 0, err
	}
	PutU16(buf, dest, uint16(len(raw)))
	putOffset(buf, dest+2, dynCursor)
	copy(buf[dynCursor:end], raw)
	return end, nil
}

// }}}

// ListReader {{{

// ListHeader decodes the list slot at addr into the element count and the
// address of the first element.
func ListHeader(buf []byte, addr int) (int, int) {
	return int(ReadU16(buf, addr)), Deref(buf, addr+2)
}

// ListReader provides random access to the elements of an encoded list.
// Element i is decoded by calling read with the address of its static
// section.
type ListReader[T any] struct {
	buf      []byte
	addr     int
	len      int
	elemSize uint16
	read     func(buf []byte, addr int) T
}

func NewListReader[T any](
	buf []byte,
	slot int,
	elemSize uint16,
	read func(buf []byte, addr int) T,
) ListReader[T] {
	count, addr := ListHeader(buf, slot)
	return ListReader[T]{
		buf:      buf,
		addr:     addr,
		len:      count,
		elemSize: elemSize,
		read:     read,
	}
}

func (l ListReader[T]) Len() int {
	return l.len
}

// Addr returns the address of the first element.
func (l ListReader[T]) Addr() int {
	return l.addr
}

func (l ListReader[T]) Get(idx int) (T, bool) {
	if idx < 0 || idx >= l.len {
		var zero T
		return zero, false
	}
	return l.At(idx), true
}

// At is Get without the index check.
func (l ListReader[T]) At(idx int) T {
	return l.read(l.buf, Addr(l.addr, idx, l.elemSize))
}

func (l ListReader[T]) Iter() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for ii := 0; ii < l.len; ii++ {
			if !yield(ii, l.At(ii)) {
				return
			}
		}
	}
}

func (l ListReader[T]) Collect() []T {
	out := make([]T, 0, l.len)
	for _, v := range l.Iter() {
		out = append(out, v)
	}
	return out
}

// Raw returns the static sections of all elements as one slice. For lists of
// u8 this is the list content itself.
func (l ListReader[T]) Raw() []byte {
	if l.len == 0 {
		return nil
	}
	return l.buf[l.addr : l.addr+l.len*int(l.elemSize)]
}

func (l ListReader[T]) String() string {
	var out strings.Builder
	out.WriteByte('[')
	for ii, v := range l.Iter() {
		if ii > 0 {
			out.WriteString(", ")
		}
		fmt.Fprintf(&out, "%v", v)
	}
	out.WriteByte(']')
	return out.String()
}

// }}}
