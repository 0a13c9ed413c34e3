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

// Package simplebuffers is the runtime library linked by generated
// SimpleBuffers code.
//
// An encoded component is a static section of fixed-width fields followed by
// the dynamic payloads (strings, list elements, oneof variants) those fields
// refer to. Every stored offset is an unsigned 16-bit distance measured from
// the first byte of the offset slot to the first byte of its payload, so
// buffers are limited to [MaxBufferSize] bytes.
package simplebuffers

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	MaxBufferSize = math.MaxUint16
	MaxListLen    = math.MaxUint16
)

var (
	ErrInsufficientCapacity = errors.New("simplebuffers: insufficient buffer capacity")
	ErrListTooLong          = errors.New("simplebuffers: list length exceeds 65535 elements")
	ErrOneOfUnset           = errors.New("simplebuffers: oneof has no variant set")
)

func PutU8(buf []byte, addr int, v uint8) {
	buf[addr] = v
}

func PutU16(buf []byte, addr int, v uint16) {
	binary.LittleEndian.PutUint16(buf[addr:], v)
}

func PutU32(buf []byte, addr int, v uint32) {
	binary.LittleEndian.PutUint32(buf[addr:], v)
}

func PutU64(buf []byte, addr int, v uint64) {
	binary.LittleEndian.PutUint64(buf[addr:], v)
}

func PutI8(buf []byte, addr int, v int8) {
	buf[addr] = uint8(v)
}

func PutI16(buf []byte, addr int, v int16) {
	PutU16(buf, addr, uint16(v))
}

func PutI32(buf []byte, addr int, v int32) {
	PutU32(buf, addr, uint32(v))
}

func PutI64(buf []byte, addr int, v int64) {
	PutU64(buf, addr, uint64(v))
}

func PutF32(buf []byte, addr int, v float32) {
	PutU32(buf, addr, math.Float32bits(v))
}

func PutF64(buf []byte, addr int, v float64) {
	PutU64(buf, addr, math.Float64bits(v))
}

func PutBool(buf []byte, addr int, v bool) {
	if v {
		buf[addr] = 1
	} else {
		buf[addr] = 0
	}
}

func ReadU8(buf []byte, addr int) uint8 {
	return buf[addr]
}

func ReadU16(buf []byte, addr int) uint16 {
	return binary.LittleEndian.Uint16(buf[addr:])
}

func ReadU32(buf []byte, addr int) uint32 {
	return binary.LittleEndian.Uint32(buf[addr:])
}

func ReadU64(buf []byte, addr int) uint64 {
	return binary.LittleEndian.Uint64(buf[addr:])
}

func ReadI8(buf []byte, addr int) int8 {
	return int8(buf[addr])
}

func ReadI16(buf []byte, addr int) int16 {
	return int16(ReadU16(buf, addr))
}

func ReadI32(buf []byte, addr int) int32 {
	return int32(ReadU32(buf, addr))
}

func ReadI64(buf []byte, addr int) int64 {
	return int64(ReadU64(buf, addr))
}

func ReadF32(buf []byte, addr int) float32 {
	return math.Float32frombits(ReadU32(buf, addr))
}

func ReadF64(buf []byte, addr int) float64 {
	return math.Float64frombits(ReadU64(buf, addr))
}

func ReadBool(buf []byte, addr int) bool {
	return buf[addr] != 0
}

// Deref returns the payload address referenced by the offset slot at addr.
func Deref(buf []byte, slot int) int {
	return slot + int(ReadU16(buf, slot))
}

func putOffset(buf []byte, slot, target int) {
	PutU16(buf, slot, uint16(target-slot))
}

func reserve(buf []byte, dynCursor, n int) (int, error) {
	if n < 0 || len(buf)-dynCursor < n {
		return 0, ErrInsufficientCapacity
	}
	return dynCursor + n, nil
}
