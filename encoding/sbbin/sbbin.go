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

// Package sbbin encodes and decodes SimpleBuffers data using a compiled
// schema instead of generated code.
//
// Values are represented as plain Go values:
//
//	primitive  unsigned and signed integers, floats, bool
//	enum       an unsigned integer, or the name of a variant
//	str        string
//	list       []any, or []byte for a list of u8
//	sequence   map[string]any keyed by field name
//	oneof      [Variant]
//
// [Decode] produces the same shapes, with integers widened to uint64 or
// int64 and floats to float64.
package sbbin

import (
	"errors"
	"fmt"
	"math"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

var (
	// ErrOutOfBounds is returned by checked readers when an address or
	// offset points outside the buffer.
	ErrOutOfBounds = errors.New("sbbin: address out of bounds")

	// ErrOverlap is returned by a checked Decode when the payloads reachable
	// from a value are larger in total than the buffer holding them.
	ErrOverlap = errors.New("sbbin: overlapping payloads")

	ErrTypeMismatch = errors.New("sbbin: type mismatch")
	ErrUnknownTag   = errors.New("sbbin: unknown oneof tag")
)

// Variant is the value of a oneof: the name of the selected variant and its
// value.
type Variant struct {
	Name  string
	Value any
}

func typeMismatch(s *schema.Schema, id schema.TypeID, value any) error {
	return fmt.Errorf("%w: %T is not a valid %s", ErrTypeMismatch, value, s.TypeName(id))
}

func uintValue(value any, limit uint64) (uint64, bool) {
	var n uint64
	switch v := value.(type) {
	case uint:
		n = uint64(v)
	case uint8:
		n = uint64(v)
	case uint16:
		n = uint64(v)
	case uint32:
		n = uint64(v)
	case uint64:
		n = v
	case int, int8, int16, int32, int64:
		signed, _ := intValue(v, math.MinInt64, math.MaxInt64)
		if signed < 0 {
			return 0, false
		}
		n = uint64(signed)
	default:
		return 0, false
	}
	return n, n <= limit
}

func intValue(value any, lo, hi int64) (int64, bool) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint, uint8, uint16, uint32, uint64:
		unsigned, _ := uintValue(v, math.MaxUint64)
		if unsigned > math.MaxInt64 {
			return 0, false
		}
		n = int64(unsigned)
	default:
		return 0, false
	}
	return n, n >= lo && n <= hi
}

func floatValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if n, ok := intValue(value, math.MinInt64, math.MaxInt64); ok {
		return float64(n), true
	}
	if n, ok := uintValue(value, math.MaxUint64); ok {
		return float64(n), true
	}
	return 0, false
}
