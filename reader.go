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
	"bytes"
	"unsafe"
)

// ReadString follows the offset slot at addr and returns the bytes up to the
// NUL terminator. The result aliases buf; it is only valid while buf is not
// modified. Use ReadStringCopy when the buffer will be reused.
func ReadString(buf []byte, slot int) string {
	value := stringBytes(buf, slot)
	if len(value) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(value), len(value))
}

func ReadStringCopy(buf []byte, slot int) string {
	return string(stringBytes(buf, slot))
}

func stringBytes(buf []byte, slot int) []byte {
	value := buf[Deref(buf, slot):]
	if n := bytes.IndexByte(value, 0); n >= 0 {
		return value[:n]
	}
	return value
}

// Addr computes the address of the index'th record of a homogeneous array of
// fixed-size records beginning at base.
func Addr(base, index int, staticSize uint16) int {
	return base + index*int(staticSize)
}
