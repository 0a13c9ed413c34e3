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

package simplebuffers_test

import (
	"testing"

	simplebuffers "github.com/ZachDaChampion/simple-buffers"
	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
)

func encode(t *testing.T, w simplebuffers.Writer, capacity int) []byte {
	t.Helper()
	buf := make([]byte, capacity)
	n, err := simplebuffers.Write(w, buf)
	testutil.AssertNoError(t, err)
	return buf[:n]
}

func TestStringList(t *testing.T) {
	t.Parallel()

	list := simplebuffers.List[simplebuffers.String]{"a", "bc"}
	buf := encode(t, list, 64)
	testutil.ExpectBytesEq(t, []byte{
		0x02, 0x00, // count
		0x02, 0x00, // offset slot at 2 -> elements at 4
		0x04, 0x00, // element 0 slot at 4 -> "a" at 8
		0x04, 0x00, // element 1 slot at 6 -> "bc" at 10
		'a', 0x00,
		'b', 'c', 0x00,
	}, buf)

	reader := simplebuffers.NewListReader(buf, 0, 2, simplebuffers.ReadString)
	testutil.ExpectEq(t, 2, reader.Len())
	testutil.ExpectEq(t, 4, reader.Addr())
	testutil.ExpectSliceEq(t, []string{"a", "bc"}, reader.Collect())
	testutil.ExpectEq(t, "[a, bc]", reader.String())

	got, ok := reader.Get(1)
	if testutil.ExpectTrue(t, ok); ok {
		testutil.ExpectEq(t, "bc", got)
	}
	_, ok = reader.Get(2)
	testutil.ExpectFalse(t, ok)
	_, ok = reader.Get(-1)
	testutil.ExpectFalse(t, ok)
}

func TestU16List(t *testing.T) {
	t.Parallel()

	list := simplebuffers.List[simplebuffers.U16]{0x0102, 0x0304, 0xFFFF}
	buf := encode(t, list, 64)
	testutil.ExpectBytesEq(t, []byte{
		0x03, 0x00,
		0x02, 0x00,
		0x02, 0x01,
		0x04, 0x03,
		0xFF, 0xFF,
	}, buf)

	reader := simplebuffers.NewListReader(buf, 0, 2, simplebuffers.ReadU16)
	testutil.ExpectSliceEq(t, []uint16{0x0102, 0x0304, 0xFFFF}, reader.Collect())

	var values []uint16
	for ii, v := range reader.Iter() {
		if ii == 2 {
			break
		}
		values = append(values, v)
	}
	testutil.ExpectSliceEq(t, []uint16{0x0102, 0x0304}, values)
}

func TestEmptyList(t *testing.T) {
	t.Parallel()

	buf := encode(t, simplebuffers.List[simplebuffers.U32]{}, 4)
	testutil.ExpectBytesEq(t, []byte{0x00, 0x00, 0x02, 0x00}, buf)

	reader := simplebuffers.NewListReader(buf, 0, 4, simplebuffers.ReadU32)
	testutil.ExpectEq(t, 0, reader.Len())
	testutil.ExpectEq(t, 0, len(reader.Collect()))
	testutil.ExpectEq(t, 0, len(reader.Raw()))
	testutil.ExpectEq(t, "[]", reader.String())
}

func TestByteListFastPath(t *testing.T) {
	t.Parallel()

	values := []byte{0x00, 0x01, 0x7F, 0x80, 0xFF}
	generic := make(simplebuffers.List[simplebuffers.U8], len(values))
	for ii, v := range values {
		generic[ii] = simplebuffers.U8(v)
	}

	fast := encode(t, simplebuffers.Bytes(values), 16)
	slow := encode(t, generic, 16)
	testutil.ExpectBytesEq(t, slow, fast)

	reader := simplebuffers.NewListReader(fast, 0, 1, simplebuffers.ReadU8)
	testutil.ExpectBytesEq(t, values, reader.Raw())
}

func TestInt8ListFastPath(t *testing.T) {
	t.Parallel()

	values := []int8{-128, -1, 0, 1, 127}
	generic := make(simplebuffers.List[simplebuffers.I8], len(values))
	for ii, v := range values {
		generic[ii] = simplebuffers.I8(v)
	}

	fast := encode(t, simplebuffers.Int8s(values), 16)
	slow := encode(t, generic, 16)
	testutil.ExpectBytesEq(t, slow, fast)

	reader := simplebuffers.NewListReader(fast, 0, 1, simplebuffers.ReadI8)
	testutil.ExpectSliceEq(t, values, reader.Collect())
}

func TestEmptyFastPath(t *testing.T) {
	t.Parallel()

	testutil.ExpectBytesEq(t,
		encode(t, simplebuffers.List[simplebuffers.U8]{}, 4),
		encode(t, simplebuffers.Bytes(nil), 4),
	)
	testutil.ExpectBytesEq(t,
		encode(t, simplebuffers.List[simplebuffers.I8]{}, 4),
		encode(t, simplebuffers.Int8s(nil), 4),
	)
}

func TestListTooLong(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	_, err := simplebuffers.Write(make(simplebuffers.Bytes, simplebuffers.MaxListLen+1), buf)
	testutil.ExpectTrue(t, err == simplebuffers.ErrListTooLong)

	_, err = simplebuffers.Write(make(simplebuffers.List[simplebuffers.U8], simplebuffers.MaxListLen+1), buf)
	testutil.ExpectTrue(t, err == simplebuffers.ErrListTooLong)
}
