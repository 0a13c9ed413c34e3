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

package wasmproto_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZachDaChampion/simple-buffers/codegen/wasmplugin/wasmproto"
	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/encoding/sbtext"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

func TestEncodeHeader(t *testing.T) {
	buf, err := wasmproto.Encode(wasmproto.Response{Error: "boom"})
	require.NoError(t, err)
	assert.Equal(t, uint32(len(buf)), binary.LittleEndian.Uint32(buf))
	assert.Equal(t, `{"error":"boom"}`, string(buf[4:]))
}

func TestResponseRoundTrip(t *testing.T) {
	want := wasmproto.Response{
		Files: []wasmproto.File{
			{Path: []string{"gen", "a.txt"}, Content: []byte{0, 1, 0xFF}},
		},
		Reserved: []string{"type"},
	}
	buf, err := wasmproto.Encode(want)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"content":"AAH/"`)

	var got wasmproto.Response
	require.NoError(t, wasmproto.Decode(buf, &got))
	assert.Equal(t, want, got)
}

func TestRequestCarriesSchema(t *testing.T) {
	parsed, err := syntax.Parse([]byte(`
enum Color { red = 0; blue = 500; }
sequence Pixel { color: Color; extra: oneof { name: str; }; }
`))
	require.NoError(t, err)
	result := compiler.Compile(parsed, compiler.WithSchemaName("pixel"))
	require.Empty(t, result.Errors)

	buf, err := wasmproto.Encode(wasmproto.Request{
		Schema: result.Schema(),
		Params: wasmproto.Params{FileName: "pixel", DestDir: "out", Args: []string{"-x"}},
	})
	require.NoError(t, err)

	var got wasmproto.Request
	require.NoError(t, wasmproto.Decode(buf, &got))
	require.NotNil(t, got.Schema)
	assert.Equal(t, sbtext.Encode(result.Schema()), sbtext.Encode(got.Schema))
	assert.Equal(t, []string{"-x"}, got.Params.Args)
}

func TestDecodeErrors(t *testing.T) {
	var resp wasmproto.Response
	assert.Error(t, wasmproto.Decode([]byte{1, 0}, &resp))
	assert.Error(t, wasmproto.Decode([]byte{2, 0, 0, 0}, &resp))
	assert.Error(t, wasmproto.Decode([]byte{9, 0, 0, 0, '{', '}'}, &resp))
	assert.Error(t, wasmproto.Decode([]byte{6, 0, 0, 0, '{', '!'}, &resp))
	assert.NoError(t, wasmproto.Decode([]byte{6, 0, 0, 0, '{', '}'}, &resp))
}

func TestExportNames(t *testing.T) {
	assert.Equal(t, "sbc_generate/docs", wasmproto.ExportGenerate("docs"))
	assert.Equal(t, "sbc_reserved_identifiers/docs", wasmproto.ExportReserved("docs"))
}
