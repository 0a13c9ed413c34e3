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

package wasmplugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ZachDaChampion/simple-buffers/codegen"
)

// The smallest valid module: magic and version, no sections.
var emptyModule = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

func writePlugin(t *testing.T, name string, bin []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, bin, 0o644))
	return path
}

func TestGeneratorName(t *testing.T) {
	assert.Equal(t, "rust", GeneratorName("/opt/sbc/sbc-gen-rust.wasm"))
	assert.Equal(t, "docs", GeneratorName("sbc-gen-docs.wasm"))
	assert.Equal(t, "custom", GeneratorName("lib/custom.wasm"))
	assert.Equal(t, "", GeneratorName("sbc-gen-.wasm"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "sbc-gen-none.wasm"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidModule(t *testing.T) {
	path := writePlugin(t, "sbc-gen-junk.wasm", []byte("not a wasm module"))
	_, err := Load(context.Background(), path, WithLogger(zaptest.NewLogger(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin junk")
}

func TestLoadMissingExports(t *testing.T) {
	path := writePlugin(t, "sbc-gen-empty.wasm", emptyModule)
	_, err := Load(context.Background(), path, WithLogger(zaptest.NewLogger(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing export "sbc_allocate"`)
}

func TestLoadEmptyName(t *testing.T) {
	path := writePlugin(t, "sbc-gen-.wasm", emptyModule)
	_, err := Load(context.Background(), path)
	require.ErrorContains(t, err, "empty generator name")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "bad \uFFFDinput\n\tdetail", sanitize("bad \x1binput\n\tdetail\n\n"))
	assert.Equal(t, "plain", sanitize("plain"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "plugin rust: no such type", (&Error{Plugin: "rust", Code: 1, Message: "no such type"}).Error())
	assert.Equal(t, "plugin rust failed with code 3", (&Error{Plugin: "rust", Code: 3}).Error())
}

func wasmSection(id byte, content ...[]byte) []byte {
	var body []byte
	for _, c := range content {
		body = append(body, c...)
	}
	// Every section here is shorter than 128 bytes.
	return append([]byte{id, byte(len(body))}, body...)
}

func wasmName(name string) []byte {
	return append([]byte{byte(len(name))}, name...)
}

// failingModule builds a plugin named "t" with a bump allocator. Its reserved
// export returns 0 and its generate export returns 3, and neither stores a
// response.
func failingModule() []byte {
	const (
		i32     = 0x7F
		funcRef = 0x00
		memRef  = 0x02
	)
	module := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	module = append(module, wasmSection(1, []byte{
		0x02,
		0x60, 0x01, i32, 0x01, i32,
		0x60, 0x02, i32, i32, 0x01, i32,
	})...)
	module = append(module, wasmSection(3, []byte{0x03, 0x00, 0x01, 0x01})...)
	module = append(module, wasmSection(5, []byte{0x01, 0x00, 0x01})...)
	// (global (mut i32) (i32.const 1024))
	module = append(module, wasmSection(6, []byte{0x01, i32, 0x01, 0x41, 0x80, 0x08, 0x0B})...)
	module = append(module, wasmSection(7,
		[]byte{0x04},
		wasmName("memory"), []byte{memRef, 0x00},
		wasmName("sbc_allocate"), []byte{funcRef, 0x00},
		wasmName("sbc_reserved_identifiers/t"), []byte{funcRef, 0x01},
		wasmName("sbc_generate/t"), []byte{funcRef, 0x02},
	)...)
	module = append(module, wasmSection(10,
		[]byte{0x03},
		// global.get 0; global.get 0; local.get 0; i32.add; global.set 0
		[]byte{0x0B, 0x00, 0x23, 0x00, 0x23, 0x00, 0x20, 0x00, 0x6A, 0x24, 0x00, 0x0B},
		[]byte{0x04, 0x00, 0x41, 0x00, 0x0B},
		[]byte{0x04, 0x00, 0x41, 0x03, 0x0B},
	)...)
	return module
}

func TestCallWithoutResponse(t *testing.T) {
	ctx := context.Background()
	path := writePlugin(t, "sbc-gen-t.wasm", failingModule())
	p, err := Load(ctx, path, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer p.Close(ctx)
	assert.Equal(t, "t", p.Name())

	// A zero return code with no response is a protocol error.
	_, err = p.Reserved(ctx, &codegen.Params{FileName: "x"})
	require.ErrorContains(t, err, "plugin t: no response")

	// A failure code is reported even when no response was stored.
	_, err = p.Generate(ctx, nil, &codegen.Params{FileName: "x"})
	var pluginErr *Error
	require.True(t, errors.As(err, &pluginErr), "got %v", err)
	assert.Equal(t, uint32(3), pluginErr.Code)
	assert.Equal(t, "plugin t failed with code 3", err.Error())
}
