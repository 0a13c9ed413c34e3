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

// Package wasmproto defines the messages exchanged between the compiler and
// a generator plugin compiled to WebAssembly.
//
// A plugin named NAME exports:
//
//	sbc_allocate(len u32) u32
//	sbc_reserved_identifiers/NAME(request u32, response_ptr_ptr u32) u32
//	sbc_generate/NAME(request u32, response_ptr_ptr u32) u32
//
// and optionally sbc_deallocate(ptr u32). Requests and responses are
// length-prefixed messages: a little-endian u32 holding the total length of
// the message, header included, followed by a JSON document. The plugin
// stores the address of its response at response_ptr_ptr and returns 0 on
// success, or non-zero with Response.Error set.
package wasmproto

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

const (
	ExportAllocate   = "sbc_allocate"
	ExportDeallocate = "sbc_deallocate"

	exportReserved = "sbc_reserved_identifiers/"
	exportGenerate = "sbc_generate/"
)

func ExportReserved(name string) string { return exportReserved + name }
func ExportGenerate(name string) string { return exportGenerate + name }

const headerSize = 4

type Request struct {
	Schema *schema.Schema `json:"schema,omitempty"`
	Params Params         `json:"params"`
}

type Params struct {
	FileName string   `json:"file_name"`
	DestDir  string   `json:"dest_dir"`
	Args     []string `json:"args"`
}

type Response struct {
	Error    string   `json:"error,omitempty"`
	Files    []File   `json:"files,omitempty"`
	Reserved []string `json:"reserved,omitempty"`
}

// File mirrors codegen.OutputFile. Content is base64 in the JSON encoding.
type File struct {
	Path    []string `json:"path"`
	Content []byte   `json:"content"`
}

// Encode returns the length-prefixed JSON encoding of msg.
func Encode(msg any) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if uint64(len(body)) > math.MaxUint32-headerSize {
		return nil, fmt.Errorf("wasmproto: message of %d bytes is too large", len(body))
	}
	buf := make([]byte, headerSize, headerSize+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(headerSize+len(body)))
	return append(buf, body...), nil
}

// MessageLen returns the total length recorded in a message header.
func MessageLen(header []byte) (uint32, error) {
	if len(header) < headerSize {
		return 0, fmt.Errorf("wasmproto: truncated message header")
	}
	n := binary.LittleEndian.Uint32(header)
	if n < headerSize {
		return 0, fmt.Errorf("wasmproto: invalid message length %d", n)
	}
	return n, nil
}

// Decode parses a length-prefixed message into msg.
func Decode(buf []byte, msg any) error {
	n, err := MessageLen(buf)
	if err != nil {
		return err
	}
	if uint64(n) != uint64(len(buf)) {
		return fmt.Errorf("wasmproto: message header says %d bytes, have %d", n, len(buf))
	}
	if err := json.Unmarshal(buf[headerSize:], msg); err != nil {
		return fmt.Errorf("wasmproto: %w", err)
	}
	return nil
}
