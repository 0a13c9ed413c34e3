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

//go:build tinygo

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/ZachDaChampion/simple-buffers/codegen/wasmplugin/wasmproto"
)

func main() {}

var buffers = make(map[*uint8][]uint8)

func keep(buf []uint8) *uint8 {
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export sbc_allocate
func sbcAllocate(len uint32) *uint8 {
	if len == 0 || len > math.MaxInt32 {
		return nil
	}
	return keep(make([]uint8, int(len)))
}

//go:export sbc_deallocate
func sbcDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export sbc_reserved_identifiers/docs
func sbcReservedIdentifiers(requestPtr *uint8, responsePtrPtr **uint8) uint32 {
	var req wasmproto.Request
	if err := readRequest(requestPtr, &req); err != nil {
		return respond(responsePtrPtr, &wasmproto.Response{Error: err.Error()})
	}
	// Markdown has no identifiers to collide with.
	return respond(responsePtrPtr, &wasmproto.Response{})
}

//go:export sbc_generate/docs
func sbcGenerate(requestPtr *uint8, responsePtrPtr **uint8) uint32 {
	var req wasmproto.Request
	if err := readRequest(requestPtr, &req); err != nil {
		return respond(responsePtrPtr, &wasmproto.Response{Error: err.Error()})
	}
	if req.Schema == nil {
		return respond(responsePtrPtr, &wasmproto.Response{Error: "request has no schema"})
	}
	if len(req.Params.Args) > 0 {
		return respond(responsePtrPtr, &wasmproto.Response{
			Error: fmt.Sprintf("%s: unexpected arguments %q", generatorName, req.Params.Args),
		})
	}
	return respond(responsePtrPtr, &wasmproto.Response{
		Files: []wasmproto.File{{
			Path:    []string{outputName(req.Params.FileName)},
			Content: renderDocs(req.Schema),
		}},
	})
}

func readRequest(requestPtr *uint8, req *wasmproto.Request) error {
	requestLen := binary.LittleEndian.Uint32(unsafe.Slice(requestPtr, 4))
	return wasmproto.Decode(unsafe.Slice(requestPtr, requestLen), req)
}

func respond(responsePtrPtr **uint8, resp *wasmproto.Response) uint32 {
	var rc uint32
	if resp.Error != "" {
		rc = 1
	}
	buf, err := wasmproto.Encode(resp)
	if err != nil {
		buf, _ = wasmproto.Encode(&wasmproto.Response{Error: fmt.Sprintf("Encode[Response]: %v", err)})
		rc = 1
	}
	*responsePtrPtr = keep(buf)
	return rc
}
