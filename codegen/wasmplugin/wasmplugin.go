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

// Package wasmplugin loads code generators compiled to WebAssembly and runs
// them in a sandboxed wazero runtime.
package wasmplugin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/codegen/wasmplugin/wasmproto"
	"github.com/ZachDaChampion/simple-buffers/schema"
)

// FilePrefix is stripped from a plugin file's name to get the generator
// name: "sbc-gen-rust.wasm" provides the generator "rust".
const FilePrefix = "sbc-gen-"

// DefaultMemoryLimitPages caps plugin memory at 1 GiB.
const DefaultMemoryLimitPages = 16384

type Option interface {
	apply(*options)
}

type option func(*options)

func (f option) apply(opts *options) { f(opts) }

type options struct {
	logger     *zap.Logger
	stderr     io.Writer
	limitPages uint32
}

func WithLogger(logger *zap.Logger) Option {
	return option(func(opts *options) {
		opts.logger = logger
	})
}

// WithStderr sets where the plugin's standard output and error go.
func WithStderr(w io.Writer) Option {
	return option(func(opts *options) {
		opts.stderr = w
	})
}

func WithMemoryLimitPages(pages uint32) Option {
	return option(func(opts *options) {
		opts.limitPages = pages
	})
}

// GeneratorName returns the generator name provided by the plugin at path.
func GeneratorName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, FilePrefix)
}

// Plugin is a [codegen.Generator] backed by a WebAssembly module. Calls are
// serialized; a Plugin may be shared between goroutines.
type Plugin struct {
	name    string
	path    string
	logger  *zap.Logger
	runtime wasm.Runtime
	module  api.Module

	allocate   api.Function
	deallocate api.Function
	reserved   api.Function
	generate   api.Function

	mu          sync.Mutex
	reservedErr error
}

var _ codegen.Generator = (*Plugin)(nil)

// Load compiles and instantiates the plugin at path. The caller must Close
// the returned plugin.
func Load(ctx context.Context, path string, opts ...Option) (*Plugin, error) {
	options := options{
		logger:     zap.NewNop(),
		stderr:     os.Stderr,
		limitPages: DefaultMemoryLimitPages,
	}
	for _, opt := range opts {
		opt.apply(&options)
	}

	name := GeneratorName(path)
	if name == "" {
		return nil, fmt.Errorf("plugin %s: empty generator name", path)
	}
	logger := options.logger.With(zap.String("plugin", name))

	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter().
		WithMemoryLimitPages(options.limitPages).
		WithCloseOnContextDone(true)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	plugin, err := instantiate(ctx, runtime, bin, name, options)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	plugin.path = path
	plugin.logger = logger
	logger.Debug("loaded plugin", zap.String("path", path), zap.Int("size", len(bin)))
	return plugin, nil
}

func instantiate(
	ctx context.Context,
	runtime wasm.Runtime,
	bin []byte,
	name string,
	options options,
) (*Plugin, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, err
	}
	compiled, err := runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().
		WithName(name).
		WithStdout(options.stderr).
		WithStderr(options.stderr)
	module, err := runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		return nil, err
	}

	p := &Plugin{
		name:       name,
		runtime:    runtime,
		module:     module,
		allocate:   module.ExportedFunction(wasmproto.ExportAllocate),
		deallocate: module.ExportedFunction(wasmproto.ExportDeallocate),
		reserved:   module.ExportedFunction(wasmproto.ExportReserved(name)),
		generate:   module.ExportedFunction(wasmproto.ExportGenerate(name)),
	}
	required := []struct {
		export string
		fn     api.Function
	}{
		{wasmproto.ExportAllocate, p.allocate},
		{wasmproto.ExportReserved(name), p.reserved},
		{wasmproto.ExportGenerate(name), p.generate},
	}
	for _, r := range required {
		if r.fn == nil {
			return nil, fmt.Errorf("missing export %q", r.export)
		}
	}
	if module.Memory() == nil {
		return nil, fmt.Errorf("module does not export its memory")
	}
	return p, nil
}

func (p *Plugin) Name() string {
	return p.name
}

func (p *Plugin) Path() string {
	return p.path
}

func (p *Plugin) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}

// ReservedIdentifiers asks the plugin for its reserved identifiers. If the
// call fails the error is logged and returned by the next Generate.
func (p *Plugin) ReservedIdentifiers(params *codegen.Params) []string {
	reserved, err := p.Reserved(context.Background(), params)
	if err != nil {
		p.logger.Error("reserved identifiers", zap.Error(err))
		p.mu.Lock()
		p.reservedErr = err
		p.mu.Unlock()
		return nil
	}
	return reserved
}

// Reserved is ReservedIdentifiers with a context and error result.
func (p *Plugin) Reserved(ctx context.Context, params *codegen.Params) ([]string, error) {
	var resp wasmproto.Response
	err := p.call(ctx, p.reserved, wasmproto.Request{Params: protoParams(params)}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Reserved, nil
}

func (p *Plugin) Generate(
	ctx context.Context,
	s *schema.Schema,
	params *codegen.Params,
) ([]codegen.OutputFile, error) {
	p.mu.Lock()
	reservedErr := p.reservedErr
	p.mu.Unlock()
	if reservedErr != nil {
		return nil, reservedErr
	}

	var resp wasmproto.Response
	req := wasmproto.Request{Schema: s, Params: protoParams(params)}
	if err := p.call(ctx, p.generate, req, &resp); err != nil {
		return nil, err
	}
	files := make([]codegen.OutputFile, 0, len(resp.Files))
	for _, file := range resp.Files {
		files = append(files, codegen.OutputFile{
			Path:    file.Path,
			Content: file.Content,
		})
	}
	p.logger.Debug("generated", zap.Int("files", len(files)))
	return files, nil
}

func protoParams(params *codegen.Params) wasmproto.Params {
	if params == nil {
		return wasmproto.Params{}
	}
	return wasmproto.Params{
		FileName: params.FileName,
		DestDir:  params.DestDir,
		Args:     params.Args,
	}
}

// Error is returned when a plugin reports a failure.
type Error struct {
	Plugin  string
	Code    uint32
	Message string
}

func (err *Error) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("plugin %s failed with code %d", err.Plugin, err.Code)
	}
	return fmt.Sprintf("plugin %s: %s", err.Plugin, err.Message)
}

func (p *Plugin) call(ctx context.Context, fn api.Function, req any, resp *wasmproto.Response) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	reqBuf, err := wasmproto.Encode(req)
	if err != nil {
		return fmt.Errorf("plugin %s: encode request: %w", p.name, err)
	}
	mem := p.module.Memory()

	reqPtr, err := p.alloc(ctx, uint32(len(reqBuf)))
	if err != nil {
		return err
	}
	defer p.free(ctx, reqPtr)
	if !mem.Write(reqPtr, reqBuf) {
		return fmt.Errorf("plugin %s: request buffer at %#x is out of range", p.name, reqPtr)
	}
	respPtrPtr, err := p.alloc(ctx, 4)
	if err != nil {
		return err
	}
	defer p.free(ctx, respPtrPtr)
	if !mem.WriteUint32Le(respPtrPtr, 0) {
		return fmt.Errorf("plugin %s: response address at %#x is out of range", p.name, respPtrPtr)
	}

	results, err := fn.Call(ctx, uint64(reqPtr), uint64(respPtrPtr))
	if err != nil {
		return fmt.Errorf("plugin %s: %w", p.name, err)
	}
	rc := uint32(results[0])

	readErr := p.readResponse(ctx, respPtrPtr, resp)
	if rc != 0 {
		// The code is reported even when the guest left no readable
		// response.
		failure := &Error{Plugin: p.name, Code: rc}
		if readErr == nil {
			failure.Message = sanitize(resp.Error)
		} else {
			p.logger.Debug("unreadable error response", zap.Uint32("code", rc), zap.Error(readErr))
		}
		return failure
	}
	return readErr
}

// readResponse decodes the message whose address the guest stored at
// respPtrPtr, then frees it. A zero address means no response was set.
func (p *Plugin) readResponse(ctx context.Context, respPtrPtr uint32, resp *wasmproto.Response) error {
	mem := p.module.Memory()
	respPtr, ok := mem.ReadUint32Le(respPtrPtr)
	if !ok {
		return fmt.Errorf("plugin %s: failed to read response address", p.name)
	}
	if respPtr == 0 {
		return fmt.Errorf("plugin %s: no response", p.name)
	}
	defer p.free(ctx, respPtr)
	header, ok := mem.Read(respPtr, 4)
	if !ok {
		return fmt.Errorf("plugin %s: failed to read response message length", p.name)
	}
	respLen, err := wasmproto.MessageLen(header)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", p.name, err)
	}
	respBuf, ok := mem.Read(respPtr, respLen)
	if !ok {
		return fmt.Errorf("plugin %s: failed to read response message", p.name)
	}
	if err := wasmproto.Decode(respBuf, resp); err != nil {
		return fmt.Errorf("plugin %s: decode response: %w", p.name, err)
	}
	return nil
}

func (p *Plugin) alloc(ctx context.Context, n uint32) (uint32, error) {
	results, err := p.allocate.Call(ctx, uint64(n))
	if err != nil {
		return 0, fmt.Errorf("plugin %s: allocate %d bytes: %w", p.name, n, err)
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, fmt.Errorf("plugin %s: allocate %d bytes: out of memory", p.name, n)
	}
	return ptr, nil
}

func (p *Plugin) free(ctx context.Context, ptr uint32) {
	if p.deallocate == nil || ptr == 0 {
		return
	}
	if _, err := p.deallocate.Call(ctx, uint64(ptr)); err != nil {
		p.logger.Warn("deallocate", zap.Uint32("ptr", ptr), zap.Error(err))
	}
}

// sanitize makes a plugin-provided message safe to print on a terminal.
func sanitize(msg string) string {
	msg = strings.TrimRight(msg, "\r\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return unicode.ReplacementChar
		}
		return r
	}, msg)
}
