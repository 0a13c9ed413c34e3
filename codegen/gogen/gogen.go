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

// Package gogen generates Go writers and readers for a schema.
//
// For each sequence Foo it emits a FooWriter struct with one exported field
// per schema field, and a FooReader that decodes fields lazily from a
// buffer. Enums become named unsigned integer types. Each oneof becomes a
// writer built from one constructor per variant and a reader with Tag and
// AsVariant accessors:
//
//	w := &pixel.PixelWriter{
//		Color: pixel.Color_Red,
//		Extra: pixel.NewPixelExtraWriterLabel("hello"),
//	}
//	n, err := w.Write(buf)
//
//	r := pixel.NewPixelReader(buf[:n], 0)
//	if label, ok := r.Extra().AsLabel(); ok {
//		...
//	}
package gogen

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/schema"
)

const (
	Name = "go"

	// DefaultRuntime is the import path of the runtime library used by
	// generated code.
	DefaultRuntime = "github.com/ZachDaChampion/simple-buffers"
)

func init() {
	codegen.MustRegister(New())
}

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (*Generator) Name() string {
	return Name
}

func (*Generator) ReservedIdentifiers(*codegen.Params) []string {
	return reservedIdentifiers()
}

func (*Generator) Generate(
	ctx context.Context,
	s *schema.Schema,
	p *codegen.Params,
) ([]codegen.OutputFile, error) {
	opts, err := parseArgs(p)
	if err != nil {
		return nil, err
	}
	src, err := Emit(s, opts)
	if err != nil {
		return nil, err
	}
	return []codegen.OutputFile{{
		Path:    []string{p.FileName + ".sb.go"},
		Content: src,
	}}, nil
}

type Options struct {
	// Package is the package clause of the generated file.
	Package string

	// Runtime is the import path of the runtime library.
	Runtime string

	// Source is the schema file named in the generated file's header.
	Source string
}

func parseArgs(p *codegen.Params) (Options, error) {
	flags := pflag.NewFlagSet(Name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	pkg := flags.String("package", "", "package name of the generated file")
	runtime := flags.String("runtime", DefaultRuntime, "import path of the runtime library")
	if err := flags.Parse(p.Args); err != nil {
		return Options{}, fmt.Errorf("go generator: %w", err)
	}
	if flags.NArg() > 0 {
		return Options{}, fmt.Errorf("go generator: unexpected arguments %q", flags.Args())
	}

	opts := Options{
		Package: *pkg,
		Runtime: *runtime,
		Source:  p.FileName + ".sb",
	}
	if opts.Package == "" {
		opts.Package = packageName(p.FileName)
	} else if packageName(opts.Package) != opts.Package {
		return Options{}, fmt.Errorf("go generator: invalid package name %q", opts.Package)
	}
	if strings.TrimSpace(opts.Runtime) == "" {
		return Options{}, fmt.Errorf("go generator: empty runtime import path")
	}
	return opts, nil
}
