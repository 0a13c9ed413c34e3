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

// Package sanitycheck implements a generator that writes the computed
// layout of a schema as text, for inspecting what the compiler produced.
package sanitycheck

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/encoding/sbtext"
	"github.com/ZachDaChampion/simple-buffers/schema"
)

const Name = "sanitycheck"

func init() {
	codegen.MustRegister(New(os.Stdout))
}

type Generator struct {
	stdout io.Writer
}

// New returns a generator that prints the layout to stdout when invoked
// with --stdout.
func New(stdout io.Writer) *Generator {
	return &Generator{stdout: stdout}
}

func (*Generator) Name() string {
	return Name
}

func (*Generator) ReservedIdentifiers(*codegen.Params) []string {
	return nil
}

func (g *Generator) Generate(
	ctx context.Context,
	s *schema.Schema,
	p *codegen.Params,
) ([]codegen.OutputFile, error) {
	flags := pflag.NewFlagSet(Name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	toStdout := flags.Bool("stdout", false, "also print the layout")
	if err := flags.Parse(p.Args); err != nil {
		return nil, fmt.Errorf("sanitycheck generator: %w", err)
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("sanitycheck generator: unexpected arguments %q", flags.Args())
	}

	layout := sbtext.Encode(s)
	if *toStdout {
		if _, err := io.WriteString(g.stdout, layout); err != nil {
			return nil, err
		}
	}
	return []codegen.OutputFile{{
		Path:    []string{p.FileName + ".layout.txt"},
		Content: []byte(layout),
	}}, nil
}
