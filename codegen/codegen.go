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

// Package codegen defines the interface between the schema compiler and
// code generators.
//
// Built-in generators register themselves from an init function:
//
//	func init() {
//		codegen.MustRegister(&generator{})
//	}
//
// and are found by name with [Lookup].
package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

// Params are passed to every generator invocation.
type Params struct {
	// FileName is the stem of the schema file, without directory or
	// extension. Generators derive their output file names from it.
	FileName string

	DestDir string

	// Args are the generator-specific arguments that followed the schema
	// file on the command line.
	Args []string
}

// OutputFile is one file produced by a generator. Path is relative to the
// destination directory, one element per path component.
type OutputFile struct {
	Path    []string
	Content []byte
}

type Generator interface {
	Name() string

	// ReservedIdentifiers lists the identifiers that must not appear as a
	// declaration, field, or variant name in a schema passed to Generate.
	ReservedIdentifiers(p *Params) []string

	Generate(ctx context.Context, s *schema.Schema, p *Params) ([]OutputFile, error)
}

var registry = struct {
	sync.RWMutex
	generators map[string]Generator
}{
	generators: make(map[string]Generator),
}

// Register makes g available to [Lookup]. It fails if a generator with the
// same name is already registered.
func Register(g Generator) error {
	name := g.Name()
	if name == "" {
		return fmt.Errorf("codegen: generator %T has an empty name", g)
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.generators[name]; dup {
		return fmt.Errorf("codegen: generator %q already registered", name)
	}
	registry.generators[name] = g
	return nil
}

func MustRegister(g Generator) {
	if err := Register(g); err != nil {
		panic(err)
	}
}

func Lookup(name string) (Generator, bool) {
	registry.RLock()
	defer registry.RUnlock()
	g, ok := registry.generators[name]
	return g, ok
}

// Generators returns every registered generator, sorted by name.
func Generators() []Generator {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]Generator, 0, len(registry.generators))
	for _, g := range registry.generators {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Generator) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// OutputPath validates a generated file's path and joins it onto destDir.
func OutputPath(destDir string, file OutputFile) (string, error) {
	parts := file.Path
	if len(parts) == 0 {
		return "", fmt.Errorf("invalid output path %q: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid output path %q: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("invalid output path %q: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid output path %q: component %q contains a path separator", parts, part)
		}
	}
	return filepath.Join(append([]string{destDir}, parts...)...), nil
}

// WriteOutputs writes files under destDir. Every path is validated before
// anything is written.
func WriteOutputs(destDir string, files []OutputFile) error {
	if len(files) == 0 {
		return fmt.Errorf("generator did not produce any output files")
	}
	paths := make([]string, len(files))
	for ii, file := range files {
		path, err := OutputPath(destDir, file)
		if err != nil {
			return err
		}
		paths[ii] = path
	}
	for ii, file := range files {
		if err := os.MkdirAll(filepath.Dir(paths[ii]), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(paths[ii], file.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}
