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

package codegen_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/schema"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

func compile(t *testing.T, src string) *schema.Schema {
	t.Helper()
	parsed, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed)
	if len(result.Errors) > 0 {
		t.Fatalf("Compile: %v", result.Errors)
	}
	return result.Schema()
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"type", "type"},
		{"MyField", "my_field"},
		{"my_field", "my_field"},
		{"myField", "my_field"},
		{"HTTPServer", "http_server"},
		{"kebab-case", "kebab_case"},
		{"Field2Name", "field2_name"},
		{"__private", "private"},
		{"StaticSize", "static_size"},
	}
	for _, test := range tests {
		testutil.ExpectEq(t, test.want, codegen.SnakeCase(test.name))
	}
}

func TestCheckReserved(t *testing.T) {
	t.Parallel()

	s := compile(t, `
enum Color { red = 0; green = 1; }
sequence Pixel {
    color: Color;
    extra: oneof {
        name: str;
        inner: [oneof { Default: u8; }];
    };
}
`)

	tests := []struct {
		reserved []string
		want     string
	}{
		{nil, ""},
		{[]string{"while", "int"}, ""},
		{[]string{"COLOR"}, "Enum `Color` matches reserved identifier `COLOR`"},
		{[]string{"Green"}, "Enum variant `Color::green` matches reserved identifier `Green`"},
		{[]string{"pixel"}, "Sequence `Pixel` matches reserved identifier `pixel`"},
		{[]string{"Extra"}, "Field `Pixel::extra` matches reserved identifier `Extra`"},
		{[]string{"Name"}, "OneOf variant `Pixel::extra::name` matches reserved identifier `Name`"},
		{[]string{"default"}, "OneOf variant `Pixel::extra::inner::Default` matches reserved identifier `default`"},
	}
	for _, test := range tests {
		err := codegen.CheckReserved(s, test.reserved)
		if test.want == "" {
			testutil.ExpectNoError(t, err)
			continue
		}
		testutil.AssertError(t, err)
		testutil.ExpectEq(t, test.want, err.Error())
		var reservedErr *codegen.ReservedError
		testutil.ExpectTrue(t, errors.As(err, &reservedErr))
	}
}

type fakeGenerator struct {
	name string
}

func (g *fakeGenerator) Name() string { return g.name }

func (*fakeGenerator) ReservedIdentifiers(*codegen.Params) []string { return nil }

func (*fakeGenerator) Generate(context.Context, *schema.Schema, *codegen.Params) ([]codegen.OutputFile, error) {
	return nil, nil
}

func TestRegister(t *testing.T) {
	testutil.AssertNoError(t, codegen.Register(&fakeGenerator{name: "zz-test-b"}))
	testutil.AssertNoError(t, codegen.Register(&fakeGenerator{name: "zz-test-a"}))
	testutil.AssertError(t, codegen.Register(&fakeGenerator{name: "zz-test-a"}))
	testutil.AssertError(t, codegen.Register(&fakeGenerator{}))

	g, ok := codegen.Lookup("zz-test-a")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "zz-test-a", g.Name())
	_, ok = codegen.Lookup("zz-test-missing")
	testutil.ExpectFalse(t, ok)

	var names []string
	for _, g := range codegen.Generators() {
		names = append(names, g.Name())
	}
	testutil.ExpectSliceEq(t, []string{"zz-test-a", "zz-test-b"}, names)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	path, err := codegen.OutputPath("out", codegen.OutputFile{Path: []string{"a", "b.go"}})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, filepath.Join("out", "a", "b.go"), path)

	bad := [][]string{
		nil,
		{""},
		{"."},
		{"a", ".."},
		{"/etc"},
		{"a/b"},
		{`a\b`},
	}
	for _, parts := range bad {
		_, err := codegen.OutputPath("out", codegen.OutputFile{Path: parts})
		testutil.ExpectTrue(t, err != nil)
	}
}

func TestWriteOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := codegen.WriteOutputs(dir, []codegen.OutputFile{
		{Path: []string{"top.txt"}, Content: []byte("top")},
		{Path: []string{"sub", "nested.txt"}, Content: []byte("nested")},
	})
	testutil.AssertNoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "sub", "nested.txt"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "nested", string(got))

	// A bad path anywhere in the list prevents all output.
	err = codegen.WriteOutputs(dir, []codegen.OutputFile{
		{Path: []string{"first.txt"}, Content: []byte("first")},
		{Path: []string{".."}, Content: []byte("bad")},
	})
	testutil.AssertError(t, err)
	_, err = os.Stat(filepath.Join(dir, "first.txt"))
	testutil.ExpectTrue(t, os.IsNotExist(err))

	testutil.AssertError(t, codegen.WriteOutputs(dir, nil))
}
