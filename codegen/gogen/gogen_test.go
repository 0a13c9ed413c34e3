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

package gogen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/schema"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

const pixelSrc = `
enum Color { red = 0; dark_green = 300; }
sequence Point { x: i16; y: i16; }
sequence Pixel {
    color: Color;
    name: str;
    data: [u8];
    history: [[u32]];
    points: [Point];
    origin: Point;
    brightness: f32;
    visible: bool;
    extra: oneof {
        id: u64;
        label: str;
        at: Point;
        shade: Color;
        parts: [oneof { raw: [i8]; code: i32; }];
    };
}
sequence Empty {}
`

func compile(t *testing.T, src string) *schema.Schema {
	t.Helper()
	parsed, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed, compiler.WithSchemaName("pixel"))
	if len(result.Errors) > 0 {
		t.Fatalf("Compile: %v", result.Errors)
	}
	return result.Schema()
}

// declNames returns the top-level names declared in src, with methods
// written as "Recv.Method".
func declNames(t *testing.T, src []byte) (string, map[string]bool) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "pixel.sb.go", src, parser.ParseComments)
	testutil.AssertNoError(t, err)

	names := make(map[string]bool)
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					names[spec.Name.Name] = true
				case *ast.ValueSpec:
					for _, name := range spec.Names {
						names[name.Name] = true
					}
				}
			}
		case *ast.FuncDecl:
			if decl.Recv == nil {
				names[decl.Name.Name] = true
				continue
			}
			recv := decl.Recv.List[0].Type
			if star, ok := recv.(*ast.StarExpr); ok {
				recv = star.X
			}
			names[recv.(*ast.Ident).Name+"."+decl.Name.Name] = true
		}
	}
	return file.Name.Name, names
}

func TestEmit(t *testing.T) {
	t.Parallel()

	s := compile(t, pixelSrc)
	src, err := Emit(s, Options{
		Package: "pixel",
		Runtime: DefaultRuntime,
		Source:  "pixel.sb",
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, strings.HasPrefix(string(src), "// Code generated by sbc. DO NOT EDIT.\n"))

	pkg, names := declNames(t, src)
	testutil.ExpectEq(t, "pixel", pkg)
	for _, want := range []string{
		"Color",
		"Color_Red",
		"Color_DarkGreen",
		"Color.String",
		"Color.StaticSize",
		"Color.WriteComponent",
		"PointWriter",
		"PointReader",
		"NewPointReader",
		"PixelWriter",
		"PixelWriter.StaticSize",
		"PixelWriter.WriteComponent",
		"PixelWriter.Write",
		"PixelReader",
		"PixelReader.Addr",
		"PixelReader.Color",
		"PixelReader.History",
		"PixelReader.Extra",
		"PixelExtra_Id",
		"PixelExtra_Parts",
		"PixelExtraWriter",
		"NewPixelExtraWriterLabel",
		"NewPixelExtraWriterAt",
		"PixelExtraReader.Tag",
		"PixelExtraReader.AsShade",
		"PixelExtraParts_Raw",
		"NewPixelExtraPartsWriterRaw",
		"PixelExtraPartsReader.AsCode",
		"EmptyWriter",
		"NewEmptyReader",
	} {
		if !names[want] {
			t.Errorf("generated code does not declare %s", want)
		}
	}

	// Alignment is up to gofmt.
	text := strings.Join(strings.Fields(string(src)), " ")
	for _, want := range []string{
		"Color Color",
		"Data simplebuffers.Bytes",
		"History simplebuffers.List[simplebuffers.List[simplebuffers.U32]]",
		"Points simplebuffers.List[*PointWriter]",
		"Origin PointWriter",
		"Extra PixelExtraWriter",
		"simplebuffers.PutU16(buf, dest, uint16(w.Color))",
		"simplebuffers.PutF32(buf, dest+20, w.Brightness)",
		"dynCursor, err = w.Extra.WriteComponent(buf, dest+25, dynCursor)",
		"return PixelReader{buf: buf, addr: simplebuffers.Addr(0, index, 28)}",
		"func (r PixelReader) Points() simplebuffers.ListReader[PointReader] {",
		"func (r PixelExtraReader) AsLabel() (v string, ok bool) {",
		"func NewPixelExtraWriterId(v uint64) PixelExtraWriter {",
		"func NewPixelExtraPartsWriterRaw(v simplebuffers.Int8s) PixelExtraPartsWriter {",
		`return "Color(" + strconv.FormatUint(uint64(v), 10) + ")"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("generated code does not contain %q", want)
		}
	}
}

func TestEmitEmptySchema(t *testing.T) {
	t.Parallel()

	s := compile(t, "")
	src, err := Emit(s, Options{Package: "empty", Runtime: DefaultRuntime})
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, "// Code generated by sbc. DO NOT EDIT.\n\npackage empty\n", string(src))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	g, ok := codegen.Lookup(Name)
	if !ok {
		t.Fatalf("generator %q is not registered", Name)
	}

	s := compile(t, pixelSrc)
	files, err := g.Generate(context.Background(), s, &codegen.Params{
		FileName: "my-pixel",
		DestDir:  "out",
		Args:     []string{"--package=pixels"},
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(files))
	testutil.ExpectSliceEq(t, []string{"my-pixel.sb.go"}, files[0].Path)

	pkg, _ := declNames(t, files[0].Content)
	testutil.ExpectEq(t, "pixels", pkg)
	testutil.ExpectTrue(t, strings.Contains(string(files[0].Content), "// source: my-pixel.sb\n"))
}

func TestGenerateArgs(t *testing.T) {
	t.Parallel()

	s := compile(t, pixelSrc)
	for _, args := range [][]string{
		{"--bogus"},
		{"--package=Not-Valid"},
		{"extra"},
		{"--runtime="},
	} {
		_, err := New().Generate(context.Background(), s, &codegen.Params{
			FileName: "pixel",
			Args:     args,
		})
		if err == nil {
			t.Errorf("Generate(%q): expected error", args)
		}
	}
}

func TestDefaultPackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fileName string
		want     string
	}{
		{"pixel", "pixel"},
		{"My-Schema", "myschema"},
		{"2d_shapes", "sb2dshapes"},
		{"type", "type_"},
		{"---", "schema"},
	}
	for _, test := range tests {
		testutil.ExpectEq(t, test.want, packageName(test.fileName))
	}
}

func TestExportedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"x", "X"},
		{"dark_green", "DarkGreen"},
		{"alreadyCamel", "AlreadyCamel"},
		{"HTTPServer", "HTTPServer"},
		{"trailing_", "Trailing"},
	}
	for _, test := range tests {
		testutil.ExpectEq(t, test.want, exportedName(test.name))
	}
	testutil.ExpectEq(t, "PixelExtraParts", pathName([]string{"Pixel", "extra", "parts"}))
}

func TestReservedIdentifiers(t *testing.T) {
	t.Parallel()

	s := compile(t, `sequence Msg { type: u8; }`)
	err := codegen.CheckReserved(s, New().ReservedIdentifiers(nil))
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, "Field `Msg::type` matches reserved identifier `type`", err.Error())

	s = compile(t, `sequence Msg { static_size: u8; }`)
	testutil.AssertError(t, codegen.CheckReserved(s, New().ReservedIdentifiers(nil)))

	s = compile(t, pixelSrc)
	testutil.ExpectNoError(t, codegen.CheckReserved(s, New().ReservedIdentifiers(nil)))
}

func TestEmitNameConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		ident string
		msg   string
	}{
		{
			name:  "oneof path and sequence",
			src:   `sequence Foo { bar: oneof { a: u8; }; } sequence FooBar { x: u8; }`,
			ident: "FooBarWriter",
			msg:   "go generator: sequence `FooBar` and oneof `Foo::bar` both generate Go identifier `FooBarWriter`",
		},
		{
			name:  "enum variants",
			src:   `enum E { a_b = 0; aB = 1; }`,
			ident: "E_AB",
			msg:   "go generator: enum variant `E::a_b` and enum variant `E::aB` both generate Go identifier `E_AB`",
		},
		{
			name:  "fields",
			src:   `sequence Msg { a_b: u8; aB: u16; }`,
			ident: "MsgWriter.AB",
		},
		{
			name:  "oneof variants",
			src:   `sequence Msg { v: oneof { a_b: u8; aB: u16; }; }`,
			ident: "MsgV_AB",
		},
		{
			name:  "reader constructor",
			src:   `sequence Msg { x: u8; } sequence NewMsg { y: u8; }`,
			ident: "NewMsgReader",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src, err := Emit(compile(t, test.src), Options{Package: "collide", Runtime: DefaultRuntime})
			testutil.AssertError(t, err)
			testutil.ExpectEq(t, 0, len(src))

			var conflict *NameConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("Expected *NameConflictError, got: %v", err)
			}
			testutil.ExpectEq(t, test.ident, conflict.Ident)
			if test.msg != "" {
				testutil.ExpectEq(t, test.msg, err.Error())
			}
		})
	}
}

func TestGenerateNameConflict(t *testing.T) {
	t.Parallel()

	s := compile(t, `sequence Foo { bar: oneof { a: u8; }; } sequence FooBar { x: u8; }`)
	files, err := New().Generate(context.Background(), s, &codegen.Params{FileName: "collide"})
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, 0, len(files))
}

func squashSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// internal/pixelsb holds checked-in output whose tests round-trip data
// through the generated code. It must match what Emit produces today.
func TestCheckedInOutput(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("internal", "pixelsb")
	schemaSrc, err := os.ReadFile(filepath.Join(dir, "pixel.sb"))
	testutil.AssertNoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "pixel.sb.go"))
	testutil.AssertNoError(t, err)

	got, err := Emit(compile(t, string(schemaSrc)), Options{
		Package: "pixelsb",
		Runtime: DefaultRuntime,
		Source:  "pixel.sb",
	})
	testutil.AssertNoError(t, err)
	if squashSpace(string(want)) != squashSpace(string(got)) {
		testutil.ExpectNoDiff(t, string(want), string(got))
	}
}
