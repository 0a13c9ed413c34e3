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

package sanitycheck_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/codegen/sanitycheck"
	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/schema"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

const pixelSchema = `
enum Color { red = 0; blue = 2; }

sequence Pixel {
    color: Color;
    alpha: u8;
    label: str;
    extra: oneof { id: u16; tags: [str]; };
}
`

func compilePixel(t *testing.T) *schema.Schema {
	t.Helper()
	parsed, err := syntax.Parse([]byte(pixelSchema))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed, compiler.WithSchemaName("pixel"))
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	if result.Schema() == nil {
		t.FailNow()
	}
	return result.Schema()
}

func TestGenerate(t *testing.T) {
	var stdout strings.Builder
	g := sanitycheck.New(&stdout)

	files, err := g.Generate(context.Background(), compilePixel(t), &codegen.Params{
		FileName: "pixel",
		Args:     []string{"--stdout"},
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(files))
	testutil.ExpectSliceEq(t, []string{"pixel.layout.txt"}, files[0].Path)
	testutil.ExpectNoDiff(t, string(files[0].Content), stdout.String())

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "pixel", files[0].Content)
}

func TestGenerateQuiet(t *testing.T) {
	var stdout strings.Builder
	g := sanitycheck.New(&stdout)

	_, err := g.Generate(context.Background(), compilePixel(t), &codegen.Params{FileName: "pixel"})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "", stdout.String())

	_, err = g.Generate(context.Background(), compilePixel(t), &codegen.Params{
		FileName: "pixel",
		Args:     []string{"--verbose"},
	})
	testutil.AssertError(t, err)
}

func TestRegistered(t *testing.T) {
	g, ok := codegen.Lookup(sanitycheck.Name)
	testutil.ExpectTrue(t, ok)
	if ok {
		testutil.ExpectEq(t, sanitycheck.Name, g.Name())
	}
}
