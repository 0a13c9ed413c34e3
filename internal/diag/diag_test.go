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

package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type spanError struct {
	msg  string
	span syntax.Span
}

func (err *spanError) Error() string     { return err.msg }
func (err *spanError) String() string    { return err.msg }
func (err *spanError) Span() syntax.Span { return err.span }

func TestErrorExcerpt(t *testing.T) {
	src := []byte("enum A {\n\tb = 1\n}\n")
	var out strings.Builder
	p := NewPrinter(&out, ColorNever)

	p.Error("a.sb", src, &spanError{"E2001: Expected ';'", syntax.NewSpan(15, 1)})
	testutil.ExpectNoDiff(t, ""+
		"a.sb:2:7: error: E2001: Expected ';'\n"+
		"  2 | \tb = 1\n"+
		"    | \t     ^\n",
		out.String())
	testutil.ExpectEq(t, 1, p.ErrorCount())
}

func TestSpanCarets(t *testing.T) {
	src := []byte("sequence Päl { x: Missing; }")
	var out strings.Builder
	p := NewPrinter(&out, ColorNever)

	// "Missing" is 7 bytes starting after the two-byte ä.
	p.Warning("b.sb", src, &spanError{"W9: unused", syntax.NewSpan(19, 7)})
	testutil.ExpectNoDiff(t, ""+
		"b.sb:1:19: warning: W9: unused\n"+
		"  1 | sequence Päl { x: Missing; }\n"+
		"    |                   ^^^^^^^\n",
		out.String())
	testutil.ExpectEq(t, 1, p.WarningCount())
}

func TestSpanClampedToLine(t *testing.T) {
	src := []byte("abc\r\ndef")
	var out strings.Builder
	NewPrinter(&out, ColorNever).Error("c.sb", src, &spanError{"boom", syntax.NewSpan(1, 6)})
	testutil.ExpectNoDiff(t, ""+
		"c.sb:1:2: error: boom\n"+
		"  1 | abc\n"+
		"    |  ^^\n",
		out.String())
}

func TestWrappedError(t *testing.T) {
	src := []byte("x")
	var out strings.Builder
	inner := &spanError{"inner", syntax.NewSpan(0, 1)}
	NewPrinter(&out, ColorNever).Error("d.sb", src, fmt.Errorf("outer: %w", inner))
	testutil.ExpectTrue(t, strings.HasPrefix(out.String(), "d.sb:1:1: error: outer: inner\n"))
}

func TestPlainError(t *testing.T) {
	var out strings.Builder
	p := NewPrinter(&out, ColorNever)
	p.Error("", nil, errors.New("no such generator"))
	p.Error("e.sb", nil, errors.New("unreadable"))
	testutil.ExpectNoDiff(t, "error: no such generator\ne.sb: error: unreadable\n", out.String())
}

func TestColorAlways(t *testing.T) {
	var out strings.Builder
	NewPrinter(&out, ColorAlways).Error("", nil, errors.New("boom"))
	testutil.ExpectTrue(t, strings.Contains(out.String(), "\x1b["))

	out.Reset()
	NewPrinter(&out, ColorAuto).Error("", nil, errors.New("boom"))
	testutil.ExpectFalse(t, strings.Contains(out.String(), "\x1b["))
}

func TestParseColorMode(t *testing.T) {
	for _, mode := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		got, err := ParseColorMode(mode.String())
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, mode, got)
	}
	_, err := ParseColorMode("sometimes")
	testutil.AssertError(t, err)
}
