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

package syntax_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/internal/testutil"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type strToken struct {
	kind    string
	content string
}

func tokensTest(t *testing.T, testName string) {
	t.Parallel()

	testsPath := fmt.Sprintf("tokens/%s.json", testName)
	t.Logf("reading test cases from %q", "testdata/"+testsPath)

	testsJSON, err := fs.ReadFile(testdata, testsPath)
	testutil.AssertNoError(t, err)

	tests := make(map[string][]map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(testsJSON))
	decoder.UseNumber()
	testutil.AssertNoError(t, decoder.Decode(&tests))

	for ii, test := range tests["expect_ok"] {
		src := test["source"].(string)
		var tokens []strToken
		for _, iface := range test["tokens"].([]any) {
			raw := iface.([]any)
			tokens = append(tokens, strToken{
				kind:    raw[0].(string),
				content: raw[1].(string),
			})
		}
		t.Run(fmt.Sprintf("expect_ok/%d", ii), func(t *testing.T) {
			testTokensOK(t, src, tokens)
		})
	}

	for ii, test := range tests["expect_err"] {
		t.Run(fmt.Sprintf("expect_err/%d", ii), func(t *testing.T) {
			testTokensErr(t, test)
		})
	}
}

func testTokensOK(t *testing.T, src string, want []strToken) {
	t.Logf("source: %q", src)

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	var got []strToken
	for {
		var token syntax.Token
		testutil.AssertNoError(t, tokens.Next(&token))
		if token.Kind == syntax.T_EOF {
			break
		}
		got = append(got, strToken{
			kind:    token.Kind.String(),
			content: src[:token.Len],
		})
		src = src[token.Len:]
	}

	testutil.ExpectSliceEq(t, want, got)
}

func testTokensErr(t *testing.T, test map[string]any) {
	src := test["source"].(string)
	t.Logf("source: %q", src)

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	for {
		var token syntax.Token
		err = tokens.Next(&token)
		if err != nil || token.Kind == syntax.T_EOF {
			break
		}
	}
	testutil.AssertError(t, err)
	expectSyntaxError(t, test, err.(*syntax.Error))
}

func expectSyntaxError(t *testing.T, test map[string]any, parseErr *syntax.Error) {
	t.Helper()

	errorName := test["error"].(string)
	expectErr, ok := syntaxErrors[errorName]
	if !ok {
		t.Fatalf("unknown parse error name %q", errorName)
	}

	testutil.ExpectEq(t, expectErr.Code(), parseErr.Code())
	if pattern := expectErr.MessagePattern(); pattern != nil {
		testutil.ExpectMatch(t, pattern, parseErr.Message())
	} else if message := expectErr.Message(); message != "" {
		testutil.ExpectEq(t, message, parseErr.Message())
	}

	expectSpan := testutil.SpanOrDie(t, test["error_span"])
	testutil.ExpectEq(t, expectSpan, parseErr.Span())
}

func TestComments(t *testing.T) {
	tokensTest(t, "comments")
}

func TestIdents(t *testing.T) {
	tokensTest(t, "idents")
}

func TestIntLiterals(t *testing.T) {
	tokensTest(t, "int_literals")
}

func TestMiscErrors(t *testing.T) {
	tokensTest(t, "misc_errors")
}

func TestNewlines(t *testing.T) {
	tokensTest(t, "newlines")
}

func TestSigils(t *testing.T) {
	tokensTest(t, "sigils")
}

func TestSpaces(t *testing.T) {
	tokensTest(t, "spaces")
}

func TestInvalidUtf8(t *testing.T) {
	t.Parallel()

	_, err := syntax.NewTokens([]byte("abc\xffdef"))
	testutil.AssertError(t, err)

	parseErr := err.(*syntax.Error)
	testutil.ExpectEq(t, 1001, parseErr.Code())
	testutil.ExpectEq(t, syntax.NewSpan(3, 1), parseErr.Span())
}

func TestTokenTooLong(t *testing.T) {
	t.Parallel()

	src := []byte(strings.Repeat("a", 70000))
	tokens, err := syntax.NewTokens(src)
	testutil.AssertNoError(t, err)

	var token syntax.Token
	err = tokens.Next(&token)
	testutil.AssertError(t, err)

	parseErr := err.(*syntax.Error)
	testutil.ExpectEq(t, 1004, parseErr.Code())
	testutil.ExpectEq(t, syntax.NewSpan(0, 70000), parseErr.Span())
}

func TestTokenKindStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind syntax.TokenKind
		want string
	}{
		{syntax.T_EOF, "EOF"},
		{syntax.T_SPACE, "SPACE"},
		{syntax.T_NEWLINE, "NEWLINE"},
		{syntax.T_COMMENT, "COMMENT"},
		{syntax.T_COLON, "COLON"},
		{syntax.T_SEMICOLON, "SEMICOLON"},
		{syntax.T_EQ, "EQ"},
		{syntax.T_OPEN_CURL, "OPEN_CURL"},
		{syntax.T_CLOSE_CURL, "CLOSE_CURL"},
		{syntax.T_OPEN_SQUARE, "OPEN_SQUARE"},
		{syntax.T_CLOSE_SQUARE, "CLOSE_SQUARE"},
		{syntax.T_INT_LIT, "INT_LIT"},
		{syntax.T_BIN_INT_LIT, "BIN_INT_LIT"},
		{syntax.T_OCT_INT_LIT, "OCT_INT_LIT"},
		{syntax.T_DEC_INT_LIT, "DEC_INT_LIT"},
		{syntax.T_HEX_INT_LIT, "HEX_INT_LIT"},
		{syntax.T_IDENT, "IDENT"},
		{syntax.TokenKind(200), "TokenKind(200)"},
	}
	for _, test := range tests {
		testutil.ExpectEq(t, test.want, test.kind.String())
	}
}
