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

package testutil

import (
	"cmp"
	"encoding/json"
	"io/fs"
	"regexp"
	"slices"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type SchemaError struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

func LoadSchemaErrors(testdata fs.FS) (map[string]*SchemaError, error) {
	diags, err := loadDiagnostics(testdata, "diagnostics/schema_errors.json", "schema error")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*SchemaError, len(diags))
	for key, diag := range diags {
		out[key] = &SchemaError{
			Key:     key,
			Code:    diag.code,
			Message: diag.message,
			Pattern: diag.pattern,
		}
	}
	return out, nil
}

type SchemaWarning struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

func LoadSchemaWarnings(testdata fs.FS) (map[string]*SchemaWarning, error) {
	diags, err := loadDiagnostics(testdata, "diagnostics/schema_warnings.json", "schema warning")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*SchemaWarning, len(diags))
	for key, diag := range diags {
		out[key] = &SchemaWarning{
			Key:     key,
			Code:    diag.code,
			Message: diag.message,
			Pattern: diag.pattern,
		}
	}
	return out, nil
}

type expectedSpan struct {
	Start uint32 `json:"start"`
	Len   uint32 `json:"len"`
}

type ExpectedError struct {
	SchemaError
	Span syntax.Span
}

func LoadExpectedErrors(
	t *testing.T,
	schemaErrors map[string]*SchemaError,
	testdata fs.FS,
	jsonPath string,
) []*ExpectedError {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	var raw struct {
		Errors []struct {
			Error string       `json:"error"`
			Span  expectedSpan `json:"error_span"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatal(err)
	}

	var out []*ExpectedError
	for _, raw := range raw.Errors {
		schemaErr, ok := schemaErrors[raw.Error]
		if !ok {
			t.Fatalf("unknown schema error name %q", raw.Error)
		}
		out = append(out, &ExpectedError{
			SchemaError: *schemaErr,
			Span:        syntax.NewSpan(raw.Span.Start, raw.Span.Len),
		})
	}

	slices.SortFunc(out, func(a, b *ExpectedError) int {
		if x := cmp.Compare(a.Span.Start(), b.Span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out
}

type ExpectedWarning struct {
	SchemaWarning
	Span syntax.Span
}

func LoadExpectedWarnings(
	t *testing.T,
	schemaWarnings map[string]*SchemaWarning,
	testdata fs.FS,
	jsonPath string,
) []*ExpectedWarning {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	var raw struct {
		Warnings []struct {
			Warning string       `json:"warning"`
			Span    expectedSpan `json:"warning_span"`
		} `json:"warnings"`
	}
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatal(err)
	}

	var out []*ExpectedWarning
	for _, raw := range raw.Warnings {
		warning, ok := schemaWarnings[raw.Warning]
		if !ok {
			t.Fatalf("unknown schema warning name %q", raw.Warning)
		}
		out = append(out, &ExpectedWarning{
			SchemaWarning: *warning,
			Span:          syntax.NewSpan(raw.Span.Start, raw.Span.Len),
		})
	}

	slices.SortFunc(out, func(a, b *ExpectedWarning) int {
		if x := cmp.Compare(a.Span.Start(), b.Span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out
}
