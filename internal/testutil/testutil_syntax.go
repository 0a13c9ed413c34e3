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
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/ZachDaChampion/simple-buffers/syntax"
)

// TestdataFS returns the repository's shared testdata directory.
func TestdataFS() (fs.FS, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("testutil: unable to locate source file")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	return os.DirFS(root), nil
}

type SyntaxError struct {
	code    uint32
	message string
	pattern *regexp.Regexp
}

func (err *SyntaxError) Code() uint32 {
	return err.code
}

func (err *SyntaxError) Message() string {
	return err.message
}

func (err *SyntaxError) MessagePattern() *regexp.Regexp {
	return err.pattern
}

func LoadSyntaxErrors(testdata fs.FS) (map[string]*SyntaxError, error) {
	rawErrors, err := loadDiagnostics(testdata, "diagnostics/syntax_errors.json", "syntax error")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*SyntaxError, len(rawErrors))
	for key, raw := range rawErrors {
		out[key] = &SyntaxError{
			code:    raw.code,
			message: raw.message,
			pattern: raw.pattern,
		}
	}
	return out, nil
}

type diagnostic struct {
	code    uint32
	message string
	pattern *regexp.Regexp
}

// loadDiagnostics reads a registry of named diagnostics. Keys starting
// with '_' reserve a code without defining a diagnostic.
func loadDiagnostics(testdata fs.FS, path, what string) (map[string]diagnostic, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, path)
	if err != nil {
		return nil, err
	}

	var rawDiags map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawDiags); err != nil {
		return nil, err
	}

	out := make(map[string]diagnostic, len(rawDiags))
	codes := make(map[uint32]struct{}, len(rawDiags))
	for key, raw := range rawDiags {
		if key[0] == '_' {
			if raw.Code != 0 {
				if _, conflict := codes[raw.Code]; conflict {
					return nil, fmt.Errorf("duplicate %s code %d", what, raw.Code)
				}
				codes[raw.Code] = struct{}{}
			}
			continue
		}

		if raw.Code == 0 {
			return nil, fmt.Errorf("%s %q has no code", what, key)
		}
		if _, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf("duplicate %s code %d", what, raw.Code)
		}
		codes[raw.Code] = struct{}{}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = diagnostic{
			code:    raw.Code,
			message: raw.Message,
			pattern: pattern,
		}
	}
	return out, nil
}

// SpanOrDie converts a decoded {"start": N, "len": N} object into a Span.
func SpanOrDie(t *testing.T, value any) syntax.Span {
	t.Helper()
	obj, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected span object, got %#v", value)
	}
	return syntax.NewSpan(uint32OrDie(t, obj["start"]), uint32OrDie(t, obj["len"]))
}

func uint32OrDie(t *testing.T, value any) uint32 {
	t.Helper()
	num, ok := value.(json.Number)
	if !ok {
		t.Fatalf("expected number, got %#v", value)
	}
	n, err := num.Int64()
	if err != nil || n < 0 || n > 0xFFFFFFFF {
		t.Fatalf("invalid span value %q", num)
	}
	return uint32(n)
}
