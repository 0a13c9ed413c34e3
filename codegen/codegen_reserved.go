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

package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

type ReservedTarget uint8

const (
	ReservedEnum ReservedTarget = iota
	ReservedEnumVariant
	ReservedSequence
	ReservedField
	ReservedVariant
)

func (t ReservedTarget) String() string {
	switch t {
	case ReservedEnum:
		return "Enum"
	case ReservedEnumVariant:
		return "Enum variant"
	case ReservedSequence:
		return "Sequence"
	case ReservedField:
		return "Field"
	case ReservedVariant:
		return "OneOf variant"
	}
	return fmt.Sprintf("ReservedTarget(%d)", uint8(t))
}

// ReservedError reports a schema name that collides with an identifier
// reserved by a generator.
type ReservedError struct {
	Target ReservedTarget

	// Path is the declaration name followed by any enclosing field and
	// variant names, ending with the conflicting name.
	Path    []string
	Matched string
}

func (err *ReservedError) Error() string {
	return fmt.Sprintf(
		"%s `%s` matches reserved identifier `%s`",
		err.Target, strings.Join(err.Path, "::"), err.Matched,
	)
}

// SnakeCase converts an identifier in any of the usual casing styles to
// lower_snake_case.
func SnakeCase(name string) string {
	runes := []rune(name)
	var out strings.Builder
	for ii, r := range runes {
		if r == '-' || r == ' ' || r == '_' {
			if out.Len() > 0 && !strings.HasSuffix(out.String(), "_") {
				out.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(r) && ii > 0 && out.Len() > 0 && !strings.HasSuffix(out.String(), "_") {
			prev := runes[ii-1]
			nextLower := ii+1 < len(runes) && unicode.IsLower(runes[ii+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				out.WriteByte('_')
			}
		}
		out.WriteRune(r)
	}
	return strings.TrimSuffix(cases.Lower(language.Und).String(out.String()), "_")
}

type reservedSet map[string]string

func (set reservedSet) match(name string) (string, bool) {
	matched, ok := set[SnakeCase(name)]
	return matched, ok
}

// CheckReserved returns a [*ReservedError] for the first name in s that
// matches one of reserved after both are converted to snake case.
func CheckReserved(s *schema.Schema, reserved []string) error {
	set := make(reservedSet, len(reserved))
	for _, word := range reserved {
		key := SnakeCase(word)
		if _, dup := set[key]; !dup {
			set[key] = word
		}
	}
	if len(set) == 0 {
		return nil
	}

	for _, enum := range s.Enums() {
		if matched, ok := set.match(enum.Name()); ok {
			return &ReservedError{ReservedEnum, []string{enum.Name()}, matched}
		}
		for _, v := range enum.Variants() {
			if matched, ok := set.match(v.Name); ok {
				return &ReservedError{ReservedEnumVariant, []string{enum.Name(), v.Name}, matched}
			}
		}
	}
	for _, seq := range s.Sequences() {
		if matched, ok := set.match(seq.Name()); ok {
			return &ReservedError{ReservedSequence, []string{seq.Name()}, matched}
		}
		for _, field := range seq.Fields() {
			path := []string{seq.Name(), field.Name}
			if matched, ok := set.match(field.Name); ok {
				return &ReservedError{ReservedField, path, matched}
			}
			if err := set.checkVariants(s, field.Type, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (set reservedSet) checkVariants(s *schema.Schema, id schema.TypeID, path []string) error {
	switch t := s.Type(id).(type) {
	case *schema.List:
		return set.checkVariants(s, t.Elem(), path)
	case *schema.OneOf:
		for _, v := range t.Variants() {
			variantPath := append(path[:len(path):len(path)], v.Name)
			if matched, ok := set.match(v.Name); ok {
				return &ReservedError{ReservedVariant, variantPath, matched}
			}
			if err := set.checkVariants(s, v.Type, variantPath); err != nil {
				return err
			}
		}
	}
	return nil
}
