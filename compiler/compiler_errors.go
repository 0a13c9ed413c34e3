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

package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type Error struct {
	code    uint32
	message string
	span    syntax.Span
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Span() syntax.Span {
	return err.span
}

func declTypeString(decl declNode) string {
	switch decl.(type) {
	case *syntax.Enum:
		return "enum"
	case *syntax.Sequence:
		return "sequence"
	default:
		panic("unreachable")
	}
}

func fmtPath(path []string) string {
	return strings.Join(path, "::")
}

func errDeclNameConflict(decl, prevDecl declNode) error {
	return &Error{
		code: 3000,
		message: fmt.Sprintf(
			"Declaration of %s '%s' conflicts with earlier declaration of %s '%s'",
			declTypeString(decl),
			decl.Name().Get(),
			declTypeString(prevDecl),
			prevDecl.Name().Get(),
		),
		span: decl.Name().Span(),
	}
}

func errTypeNotFound(name *syntax.Ident) error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Type '%s' not found", name.Get()),
		span:    name.Span(),
	}
}

func errEnumValueConflict(
	enumName string,
	item *syntax.EnumItem,
	prevName string,
) error {
	return &Error{
		code: 3002,
		message: fmt.Sprintf(
			"Value %d of enum item '%s' conflicts with earlier item '%s' in enum '%s'",
			item.Value().GetUint64(),
			item.Name().Get(),
			prevName,
			enumName,
		),
		span: item.Value().Span(),
	}
}

func errEnumItemNameConflict(enumName string, name *syntax.Ident) error {
	return &Error{
		code: 3003,
		message: fmt.Sprintf(
			"Enum item '%s' conflicts with earlier item in enum '%s'",
			name.Get(),
			enumName,
		),
		span: name.Span(),
	}
}

func errFieldNameConflict(seqName string, name *syntax.Ident) error {
	return &Error{
		code: 3004,
		message: fmt.Sprintf(
			"Field '%s' conflicts with earlier field in sequence '%s'",
			name.Get(),
			seqName,
		),
		span: name.Span(),
	}
}

func errVariantNameConflict(path []string, name *syntax.Ident) error {
	return &Error{
		code: 3005,
		message: fmt.Sprintf(
			"Variant '%s' conflicts with earlier variant in oneof %s",
			name.Get(),
			fmtPath(path),
		),
		span: name.Span(),
	}
}

func errTooManyVariants(path []string, count int, node *syntax.OneOf) error {
	return &Error{
		code: 3006,
		message: fmt.Sprintf(
			"OneOf %s has %d variants (maximum %d)",
			fmtPath(path),
			count,
			math.MaxUint8,
		),
		span: node.Keyword().Span(),
	}
}

func errCyclicLayout(cycle []string, node *syntax.TypeName) error {
	return &Error{
		code: 3007,
		message: fmt.Sprintf(
			"Sequence '%s' embeds itself: %s",
			cycle[0],
			strings.Join(cycle, " -> "),
		),
		span: node.Span(),
	}
}

func errStaticSizeTooLarge(name *syntax.Ident, size uint32) error {
	return &Error{
		code: 3008,
		message: fmt.Sprintf(
			"Static size of sequence '%s' (%d bytes) exceeds maximum (%d bytes)",
			name.Get(),
			size,
			math.MaxUint16,
		),
		span: name.Span(),
	}
}

func errReservedTypeName(decl declNode) error {
	return &Error{
		code: 3009,
		message: fmt.Sprintf(
			"Name '%s' of %s is reserved for a builtin type",
			decl.Name().Get(),
			declTypeString(decl),
		),
		span: decl.Name().Span(),
	}
}

func errEmptyOneOf(path []string, node *syntax.OneOf) error {
	return &Error{
		code:    3010,
		message: fmt.Sprintf("OneOf %s has no variants", fmtPath(path)),
		span:    node.Keyword().Span(),
	}
}
