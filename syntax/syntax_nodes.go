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

package syntax

import (
	"bytes"
	"iter"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node

	UnparseTo(buf *bytes.Buffer)
}

// TypeExpr is the type of a field or oneof variant: one of [*TypeName],
// [*ListType], or [*OneOf].
type TypeExpr interface {
	Node
	isTypeExpr()
}

func Unparse(node Node) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

func iterNodes[T Node](nodes []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, node := range nodes {
			if !yield(node) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_yield func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

type branchNode struct {
	span       Span
	childNodes []Node
}

func (n *branchNode) Span() Span {
	return n.span
}

func (n *branchNode) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *branchNode) privChildren() []Node {
	return n.childNodes
}

func (n *branchNode) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

// Leaves {{{

type Space struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Space)(nil)

func (n *Space) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Space) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

type Newline struct {
	leafNode
	start uint32
	crlf  bool
}

var _ Node = (*Newline)(nil)

func (n *Newline) Span() Span {
	var len uint32
	if n.crlf {
		len = 2
	} else {
		len = 1
	}
	return Span{
		start: n.start,
		len:   len,
	}
}

func (n *Newline) UnparseTo(buf *bytes.Buffer) {
	if n.crlf {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
}

type Comment struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Comment)(nil)

func (n *Comment) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Comment) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Comment) Text() string {
	return n.raw
}

// IsDocComment reports whether the comment starts with "///".
func (n *Comment) IsDocComment() bool {
	return strings.HasPrefix(n.raw, "///")
}

type IntLit struct {
	leafNode
	raw   string
	value uint64
	start uint32
}

var _ Node = (*IntLit)(nil)

func (n *IntLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *IntLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newIntLit(token string, kind TokenKind, start uint32) (*IntLit, error) {
	base := 10
	valueStr := token
	switch kind {
	case T_BIN_INT_LIT:
		base = 2
		valueStr = valueStr[2:]
	case T_OCT_INT_LIT:
		base = 8
		valueStr = valueStr[2:]
	case T_DEC_INT_LIT:
		base = 10
		valueStr = valueStr[2:]
	case T_HEX_INT_LIT:
		base = 16
		valueStr = valueStr[2:]
	}
	valueStr = strings.ReplaceAll(valueStr, "_", "")

	value, err := strconv.ParseUint(valueStr, base, 64)
	if err != nil {
		return nil, errIntLitTooLarge(token, start)
	}
	return &IntLit{
		raw:   token,
		value: value,
		start: start,
	}, nil
}

func (n *IntLit) GetUint64() uint64 {
	return n.value
}

type Sigil struct {
	leafNode
	raw   byte
	start uint32
}

var _ Node = (*Sigil)(nil)

func (n *Sigil) Span() Span {
	return Span{
		start: n.start,
		len:   1,
	}
}

func (n *Sigil) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte(n.raw)
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)

func (n *Ident) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Ident) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Ident) Get() string {
	return n.raw
}

type Keyword struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Keyword)(nil)

func (n *Keyword) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Keyword) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

// }}}

type Schema struct {
	branchNode
}

var _ Node = (*Schema)(nil)

// Decls yields the top-level [*Enum] and [*Sequence] declarations in source
// order.
func (n *Schema) Decls() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range n.childNodes {
			switch child.(type) {
			case *Enum, *Sequence:
				if !yield(child) {
					return
				}
			}
		}
	}
}

type Enum struct {
	branchNode
	name  *Ident
	items []*EnumItem
}

var _ Node = (*Enum)(nil)

func (n *Enum) Name() *Ident {
	return n.name
}

func (n *Enum) Items() iter.Seq[*EnumItem] {
	return iterNodes(n.items)
}

func (n *Enum) Len() int {
	return len(n.items)
}

type EnumItem struct {
	branchNode
	name  *Ident
	value *IntLit
}

var _ Node = (*EnumItem)(nil)

func (n *EnumItem) Name() *Ident {
	return n.name
}

func (n *EnumItem) Value() *IntLit {
	return n.value
}

type Sequence struct {
	branchNode
	name   *Ident
	fields []*Field
}

var _ Node = (*Sequence)(nil)

func (n *Sequence) Name() *Ident {
	return n.name
}

func (n *Sequence) Fields() iter.Seq[*Field] {
	return iterNodes(n.fields)
}

func (n *Sequence) Len() int {
	return len(n.fields)
}

// Field is a named, typed member of a sequence or a variant of a oneof.
type Field struct {
	branchNode
	name      *Ident
	fieldType TypeExpr
}

var _ Node = (*Field)(nil)

func (n *Field) Name() *Ident {
	return n.name
}

func (n *Field) Type() TypeExpr {
	return n.fieldType
}

type TypeName struct {
	branchNode
	name *Ident
}

var _ TypeExpr = (*TypeName)(nil)

func (*TypeName) isTypeExpr() {}

func (n *TypeName) Name() *Ident {
	return n.name
}

type ListType struct {
	branchNode
	elem TypeExpr
}

var _ TypeExpr = (*ListType)(nil)

func (*ListType) isTypeExpr() {}

func (n *ListType) Elem() TypeExpr {
	return n.elem
}

type OneOf struct {
	branchNode
	keyword  *Keyword
	variants []*Field
}

var _ TypeExpr = (*OneOf)(nil)

func (*OneOf) isTypeExpr() {}

// Keyword returns the "oneof" keyword, which locates the oneof in
// diagnostics.
func (n *OneOf) Keyword() *Keyword {
	return n.keyword
}

func (n *OneOf) Variants() iter.Seq[*Field] {
	return iterNodes(n.variants)
}

func (n *OneOf) Len() int {
	return len(n.variants)
}
