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

// Package syntax implements a lossless parser for SimpleBuffers schemas.
//
// A schema declares enums and sequences:
//
//	enum Color { red = 0; green = 1; }
//	sequence Pixel {
//	    color: Color;
//	    label: str;
//	    history: [u32];
//	    extra: oneof { pos: [i16]; name: str; };
//	}
//
// Every node records its span in the source, and unparsing the tree
// reproduces the source exactly (including whitespace and comments).
package syntax

import (
	"bytes"
	"unicode/utf8"
)

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (f parseOption) apply(opts *ParseOptions) { f(opts) }

// WithoutTrivia drops spaces, newlines, and comments from the parsed tree.
// The resulting tree no longer unparses to its source.
func WithoutTrivia() ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.saveSpaces = false
		opts.saveNewlines = false
		opts.saveComments = false
	})
}

func Parse(src []uint8, opts ...ParseOption) (*Schema, error) {
	return NewParseOptions(opts...).ParseSchema(src)
}

// Position converts a byte offset into a 1-based line and column. Columns
// count runes, and a CRLF pair ends a single line.
func Position(src []byte, offset uint32) (line, col int) {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	prefix := src[:offset]
	line = 1 + bytes.Count(prefix, []byte{'\n'})
	if idx := bytes.LastIndexByte(prefix, '\n'); idx >= 0 {
		prefix = prefix[idx+1:]
	}
	return line, 1 + utf8.RuneCount(prefix)
}

type ParseOptions struct {
	saveSpaces   bool
	saveNewlines bool
	saveComments bool
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOpts := &ParseOptions{
		saveSpaces:   true,
		saveNewlines: true,
		saveComments: true,
	}
	for _, opt := range opts {
		opt.apply(parseOpts)
	}
	return parseOpts
}

func (opts *ParseOptions) ParseSchema(src []uint8) (*Schema, error) {
	ctx, err := newParseCtx[Schema](opts, src)
	if err != nil {
		return nil, err
	}
	return parseSchema(ctx)
}

func (opts *ParseOptions) ParseEnum(src []uint8) (*Enum, error) {
	ctx, err := newParseCtx[Enum](opts, src)
	if err != nil {
		return nil, err
	}
	return parseEnum(ctx)
}

func (opts *ParseOptions) ParseSequence(src []uint8) (*Sequence, error) {
	ctx, err := newParseCtx[Sequence](opts, src)
	if err != nil {
		return nil, err
	}
	return parseSequence(ctx)
}

type parseCtx[T any] struct {
	src        []uint8
	opts       *ParseOptions
	tokens     *Tokens
	childNodes []Node
	haveToken  bool
	token      Token
	err        error
	consumed   uint32
	offset     uint32
}

func newParseCtx[T any](opts *ParseOptions, src []uint8) (*parseCtx[T], error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &parseCtx[T]{
		src:    src,
		opts:   opts,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx[T]) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

func (ctx *parseCtx[T]) readToken() []uint8 {
	return ctx.src[:ctx.token.Len]
}

func (ctx *parseCtx[T]) consumeToken(child Node) {
	ctx.src = ctx.src[ctx.token.Len:]
	ctx.consumed += uint32(ctx.token.Len)
	ctx.offset += uint32(ctx.token.Len)
	ctx.haveToken = false
	if child != nil {
		ctx.childNodes = append(ctx.childNodes, child)
	}
}

func (ctx *parseCtx[T]) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx[T]) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

func (ctx *parseCtx[T]) consumeSpace() {
	if !ctx.opts.saveSpaces {
		ctx.consumeToken(nil)
		return
	}

	tokenBytes := ctx.readToken()
	var token string
	if bytes.Equal(tokenBytes, []uint8{' '}) {
		token = " "
	} else {
		token = string(tokenBytes)
	}
	ctx.consumeToken(&Space{
		raw:   token,
		start: ctx.offset,
	})
}

// trivia consumes any run of spaces, newlines, and comments.
func (ctx *parseCtx[T]) trivia() {
	for range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return
		}
		switch ctx.token.Kind {
		case T_SPACE:
			ctx.consumeSpace()
		case T_NEWLINE:
			var child Node
			if ctx.opts.saveNewlines {
				child = &Newline{
					crlf:  ctx.token.Len == 2,
					start: ctx.offset,
				}
			}
			ctx.consumeToken(child)
		case T_COMMENT:
			var child Node
			if ctx.opts.saveComments {
				child = &Comment{
					raw:   string(ctx.readToken()),
					start: ctx.offset,
				}
			}
			ctx.consumeToken(child)
		default:
			return
		}
	}
}

func (ctx *parseCtx[T]) sigil(kind TokenKind) {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) trySigil(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != kind {
		return false
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
	return true
}

func (ctx *parseCtx[T]) peekKeyword(keyword string) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	return ctx.token.Kind == T_IDENT && string(ctx.readToken()) == keyword
}

func (ctx *parseCtx[T]) tryKeyword(keyword string) *Keyword {
	if !ctx.peekKeyword(keyword) {
		return nil
	}
	node := &Keyword{
		raw:   keyword,
		start: ctx.offset,
	}
	ctx.consumeToken(node)
	return node
}

func (ctx *parseCtx[T]) ident() *Ident {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ident := &Ident{
		raw:   token,
		start: ctx.offset,
	}
	ctx.consumeToken(ident)
	return ident
}

func (ctx *parseCtx[T]) int() *IntLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())

	switch ctx.token.Kind {
	case T_INT_LIT, T_BIN_INT_LIT, T_OCT_INT_LIT, T_DEC_INT_LIT, T_HEX_INT_LIT:
	default:
		ctx.err = errExpectedIntLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}

	intNode, err := newIntLit(token, ctx.token.Kind, ctx.offset)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(intNode)
	return intNode
}

func (ctx *parseCtx[T]) finish(
	build func(node branchNode) *T,
) (*T, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}
	return build(branchNode{
		span: Span{
			start: ctx.offset - ctx.consumed,
			len:   ctx.consumed,
		},
		childNodes: ctx.childNodes,
	}), nil
}

func parseChild[P any, C any, PtrC interface {
	*C
	Node
}](
	ctx *parseCtx[P],
	parseChildFn func(*parseCtx[C]) (PtrC, error),
) (*C, bool) {
	if ctx.err != nil {
		return nil, false
	}
	childCtx := &parseCtx[C]{
		src:       ctx.src,
		opts:      ctx.opts,
		tokens:    ctx.tokens,
		haveToken: ctx.haveToken,
		token:     ctx.token,
		offset:    ctx.offset,
	}
	child, err := parseChildFn(childCtx)
	if err != nil {
		ctx.err = err
		return nil, false
	}

	ctx.haveToken = childCtx.haveToken
	ctx.token = childCtx.token

	if childCtx.consumed == 0 {
		return nil, false
	}
	ctx.src = ctx.src[childCtx.consumed:]
	ctx.consumed += childCtx.consumed
	ctx.offset = childCtx.offset
	ctx.childNodes = append(ctx.childNodes, PtrC(child))
	return child, true
}

func parseSchema(ctx *parseCtx[Schema]) (*Schema, error) {
	for range ctx.loop {
		ctx.trivia()
		if err := ctx.ensureToken(); err != nil {
			return nil, err
		}
		if ctx.token.Kind == T_EOF {
			break
		}

		var ok bool
		if ctx.peekKeyword("enum") {
			_, ok = parseChild(ctx, parseEnum)
		} else if ctx.peekKeyword("sequence") {
			_, ok = parseChild(ctx, parseSequence)
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			if ctx.token.Kind == T_IDENT {
				return nil, errUnknownDeclaration(token, span)
			}
			return nil, errExpectedDeclaration(ctx.token.Kind, token, span)
		}
	}

	return ctx.finish(func(node branchNode) *Schema {
		return &Schema{node}
	})
}

func parseEnum(ctx *parseCtx[Enum]) (*Enum, error) {
	if ctx.tryKeyword("enum") == nil {
		return nil, nil
	}
	ctx.trivia()
	name := ctx.ident()
	ctx.trivia()

	var items []*EnumItem
	ctx.sigil(T_OPEN_CURL)
	ctx.trivia()
	for range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if item, ok := parseChild(ctx, parseEnumItem); ok {
			items = append(items, item)
		}
		ctx.trivia()
	}

	return ctx.finish(func(node branchNode) *Enum {
		return &Enum{
			branchNode: node,
			name:       name,
			items:      items,
		}
	})
}

func parseEnumItem(ctx *parseCtx[EnumItem]) (*EnumItem, error) {
	name := ctx.ident()
	ctx.trivia()
	ctx.sigil(T_EQ)
	ctx.trivia()
	value := ctx.int()
	ctx.trivia()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(node branchNode) *EnumItem {
		return &EnumItem{
			branchNode: node,
			name:       name,
			value:      value,
		}
	})
}

func parseSequence(ctx *parseCtx[Sequence]) (*Sequence, error) {
	if ctx.tryKeyword("sequence") == nil {
		return nil, nil
	}
	ctx.trivia()
	name := ctx.ident()
	ctx.trivia()
	fields := parseFields(ctx)

	return ctx.finish(func(node branchNode) *Sequence {
		return &Sequence{
			branchNode: node,
			name:       name,
			fields:     fields,
		}
	})
}

func parseFields[T any](ctx *parseCtx[T]) []*Field {
	var fields []*Field
	ctx.sigil(T_OPEN_CURL)
	ctx.trivia()
	for range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if field, ok := parseChild(ctx, parseField); ok {
			fields = append(fields, field)
		}
		ctx.trivia()
	}
	return fields
}

func parseField(ctx *parseCtx[Field]) (*Field, error) {
	name := ctx.ident()
	ctx.trivia()
	ctx.sigil(T_COLON)
	ctx.trivia()
	fieldType := parseTypeExpr(ctx)
	ctx.trivia()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(node branchNode) *Field {
		return &Field{
			branchNode: node,
			name:       name,
			fieldType:  fieldType,
		}
	})
}

func parseTypeExpr[T any](ctx *parseCtx[T]) TypeExpr {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	switch ctx.token.Kind {
	case T_OPEN_SQUARE:
		if child, ok := parseChild(ctx, parseListType); ok {
			return child
		}
	case T_IDENT:
		if ctx.peekKeyword("oneof") {
			if child, ok := parseChild(ctx, parseOneOf); ok {
				return child
			}
		} else if child, ok := parseChild(ctx, parseTypeName); ok {
			return child
		}
	default:
		ctx.err = errExpectedType(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	return nil
}

func parseTypeName(ctx *parseCtx[TypeName]) (*TypeName, error) {
	name := ctx.ident()
	return ctx.finish(func(node branchNode) *TypeName {
		return &TypeName{
			branchNode: node,
			name:       name,
		}
	})
}

func parseListType(ctx *parseCtx[ListType]) (*ListType, error) {
	ctx.sigil(T_OPEN_SQUARE)
	ctx.trivia()
	elem := parseTypeExpr(ctx)
	ctx.trivia()
	ctx.sigil(T_CLOSE_SQUARE)
	return ctx.finish(func(node branchNode) *ListType {
		return &ListType{
			branchNode: node,
			elem:       elem,
		}
	})
}

func parseOneOf(ctx *parseCtx[OneOf]) (*OneOf, error) {
	keyword := ctx.tryKeyword("oneof")
	ctx.trivia()
	variants := parseFields(ctx)
	return ctx.finish(func(node branchNode) *OneOf {
		return &OneOf{
			branchNode: node,
			keyword:    keyword,
			variants:   variants,
		}
	})
}
