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

// Package compiler resolves a parsed schema and computes its wire layout.
package compiler

import (
	"cmp"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/ZachDaChampion/simple-buffers/schema"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

// oneofKeyword may not name a declaration because it introduces an inline
// union wherever a type is expected.
const oneofKeyword = "oneof"

const maxVariants = math.MaxUint8

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	logger     *zap.Logger
	schemaName string
}

func WithLogger(logger *zap.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

// WithSchemaName sets the name of the compiled schema, which is normally
// the stem of its source file.
func WithSchemaName(name string) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.schemaName = name
	})
}

type CompileResult struct {
	schema *schema.Schema

	Errors   []*Error
	Warnings []*Warning
}

// Schema returns the compiled schema, or nil if compilation failed.
func (r *CompileResult) Schema() *schema.Schema {
	return r.schema
}

func Compile(parsedSchema *syntax.Schema, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(parsedSchema)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{
		logger:     zap.NewNop(),
		schemaName: "schema",
	}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(parsedSchema *syntax.Schema) CompileResult {
	c := compiler{
		opts:    opts,
		log:     opts.logger.With(zap.String("schema", opts.schemaName)),
		nodes:   newSchemaNodes(parsedSchema),
		builder: schema.NewBuilder(opts.schemaName),
	}
	c.compileSchema()

	slices.SortStableFunc(c.errors, func(a, b *Error) int {
		if x := cmp.Compare(a.span.Start(), b.span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(a.code, b.code)
	})
	slices.SortStableFunc(c.warnings, func(a, b *Warning) int {
		if x := cmp.Compare(a.span.Start(), b.span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(a.code, b.code)
	})

	if len(c.errors) > 0 {
		c.log.Debug("compilation failed", zap.Int("errors", len(c.errors)))
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}

	compiled, err := c.builder.Build()
	if err != nil {
		// Every declared type is set when no errors were reported.
		panic(err)
	}
	return CompileResult{
		schema:   compiled,
		Warnings: c.warnings,
	}
}

type schemaNodes struct {
	decls []declNode
}

func newSchemaNodes(parsedSchema *syntax.Schema) *schemaNodes {
	nodes := &schemaNodes{}
	for node := range parsedSchema.Decls() {
		switch node := node.(type) {
		case *syntax.Enum:
			nodes.decls = append(nodes.decls, node)
		case *syntax.Sequence:
			nodes.decls = append(nodes.decls, node)
		default:
		}
	}
	return nodes
}

type declNode interface {
	syntax.Node
	Name() *syntax.Ident
}

type layoutState uint8

const (
	layoutPending layoutState = iota
	layoutVisiting
	layoutDone
)

type declInfo struct {
	node declNode

	// Unset for declarations whose name conflicts with an earlier one.
	id         schema.TypeID
	registered bool

	// Set by compileEnum() and layoutSequence()
	state layoutState
	size  uint16
}

type compiler struct {
	opts     *CompileOptions
	log      *zap.Logger
	nodes    *schemaNodes
	builder  *schema.Builder
	errors   []*Error
	warnings []*Warning

	// Set by registerDecls()
	decls       []*declInfo
	declsByName map[string]*declInfo

	// Sequences currently being laid out, outermost first.
	layoutStack []*declInfo
}

func (c *compiler) err(err error) {
	c.errors = append(c.errors, err.(*Error))
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) compileSchema() {
	c.registerDecls()
	for _, info := range c.decls {
		if node, ok := info.node.(*syntax.Enum); ok {
			c.compileEnum(info, node)
		}
	}
	for _, info := range c.decls {
		if _, ok := info.node.(*syntax.Sequence); ok {
			c.layoutSequence(info)
		}
	}
}

func (c *compiler) registerDecls() {
	c.declsByName = make(map[string]*declInfo)
	for _, node := range c.nodes.decls {
		c.registerDecl(node)
	}
}

func (c *compiler) registerDecl(node declNode) *declInfo {
	info := &declInfo{node: node}
	name := node.Name().Get()
	if schema.IsBuiltin(name) || name == oneofKeyword {
		c.err(errReservedTypeName(node))
	}
	if prevDecl, conflict := c.declsByName[name]; conflict {
		c.err(errDeclNameConflict(node, prevDecl.node))
	} else {
		c.declsByName[name] = info
		var err error
		switch node.(type) {
		case *syntax.Enum:
			info.id, err = c.builder.DeclareEnum(name)
		case *syntax.Sequence:
			info.id, err = c.builder.DeclareSequence(name)
		}
		info.registered = err == nil
	}
	c.decls = append(c.decls, info)
	return info
}

func (c *compiler) compileEnum(info *declInfo, node *syntax.Enum) {
	enumName := node.Name().Get()
	if node.Len() == 0 {
		c.warn(warnEmptyEnum(node.Name()))
	}

	names := make(map[string]struct{})
	namesByValue := make(map[uint64]string)
	var variants []schema.EnumVariant
	for item := range node.Items() {
		itemName := item.Name().Get()
		if _, conflict := names[itemName]; conflict {
			c.err(errEnumItemNameConflict(enumName, item.Name()))
		}
		names[itemName] = struct{}{}

		value := item.Value().GetUint64()
		if prevName, conflict := namesByValue[value]; conflict {
			c.err(errEnumValueConflict(enumName, item, prevName))
		} else {
			namesByValue[value] = itemName
		}

		variants = append(variants, schema.EnumVariant{
			Name:  itemName,
			Value: value,
		})
	}

	var maxValue uint64
	for _, v := range variants {
		maxValue = max(maxValue, v.Value)
	}
	info.size = uint16(schema.EnumWidth(maxValue))
	info.state = layoutDone
	if info.registered {
		c.builder.SetEnum(info.id, variants)
	}
	c.log.Debug("compiled enum",
		zap.String("decl", enumName),
		zap.Uint16("width", info.size),
	)
}

// layoutSequence computes the static layout of a sequence, laying out
// every sequence it embeds first. Layouts are memoized.
func (c *compiler) layoutSequence(info *declInfo) uint16 {
	if info.state == layoutDone {
		return info.size
	}
	node := info.node.(*syntax.Sequence)
	seqName := node.Name().Get()

	info.state = layoutVisiting
	c.layoutStack = append(c.layoutStack, info)

	names := make(map[string]struct{})
	var fields []schema.Field
	var offset uint32
	for field := range node.Fields() {
		fieldName := field.Name().Get()
		if _, conflict := names[fieldName]; conflict {
			c.err(errFieldNameConflict(seqName, field.Name()))
		}
		names[fieldName] = struct{}{}

		typeID, size, _ := c.resolveType(field.Type(), []string{seqName, fieldName}, true)
		fields = append(fields, schema.Field{
			Name:   fieldName,
			Offset: uint16(min(offset, math.MaxUint16)),
			Type:   typeID,
		})
		offset += uint32(size)
	}

	if node.Len() == 0 {
		c.warn(warnEmptySequence(node.Name()))
	}
	if offset > math.MaxUint16 {
		c.err(errStaticSizeTooLarge(node.Name(), offset))
		offset = math.MaxUint16
	}

	c.layoutStack = c.layoutStack[:len(c.layoutStack)-1]
	info.state = layoutDone
	info.size = uint16(offset)
	if info.registered {
		c.builder.SetSequence(info.id, fields, info.size)
	}
	c.log.Debug("laid out sequence",
		zap.String("decl", seqName),
		zap.Uint16("size", info.size),
		zap.Int("fields", len(fields)),
	)
	return info.size
}

// resolveType returns the ID and static size of a type expression. When
// embedded is set the type is stored inline in its owner, so a referenced
// sequence must be laid out before its size is known.
func (c *compiler) resolveType(
	expr syntax.TypeExpr,
	path []string,
	embedded bool,
) (schema.TypeID, uint16, bool) {
	switch expr := expr.(type) {
	case *syntax.TypeName:
		return c.resolveTypeName(expr, embedded)
	case *syntax.ListType:
		elem, _, ok := c.resolveType(expr.Elem(), path, false)
		if !ok {
			return 0, 4, false
		}
		return c.builder.List(elem), 4, true
	case *syntax.OneOf:
		return c.compileOneOf(expr, path), 3, true
	default:
		panic("unreachable")
	}
}

func (c *compiler) resolveTypeName(
	expr *syntax.TypeName,
	embedded bool,
) (schema.TypeID, uint16, bool) {
	name := expr.Name().Get()
	if kind, ok := schema.ParsePrimitive(name); ok {
		return c.builder.Primitive(kind), kind.Size(), true
	}
	if name == schema.StringTypeName {
		return c.builder.Str(), 2, true
	}

	info, ok := c.declsByName[name]
	if !ok {
		c.err(errTypeNotFound(expr.Name()))
		return 0, 0, false
	}
	switch info.node.(type) {
	case *syntax.Enum:
		return info.id, info.size, true
	case *syntax.Sequence:
		if !embedded {
			return info.id, 0, true
		}
		if info.state == layoutVisiting {
			c.err(errCyclicLayout(c.cyclePath(info), expr))
			return info.id, 0, false
		}
		return info.id, c.layoutSequence(info), true
	default:
		panic("unreachable")
	}
}

// cyclePath names the sequences from target to the innermost sequence
// being laid out, closed by target again.
func (c *compiler) cyclePath(target *declInfo) []string {
	var path []string
	for ii := len(c.layoutStack) - 1; ii >= 0; ii-- {
		if c.layoutStack[ii] == target {
			for _, info := range c.layoutStack[ii:] {
				path = append(path, info.node.Name().Get())
			}
			break
		}
	}
	return append(path, target.node.Name().Get())
}

func (c *compiler) compileOneOf(node *syntax.OneOf, path []string) schema.TypeID {
	id := c.builder.DeclareOneOf(path)
	if node.Len() == 0 {
		c.err(errEmptyOneOf(path, node))
	} else if node.Len() > maxVariants {
		c.err(errTooManyVariants(path, node.Len(), node))
	}

	names := make(map[string]struct{})
	var variants []schema.Variant
	for variant := range node.Variants() {
		variantName := variant.Name().Get()
		if _, conflict := names[variantName]; conflict {
			c.err(errVariantNameConflict(path, variant.Name()))
		}
		names[variantName] = struct{}{}

		variantPath := append(slices.Clip(path), variantName)
		typeID, _, _ := c.resolveType(variant.Type(), variantPath, false)
		variants = append(variants, schema.Variant{
			Name: variantName,
			Tag:  uint8(len(variants)),
			Type: typeID,
		})
	}
	c.builder.SetOneOf(id, variants)
	return id
}
