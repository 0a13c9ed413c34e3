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

package gogen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ZachDaChampion/simple-buffers/schema"
)

// exportedName converts a schema identifier to an exported Go identifier.
// Underscore-separated words are capitalized and joined; existing capitals
// are kept.
func exportedName(name string) string {
	name = norm.NFC.String(name)
	title := cases.Title(language.Und, cases.NoLower)
	var out strings.Builder
	for _, word := range strings.Split(name, "_") {
		if word == "" {
			continue
		}
		out.WriteString(title.String(word))
	}
	if out.Len() == 0 {
		return "X"
	}
	return out.String()
}

// pathName joins the components of a oneof path into one exported name.
func pathName(path []string) string {
	var out strings.Builder
	for _, part := range path {
		out.WriteString(exportedName(part))
	}
	return out.String()
}

func packageName(name string) string {
	var out strings.Builder
	for _, r := range strings.ToLower(norm.NFC.String(name)) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			out.WriteRune(r)
		}
	}
	pkg := out.String()
	if pkg == "" {
		return "schema"
	}
	if unicode.IsDigit(rune(pkg[0])) {
		pkg = "sb" + pkg
	}
	for _, kw := range keywords {
		if pkg == kw {
			return pkg + "_"
		}
	}
	return pkg
}

var keywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type",
	"var",
}

var predeclared = []string{
	"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
	"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
	"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"true", "false", "iota", "nil",
	"append", "cap", "clear", "close", "complex", "copy", "delete", "imag",
	"len", "make", "max", "min", "new", "panic", "print", "println", "real",
	"recover",
}

// Methods and fields of generated types.
var generatedNames = []string{
	"Addr", "Write", "StaticSize", "WriteComponent",
}

func reservedIdentifiers() []string {
	out := make([]string, 0, len(keywords)+len(predeclared)+len(generatedNames))
	out = append(out, keywords...)
	out = append(out, predeclared...)
	out = append(out, generatedNames...)
	return out
}

// NameConflictError reports two schema names that map to the same Go
// identifier.
type NameConflictError struct {
	Ident  string
	First  string
	Second string
}

func (err *NameConflictError) Error() string {
	return fmt.Sprintf(
		"go generator: %s and %s both generate Go identifier `%s`",
		err.First, err.Second, err.Ident,
	)
}

// identTable records which schema name produced each generated identifier.
// Members of a generated type are keyed as "Type.Member".
type identTable struct {
	owners map[string]string
	err    error
}

func (tbl *identTable) add(ident, owner string) {
	if tbl.err != nil {
		return
	}
	if prev, ok := tbl.owners[ident]; ok {
		tbl.err = &NameConflictError{Ident: ident, First: prev, Second: owner}
		return
	}
	tbl.owners[ident] = owner
}

// checkIdentifiers reports the first pair of schema names whose generated
// Go identifiers are equal, either at package level or among the members of
// one generated type.
func checkIdentifiers(s *schema.Schema) error {
	tbl := &identTable{owners: make(map[string]string)}
	for _, id := range s.Decls() {
		switch t := s.Type(id).(type) {
		case *schema.Enum:
			name := exportedName(t.Name())
			tbl.add(name, "enum `"+t.Name()+"`")
			for _, v := range t.Variants() {
				tbl.add(name+"_"+exportedName(v.Name), "enum variant `"+t.Name()+"::"+v.Name+"`")
			}
		case *schema.Sequence:
			owner := "sequence `" + t.Name() + "`"
			writer := exportedName(t.Name()) + "Writer"
			reader := exportedName(t.Name()) + "Reader"
			tbl.add(writer, owner)
			tbl.add(reader, owner)
			tbl.add("New"+reader, owner)
			for _, method := range []string{"StaticSize", "WriteComponent", "Write"} {
				tbl.add(writer+"."+method, "generated method `"+writer+"."+method+"`")
			}
			tbl.add(reader+".Addr", "generated method `"+reader+".Addr`")
			for _, field := range t.Fields() {
				fieldOwner := "field `" + t.Name() + "::" + field.Name + "`"
				tbl.add(writer+"."+exportedName(field.Name), fieldOwner)
				tbl.add(reader+"."+exportedName(field.Name), fieldOwner)
			}
		}
	}
	for _, t := range s.OneOfs() {
		path := strings.Join(t.Path(), "::")
		owner := "oneof `" + path + "`"
		name := pathName(t.Path())
		writer := name + "Writer"
		reader := name + "Reader"
		tbl.add(writer, owner)
		tbl.add(reader, owner)
		tbl.add(reader+".Addr", "generated method `"+reader+".Addr`")
		tbl.add(reader+".Tag", "generated method `"+reader+".Tag`")
		for _, v := range t.Variants() {
			variant := exportedName(v.Name)
			variantOwner := "oneof variant `" + path + "::" + v.Name + "`"
			tbl.add(name+"_"+variant, variantOwner)
			tbl.add("New"+writer+variant, variantOwner)
			tbl.add(reader+".As"+variant, variantOwner)
		}
	}
	return tbl.err
}
