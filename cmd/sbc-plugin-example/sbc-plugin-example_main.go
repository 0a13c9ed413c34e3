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

//go:build !tinygo

package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		log.Fatalf("usage: %s SCHEMA_FILE", os.Args[0])
	}
	schemaPath := args[0]

	src, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("ReadFile(%q): %v", schemaPath, err)
	}

	parsed, err := syntax.Parse(src)
	if err != nil {
		log.Fatalf("Parse(%q): %v", schemaPath, err)
	}

	name := strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))
	compiled := compiler.Compile(parsed, compiler.WithSchemaName(name))
	for _, w := range compiled.Warnings {
		log.Printf("[WARN ] %v", w)
	}
	if len(compiled.Errors) > 0 {
		for _, err := range compiled.Errors {
			log.Printf("[ERROR] %v", err)
		}
		os.Exit(1)
	}

	if _, err := os.Stdout.Write(renderDocs(compiled.Schema())); err != nil {
		log.Fatal(err)
	}
}
