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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = "sbc.yaml"

type config struct {
	SrcDir     string                     `yaml:"srcdir"`
	DstDir     string                     `yaml:"dstdir"`
	Libs       []string                   `yaml:"libs"`
	Color      string                     `yaml:"color"`
	Generators map[string]generatorConfig `yaml:"generators"`
}

type generatorConfig struct {
	// Args are passed to the generator before any command-line arguments.
	Args []string `yaml:"args"`
}

// loadConfig reads the config file at path. A missing file is an error only
// if required is set. Relative paths in the file are resolved against the
// directory containing it.
func loadConfig(path string, required bool) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return &config{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.SrcDir = resolve(cfg.SrcDir)
	cfg.DstDir = resolve(cfg.DstDir)
	for ii, lib := range cfg.Libs {
		cfg.Libs[ii] = resolve(lib)
	}
	return &cfg, nil
}
