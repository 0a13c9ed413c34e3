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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZachDaChampion/simple-buffers/codegen"
	"github.com/ZachDaChampion/simple-buffers/codegen/wasmplugin"
	"github.com/ZachDaChampion/simple-buffers/compiler"
	"github.com/ZachDaChampion/simple-buffers/internal/diag"
	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type cmdGenerate struct {
	stdout io.Writer
	stderr io.Writer

	libs       []string
	srcDir     string
	dstDir     string
	configPath string
	verbose    bool
	color      string
	list       bool
}

func (*cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "sbc [options] GENERATOR SCHEMA_FILE [GENERATOR_ARGS...]",
		summary: "Compile a SimpleBuffers schema and generate code for it",
	}
}

func (cmd *cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&cmd.libs, "lib", "l", nil, "load a generator plugin (`.wasm`), may be repeated")
	flags.StringVarP(&cmd.srcDir, "srcdir", "s", "", "directory to resolve SCHEMA_FILE against")
	flags.StringVarP(&cmd.dstDir, "dstdir", "d", ".", "directory to write generated files to")
	flags.StringVarP(&cmd.configPath, "config", "c", "", "config file (default ./"+DefaultConfigFile+" if present)")
	flags.BoolVarP(&cmd.verbose, "verbose", "v", false, "log debug output")
	flags.StringVar(&cmd.color, "color", "auto", "color diagnostics: auto, always, or never")
	flags.BoolVar(&cmd.list, "list", false, "list available generators and exit")
}

// applyConfig fills in every option not set on the command line from cfg.
func (cmd *cmdGenerate) applyConfig(flags *pflag.FlagSet, cfg *config) {
	if !flags.Changed("srcdir") && cfg.SrcDir != "" {
		cmd.srcDir = cfg.SrcDir
	}
	if !flags.Changed("dstdir") && cfg.DstDir != "" {
		cmd.dstDir = cfg.DstDir
	}
	if !flags.Changed("color") && cfg.Color != "" {
		cmd.color = cfg.Color
	}
	cmd.libs = append(cfg.Libs[:len(cfg.Libs):len(cfg.Libs)], cmd.libs...)
}

func (cmd *cmdGenerate) newLogger() *zap.Logger {
	if !cmd.verbose {
		return zap.NewNop()
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(cmd.stderr),
		zap.DebugLevel,
	)
	return zap.New(core)
}

func (cmd *cmdGenerate) run(ctx context.Context, flags *pflag.FlagSet, argv []string) int {
	cfg, err := loadConfig(orDefault(cmd.configPath, DefaultConfigFile), cmd.configPath != "")
	if err != nil {
		fmt.Fprintf(cmd.stderr, "sbc: config: %v\n", err)
		return exitUsage
	}
	cmd.applyConfig(flags, cfg)

	colorMode, err := diag.ParseColorMode(cmd.color)
	if err != nil {
		fmt.Fprintf(cmd.stderr, "sbc: %v\n", err)
		return exitUsage
	}
	printer := diag.NewPrinter(cmd.stderr, colorMode)

	logger := cmd.newLogger()
	defer logger.Sync()

	plugins, err := cmd.loadPlugins(ctx, logger)
	defer func() {
		for _, p := range plugins {
			p.Close(ctx)
		}
	}()
	if err != nil {
		printer.Error("", nil, err)
		return exitError
	}
	lookup := func(name string) (codegen.Generator, bool) {
		if p, ok := plugins[name]; ok {
			return p, true
		}
		return codegen.Lookup(name)
	}

	if cmd.list {
		cmd.printGenerators(plugins)
		return exitOK
	}

	if len(argv) < 2 {
		fmt.Fprintln(cmd.stderr, "sbc: expected GENERATOR and SCHEMA_FILE")
		return exitUsage
	}
	genName, schemaPath := argv[0], argv[1]
	gen, ok := lookup(genName)
	if !ok {
		fmt.Fprintf(cmd.stderr, "sbc: unknown generator %q (see --list)\n", genName)
		return exitUsage
	}
	if cmd.srcDir != "" && !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(cmd.srcDir, schemaPath)
	}
	logger = logger.With(zap.String("generator", genName), zap.String("schema", schemaPath))

	src, err := os.ReadFile(schemaPath)
	if err != nil {
		printer.Error("", nil, err)
		return exitError
	}
	parsed, err := syntax.Parse(src)
	if err != nil {
		printer.Error(schemaPath, src, err)
		return exitError
	}

	stem := fileStem(schemaPath)
	result := compiler.Compile(parsed,
		compiler.WithLogger(logger),
		compiler.WithSchemaName(stem),
	)
	for _, warning := range result.Warnings {
		printer.Warning(schemaPath, src, warning)
	}
	for _, err := range result.Errors {
		printer.Error(schemaPath, src, err)
	}
	s := result.Schema()
	if s == nil {
		return exitError
	}

	var args []string
	args = append(args, cfg.Generators[genName].Args...)
	args = append(args, argv[2:]...)
	params := &codegen.Params{
		FileName: stem,
		DestDir:  cmd.dstDir,
		Args:     args,
	}

	reserved, err := reservedIdentifiers(ctx, gen, params)
	if err != nil {
		printer.Error("", nil, err)
		return exitError
	}
	if err := codegen.CheckReserved(s, reserved); err != nil {
		printer.Error(schemaPath, nil, err)
		return exitError
	}

	files, err := gen.Generate(ctx, s, params)
	if err != nil {
		printer.Error("", nil, fmt.Errorf("generator %s: %w", genName, err))
		return exitError
	}
	if err := codegen.WriteOutputs(cmd.dstDir, files); err != nil {
		printer.Error("", nil, fmt.Errorf("generator %s: %w", genName, err))
		return exitError
	}
	for _, file := range files {
		logger.Debug("wrote file", zap.String("path", strings.Join(file.Path, "/")), zap.Int("size", len(file.Content)))
	}
	return exitOK
}

func (cmd *cmdGenerate) loadPlugins(
	ctx context.Context,
	logger *zap.Logger,
) (map[string]*wasmplugin.Plugin, error) {
	plugins := make(map[string]*wasmplugin.Plugin)
	for _, path := range cmd.libs {
		p, err := wasmplugin.Load(ctx, path,
			wasmplugin.WithLogger(logger),
			wasmplugin.WithStderr(cmd.stderr),
		)
		if err != nil {
			return plugins, err
		}
		if prev, dup := plugins[p.Name()]; dup {
			p.Close(ctx)
			return plugins, fmt.Errorf("plugins %s and %s both provide generator %q", prev.Path(), path, p.Name())
		}
		if _, builtin := codegen.Lookup(p.Name()); builtin {
			logger.Warn("plugin replaces built-in generator", zap.String("name", p.Name()))
		}
		plugins[p.Name()] = p
	}
	return plugins, nil
}

func (cmd *cmdGenerate) printGenerators(plugins map[string]*wasmplugin.Plugin) {
	for _, g := range codegen.Generators() {
		if _, replaced := plugins[g.Name()]; !replaced {
			fmt.Fprintf(cmd.stdout, "%s\tbuilt-in\n", g.Name())
		}
	}
	for _, name := range sortedKeys(plugins) {
		fmt.Fprintf(cmd.stdout, "%s\t%s\n", name, plugins[name].Path())
	}
}

// reservedIdentifiers prefers a generator's error-returning form when it
// has one.
func reservedIdentifiers(ctx context.Context, g codegen.Generator, p *codegen.Params) ([]string, error) {
	type reserver interface {
		Reserved(ctx context.Context, p *codegen.Params) ([]string, error)
	}
	if r, ok := g.(reserver); ok {
		return r.Reserved(ctx, p)
	}
	return g.ReservedIdentifiers(p), nil
}
