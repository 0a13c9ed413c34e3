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

// Command sbc compiles a SimpleBuffers schema and runs a code generator on
// it.
//
//	sbc [options] GENERATOR SCHEMA_FILE [GENERATOR_ARGS...]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	_ "github.com/ZachDaChampion/simple-buffers/codegen/gogen"
	_ "github.com/ZachDaChampion/simple-buffers/codegen/sanitycheck"
)

// Set with -ldflags "-X main.version=...".
var version = "devel"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, flags *pflag.FlagSet, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

type usageError struct {
	err error
}

func (err *usageError) Error() string { return err.err.Error() }
func (err *usageError) Unwrap() error { return err.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	var cmd command = &cmdGenerate{stdout: stdout, stderr: stderr}
	help := cmd.help()
	exitCode := exitOK

	sbcCmd := &cobra.Command{
		Use:           help.usage,
		Short:         help.summary,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(c *cobra.Command, args []string) error {
			exitCode = cmd.run(c.Context(), c.Flags(), args)
			return nil
		},
	}
	sbcCmd.SetArgs(argv)
	sbcCmd.SetOut(stdout)
	sbcCmd.SetErr(stderr)
	sbcCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	// Everything after the schema file belongs to the generator.
	sbcCmd.Flags().SetInterspersed(false)
	cmd.flags(sbcCmd.Flags())

	if err := sbcCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "sbc: %v\n", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprint(stderr, sbcCmd.UsageString())
			return exitUsage
		}
		return exitError
	}
	return exitCode
}
