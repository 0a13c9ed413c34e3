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

// Package diag prints compiler diagnostics with their source location and
// an excerpt of the offending line.
package diag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/ZachDaChampion/simple-buffers/syntax"
)

type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always, or never)", s)
}

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return "auto"
}

// Enabled reports whether output to w should be colored. In auto mode this
// requires w to be a terminal and $NO_COLOR to be unset.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Located is implemented by syntax and compiler errors and warnings.
type Located interface {
	Span() syntax.Span
}

// Warning is implemented by compiler warnings.
type Warning interface {
	Located
	String() string
}

type Printer struct {
	w        io.Writer
	errors   int
	warnings int

	errorLabel   lipgloss.Style
	warningLabel lipgloss.Style
	location     lipgloss.Style
	gutter       lipgloss.Style
	caret        lipgloss.Style
}

func NewPrinter(w io.Writer, mode ColorMode) *Printer {
	renderer := lipgloss.NewRenderer(w)
	if mode.Enabled(w) {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:            w,
		errorLabel:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warningLabel: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		location:     renderer.NewStyle().Bold(true),
		gutter:       renderer.NewStyle().Foreground(lipgloss.Color("12")),
		caret:        renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
	}
}

func (p *Printer) ErrorCount() int   { return p.errors }
func (p *Printer) WarningCount() int { return p.warnings }

// Error prints err. If err carries a span, the location in file and an
// excerpt of src are included.
func (p *Printer) Error(file string, src []byte, err error) {
	p.errors++
	var located Located
	if errors.As(err, &located) {
		p.report(p.errorLabel.Render("error:"), file, src, err.Error(), located.Span())
		return
	}
	p.plain(p.errorLabel.Render("error:"), file, err.Error())
}

func (p *Printer) Warning(file string, src []byte, w Warning) {
	p.warnings++
	p.report(p.warningLabel.Render("warning:"), file, src, w.String(), w.Span())
}

func (p *Printer) plain(label, file, msg string) {
	if file == "" {
		fmt.Fprintf(p.w, "%s %s\n", label, msg)
		return
	}
	fmt.Fprintf(p.w, "%s: %s %s\n", p.location.Render(file), label, msg)
}

func (p *Printer) report(label, file string, src []byte, msg string, span syntax.Span) {
	start := span.Start()
	if int(start) > len(src) {
		p.plain(label, file, msg)
		return
	}
	line, col := syntax.Position(src, start)
	loc := fmt.Sprintf("%s:%d:%d", file, line, col)
	fmt.Fprintf(p.w, "%s: %s %s\n", p.location.Render(loc), label, msg)

	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	lineEnd := len(src)
	if idx := bytes.IndexByte(src[start:], '\n'); idx >= 0 {
		lineEnd = int(start) + idx
	}
	text := bytes.TrimSuffix(src[lineStart:lineEnd], []byte{'\r'})

	var pad strings.Builder
	for _, r := range string(src[lineStart:start]) {
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	end := min(int(span.End()), lineStart+len(text))
	carets := 1
	if end > int(start) {
		carets = max(1, utf8.RuneCount(src[start:end]))
	}

	lineNo := strconv.Itoa(line)
	blank := strings.Repeat(" ", len(lineNo))
	fmt.Fprintf(p.w, "  %s %s\n", p.gutter.Render(lineNo+" |"), text)
	fmt.Fprintf(p.w, "  %s %s%s\n", p.gutter.Render(blank+" |"), pad.String(), p.caret.Render(strings.Repeat("^", carets)))
}
