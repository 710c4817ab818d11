// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders calc CLI output: lipgloss styling on a terminal and
// plain, greppable lines everywhere else.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Key      lipgloss.Style
	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle: lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:     lipgloss.NewStyle().Bold(true),
	Muted:    lipgloss.NewStyle().Foreground(ColorSlate),
	Success:  lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
	Error:    lipgloss.NewStyle().Foreground(ColorError),
	Key:      lipgloss.NewStyle().Foreground(ColorTealPrimary).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes CLI output. A plain printer emits no color, icons or
// borders, so its output is stable for scripts and tests.
type Printer struct {
	w     io.Writer
	plain bool
}

// NewPrinter returns a printer for w.
func NewPrinter(w io.Writer, plain bool) *Printer {
	return &Printer{w: w, plain: plain}
}

// For returns a printer for w that styles output only when w is a terminal.
func For(w io.Writer) *Printer {
	f, ok := w.(*os.File)
	if !ok {
		return NewPrinter(w, true)
	}
	fd := f.Fd()
	return NewPrinter(w, !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd))
}

// Plain reports whether styling is disabled.
func (p *Printer) Plain() bool { return p.plain }

// Writer exposes the underlying writer for raw (JSON/YAML) output.
func (p *Printer) Writer() io.Writer { return p.w }

// Title prints a heading. Plain printers skip it.
func (p *Printer) Title(text string) {
	if p.plain {
		return
	}
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Section prints a subheading. Plain printers emit it as "# text" so
// consecutive tables stay separable.
func (p *Printer) Section(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "# %s\n", text)
		return
	}
	fmt.Fprintln(p.w, "\n"+Styles.Subtitle.Render(text))
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	p.status(IconSuccess, "OK", fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	p.status(IconWarning, "WARN", fmt.Sprintf(format, args...))
}

// Failure prints an error line.
func (p *Printer) Failure(format string, args ...any) {
	p.status(IconError, "FAIL", fmt.Sprintf(format, args...))
}

func (p *Printer) status(icon Icon, tag, text string) {
	if p.plain {
		fmt.Fprintf(p.w, "%s: %s\n", tag, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", icon.Render(), text)
}

// KeyValues prints aligned "key: value" pairs in the given order.
func (p *Printer) KeyValues(pairs [][2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv[0])+1)
	}
	for _, kv := range pairs {
		key := fmt.Sprintf("%-*s", width, kv[0]+":")
		if !p.plain {
			key = Styles.Key.Render(key)
		}
		fmt.Fprintf(p.w, "%s %s\n", key, kv[1])
	}
}

// Table prints rows under headers with columns padded to the widest cell.
// Plain printers separate columns with tabs and omit the header rule.
func (p *Printer) Table(headers []string, rows [][]string) {
	if p.plain {
		fmt.Fprintln(p.w, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(p.w, strings.Join(row, "\t"))
		}
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cell := func(style lipgloss.Style, i int, s string) string {
		return style.Width(widths[i] + 2).Render(s)
	}
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(cell(Styles.Key, i, h))
	}
	b.WriteByte('\n')
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	b.WriteString(Styles.Muted.Render(strings.Repeat("─", total)))
	b.WriteByte('\n')
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			b.WriteString(cell(lipgloss.NewStyle(), i, row[i]))
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(p.w, b.String())
}

// Box prints text inside a rounded border, or as-is when plain.
func (p *Printer) Box(title, text string) {
	if p.plain {
		if title != "" {
			fmt.Fprintln(p.w, title)
		}
		fmt.Fprintln(p.w, text)
		return
	}
	content := text
	if title != "" {
		content = Styles.Title.Render(title) + "\n" + text
	}
	fmt.Fprintln(p.w, Styles.Box.Render(content))
}

// ErrorBox prints an error message inside a red border, or as a FAIL line
// when plain.
func (p *Printer) ErrorBox(text string) {
	if p.plain {
		fmt.Fprintf(p.w, "FAIL: %s\n", text)
		return
	}
	fmt.Fprintln(p.w, Styles.ErrorBox.Render(Styles.Error.Render(text)))
}
