// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type ctxKey struct{}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Printer writes human-readable output. Status lines go to out, errors and
// warnings go to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New creates a Printer writing to out and errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout/stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

func (p *Printer) line(w io.Writer, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if prefix == "" {
		_, _ = fmt.Fprintln(w, msg)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, msg)
}

func (p *Printer) Printf(format string, args ...any) {
	p.line(p.out, "", format, args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, successStyle.Render("✔"), format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, infoStyle.Render("•"), format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.errOut, warnStyle.Render("!"), format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.errOut, errorStyle.Render("✘"), format, args...)
}

// Section prints a heading preceded by a blank line.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintf(p.out, "\n%s\n", sectionStyle.Render(title))
}

// Field prints an aligned "label: value" line.
func (p *Printer) Field(label string, value any) {
	_, _ = fmt.Fprintf(p.out, "  %s %v\n", mutedStyle.Render(fmt.Sprintf("%-18s", label+":")), value)
}

// List prints each item as an indented bullet.
func (p *Printer) List(items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(p.out, "    - %s\n", item)
	}
}

// Markdown renders md with glamour. On render failure the raw markdown is
// written instead.
func (p *Printer) Markdown(md, style string, wrap int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		_, _ = io.WriteString(p.out, md)
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	rendered, err := r.Render(md)
	if err != nil {
		_, _ = io.WriteString(p.out, md)
		return fmt.Errorf("render markdown: %w", err)
	}

	_, err = io.WriteString(p.out, strings.TrimLeft(rendered, "\n"))
	return err
}
