// Package output provides terminal formatting for the quakesearch CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// ColorMode represents color output mode
type ColorMode int

const (
	// ColorAuto enables colors when stdout is a terminal and NO_COLOR is unset
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever forces colors off
	ColorNever
)

// Printer handles formatted output to the terminal
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ParseColorMode parses a string into a ColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors based on mode and environment
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// NewPrinter creates a printer writing to stdout and stderr.
func NewPrinter(mode ColorMode) *Printer {
	return NewPrinterTo(os.Stdout, os.Stderr, ResolveColors(mode))
}

// NewPrinterTo creates a printer with explicit writers.
func NewPrinterTo(out, errw io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errw, useColors: useColors}
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...any) {
	p.colored(p.out, color.FgCyan, "", format, args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		p.colored(p.out, color.FgGreen, "✓ ", format, args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		p.colored(p.err, color.FgYellow, "⚠ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		p.colored(p.err, color.FgRed, "✗ ", format, args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

// Bold returns text in bold
func (p *Printer) Bold(text string) string {
	if p.useColors {
		c := color.New(color.Bold)
		c.EnableColor()
		return c.Sprint(text)
	}
	return text
}

// Summary describes a finished search for the terminal.
type Summary struct {
	Description    string
	ReportPath     string
	FilesScanned   int
	FilesSkipped   int
	EntriesSkipped int
	Matched        int
	Duration       time.Duration
}

// PrintSummary prints the outcome of a search run.
func (p *Printer) PrintSummary(s Summary) {
	p.Info("Searched %d feed file(s) for %s in %s", s.FilesScanned, s.Description, s.Duration.Round(time.Millisecond))
	if s.FilesSkipped > 0 {
		p.Warning("%d feed file(s) could not be parsed and were skipped", s.FilesSkipped)
	}
	if s.EntriesSkipped > 0 {
		p.Warning("%d entr(y/ies) missing a required field were skipped", s.EntriesSkipped)
	}
	if s.Matched == 0 {
		p.Success("No matching entries found; report written to %s", p.Bold(s.ReportPath))
		return
	}
	p.Success("%d matching entr(y/ies) written to %s", s.Matched, p.Bold(s.ReportPath))
}

func (p *Printer) colored(w io.Writer, attr color.Attribute, prefix, format string, args ...any) {
	if !p.useColors {
		fmt.Fprintf(w, format+"\n", args...)
		return
	}
	c := color.New(attr)
	c.EnableColor()
	c.Fprintf(w, prefix+format+"\n", args...)
}
