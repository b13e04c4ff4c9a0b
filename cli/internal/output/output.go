// Package output renders CLI results for humans.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/grafana/microgit"
)

var (
	successMark = color.New(color.FgGreen).Sprint("✓")
	failureMark = color.New(color.FgRed).Sprint("✗")
	dim         = color.New(color.Faint).SprintFunc()
)

// Printer writes human-readable results.
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter returns a Printer on stdout/stderr.
func NewPrinter() *Printer {
	return &Printer{out: os.Stdout, err: os.Stderr}
}

// Progressf reports a step on stderr, keeping stdout clean for data.
func (p *Printer) Progressf(format string, args ...any) {
	fmt.Fprintf(p.err, format+"\n", args...)
}

// CloneResult reports a finished clone.
func (p *Printer) CloneResult(result *microgit.CloneResult) {
	branch := result.Branch
	if branch == "" {
		branch = dim("(detached)")
	}

	fmt.Fprintf(p.err, "%s cloned into %s\n", successMark, result.Path)
	fmt.Fprintf(p.err, "  %s %s\n", dim("head:"), result.Head)
	fmt.Fprintf(p.err, "  %s %s\n", dim("branch:"), branch)
	fmt.Fprintf(p.err, "  %s %d written, %d skipped\n", dim("objects:"), result.ObjectsWritten, result.ObjectsSkipped)
}

// Failure reports a fatal error as a single line on stderr.
func (p *Printer) Failure(err error) {
	fmt.Fprintf(p.err, "%s %v\n", failureMark, err)
}
