// Package report renders a Compiler's accumulated diagnostics (spec.md §6,
// supplementing it per SPEC_FULL.md §4.9): grouping primary diagnostics
// with their secondary overload-candidate list and colorizing output when
// the destination is a terminal. Pure presentation — nothing here feeds
// back into compiler semantics.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/funxy/internal/diagnostics"
)

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
	colorReset  = "\x1b[0m"
)

// Reporter renders DiagnosticErrors to an io.Writer, colorizing only when
// Color is true.
type Reporter struct {
	Out   io.Writer
	Color bool
}

// New builds a Reporter writing to out, auto-detecting color support the
// same way a CLI decides whether to colorize its own stdout: a real
// terminal (isatty.IsTerminal) or a Windows/Cygwin pty (IsCygwinTerminal),
// never when NO_COLOR is set.
func New(out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		fd := f.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &Reporter{Out: out, Color: color}
}

// Report renders every diagnostic in errs, one per line, followed by any
// candidate list, then a humanized summary line.
func (r *Reporter) Report(errs []*diagnostics.DiagnosticError) {
	for _, e := range errs {
		r.writeOne(e)
	}
	r.writeSummary(errs)
}

func (r *Reporter) writeOne(e *diagnostics.DiagnosticError) {
	line := e.Error()
	// Error() appends the candidate lines itself; keep only the primary
	// line here so the loop below prints each candidate once.
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if r.Color {
		line = colorRed + line + colorReset
	}
	fmt.Fprintln(r.Out, line)

	for _, cand := range e.Candidates {
		c := "  candidate: " + cand
		if r.Color {
			c = colorYellow + c + colorReset
		}
		fmt.Fprintln(r.Out, c)
	}
}

// writeSummary prints a one-line, human-readable count ("3 errors", "1
// error") via go-humanize's Comma, dimmed when colorized, so a long
// compile's tail doesn't bury how many problems were found.
func (r *Reporter) writeSummary(errs []*diagnostics.DiagnosticError) {
	n := len(errs)
	word := "errors"
	if n == 1 {
		word = "error"
	}
	line := fmt.Sprintf("%s %s", humanize.Comma(int64(n)), word)
	if r.Color {
		line = colorDim + line + colorReset
	}
	fmt.Fprintln(r.Out, line)
}

// GroupByPhase buckets diagnostics by the pipeline phase that raised them,
// preserving first-seen order, for a caller that wants to render one
// section per phase instead of a flat list.
func GroupByPhase(errs []*diagnostics.DiagnosticError) (order []diagnostics.Phase, groups map[diagnostics.Phase][]*diagnostics.DiagnosticError) {
	groups = make(map[diagnostics.Phase][]*diagnostics.DiagnosticError)
	for _, e := range errs {
		if _, ok := groups[e.Phase]; !ok {
			order = append(order, e.Phase)
		}
		groups[e.Phase] = append(groups[e.Phase], e)
	}
	return order, groups
}

// Stats summarizes one compile's diagnostic report for humanized display —
// e.g. "compiled 128 file(s), 3 error(s) in 2 phase(s)".
type Stats struct {
	Files  int
	Errors int
	Phases int
}

// FormatStats renders s the way a CLI's closing summary line would.
func FormatStats(s Stats) string {
	return fmt.Sprintf("compiled %s file(s), %s error(s) in %s phase(s)",
		humanize.Comma(int64(s.Files)), humanize.Comma(int64(s.Errors)), humanize.Comma(int64(s.Phases)))
}
