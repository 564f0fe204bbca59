package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/token"
)

func TestReportPlainNoColor(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Color: false}

	errs := []*diagnostics.DiagnosticError{
		diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, token.Pos(1, 1), "foo"),
	}
	r.Report(errs)

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes, got %q", out)
	}
	if !strings.Contains(out, "could not find 'foo'") {
		t.Fatalf("missing diagnostic message, got %q", out)
	}
	if !strings.Contains(out, "1 error") {
		t.Fatalf("missing summary line, got %q", out)
	}
}

func TestReportColorized(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Color: true}

	errs := []*diagnostics.DiagnosticError{
		diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, token.Pos(1, 1), "foo"),
		diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, token.Pos(2, 1), "bar"),
	}
	r.Report(errs)

	out := buf.String()
	if !strings.Contains(out, colorRed) {
		t.Fatalf("expected red-colorized diagnostics, got %q", out)
	}
	if !strings.Contains(out, "2 errors") {
		t.Fatalf("expected plural summary, got %q", out)
	}
}

func TestReportWithCandidates(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Color: false}

	err := diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatCall, token.Pos(3, 4), "f", "").
		WithCandidates([]string{"f(Int) -> Int", "f(String) -> String"})
	r.Report([]*diagnostics.DiagnosticError{err})

	out := buf.String()
	if !strings.Contains(out, "candidate: f(Int) -> Int") {
		t.Fatalf("missing first candidate, got %q", out)
	}
	if !strings.Contains(out, "candidate: f(String) -> String") {
		t.Fatalf("missing second candidate, got %q", out)
	}
}

func TestGroupByPhase(t *testing.T) {
	errs := []*diagnostics.DiagnosticError{
		diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, token.Pos(1, 1), "a"),
		diagnostics.New(diagnostics.PhaseHost, diagnostics.CodeLoaderFailed, token.Pos(2, 1), "b", "boom"),
		diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, token.Pos(3, 1), "c"),
	}

	order, groups := GroupByPhase(errs)
	if len(order) != 2 || order[0] != diagnostics.PhaseResolve || order[1] != diagnostics.PhaseHost {
		t.Fatalf("order = %v, want [resolve host]", order)
	}
	if len(groups[diagnostics.PhaseResolve]) != 2 {
		t.Fatalf("resolve group = %d, want 2", len(groups[diagnostics.PhaseResolve]))
	}
	if len(groups[diagnostics.PhaseHost]) != 1 {
		t.Fatalf("host group = %d, want 1", len(groups[diagnostics.PhaseHost]))
	}
}

func TestFormatStats(t *testing.T) {
	s := FormatStats(Stats{Files: 1234, Errors: 2, Phases: 3})
	if !strings.Contains(s, "1,234") {
		t.Fatalf("expected humanized file count, got %q", s)
	}
	if !strings.Contains(s, "2 error(s)") {
		t.Fatalf("expected error count, got %q", s)
	}
}

func TestNewDetectsNonFileAsNoColor(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	if r.Color {
		t.Fatal("expected no color for a non-*os.File writer")
	}
}
