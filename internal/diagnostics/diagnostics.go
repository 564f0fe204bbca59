// Package diagnostics defines the compiler's error taxonomy. Every failing
// call in the pipeline returns a *DiagnosticError rather than panicking or
// using exceptions for control flow (spec.md §7).
package diagnostics

import (
	"fmt"

	"github.com/funvibe/funxy/internal/token"
)

// Phase names the pipeline stage a diagnostic originated in.
type Phase string

const (
	PhaseResolve  Phase = "resolve"
	PhaseTemplate Phase = "template"
	PhaseMatch    Phase = "match"
	PhaseEmit     Phase = "emit"
	PhaseInit     Phase = "init"
	PhaseHost     Phase = "host"
)

// Code identifies one taxonomy entry from spec.md §7.
type Code string

const (
	// Resolution
	CodeSymNotFound     Code = "R001" // SymNotFound
	CodeAmbiguousSymbol Code = "R002" // AmbiguousSymbol
	CodeNotDistinct     Code = "R003" // NotDistinct
	CodeNotExported     Code = "R004" // NotExported
	CodeRedeclaration   Code = "R005" // Redeclaration
	CodeUnsupportedNode Code = "R006" // UnsupportedNode
	CodeUnsupported     Code = "R007" // Unsupported (compiler bug, never user syntax)

	// Typing
	CodeIncompatType          Code = "T001"
	CodeExpectedAddressable   Code = "T002"
	CodeExpectedPointerType   Code = "T003"
	CodeExpectedChoice        Code = "T004"
	CodeExpectedTraitType     Code = "T005"
	CodeInvalidCast           Code = "T006"

	// Overload / Call
	CodeIncompatCall           Code = "C001" // carries candidate list
	CodeExpectedCompileTimeArg Code = "C002"
	CodeExpectedNonVoidReturn  Code = "C003"

	// Template
	CodeDuplicateParam        Code = "G001"
	CodeParamNotInSignature   Code = "G002"
	CodeArgCountMismatch      Code = "G003"
	CodeCircularExpansion     Code = "G004"
	CodeCtEvalFailed          Code = "G005"

	// Initialization
	CodeCircularInit      Code = "I001"
	CodeMissingInitializer Code = "I002"
	CodeFieldMissing      Code = "I003"

	// Host
	CodeLoaderFailed  Code = "H001"
	CodeLoaderMismatch Code = "H002"
)

var templates = map[Code]string{
	CodeSymNotFound:     "could not find '%s'",
	CodeAmbiguousSymbol: "ambiguous reference to '%s'",
	CodeNotDistinct:     "'%s' is not a distinct type",
	CodeNotExported:     "symbol '%s' is not exported",
	CodeRedeclaration:   "'%s' is already declared",
	CodeUnsupportedNode: "unsupported node in this position: %s",
	CodeUnsupported:     "unsupported: %s (compiler bug)",

	CodeIncompatType:        "incompatible type: expected %s, got %s",
	CodeExpectedAddressable: "expression is not addressable",
	CodeExpectedPointerType: "expected a pointer type, got %s",
	CodeExpectedChoice:      "expected a choice (enum) type, got %s",
	CodeExpectedTraitType:   "expected a trait type, got %s",
	CodeInvalidCast:         "cannot cast %s to %s",

	CodeIncompatCall:           "no matching overload for call to '%s'%s",
	CodeExpectedCompileTimeArg: "argument must be a compile-time value",
	CodeExpectedNonVoidReturn:  "expected a non-void return type",

	CodeDuplicateParam:      "duplicate template parameter '%s'",
	CodeParamNotInSignature: "compile-time parameter '%s' not declared in signature",
	CodeArgCountMismatch:    "expected %d template argument(s), got %d",
	CodeCircularExpansion:   "circular template expansion for '%s'",
	CodeCtEvalFailed:        "compile-time evaluation of '%s' failed: %s",

	CodeCircularInit:       "circular initialization involving '%s'",
	CodeMissingInitializer: "'%s' has no initializer",
	CodeFieldMissing:       "missing field '%s'",

	CodeLoaderFailed:   "host loader failed for '%s': %s",
	CodeLoaderMismatch: "host loader for '%s' returned a value incompatible with its declared signature",
}

// DiagnosticError is the single error shape every pipeline entry point
// returns or accumulates. ChunkID correlates diagnostics back to the
// Compiler instance that produced them (see internal/compiler).
type DiagnosticError struct {
	Code     Code
	Phase    Phase
	Args     []interface{}
	Token    token.Token
	ChunkID  string
	File     string
	Hint     string

	// Candidates holds secondary diagnostics for overload-mismatch errors
	// (spec.md §6: "secondary candidates are appended for overload errors").
	Candidates []string
}

func (e *DiagnosticError) Error() string {
	tmpl, ok := templates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown error code: %s", e.Code)
	}
	msg := fmt.Sprintf(tmpl, e.Args...)

	prefix := ""
	if e.File != "" {
		prefix = fmt.Sprintf("%s: ", e.File)
	}
	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}

	var out string
	if e.Token.Line > 0 {
		out = fmt.Sprintf("%s%serror at %d:%d [%s]: %s", prefix, phaseStr, e.Token.Line, e.Token.Column, e.Code, msg)
	} else {
		out = fmt.Sprintf("%s%serror [%s]: %s", prefix, phaseStr, e.Code, msg)
	}
	for _, c := range e.Candidates {
		out += "\n  candidate: " + c
	}
	return out
}

// New builds a diagnostic for the given code and position.
func New(phase Phase, code Code, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Phase: phase, Token: tok, Args: args}
}

// WithCandidates attaches the rendered overload-candidate list used by
// IncompatCall diagnostics (spec.md §6).
func (e *DiagnosticError) WithCandidates(candidates []string) *DiagnosticError {
	e.Candidates = candidates
	return e
}

// Internal marks a diagnostic as an always-a-bug Unsupported error: a
// reachable path the pipeline has no business taking given well-formed
// input.
func Internal(tok token.Token, where string) *DiagnosticError {
	return New(PhaseResolve, CodeUnsupported, tok, where)
}
