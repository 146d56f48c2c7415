// Package diag accumulates compiler diagnostics (errors, warnings, info,
// hints) with source spans, severity, codes, and optional fix hints. Every
// compiler phase emits into one Store per compile; no phase ever panics or
// halts on a malformed-input diagnostic.
package diag

import (
	"fmt"
	"strings"

	"github.com/akkadolang/cedarc/internal/source"
)

// Severity ranks a diagnostic. Only Error prevents bytecode emission.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Related attaches a secondary location to a diagnostic, e.g. "previous
// declaration was here".
type Related struct {
	Message  string
	File     string
	Location source.Location
}

// Fix is a suggested edit for tooling (LSP quick-fix) use.
type Fix struct {
	Description string
	NewText     string
	Location    source.Location
}

// Diagnostic is a single compiler message.
type Diagnostic struct {
	Severity Severity
	Code     string // e.g. "E004", "W001", "L002", "P003", "M001", "MP002"
	Message  string
	File     string
	Location source.Location
	Related  []Related
	Fix      *Fix
}

// Store accumulates diagnostics for one compile. It never rejects or
// halts on a push; phases keep running after errors wherever a sensible
// fallback exists.
type Store struct {
	File        string
	diagnostics []Diagnostic
}

// NewStore creates a diagnostic store scoped to one source file name (used
// for rendering; may be empty for anonymous/REPL sources).
func NewStore(file string) *Store {
	return &Store{File: file}
}

// Emit appends a new diagnostic to the store.
func (s *Store) Emit(severity Severity, code, message string, loc source.Location) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		File:     s.File,
		Location: loc,
	})
}

// Emitf is Emit with fmt.Sprintf-style formatting of message.
func (s *Store) Emitf(severity Severity, code string, loc source.Location, format string, args ...any) {
	s.Emit(severity, code, fmt.Sprintf(format, args...), loc)
}

// EmitWithFix is Emit plus an attached suggested fix.
func (s *Store) EmitWithFix(severity Severity, code, message string, loc source.Location, fix Fix) {
	d := Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		File:     s.File,
		Location: loc,
		Fix:      &fix,
	}
	s.diagnostics = append(s.diagnostics, d)
}

// Append merges diagnostics produced by a sub-phase (e.g. the
// mini-notation lexer/parser) into this store, stamping each with this
// store's file name so locations render against the enclosing source.
func (s *Store) Append(diagnostics []Diagnostic) {
	for _, d := range diagnostics {
		d.File = s.File
		s.diagnostics = append(s.diagnostics, d)
	}
}

// All returns every diagnostic emitted so far, in emission order.
func (s *Store) All() []Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any diagnostic in the store has Error severity.
// Only a clean run (HasErrors == false) produces bytecode.
func (s *Store) HasErrors() bool {
	return HasErrors(s.diagnostics)
}

// HasErrors reports whether any diagnostic in the slice is an Error.
func HasErrors(diagnostics []Diagnostic) bool {
	for _, d := range diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Reset clears all accumulated diagnostics, keeping the file name.
func (s *Store) Reset() {
	s.diagnostics = s.diagnostics[:0]
}

// FormatText renders a single diagnostic as plain, uncolored text:
// "file:line:column: severity[code]: message".
func FormatText(d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s", d.File, d.Location.Line, d.Location.Column, d.Severity)
	if d.Code != "" {
		fmt.Fprintf(&b, "[%s]", d.Code)
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	for _, r := range d.Related {
		fmt.Fprintf(&b, "\n  note: %s:%d:%d: %s", r.File, r.Location.Line, r.Location.Column, r.Message)
	}
	if d.Fix != nil {
		fmt.Fprintf(&b, "\n  fix: %s", d.Fix.Description)
	}
	return b.String()
}
