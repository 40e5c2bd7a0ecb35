package cif

import "fmt"

// SyntaxError reports a malformed CIF token at a given line, modeled
// on the teacher's CIFSyntaxError/GenbankSyntaxError shape: a fixed
// struct implementing error, with Wrap for prefixing context to the
// message (no inner error is kept).
type SyntaxError struct {
	Line int
	Msg  string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("cif: line %d: %s", e.Line, e.Msg)
}

// Wrap produces a new SyntaxError at the same line with a formatted
// message, letting callers add context without losing the line number.
func (e SyntaxError) Wrap(format string, a ...any) error {
	return SyntaxError{Line: e.Line, Msg: fmt.Sprintf(format, a...) + ": " + e.Msg}
}
