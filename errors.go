package codemod

import "fmt"

// UsageError reports a missing or invalid command-line argument.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// InvalidPatchError reports a patch document that cannot be used. Nothing
// is applied when a patch fails to load.
type InvalidPatchError struct {
	Reason string
	Err    error
}

func (e *InvalidPatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid patch: %s: %v", e.Reason, e.Err)
	}
	return "invalid patch: " + e.Reason
}

func (e *InvalidPatchError) Unwrap() error { return e.Err }

// ParseError reports source text the grammar could not parse cleanly.
// Line and Column are 1-based and point at the first error node.
type ParseError struct {
	Path   string
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
}

type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string { return e.Err.Error() }

func (e *DetailedError) Unwrap() error { return e.Err }
