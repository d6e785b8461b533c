package codemod

// Operation is one edit addressed to a single file. The set of
// implementations is closed: InsertImport, ReplaceStringLiteral and
// RenameIdentifier.
type Operation interface {
	Target() string
	Kind() string
	operation()
}

// InsertImport ensures a single import declaration for Module that binds at
// least the Named imports.
type InsertImport struct {
	File   string
	Module string
	Named  []string
}

// ReplaceStringLiteral rewrites every string or substitution-free template
// literal whose decoded value equals Old.
type ReplaceStringLiteral struct {
	File string
	Old  string
	New  string
}

// RenameIdentifier rewrites every identifier spelled OldName. The match is
// purely textual: scopes, shadowing and declarations are not considered.
type RenameIdentifier struct {
	File    string
	OldName string
	NewName string
}

const (
	KindInsertImport         = "insert_import"
	KindReplaceStringLiteral = "replace_string_literal"
	KindRenameIdentifier     = "rename_identifier"
)

func (o InsertImport) Target() string         { return o.File }
func (o ReplaceStringLiteral) Target() string { return o.File }
func (o RenameIdentifier) Target() string     { return o.File }

func (InsertImport) Kind() string         { return KindInsertImport }
func (ReplaceStringLiteral) Kind() string { return KindReplaceStringLiteral }
func (RenameIdentifier) Kind() string     { return KindRenameIdentifier }

func (InsertImport) operation()         {}
func (ReplaceStringLiteral) operation() {}
func (RenameIdentifier) operation()     {}

// Patch is the ordered list of operations loaded for one run.
type Patch struct {
	Operations []Operation
}

type Status int

const (
	StatusNoChanges Status = iota
	StatusPatched
)

func (s Status) String() string {
	if s == StatusPatched {
		return "patched"
	}
	return "no changes"
}

type FileResult struct {
	Path    string
	Status  Status
	Applied int
}

type Summary struct {
	Patched   []string
	Unchanged []string
	Message   string
}
