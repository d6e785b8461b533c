package codemod

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// replaceStringLiterals rewrites every literal whose whole decoded value
// equals op.Old, keeping each literal's quote style.
func replaceStringLiterals(doc *Document, op ReplaceStringLiteral) []Edit {
	var edits []Edit
	walk(doc.Root(), func(n *sitter.Node) bool {
		lit, ok := literalOf(doc, n)
		if !ok {
			return true
		}
		if lit.Value == op.Old {
			edits = append(edits, replaceNode(n, lit.encode(op.New)))
		}
		return false
	})
	return edits
}

// renameIdentifiers rewrites every identifier spelled op.OldName, wherever
// it occurs. Bindings and scopes are not considered.
func renameIdentifiers(doc *Document, op RenameIdentifier) []Edit {
	var edits []Edit
	walk(doc.Root(), func(n *sitter.Node) bool {
		if matchesIdentifier(doc, n, op.OldName) {
			edits = append(edits, replaceNode(n, op.NewName))
			return false
		}
		return true
	})
	return edits
}
