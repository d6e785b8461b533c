package codemod

import (
	"context"
	"fmt"
)

// Apply runs patch with config and returns the per-file outcome.
func Apply(ctx context.Context, patch *Patch, config Config) (Summary, error) {
	app, err := NewApp(&config)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to initialize codemod app: %w", err)
	}
	return app.Execute(ctx, patch)
}

// ApplyOperation parses src afresh, applies op and prints the result. path
// is only used to pick the grammar and to label errors.
func ApplyOperation(ctx context.Context, path, src string, op Operation) (string, error) {
	out, _, err := applyOperation(ctx, path, src, op)
	return out, err
}

// ApplyOperations folds ops over src in order, each one seeing the output of
// the previous.
func ApplyOperations(ctx context.Context, path, src string, ops []Operation) (string, error) {
	for _, op := range ops {
		next, err := ApplyOperation(ctx, path, src, op)
		if err != nil {
			return "", err
		}
		src = next
	}
	return src, nil
}

func applyOperation(ctx context.Context, path, src string, op Operation) (string, int, error) {
	doc, err := Parse(ctx, path, []byte(src))
	if err != nil {
		return "", 0, err
	}
	defer doc.Close()

	var edits []Edit
	switch op := op.(type) {
	case InsertImport:
		edits = mergeImport(doc, op)
	case ReplaceStringLiteral:
		edits = replaceStringLiterals(doc, op)
	case RenameIdentifier:
		edits = renameIdentifiers(doc, op)
	default:
		return "", 0, &InvalidPatchError{Reason: fmt.Sprintf("unsupported operation %T", op)}
	}
	return doc.Print(edits), len(edits), nil
}
