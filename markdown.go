package codemod

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fencedPatch is a patch document found in a fenced Markdown code block.
type fencedPatch struct {
	Format  Format
	Content []byte
}

// findFencedPatch returns the first ```json or ```yaml block of a Markdown
// document. Blocks in any other language are skipped.
func findFencedPatch(source []byte) (*fencedPatch, error) {
	var found *fencedPatch
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(block.Language(source)))
		switch format := FormatForPath("patch." + lang); format {
		case FormatJSON, FormatYAML:
			found = &fencedPatch{Format: format, Content: blockContent(block, source)}
			return ast.WalkStop, nil
		default:
			return ast.WalkSkipChildren, nil
		}
	})
	if err != nil {
		return nil, &InvalidPatchError{Reason: "cannot read Markdown", Err: err}
	}
	if found == nil {
		return nil, &InvalidPatchError{Reason: "no json or yaml code block found"}
	}
	return found, nil
}

func blockContent(block *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}
