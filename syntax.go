package codemod

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language selects the tree-sitter grammar used for a file.
type Language int

const (
	JavaScript Language = iota
	TypeScript
	TSX
)

func (l Language) String() string {
	switch l {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "javascript"
	}
}

// LanguageForPath picks a grammar from the file extension. Anything that is
// not TypeScript is parsed as JavaScript, which also covers JSX.
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return TypeScript
	case ".tsx":
		return TSX
	default:
		return JavaScript
	}
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case TypeScript:
		return typescript.GetLanguage()
	case TSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Document is a freshly parsed source file. Offsets of every node refer to
// Source, which has already had its line endings normalized to LF.
type Document struct {
	Path   string
	Source []byte
	Lang   Language
	tree   *sitter.Tree
}

// Parse builds a syntax tree for src. A tree containing ERROR or MISSING
// nodes is rejected with a *ParseError.
func Parse(ctx context.Context, path string, src []byte) (*Document, error) {
	lang := LanguageForPath(path)
	normalized := normalizeNewlines(src)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, normalized)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Path: path, Line: 1, Column: 1}
		if n := firstErrorNode(root); n != nil {
			p := n.StartPoint()
			perr.Line, perr.Column = int(p.Row)+1, int(p.Column)+1
		}
		tree.Close()
		return nil, perr
	}

	return &Document{Path: path, Source: normalized, Lang: lang, tree: tree}, nil
}

func (d *Document) Root() *sitter.Node { return d.tree.RootNode() }

func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

func (d *Document) Text(n *sitter.Node) string {
	return string(d.Source[n.StartByte():n.EndByte()])
}

// Print re-emits the document with edits applied. Bytes outside the edited
// ranges are copied unchanged.
func (d *Document) Print(edits []Edit) string {
	if len(edits) == 0 {
		return string(d.Source)
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(d.Source))
	last := uint32(0)
	for _, e := range sorted {
		if e.Start < last {
			continue // overlaps an earlier edit
		}
		b.Write(d.Source[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
	}
	b.Write(d.Source[last:])
	return b.String()
}

// Edit replaces the bytes [Start, End) of a document's source with Text.
// Start == End is an insertion.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

func replaceNode(n *sitter.Node, text string) Edit {
	return Edit{Start: n.StartByte(), End: n.EndByte(), Text: text}
}

func insertAt(offset uint32, text string) Edit {
	return Edit{Start: offset, End: offset, Text: text}
}

// walk visits n and its descendants depth-first, parents before children.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func firstErrorNode(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}

func normalizeNewlines(src []byte) []byte {
	if bytes.IndexByte(src, '\r') < 0 {
		return src
	}
	out := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))
}
