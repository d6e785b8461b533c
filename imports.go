package codemod

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// importDecl is a top-level import statement split into its clauses.
// Missing clauses are nil.
type importDecl struct {
	stmt      *sitter.Node
	source    *sitter.Node
	binding   *sitter.Node // default import
	namespace *sitter.Node
	named     *sitter.Node
	specs     []importSpec
	typeOnly  bool // import type ... / import typeof ...
}

type importSpec struct {
	name string // imported name, before any alias
	text string // specifier as written, e.g. "a as b" or "type T"
}

// findImports returns every top-level import of module, in source order.
func findImports(doc *Document, module string) []*importDecl {
	var decls []*importDecl
	root := doc.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if spec, ok := moduleSpecifier(doc, stmt); ok && spec == module {
			decls = append(decls, splitImport(doc, stmt))
		}
	}
	return decls
}

// acceptsNames reports whether value names can be added to d in place.
func (d *importDecl) acceptsNames() bool {
	return !d.typeOnly && d.namespace == nil
}

// mergeTarget picks the declaration that receives new names: the first one
// with a named clause that accepts names, else the first that accepts a
// named clause, else the first.
func mergeTarget(decls []*importDecl) *importDecl {
	for _, d := range decls {
		if d.acceptsNames() && d.named != nil {
			return d
		}
	}
	for _, d := range decls {
		if d.acceptsNames() {
			return d
		}
	}
	return decls[0]
}

func splitImport(doc *Document, stmt *sitter.Node) *importDecl {
	decl := &importDecl{stmt: stmt, source: stmt.ChildByFieldName("source")}
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if c := stmt.Child(i); !c.IsNamed() && (c.Type() == "type" || c.Type() == "typeof") {
			decl.typeOnly = true
		}
	}
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		clause := stmt.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			part := clause.NamedChild(j)
			switch part.Type() {
			case "identifier":
				decl.binding = part
			case "namespace_import":
				decl.namespace = part
			case "named_imports":
				decl.named = part
				decl.specs = importSpecs(doc, part)
			}
		}
	}
	return decl
}

func importSpecs(doc *Document, named *sitter.Node) []importSpec {
	var specs []importSpec
	for i := 0; i < int(named.NamedChildCount()); i++ {
		n := named.NamedChild(i)
		if n.Type() != "import_specifier" {
			continue
		}
		spec := importSpec{text: doc.Text(n), name: doc.Text(n)}
		if name := n.ChildByFieldName("name"); name != nil {
			spec.name = doc.Text(name)
			if lit, ok := literalOf(doc, name); ok {
				spec.name = lit.Value
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// mergeImport makes sure module is imported with at least op.Named. Names
// already imported from module are kept in place; missing names are
// appended to one declaration in request order. Without any import of
// module, a new declaration becomes the first statement of the file.
func mergeImport(doc *Document, op InsertImport) []Edit {
	requested := uniqueNames(op.Named)

	decls := findImports(doc, op.Module)
	if len(decls) == 0 {
		return []Edit{prependImport(doc, op.Module, requested)}
	}

	existing := make(map[string]struct{})
	for _, d := range decls {
		for _, s := range d.specs {
			existing[s.name] = struct{}{}
		}
	}
	var missing []string
	for _, name := range requested {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	decl := mergeTarget(decls)
	switch {
	case !decl.acceptsNames():
		// Namespace and type-only imports cannot take value names.
		line := "\nimport " + namedClause(missing) + " from " + doc.Text(decl.source) + ";"
		return []Edit{insertAt(decl.stmt.EndByte(), line)}

	case decl.named != nil:
		names := make([]string, 0, len(decl.specs)+len(missing))
		for _, s := range decl.specs {
			names = append(names, s.text)
		}
		names = append(names, missing...)
		return []Edit{replaceNode(decl.named, namedClause(names))}

	case decl.binding != nil:
		return []Edit{insertAt(decl.binding.EndByte(), ", "+namedClause(missing))}

	default:
		return []Edit{insertAt(decl.source.StartByte(), namedClause(missing)+" from ")}
	}
}

func prependImport(doc *Document, module string, names []string) Edit {
	line := "import " + namedClause(names) + " from " + quote(module, '"') + ";"

	root := doc.Root()
	if root.ChildCount() > 0 {
		if first := root.Child(0); first.Type() == "hash_bang_line" {
			return insertAt(first.EndByte(), "\n"+line)
		}
	}
	return insertAt(0, line+"\n")
}

func namedClause(names []string) string {
	if len(names) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(names, ", ") + " }"
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
