// Package pysrc parses Python source files with tree-sitter and produces
// per-file extraction records: imports, definitions, call sites, and
// docstring presence. Each file is processed independently with no shared
// mutable state, so extraction is safe to run from a worker pool.
package pysrc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/walkr-io/walkr/internal/report"
)

// Extract parses one source file and returns its FileRecord. A syntax error
// yields a record with Failure set; it never returns an error for malformed
// source, only for context cancellation. Each call creates its own
// tree-sitter parser so concurrent extraction is safe.
func Extract(ctx context.Context, path, module string, src []byte) (*report.FileRecord, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		line := 1
		if root != nil {
			line = firstErrorLine(root)
		}
		return &report.FileRecord{
			Path: path,
			Failure: &report.ParseFailure{
				Path:    path,
				Module:  module,
				Line:    line,
				Message: fmt.Sprintf("syntax error near line %d", line),
			},
		}, nil
	}

	w := &walker{
		src: src,
		mod: &report.ModuleNode{
			Name:         module,
			Path:         path,
			HasDocstring: blockHasDocstring(root),
			TotalLines:   bytes.Count(src, []byte{'\n'}) + 1,
		},
		fnIndex: make(map[string]int),
	}
	w.walk(root, module)

	return &report.FileRecord{Path: path, Module: w.mod}, nil
}

// firstErrorLine returns the 1-based line of the first ERROR or missing node
// in the tree, for the failure message.
func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.HasError() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row) + 1
}

// walker carries the traversal state for one file. qname is the lexical
// nesting path (module, then enclosing classes/functions); fn is the
// innermost enclosing function, nil at module or class level.
type walker struct {
	src     []byte
	mod     *report.ModuleNode
	fn      *report.FunctionNode
	fnIndex map[string]int // qualified name → index in mod.Functions
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.src[node.StartByte():node.EndByte()])
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func (w *walker) walk(node *sitter.Node, qname string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_statement":
			w.collectImport(child)
		case "import_from_statement":
			w.collectImportFrom(child)
		case "function_definition":
			w.collectFunction(child, qname)
		case "class_definition":
			w.collectClass(child, qname)
		case "decorated_definition":
			// Decorators wrap the definition; descend to reach it.
			w.walk(child, qname)
		case "call":
			w.collectCall(child)
			w.walk(child, qname)
		case "if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "boolean_operator", "conditional_expression",
			"case_clause":
			if w.fn != nil {
				w.fn.Branches++
			}
			w.walk(child, qname)
		default:
			w.walk(child, qname)
		}
	}
}

// collectImport handles `import a.b` and `import a.b as c`.
func (w *walker) collectImport(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			w.addImport(report.Import{Target: w.text(child), Line: line(node)})
		case "aliased_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "dotted_name" {
					w.addImport(report.Import{Target: w.text(gc), Line: line(node)})
					break
				}
			}
		}
	}
}

// collectImportFrom handles `from a.b import c`, relative forms like
// `from ..x import y`, and wildcard imports. The recorded target is the
// source module path; relative prefixes are resolved against the importing
// module's own qualified name.
func (w *walker) collectImportFrom(node *sitter.Node) {
	var target string
	var relative, wildcard, sawImport bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			relative = true
			var dots, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "import_prefix":
					dots = w.text(gc)
				case "dotted_name":
					name = w.text(gc)
				}
			}
			target = resolveRelative(w.mod.Name, len(dots), name)
		case "dotted_name":
			if !sawImport {
				target = w.text(child)
			}
		case "wildcard_import":
			wildcard = true
		}
	}

	if target == "" {
		return
	}
	w.addImport(report.Import{
		Target:   target,
		Line:     line(node),
		Relative: relative,
		Wildcard: wildcard,
	})
}

// resolveRelative converts a relative import (dots + optional name) into an
// absolute dotted target. One dot means the importing module's own package;
// each additional dot climbs one package higher. Dots that climb past the
// project root leave the bare name, which downstream resolution will tag
// external.
func resolveRelative(module string, dots int, name string) string {
	parts := strings.Split(module, ".")
	if dots > len(parts) {
		dots = len(parts)
	}
	base := parts[:len(parts)-dots]
	switch {
	case len(base) == 0:
		return name
	case name == "":
		return strings.Join(base, ".")
	default:
		return strings.Join(base, ".") + "." + name
	}
}

// addImport keeps set semantics over (target, wildcard): the first
// occurrence wins, preserving its line number.
func (w *walker) addImport(imp report.Import) {
	for _, existing := range w.mod.Imports {
		if existing.Target == imp.Target && existing.Wildcard == imp.Wildcard {
			return
		}
	}
	w.mod.Imports = append(w.mod.Imports, imp)
}

// collectClass records a class definition and walks its body with the class
// name appended to the nesting path, so methods become module.Class.method.
func (w *walker) collectClass(node *sitter.Node, qname string) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil {
		return
	}
	qualified := qname + "." + w.text(nameNode)

	w.mod.Classes = append(w.mod.Classes, &report.ClassNode{
		Name:         qualified,
		StartLine:    line(node),
		EndLine:      int(node.EndPoint().Row) + 1,
		HasDocstring: body != nil && blockHasDocstring(body),
	})

	if body != nil {
		// Class bodies never belong to an enclosing function's metric scope.
		prev := w.fn
		w.fn = nil
		w.walk(body, qualified)
		w.fn = prev
	}
}

// collectFunction records a function or method definition. Nested functions
// get the full lexical path in their qualified name. A lexical redefinition
// inside one file keeps the last definition, matching runtime semantics, so
// only cross-entity collisions surface as invariant violations downstream.
func (w *walker) collectFunction(node *sitter.Node, qname string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	qualified := qname + "." + w.text(nameNode)
	body := node.ChildByFieldName("body")

	fn := &report.FunctionNode{
		Name:         qualified,
		Module:       w.mod.Name,
		Params:       w.paramNames(node.ChildByFieldName("parameters")),
		StartLine:    line(node),
		EndLine:      int(node.EndPoint().Row) + 1,
		HasDocstring: body != nil && blockHasDocstring(body),
	}

	if idx, ok := w.fnIndex[qualified]; ok {
		w.mod.Functions[idx] = fn
	} else {
		w.fnIndex[qualified] = len(w.mod.Functions)
		w.mod.Functions = append(w.mod.Functions, fn)
	}

	if body != nil {
		prev := w.fn
		w.fn = fn
		w.walk(body, qualified)
		w.fn = prev
	}
}

// paramNames extracts parameter names from a parameters node. Splat
// parameters keep their star prefix (*args, **kwargs); bare separators
// (/ and *) are skipped.
func (w *walker) paramNames(params *sitter.Node) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, w.text(child))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" {
					names = append(names, w.text(gc))
					break
				}
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			names = append(names, w.text(child))
		}
	}
	return names
}

// collectCall records the raw textual form of the callee expression, e.g.
// "self.db.execute" for `self.db.execute(sql)`. The raw text is what the
// compliance classifier matches against, so it is captured verbatim.
func (w *walker) collectCall(node *sitter.Node) {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}
	site := report.CallSite{Callee: w.text(callee), Line: line(node)}
	w.mod.Calls = append(w.mod.Calls, site)
	if w.fn != nil {
		w.fn.Calls = append(w.fn.Calls, site)
	}
}

// blockHasDocstring reports whether the first statement of a block (or the
// module root) is a bare string literal.
func blockHasDocstring(block *sitter.Node) bool {
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "expression_statement" || child.ChildCount() == 0 {
			return false
		}
		return child.Child(0).Type() == "string"
	}
	return false
}
