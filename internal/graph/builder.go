// Package graph merges per-file extraction records into project-wide module
// and function graphs. Resolution is best-effort: the analyzed language
// permits runtime dispatch that static analysis cannot follow, so edges
// carry an explicit resolution state and unresolved edges are retained.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/walkr-io/walkr/internal/report"
)

// ErrDuplicateKey signals a qualified-name collision between two function
// definitions. This is fatal: downstream classification would silently merge
// unrelated entities.
var ErrDuplicateKey = errors.New("duplicate function key")

// Build produces the resolved module-dependency graph, the function call
// graph, and the list of import cycles. Output ordering is fully
// deterministic regardless of the order modules were discovered in.
func Build(modules []*report.ModuleNode) (*report.ModuleGraph, *report.CallGraph, [][]string, error) {
	sorted := make([]*report.ModuleNode, len(modules))
	copy(sorted, modules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	moduleSet := make(map[string]bool, len(sorted))
	for _, m := range sorted {
		moduleSet[m.Name] = true
	}

	// Project-wide function index. Duplicate keys abort the build.
	functions := make([]*report.FunctionNode, 0)
	fnSet := make(map[string]bool)
	// Per-module index of trailing identifier → sorted qualified names.
	byIdent := make(map[string]map[string][]string)
	for _, m := range sorted {
		idents := make(map[string][]string)
		for _, fn := range m.Functions {
			if fnSet[fn.Name] {
				return nil, nil, nil, fmt.Errorf("%w: %s", ErrDuplicateKey, fn.Name)
			}
			fnSet[fn.Name] = true
			functions = append(functions, fn)
			ident := trailingIdent(fn.Name)
			idents[ident] = append(idents[ident], fn.Name)
		}
		for ident := range idents {
			sort.Strings(idents[ident])
		}
		byIdent[m.Name] = idents
	}
	sort.Slice(functions, func(i, j int) bool { return functions[i].Name < functions[j].Name })

	importEdges := buildImportEdges(sorted, moduleSet)
	callEdges := buildCallEdges(sorted, importEdges, byIdent)
	cycles := findCycles(sorted, importEdges)

	mg := &report.ModuleGraph{Modules: sorted, Edges: importEdges}
	cg := &report.CallGraph{Functions: functions, Edges: callEdges}
	return mg, cg, cycles, nil
}

// buildImportEdges resolves each raw import target against the project
// module set: exact match first, then the parent prefix (a.b.c resolves to
// a.b when the target names a symbol inside a known module). Everything
// else is external.
func buildImportEdges(modules []*report.ModuleNode, moduleSet map[string]bool) []report.ImportEdge {
	var edges []report.ImportEdge
	for _, m := range modules {
		for _, imp := range m.Imports {
			edge := report.ImportEdge{
				From:       m.Name,
				Target:     imp.Target,
				Line:       imp.Line,
				Wildcard:   imp.Wildcard,
				Resolution: report.External,
			}
			switch {
			case moduleSet[imp.Target]:
				edge.To = imp.Target
				edge.Resolution = report.Resolved
			default:
				if parent := parentModule(imp.Target); parent != "" && moduleSet[parent] {
					edge.To = parent
					edge.Resolution = report.Resolved
				}
			}
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Target < b.Target
	})
	return edges
}

// buildCallEdges resolves each call site in three steps: trailing
// identifier against the caller's own module, then against modules
// reachable through the caller's resolved imports, then unresolved.
func buildCallEdges(modules []*report.ModuleNode, importEdges []report.ImportEdge, byIdent map[string]map[string][]string) []report.CallEdge {
	// Resolved import targets per module, deduplicated, in sorted order so
	// cross-module resolution is deterministic.
	imported := make(map[string][]string)
	for _, edge := range importEdges {
		if edge.Resolution != report.Resolved {
			continue
		}
		found := false
		for _, t := range imported[edge.From] {
			if t == edge.To {
				found = true
				break
			}
		}
		if !found {
			imported[edge.From] = append(imported[edge.From], edge.To)
		}
	}
	for from := range imported {
		sort.Strings(imported[from])
	}

	var edges []report.CallEdge
	for _, m := range modules {
		for _, fn := range m.Functions {
			for _, site := range fn.Calls {
				edge := report.CallEdge{
					Caller:     fn.Name,
					Callee:     site.Callee,
					Line:       site.Line,
					Resolution: report.Unresolved,
				}
				ident := trailingIdent(site.Callee)
				if target, ok := resolveInModule(byIdent[m.Name], m.Name, ident); ok {
					edge.To = target
					edge.Resolution = report.Resolved
				} else {
					for _, importedMod := range imported[m.Name] {
						if target, ok := resolveInModule(byIdent[importedMod], importedMod, ident); ok {
							edge.To = target
							edge.Resolution = report.Resolved
							break
						}
					}
				}
				edges = append(edges, edge)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Caller != b.Caller {
			return a.Caller < b.Caller
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Callee < b.Callee
	})
	return edges
}

// resolveInModule looks up a trailing identifier in one module's function
// index. A direct module-level function wins over methods; ties fall to the
// lexicographically first candidate.
func resolveInModule(idents map[string][]string, module, ident string) (string, bool) {
	if idents == nil || ident == "" {
		return "", false
	}
	candidates := idents[ident]
	if len(candidates) == 0 {
		return "", false
	}
	direct := module + "." + ident
	for _, c := range candidates {
		if c == direct {
			return c, true
		}
	}
	return candidates[0], true
}

// trailingIdent returns the identifier after the last dot, stripping any
// subscript or call suffix noise that survives in raw callee text.
func trailingIdent(text string) string {
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.IndexAny(text, "([ "); idx >= 0 {
		text = text[:idx]
	}
	return text
}

// parentModule strips the last dotted segment: a.b.c → a.b. Returns empty
// for single-segment names.
func parentModule(target string) string {
	idx := strings.LastIndex(target, ".")
	if idx <= 0 {
		return ""
	}
	return target[:idx]
}
