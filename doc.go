// Package walkr analyzes a Python codebase statically and produces a single
// structural report: module and function dependency graphs, complexity
// hotspots, documentation coverage, and database-access compliance findings.
// No Python code is ever executed.
//
// # Pipeline
//
// Analysis runs in three phases:
//
//  1. Prepare (serial): discover files, read contents, derive dotted module
//     names from paths.
//
//  2. Extract (parallel): parse each file with tree-sitter and record its
//     imports, definitions, call sites, docstrings, and branch counts. A
//     file that fails to parse becomes a failure record, not an error.
//
//  3. Merge (serial): build the module and call graphs, detect import
//     cycles, and run the enabled analysis passes over the merged view.
//
// # Usage
//
// Create an Engine from a configuration and analyze a directory tree:
//
//	cfg := walkr.DefaultConfig()
//	e, err := walkr.New(cfg)
//	if err != nil { ... }
//	defer e.Close()
//
//	r, err := e.Analyze(context.Background(), "path/to/project")
//
// The returned [Report] is an immutable value: every slice is sorted, every
// graph edge carries an explicit resolution state, and the same input set
// always yields the same report regardless of worker count or cache state.
//
// # Edge resolution
//
// Static analysis of a dynamic language cannot resolve every reference.
// Instead of dropping uncertain edges, each [ImportEdge] and [CallEdge]
// carries a resolution state: resolved (target found in the analyzed set),
// external (import of a module outside the set), or unresolved (call whose
// target could not be determined).
//
// # Incremental analysis
//
// [WithCache] enables a SQLite cache of per-file extraction records keyed
// by content hash. Unchanged files skip reparsing on subsequent runs; the
// report is identical either way.
package walkr
