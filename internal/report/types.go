package report

// Extraction domain types

// ParseFailure records a file that could not be parsed. Failed files are
// excluded from all graphs but remain visible in the final report.
type ParseFailure struct {
	Path    string `json:"path"`
	Module  string `json:"module"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Import is one raw import target recorded in a module. Relative imports are
// already resolved against the importing module's own qualified name by the
// extraction pass; Target holds the absolute dotted form.
type Import struct {
	Target   string `json:"target"`
	Line     int    `json:"line"`
	Relative bool   `json:"relative,omitempty"`
	Wildcard bool   `json:"wildcard,omitempty"`
}

// CallSite is the raw textual form of a callee expression together with the
// line it appears on, e.g. {Callee: "self.db.execute", Line: 42}. The raw
// text is the unit the compliance classifier matches against.
type CallSite struct {
	Callee string `json:"callee"`
	Line   int    `json:"line"`
}

// FunctionNode is one function or method definition. Name is the qualified
// name built from the lexical nesting path (module.Class.method) and is
// unique project-wide.
type FunctionNode struct {
	Name         string     `json:"name"`
	Module       string     `json:"module"`
	Params       []string   `json:"params"`
	StartLine    int        `json:"start_line"`
	EndLine      int        `json:"end_line"`
	Branches     int        `json:"branches"`
	HasDocstring bool       `json:"has_docstring"`
	Calls        []CallSite `json:"calls,omitempty"`
}

// ClassNode is one class definition, kept for doc coverage and naming.
type ClassNode struct {
	Name         string `json:"name"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
	HasDocstring bool   `json:"has_docstring"`
}

// ModuleNode is the per-file extraction record for one successfully parsed
// source file. Calls holds every call site in the file, including those at
// module level; each FunctionNode additionally carries its own outgoing
// calls.
type ModuleNode struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	Imports      []Import        `json:"imports,omitempty"`
	Calls        []CallSite      `json:"calls,omitempty"`
	Functions    []*FunctionNode `json:"functions,omitempty"`
	Classes      []*ClassNode    `json:"classes,omitempty"`
	HasDocstring bool            `json:"has_docstring"`
	TotalLines   int             `json:"total_lines"`
}

// FileRecord is the outcome of the extraction pass for one file: exactly one
// of Module or Failure is set.
type FileRecord struct {
	Path    string        `json:"path"`
	Module  *ModuleNode   `json:"module,omitempty"`
	Failure *ParseFailure `json:"failure,omitempty"`
}

// Graph domain types

// Resolution is the explicit confidence attached to a graph edge. Static
// analysis of a dynamic language cannot resolve every reference, so edges
// carry their resolution state instead of being dropped.
type Resolution string

const (
	Resolved   Resolution = "resolved"
	External   Resolution = "external"
	Unresolved Resolution = "unresolved"
)

// ImportEdge links an importing module to a raw import target. To is the
// resolved module key when Resolution is Resolved, empty otherwise.
type ImportEdge struct {
	From       string     `json:"from"`
	Target     string     `json:"target"`
	To         string     `json:"to,omitempty"`
	Resolution Resolution `json:"resolution"`
	Line       int        `json:"line"`
	Wildcard   bool       `json:"wildcard,omitempty"`
}

// CallEdge links a caller function to a raw callee text. To is the resolved
// function key when Resolution is Resolved, empty otherwise.
type CallEdge struct {
	Caller     string     `json:"caller"`
	Callee     string     `json:"callee"`
	To         string     `json:"to,omitempty"`
	Resolution Resolution `json:"resolution"`
	Line       int        `json:"line"`
}

// ModuleGraph is the project-wide module dependency graph. Modules are
// sorted by qualified name, edges by (from, line, target).
type ModuleGraph struct {
	Modules []*ModuleNode `json:"modules"`
	Edges   []ImportEdge  `json:"edges"`
}

// CallGraph is the project-wide function call graph. Functions are sorted by
// qualified name, edges by (caller, line, callee).
type CallGraph struct {
	Functions []*FunctionNode `json:"functions"`
	Edges     []CallEdge      `json:"edges"`
}

// Finding types

// ComplexityFinding names one metric of one function that exceeds its
// configured threshold.
type ComplexityFinding struct {
	Function  string `json:"function"`
	Metric    string `json:"metric"`
	Value     int    `json:"value"`
	Threshold int    `json:"threshold"`
}

// Complexity metric names.
const (
	MetricFunctionLength  = "function_length"
	MetricComplexityScore = "complexity_score"
	MetricParameterCount  = "parameter_count"
)

// Classification is the architectural judgment assigned to a database-
// related call site.
type Classification string

const (
	ClassifiedViolation    Classification = "violation"
	ClassifiedCompliant    Classification = "compliant"
	ClassifiedUnclassified Classification = "unclassified"
)

// DBFinding is one classified database-related call site. Categories holds
// every matched category name for diagnostics; Category is the one that
// decided the classification.
type DBFinding struct {
	Module         string         `json:"module"`
	Function       string         `json:"function,omitempty"`
	Line           int            `json:"line"`
	Callee         string         `json:"callee"`
	Classification Classification `json:"classification"`
	Category       string         `json:"category,omitempty"`
	Categories     []string       `json:"categories,omitempty"`
}

// DocGap is one module, class, or function without a docstring.
type DocGap struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Doc gap entity kinds.
const (
	KindModule   = "module"
	KindClass    = "class"
	KindFunction = "function"
)

// FileCoverage is the docstring presence ratio for one file. A file with
// zero definitions is vacuously fully covered (ratio 1.0).
type FileCoverage struct {
	Module     string  `json:"module"`
	Total      int     `json:"total"`
	Documented int     `json:"documented"`
	Ratio      float64 `json:"ratio"`
}

// Summary carries the aggregate counts for the run.
type Summary struct {
	TotalFiles           int            `json:"total_files"`
	ParsedFiles          int            `json:"parsed_files"`
	FailedFiles          int            `json:"failed_files"`
	TotalFunctions       int            `json:"total_functions"`
	TotalClasses         int            `json:"total_classes"`
	TotalLines           int            `json:"total_lines"`
	TotalViolations      int            `json:"total_violations"`
	ViolationsByCategory map[string]int `json:"violations_by_category,omitempty"`
	DocCoverage          float64        `json:"doc_coverage"`
}

// Report is the immutable result of one analysis run, handed to the
// exporters. It always carries the full failure list; a run either produces
// a complete report or refuses to run at all.
type Report struct {
	Root        string              `json:"root"`
	Modules     *ModuleGraph        `json:"module_graph"`
	Calls       *CallGraph          `json:"call_graph"`
	Cycles      [][]string          `json:"cycles,omitempty"`
	Complexity  []ComplexityFinding `json:"complexity_findings,omitempty"`
	DBFindings  []DBFinding         `json:"db_findings,omitempty"`
	DocGaps     []DocGap            `json:"doc_gaps,omitempty"`
	DocCoverage []FileCoverage      `json:"doc_coverage,omitempty"`
	Failures    []ParseFailure      `json:"failures,omitempty"`
	Summary     Summary             `json:"summary"`
}
