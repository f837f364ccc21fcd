package report

import "sort"

// Input carries the per-pass results handed to the aggregator.
type Input struct {
	Root        string
	Modules     *ModuleGraph
	Calls       *CallGraph
	Cycles      [][]string
	Complexity  []ComplexityFinding
	DBFindings  []DBFinding
	DocGaps     []DocGap
	DocCoverage []FileCoverage
	ProjectDocs float64
	Failures    []ParseFailure
}

// Aggregate merges all pass results into one immutable report value with
// summary counts. It performs no I/O; serialization belongs to the
// exporters.
func Aggregate(in Input) *Report {
	failures := make([]ParseFailure, len(in.Failures))
	copy(failures, in.Failures)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })

	summary := Summary{
		TotalFiles:  len(in.Modules.Modules) + len(failures),
		ParsedFiles: len(in.Modules.Modules),
		FailedFiles: len(failures),
		DocCoverage: in.ProjectDocs,
	}
	for _, m := range in.Modules.Modules {
		summary.TotalFunctions += len(m.Functions)
		summary.TotalClasses += len(m.Classes)
		summary.TotalLines += m.TotalLines
	}
	for _, f := range in.DBFindings {
		if f.Classification != ClassifiedViolation {
			continue
		}
		summary.TotalViolations++
		if summary.ViolationsByCategory == nil {
			summary.ViolationsByCategory = make(map[string]int)
		}
		summary.ViolationsByCategory[f.Category]++
	}

	return &Report{
		Root:        in.Root,
		Modules:     in.Modules,
		Calls:       in.Calls,
		Cycles:      in.Cycles,
		Complexity:  in.Complexity,
		DBFindings:  in.DBFindings,
		DocGaps:     in.DocGaps,
		DocCoverage: in.DocCoverage,
		Failures:    failures,
		Summary:     summary,
	}
}
