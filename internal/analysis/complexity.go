// Package analysis holds the read-only passes that run over extraction
// records after the merge point: complexity scoring and doc coverage. Both
// are pure functions of the syntax-tree shape captured during extraction.
package analysis

import (
	"github.com/walkr-io/walkr/internal/report"
)

// Thresholds carries the three configured complexity limits.
type Thresholds struct {
	MaxFunctionLength  int
	MaxComplexityScore int
	MaxParameterCount  int
}

// ScoreComplexity checks each function's line span, branching-construct
// count, and parameter count against the thresholds and emits one finding
// per metric exceeded. A function may produce zero to three findings.
// Findings follow the input function order.
func ScoreComplexity(functions []*report.FunctionNode, t Thresholds) []report.ComplexityFinding {
	var findings []report.ComplexityFinding
	for _, fn := range functions {
		span := fn.EndLine - fn.StartLine
		if span > t.MaxFunctionLength {
			findings = append(findings, report.ComplexityFinding{
				Function:  fn.Name,
				Metric:    report.MetricFunctionLength,
				Value:     span,
				Threshold: t.MaxFunctionLength,
			})
		}
		if fn.Branches > t.MaxComplexityScore {
			findings = append(findings, report.ComplexityFinding{
				Function:  fn.Name,
				Metric:    report.MetricComplexityScore,
				Value:     fn.Branches,
				Threshold: t.MaxComplexityScore,
			})
		}
		if len(fn.Params) > t.MaxParameterCount {
			findings = append(findings, report.ComplexityFinding{
				Function:  fn.Name,
				Metric:    report.MetricParameterCount,
				Value:     len(fn.Params),
				Threshold: t.MaxParameterCount,
			})
		}
	}
	return findings
}
