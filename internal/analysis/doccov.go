package analysis

import (
	"github.com/walkr-io/walkr/internal/report"
)

// DocCoverage computes docstring presence ratios per file and project-wide.
// The ratio counts class and function definitions; the module's own
// docstring is tested for the gap list but does not enter the denominator,
// so a module with 10 functions and 7 docstrings scores exactly 0.7. A file
// with zero definitions has a defined ratio of 1.0 (vacuously covered).
func DocCoverage(modules []*report.ModuleNode) ([]report.FileCoverage, []report.DocGap, float64) {
	var coverage []report.FileCoverage
	var gaps []report.DocGap
	var totalAll, documentedAll int

	for _, m := range modules {
		if !m.HasDocstring {
			gaps = append(gaps, report.DocGap{Name: m.Name, Kind: report.KindModule})
		}

		total, documented := 0, 0
		for _, c := range m.Classes {
			total++
			if c.HasDocstring {
				documented++
			} else {
				gaps = append(gaps, report.DocGap{Name: c.Name, Kind: report.KindClass})
			}
		}
		for _, fn := range m.Functions {
			total++
			if fn.HasDocstring {
				documented++
			} else {
				gaps = append(gaps, report.DocGap{Name: fn.Name, Kind: report.KindFunction})
			}
		}

		ratio := 1.0
		if total > 0 {
			ratio = float64(documented) / float64(total)
		}
		coverage = append(coverage, report.FileCoverage{
			Module:     m.Name,
			Total:      total,
			Documented: documented,
			Ratio:      ratio,
		})
		totalAll += total
		documentedAll += documented
	}

	project := 1.0
	if totalAll > 0 {
		project = float64(documentedAll) / float64(totalAll)
	}
	return coverage, gaps, project
}
