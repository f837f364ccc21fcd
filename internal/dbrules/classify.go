package dbrules

import (
	"strings"

	"github.com/walkr-io/walkr/internal/report"
)

// Classify tests one raw call-site text against the rule table and returns
// the classification with every matched category, or ok=false when the call
// is not database-related at all (and is dropped from the findings stream).
//
// Precedence is decided by rule class, never by category:
//  1. any Service match → Compliant
//  2. else any Violation match → Violation
//  3. else a generic db method/module name match → Unclassified
//  4. else not a finding
//
// All matched categories are recorded for diagnostics even when a
// higher-precedence class decides the classification.
func (rs *RuleSet) Classify(callee string) (report.Classification, []string, bool) {
	var serviceCats, violationCats []string
	for i := range rs.service {
		if rs.service[i].matches(callee) {
			serviceCats = append(serviceCats, rs.service[i].Category)
		}
	}
	for i := range rs.violation {
		if rs.violation[i].matches(callee) {
			violationCats = append(violationCats, rs.violation[i].Category)
		}
	}

	switch {
	case len(serviceCats) > 0:
		return report.ClassifiedCompliant, append(serviceCats, violationCats...), true
	case len(violationCats) > 0:
		return report.ClassifiedViolation, violationCats, true
	}

	for _, name := range rs.generic {
		if strings.Contains(callee, name) {
			return report.ClassifiedUnclassified, nil, true
		}
	}
	return "", nil, false
}

// Findings classifies every call site of every module and returns the
// database findings in deterministic (module, line, callee) order. Call
// sites inside a function carry that function's qualified name.
func (rs *RuleSet) Findings(modules []*report.ModuleNode) []report.DBFinding {
	var findings []report.DBFinding
	for _, m := range modules {
		owner := callOwners(m)
		for _, site := range m.Calls {
			class, categories, ok := rs.Classify(site.Callee)
			if !ok {
				continue
			}
			finding := report.DBFinding{
				Module:         m.Name,
				Function:       owner[site],
				Line:           site.Line,
				Callee:         site.Callee,
				Classification: class,
				Categories:     categories,
			}
			if len(categories) > 0 {
				finding.Category = categories[0]
			}
			findings = append(findings, finding)
		}
	}
	return findings
}

// callOwners maps each call site back to its enclosing function, if any.
func callOwners(m *report.ModuleNode) map[report.CallSite]string {
	owner := make(map[report.CallSite]string)
	for _, fn := range m.Functions {
		for _, site := range fn.Calls {
			owner[site] = fn.Name
		}
	}
	return owner
}
