// Package dbrules implements the database-access compliance classifier: a
// rule-precedence engine over configurable regular-expression pattern sets,
// matched against raw call-site text. The rule table is compiled once at
// startup and never mutated during analysis.
package dbrules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/walkr-io/walkr/internal/config"
)

// Class ranks a pattern rule. Service outranks Violation: going through a
// sanctioned service indirection is accepted even when its name
// superficially resembles a direct-access pattern.
type Class int

const (
	ClassGeneric Class = iota
	ClassViolation
	ClassService
)

func (c Class) String() string {
	switch c {
	case ClassService:
		return "service"
	case ClassViolation:
		return "violation"
	default:
		return "generic"
	}
}

// Rule is one named category with its ordered compiled expressions.
type Rule struct {
	Category string
	Class    Class
	patterns []*regexp.Regexp
}

// matches reports whether any of the rule's expressions match the raw
// callee text. Matching is case-sensitive; configuration authors control
// precision through pattern specificity.
func (r *Rule) matches(callee string) bool {
	for _, re := range r.patterns {
		if re.MatchString(callee) {
			return true
		}
	}
	return false
}

// RuleSet is the immutable compiled rule table for one run. Rules within a
// class are held in sorted category order so classification output is
// deterministic.
type RuleSet struct {
	service   []Rule
	violation []Rule
	generic   []string // db method and module names, substring-matched
}

// Compile builds a RuleSet from the configured pattern tables. Any
// uncompilable expression is a configuration error: the run must refuse to
// start rather than silently degrade to "no rules".
func Compile(cfg *config.Config) (*RuleSet, error) {
	rs := &RuleSet{}

	var err error
	if rs.violation, err = compileTable(cfg.ViolationPatterns, ClassViolation); err != nil {
		return nil, fmt.Errorf("violation_patterns: %w", err)
	}
	if rs.service, err = compileTable(cfg.ServicePatterns, ClassService); err != nil {
		return nil, fmt.Errorf("service_patterns: %w", err)
	}
	rs.generic = append(rs.generic, cfg.DBMethods...)
	rs.generic = append(rs.generic, cfg.DBModules...)
	return rs, nil
}

func compileTable(table map[string][]string, class Class) ([]Rule, error) {
	categories := make([]string, 0, len(table))
	for category := range table {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rules := make([]Rule, 0, len(categories))
	for _, category := range categories {
		rule := Rule{Category: category, Class: class}
		for _, expr := range table[category] {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("category %s: compile %q: %w", category, expr, err)
			}
			rule.patterns = append(rule.patterns, re)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
