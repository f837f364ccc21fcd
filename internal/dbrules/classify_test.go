package dbrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/report"
)

func compileDefaults(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := Compile(config.Default())
	require.NoError(t, err)
	return rs
}

func TestClassifyViolation(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	class, cats, ok := rs.Classify("cursor.execute")
	require.True(t, ok)
	assert.Equal(t, report.ClassifiedViolation, class)
	assert.Equal(t, []string{"direct_sql"}, cats)
}

func TestClassifyServiceWinsOverViolation(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	// Matches both a service pattern (_service.) and a generic db method
	// name; the service class decides, and every matched category is kept.
	class, cats, ok := rs.Classify("system_db_service.store_config")
	require.True(t, ok)
	assert.Equal(t, report.ClassifiedCompliant, class)
	assert.Contains(t, cats, "service_layer")
}

func TestClassifyServiceOverridesDirectSQL(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	class, cats, ok := rs.Classify("db_service.cursor.execute")
	require.True(t, ok)
	assert.Equal(t, report.ClassifiedCompliant, class)
	assert.Contains(t, cats, "service_layer")
	assert.Contains(t, cats, "direct_sql", "violation categories stay visible for diagnostics")
}

func TestClassifyGenericUnclassified(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	class, cats, ok := rs.Classify("conn.commit")
	require.True(t, ok)
	assert.Equal(t, report.ClassifiedUnclassified, class)
	assert.Empty(t, cats)
}

func TestClassifyGenericIsCaseSensitive(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	_, _, ok := rs.Classify("conn.EXECUTE")
	assert.False(t, ok)
}

func TestClassifyNonDBDropped(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	_, _, ok := rs.Classify("json.dumps")
	assert.False(t, ok)
}

func TestCompileRejectsBadPattern(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.ViolationPatterns["broken"] = []string{"("}
	_, err := Compile(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestFindingsOwnerAndOrder(t *testing.T) {
	t.Parallel()
	rs := compileDefaults(t)

	site1 := report.CallSite{Callee: "cursor.execute", Line: 3}
	site2 := report.CallSite{Callee: "self.db.commit", Line: 9}
	m := &report.ModuleNode{
		Name:  "app.store",
		Calls: []report.CallSite{site1, site2},
		Functions: []*report.FunctionNode{
			{Name: "app.store.save", Calls: []report.CallSite{site1}},
		},
	}

	findings := rs.Findings([]*report.ModuleNode{m})
	require.Len(t, findings, 2)

	assert.Equal(t, "app.store.save", findings[0].Function)
	assert.Equal(t, report.ClassifiedViolation, findings[0].Classification)
	assert.Equal(t, "direct_sql", findings[0].Category)

	// Module-level call: no enclosing function.
	assert.Empty(t, findings[1].Function)
	assert.Equal(t, report.ClassifiedUnclassified, findings[1].Classification)
}

func TestClassString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "service", ClassService.String())
	assert.Equal(t, "violation", ClassViolation.String())
	assert.Equal(t, "generic", ClassGeneric.String())
}
