package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkr-io/walkr/internal/report"
)

func docMod(name string, hasDoc bool, documentedFns, bareFns int) *report.ModuleNode {
	m := &report.ModuleNode{Name: name, HasDocstring: hasDoc}
	for i := 0; i < documentedFns; i++ {
		m.Functions = append(m.Functions, &report.FunctionNode{
			Name:         name + ".doc" + string(rune('a'+i)),
			HasDocstring: true,
		})
	}
	for i := 0; i < bareFns; i++ {
		m.Functions = append(m.Functions, &report.FunctionNode{
			Name: name + ".bare" + string(rune('a'+i)),
		})
	}
	return m
}

func TestDocCoverageRatio(t *testing.T) {
	t.Parallel()
	// 10 functions, 7 documented: exactly 0.7 regardless of the module's
	// own docstring.
	coverage, _, project := DocCoverage([]*report.ModuleNode{docMod("m", false, 7, 3)})
	require.Len(t, coverage, 1)
	assert.Equal(t, 10, coverage[0].Total)
	assert.Equal(t, 7, coverage[0].Documented)
	assert.InDelta(t, 0.7, coverage[0].Ratio, 1e-9)
	assert.InDelta(t, 0.7, project, 1e-9)
}

func TestDocCoverageEmptyFile(t *testing.T) {
	t.Parallel()
	coverage, _, project := DocCoverage([]*report.ModuleNode{docMod("m", true, 0, 0)})
	require.Len(t, coverage, 1)
	assert.Equal(t, 1.0, coverage[0].Ratio, "no definitions is vacuously covered")
	assert.Equal(t, 1.0, project)
}

func TestDocCoverageGaps(t *testing.T) {
	t.Parallel()
	m := docMod("m", false, 1, 1)
	m.Classes = append(m.Classes, &report.ClassNode{Name: "m.C"})

	_, gaps, _ := DocCoverage([]*report.ModuleNode{m})

	kinds := make(map[string]string)
	for _, g := range gaps {
		kinds[g.Name] = g.Kind
	}
	assert.Equal(t, report.KindModule, kinds["m"])
	assert.Equal(t, report.KindClass, kinds["m.C"])
	assert.Equal(t, report.KindFunction, kinds["m.barea"])
	assert.NotContains(t, kinds, "m.doca")
}

func TestDocCoverageClassesCount(t *testing.T) {
	t.Parallel()
	m := &report.ModuleNode{Name: "m", HasDocstring: true}
	m.Classes = append(m.Classes,
		&report.ClassNode{Name: "m.A", HasDocstring: true},
		&report.ClassNode{Name: "m.B"},
	)
	coverage, _, project := DocCoverage([]*report.ModuleNode{m})
	require.Len(t, coverage, 1)
	assert.Equal(t, 2, coverage[0].Total)
	assert.Equal(t, 1, coverage[0].Documented)
	assert.InDelta(t, 0.5, project, 1e-9)
}

func TestDocCoverageProjectWide(t *testing.T) {
	t.Parallel()
	modules := []*report.ModuleNode{
		docMod("a", true, 2, 0),
		docMod("b", true, 0, 2),
	}
	_, _, project := DocCoverage(modules)
	assert.InDelta(t, 0.5, project, 1e-9)
}
