package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkr-io/walkr/internal/report"
)

var defaultThresholds = Thresholds{
	MaxFunctionLength:  30,
	MaxComplexityScore: 10,
	MaxParameterCount:  6,
}

func TestScoreComplexityUnderThresholds(t *testing.T) {
	t.Parallel()
	fns := []*report.FunctionNode{
		{Name: "m.ok", StartLine: 10, EndLine: 40, Branches: 10, Params: make([]string, 6)},
	}
	assert.Empty(t, ScoreComplexity(fns, defaultThresholds), "values at the threshold do not trip it")
}

func TestScoreComplexityLength(t *testing.T) {
	t.Parallel()
	fns := []*report.FunctionNode{
		{Name: "m.long", StartLine: 10, EndLine: 45},
	}
	findings := ScoreComplexity(fns, defaultThresholds)
	require.Len(t, findings, 1)
	assert.Equal(t, report.MetricFunctionLength, findings[0].Metric)
	assert.Equal(t, 35, findings[0].Value)
	assert.Equal(t, 30, findings[0].Threshold)
}

func TestScoreComplexityBranches(t *testing.T) {
	t.Parallel()
	fns := []*report.FunctionNode{
		{Name: "m.straight", StartLine: 1, EndLine: 5, Branches: 0},
		{Name: "m.branchy", StartLine: 1, EndLine: 5, Branches: 11},
	}
	findings := ScoreComplexity(fns, defaultThresholds)
	require.Len(t, findings, 1)
	assert.Equal(t, "m.branchy", findings[0].Function)
	assert.Equal(t, report.MetricComplexityScore, findings[0].Metric)
	assert.Equal(t, 11, findings[0].Value)
}

func TestScoreComplexityParams(t *testing.T) {
	t.Parallel()
	fns := []*report.FunctionNode{
		{Name: "m.wide", StartLine: 1, EndLine: 2, Params: make([]string, 7)},
	}
	findings := ScoreComplexity(fns, defaultThresholds)
	require.Len(t, findings, 1)
	assert.Equal(t, report.MetricParameterCount, findings[0].Metric)
	assert.Equal(t, 7, findings[0].Value)
}

func TestScoreComplexityMultipleMetrics(t *testing.T) {
	t.Parallel()
	fns := []*report.FunctionNode{
		{
			Name:      "m.monster",
			StartLine: 1,
			EndLine:   100,
			Branches:  25,
			Params:    make([]string, 9),
		},
	}
	findings := ScoreComplexity(fns, defaultThresholds)
	require.Len(t, findings, 3)
	metrics := []string{findings[0].Metric, findings[1].Metric, findings[2].Metric}
	assert.Equal(t, []string{
		report.MetricFunctionLength,
		report.MetricComplexityScore,
		report.MetricParameterCount,
	}, metrics)
}
