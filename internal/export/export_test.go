package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/report"
)

func sampleReport() *report.Report {
	return &report.Report{
		Root: "/proj",
		Modules: &report.ModuleGraph{
			Modules: []*report.ModuleNode{
				{Name: "app.db"}, {Name: "app.web"},
			},
			Edges: []report.ImportEdge{
				{From: "app.db", Target: "app.web", To: "app.web", Resolution: report.Resolved, Line: 1},
				{From: "app.web", Target: "app.db", To: "app.db", Resolution: report.Resolved, Line: 1},
				{From: "app.web", Target: "requests", Resolution: report.External, Line: 2},
			},
		},
		Calls: &report.CallGraph{
			Edges: []report.CallEdge{
				{Caller: "app.web.view", Callee: "query", To: "app.db.query", Resolution: report.Resolved, Line: 4},
			},
		},
		Cycles:  [][]string{{"app.db", "app.web"}},
		Summary: report.Summary{TotalFiles: 2, ParsedFiles: 2},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded report.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/proj", decoded.Root)
	assert.Len(t, decoded.Modules.Edges, 3)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "source,type,target,resolution", lines[0])
	assert.Equal(t, "app.db,import,app.web,resolved", lines[1])
	assert.Equal(t, "app.web,import,requests,external", lines[3])
	assert.Equal(t, "app.web.view,call,query,resolved", lines[4])
}

func TestWriteDOT(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph modules {"))
	assert.Contains(t, out, `"app.db" [style="rounded,filled", fillcolor=lightcoral];`)
	assert.Contains(t, out, `"app.web" -> "app.db";`)
	assert.Contains(t, out, `"app.web" -> "requests" [style=dashed];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestExportWritesConfiguredFormats(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Formats = []string{"json", "csv", "dot"}

	written, err := Export(sampleReport(), cfg)
	require.NoError(t, err)
	require.Len(t, written, 3)
	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, "report.json", filepath.Base(written[0]))
}

func TestExportUnknownFormat(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Formats = []string{"xml"}

	_, err := Export(sampleReport(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
