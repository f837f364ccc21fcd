// Package export serializes a finished report to the configured output
// formats. Exporters only write; all computation happens upstream, so every
// format is a view of the same immutable report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/walkr-io/walkr/internal/config"
	"github.com/walkr-io/walkr/internal/report"
)

// Export writes the report to cfg.OutputDir in every configured format.
// It returns the list of files written.
func Export(r *report.Report, cfg *config.Config) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	for _, format := range cfg.Formats {
		var (
			name  string
			write func(io.Writer, *report.Report) error
		)
		switch strings.ToLower(format) {
		case "json":
			name, write = "report.json", WriteJSON
		case "csv":
			name, write = "deps.csv", WriteCSV
		case "dot":
			name, write = "deps.dot", WriteDOT
		default:
			return written, fmt.Errorf("unknown export format %q", format)
		}
		path := filepath.Join(cfg.OutputDir, name)
		if err := writeFile(path, r, write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, r *report.Report, write func(io.Writer, *report.Report) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes the full report as indented JSON.
func WriteJSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per dependency edge: source, edge type, target,
// and resolution state. Import edges come before call edges, each in their
// report order.
func WriteCSV(w io.Writer, r *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "type", "target", "resolution"}); err != nil {
		return err
	}
	for _, e := range r.Modules.Edges {
		if err := cw.Write([]string{e.From, "import", e.Target, string(e.Resolution)}); err != nil {
			return err
		}
	}
	for _, e := range r.Calls.Edges {
		if err := cw.Write([]string{e.Caller, "call", e.Callee, string(e.Resolution)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDOT writes the module dependency graph in Graphviz format. Modules
// that are part of an import cycle are filled red; external imports are
// drawn dashed.
func WriteDOT(w io.Writer, r *report.Report) error {
	cyclic := make(map[string]bool)
	for _, cycle := range r.Cycles {
		for _, m := range cycle {
			cyclic[m] = true
		}
	}

	var b strings.Builder
	b.WriteString("digraph modules {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded, fontname=Courier, fontsize=10];\n")
	for _, m := range r.Modules.Modules {
		if cyclic[m.Name] {
			fmt.Fprintf(&b, "  %s [style=\"rounded,filled\", fillcolor=lightcoral];\n", quote(m.Name))
		} else {
			fmt.Fprintf(&b, "  %s;\n", quote(m.Name))
		}
	}
	for _, e := range r.Modules.Edges {
		attrs := ""
		if e.Resolution == report.External {
			attrs = " [style=dashed]"
		}
		fmt.Fprintf(&b, "  %s -> %s%s;\n", quote(e.From), quote(e.Target), attrs)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
