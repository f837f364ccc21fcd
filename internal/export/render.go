package export

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// RenderDOT renders a written DOT file to SVG with the Graphviz dot binary
// and returns the rendered path. Rendering is best-effort: callers treat a
// missing binary as a skipped step, not a failed run.
func RenderDOT(dotPath string) (string, error) {
	if _, err := exec.LookPath("dot"); err != nil {
		return "", fmt.Errorf("graphviz not installed: %w", err)
	}
	out := strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + ".svg"

	cmd := exec.Command("dot", "-Tsvg", "-o", out, dotPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("render %s: %s: %w", dotPath, strings.TrimSpace(stderr.String()), err)
	}
	return out, nil
}
