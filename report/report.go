// Package report serializes an analysis result into shareable documents:
// a multi-sheet Excel workbook with an embedded chart, a self-contained HTML
// summary and a quick statistics-only workbook. It consumes the analysis
// result read-only; wall clock only influences file names.
package report

import (
	"fmt"
	"os"
	"time"
)

// Generator writes reports under a fixed output directory.
type Generator struct {
	outputDir string
	now       func() time.Time
}

// NewGenerator creates the output directory if needed.
func NewGenerator(outputDir string) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Generator{outputDir: outputDir, now: time.Now}, nil
}

// timestamp formats the wall clock for file names.
func (g *Generator) timestamp() string {
	return g.now().Format("20060102_150405")
}
