package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Stockometry/internal/domain/models"
	"Stockometry/pkg/util"
)

// Exporter writes finished reports as JSON files for downstream
// consumers that do not talk to the API.
type Exporter struct {
	dir string
}

// New creates an exporter rooted at dir. The directory is created on
// first export if it does not exist.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes the stored report to
// <dir>/report_<date>_<hhmmss>_<runsource>.json and returns the path.
func (e *Exporter) Export(r *models.StoredReport) (string, error) {
	if e.dir == "" {
		return "", fmt.Errorf("output dir not configured")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("report_%s_%s_%s.json",
		util.FormatDate(r.ReportDate),
		r.Generated.UTC().Format("150405"),
		strings.ToLower(r.RunSource))
	path := filepath.Join(e.dir, name)

	b, err := json.MarshalIndent(r.Report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
