package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Stockometry/internal/domain/models"
)

func TestExportFilenameAndContent(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	sr := &models.StoredReport{
		ID:         "run-1",
		ReportDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		RunSource:  models.RunOnDemand,
		Generated:  time.Date(2025, 3, 10, 14, 5, 9, 0, time.UTC),
		Report: models.Report{
			ExecutiveSummary: "Nothing notable.",
		},
	}

	path, err := e.Export(sr)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := filepath.Join(dir, "report_2025-03-10_140509_ondemand.json")
	if path != want {
		t.Fatalf("unexpected path %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	var rep models.Report
	if err := json.Unmarshal(b, &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.ExecutiveSummary != "Nothing notable." {
		t.Fatalf("unexpected content %+v", rep)
	}
}

func TestExportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	e := New(dir)
	sr := &models.StoredReport{
		ReportDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		RunSource:  models.RunScheduled,
		Generated:  time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC),
	}
	if _, err := e.Export(sr); err != nil {
		t.Fatalf("export into missing dir: %v", err)
	}
}

func TestExportRequiresDir(t *testing.T) {
	e := New("")
	if _, err := e.Export(&models.StoredReport{}); err == nil {
		t.Fatalf("expected error without output dir")
	}
}
