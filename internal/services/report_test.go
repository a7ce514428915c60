package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/logsentinel/backend/internal/models"
)

func sampleRun() *AnalysisRun {
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	digest := &ActivityDigest{
		UserID:          1,
		LoginAttempts:   2,
		FailedLogins:    3,
		ActionFrequency: map[string]int{"LOGIN_ATTEMPT": 2, "LOGIN_ERROR": 3},
		TotalRecords:    5,
	}

	return &AnalysisRun{
		StartTime:          start,
		EndTime:            start.Add(time.Minute),
		TotalUsersAnalyzed: 2,
		Summary:            RunSummary{HighSuspicion: 1, Clean: 1},
		SuspiciousActivities: []SuspiciousActivity{{
			UserID:          1,
			UserEmail:       "alice@example.com",
			UserName:        "Alice Carter",
			SuspicionLevel:  models.SuspicionHigh,
			Reason:          "repeated failed logins",
			ActivitySummary: digest,
		}},
		DetailedFindings: []UserFinding{{
			UserID:          1,
			ActivitySummary: digest,
			Analysis:        &Verdict{Suspicious: true, Level: models.SuspicionHigh, Reason: "repeated failed logins"},
		}},
	}
}

func TestGenerateWritesBothArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	reports := NewReportService(dir)

	run := sampleRun()
	paths, err := reports.Generate(run)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedJSON := filepath.Join(dir, "analysis-2026-08-30.json")
	expectedHTML := filepath.Join(dir, "analysis-2026-08-30.html")
	if paths.JSONPath != expectedJSON {
		t.Errorf("Expected JSON path %s, got %s", expectedJSON, paths.JSONPath)
	}
	if paths.HTMLPath != expectedHTML {
		t.Errorf("Expected HTML path %s, got %s", expectedHTML, paths.HTMLPath)
	}

	// JSON artifact is a lossless serialization of the run
	data, err := os.ReadFile(paths.JSONPath)
	if err != nil {
		t.Fatalf("Failed to read JSON artifact: %v", err)
	}
	var restored AnalysisRun
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("JSON artifact not parsable: %v", err)
	}
	if restored.TotalUsersAnalyzed != run.TotalUsersAnalyzed || restored.Summary != run.Summary {
		t.Errorf("Restored run differs: %+v", restored)
	}

	// HTML artifact carries the aggregate counts and the flagged user
	html, err := os.ReadFile(paths.HTMLPath)
	if err != nil {
		t.Fatalf("Failed to read HTML artifact: %v", err)
	}
	content := string(html)
	for _, want := range []string{
		"High Suspicion Cases: 1",
		"Clean Cases: 1",
		"Alice Carter",
		"repeated failed logins",
		"<details>",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestGenerateOverwritesSameDay(t *testing.T) {
	reports := NewReportService(t.TempDir())

	run := sampleRun()
	if _, err := reports.Generate(run); err != nil {
		t.Fatalf("First generate failed: %v", err)
	}

	run.Summary.Clean = 5
	paths, err := reports.Generate(run)
	if err != nil {
		t.Fatalf("Second generate failed: %v", err)
	}

	data, err := os.ReadFile(paths.JSONPath)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	var restored AnalysisRun
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Artifact not parsable: %v", err)
	}
	if restored.Summary.Clean != 5 {
		t.Errorf("Expected overwritten artifact, got clean=%d", restored.Summary.Clean)
	}
}

func TestPathsForIsDeterministic(t *testing.T) {
	reports := NewReportService("reports/ai-analysis")

	date := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	paths := reports.PathsFor(date)

	if paths.JSONPath != filepath.Join("reports", "ai-analysis", "analysis-2026-01-02.json") {
		t.Errorf("Unexpected JSON path %s", paths.JSONPath)
	}
	if paths.HTMLPath != filepath.Join("reports", "ai-analysis", "analysis-2026-01-02.html") {
		t.Errorf("Unexpected HTML path %s", paths.HTMLPath)
	}
}

func TestGenerateFailsOnUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	reports := NewReportService(filepath.Join(blocker, "reports"))

	_, err := reports.Generate(sampleRun())
	if err == nil {
		t.Fatal("Expected error when destination cannot be created")
	}
}
