package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/logsentinel/backend/internal/logger"
)

// ReportPaths locates the two artifacts of one run.
type ReportPaths struct {
	JSONPath string `json:"jsonReport"`
	HTMLPath string `json:"htmlReport"`
}

// ReportService renders a finished run into a lossless JSON artifact and
// a human-readable HTML document, both keyed by the run's start date so
// admin tooling can find a given day's run deterministically.
type ReportService struct {
	dir  string
	tmpl *template.Template
}

func NewReportService(dir string) *ReportService {
	if dir == "" {
		dir = os.Getenv("REPORTS_DIR")
	}
	if dir == "" {
		dir = filepath.Join("reports", "ai-analysis")
	}
	return &ReportService{
		dir:  dir,
		tmpl: template.Must(template.New("report").Funcs(templateFuncs).Parse(reportTemplate)),
	}
}

// PathsFor derives the artifact paths for a given run date.
func (r *ReportService) PathsFor(date time.Time) ReportPaths {
	day := date.Format("2006-01-02")
	return ReportPaths{
		JSONPath: filepath.Join(r.dir, fmt.Sprintf("analysis-%s.json", day)),
		HTMLPath: filepath.Join(r.dir, fmt.Sprintf("analysis-%s.html", day)),
	}
}

// Generate writes both artifacts. A same-day rerun overwrites them. If
// either write fails the whole operation is reported as failed; the
// first artifact is not rolled back.
func (r *ReportService) Generate(run *AnalysisRun) (*ReportPaths, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, &ReportWriteError{Path: r.dir, Err: err}
	}

	paths := r.PathsFor(run.StartTime)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, &ReportWriteError{Path: paths.JSONPath, Err: err}
	}
	if err := os.WriteFile(paths.JSONPath, data, 0644); err != nil {
		return nil, &ReportWriteError{Path: paths.JSONPath, Err: err}
	}

	html, err := r.renderHTML(run)
	if err != nil {
		return nil, &ReportWriteError{Path: paths.HTMLPath, Err: err}
	}
	if err := os.WriteFile(paths.HTMLPath, html, 0644); err != nil {
		return nil, &ReportWriteError{Path: paths.HTMLPath, Err: err}
	}

	logger.Info("Analysis reports generated", map[string]interface{}{
		"action":       "ANALYSIS_REPORT_GENERATED",
		"report_files": []string{paths.JSONPath, paths.HTMLPath},
	})

	return &paths, nil
}

func (r *ReportService) renderHTML(run *AnalysisRun) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var templateFuncs = template.FuncMap{
	"prettyJSON": func(v any) (string, error) {
		data, err := json.MarshalIndent(v, "", "  ")
		return string(data), err
	},
	"fmtTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05")
	},
}

const reportTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>AI Log Analysis Report - {{fmtTime .StartTime}}</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; }
      .header { background: #f5f5f5; padding: 20px; margin-bottom: 20px; }
      .summary { margin-bottom: 20px; }
      .suspicious-activities { margin-bottom: 20px; }
      .activity { border: 1px solid #ddd; padding: 10px; margin-bottom: 10px; }
      .high { background-color: #ffe6e6; }
      .medium { background-color: #fff3e6; }
      .low { background-color: #f2f2f2; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>AI Log Analysis Report</h1>
      <p>Analysis Period: {{fmtTime .StartTime}} - {{fmtTime .EndTime}}</p>
      <p>Total Users Analyzed: {{.TotalUsersAnalyzed}}</p>
    </div>

    <div class="summary">
      <h2>Summary</h2>
      <ul>
        <li>High Suspicion Cases: {{.Summary.HighSuspicion}}</li>
        <li>Medium Suspicion Cases: {{.Summary.MediumSuspicion}}</li>
        <li>Low Suspicion Cases: {{.Summary.LowSuspicion}}</li>
        <li>Clean Cases: {{.Summary.Clean}}</li>
      </ul>
    </div>

    <div class="suspicious-activities">
      <h2>Suspicious Activities</h2>
      {{range .SuspiciousActivities}}
      <div class="activity {{.SuspicionLevel}}">
        <h3>User: {{.UserName}} ({{.UserEmail}})</h3>
        <p>User ID: {{.UserID}}</p>
        <p>Suspicion Level: {{.SuspicionLevel}}</p>
        <p>Reason: {{.Reason}}</p>
        <details>
          <summary>Activity Summary</summary>
          <pre>{{prettyJSON .ActivitySummary}}</pre>
        </details>
      </div>
      {{end}}
    </div>
  </body>
</html>
`
