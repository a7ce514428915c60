package services

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/models"
)

// activityStore is the slice of LogStore the analyzer needs.
type activityStore interface {
	FetchPage(since time.Time, page, size int) ([]models.ActivityLog, error)
	MarkSuspicious(userID uint, ids []uint, level models.SuspicionLevel, reason string) error
	SaveReport(report *models.AnalysisReport) error
}

// suspicionOracle classifies one digest.
type suspicionOracle interface {
	AnalyzeDigest(ctx context.Context, digest *ActivityDigest) (*Verdict, error)
}

// reportEmitter renders a finished run into durable artifacts.
type reportEmitter interface {
	Generate(run *AnalysisRun) (*ReportPaths, error)
}

// RunSummary buckets analyzed users by verdict.
type RunSummary struct {
	HighSuspicion   int `json:"highSuspicion"`
	MediumSuspicion int `json:"mediumSuspicion"`
	LowSuspicion    int `json:"lowSuspicion"`
	Clean           int `json:"clean"`
}

// SuspiciousActivity is one flagged user in the run report.
type SuspiciousActivity struct {
	UserID          uint                  `json:"userId"`
	UserEmail       string                `json:"userEmail,omitempty"`
	UserName        string                `json:"userName,omitempty"`
	SuspicionLevel  models.SuspicionLevel `json:"suspicionLevel"`
	Reason          string                `json:"reason"`
	ActivitySummary *ActivityDigest       `json:"activitySummary"`
}

// UserFinding is the full per-user analysis result, flagged or not.
type UserFinding struct {
	UserID          uint            `json:"userId"`
	UserEmail       string          `json:"userEmail,omitempty"`
	UserName        string          `json:"userName,omitempty"`
	ActivitySummary *ActivityDigest `json:"activitySummary"`
	Analysis        *Verdict        `json:"analysis"`
	Timestamp       time.Time       `json:"timestamp"`
}

// AnalysisRun is the aggregate result of one pipeline execution. It is
// mutated only through updateRun on the run goroutine, frozen at run end
// and handed to the report emitter.
type AnalysisRun struct {
	StartTime            time.Time            `json:"startTime"`
	EndTime              time.Time            `json:"endTime"`
	TotalUsersAnalyzed   int                  `json:"totalUsersAnalyzed"`
	Summary              RunSummary           `json:"summary"`
	SuspiciousActivities []SuspiciousActivity `json:"suspiciousActivities"`
	DetailedFindings     []UserFinding        `json:"detailedFindings"`
}

// AnalyzerService drives the batch pipeline: paged retrieval, per-user
// digest and oracle verdict, suspicion write-back, aggregation, report
// emission. At most one run may be active at a time.
type AnalyzerService struct {
	store      activityStore
	oracle     suspicionOracle
	reports    reportEmitter
	batchSize  int
	workers    int
	windowDays int

	mu      sync.Mutex
	running bool
}

func NewAnalyzerService(store activityStore, oracle suspicionOracle, reports reportEmitter) *AnalyzerService {
	return &AnalyzerService{
		store:      store,
		oracle:     oracle,
		reports:    reports,
		batchSize:  envInt("ANALYSIS_BATCH_SIZE", 100),
		workers:    envInt("ANALYSIS_WORKERS", 4),
		windowDays: envInt("ANALYSIS_WINDOW_DAYS", 7),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Running reports whether a run is currently active.
func (a *AnalyzerService) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AnalyzerService) acquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return false
	}
	a.running = true
	return true
}

func (a *AnalyzerService) release() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// RunAnalysis executes one complete analysis over the configured window
// and returns the paths of the generated report artifacts. A concurrent
// trigger gets ErrAnalysisRunning.
func (a *AnalyzerService) RunAnalysis() (*ReportPaths, error) {
	if !a.acquire() {
		return nil, ErrAnalysisRunning
	}
	defer a.release()

	run := &AnalysisRun{
		StartTime:            time.Now(),
		SuspiciousActivities: []SuspiciousActivity{},
		DetailedFindings:     []UserFinding{},
	}

	runLog := logger.WithRun(run.StartTime)
	runLog.WithField("action", "AI_LOG_ANALYSIS_START").Info("Starting activity log analysis")

	since := run.StartTime.AddDate(0, 0, -a.windowDays)

	page := 1
	for {
		logs, err := a.store.FetchPage(since, page, a.batchSize)
		if err != nil {
			runLog.WithFields(map[string]interface{}{
				"action": "AI_LOG_ANALYSIS_ERROR",
				"page":   page,
				"error":  err.Error(),
			}).Error("Activity log retrieval failed, aborting run")
			return nil, err
		}
		if len(logs) == 0 {
			break
		}

		grouped, order := GroupByUser(logs)
		a.analyzePage(run, grouped, order)

		if len(logs) < a.batchSize {
			break
		}
		page++
	}

	run.EndTime = time.Now()

	paths, err := a.reports.Generate(run)
	if err != nil {
		runLog.WithFields(map[string]interface{}{
			"action": "AI_LOG_ANALYSIS_ERROR",
			"error":  err.Error(),
		}).Error("Report generation failed, run incomplete")
		return nil, err
	}

	if err := a.saveReportRow(run, paths); err != nil {
		runLog.WithFields(map[string]interface{}{
			"action": "ANALYSIS_REPORT_ROW_ERROR",
			"error":  err.Error(),
		}).Error("Failed to persist analysis report row")
	}

	runLog.WithFields(map[string]interface{}{
		"action":         "AI_LOG_ANALYSIS_COMPLETE",
		"users_analyzed": run.TotalUsersAnalyzed,
		"high_suspicion": run.Summary.HighSuspicion,
		"medium":         run.Summary.MediumSuspicion,
		"low":            run.Summary.LowSuspicion,
		"clean":          run.Summary.Clean,
	}).Info("Activity log analysis completed")

	return paths, nil
}

// analyzePage fans the page's users out over a bounded worker pool, then
// folds the findings into the run in first-appearance order so the
// aggregate stays deterministic regardless of worker scheduling.
func (a *AnalyzerService) analyzePage(run *AnalysisRun, grouped map[uint][]models.ActivityLog, order []uint) {
	findings := make([]*UserFinding, len(order))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := a.workers
	if workers > len(order) {
		workers = len(order)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				userID := order[idx]
				findings[idx] = a.analyzeUser(userID, grouped[userID])
			}
		}()
	}

	for idx := range order {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, finding := range findings {
		a.updateRun(run, finding)
	}
}

// analyzeUser builds the digest and asks the oracle for a verdict. A nil
// return means the user is skipped for this run.
func (a *AnalyzerService) analyzeUser(userID uint, logs []models.ActivityLog) *UserFinding {
	digest, err := BuildActivityDigest(userID, logs)
	if err != nil {
		logger.WithSubject(userID).WithField("action", "USER_ACTIVITY_ANALYSIS_ERROR").
			Errorf("Failed to build activity digest: %v", err)
		return nil
	}

	verdict, err := a.oracle.AnalyzeDigest(context.Background(), digest)
	if err != nil {
		logger.WithSubject(userID).WithField("action", "USER_ACTIVITY_ANALYSIS_ERROR").
			Errorf("Oracle analysis failed, skipping user: %v", err)
		return nil
	}

	if verdict.Suspicious {
		ids := make([]uint, len(logs))
		for i, entry := range logs {
			ids[i] = entry.ID
		}
		if err := a.store.MarkSuspicious(userID, ids, verdict.Level, verdict.Reason); err != nil {
			// The verdict still counts in the report; only the persisted
			// flags are missing.
			logger.WithSubject(userID).WithField("action", "SUSPICION_WRITEBACK_ERROR").
				Errorf("Failed to mark logs as suspicious: %v", err)
		}
	}

	finding := &UserFinding{
		UserID:          userID,
		ActivitySummary: digest,
		Analysis:        verdict,
		Timestamp:       time.Now(),
	}
	if user := logs[0].User; user != nil {
		finding.UserEmail = user.Email
		finding.UserName = user.Name
	}
	return finding
}

// updateRun folds one finding into the aggregate. Skipped users (nil
// findings) contribute to no bucket and are not counted.
func (a *AnalyzerService) updateRun(run *AnalysisRun, finding *UserFinding) {
	if finding == nil {
		return
	}

	run.TotalUsersAnalyzed++

	if finding.Analysis.Suspicious {
		run.SuspiciousActivities = append(run.SuspiciousActivities, SuspiciousActivity{
			UserID:          finding.UserID,
			UserEmail:       finding.UserEmail,
			UserName:        finding.UserName,
			SuspicionLevel:  finding.Analysis.Level,
			Reason:          finding.Analysis.Reason,
			ActivitySummary: finding.ActivitySummary,
		})

		switch finding.Analysis.Level {
		case models.SuspicionHigh:
			run.Summary.HighSuspicion++
		case models.SuspicionMedium:
			run.Summary.MediumSuspicion++
		case models.SuspicionLow:
			run.Summary.LowSuspicion++
		}
	} else {
		run.Summary.Clean++
	}

	run.DetailedFindings = append(run.DetailedFindings, *finding)
}

func (a *AnalyzerService) saveReportRow(run *AnalysisRun, paths *ReportPaths) error {
	flagged := make([]string, len(run.SuspiciousActivities))
	for i, activity := range run.SuspiciousActivities {
		flagged[i] = strconv.FormatUint(uint64(activity.UserID), 10)
	}

	return a.store.SaveReport(&models.AnalysisReport{
		StartTime:          run.StartTime,
		EndTime:            run.EndTime,
		TotalUsersAnalyzed: run.TotalUsersAnalyzed,
		HighSuspicion:      run.Summary.HighSuspicion,
		MediumSuspicion:    run.Summary.MediumSuspicion,
		LowSuspicion:       run.Summary.LowSuspicion,
		Clean:              run.Summary.Clean,
		FlaggedUserIDs:     flagged,
		JSONPath:           paths.JSONPath,
		HTMLPath:           paths.HTMLPath,
		Metadata: models.JSONB{
			"windowDays": a.windowDays,
			"batchSize":  a.batchSize,
		},
	})
}
