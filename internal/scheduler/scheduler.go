package scheduler

import (
	"errors"
	"os"

	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/services"
	"github.com/robfig/cron/v3"
)

// Analyzer is the trigger surface the scheduler needs.
type Analyzer interface {
	RunAnalysis() (*services.ReportPaths, error)
}

// Start registers the periodic analysis trigger and starts the cron
// loop. The schedule comes from ANALYSIS_CRON, defaulting to daily at
// midnight. Call Stop on the returned cron during shutdown.
func Start(analyzer Analyzer) (*cron.Cron, error) {
	spec := os.Getenv("ANALYSIS_CRON")
	if spec == "" {
		spec = "0 0 * * *"
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		logger.Info("Starting scheduled AI log analysis", map[string]interface{}{
			"action": "AI_LOG_ANALYSIS_START",
		})

		if _, err := analyzer.RunAnalysis(); err != nil {
			if errors.Is(err, services.ErrAnalysisRunning) {
				logger.Warn("Previous analysis run still active, skipping trigger", map[string]interface{}{
					"action": "AI_LOG_ANALYSIS_SKIPPED",
				})
				return
			}
			logger.Error("Scheduled analysis run failed", map[string]interface{}{
				"action": "AI_LOG_ANALYSIS_ERROR",
				"error":  err.Error(),
			})
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("Analysis scheduler started", map[string]interface{}{
		"schedule": spec,
	})

	return c, nil
}
