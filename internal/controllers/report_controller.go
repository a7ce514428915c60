package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/services"
)

type ReportController struct {
	analyzer *services.AnalyzerService
	reports  *services.ReportService
}

func NewReportController(analyzer *services.AnalyzerService, reports *services.ReportService) *ReportController {
	return &ReportController{analyzer: analyzer, reports: reports}
}

// GenerateReport runs a full analysis on demand and returns both report
// artifacts. A trigger while another run is active is answered with 409.
func (rc *ReportController) GenerateReport(c *gin.Context) {
	logger.Info("Starting manual AI log analysis", map[string]interface{}{
		"action": "MANUAL_AI_LOG_ANALYSIS_START",
	})

	paths, err := rc.analyzer.RunAnalysis()
	if err != nil {
		if errors.Is(err, services.ErrAnalysisRunning) {
			c.JSON(http.StatusConflict, gin.H{"message": "An analysis run is already in progress"})
			return
		}
		logger.Error("Report generation error", map[string]interface{}{
			"action": "REPORT_GENERATION_ERROR",
			"error":  err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error generating report", "error": err.Error()})
		return
	}

	rc.respondWithArtifacts(c, *paths, "Report generated successfully")
}

// GetReport serves a prior day's artifacts; filenames are derivable from
// the date alone.
func (rc *ReportController) GetReport(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	rc.respondWithArtifacts(c, rc.reports.PathsFor(date), "Report retrieved successfully")
}

func (rc *ReportController) respondWithArtifacts(c *gin.Context, paths services.ReportPaths, message string) {
	jsonContent, err := os.ReadFile(paths.JSONPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No report found for that date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading report", "error": err.Error()})
		return
	}

	htmlContent, err := os.ReadFile(paths.HTMLPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error reading report", "error": err.Error()})
		return
	}

	var parsed json.RawMessage = jsonContent
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"jsonReport": parsed,
		"htmlReport": string(htmlContent),
	})
}
