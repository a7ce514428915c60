package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/logsentinel/backend/internal/controllers"
	"github.com/logsentinel/backend/internal/services"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes and returns the analyzer
// so the caller can hand it to the scheduler.
func SetupRoutes(r *gin.Engine, db *gorm.DB) *services.AnalyzerService {
	// Initialize services
	store := services.NewLogStore(db)
	oracle := services.NewOracleService(
		os.Getenv("OLLAMA_URL"),
		os.Getenv("OLLAMA_MODEL"),
	)
	reportService := services.NewReportService("")
	analyzer := services.NewAnalyzerService(store, oracle, reportService)

	// Initialize controllers
	reportController := controllers.NewReportController(analyzer, reportService)

	// API routes
	api := r.Group("/api/v1")
	{
		reports := api.Group("/reports")
		{
			reports.POST("/generate", reportController.GenerateReport)
			reports.GET("/:date", reportController.GetReport)
		}
	}

	return analyzer
}
