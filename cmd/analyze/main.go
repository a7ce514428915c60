package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/logsentinel/backend/internal/db"
	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/services"
)

// Manual trigger for the weekly analysis, outside the cron schedule.
func main() {
	logger.Initialize()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	db.Connect()
	db.AutoMigrate()

	store := services.NewLogStore(db.DB)
	oracle := services.NewOracleService(
		os.Getenv("OLLAMA_URL"),
		os.Getenv("OLLAMA_MODEL"),
	)
	reports := services.NewReportService("")
	analyzer := services.NewAnalyzerService(store, oracle, reports)

	logger.Info("Starting manual AI log analysis", map[string]interface{}{
		"action": "MANUAL_AI_LOG_ANALYSIS_START",
	})

	paths, err := analyzer.RunAnalysis()
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Println("Analysis completed successfully! Check the reports directory for results.")
	fmt.Printf("JSON report: %s\n", paths.JSONPath)
	fmt.Printf("HTML report: %s\n", paths.HTMLPath)
}
