package models

import (
	"time"

	"github.com/lib/pq"
)

// AnalysisReport is the persisted summary row for one completed analysis
// run. The full report lives in the generated artifacts; this row exists
// so admin tooling can list past runs without touching the filesystem.
type AnalysisReport struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	StartTime          time.Time      `json:"startTime" gorm:"not null"`
	EndTime            time.Time      `json:"endTime" gorm:"not null"`
	TotalUsersAnalyzed int            `json:"totalUsersAnalyzed"`
	HighSuspicion      int            `json:"highSuspicion"`
	MediumSuspicion    int            `json:"mediumSuspicion"`
	LowSuspicion       int            `json:"lowSuspicion"`
	Clean              int            `json:"clean"`
	FlaggedUserIDs     pq.StringArray `json:"flaggedUserIds" gorm:"type:text[]"`
	JSONPath           string         `json:"jsonPath"`
	HTMLPath           string         `json:"htmlPath"`
	Metadata           JSONB          `json:"metadata" gorm:"type:jsonb"`
	CreatedAt          time.Time      `json:"createdAt"`
}

func (AnalysisReport) TableName() string {
	return "analysis_reports"
}
