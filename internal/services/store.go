package services

import (
	"fmt"
	"time"

	"github.com/logsentinel/backend/internal/logger"
	"github.com/logsentinel/backend/internal/models"
	"gorm.io/gorm"
)

// LogStore wraps the durable activity log table: paged range reads for
// the analyzer, the bulk suspicion write-back, and the per-run report
// row.
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// FetchPage returns one page of logs with timestamp >= since, ordered by
// timestamp. The user join exists for report display only; if it fails
// the page is re-read without it rather than failing the run.
func (s *LogStore) FetchPage(since time.Time, page, size int) ([]models.ActivityLog, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size

	var logs []models.ActivityLog
	err := s.db.
		Preload("User").
		Where("timestamp >= ?", since).
		Order("timestamp ASC, id ASC").
		Offset(offset).
		Limit(size).
		Find(&logs).Error

	if err != nil {
		logger.Warn("User join failed for activity log page, retrying without it", map[string]interface{}{
			"action": "LOG_PAGE_JOIN_FAILED",
			"page":   page,
			"error":  err.Error(),
		})

		logs = nil
		err = s.db.
			Where("timestamp >= ?", since).
			Order("timestamp ASC, id ASC").
			Offset(offset).
			Limit(size).
			Find(&logs).Error
		if err != nil {
			return nil, &StoreReadError{Page: page, Err: err}
		}
	}

	return logs, nil
}

// MarkSuspicious bulk-updates the suspicion fields on every contributing
// record of one user. Atomicity of the update is the database's job.
func (s *LogStore) MarkSuspicious(userID uint, ids []uint, level models.SuspicionLevel, reason string) error {
	if len(ids) == 0 {
		return nil
	}

	fullReason := fmt.Sprintf("AI Analysis: %s", reason)
	err := s.db.Model(&models.ActivityLog{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"suspicion_level":  level,
			"suspicion_reason": fullReason,
		}).Error

	if err != nil {
		return &StoreWriteError{UserID: userID, Err: err}
	}
	return nil
}

// SaveReport persists the per-run summary row.
func (s *LogStore) SaveReport(report *models.AnalysisReport) error {
	if err := s.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to save analysis report row: %w", err)
	}
	return nil
}
