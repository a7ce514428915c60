package services

import (
	"github.com/logsentinel/backend/internal/models"
)

// GroupByUser partitions a batch of activity logs by their user. Records
// without a user are excluded entirely. The returned slice holds user IDs
// in order of first appearance so callers can iterate deterministically;
// each user's records keep their input order.
func GroupByUser(logs []models.ActivityLog) (map[uint][]models.ActivityLog, []uint) {
	grouped := make(map[uint][]models.ActivityLog)
	var order []uint

	for _, entry := range logs {
		if entry.UserID == nil {
			continue
		}
		userID := *entry.UserID
		if _, seen := grouped[userID]; !seen {
			order = append(order, userID)
		}
		grouped[userID] = append(grouped[userID], entry)
	}

	return grouped, order
}
