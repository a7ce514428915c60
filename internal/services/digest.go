package services

import (
	"sort"
	"time"

	"github.com/logsentinel/backend/internal/models"
)

// TimeSpan bounds the records that fed a digest.
type TimeSpan struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// ActivityDigest is the fixed-shape statistical reduction of one user's
// activity window. It is rebuilt fresh every run and only persisted as
// part of the generated report.
type ActivityDigest struct {
	UserID          uint           `json:"userId"`
	LoginAttempts   int            `json:"loginAttempts"`
	FailedLogins    int            `json:"failedLogins"`
	ContentCreated  int            `json:"contentCreated"`
	HarmfulContent  int            `json:"harmfulContent"`
	WarningContent  int            `json:"warningContent"`
	ErrorCount      int            `json:"errorCount"`
	ActionFrequency map[string]int `json:"actionFrequency"`
	DistinctHours   []int          `json:"distinctHoursOfDay"`
	DistinctIPs     []string       `json:"distinctIPs"`
	TotalRecords    int            `json:"totalRecords"`
	TimeSpan        TimeSpan       `json:"timeSpan"`
}

// BuildActivityDigest reduces one user's records into an ActivityDigest.
// Records are sorted by timestamp before the timespan is extracted, so an
// out-of-order page from the store cannot skew the bounds.
func BuildActivityDigest(userID uint, logs []models.ActivityLog) (*ActivityDigest, error) {
	if len(logs) == 0 {
		return nil, ErrEmptyInput
	}

	sorted := make([]models.ActivityLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	digest := &ActivityDigest{
		UserID:          userID,
		ActionFrequency: make(map[string]int),
		TotalRecords:    len(sorted),
		TimeSpan: TimeSpan{
			Earliest: sorted[0].Timestamp,
			Latest:   sorted[len(sorted)-1].Timestamp,
		},
	}

	seenHours := make(map[int]bool)
	seenIPs := make(map[string]bool)

	for _, entry := range sorted {
		digest.ActionFrequency[entry.Action]++

		if entry.IPAddress != "" && !seenIPs[entry.IPAddress] {
			seenIPs[entry.IPAddress] = true
			digest.DistinctIPs = append(digest.DistinctIPs, entry.IPAddress)
		}

		hour := entry.Timestamp.Local().Hour()
		if !seenHours[hour] {
			seenHours[hour] = true
			digest.DistinctHours = append(digest.DistinctHours, hour)
		}

		switch entry.Action {
		case models.ActionLoginAttempt:
			digest.LoginAttempts++
		case models.ActionLoginError:
			digest.FailedLogins++
		case models.ActionCreateContent:
			digest.ContentCreated++
			switch entry.Classification() {
			case "Harmful":
				digest.HarmfulContent++
			case "Warning":
				digest.WarningContent++
			}
		}

		if entry.Level == models.LogLevelError {
			digest.ErrorCount++
		}
	}

	sort.Ints(digest.DistinctHours)

	return digest, nil
}
