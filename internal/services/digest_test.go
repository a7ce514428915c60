package services

import (
	"errors"
	"testing"
	"time"

	"github.com/logsentinel/backend/internal/models"
)

func TestBuildActivityDigestEmptyInput(t *testing.T) {
	_, err := BuildActivityDigest(1, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildActivityDigestCounts(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.Local)

	logs := []models.ActivityLog{
		{ID: 1, Action: models.ActionLoginAttempt, Level: models.LogLevelInfo, IPAddress: "1.1.1.1", Timestamp: base},
		{ID: 2, Action: models.ActionLoginAttempt, Level: models.LogLevelInfo, IPAddress: "1.1.1.1", Timestamp: base.Add(time.Hour)},
		{ID: 3, Action: models.ActionLoginError, Level: models.LogLevelError, IPAddress: "2.2.2.2", Timestamp: base.Add(2 * time.Hour)},
		{ID: 4, Action: models.ActionCreateContent, Level: models.LogLevelInfo, Timestamp: base.Add(3 * time.Hour),
			Metadata: models.JSONB{"classification": "Harmful"}},
		{ID: 5, Action: models.ActionCreateContent, Level: models.LogLevelInfo, Timestamp: base.Add(4 * time.Hour),
			Metadata: models.JSONB{"classification": "Warning"}},
		{ID: 6, Action: models.ActionCreateContent, Level: models.LogLevelInfo, Timestamp: base.Add(5 * time.Hour),
			Metadata: models.JSONB{"classification": "Safe"}},
	}

	digest, err := BuildActivityDigest(42, logs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if digest.UserID != 42 {
		t.Errorf("Expected user 42, got %d", digest.UserID)
	}
	if digest.LoginAttempts != 2 {
		t.Errorf("Expected 2 login attempts, got %d", digest.LoginAttempts)
	}
	if digest.FailedLogins != 1 {
		t.Errorf("Expected 1 failed login, got %d", digest.FailedLogins)
	}
	if digest.ContentCreated != 3 {
		t.Errorf("Expected 3 content created, got %d", digest.ContentCreated)
	}
	if digest.HarmfulContent != 1 {
		t.Errorf("Expected 1 harmful content, got %d", digest.HarmfulContent)
	}
	if digest.WarningContent != 1 {
		t.Errorf("Expected 1 warning content, got %d", digest.WarningContent)
	}
	if digest.ErrorCount != 1 {
		t.Errorf("Expected 1 error record, got %d", digest.ErrorCount)
	}
	if len(digest.DistinctIPs) != 2 {
		t.Errorf("Expected 2 distinct IPs, got %v", digest.DistinctIPs)
	}
	if len(digest.DistinctHours) != 6 {
		t.Errorf("Expected 6 distinct hours, got %v", digest.DistinctHours)
	}

	// totalRecords == sum(actionFrequency) == input length
	if digest.TotalRecords != len(logs) {
		t.Errorf("Expected totalRecords %d, got %d", len(logs), digest.TotalRecords)
	}
	sum := 0
	for _, n := range digest.ActionFrequency {
		sum += n
	}
	if sum != digest.TotalRecords {
		t.Errorf("Expected actionFrequency sum %d to equal totalRecords %d", sum, digest.TotalRecords)
	}

	if !digest.TimeSpan.Earliest.Equal(base) {
		t.Errorf("Expected earliest %v, got %v", base, digest.TimeSpan.Earliest)
	}
	if !digest.TimeSpan.Latest.Equal(base.Add(5 * time.Hour)) {
		t.Errorf("Expected latest %v, got %v", base.Add(5*time.Hour), digest.TimeSpan.Latest)
	}
}

func TestBuildActivityDigestUnknownActionBoundary(t *testing.T) {
	logs := []models.ActivityLog{
		{ID: 1, Action: "UNKNOWN_TAG", Level: models.LogLevelError, Timestamp: time.Now()},
	}

	digest, err := BuildActivityDigest(5, logs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if digest.ErrorCount != 1 {
		t.Errorf("Expected errorCount 1, got %d", digest.ErrorCount)
	}
	if digest.LoginAttempts != 0 {
		t.Errorf("Expected 0 login attempts, got %d", digest.LoginAttempts)
	}
	if digest.ContentCreated != 0 {
		t.Errorf("Expected 0 content created, got %d", digest.ContentCreated)
	}
	if digest.TotalRecords != 1 {
		t.Errorf("Expected totalRecords 1, got %d", digest.TotalRecords)
	}
	if digest.ActionFrequency["UNKNOWN_TAG"] != 1 {
		t.Errorf("Expected UNKNOWN_TAG counted once, got %d", digest.ActionFrequency["UNKNOWN_TAG"])
	}
}

func TestBuildActivityDigestSortsOutOfOrderRecords(t *testing.T) {
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.Local)

	logs := []models.ActivityLog{
		{ID: 1, Action: models.ActionLoginAttempt, Timestamp: base.Add(2 * time.Hour)},
		{ID: 2, Action: models.ActionLoginAttempt, Timestamp: base},
		{ID: 3, Action: models.ActionLoginAttempt, Timestamp: base.Add(time.Hour)},
	}

	digest, err := BuildActivityDigest(1, logs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !digest.TimeSpan.Earliest.Equal(base) {
		t.Errorf("Expected earliest %v, got %v", base, digest.TimeSpan.Earliest)
	}
	if !digest.TimeSpan.Latest.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Expected latest %v, got %v", base.Add(2*time.Hour), digest.TimeSpan.Latest)
	}
}
