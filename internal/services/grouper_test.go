package services

import (
	"testing"
	"time"

	"github.com/logsentinel/backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestGroupByUser(t *testing.T) {
	logs := []models.ActivityLog{
		{ID: 1, UserID: uintPtr(7), Action: "LOGIN_ATTEMPT"},
		{ID: 2, UserID: uintPtr(3), Action: "CREATE_CONTENT"},
		{ID: 3, UserID: nil, Action: "LOGIN_ATTEMPT"},
		{ID: 4, UserID: uintPtr(7), Action: "LOGIN_ERROR"},
		{ID: 5, UserID: uintPtr(9), Action: "LOGIN_ATTEMPT"},
		{ID: 6, UserID: uintPtr(3), Action: "CREATE_CONTENT"},
	}

	grouped, order := GroupByUser(logs)

	if len(grouped) != 3 {
		t.Errorf("Expected 3 users, got %d", len(grouped))
	}

	// Key set equals distinct non-nil user ids
	for _, id := range []uint{7, 3, 9} {
		if _, ok := grouped[id]; !ok {
			t.Errorf("Expected user %d in grouping", id)
		}
	}

	// Each user's list length equals its contributing record count
	if len(grouped[7]) != 2 {
		t.Errorf("Expected 2 records for user 7, got %d", len(grouped[7]))
	}
	if len(grouped[3]) != 2 {
		t.Errorf("Expected 2 records for user 3, got %d", len(grouped[3]))
	}
	if len(grouped[9]) != 1 {
		t.Errorf("Expected 1 record for user 9, got %d", len(grouped[9]))
	}

	// Order of first appearance
	expectedOrder := []uint{7, 3, 9}
	if len(order) != len(expectedOrder) {
		t.Fatalf("Expected order of %d users, got %d", len(expectedOrder), len(order))
	}
	for i, id := range expectedOrder {
		if order[i] != id {
			t.Errorf("Expected user %d at position %d, got %d", id, i, order[i])
		}
	}

	// Per-user record order preserved
	if grouped[7][0].ID != 1 || grouped[7][1].ID != 4 {
		t.Errorf("Expected user 7 records in input order, got %v", grouped[7])
	}
}

func TestGroupByUserDropsUnattributed(t *testing.T) {
	logs := []models.ActivityLog{
		{ID: 1, UserID: nil, Timestamp: time.Now()},
		{ID: 2, UserID: nil, Timestamp: time.Now()},
	}

	grouped, order := GroupByUser(logs)

	if len(grouped) != 0 {
		t.Errorf("Expected no groups for unattributed records, got %d", len(grouped))
	}
	if len(order) != 0 {
		t.Errorf("Expected empty order, got %v", order)
	}
}

func TestGroupByUserEmptyInput(t *testing.T) {
	grouped, order := GroupByUser(nil)

	if len(grouped) != 0 || len(order) != 0 {
		t.Errorf("Expected empty result for empty input, got %d groups", len(grouped))
	}
}
