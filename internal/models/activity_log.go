package models

import (
	"time"
)

type LogLevel string

const (
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

type SuspicionLevel string

const (
	SuspicionNone   SuspicionLevel = "none"
	SuspicionLow    SuspicionLevel = "low"
	SuspicionMedium SuspicionLevel = "medium"
	SuspicionHigh   SuspicionLevel = "high"
)

// Well-known action tags counted by the activity digest.
const (
	ActionLoginAttempt  = "LOGIN_ATTEMPT"
	ActionLoginError    = "LOGIN_ERROR"
	ActionCreateContent = "CREATE_CONTENT"
)

// ActivityLog is one event emitted by the upstream producers. Everything
// except the two suspicion fields is immutable once written; only the
// analyzer's write-back step may set those.
type ActivityLog struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Level           LogLevel       `json:"level" gorm:"not null;index"`
	Message         string         `json:"message" gorm:"type:text;not null"`
	Action          string         `json:"action" gorm:"not null;index"`
	UserID          *uint          `json:"userId" gorm:"index"`
	User            *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Metadata        JSONB          `json:"metadata" gorm:"type:jsonb"`
	SuspicionLevel  SuspicionLevel `json:"suspicionLevel" gorm:"not null;default:'none'"`
	SuspicionReason *string        `json:"suspicionReason"`
	IPAddress       string         `json:"ipAddress"`
	UserAgent       string         `json:"userAgent"`
	Timestamp       time.Time      `json:"timestamp" gorm:"index"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// Classification returns the metadata "classification" value, if any.
func (l *ActivityLog) Classification() string {
	if l.Metadata == nil {
		return ""
	}
	if v, ok := l.Metadata["classification"].(string); ok {
		return v
	}
	return ""
}
