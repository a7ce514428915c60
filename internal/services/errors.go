package services

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a digest is requested for a user with no
// records. The analyzer never invokes the builder for empty groups, so
// seeing this error indicates caller misuse.
var ErrEmptyInput = errors.New("cannot build activity digest from empty record set")

// ErrAnalysisRunning is returned when a run is triggered while a previous
// run has not finished. Triggers treat it as a no-op, not a failure.
var ErrAnalysisRunning = errors.New("analysis run already in progress")

// StoreReadError aborts the whole run: retrieval is foundational and a
// failed page cannot be skipped.
type StoreReadError struct {
	Page int
	Err  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to read activity log page %d: %v", e.Page, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError covers a failed suspicion write-back for one user. The
// verdict is still counted in the in-memory run.
type StoreWriteError struct {
	UserID uint
	Err    error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to write suspicion flags for user %d: %v", e.UserID, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// OracleUnavailableError covers a failed oracle call for one user. The
// user is skipped for this run and the run continues.
type OracleUnavailableError struct {
	Err error
}

func (e *OracleUnavailableError) Error() string {
	return fmt.Sprintf("suspicion oracle unavailable: %v", e.Err)
}

func (e *OracleUnavailableError) Unwrap() error { return e.Err }

// ReportWriteError fails the whole run: a run without a durable artifact
// is incomplete.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("failed to write report artifact %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error { return e.Err }
