package services

import (
	"errors"
	"fmt"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrSyncAborted = errors.New("sync run aborted")
	ErrSheetEmpty  = errors.New("sheet has no task codes or no students")

	// Task code resolution errors
	ErrInvalidCodeFormat = errors.New("invalid task code format")
	ErrSectionOutOfRange = errors.New("section out of range")
	ErrLessonNotFound    = errors.New("lesson not found in section")
	ErrStepOutOfRange    = errors.New("step out of range")
)

// ===== CUSTOM ERROR TYPES =====

// TaskCodeError wraps a task-code resolution failure with the offending code
// and the bound that was violated, so a skipped column is diagnosable from
// the logs and the run report.
type TaskCodeError struct {
	Code   string `json:"code"`
	Reason error  `json:"-"`
	Detail string `json:"detail"`
}

func (e *TaskCodeError) Error() string {
	return fmt.Sprintf("task code %q: %s", e.Code, e.Detail)
}

func (e *TaskCodeError) Unwrap() error {
	return e.Reason
}

// ===== ERROR HELPERS =====

func newTaskCodeError(code string, reason error, format string, args ...interface{}) *TaskCodeError {
	return &TaskCodeError{
		Code:   code,
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// IsTaskCodeError checks if error represents a task-code resolution failure,
// the class of failures that skips a column instead of aborting the run.
func IsTaskCodeError(err error) bool {
	var tce *TaskCodeError
	return errors.As(err, &tce)
}
