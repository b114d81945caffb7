package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadHistoryWrite marks a title-history insert that would break the
// gapless non-overlap invariant.
var ErrBadHistoryWrite = errors.New("bad title history write")

// ErrEmptyPool marks a required reference table that is empty.
var ErrEmptyPool = errors.New("empty reference pool")

// ErrCapacityExhausted marks a planned project that found no eligible
// manager or members. It is recovered locally by lowering the month's
// project count, never surfaced across the public API.
var ErrCapacityExhausted = errors.New("capacity exhausted")

// InvariantError is a fatal write that would break a hard invariant.
// It aborts the run and names the offending entities and date.
type InvariantError struct {
	Rule         string
	ConsultantID string
	ProjectID    string
	Date         time.Time
	Detail       string
}

func (e *InvariantError) Error() string {
	msg := "invariant violated: " + e.Rule
	if e.ConsultantID != "" {
		msg += " consultant=" + e.ConsultantID
	}
	if e.ProjectID != "" {
		msg += " project=" + e.ProjectID
	}
	if !e.Date.IsZero() {
		msg += " date=" + e.Date.Format("2006-01-02")
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Invariantf builds an InvariantError with a formatted detail message.
func Invariantf(rule, consultantID, projectID string, date time.Time, format string, args ...any) *InvariantError {
	return &InvariantError{
		Rule:         rule,
		ConsultantID: consultantID,
		ProjectID:    projectID,
		Date:         date,
		Detail:       fmt.Sprintf(format, args...),
	}
}
