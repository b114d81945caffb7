package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Consultant is a simulated employee. Attrition and layoff are recorded
// in title history; consultants are never deleted.
//
// The trailing fields are mutable simulation metadata. The original
// system carried these in a serialized sidecar document; here they are
// typed fields that only the final flush persists.
type Consultant struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BusinessUnitID int
	HireYear       int

	CurrentTitleID int
	ActiveProjects int
	LastAssignedOn *time.Time
}

// FullName returns "First Last" for report output.
func (c *Consultant) FullName() string {
	return c.FirstName + " " + c.LastName
}

// TitleHistoryEntry is one window of a consultant's title history. For
// any consultant the entries form a gapless, non-overlapping
// chronological sequence with at most one open entry; the open entry's
// title is the consultant's current title.
type TitleHistoryEntry struct {
	ConsultantID string
	TitleID      int
	StartDate    time.Time
	EndDate      *time.Time
	Event        EventType
	Salary       int
}

// Open reports whether the entry has no end date.
func (e *TitleHistoryEntry) Open() bool { return e.EndDate == nil }

// Contains reports whether d falls inside the entry's window, endpoints
// included.
func (e *TitleHistoryEntry) Contains(d time.Time) bool {
	if d.Before(e.StartDate) {
		return false
	}
	return e.EndDate == nil || !d.After(*e.EndDate)
}

func (e *TitleHistoryEntry) String() string {
	end := "open"
	if e.EndDate != nil {
		end = e.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%s %s title=%d %s..%s", e.ConsultantID, e.Event, e.TitleID, e.StartDate.Format("2006-01-02"), end)
}

// PayrollRecord is one monthly salary payment, derived from title
// history after the simulation completes.
type PayrollRecord struct {
	ConsultantID  string
	Amount        decimal.Decimal
	EffectiveDate time.Time
}
