package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deliverable is a sub-unit of a project. Deliverables partition the
// project's planned window: the first starts at project planned start,
// each subsequent one the day after the previous due date, and the last
// is due on the project planned end.
type Deliverable struct {
	ID             string
	ProjectID      string
	Name           string
	PlannedStart   time.Time
	ActualStart    *time.Time
	DueDate        time.Time
	SubmissionDate *time.Time
	InvoicedDate   *time.Time
	Status         DeliverableStatus
	PlannedHours   float64
	TargetHours    float64
	ActualHours    float64
	Progress       int
	Price          *decimal.Decimal
}

// Remaining returns the hours still to be charged before the
// deliverable completes.
func (d *Deliverable) Remaining() float64 {
	return d.TargetHours - d.ActualHours
}

/// ConsultantDeliverable is a daily time charge: the consultant worked
// Hours on the deliverable on Date. Date is always a working day inside
// the project's actual window.
type ConsultantDeliverable struct {
	ConsultantID  string
	DeliverableID string
	Date          time.Time
	Hours         float64
}
