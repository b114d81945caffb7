package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a time-bounded engagement with a team and deliverables.
// Fixed projects carry a price; time-and-material projects carry an
// estimated budget and per-title billing rates.
type Project struct {
	ID           string
	ClientID     int
	UnitID       int
	Name         string
	Kind         ProjectKind
	Status       ProjectStatus
	PlannedStart time.Time
	PlannedEnd   time.Time
	ActualStart  time.Time
	ActualEnd    *time.Time
	Price        *decimal.Decimal
	Budget       *decimal.Decimal
	PlannedHours float64
	ActualHours  float64
	Progress     int
	CreatedAt    time.Time

	Meta ProjectMeta
}

// ProjectMeta is mutable simulation state attached to a project. It is
// never read back from storage during the run.
type ProjectMeta struct {
	TargetTeamSize   int
	RemainingSlots   int
	TargetHours      float64
	EstimatedCost    decimal.Decimal
	EstimatedRevenue decimal.Decimal
	Expenses         []ScheduledExpense
}

// ScheduledExpense is a per-deliverable per-category monthly amount
// computed at project creation and emitted month by month.
type ScheduledExpense struct {
	DeliverableID string
	Year          int
	Month         time.Month
	Amount        decimal.Decimal
	Category      string
	Description   string
	Billable      bool
	Emitted       bool
}

// TeamAssignment records a consultant's membership on a project team.
// While the assignment is open the consultant's active-project count
// includes this project.
type TeamAssignment struct {
	ProjectID    string
	ConsultantID string
	Role         Role
	StartDate    time.Time
	EndDate      *time.Time
}

// OpenOn reports whether the assignment is open on d.
func (a *TeamAssignment) OpenOn(d time.Time) bool {
	if d.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !d.After(*a.EndDate)
}

// BillingRate is a per-title hourly rate on a time-and-material project.
// Every T&M project carries exactly one row per title 1..TitleCount.
type BillingRate struct {
	ProjectID string
	TitleID   int
	Rate      decimal.Decimal
}

// Expense is a disbursed project expense row.
type Expense struct {
	ProjectID     string
	DeliverableID string
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	Category      string
	Billable      bool
}
