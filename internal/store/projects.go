package store

import (
	"fmt"
	"time"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/simclock"
)

type dayKey struct {
	consultantID string
	day          time.Time
}

// Projects is the in-memory store for projects, teams, deliverables,
// time charges, billing rates and expenses. Append-mostly; mutations
// are confined to open-ended fields (end dates, statuses, progress,
// actual hours, metadata).
type Projects struct {
	workforce *Workforce

	projects []*domain.Project
	byID     map[string]*domain.Project

	deliverables map[string][]*domain.Deliverable // project id -> ordered
	delivByID    map[string]*domain.Deliverable
	delivProject map[string]string // deliverable id -> project id

	assignments  map[string][]*domain.TeamAssignment // project id
	byConsultant map[string][]*domain.TeamAssignment

	charges    []*domain.ConsultantDeliverable
	dailyHours map[dayKey]float64

	rates    map[string][]domain.BillingRate // project id
	expenses []*domain.Expense

	createdInMonth map[simclock.Month]int
	unitCountsYear map[int]map[int]int // year -> unit -> projects
}

// NewProjects creates an empty project store. The workforce store is
// consulted for the title-history checks on time-charge writes.
func NewProjects(workforce *Workforce) *Projects {
	return &Projects{
		workforce:      workforce,
		byID:           make(map[string]*domain.Project),
		deliverables:   make(map[string][]*domain.Deliverable),
		delivByID:      make(map[string]*domain.Deliverable),
		delivProject:   make(map[string]string),
		assignments:    make(map[string][]*domain.TeamAssignment),
		byConsultant:   make(map[string][]*domain.TeamAssignment),
		dailyHours:     make(map[dayKey]float64),
		rates:          make(map[string][]domain.BillingRate),
		createdInMonth: make(map[simclock.Month]int),
		unitCountsYear: make(map[int]map[int]int),
	}
}

// AddProject appends a new project.
func (p *Projects) AddProject(proj *domain.Project) error {
	if proj.ID == "" {
		return fmt.Errorf("project id is empty")
	}
	if _, dup := p.byID[proj.ID]; dup {
		return fmt.Errorf("duplicate project id %s", proj.ID)
	}
	p.projects = append(p.projects, proj)
	p.byID[proj.ID] = proj

	m := simclock.MonthOf(proj.PlannedStart)
	p.createdInMonth[m]++
	year := proj.PlannedStart.Year()
	if p.unitCountsYear[year] == nil {
		p.unitCountsYear[year] = make(map[int]int)
	}
	p.unitCountsYear[year][proj.UnitID]++
	return nil
}

// AddDeliverable appends a deliverable to its project.
func (p *Projects) AddDeliverable(d *domain.Deliverable) error {
	if _, ok := p.byID[d.ProjectID]; !ok {
		return fmt.Errorf("deliverable %s references unknown project %s", d.ID, d.ProjectID)
	}
	p.deliverables[d.ProjectID] = append(p.deliverables[d.ProjectID], d)
	p.delivByID[d.ID] = d
	p.delivProject[d.ID] = d.ProjectID
	return nil
}

// AddAssignment opens a team assignment and bumps the consultant's
// active-project count.
func (p *Projects) AddAssignment(a *domain.TeamAssignment) error {
	proj, ok := p.byID[a.ProjectID]
	if !ok {
		return fmt.Errorf("assignment references unknown project %s", a.ProjectID)
	}
	c := p.workforce.Consultant(a.ConsultantID)
	if c == nil {
		return fmt.Errorf("assignment references unknown consultant %s", a.ConsultantID)
	}
	if a.StartDate.Before(proj.ActualStart) {
		return domain.Invariantf("team assignment window", a.ConsultantID, a.ProjectID, a.StartDate,
			"assignment starts before project actual start %s", proj.ActualStart.Format("2006-01-02"))
	}
	if !p.workforce.EmployedOn(a.ConsultantID, a.StartDate) {
		return domain.Invariantf("team reachability", a.ConsultantID, a.ProjectID, a.StartDate,
			"consultant not employed on assignment start")
	}
	p.assignments[a.ProjectID] = append(p.assignments[a.ProjectID], a)
	p.byConsultant[a.ConsultantID] = append(p.byConsultant[a.ConsultantID], a)
	c.ActiveProjects++
	start := a.StartDate
	c.LastAssignedOn = &start
	return nil
}

// CloseAssignments closes every open assignment on the project and
// restores the members' active-project counts. Returns the ids of the
// released consultants.
func (p *Projects) CloseAssignments(projectID string, end time.Time) []string {
	var released []string
	for _, a := range p.assignments[projectID] {
		if a.EndDate != nil {
			continue
		}
		e := end
		if e.Before(a.StartDate) {
			e = a.StartDate
		}
		a.EndDate = &e
		if c := p.workforce.Consultant(a.ConsultantID); c != nil && c.ActiveProjects > 0 {
			c.ActiveProjects--
			d := e
			c.LastAssignedOn = &d
		}
		released = append(released, a.ConsultantID)
	}
	return released
}

// ReleaseDeparted closes the open assignments of project members who
// are no longer employed on date, ending each at the member's last
// employment day. Returns the ids of the released consultants.
func (p *Projects) ReleaseDeparted(projectID string, date time.Time) []string {
	var released []string
	for _, a := range p.assignments[projectID] {
		if a.EndDate != nil || p.workforce.EmployedOn(a.ConsultantID, date) {
			continue
		}
		end := p.workforce.DepartureDate(a.ConsultantID)
		if end == nil {
			continue
		}
		e := *end
		if e.Before(a.StartDate) {
			e = a.StartDate
		}
		a.EndDate = &e
		if c := p.workforce.Consultant(a.ConsultantID); c != nil && c.ActiveProjects > 0 {
			c.ActiveProjects--
			d := e
			c.LastAssignedOn = &d
		}
		released = append(released, a.ConsultantID)
	}
	return released
}

// AddCharge appends a time-charge row after checking the hard
// invariants: positive hours on a working day, an open assignment on
// that date, and the per-title daily cap.
func (p *Projects) AddCharge(row *domain.ConsultantDeliverable, dailyCap float64) error {
	if row.Hours <= 0 {
		return domain.Invariantf("positive hours", row.ConsultantID, "", row.Date,
			"charge of %.1f hours on deliverable %s", row.Hours, row.DeliverableID)
	}
	if !simclock.IsWorkingDay(row.Date) {
		return domain.Invariantf("working day", row.ConsultantID, "", row.Date,
			"charge dated on a weekend")
	}
	projectID, ok := p.delivProject[row.DeliverableID]
	if !ok {
		return fmt.Errorf("charge references unknown deliverable %s", row.DeliverableID)
	}
	if !p.hasOpenAssignment(row.ConsultantID, projectID, row.Date) {
		return domain.Invariantf("open assignment", row.ConsultantID, projectID, row.Date,
			"consultant has no open team assignment on charge date")
	}
	key := dayKey{row.ConsultantID, row.Date}
	if p.dailyHours[key]+row.Hours > dailyCap+1e-9 {
		return domain.Invariantf("daily hour cap", row.ConsultantID, projectID, row.Date,
			"charge of %.1f would exceed cap %.1f (already %.1f)", row.Hours, dailyCap, p.dailyHours[key])
	}
	p.charges = append(p.charges, row)
	p.dailyHours[key] += row.Hours
	return nil
}

func (p *Projects) hasOpenAssignment(consultantID, projectID string, date time.Time) bool {
	for _, a := range p.byConsultant[consultantID] {
		if a.ProjectID == projectID && a.OpenOn(date) {
			return true
		}
	}
	return false
}

// AddBillingRate appends a per-title rate row.
func (p *Projects) AddBillingRate(r domain.BillingRate) error {
	if _, ok := p.byID[r.ProjectID]; !ok {
		return fmt.Errorf("billing rate references unknown project %s", r.ProjectID)
	}
	p.rates[r.ProjectID] = append(p.rates[r.ProjectID], r)
	return nil
}

// AddExpense appends a disbursed expense row, checking it falls inside
// the project's actual window.
func (p *Projects) AddExpense(e *domain.Expense, simEnd time.Time) error {
	proj, ok := p.byID[e.ProjectID]
	if !ok {
		return fmt.Errorf("expense references unknown project %s", e.ProjectID)
	}
	windowEnd := simEnd
	if proj.ActualEnd != nil && proj.ActualEnd.Before(simEnd) {
		windowEnd = *proj.ActualEnd
	}
	if e.Date.Before(proj.ActualStart) || e.Date.After(windowEnd) {
		return domain.Invariantf("expense dating", "", e.ProjectID, e.Date,
			"expense outside active window [%s, %s]", proj.ActualStart.Format("2006-01-02"), windowEnd.Format("2006-01-02"))
	}
	p.expenses = append(p.expenses, e)
	return nil
}

// Project looks a project up by id.
func (p *Projects) Project(id string) *domain.Project { return p.byID[id] }

// All returns every project in creation order.
func (p *Projects) All() []*domain.Project { return p.projects }

// ActiveOn lists projects that can receive work on date: In Progress,
// or Not Started with an actual start on or before date.
func (p *Projects) ActiveOn(date time.Time) []*domain.Project {
	var out []*domain.Project
	for _, proj := range p.projects {
		switch proj.Status {
		case domain.ProjectInProgress:
			out = append(out, proj)
		case domain.ProjectNotStarted:
			if !proj.ActualStart.After(date) {
				out = append(out, proj)
			}
		}
	}
	return out
}

// Deliverables returns a project's deliverables in planned order.
func (p *Projects) Deliverables(projectID string) []*domain.Deliverable {
	return p.deliverables[projectID]
}

// Deliverable looks a deliverable up by id.
func (p *Projects) Deliverable(id string) *domain.Deliverable { return p.delivByID[id] }

// Team returns a project's assignments in creation order.
func (p *Projects) Team(projectID string) []*domain.TeamAssignment {
	return p.assignments[projectID]
}

// OpenAssignments lists the consultant's assignments open on date.
func (p *Projects) OpenAssignments(consultantID string, date time.Time) []*domain.TeamAssignment {
	var out []*domain.TeamAssignment
	for _, a := range p.byConsultant[consultantID] {
		if a.OpenOn(date) {
			out = append(out, a)
		}
	}
	return out
}

// LatestAssignmentEnd returns the latest closed assignment end date for
// the consultant, or nil if none has closed yet.
func (p *Projects) LatestAssignmentEnd(consultantID string) *time.Time {
	var latest *time.Time
	for _, a := range p.byConsultant[consultantID] {
		if a.EndDate == nil {
			continue
		}
		if latest == nil || a.EndDate.After(*latest) {
			latest = a.EndDate
		}
	}
	return latest
}

// DailyHours returns the hours already charged by the consultant on
// date across all projects.
func (p *Projects) DailyHours(consultantID string, date time.Time) float64 {
	return p.dailyHours[dayKey{consultantID, date}]
}

// OpenAssignmentCount counts assignments currently open, regardless of
// date. Used by the year-boundary consistency check.
func (p *Projects) OpenAssignmentCount(consultantID string) int {
	n := 0
	for _, a := range p.byConsultant[consultantID] {
		if a.EndDate == nil {
			n++
		}
	}
	return n
}

// CreatedInMonth counts projects whose planned start falls in m.
func (p *Projects) CreatedInMonth(m simclock.Month) int {
	return p.createdInMonth[m]
}

// UnitCounts returns projects per business unit for the year.
func (p *Projects) UnitCounts(year int) map[int]int {
	return p.unitCountsYear[year]
}

// Charges returns every time-charge row in insertion order.
func (p *Projects) Charges() []*domain.ConsultantDeliverable { return p.charges }

// BillingRates returns the rate rows for a project.
func (p *Projects) BillingRates(projectID string) []domain.BillingRate {
	return p.rates[projectID]
}

// Expenses returns every disbursed expense in insertion order.
func (p *Projects) Expenses() []*domain.Expense { return p.expenses }
