package allocator

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/synthline/firmforge/internal/capacity"
	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/projectgen"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// Allocator runs the per-working-day step: starting due projects,
// topping up thin teams, distributing hours across deliverables under
// the capacity caps, and advancing the state machines.
type Allocator struct {
	cfg       config.Config
	rng       *randsrc.Source
	cal       *simclock.Calendar
	workforce *store.Workforce
	projects  *store.Projects
	oracle    *capacity.Oracle
	creator   *projectgen.Creator
	log       zerolog.Logger
}

// New wires an Allocator over the shared stores.
func New(cfg config.Config, rng *randsrc.Source, cal *simclock.Calendar, wf *store.Workforce, pr *store.Projects, oracle *capacity.Oracle, creator *projectgen.Creator, log zerolog.Logger) *Allocator {
	return &Allocator{
		cfg:       cfg,
		rng:       rng,
		cal:       cal,
		workforce: wf,
		projects:  pr,
		oracle:    oracle,
		creator:   creator,
		log:       log.With().Str("component", "allocator").Logger(),
	}
}

// RunDay advances the simulation by one working day.
func (a *Allocator) RunDay(d time.Time) error {
	active := a.projects.ActiveOn(d)

	for _, proj := range active {
		if proj.Status == domain.ProjectNotStarted && !proj.ActualStart.After(d) {
			proj.Status = domain.ProjectInProgress
		}
	}

	for _, proj := range active {
		if proj.Status != domain.ProjectInProgress {
			continue
		}
		for _, id := range a.projects.ReleaseDeparted(proj.ID, d) {
			a.log.Debug().Str("consultant", id).Str("project", proj.ID).Str("date", d.Format(simclock.DateLayout)).Msg("released departed team member")
		}
		if err := a.creator.TopUpTeam(proj, d); err != nil {
			return fmt.Errorf("topping up team on %s: %w", d.Format(simclock.DateLayout), err)
		}
	}

	randsrc.Shuffle(a.rng, active)
	for _, proj := range active {
		if proj.Status != domain.ProjectInProgress {
			continue
		}
		if err := a.allocateProject(proj, d); err != nil {
			return err
		}
		if err := a.advanceProject(proj, d); err != nil {
			return err
		}
	}
	return nil
}

// allocateProject charges hours for one project on one day, deliverable
// by deliverable in planned order.
func (a *Allocator) allocateProject(proj *domain.Project, d time.Time) error {
	team := a.openTeamOn(proj.ID, d)
	if len(team) == 0 {
		return nil
	}

	for _, deliv := range a.projects.Deliverables(proj.ID) {
		if deliv.Status == domain.DeliverableCompleted || deliv.PlannedStart.After(d) {
			continue
		}
		remaining := deliv.Remaining()
		if remaining <= 0 {
			a.completeDeliverable(proj, deliv, d)
			continue
		}

		for _, member := range team {
			if remaining <= 0 {
				break
			}
			title := a.workforce.LatestTitleID(member, d)
			if title == 0 {
				continue
			}
			dailyCap := a.oracle.DailyCap(title)
			avail := dailyCap - a.projects.DailyHours(member, d)
			if avail <= 0 {
				continue
			}
			if avail > remaining {
				avail = remaining
			}
			hours := a.drawHours(a.oracle.MinProjectHours(title), avail)
			if hours <= 0 {
				continue
			}

			if deliv.ActualStart == nil {
				start := d
				deliv.ActualStart = &start
				deliv.Status = domain.DeliverableInProgress
			}
			if err := a.projects.AddCharge(&domain.ConsultantDeliverable{
				ConsultantID:  member,
				DeliverableID: deliv.ID,
				Date:          d,
				Hours:         hours,
			}, dailyCap); err != nil {
				return err
			}
			deliv.ActualHours += hours
			proj.ActualHours += hours
			remaining -= hours
		}

		if deliv.TargetHours > 0 {
			deliv.Progress = min(100, int(math.Round(deliv.ActualHours/deliv.TargetHours*100)))
		}
		if deliv.Remaining() <= 0 && deliv.ActualHours > 0 {
			a.completeDeliverable(proj, deliv, d)
		}
	}
	return nil
}

// drawHours draws a charge in [minHours, avail], clipping rather than
// retrying when the window is degenerate, at 0.1h resolution.
func (a *Allocator) drawHours(minHours, avail float64) float64 {
	if avail < minHours {
		a.log.Debug().Float64("avail", avail).Float64("min", minHours).Msg("clipped draw to remaining capacity")
		minHours = avail
	}
	hours := randsrc.RoundTenth(a.rng.Uniform(minHours, avail))
	if hours > avail {
		hours = math.Floor(avail*10) / 10
	}
	return hours
}

func (a *Allocator) completeDeliverable(proj *domain.Project, deliv *domain.Deliverable, d time.Time) {
	if deliv.Status == domain.DeliverableCompleted {
		return
	}
	deliv.Status = domain.DeliverableCompleted
	deliv.Progress = 100
	sub := d
	deliv.SubmissionDate = &sub
	if proj.Kind == domain.KindFixed {
		inv := d.AddDate(0, 0, a.rng.IntInRange(1, 7))
		deliv.InvoicedDate = &inv
	}
}

// openTeamOn lists team members with an open assignment on d who are
// still employed that day, in assignment order.
func (a *Allocator) openTeamOn(projectID string, d time.Time) []string {
	var out []string
	for _, as := range a.projects.Team(projectID) {
		if !as.OpenOn(d) {
			continue
		}
		if !a.workforce.EmployedOn(as.ConsultantID, d) {
			continue
		}
		out = append(out, as.ConsultantID)
	}
	return out
}

// advanceProject applies the end-of-day state rules: progress roll-up,
// completion when every deliverable is done, cancellation when nothing
// was ever charged.
func (a *Allocator) advanceProject(proj *domain.Project, d time.Time) error {
	deliverables := a.projects.Deliverables(proj.ID)

	totalTarget, totalActual := 0.0, 0.0
	allDone := len(deliverables) > 0
	for _, deliv := range deliverables {
		totalTarget += deliv.TargetHours
		actual := deliv.ActualHours
		if actual > deliv.TargetHours {
			actual = deliv.TargetHours
		}
		totalActual += actual
		if deliv.Status != domain.DeliverableCompleted {
			allDone = false
		}
	}
	if totalTarget > 0 {
		if p := min(100, int(math.Floor(totalActual/totalTarget*100))); p > proj.Progress {
			proj.Progress = p
		}
	}

	if allDone {
		return a.completeProject(proj, d)
	}

	if proj.ActualHours == 0 && d.After(proj.ActualStart.AddDate(0, 0, a.cfg.CancelAfterDays)) {
		proj.Status = domain.ProjectCancelled
		a.projects.CloseAssignments(proj.ID, d)
		a.log.Info().Str("project", proj.ID).Str("date", d.Format(simclock.DateLayout)).Msg("project cancelled, no hours charged")
	}
	return nil
}

// completeProject closes the project on d: remaining scheduled expenses
// land on the completion day so every expense stays inside the actual
// window.
func (a *Allocator) completeProject(proj *domain.Project, d time.Time) error {
	proj.Status = domain.ProjectCompleted
	proj.Progress = 100
	end := d
	proj.ActualEnd = &end
	a.projects.CloseAssignments(proj.ID, d)

	if err := a.emitExpenses(proj, d, func(e *domain.ScheduledExpense) bool { return true }); err != nil {
		return err
	}
	return nil
}

// EndOfMonth emits the scheduled expenses that fall due in m for every
// running project.
func (a *Allocator) EndOfMonth(m simclock.Month) error {
	date := simclock.MinDate(m.End(), a.cal.End())
	for _, proj := range a.projects.All() {
		if proj.Status != domain.ProjectInProgress {
			continue
		}
		due := func(e *domain.ScheduledExpense) bool {
			return e.Year < m.Year || (e.Year == m.Year && e.Month <= m.Month)
		}
		if err := a.emitExpenses(proj, date, due); err != nil {
			return err
		}
	}
	return nil
}

// emitExpenses writes every un-emitted scheduled expense matched by due,
// dated inside the project's actual window.
func (a *Allocator) emitExpenses(proj *domain.Project, date time.Time, due func(*domain.ScheduledExpense) bool) error {
	windowEnd := a.cal.End()
	if proj.ActualEnd != nil && proj.ActualEnd.Before(windowEnd) {
		windowEnd = *proj.ActualEnd
	}
	clamped := simclock.MaxDate(proj.ActualStart, simclock.MinDate(date, windowEnd))

	for i := range proj.Meta.Expenses {
		e := &proj.Meta.Expenses[i]
		if e.Emitted || !due(e) {
			continue
		}
		if err := a.projects.AddExpense(&domain.Expense{
			ProjectID:     proj.ID,
			DeliverableID: e.DeliverableID,
			Date:          clamped,
			Amount:        e.Amount,
			Description:   e.Description,
			Category:      e.Category,
			Billable:      e.Billable,
		}, a.cal.End()); err != nil {
			return fmt.Errorf("emitting %s expense for project %s: %w", e.Category, proj.ID, err)
		}
		e.Emitted = true
	}
	return nil
}

// EndOfYear releases assignments still held by departed consultants and
// re-derives every consultant's active-project count from the open
// assignments, logging any drift.
func (a *Allocator) EndOfYear(year int) {
	cutoff := simclock.MinDate(simclock.Date(year, time.December, 31), a.cal.End())
	for _, proj := range a.projects.All() {
		a.projects.ReleaseDeparted(proj.ID, cutoff)
	}
	for _, c := range a.workforce.Consultants() {
		derived := a.projects.OpenAssignmentCount(c.ID)
		if c.ActiveProjects != derived {
			a.log.Warn().Str("consultant", c.ID).Int("tracked", c.ActiveProjects).Int("derived", derived).Int("year", year).Msg("active-project count drifted, re-deriving")
			c.ActiveProjects = derived
		}
	}
}
