package store

import (
	"fmt"
	"time"

	"github.com/synthline/firmforge/internal/domain"
)

// Workforce is the in-memory consultant roster and title-history log.
// It owns Consultants and TitleHistoryEntries; writes are append-mostly
// and the only mutation is closing the open entry.
type Workforce struct {
	consultants []*domain.Consultant
	byID        map[string]*domain.Consultant
	history     map[string][]*domain.TitleHistoryEntry
	order       []string // consultant ids in insertion order
}

// NewWorkforce creates an empty workforce store.
func NewWorkforce() *Workforce {
	return &Workforce{
		byID:    make(map[string]*domain.Consultant),
		history: make(map[string][]*domain.TitleHistoryEntry),
	}
}

// AddConsultant appends a consultant to the roster.
func (w *Workforce) AddConsultant(c *domain.Consultant) error {
	if c.ID == "" {
		return fmt.Errorf("consultant id is empty")
	}
	if _, dup := w.byID[c.ID]; dup {
		return fmt.Errorf("duplicate consultant id %s", c.ID)
	}
	w.consultants = append(w.consultants, c)
	w.byID[c.ID] = c
	w.order = append(w.order, c.ID)
	return nil
}

// AddTitleEntry appends a title-history entry. The entries of a
// consultant must form a gapless, non-overlapping chronological
// sequence: after the first (Hire) entry, each new entry must start the
// day after the previous entry's end date, and nothing may follow a
// terminal event. Violations are rejected with ErrBadHistoryWrite.
func (w *Workforce) AddTitleEntry(e *domain.TitleHistoryEntry) error {
	if _, ok := w.byID[e.ConsultantID]; !ok {
		return fmt.Errorf("%w: unknown consultant %s", domain.ErrBadHistoryWrite, e.ConsultantID)
	}
	if e.TitleID < 1 || e.TitleID > domain.TitleCount {
		return fmt.Errorf("%w: consultant %s title %d out of range", domain.ErrBadHistoryWrite, e.ConsultantID, e.TitleID)
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: consultant %s entry ends %s before start %s",
			domain.ErrBadHistoryWrite, e.ConsultantID, e.EndDate.Format("2006-01-02"), e.StartDate.Format("2006-01-02"))
	}

	hist := w.history[e.ConsultantID]
	if len(hist) == 0 {
		if e.Event != domain.EventHire {
			return fmt.Errorf("%w: consultant %s first entry must be a Hire, got %s", domain.ErrBadHistoryWrite, e.ConsultantID, e.Event)
		}
	} else {
		if e.Event == domain.EventHire {
			return fmt.Errorf("%w: consultant %s already hired", domain.ErrBadHistoryWrite, e.ConsultantID)
		}
		prev := hist[len(hist)-1]
		if prev.Event.Terminal() {
			return fmt.Errorf("%w: consultant %s history ends with %s", domain.ErrBadHistoryWrite, e.ConsultantID, prev.Event)
		}
		if prev.EndDate == nil {
			return fmt.Errorf("%w: consultant %s still has an open entry", domain.ErrBadHistoryWrite, e.ConsultantID)
		}
		if want := prev.EndDate.AddDate(0, 0, 1); !e.StartDate.Equal(want) {
			return fmt.Errorf("%w: consultant %s entry starts %s, want %s (day after previous end)",
				domain.ErrBadHistoryWrite, e.ConsultantID, e.StartDate.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
	if e.Event.Terminal() && e.EndDate == nil {
		return fmt.Errorf("%w: consultant %s terminal %s entry must be closed", domain.ErrBadHistoryWrite, e.ConsultantID, e.Event)
	}

	w.history[e.ConsultantID] = append(hist, e)
	return nil
}

// CloseOpenEntry sets the end date of the consultant's open entry.
func (w *Workforce) CloseOpenEntry(consultantID string, end time.Time) error {
	hist := w.history[consultantID]
	if len(hist) == 0 {
		return fmt.Errorf("%w: consultant %s has no history", domain.ErrBadHistoryWrite, consultantID)
	}
	last := hist[len(hist)-1]
	if last.EndDate != nil {
		return fmt.Errorf("%w: consultant %s has no open entry", domain.ErrBadHistoryWrite, consultantID)
	}
	if end.Before(last.StartDate) {
		return fmt.Errorf("%w: consultant %s close date %s before entry start %s",
			domain.ErrBadHistoryWrite, consultantID, end.Format("2006-01-02"), last.StartDate.Format("2006-01-02"))
	}
	e := end
	last.EndDate = &e
	return nil
}

// OpenEntry returns the consultant's open entry, or nil.
func (w *Workforce) OpenEntry(consultantID string) *domain.TitleHistoryEntry {
	hist := w.history[consultantID]
	if len(hist) == 0 {
		return nil
	}
	last := hist[len(hist)-1]
	if last.EndDate == nil {
		return last
	}
	return nil
}

// OpenEntryOn returns the open-ended entry whose window contains date,
// or nil if the consultant is not employed that day.
func (w *Workforce) OpenEntryOn(consultantID string, date time.Time) *domain.TitleHistoryEntry {
	e := w.OpenEntry(consultantID)
	if e != nil && !date.Before(e.StartDate) {
		return e
	}
	return nil
}

// EntryOn returns the entry (open or closed) whose window contains
// date, or nil.
func (w *Workforce) EntryOn(consultantID string, date time.Time) *domain.TitleHistoryEntry {
	for _, e := range w.history[consultantID] {
		if e.Contains(date) {
			return e
		}
	}
	return nil
}

// EmployedOn reports whether the consultant has any title entry covering
// date whose owner has not yet departed by that date.
func (w *Workforce) EmployedOn(consultantID string, date time.Time) bool {
	return w.EntryOn(consultantID, date) != nil
}

// Departed reports whether the consultant's history ends with a
// terminal event.
func (w *Workforce) Departed(consultantID string) bool {
	hist := w.history[consultantID]
	return len(hist) > 0 && hist[len(hist)-1].Event.Terminal()
}

// DepartureDate returns the last employment day of a departed
// consultant, or nil while they are still employed.
func (w *Workforce) DepartureDate(consultantID string) *time.Time {
	hist := w.history[consultantID]
	if len(hist) == 0 {
		return nil
	}
	last := hist[len(hist)-1]
	if !last.Event.Terminal() {
		return nil
	}
	return last.EndDate
}

// ConsultantsEmployedOn lists, in insertion order, every consultant with
// an entry covering date. Consultants inside their final attrition or
// layoff window still count until the leave day itself.
func (w *Workforce) ConsultantsEmployedOn(date time.Time) []*domain.Consultant {
	var out []*domain.Consultant
	for _, id := range w.order {
		if w.EmployedOn(id, date) {
			out = append(out, w.byID[id])
		}
	}
	return out
}

// CurrentlyEmployed lists consultants with an open entry, in insertion
// order.
func (w *Workforce) CurrentlyEmployed() []*domain.Consultant {
	var out []*domain.Consultant
	for _, id := range w.order {
		if w.OpenEntry(id) != nil {
			out = append(out, w.byID[id])
		}
	}
	return out
}

// LatestTitleID returns the title from the entry covering date, or 0 if
// the consultant is not employed then.
func (w *Workforce) LatestTitleID(consultantID string, date time.Time) int {
	if e := w.EntryOn(consultantID, date); e != nil {
		return e.TitleID
	}
	return 0
}

// Consultant looks a consultant up by id.
func (w *Workforce) Consultant(id string) *domain.Consultant {
	return w.byID[id]
}

// Consultants returns the roster in insertion order.
func (w *Workforce) Consultants() []*domain.Consultant {
	return w.consultants
}

// History returns a consultant's entries in chronological order.
func (w *Workforce) History(consultantID string) []*domain.TitleHistoryEntry {
	return w.history[consultantID]
}

// AllHistory returns every entry grouped by consultant in roster order.
func (w *Workforce) AllHistory() []*domain.TitleHistoryEntry {
	var out []*domain.TitleHistoryEntry
	for _, id := range w.order {
		out = append(out, w.history[id]...)
	}
	return out
}

// Headcount counts consultants employed on date.
func (w *Workforce) Headcount(date time.Time) int {
	n := 0
	for _, id := range w.order {
		if w.EmployedOn(id, date) {
			n++
		}
	}
	return n
}
