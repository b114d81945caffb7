package capacity

import (
	"time"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/store"
)

// Oracle answers per-title capacity questions against the configured
// tables and the charges already recorded today. It owns no state of
// its own.
type Oracle struct {
	cfg       config.Config
	workforce *store.Workforce
	projects  *store.Projects
}

// NewOracle wires an Oracle over the two stores.
func NewOracle(cfg config.Config, wf *store.Workforce, pr *store.Projects) *Oracle {
	return &Oracle{cfg: cfg, workforce: wf, projects: pr}
}

// DailyCap returns the maximum chargeable hours per day for a title.
func (o *Oracle) DailyCap(titleID int) float64 {
	return o.cfg.MaxDailyHours[titleID]
}

// MinProjectHours returns the minimum meaningful charge per project per
// day for a title.
func (o *Oracle) MinProjectHours(titleID int) float64 {
	return o.cfg.MinProjectHours[titleID]
}

// MaxProjects returns the concurrent-assignment ceiling for a title.
func (o *Oracle) MaxProjects(titleID int) int {
	return o.cfg.MaxProjects[titleID]
}

// RemainingHours returns how many hours the consultant can still charge
// on date, given the title held that day and the charges already booked.
func (o *Oracle) RemainingHours(consultantID string, date time.Time) float64 {
	title := o.workforce.LatestTitleID(consultantID, date)
	if title == 0 {
		return 0
	}
	rem := o.DailyCap(title) - o.projects.DailyHours(consultantID, date)
	if rem < 0 {
		return 0
	}
	return rem
}

// CanTakeProject reports whether the consultant has an assignment slot
// free. Slots are counted against open commitments, including
// assignments that have not reached their start date yet.
func (o *Oracle) CanTakeProject(c *domain.Consultant, date time.Time) bool {
	title := o.workforce.LatestTitleID(c.ID, date)
	if title == 0 {
		return false
	}
	return c.ActiveProjects < o.MaxProjects(title)
}

// CanManage reports whether the consultant's title on date qualifies for
// the project-manager role.
func (o *Oracle) CanManage(consultantID string, date time.Time) bool {
	return o.workforce.LatestTitleID(consultantID, date) >= domain.MinPMTitle
}
