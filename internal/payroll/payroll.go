package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// Derive produces the monthly payroll from the finished title history:
// exactly one record per consultant per calendar month of employment,
// attributed to the entry open on the month's last employed day, with a
// small per-month variance on the salary. Records come back globally
// ordered by effective date.
func Derive(wf *store.Workforce, cal *simclock.Calendar, rng *randsrc.Source) []domain.PayrollRecord {
	var records []domain.PayrollRecord

	for _, c := range wf.Consultants() {
		hist := wf.History(c.ID)
		if len(hist) == 0 {
			continue
		}
		first := hist[0].StartDate
		last := cal.End()
		if end := hist[len(hist)-1].EndDate; end != nil && end.Before(last) {
			last = *end
		}
		if last.Before(first) {
			continue
		}

		for _, m := range simclock.MonthsBetween(first, last) {
			day := simclock.MinDate(m.End(), last)
			entry := wf.EntryOn(c.ID, day)
			if entry == nil {
				continue
			}
			monthly := decimal.NewFromInt(int64(entry.Salary)).Div(decimal.NewFromInt(12))
			variance := decimal.NewFromFloat(1 + rng.Uniform(-0.05, 0.05))
			records = append(records, domain.PayrollRecord{
				ConsultantID:  c.ID,
				Amount:        monthly.Mul(variance).Round(2),
				EffectiveDate: day,
			})
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EffectiveDate.Before(records[j].EffectiveDate)
	})
	return records
}
