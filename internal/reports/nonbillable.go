package reports

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// DefaultWorkingHoursPerMonth is the bench-time baseline a consultant
// is expected to fill.
const DefaultWorkingHoursPerMonth = 160.0

// NonBillableRow is one consultant-month of bench time.
type NonBillableRow struct {
	ConsultantID     string
	FirstName        string
	LastName         string
	YearMonth        string
	ProjectHours     float64
	NonBillableHours float64
}

// NonBillableTime derives bench time for every consultant-month on
// payroll: the gap between the monthly baseline and the hours actually
// charged to deliverables, floored at zero. A non-positive baseline
// falls back to the default.
func NonBillableTime(wf *store.Workforce, pr *store.Projects, payroll []domain.PayrollRecord, baseline float64) []NonBillableRow {
	if baseline <= 0 {
		baseline = DefaultWorkingHoursPerMonth
	}
	type key struct {
		consultant string
		month      string
	}
	charged := make(map[key]float64)
	for _, ch := range pr.Charges() {
		charged[key{ch.ConsultantID, simclock.MonthOf(ch.Date).Key()}] += ch.Hours
	}

	rows := make([]NonBillableRow, 0, len(payroll))
	for _, rec := range payroll {
		c := wf.Consultant(rec.ConsultantID)
		if c == nil {
			continue
		}
		month := simclock.MonthOf(rec.EffectiveDate).Key()
		hours := charged[key{rec.ConsultantID, month}]
		bench := 0.0
		if hours < baseline {
			bench = baseline - hours
		}
		rows = append(rows, NonBillableRow{
			ConsultantID:     rec.ConsultantID,
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			YearMonth:        month,
			ProjectHours:     hours,
			NonBillableHours: bench,
		})
	}
	return rows
}

// WriteNonBillableTimeCSV writes the bench-time rows as CSV.
func WriteNonBillableTimeCSV(w io.Writer, rows []NonBillableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ConsultantID", "FirstName", "LastName", "YearMonth", "ProjectHours", "NonBillableHours"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.ConsultantID,
			r.FirstName,
			r.LastName,
			r.YearMonth,
			fmt.Sprintf("%.1f", r.ProjectHours),
			fmt.Sprintf("%.1f", r.NonBillableHours),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
