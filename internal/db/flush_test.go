package db

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/namegen"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/seed"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

type flushFixture struct {
	ref     *seed.Reference
	wf      *store.Workforce
	pr      *store.Projects
	payroll []domain.PayrollRecord
}

// newFlushFixture builds the smallest dataset touching every table: one
// consultant with a promotion, one running project with a team, a
// deliverable, a rate card, a charge and an expense.
func newFlushFixture(t *testing.T) *flushFixture {
	t.Helper()
	rng := randsrc.New(1)
	ref, err := seed.Build(5, rng, namegen.New(rng))
	require.NoError(t, err)

	wf := store.NewWorkforce()
	require.NoError(t, wf.AddConsultant(&domain.Consultant{
		ID: "C0001", BusinessUnitID: 1, FirstName: "Ada", LastName: "Byron",
		Email: "abyron0001@example.com", Phone: "555-0101", HireYear: 2020,
		CurrentTitleID: 3,
	}))
	require.NoError(t, wf.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 2,
		StartDate: simclock.Date(2020, time.January, 1),
		Event:     domain.EventHire, Salary: 84000,
	}))
	require.NoError(t, wf.CloseOpenEntry("C0001", simclock.Date(2020, time.April, 30)))
	require.NoError(t, wf.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 3,
		StartDate: simclock.Date(2020, time.May, 1),
		Event:     domain.EventPromotion, Salary: 99000,
	}))

	pr := store.NewProjects(wf)
	start := simclock.Date(2020, time.June, 1) // a Monday
	budget := decimal.NewFromInt(250000)
	proj := &domain.Project{
		ID: "P1", ClientID: 1, UnitID: 1, Name: "Project_2020_0001",
		Kind: domain.KindTimeAndMaterial, Status: domain.ProjectInProgress,
		PlannedStart: start, PlannedEnd: start.AddDate(0, 3, 0),
		ActualStart: start, Budget: &budget, PlannedHours: 480, Progress: 10,
		CreatedAt: simclock.Date(2020, time.May, 20),
	}
	require.NoError(t, pr.AddProject(proj))
	require.NoError(t, pr.AddDeliverable(&domain.Deliverable{
		ID: "D1", ProjectID: "P1", Name: "Deliverable 1",
		PlannedStart: start, DueDate: proj.PlannedEnd,
		Status: domain.DeliverableInProgress, PlannedHours: 480, TargetHours: 500,
	}))
	require.NoError(t, pr.AddAssignment(&domain.TeamAssignment{
		ProjectID: "P1", ConsultantID: "C0001",
		Role: domain.RoleTeamMember, StartDate: start,
	}))
	require.NoError(t, pr.AddBillingRate(domain.BillingRate{
		ProjectID: "P1", TitleID: 3, Rate: decimal.NewFromFloat(181.25),
	}))
	require.NoError(t, pr.AddCharge(&domain.ConsultantDeliverable{
		ConsultantID: "C0001", DeliverableID: "D1",
		Date: start, Hours: 6.5,
	}, 8))
	require.NoError(t, pr.AddExpense(&domain.Expense{
		ProjectID: "P1", DeliverableID: "D1", Date: start,
		Amount: decimal.NewFromFloat(312.40), Description: "Travel for Deliverable 1",
		Category: "Travel", Billable: true,
	}, simclock.Date(2020, time.December, 31)))

	payroll := []domain.PayrollRecord{{
		ConsultantID:  "C0001",
		Amount:        decimal.NewFromFloat(7012.55),
		EffectiveDate: simclock.Date(2020, time.January, 31),
	}}
	return &flushFixture{ref: ref, wf: wf, pr: pr, payroll: payroll}
}

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestFlush_WritesEveryTable(t *testing.T) {
	database := openTestDB(t)
	f := newFlushFixture(t)
	require.NoError(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))

	want := map[string]int{
		"Title":                    6,
		"BusinessUnit":             4,
		"Location":                 40,
		"Client":                   5,
		"Consultant":               1,
		"Consultant_Title_History": 2,
		"Payroll":                  1,
		"Project":                  1,
		"ProjectTeam":              1,
		"Deliverable":              1,
		"ProjectBillingRate":       1,
		"Consultant_Deliverable":   1,
		"ProjectExpense":           1,
	}
	for table, n := range want {
		assert.Equal(t, n, countRows(t, database, table), "table %s", table)
	}
}

func TestFlush_ProjectRowRoundTrips(t *testing.T) {
	database := openTestDB(t)
	f := newFlushFixture(t)
	require.NoError(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))

	var (
		kind, status, plannedStart string
		actualEnd                  sql.NullString
		price                      sql.NullFloat64
		budget                     sql.NullFloat64
	)
	err := database.QueryRow(`SELECT Type, Status, PlannedStartDate, ActualEndDate, Price, EstimatedBudget
		FROM Project WHERE ProjectID = 'P1'`).
		Scan(&kind, &status, &plannedStart, &actualEnd, &price, &budget)
	require.NoError(t, err)

	assert.Equal(t, string(domain.KindTimeAndMaterial), kind)
	assert.Equal(t, string(domain.ProjectInProgress), status)
	assert.Equal(t, "2020-06-01", plannedStart)
	assert.False(t, actualEnd.Valid, "running project should have no actual end")
	assert.False(t, price.Valid, "time-and-material project should have no price")
	require.True(t, budget.Valid)
	assert.InDelta(t, 250000, budget.Float64, 1e-6)
}

func TestFlush_HistoryKeepsOpenEndDatesNull(t *testing.T) {
	database := openTestDB(t)
	f := newFlushFixture(t)
	require.NoError(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))

	rows, err := database.Query(`SELECT EventType, EndDate FROM Consultant_Title_History
		WHERE ConsultantID = 'C0001' ORDER BY StartDate`)
	require.NoError(t, err)
	defer rows.Close()

	type entry struct {
		event string
		end   sql.NullString
	}
	var entries []entry
	for rows.Next() {
		var e entry
		require.NoError(t, rows.Scan(&e.event, &e.end))
		entries = append(entries, e)
	}
	require.NoError(t, rows.Err())
	require.Len(t, entries, 2)

	assert.Equal(t, string(domain.EventHire), entries[0].event)
	require.True(t, entries[0].end.Valid)
	assert.Equal(t, "2020-04-30", entries[0].end.String)
	assert.Equal(t, string(domain.EventPromotion), entries[1].event)
	assert.False(t, entries[1].end.Valid)
}

func TestFlush_ChargeAndExpenseValues(t *testing.T) {
	database := openTestDB(t)
	f := newFlushFixture(t)
	require.NoError(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))

	var hours float64
	require.NoError(t, database.QueryRow(
		`SELECT Hours FROM Consultant_Deliverable WHERE ConsultantID = 'C0001'`).Scan(&hours))
	assert.InDelta(t, 6.5, hours, 1e-9)

	var amount float64
	var billable int
	require.NoError(t, database.QueryRow(
		`SELECT Amount, IsBillable FROM ProjectExpense WHERE ProjectID = 'P1'`).Scan(&amount, &billable))
	assert.InDelta(t, 312.40, amount, 1e-6)
	assert.Equal(t, 1, billable)
}

func TestFlush_SecondFlushRollsBack(t *testing.T) {
	database := openTestDB(t)
	f := newFlushFixture(t)
	require.NoError(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))

	// Re-flushing hits primary key conflicts; the transaction must roll
	// back without duplicating anything.
	require.Error(t, Flush(database, f.ref, f.wf, f.pr, f.payroll))
	assert.Equal(t, 6, countRows(t, database, "Title"))
	assert.Equal(t, 1, countRows(t, database, "Project"))
}
