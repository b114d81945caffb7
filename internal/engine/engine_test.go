package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/db"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/testutil"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.StartYear = 2015
	cfg.EndYear = 2015
	cfg.InitialConsultants = 40
	cfg.ClientCount = 20
	cfg.Seed = 3
	return cfg
}

func runSmall(t *testing.T) *Result {
	t.Helper()
	cfg := smallConfig()
	require.NoError(t, cfg.Validate())
	res, err := New(cfg, zerolog.Nop()).Run()
	require.NoError(t, err)
	return res
}

func TestRun_PopulatesResult(t *testing.T) {
	res := runSmall(t)

	assert.Len(t, res.Reference.Clients, 20)
	assert.NotEmpty(t, res.Workforce.Consultants())
	assert.NotEmpty(t, res.Payroll)
	require.Len(t, res.Years, 1)

	ys := res.Years[0]
	assert.Equal(t, 2015, ys.Year)
	assert.Positive(t, ys.Headcount)
	assert.Positive(t, ys.ProjectsCreated)

	total := 0
	for _, proj := range res.Projects.All() {
		total++
		assert.Equal(t, 2015, proj.CreatedAt.Year())
	}
	assert.Equal(t, ys.ProjectsCreated, total)
}

func TestRun_ProjectStatesAreConsistent(t *testing.T) {
	res := runSmall(t)

	for _, proj := range res.Projects.All() {
		switch proj.Status {
		case domain.ProjectCompleted:
			require.NotNil(t, proj.ActualEnd, "completed project %s has no end", proj.ID)
			assert.Equal(t, 100, proj.Progress)
			assert.Positive(t, proj.ActualHours)
		case domain.ProjectCancelled:
			assert.Nil(t, proj.ActualEnd, "cancelled project %s has an end date", proj.ID)
			assert.Zero(t, proj.ActualHours)
		}
		for _, d := range res.Projects.Deliverables(proj.ID) {
			if d.Status == domain.DeliverableCompleted {
				require.NotNil(t, d.SubmissionDate)
			}
		}
	}
}

func TestRun_ChargesRespectCapsAndWorkingDays(t *testing.T) {
	res := runSmall(t)
	cfg := smallConfig()

	require.NotEmpty(t, res.Projects.Charges())
	for _, ch := range res.Projects.Charges() {
		assert.True(t, simclock.IsWorkingDay(ch.Date), "charge on %s", ch.Date.Format(simclock.DateLayout))
		assert.Positive(t, ch.Hours)
		title := res.Workforce.LatestTitleID(ch.ConsultantID, ch.Date)
		require.Positive(t, title)
		assert.LessOrEqual(t, ch.Hours, cfg.MaxDailyHours[title]+1e-9)
	}
}

func TestRun_AssignmentWindowsStayWithinEmployment(t *testing.T) {
	cfg := smallConfig()
	cfg.EndYear = 2016
	cfg.InitialConsultants = 60
	// A contraction year forces layoffs while projects are running.
	cfg.GrowthRates = map[int]float64{2015: 0.25, 2016: -0.30}
	require.NoError(t, cfg.Validate())
	res, err := New(cfg, zerolog.Nop()).Run()
	require.NoError(t, err)

	simEnd := simclock.Date(2016, time.December, 31)
	departed := 0
	for _, c := range res.Workforce.Consultants() {
		if !res.Workforce.Departed(c.ID) {
			continue
		}
		departed++
		if !res.Workforce.EmployedOn(c.ID, simEnd) {
			assert.Zero(t, c.ActiveProjects, "departed %s still counted on a project", c.ID)
		}
	}
	require.Positive(t, departed)
	for _, proj := range res.Projects.All() {
		for _, a := range res.Projects.Team(proj.ID) {
			assert.True(t, res.Workforce.EmployedOn(a.ConsultantID, a.StartDate),
				"%s joined %s on %s while not employed", a.ConsultantID, proj.ID, a.StartDate.Format(simclock.DateLayout))
			if a.EndDate == nil {
				assert.True(t, res.Workforce.EmployedOn(a.ConsultantID, simEnd),
					"%s holds an open assignment on %s past departure", a.ConsultantID, proj.ID)
				continue
			}
			assert.False(t, a.EndDate.Before(a.StartDate), "%s assignment on %s ends before it starts", a.ConsultantID, proj.ID)
			assert.True(t, res.Workforce.EmployedOn(a.ConsultantID, *a.EndDate),
				"%s assignment on %s ends %s after departure", a.ConsultantID, proj.ID, a.EndDate.Format(simclock.DateLayout))
		}
	}
}

func TestRun_PayrollCoversEveryConsultant(t *testing.T) {
	res := runSmall(t)

	paid := make(map[string]bool)
	for _, rec := range res.Payroll {
		paid[rec.ConsultantID] = true
		assert.True(t, rec.Amount.IsPositive())
	}
	for _, c := range res.Workforce.Consultants() {
		assert.True(t, paid[c.ID], "consultant %s never paid", c.ID)
	}
}

func TestRun_Deterministic(t *testing.T) {
	a := runSmall(t)
	b := runSmall(t)

	require.Equal(t, a.Years, b.Years)
	require.Equal(t, len(a.Projects.All()), len(b.Projects.All()))
	for i, pa := range a.Projects.All() {
		pb := b.Projects.All()[i]
		assert.Equal(t, pa.ID, pb.ID)
		assert.Equal(t, pa.Status, pb.Status)
		assert.Equal(t, pa.ActualHours, pb.ActualHours)
	}
	require.Equal(t, len(a.Payroll), len(b.Payroll))
}

func TestRun_FlushesToDatabase(t *testing.T) {
	res := runSmall(t)
	database := testutil.NewTestDB(t)
	require.NoError(t, db.Flush(database, res.Reference, res.Workforce, res.Projects, res.Payroll))

	var consultants, projects int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM Consultant`).Scan(&consultants))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM Project`).Scan(&projects))
	assert.Equal(t, len(res.Workforce.Consultants()), consultants)
	assert.Equal(t, len(res.Projects.All()), projects)
}

func TestRun_RejectsInvertedHorizon(t *testing.T) {
	cfg := smallConfig()
	cfg.StartYear = 2016
	cfg.EndYear = 2015
	_, err := New(cfg, zerolog.Nop()).Run()
	require.Error(t, err)
}
