package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

func newOracleFixture(t *testing.T, title int) (*Oracle, *store.Workforce, *store.Projects) {
	t.Helper()
	cfg := config.Default()
	wf := store.NewWorkforce()
	require.NoError(t, wf.AddConsultant(&domain.Consultant{ID: "C0001"}))
	require.NoError(t, wf.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: title,
		StartDate: simclock.Date(2020, time.January, 1),
		Event:     domain.EventHire, Salary: 70000,
	}))
	pr := store.NewProjects(wf)
	return NewOracle(cfg, wf, pr), wf, pr
}

func TestOracle_ConfigLookups(t *testing.T) {
	o, _, _ := newOracleFixture(t, 2)
	cfg := config.Default()

	for title := 1; title <= domain.TitleCount; title++ {
		assert.Equal(t, cfg.MaxDailyHours[title], o.DailyCap(title))
		assert.Equal(t, cfg.MinProjectHours[title], o.MinProjectHours(title))
		assert.Equal(t, cfg.MaxProjects[title], o.MaxProjects(title))
	}
}

func TestRemainingHours(t *testing.T) {
	o, _, pr := newOracleFixture(t, 2)
	day := simclock.Date(2020, time.June, 1)

	assert.Equal(t, o.DailyCap(2), o.RemainingHours("C0001", day))

	// Book a project and charge some hours.
	proj := &domain.Project{
		ID: "P1", ClientID: 1, UnitID: 1, Name: "p",
		Kind: domain.KindFixed, Status: domain.ProjectInProgress,
		PlannedStart: day, PlannedEnd: day.AddDate(0, 2, 0), ActualStart: day,
	}
	require.NoError(t, pr.AddProject(proj))
	require.NoError(t, pr.AddDeliverable(&domain.Deliverable{ID: "D1", ProjectID: "P1", PlannedStart: day, DueDate: proj.PlannedEnd, TargetHours: 50}))
	require.NoError(t, pr.AddAssignment(&domain.TeamAssignment{ProjectID: "P1", ConsultantID: "C0001", Role: domain.RoleTeamMember, StartDate: day}))
	require.NoError(t, pr.AddCharge(&domain.ConsultantDeliverable{ConsultantID: "C0001", DeliverableID: "D1", Date: day, Hours: 6}, o.DailyCap(2)))

	assert.InDelta(t, o.DailyCap(2)-6, o.RemainingHours("C0001", day), 1e-9)
	// Other days are unaffected.
	assert.Equal(t, o.DailyCap(2), o.RemainingHours("C0001", day.AddDate(0, 0, 1)))
	// Before hire there is no capacity.
	assert.Equal(t, 0.0, o.RemainingHours("C0001", simclock.Date(2019, time.June, 1)))
}

func TestCanTakeProject_HonorsTitleCeiling(t *testing.T) {
	// Title 1 consultants carry at most one concurrent project.
	o, wf, pr := newOracleFixture(t, 1)
	day := simclock.Date(2020, time.June, 1)
	c := wf.Consultant("C0001")

	assert.True(t, o.CanTakeProject(c, day))

	proj := &domain.Project{
		ID: "P1", ClientID: 1, UnitID: 1, Name: "p",
		Kind: domain.KindFixed, Status: domain.ProjectInProgress,
		PlannedStart: day, PlannedEnd: day.AddDate(0, 2, 0), ActualStart: day,
	}
	require.NoError(t, pr.AddProject(proj))
	require.NoError(t, pr.AddAssignment(&domain.TeamAssignment{ProjectID: "P1", ConsultantID: "C0001", Role: domain.RoleTeamMember, StartDate: day}))

	assert.False(t, o.CanTakeProject(c, day))
	// Not employed yet means no slot either.
	assert.False(t, o.CanTakeProject(c, simclock.Date(2019, time.June, 1)))
}

func TestCanManage(t *testing.T) {
	o, _, _ := newOracleFixture(t, domain.MinPMTitle)
	day := simclock.Date(2020, time.June, 1)
	assert.True(t, o.CanManage("C0001", day))

	low, _, _ := newOracleFixture(t, domain.MinPMTitle-1)
	assert.False(t, low.CanManage("C0001", day))
}
