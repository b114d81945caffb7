package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/simclock"
)

func newWorkforceWithHire(t *testing.T, id string, start time.Time, title int) *Workforce {
	t.Helper()
	w := NewWorkforce()
	require.NoError(t, w.AddConsultant(&domain.Consultant{ID: id, FirstName: "A", LastName: "B", BusinessUnitID: 1, HireYear: start.Year()}))
	require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: id,
		TitleID:      title,
		StartDate:    start,
		Event:        domain.EventHire,
		Salary:       80000,
	}))
	return w
}

func TestAddConsultant_RejectsDuplicates(t *testing.T) {
	w := NewWorkforce()
	require.NoError(t, w.AddConsultant(&domain.Consultant{ID: "C0001"}))
	assert.Error(t, w.AddConsultant(&domain.Consultant{ID: "C0001"}))
	assert.Error(t, w.AddConsultant(&domain.Consultant{}))
}

func TestAddTitleEntry_FirstMustBeHire(t *testing.T) {
	w := NewWorkforce()
	require.NoError(t, w.AddConsultant(&domain.Consultant{ID: "C0001"}))

	err := w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001",
		TitleID:      1,
		StartDate:    simclock.Date(2015, time.January, 1),
		Event:        domain.EventPromotion,
	})
	require.ErrorIs(t, err, domain.ErrBadHistoryWrite)
}

func TestAddTitleEntry_EnforcesGaplessSequence(t *testing.T) {
	hire := simclock.Date(2015, time.January, 1)
	w := newWorkforceWithHire(t, "C0001", hire, 1)

	// Cannot append while an entry is still open.
	err := w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 2,
		StartDate: simclock.Date(2016, time.January, 1),
		Event:     domain.EventPromotion, Salary: 90000,
	})
	require.ErrorIs(t, err, domain.ErrBadHistoryWrite)

	require.NoError(t, w.CloseOpenEntry("C0001", simclock.Date(2015, time.December, 31)))

	// A gap of one extra day is rejected.
	err = w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 2,
		StartDate: simclock.Date(2016, time.January, 2),
		Event:     domain.EventPromotion, Salary: 90000,
	})
	require.ErrorIs(t, err, domain.ErrBadHistoryWrite)

	// The day after the previous end is accepted.
	require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 2,
		StartDate: simclock.Date(2016, time.January, 1),
		Event:     domain.EventPromotion, Salary: 90000,
	}))
}

func TestAddTitleEntry_TerminalMustBeClosedAndFinal(t *testing.T) {
	hire := simclock.Date(2015, time.January, 1)
	w := newWorkforceWithHire(t, "C0001", hire, 1)
	require.NoError(t, w.CloseOpenEntry("C0001", simclock.Date(2016, time.March, 14)))

	// An open-ended terminal entry is rejected.
	err := w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 1,
		StartDate: simclock.Date(2016, time.March, 15),
		Event:     domain.EventAttrition, Salary: 80000,
	})
	require.ErrorIs(t, err, domain.ErrBadHistoryWrite)

	leave := simclock.Date(2016, time.June, 1)
	require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 1,
		StartDate: simclock.Date(2016, time.March, 15),
		EndDate:   &leave,
		Event:     domain.EventAttrition, Salary: 80000,
	}))

	// Nothing may follow a terminal event.
	err = w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 1,
		StartDate: simclock.Date(2016, time.June, 2),
		Event:     domain.EventContinuation, Salary: 80000,
	})
	require.ErrorIs(t, err, domain.ErrBadHistoryWrite)
	assert.True(t, w.Departed("C0001"))
}

func TestEmployedOn_IncludesTerminalWindow(t *testing.T) {
	hire := simclock.Date(2015, time.January, 1)
	w := newWorkforceWithHire(t, "C0001", hire, 1)
	require.NoError(t, w.CloseOpenEntry("C0001", simclock.Date(2016, time.March, 14)))

	leave := simclock.Date(2016, time.June, 1)
	require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 1,
		StartDate: simclock.Date(2016, time.March, 15),
		EndDate:   &leave,
		Event:     domain.EventLayoff, Salary: 80000,
	}))

	assert.True(t, w.EmployedOn("C0001", simclock.Date(2016, time.May, 1)))
	assert.True(t, w.EmployedOn("C0001", leave))
	assert.False(t, w.EmployedOn("C0001", simclock.Date(2016, time.June, 2)))
	assert.False(t, w.EmployedOn("C0001", simclock.Date(2014, time.December, 31)))

	assert.Len(t, w.ConsultantsEmployedOn(simclock.Date(2016, time.May, 1)), 1)
	assert.Empty(t, w.ConsultantsEmployedOn(simclock.Date(2017, time.January, 1)))
}

func TestDepartureDate(t *testing.T) {
	hire := simclock.Date(2015, time.January, 1)
	w := newWorkforceWithHire(t, "C0001", hire, 1)

	assert.Nil(t, w.DepartureDate("C0001"))
	assert.Nil(t, w.DepartureDate("C9999"))

	require.NoError(t, w.CloseOpenEntry("C0001", simclock.Date(2016, time.March, 14)))
	leave := simclock.Date(2016, time.June, 1)
	require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: "C0001", TitleID: 1,
		StartDate: simclock.Date(2016, time.March, 15),
		EndDate:   &leave,
		Event:     domain.EventAttrition, Salary: 80000,
	}))

	got := w.DepartureDate("C0001")
	require.NotNil(t, got)
	assert.Equal(t, leave, *got)
}

func TestEntryLookups(t *testing.T) {
	hire := simclock.Date(2015, time.March, 1)
	w := newWorkforceWithHire(t, "C0001", hire, 3)

	assert.Equal(t, 3, w.LatestTitleID("C0001", simclock.Date(2015, time.July, 1)))
	assert.Equal(t, 0, w.LatestTitleID("C0001", simclock.Date(2015, time.January, 1)))

	open := w.OpenEntry("C0001")
	require.NotNil(t, open)
	assert.Equal(t, domain.EventHire, open.Event)

	assert.Nil(t, w.OpenEntryOn("C0001", simclock.Date(2015, time.February, 1)))
	assert.NotNil(t, w.OpenEntryOn("C0001", simclock.Date(2018, time.February, 1)))
}

func TestHeadcount(t *testing.T) {
	w := NewWorkforce()
	for _, id := range []string{"C0001", "C0002"} {
		require.NoError(t, w.AddConsultant(&domain.Consultant{ID: id}))
		require.NoError(t, w.AddTitleEntry(&domain.TitleHistoryEntry{
			ConsultantID: id, TitleID: 1,
			StartDate: simclock.Date(2015, time.January, 1),
			Event:     domain.EventHire, Salary: 55000,
		}))
	}
	assert.Equal(t, 2, w.Headcount(simclock.Date(2015, time.June, 1)))
	assert.Equal(t, 0, w.Headcount(simclock.Date(2014, time.June, 1)))
	assert.Len(t, w.AllHistory(), 2)
}
