package workforce

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/namegen"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

func runSimulation(t *testing.T, cfg config.Config, seed int64) (*store.Workforce, []YearStats) {
	t.Helper()
	require.NoError(t, cfg.Validate())
	rng := randsrc.New(seed)
	st := store.NewWorkforce()
	sim := NewSimulator(cfg, rng, namegen.New(rng), st, zerolog.Nop())
	stats, err := sim.Run()
	require.NoError(t, err)
	return st, stats
}

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.StartYear = 2015
	cfg.EndYear = 2017
	cfg.InitialConsultants = 60
	return cfg
}

func TestRun_SeedsInitialRosterOnDayOne(t *testing.T) {
	cfg := smallConfig()
	st, stats := runSimulation(t, cfg, 42)
	require.Len(t, stats, 3)

	dayOne := simclock.Date(2015, time.January, 1)
	assert.GreaterOrEqual(t, st.Headcount(dayOne), cfg.InitialConsultants)

	// Ids are minted in order, so the seed roster comes first.
	require.GreaterOrEqual(t, len(st.Consultants()), cfg.InitialConsultants)
	for _, c := range st.Consultants()[:cfg.InitialConsultants] {
		hist := st.History(c.ID)
		require.NotEmpty(t, hist)
		assert.Equal(t, domain.EventHire, hist[0].Event)
		assert.Equal(t, dayOne, hist[0].StartDate)
		assert.Equal(t, 1, c.BusinessUnitID)
	}
}

func TestRun_ConsultantIdentity(t *testing.T) {
	st, _ := runSimulation(t, smallConfig(), 42)

	idPattern := regexp.MustCompile(`^C\d{4}$`)
	for _, c := range st.Consultants() {
		assert.Regexp(t, idPattern, c.ID)
		assert.NotEmpty(t, c.FirstName)
		assert.NotEmpty(t, c.LastName)
		assert.True(t, strings.HasSuffix(c.Email, "@"+EmailDomain), "email %q", c.Email)
		assert.Contains(t, c.Email, c.ID[len(c.ID)-4:], "email should carry id digits")
	}
}

func TestRun_HistoriesAreWellFormed(t *testing.T) {
	st, _ := runSimulation(t, smallConfig(), 42)

	for _, c := range st.Consultants() {
		hist := st.History(c.ID)
		require.NotEmpty(t, hist, "consultant %s has no history", c.ID)
		assert.Equal(t, domain.EventHire, hist[0].Event)

		for i, e := range hist {
			assert.Positive(t, e.Salary)
			if i > 0 {
				prev := hist[i-1]
				require.NotNil(t, prev.EndDate)
				assert.Equal(t, simclock.DayAfter(*prev.EndDate), e.StartDate,
					"consultant %s entry %d not gapless", c.ID, i)
				assert.False(t, prev.Event.Terminal(), "entry after terminal for %s", c.ID)
			}
			if e.Event.Terminal() {
				assert.NotNil(t, e.EndDate)
				assert.Equal(t, i, len(hist)-1, "terminal entry not last for %s", c.ID)
			}
		}
	}
}

func TestRun_PromotionsRaiseTitleAndSalary(t *testing.T) {
	st, stats := runSimulation(t, smallConfig(), 42)

	promotions := 0
	for _, ys := range stats {
		promotions += ys.Promotions
	}
	assert.Positive(t, promotions, "a 60-head three-year run should promote someone")

	for _, c := range st.Consultants() {
		hist := st.History(c.ID)
		for i, e := range hist {
			if e.Event != domain.EventPromotion {
				continue
			}
			prev := hist[i-1]
			assert.Equal(t, prev.TitleID+1, e.TitleID, "promotion for %s skips a rank", c.ID)
			assert.Greater(t, e.Salary, prev.Salary, "promotion for %s without raise", c.ID)
		}
	}
}

func TestRun_ContinuationsCloseAtYearEnd(t *testing.T) {
	st, _ := runSimulation(t, smallConfig(), 42)

	for _, c := range st.Consultants() {
		for _, e := range st.History(c.ID) {
			if e.Event != domain.EventContinuation {
				continue
			}
			assert.Equal(t, time.January, e.StartDate.Month())
			assert.Equal(t, 1, e.StartDate.Day())
		}
	}
}

func TestRun_HeadcountTracksGrowth(t *testing.T) {
	cfg := smallConfig()
	st, stats := runSimulation(t, cfg, 42)

	// Configured growth is 20-30% per year with ±5% noise; the roster
	// must clearly grow over three years.
	final := stats[len(stats)-1].Headcount
	assert.Greater(t, final, cfg.InitialConsultants)
	assert.Equal(t, final, st.Headcount(simclock.Date(2017, time.December, 31)))

	for _, ys := range stats {
		assert.Equal(t, ys.Headcount, st.Headcount(simclock.Date(ys.Year, time.December, 31)))
	}
}

func TestRun_NegativeGrowthTriggersLayoffs(t *testing.T) {
	cfg := smallConfig()
	cfg.StartYear = 2015
	cfg.EndYear = 2015
	cfg.GrowthRates = map[int]float64{2015: -0.30}
	cfg.InitialConsultants = 100

	st, stats := runSimulation(t, cfg, 42)
	require.Len(t, stats, 1)
	assert.Positive(t, stats[0].Layoffs)

	laidOff := 0
	for _, c := range st.Consultants() {
		hist := st.History(c.ID)
		last := hist[len(hist)-1]
		if last.Event == domain.EventLayoff {
			laidOff++
			require.NotNil(t, last.EndDate)
			assert.Equal(t, 2015, last.EndDate.Year())
		}
	}
	assert.Equal(t, stats[0].Layoffs, laidOff)
	// The per-run cap bounds the cut.
	assert.LessOrEqual(t, laidOff, int(float64(cfg.InitialConsultants)*cfg.MaxLayoffPercentage)+1)
}

func TestRun_ExpansionActivatesUnits(t *testing.T) {
	cfg := smallConfig()
	cfg.EndYear = 2019
	cfg.InitialConsultants = 150
	// Initial seeding rounds the title mix up past 150, so the first
	// threshold sits clear of the seeded roster.
	cfg.ExpansionThresholds = map[int]int{260: 2, 400: 3}

	rng := randsrc.New(42)
	st := store.NewWorkforce()
	sim := NewSimulator(cfg, rng, namegen.New(rng), st, zerolog.Nop())
	stats, err := sim.Run()
	require.NoError(t, err)

	assert.Equal(t, []int{1}, stats[0].ActiveUnits)
	last := stats[len(stats)-1]
	assert.Greater(t, len(last.ActiveUnits), 1, "growth past the thresholds should open new units")

	// Unit activation is monotone year over year.
	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, len(stats[i].ActiveUnits), len(stats[i-1].ActiveUnits))
	}
	assert.Equal(t, last.ActiveUnits, sim.ActiveUnits(cfg.EndYear))
}

func TestRun_Deterministic(t *testing.T) {
	cfg := smallConfig()
	a, _ := runSimulation(t, cfg, 11)
	b, _ := runSimulation(t, cfg, 11)

	require.Equal(t, len(a.Consultants()), len(b.Consultants()))
	for i, ca := range a.Consultants() {
		cb := b.Consultants()[i]
		assert.Equal(t, ca.ID, cb.ID)
		assert.Equal(t, ca.FirstName, cb.FirstName)
		require.Equal(t, len(a.History(ca.ID)), len(b.History(cb.ID)))
		for j, ea := range a.History(ca.ID) {
			eb := b.History(cb.ID)[j]
			assert.Equal(t, fmt.Sprint(ea), fmt.Sprint(eb))
		}
	}
}
