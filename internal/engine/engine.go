package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/synthline/firmforge/internal/allocator"
	"github.com/synthline/firmforge/internal/capacity"
	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/namegen"
	"github.com/synthline/firmforge/internal/payroll"
	"github.com/synthline/firmforge/internal/projectgen"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/seed"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
	"github.com/synthline/firmforge/internal/workforce"
)

// YearSummary is the per-year counter block of the run summary.
type YearSummary struct {
	Year            int
	Headcount       int
	Hires           int
	Promotions      int
	Attrition       int
	Layoffs         int
	ProjectsCreated int
}

// Result is everything a finished run produced: the reference data, the
// two populated stores, the derived payroll and the per-year summary.
type Result struct {
	Reference *seed.Reference
	Workforce *store.Workforce
	Projects  *store.Projects
	Payroll   []domain.PayrollRecord
	Years     []YearSummary
}

// Engine drives a full simulation: reference seeding, the yearly
// workforce pass, then the monthly and daily project loops, then
// payroll derivation. Single-threaded; deterministic given the seed and
// configuration.
type Engine struct {
	cfg config.Config
	log zerolog.Logger
}

// New builds an Engine for a validated configuration.
func New(cfg config.Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Run executes the whole horizon and returns the populated result.
func (e *Engine) Run() (*Result, error) {
	cal, err := simclock.New(e.cfg.StartYear, e.cfg.EndYear)
	if err != nil {
		return nil, fmt.Errorf("building calendar: %w", err)
	}
	rng := randsrc.New(e.cfg.Seed)
	names := namegen.New(rng)

	ref, err := seed.Build(e.cfg.ClientCount, rng, names)
	if err != nil {
		return nil, fmt.Errorf("seeding reference data: %w", err)
	}

	wfStore := store.NewWorkforce()
	wfSim := workforce.NewSimulator(e.cfg, rng, names, wfStore, e.log)
	yearStats, err := wfSim.Run()
	if err != nil {
		return nil, fmt.Errorf("workforce simulation: %w", err)
	}

	prStore := store.NewProjects(wfStore)
	oracle := capacity.NewOracle(e.cfg, wfStore, prStore)
	clientIDs := make([]int, len(ref.Clients))
	for i, c := range ref.Clients {
		clientIDs[i] = c.ID
	}
	creator := projectgen.NewCreator(e.cfg, rng, cal, wfStore, prStore, oracle, wfSim.ActiveUnits, clientIDs, e.log)
	alloc := allocator.New(e.cfg, rng, cal, wfStore, prStore, oracle, creator, e.log)

	summaries := make([]YearSummary, 0, len(cal.Years()))
	for i, year := range cal.Years() {
		creator.PlanYear(year)
		projectsCreated := 0
		for _, m := range cal.Months(year) {
			created, err := creator.RunMonth(m)
			if err != nil {
				return nil, fmt.Errorf("project creation %s: %w", m.Key(), err)
			}
			projectsCreated += created

			for _, day := range cal.WorkingDaysIn(m) {
				if err := alloc.RunDay(day); err != nil {
					return nil, fmt.Errorf("allocating %s: %w", day.Format(simclock.DateLayout), err)
				}
			}
			if err := alloc.EndOfMonth(m); err != nil {
				return nil, fmt.Errorf("closing month %s: %w", m.Key(), err)
			}
		}
		alloc.EndOfYear(year)

		ys := YearSummary{
			Year:            year,
			ProjectsCreated: projectsCreated,
			Headcount:       yearStats[i].Headcount,
			Hires:           yearStats[i].Hires,
			Promotions:      yearStats[i].Promotions,
			Attrition:       yearStats[i].Attrition,
			Layoffs:         yearStats[i].Layoffs,
		}
		summaries = append(summaries, ys)
		e.log.Info().
			Int("year", year).
			Int("projects", projectsCreated).
			Int("headcount", ys.Headcount).
			Msg("simulated year")
	}

	records := payroll.Derive(wfStore, cal, rng)

	return &Result{
		Reference: ref,
		Workforce: wfStore,
		Projects:  prStore,
		Payroll:   records,
		Years:     summaries,
	}, nil
}
