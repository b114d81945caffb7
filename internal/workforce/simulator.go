package workforce

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/namegen"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// EmailDomain is the firm's mail domain for generated addresses.
const EmailDomain = "synthline-consulting.com"

// YearStats summarizes one simulated workforce year.
type YearStats struct {
	Year        int
	Headcount   int
	Hires       int
	Promotions  int
	Attrition   int
	Layoffs     int
	GrowthRate  float64
	ActiveUnits []int
}

// Simulator runs the yearly workforce pass: attrition, layoffs,
// promotions, hiring, continuation raises and geographic expansion, in
// that order, writing everything into the title-history store.
type Simulator struct {
	cfg   config.Config
	rng   *randsrc.Source
	names *namegen.Generator
	store *store.Workforce
	log   zerolog.Logger

	nextID      int
	activeUnits []int
	unitsByYear map[int][]int
	realized    map[int]float64 // growth rate actually drawn per year
}

// NewSimulator wires a workforce simulator over an empty store.
func NewSimulator(cfg config.Config, rng *randsrc.Source, names *namegen.Generator, st *store.Workforce, log zerolog.Logger) *Simulator {
	return &Simulator{
		cfg:         cfg,
		rng:         rng,
		names:       names,
		store:       st,
		log:         log.With().Str("component", "workforce").Logger(),
		nextID:      1,
		activeUnits: []int{1},
		unitsByYear: make(map[int][]int),
		realized:    make(map[int]float64),
	}
}

// Run seeds the initial roster and simulates every year of the horizon.
func (s *Simulator) Run() ([]YearStats, error) {
	if err := s.seedInitial(); err != nil {
		return nil, fmt.Errorf("seeding initial roster: %w", err)
	}
	var stats []YearStats
	for year := s.cfg.StartYear; year <= s.cfg.EndYear; year++ {
		ys, err := s.runYear(year)
		if err != nil {
			return nil, fmt.Errorf("simulating workforce year %d: %w", year, err)
		}
		stats = append(stats, ys)
	}
	return stats, nil
}

// ActiveUnits returns the business units open for staffing in a year.
// Expansion is monotone, so the latest recorded year carries forward.
func (s *Simulator) ActiveUnits(year int) []int {
	if units, ok := s.unitsByYear[year]; ok {
		return units
	}
	return s.activeUnits
}

// seedInitial creates the day-one roster: every consultant hired on the
// first of January of the start year, all in the founding unit, titles
// filled top-down from the slot table.
func (s *Simulator) seedInitial() error {
	start := simclock.Date(s.cfg.StartYear, time.January, 1)
	slots := s.titleSlots(s.cfg.InitialConsultants)
	for title := domain.TitleCount; title >= 1; title-- {
		for i := 0; i < slots[title]; i++ {
			if _, err := s.createConsultant(1, title, start); err != nil {
				return err
			}
		}
	}
	return nil
}

type activeEntry struct {
	c           *domain.Consultant
	yearsInRole float64
	totalYears  int
}

func (s *Simulator) runYear(year int) (YearStats, error) {
	rate := s.drawGrowthRate(year)
	target := s.targetHeadcount(year)
	slots := s.titleSlots(target)
	s.expandUnits(year)

	active := make(map[int][]activeEntry)
	stats := YearStats{Year: year, GrowthRate: rate}

	// Attrition first: everyone with an open entry rolls against the
	// title's attrition rate before any other event this year.
	for _, c := range s.store.CurrentlyEmployed() {
		open := s.store.OpenEntry(c.ID)
		title := open.TitleID
		if s.rng.Chance(s.cfg.AttritionRates[title]) {
			if err := s.recordDeparture(c, domain.EventAttrition, year); err != nil {
				return stats, err
			}
			stats.Attrition++
			continue
		}
		active[title] = append(active[title], activeEntry{
			c:           c,
			yearsInRole: s.yearsInRole(c.ID, title, year),
			totalYears:  year - c.HireYear,
		})
	}

	if rate < 0 {
		laid, err := s.performLayoffs(active, rate, year)
		if err != nil {
			return stats, err
		}
		stats.Layoffs = laid
	}

	promoted, err := s.performPromotions(active, slots, year)
	if err != nil {
		return stats, err
	}
	stats.Promotions = promoted

	hired, err := s.performHiring(active, slots, year)
	if err != nil {
		return stats, err
	}
	stats.Hires = hired

	if err := s.recordContinuations(active, year); err != nil {
		return stats, err
	}

	stats.Headcount = len(s.store.CurrentlyEmployed())
	stats.ActiveUnits = append([]int(nil), s.activeUnits...)
	s.log.Info().
		Int("year", year).
		Int("headcount", stats.Headcount).
		Int("hires", stats.Hires).
		Int("promotions", stats.Promotions).
		Int("attrition", stats.Attrition).
		Int("layoffs", stats.Layoffs).
		Float64("growth_rate", rate).
		Msg("workforce year simulated")
	return stats, nil
}

// drawGrowthRate applies a uniform jitter to the configured rate and
// memoizes the realized value so the headcount target compounds over
// what actually happened.
func (s *Simulator) drawGrowthRate(year int) float64 {
	rate := s.cfg.GrowthRate(year) + s.rng.Uniform(-0.05, 0.05)
	s.realized[year] = rate
	return rate
}

func (s *Simulator) targetHeadcount(year int) int {
	n := float64(s.cfg.InitialConsultants)
	for y := s.cfg.StartYear; y <= year; y++ {
		n *= 1 + s.realized[y]
	}
	return int(n)
}

// titleSlots distributes a headcount across titles, then pads senior
// titles so the pyramid never starves: each title keeps at least 30% of
// the slots below it plus a 10% spillover.
func (s *Simulator) titleSlots(headcount int) map[int]int {
	slots := make(map[int]int, domain.TitleCount)
	for title := 1; title <= domain.TitleCount; title++ {
		n := int(float64(headcount) * s.cfg.TitleDistribution[title])
		if n < 1 {
			n = 1
		}
		slots[title] = n
	}
	for title := 2; title <= domain.TitleCount; title++ {
		if floor := int(float64(slots[title-1]) * 0.3); slots[title] < floor {
			slots[title] = floor
		}
	}
	for title := 1; title < domain.TitleCount; title++ {
		slots[title+1] += int(float64(slots[title]) * 0.1)
	}
	return slots
}

// expandUnits opens at most one new business unit per year once the
// all-time roster crosses a threshold.
func (s *Simulator) expandUnits(year int) {
	total := len(s.store.Consultants())
	thresholds := make([]int, 0, len(s.cfg.ExpansionThresholds))
	for t := range s.cfg.ExpansionThresholds {
		thresholds = append(thresholds, t)
	}
	sort.Ints(thresholds)
	for _, t := range thresholds {
		unit := s.cfg.ExpansionThresholds[t]
		if total >= t && !s.unitActive(unit) {
			s.activeUnits = append(s.activeUnits, unit)
			s.log.Info().Int("year", year).Int("unit", unit).Int("headcount", total).Msg("expanded to new business unit")
			break
		}
	}
	s.unitsByYear[year] = append([]int(nil), s.activeUnits...)
}

func (s *Simulator) unitActive(unit int) bool {
	for _, u := range s.activeUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// recordDeparture closes the open entry and writes a closed terminal
// window [cutover, leave day], where the cutover is the later of
// January 1st and the day after the open entry began.
func (s *Simulator) recordDeparture(c *domain.Consultant, event domain.EventType, year int) error {
	open := s.store.OpenEntry(c.ID)
	if open == nil {
		return fmt.Errorf("%w: consultant %s departing without an open entry", domain.ErrBadHistoryWrite, c.ID)
	}
	cut := simclock.MaxDate(simclock.Date(year, time.January, 1), simclock.DayAfter(open.StartDate))
	leave := simclock.MaxDate(s.randomDayInYear(year), cut)
	if err := s.store.CloseOpenEntry(c.ID, simclock.DayBefore(cut)); err != nil {
		return err
	}
	end := leave
	return s.store.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: c.ID,
		TitleID:      open.TitleID,
		StartDate:    cut,
		EndDate:      &end,
		Event:        event,
		Salary:       open.Salary,
	})
}

// performLayoffs cuts a share of the roster proportional to the negative
// growth rate, spread across titles by the layoff distribution, shortest
// tenure in role first.
func (s *Simulator) performLayoffs(active map[int][]activeEntry, rate float64, year int) (int, error) {
	pct := -rate
	if pct > s.cfg.MaxLayoffPercentage {
		pct = s.cfg.MaxLayoffPercentage
	}
	total := 0
	for _, entries := range active {
		total += len(entries)
	}
	planned := int(float64(total) * pct)

	laid := 0
	for title := 1; title <= domain.TitleCount; title++ {
		k := int(float64(planned) * s.cfg.LayoffDistribution[title])
		entries := active[title]
		if k > len(entries) {
			k = len(entries)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].yearsInRole < entries[j].yearsInRole
		})
		for _, e := range entries[:k] {
			if err := s.recordDeparture(e.c, domain.EventLayoff, year); err != nil {
				return laid, err
			}
			laid++
		}
		active[title] = entries[k:]
	}
	return laid, nil
}

// performPromotions moves eligible consultants one title up, bounded by
// the free slots of the next title.
func (s *Simulator) performPromotions(active map[int][]activeEntry, slots map[int]int, year int) (int, error) {
	promoted := 0
	for title := 1; title < domain.TitleCount; title++ {
		var candidates []activeEntry
		for _, e := range active[title] {
			if s.shouldPromote(title, e.yearsInRole, e.totalYears) {
				candidates = append(candidates, e)
			}
		}
		free := slots[title+1] - len(active[title+1])
		if free < 0 {
			free = 0
		}
		if len(candidates) > free {
			candidates = candidates[:free]
		}
		for _, e := range candidates {
			open := s.store.OpenEntry(e.c.ID)
			when := s.randomDayInYear(year)
			if !when.After(open.StartDate) {
				when = simclock.DayAfter(open.StartDate)
			}
			if err := s.store.CloseOpenEntry(e.c.ID, simclock.DayBefore(when)); err != nil {
				return promoted, err
			}
			newSalary := s.drawSalary(title + 1)
			if raised := int(float64(open.Salary) * 1.1); raised > newSalary {
				newSalary = raised
			}
			if err := s.store.AddTitleEntry(&domain.TitleHistoryEntry{
				ConsultantID: e.c.ID,
				TitleID:      title + 1,
				StartDate:    when,
				Event:        domain.EventPromotion,
				Salary:       newSalary,
			}); err != nil {
				return promoted, err
			}
			e.c.CurrentTitleID = title + 1
			active[title+1] = append(active[title+1], activeEntry{c: e.c, yearsInRole: 0, totalYears: e.totalYears})
			active[title] = removeConsultant(active[title], e.c.ID)
			promoted++
		}
	}
	return promoted, nil
}

func removeConsultant(entries []activeEntry, id string) []activeEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.c.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// shouldPromote rolls the promotion chance: a base that grows with
// seniority, extra years in role beyond the minimum, and a tenure bonus.
func (s *Simulator) shouldPromote(title int, yearsInRole float64, totalYears int) bool {
	minYears := s.cfg.MinPromotionYears[title]
	if yearsInRole < minYears {
		return false
	}
	chance := s.cfg.BasePromotionChance + float64(title-1)*0.05
	extra := yearsInRole - minYears
	if bonus := extra * 0.1; bonus < 0.4 {
		chance += bonus
	} else {
		chance += 0.4
	}
	if bonus := float64(totalYears) * 0.02; bonus < 0.2 {
		chance += bonus
	} else {
		chance += 0.2
	}
	if chance > s.cfg.PromotionCeiling {
		chance = s.cfg.PromotionCeiling
	}
	return s.rng.Chance(chance)
}

// yearsInRole measures years at the current title as of January 1st,
// anchored on the latest hire or promotion into that title.
func (s *Simulator) yearsInRole(consultantID string, title, year int) float64 {
	hist := s.store.History(consultantID)
	jan1 := simclock.Date(year, time.January, 1)
	var anchor *time.Time
	for i := len(hist) - 1; i >= 0; i-- {
		e := hist[i]
		if e.TitleID != title {
			continue
		}
		if anchor == nil {
			d := e.StartDate
			anchor = &d
		}
		if e.Event == domain.EventHire || e.Event == domain.EventPromotion {
			d := e.StartDate
			anchor = &d
			break
		}
		d := e.StartDate
		anchor = &d
	}
	if anchor == nil {
		return 0
	}
	return jan1.Sub(*anchor).Hours() / 24 / 365.25
}

// performHiring fills every title up to its slot count with new hires,
// placing each in an active unit by the configured weights.
func (s *Simulator) performHiring(active map[int][]activeEntry, slots map[int]int, year int) (int, error) {
	weights := make([]float64, len(s.activeUnits))
	for i, u := range s.activeUnits {
		weights[i] = s.cfg.UnitDistribution[u]
	}
	hired := 0
	for title := 1; title <= domain.TitleCount; title++ {
		for len(active[title]) < slots[title] {
			unit := randsrc.WeightedChoice(s.rng, s.activeUnits, weights)
			c, err := s.createConsultant(unit, title, s.hireDate(year))
			if err != nil {
				return hired, err
			}
			active[title] = append(active[title], activeEntry{c: c})
			hired++
		}
	}
	return hired, nil
}

// recordContinuations rolls carried-over entries into the new year with
// a cost-of-living raise. Entries opened during this year (hires and
// promotions) are left alone.
func (s *Simulator) recordContinuations(active map[int][]activeEntry, year int) error {
	jan1 := simclock.Date(year, time.January, 1)
	for title := 1; title <= domain.TitleCount; title++ {
		for _, e := range active[title] {
			open := s.store.OpenEntry(e.c.ID)
			if open == nil || open.StartDate.Year() >= year {
				continue
			}
			raise := s.rng.Uniform(s.cfg.RaiseRange.Min, s.cfg.RaiseRange.Max)
			newSalary := int(float64(open.Salary) * (1 + raise))
			if err := s.store.CloseOpenEntry(e.c.ID, simclock.DayBefore(jan1)); err != nil {
				return err
			}
			if err := s.store.AddTitleEntry(&domain.TitleHistoryEntry{
				ConsultantID: e.c.ID,
				TitleID:      title,
				StartDate:    jan1,
				Event:        domain.EventContinuation,
				Salary:       newSalary,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// hireDate draws a day inside a hiring season of the year.
func (s *Simulator) hireDate(year int) time.Time {
	seasons := []string{"Spring", "Fall", "Other"}
	weights := make([]float64, len(seasons))
	for i, name := range seasons {
		weights[i] = s.cfg.HiringSeasons[name]
	}
	var month time.Month
	switch randsrc.WeightedChoice(s.rng, seasons, weights) {
	case "Spring":
		month = time.Month(s.rng.IntInRange(3, 5))
	case "Fall":
		month = time.Month(s.rng.IntInRange(9, 11))
	default:
		other := []int{1, 2, 6, 7, 8, 12}
		month = time.Month(other[s.rng.IntInRange(0, len(other)-1)])
	}
	return simclock.Date(year, month, s.rng.IntInRange(1, 28))
}

func (s *Simulator) randomDayInYear(year int) time.Time {
	return simclock.Date(year, time.Month(s.rng.IntInRange(1, 12)), s.rng.IntInRange(1, 28))
}

func (s *Simulator) drawSalary(title int) int {
	r := s.cfg.SalaryRanges[title]
	return s.rng.IntInRange(r.Min, r.Max)
}

// createConsultant mints a consultant id, identity and opening Hire
// entry in one step.
func (s *Simulator) createConsultant(unitID, titleID int, hireDate time.Time) (*domain.Consultant, error) {
	id := fmt.Sprintf("C%04d", s.nextID)
	s.nextID++

	locales := s.cfg.UnitLocales[unitID]
	locale := "en_US"
	if len(locales) > 0 {
		locale = locales[s.rng.IntInRange(0, len(locales)-1)]
	}
	first, last := s.names.Person(locale)
	c := &domain.Consultant{
		ID:             id,
		FirstName:      first,
		LastName:       last,
		Email:          s.names.Email(first, last, id, EmailDomain),
		Phone:          s.names.Phone(locale),
		BusinessUnitID: unitID,
		HireYear:       hireDate.Year(),
		CurrentTitleID: titleID,
	}
	if err := s.store.AddConsultant(c); err != nil {
		return nil, err
	}
	if err := s.store.AddTitleEntry(&domain.TitleHistoryEntry{
		ConsultantID: id,
		TitleID:      titleID,
		StartDate:    hireDate,
		Event:        domain.EventHire,
		Salary:       s.drawSalary(titleID),
	}); err != nil {
		return nil, err
	}
	return c, nil
}
