package projectgen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/synthline/firmforge/internal/capacity"
	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// UnitsFunc reports the business units open for staffing in a year.
type UnitsFunc func(year int) []int

// Creator runs the monthly project-creation step: it sizes the month's
// batch from headcount-driven targets and manager capacity, then builds
// each project end to end (team, schedule, deliverables, financials,
// expense plan, assignments).
type Creator struct {
	cfg       config.Config
	rng       *randsrc.Source
	cal       *simclock.Calendar
	workforce *store.Workforce
	projects  *store.Projects
	oracle    *capacity.Oracle
	units     UnitsFunc
	clientIDs []int
	log       zerolog.Logger

	monthlyTarget map[simclock.Month]int
}

// NewCreator wires a Creator. clientIDs must be seeded before the first
// month runs.
func NewCreator(cfg config.Config, rng *randsrc.Source, cal *simclock.Calendar, wf *store.Workforce, pr *store.Projects, oracle *capacity.Oracle, units UnitsFunc, clientIDs []int, log zerolog.Logger) *Creator {
	return &Creator{
		cfg:           cfg,
		rng:           rng,
		cal:           cal,
		workforce:     wf,
		projects:      pr,
		oracle:        oracle,
		units:         units,
		clientIDs:     clientIDs,
		log:           log.With().Str("component", "projectgen").Logger(),
		monthlyTarget: make(map[simclock.Month]int),
	}
}

// PlanYear distributes the year's project target across its months. The
// base load spreads evenly; the leftover lands on random mid-year
// months.
func (c *Creator) PlanYear(year int) {
	headcount := c.workforce.Headcount(simclock.Date(year, time.January, 1))
	target := int(math.Ceil(float64(headcount) * (1 + c.cfg.GrowthRate(year)) / 2))
	base := target / 12
	extra := target % 12
	for _, m := range c.cal.Months(year) {
		c.monthlyTarget[m] = base
	}
	for i := 0; i < extra; i++ {
		month := c.cfg.ExtraProjectMonths[c.rng.IntInRange(0, len(c.cfg.ExtraProjectMonths)-1)]
		c.monthlyTarget[simclock.Month{Year: year, Month: time.Month(month)}]++
	}
	c.log.Info().Int("year", year).Int("headcount", headcount).Int("target", target).Msg("planned yearly project load")
}

// RunMonth creates this month's batch of projects. A missing manager or
// empty team lowers the batch below target instead of failing the run.
func (c *Creator) RunMonth(m simclock.Month) (int, error) {
	if len(c.clientIDs) == 0 {
		return 0, fmt.Errorf("%w: no clients seeded", domain.ErrEmptyPool)
	}
	today := m.Start()

	slots := c.managerSlots(today)
	mu := float64(c.monthlyTarget[m])
	if float64(slots) < mu {
		mu = float64(slots)
	}
	n := int(math.Round(c.rng.Normal(mu, math.Max(0.1, mu*0.2))))
	n -= c.projects.CreatedInMonth(m)
	if n < 0 {
		n = 0
	}

	created := 0
	for i := 0; i < n; i++ {
		err := c.createProject(today)
		if err == nil {
			created++
			continue
		}
		if errors.Is(err, domain.ErrCapacityExhausted) {
			c.log.Warn().Str("month", m.Key()).Int("created", created).Int("target", n).Msg("manager capacity exhausted, lowering month's batch")
			break
		}
		return created, fmt.Errorf("creating project in %s: %w", m.Key(), err)
	}
	return created, nil
}

// candidate pairs a consultant with the title held on the working date.
type candidate struct {
	c      *domain.Consultant
	title  int
	active int
}

// rankedPool lists consultants employed on date sorted by
// (active projects ascending, title descending), the staffing order
// used for both managers and members. Load is the commitment count
// maintained by the store, not the date-windowed assignment count:
// assignments booked earlier the same month start in the future and
// must still occupy a slot during selection.
func (c *Creator) rankedPool(date time.Time) []candidate {
	var pool []candidate
	for _, con := range c.workforce.ConsultantsEmployedOn(date) {
		title := c.workforce.LatestTitleID(con.ID, date)
		if title == 0 {
			continue
		}
		pool = append(pool, candidate{c: con, title: title, active: con.ActiveProjects})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].active != pool[j].active {
			return pool[i].active < pool[j].active
		}
		return pool[i].title > pool[j].title
	})
	return pool
}

// managerSlots totals the free concurrent-project slots across everyone
// eligible to manage.
func (c *Creator) managerSlots(date time.Time) int {
	total := 0
	for _, cand := range c.rankedPool(date) {
		if cand.title < domain.MinPMTitle {
			continue
		}
		if free := c.oracle.MaxProjects(cand.title) - cand.active; free > 0 {
			total += free
		}
	}
	return total
}

func (c *Creator) createProject(today time.Time) error {
	pool := c.rankedPool(today)

	kind := domain.KindTimeAndMaterial
	if c.rng.Chance(0.5) {
		kind = domain.KindFixed
	}
	months := c.drawDurationMonths()

	// Pick the first manager with a free slot who is still employed
	// when the project actually starts.
	var (
		pm           candidate
		plannedStart time.Time
		actualStart  time.Time
		found        bool
	)
	for _, cand := range pool {
		if cand.title < domain.MinPMTitle || cand.active >= c.oracle.MaxProjects(cand.title) {
			continue
		}
		avail := today
		if end := c.projects.LatestAssignmentEnd(cand.c.ID); end != nil {
			avail = simclock.MaxDate(avail, simclock.DayAfter(*end))
		}
		avail = simclock.MaxDate(avail, c.cal.Start())
		ps := avail.AddDate(0, 0, c.rng.IntInRange(0, 14))
		as := ps.AddDate(0, 0, c.rng.IntInRange(0, 7))
		if !c.workforce.EmployedOn(cand.c.ID, as) {
			continue
		}
		pm, plannedStart, actualStart, found = cand, ps, as, true
		break
	}
	if !found {
		return fmt.Errorf("no eligible project manager on %s: %w", today.Format(simclock.DateLayout), domain.ErrCapacityExhausted)
	}
	plannedEnd := simclock.AddWorkingDays(plannedStart, months*c.cfg.WorkingDaysPerMonth)

	createdAt := today.AddDate(0, 0, -c.rng.IntInRange(0, 15))
	createdAt = simclock.MaxDate(createdAt, c.cal.Start())

	targetSize := c.rng.IntInRange(c.cfg.MinTeamSize, c.cfg.MaxTeamSize)
	team := c.selectTeam(pool, pm, actualStart, targetSize)

	unitID := c.assignUnit(today)
	proj := &domain.Project{
		ID:           c.newID(),
		ClientID:     c.clientIDs[c.rng.IntInRange(0, len(c.clientIDs)-1)],
		UnitID:       unitID,
		Name:         fmt.Sprintf("Project_%d_%04d", today.Year(), c.rng.IntInRange(1000, 9999)),
		Kind:         kind,
		Status:       domain.ProjectNotStarted,
		PlannedStart: plannedStart,
		PlannedEnd:   plannedEnd,
		ActualStart:  actualStart,
		CreatedAt:    createdAt,
	}

	workingDays := simclock.CountWorkingDays(plannedStart, plannedEnd)
	proj.PlannedHours = float64(workingDays) * float64(targetSize) * c.cfg.AvgWorkingHoursPerDay
	proj.Meta.TargetTeamSize = targetSize
	proj.Meta.TargetHours = c.drawTargetHours(proj.PlannedHours)
	proj.Meta.RemainingSlots = targetSize - 1 - len(team)
	if proj.Meta.RemainingSlots < 0 {
		proj.Meta.RemainingSlots = 0
	}

	if err := c.projects.AddProject(proj); err != nil {
		return err
	}

	deliverables := c.buildDeliverables(proj)
	for _, d := range deliverables {
		if err := c.projects.AddDeliverable(d); err != nil {
			return err
		}
	}

	if err := c.planFinancials(proj, deliverables, pm, team, today.Year()); err != nil {
		return err
	}

	if err := c.writeAssignments(proj, pm, team); err != nil {
		return err
	}
	return nil
}

func (c *Creator) drawDurationMonths() int {
	weights := make([]float64, len(c.cfg.DurationBuckets))
	for i, b := range c.cfg.DurationBuckets {
		weights[i] = b.Weight
	}
	b := c.cfg.DurationBuckets[c.rng.WeightedIndex(weights)]
	return c.rng.IntInRange(b.MinMonths, b.MaxMonths)
}

func (c *Creator) drawTargetHours(planned float64) float64 {
	if c.rng.Chance(0.1) {
		return math.Round(planned * c.rng.Uniform(0.8, 0.95))
	}
	return math.Round(planned * c.rng.Uniform(1.05, 1.3))
}

// selectTeam fills the title-mix targets from the ranked pool, skipping
// anyone senior to the manager, over the cap, or gone by the start date.
func (c *Creator) selectTeam(pool []candidate, pm candidate, start time.Time, targetSize int) []candidate {
	slots := targetSize - 1
	if slots <= 0 {
		return nil
	}
	byTitle := make(map[int][]candidate)
	for _, cand := range pool {
		if cand.c.ID == pm.c.ID || cand.title > pm.title {
			continue
		}
		if cand.active >= c.oracle.MaxProjects(cand.title) {
			continue
		}
		if !c.workforce.EmployedOn(cand.c.ID, start) {
			continue
		}
		byTitle[cand.title] = append(byTitle[cand.title], cand)
	}

	var team []candidate
	for title := 1; title <= domain.TitleCount; title++ {
		want := int(math.Round(float64(slots) * c.cfg.TeamDistribution[title]))
		if want > len(byTitle[title]) {
			want = len(byTitle[title])
		}
		if remaining := slots - len(team); want > remaining {
			want = remaining
		}
		team = append(team, byTitle[title][:want]...)
	}
	return team
}

// assignUnit picks the active unit with the widest gap between its share
// of employed consultants and its share of this year's projects.
func (c *Creator) assignUnit(today time.Time) int {
	units := c.units(today.Year())
	employed := c.workforce.ConsultantsEmployedOn(today)
	headPerUnit := make(map[int]int)
	for _, con := range employed {
		headPerUnit[con.BusinessUnitID]++
	}
	projPerUnit := c.projects.UnitCounts(today.Year())
	totalProjects := 0
	for _, u := range units {
		totalProjects += projPerUnit[u]
	}

	best := units[0]
	bestGap := math.Inf(-1)
	for _, u := range units {
		target := 0.0
		if len(employed) > 0 {
			target = float64(headPerUnit[u]) / float64(len(employed))
		}
		current := float64(projPerUnit[u]) / float64(totalProjects+1)
		if gap := target - current; gap > bestGap {
			best, bestGap = u, gap
		}
	}
	return best
}

// buildDeliverables partitions the planned hours and planned window into
// 3..7 contiguous deliverables. The last one absorbs the remainder of
// both hours and days, so the partition is exact.
func (c *Creator) buildDeliverables(proj *domain.Project) []*domain.Deliverable {
	n := c.rng.IntInRange(c.cfg.DeliverableCount.Min, c.cfg.DeliverableCount.Max)
	const floorHours = 10
	if maxN := int(proj.PlannedHours / floorHours); n > maxN {
		n = maxN
	}
	if n < 1 {
		n = 1
	}

	shares := make([]float64, n)
	remaining := proj.PlannedHours
	for i := 0; i < n-1; i++ {
		maxShare := remaining - float64(n-i-1)*floorHours
		if maxShare < floorHours {
			maxShare = floorHours
		}
		share := float64(c.rng.IntInRange(floorHours, int(maxShare)))
		shares[i] = share
		remaining -= share
	}
	shares[n-1] = remaining

	totalDays := int(proj.PlannedEnd.Sub(proj.PlannedStart).Hours() / 24)
	targetFactor := proj.Meta.TargetHours / proj.PlannedHours

	deliverables := make([]*domain.Deliverable, 0, n)
	start := proj.PlannedStart
	cum := 0.0
	prevOffset := 0
	for i := 0; i < n; i++ {
		var due time.Time
		if i == n-1 {
			due = proj.PlannedEnd
		} else {
			cum += shares[i]
			offset := int(cum / proj.PlannedHours * float64(totalDays))
			if offset <= prevOffset {
				offset = prevOffset + 1
			}
			if ceiling := totalDays - (n - 1 - i); offset > ceiling {
				offset = ceiling
			}
			prevOffset = offset
			due = proj.PlannedStart.AddDate(0, 0, offset)
		}
		deliverables = append(deliverables, &domain.Deliverable{
			ID:           c.newID(),
			ProjectID:    proj.ID,
			Name:         fmt.Sprintf("Deliverable %d", i+1),
			PlannedStart: start,
			DueDate:      due,
			Status:       domain.DeliverableNotStarted,
			PlannedHours: shares[i],
			TargetHours:  shares[i] * targetFactor,
		})
		start = simclock.DayAfter(due)
	}
	return deliverables
}

// planFinancials derives billing rates, estimated cost and revenue, the
// contract price or budget, and the scheduled expense plan.
func (c *Creator) planFinancials(proj *domain.Project, deliverables []*domain.Deliverable, pm candidate, team []candidate, year int) error {
	members := append([]candidate{pm}, team...)

	// One rate per title, anchored on the first member holding it.
	rates := make(map[int]decimal.Decimal)
	for _, m := range members {
		if _, ok := rates[m.title]; !ok {
			rates[m.title] = c.billingRate(m.title, proj.Kind, year-m.c.HireYear)
		}
	}

	share := decimal.NewFromFloat(proj.PlannedHours / float64(len(members)))
	cost := decimal.Zero
	revenue := decimal.Zero
	for _, m := range members {
		cost = cost.Add(c.hourlyCost(m.c.ID, year).Mul(share))
		revenue = revenue.Add(rates[m.title].Mul(share))
	}
	proj.Meta.EstimatedCost = cost
	proj.Meta.EstimatedRevenue = revenue

	c.scheduleExpenses(proj, deliverables, cost)

	switch proj.Kind {
	case domain.KindFixed:
		billable := decimal.Zero
		for _, e := range proj.Meta.Expenses {
			if e.Billable {
				billable = billable.Add(e.Amount)
			}
		}
		price := roundThousand(cost.Add(billable))
		proj.Price = &price
		c.priceDeliverables(deliverables, price)
	case domain.KindTimeAndMaterial:
		factor := decimal.NewFromFloat(c.rng.Uniform(c.cfg.BudgetFactorRange.Min, c.cfg.BudgetFactorRange.Max))
		budget := roundThousand(revenue.Mul(factor))
		proj.Budget = &budget
		for title := 1; title <= domain.TitleCount; title++ {
			rate, ok := rates[title]
			if !ok {
				// Titles absent from the team still get a contract
				// rate, priced at a mid-career experience level.
				rate = c.billingRate(title, proj.Kind, 5)
			}
			if err := c.projects.AddBillingRate(domain.BillingRate{ProjectID: proj.ID, TitleID: title, Rate: rate}); err != nil {
				return err
			}
		}
	}
	return nil
}

// billingRate prices an hour of a title: the base range scaled by a
// capped experience factor, discounted for fixed-price work, with a
// small jitter.
func (c *Creator) billingRate(title int, kind domain.ProjectKind, yearsExperience int) decimal.Decimal {
	r := c.cfg.HourlyRateRanges[title]
	factor := float64(yearsExperience) / 10
	if factor > 1 {
		factor = 1
	}
	if factor < 0 {
		factor = 0
	}
	rate := float64(r.Min) + float64(r.Max-r.Min)*factor
	if kind == domain.KindFixed {
		rate *= 0.9
	}
	rate *= c.rng.Uniform(0.95, 1.05)
	return decimal.NewFromFloat(rate).Round(2)
}

// hourlyCost converts the consultant's salary in the given year into a
// loaded hourly cost.
func (c *Creator) hourlyCost(consultantID string, year int) decimal.Decimal {
	total, count := 0, 0
	for _, e := range c.workforce.History(consultantID) {
		if e.StartDate.Year() == year {
			total += e.Salary
			count++
		}
	}
	var annual float64
	if count > 0 {
		annual = float64(total) / float64(count)
	} else if e := c.workforce.OpenEntry(consultantID); e != nil {
		annual = float64(e.Salary)
	}
	hourly := annual / 12 / (52 * 40) * (1 + c.cfg.OverheadPercentage)
	return decimal.NewFromFloat(hourly)
}

// scheduleExpenses pre-generates the per-deliverable per-category
// expense plan, spread evenly over each deliverable's calendar months.
func (c *Creator) scheduleExpenses(proj *domain.Project, deliverables []*domain.Deliverable, estimatedCost decimal.Decimal) {
	for _, d := range deliverables {
		ratio := decimal.NewFromFloat(d.PlannedHours / proj.PlannedHours)
		dCost := estimatedCost.Mul(ratio)
		months := simclock.MonthsBetween(d.PlannedStart, d.DueDate)
		for _, cat := range c.cfg.ExpenseCategories {
			jitter := decimal.NewFromFloat(c.rng.Uniform(0.8, 1.2))
			total := dCost.Mul(decimal.NewFromFloat(cat.Percentage)).Mul(jitter)
			per := total.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
			if !per.IsPositive() {
				continue
			}
			for _, m := range months {
				proj.Meta.Expenses = append(proj.Meta.Expenses, domain.ScheduledExpense{
					DeliverableID: d.ID,
					Year:          m.Year,
					Month:         m.Month,
					Amount:        per,
					Category:      cat.Name,
					Description:   fmt.Sprintf("%s expense for %s", cat.Name, d.Name),
					Billable:      c.rng.Chance(0.5),
				})
			}
		}
	}
}

// priceDeliverables splits a fixed price across deliverables in
// proportion to planned hours; the last row takes the remainder so the
// rows sum back to the price exactly.
func (c *Creator) priceDeliverables(deliverables []*domain.Deliverable, price decimal.Decimal) {
	totalPlanned := 0.0
	for _, d := range deliverables {
		totalPlanned += d.PlannedHours
	}
	allocated := decimal.Zero
	for i, d := range deliverables {
		var p decimal.Decimal
		if i == len(deliverables)-1 {
			p = price.Sub(allocated)
		} else {
			p = price.Mul(decimal.NewFromFloat(d.PlannedHours / totalPlanned)).Round(2)
			allocated = allocated.Add(p)
		}
		dp := p
		d.Price = &dp
	}
}

// writeAssignments opens the team assignments: the manager, up to three
// leads among the senior members, the rest as members.
func (c *Creator) writeAssignments(proj *domain.Project, pm candidate, team []candidate) error {
	if err := c.projects.AddAssignment(&domain.TeamAssignment{
		ProjectID:    proj.ID,
		ConsultantID: pm.c.ID,
		Role:         domain.RoleProjectManager,
		StartDate:    proj.ActualStart,
	}); err != nil {
		return err
	}
	leads := 0
	for _, m := range team {
		role := domain.RoleTeamMember
		if leads < 3 && m.title >= domain.MinLeadTitle {
			role = domain.RoleTeamLead
			leads++
		}
		if err := c.projects.AddAssignment(&domain.TeamAssignment{
			ProjectID:    proj.ID,
			ConsultantID: m.c.ID,
			Role:         role,
			StartDate:    proj.ActualStart,
		}); err != nil {
			return err
		}
	}
	return nil
}

// TopUpTeam adds members to a running project that is under its target
// size, using the same ranked selection as creation. New joiners start
// on the given day as plain team members.
func (c *Creator) TopUpTeam(proj *domain.Project, date time.Time) error {
	current := 0
	onTeam := make(map[string]bool)
	for _, a := range c.projects.Team(proj.ID) {
		onTeam[a.ConsultantID] = true
		if a.EndDate == nil {
			current++
		}
	}
	missing := proj.Meta.TargetTeamSize - current
	if missing <= 0 {
		return nil
	}

	added := 0
	for _, cand := range c.rankedPool(date) {
		if added >= missing {
			break
		}
		if onTeam[cand.c.ID] || cand.title > domain.MinLeadTitle {
			continue
		}
		if cand.active >= c.oracle.MaxProjects(cand.title) {
			continue
		}
		if err := c.projects.AddAssignment(&domain.TeamAssignment{
			ProjectID:    proj.ID,
			ConsultantID: cand.c.ID,
			Role:         domain.RoleTeamMember,
			StartDate:    date,
		}); err != nil {
			return err
		}
		added++
	}
	proj.Meta.RemainingSlots = missing - added
	return nil
}

// newID draws a UUID from the run's PRNG, so the same seed mints the
// same project and deliverable ids.
func (c *Creator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(c.rng)).String()
}

func roundThousand(v decimal.Decimal) decimal.Decimal {
	thousand := decimal.NewFromInt(1000)
	return v.Div(thousand).Round(0).Mul(thousand)
}
