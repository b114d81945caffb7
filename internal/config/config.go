package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/synthline/firmforge/internal/domain"
)

// IntRange is an inclusive [Min, Max] integer interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is an inclusive [Min, Max] float interval.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DurationBucket is one weighted project-duration band in months.
type DurationBucket struct {
	MinMonths int     `yaml:"min_months"`
	MaxMonths int     `yaml:"max_months"`
	Weight    float64 `yaml:"weight"`
}

// ExpenseCategory is one expense bucket with its share of project cost.
type ExpenseCategory struct {
	Name       string  `yaml:"name"`
	Percentage float64 `yaml:"percentage"`
}

// Config is the full static configuration bundle. It is read once at
// startup and never re-read; the simulator takes it as an explicit
// value, never through globals.
type Config struct {
	StartYear          int   `yaml:"horizon_start_year"`
	EndYear            int   `yaml:"horizon_end_year"`
	InitialConsultants int   `yaml:"initial_consultants"`
	Seed               int64 `yaml:"seed"`

	// Workforce simulator.
	GrowthRates         map[int]float64 `yaml:"growth_rates"`
	DefaultGrowthRate   float64         `yaml:"default_growth_rate"`
	AttritionRates      map[int]float64 `yaml:"attrition_rates"`
	TitleDistribution   map[int]float64 `yaml:"title_distribution"`
	SalaryRanges        map[int]IntRange `yaml:"salary_ranges"`
	MinPromotionYears   map[int]float64 `yaml:"min_promotion_years"`
	BasePromotionChance float64         `yaml:"base_promotion_chance"`
	PromotionCeiling    float64         `yaml:"promotion_ceiling"`
	RaiseRange          FloatRange      `yaml:"raise_range"`
	LayoffDistribution  map[int]float64 `yaml:"layoff_distribution"`
	MaxLayoffPercentage float64         `yaml:"max_layoff_percentage"`
	HiringSeasons       map[string]float64 `yaml:"hiring_seasons"`
	ExpansionThresholds map[int]int     `yaml:"expansion_thresholds"`
	UnitDistribution    map[int]float64 `yaml:"unit_distribution"`
	UnitLocales         map[int][]string `yaml:"unit_locales"`

	// Capacity.
	MaxDailyHours   map[int]float64 `yaml:"max_daily_hours"`
	MinProjectHours map[int]float64 `yaml:"min_project_hours"`
	MaxProjects     map[int]int     `yaml:"max_projects"`

	// Project creation.
	TeamDistribution      map[int]float64  `yaml:"team_distribution"`
	MinTeamSize           int              `yaml:"min_team_size"`
	MaxTeamSize           int              `yaml:"max_team_size"`
	AvgWorkingHoursPerDay float64          `yaml:"avg_working_hours_per_day"`
	WorkingDaysPerMonth   int              `yaml:"working_days_per_month"`
	DurationBuckets       []DurationBucket `yaml:"duration_buckets"`
	DeliverableCount      IntRange         `yaml:"deliverable_count"`
	ExtraProjectMonths    []int            `yaml:"extra_project_months"`

	// Financials.
	HourlyRateRanges   map[int]IntRange  `yaml:"hourly_rate_ranges"`
	OverheadPercentage float64           `yaml:"overhead_percentage"`
	BudgetFactorRange  FloatRange        `yaml:"budget_factor_range"`
	ExpenseCategories  []ExpenseCategory `yaml:"expense_categories"`

	// Allocation and state.
	CancelAfterDays      int `yaml:"cancel_after_days"`
	WorkingHoursPerMonth int `yaml:"working_hours_per_month"`

	// Reference seeding.
	ClientCount int `yaml:"client_count"`
}

// Default returns the configuration every run starts from; CLI flags
// and an optional YAML file overlay it.
func Default() Config {
	return Config{
		StartYear:          2015,
		EndYear:            2020,
		InitialConsultants: 100,
		Seed:               42,

		GrowthRates: map[int]float64{
			2015: 0.20, 2016: 0.30, 2017: 0.20, 2018: 0.10,
			2019: 0.10, 2020: 0.05, 2021: 0.04, 2022: 0.02,
			2023: -0.05, 2024: -0.06,
		},
		DefaultGrowthRate: 0.05,
		AttritionRates: map[int]float64{
			1: 0.01, 2: 0.005, 3: 0.005, 4: 0.005, 5: 0.005, 6: 0.005,
		},
		TitleDistribution: map[int]float64{
			1: 0.25, 2: 0.30, 3: 0.25, 4: 0.12, 5: 0.06, 6: 0.02,
		},
		SalaryRanges: map[int]IntRange{
			1: {50000, 60000}, 2: {70000, 80000}, 3: {90000, 120000},
			4: {120000, 150000}, 5: {150000, 200000}, 6: {200000, 250000},
		},
		MinPromotionYears: map[int]float64{
			1: 0.5, 2: 2, 3: 2, 4: 3, 5: 3, 6: 0,
		},
		BasePromotionChance: 0.5,
		PromotionCeiling:    0.95,
		RaiseRange:          FloatRange{0.02, 0.05},
		LayoffDistribution: map[int]float64{
			1: 0.35, 2: 0.25, 3: 0.20, 4: 0.10, 5: 0.07, 6: 0.03,
		},
		MaxLayoffPercentage: 0.2,
		HiringSeasons: map[string]float64{
			"Spring": 0.4, "Fall": 0.4, "Other": 0.2,
		},
		ExpansionThresholds: map[int]int{
			200: 2, 400: 3, 800: 4,
		},
		UnitDistribution: map[int]float64{
			1: 0.6, 2: 0.1, 3: 0.2, 4: 0.1,
		},
		UnitLocales: map[int][]string{
			1: {"en_US", "en_CA"},
			2: {"es_MX", "pt_BR", "es_CO"},
			3: {"en_GB", "de_DE", "fr_FR"},
			4: {"zh_CN", "ja_JP", "ko_KR", "en_AU"},
		},

		MaxDailyHours: map[int]float64{
			1: 8, 2: 8, 3: 7, 4: 6, 5: 5.5, 6: 5,
		},
		MinProjectHours: map[int]float64{
			1: 4, 2: 4, 3: 3, 4: 2.5, 5: 2, 6: 2,
		},
		MaxProjects: map[int]int{
			1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6,
		},

		TeamDistribution: map[int]float64{
			1: 0.40, 2: 0.30, 3: 0.15, 4: 0.10, 5: 0.04, 6: 0.01,
		},
		MinTeamSize:           10,
		MaxTeamSize:           15,
		AvgWorkingHoursPerDay: 6.0,
		WorkingDaysPerMonth:   21,
		DurationBuckets: []DurationBucket{
			{MinMonths: 1, MaxMonths: 3, Weight: 0.5},
			{MinMonths: 3, MaxMonths: 6, Weight: 0.3},
			{MinMonths: 6, MaxMonths: 12, Weight: 0.2},
		},
		DeliverableCount:   IntRange{3, 7},
		ExtraProjectMonths: []int{3, 4, 5, 6, 7, 8, 9, 10},

		HourlyRateRanges: map[int]IntRange{
			1: {100, 200}, 2: {150, 300}, 3: {200, 400},
			4: {250, 500}, 5: {300, 600}, 6: {400, 800},
		},
		OverheadPercentage: 0.3,
		BudgetFactorRange:  FloatRange{1.1, 1.3},
		ExpenseCategories: []ExpenseCategory{
			{Name: "Travel", Percentage: 0.15},
			{Name: "Equipment", Percentage: 0.10},
			{Name: "Software Licenses", Percentage: 0.08},
			{Name: "Training", Percentage: 0.05},
			{Name: "Subcontractor Fees", Percentage: 0.20},
			{Name: "Client Entertainment", Percentage: 0.03},
			{Name: "Office Supplies", Percentage: 0.02},
			{Name: "Telecommunication", Percentage: 0.04},
			{Name: "Legal and Professional Fees", Percentage: 0.05},
			{Name: "Miscellaneous", Percentage: 0.03},
		},

		CancelAfterDays:      120,
		WorkingHoursPerMonth: 160,

		ClientCount: 358,
	}
}

// ApplyFile overlays a YAML file onto the receiver. Keys absent from
// the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// GrowthRate returns the configured growth rate for a year, falling
// back to the default rate.
func (c *Config) GrowthRate(year int) float64 {
	if r, ok := c.GrowthRates[year]; ok {
		return r
	}
	return c.DefaultGrowthRate
}

// Validate rejects out-of-range or missing constants. It runs once at
// startup; a failure is fatal.
func (c *Config) Validate() error {
	if c.StartYear > c.EndYear {
		return fmt.Errorf("horizon start year %d after end year %d", c.StartYear, c.EndYear)
	}
	if c.InitialConsultants <= 0 {
		return fmt.Errorf("initial consultants must be positive, got %d", c.InitialConsultants)
	}
	for t := 1; t <= domain.TitleCount; t++ {
		if _, ok := c.AttritionRates[t]; !ok {
			return fmt.Errorf("missing attrition rate for title %d", t)
		}
		if _, ok := c.TitleDistribution[t]; !ok {
			return fmt.Errorf("missing title distribution for title %d", t)
		}
		if _, ok := c.TeamDistribution[t]; !ok {
			return fmt.Errorf("missing team distribution for title %d", t)
		}
		sr, ok := c.SalaryRanges[t]
		if !ok || sr.Min <= 0 || sr.Max < sr.Min {
			return fmt.Errorf("bad salary range for title %d: %+v", t, sr)
		}
		rr, ok := c.HourlyRateRanges[t]
		if !ok || rr.Min <= 0 || rr.Max < rr.Min {
			return fmt.Errorf("bad hourly rate range for title %d: %+v", t, rr)
		}
		if c.MaxDailyHours[t] <= 0 {
			return fmt.Errorf("max daily hours for title %d must be positive", t)
		}
		if c.MinProjectHours[t] <= 0 || c.MinProjectHours[t] > c.MaxDailyHours[t] {
			return fmt.Errorf("min project hours for title %d out of range", t)
		}
		if c.MaxProjects[t] <= 0 {
			return fmt.Errorf("max projects for title %d must be positive", t)
		}
		if _, ok := c.MinPromotionYears[t]; !ok {
			return fmt.Errorf("missing min promotion years for title %d", t)
		}
		if _, ok := c.LayoffDistribution[t]; !ok {
			return fmt.Errorf("missing layoff distribution for title %d", t)
		}
	}
	if c.MaxLayoffPercentage <= 0 || c.MaxLayoffPercentage > 1 {
		return fmt.Errorf("max layoff percentage must be in (0, 1], got %v", c.MaxLayoffPercentage)
	}
	if c.MinTeamSize <= 0 || c.MaxTeamSize < c.MinTeamSize {
		return fmt.Errorf("bad team size bounds [%d, %d]", c.MinTeamSize, c.MaxTeamSize)
	}
	if c.AvgWorkingHoursPerDay <= 0 {
		return fmt.Errorf("average working hours per day must be positive")
	}
	if c.WorkingDaysPerMonth <= 0 {
		return fmt.Errorf("working days per month must be positive")
	}
	if len(c.DurationBuckets) == 0 {
		return fmt.Errorf("no project duration buckets configured")
	}
	for _, b := range c.DurationBuckets {
		if b.MinMonths <= 0 || b.MaxMonths < b.MinMonths || b.Weight <= 0 {
			return fmt.Errorf("bad duration bucket %+v", b)
		}
	}
	if c.DeliverableCount.Min <= 0 || c.DeliverableCount.Max < c.DeliverableCount.Min {
		return fmt.Errorf("bad deliverable count range %+v", c.DeliverableCount)
	}
	if c.OverheadPercentage < 0 {
		return fmt.Errorf("overhead percentage must not be negative")
	}
	if c.BudgetFactorRange.Min <= 0 || c.BudgetFactorRange.Max < c.BudgetFactorRange.Min {
		return fmt.Errorf("bad budget factor range %+v", c.BudgetFactorRange)
	}
	if len(c.ExpenseCategories) == 0 {
		return fmt.Errorf("no expense categories configured")
	}
	for _, cat := range c.ExpenseCategories {
		if cat.Name == "" || cat.Percentage <= 0 {
			return fmt.Errorf("bad expense category %+v", cat)
		}
	}
	if len(c.UnitDistribution) == 0 || len(c.UnitLocales) == 0 {
		return fmt.Errorf("business unit distribution and locales must be configured")
	}
	if c.BasePromotionChance <= 0 || c.PromotionCeiling < c.BasePromotionChance {
		return fmt.Errorf("bad promotion chance bounds [%v, %v]", c.BasePromotionChance, c.PromotionCeiling)
	}
	if c.CancelAfterDays <= 0 {
		return fmt.Errorf("cancel-after days must be positive")
	}
	if c.WorkingHoursPerMonth <= 0 {
		return fmt.Errorf("working hours per month must be positive")
	}
	if c.ClientCount <= 0 {
		return fmt.Errorf("client count must be positive")
	}
	return nil
}
