package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// IndirectCostParams tunes the synthetic overhead series. The defaults
// match the published report.
type IndirectCostParams struct {
	MeanLaborCost         float64
	StddevLaborCost       float64
	MeanOtherExpense      float64
	StddevOtherExpense    float64
	OutlierProbability    float64
	OutlierMultiplierMin  float64
	OutlierMultiplierMax  float64
	BaseInflationRate     float64
	InflationFluctuation  float64
	SeasonalityAmplitude  float64
	DependencyFactor      float64
	InitialCostMultiplier float64
	UnitBufferDays        int
}

// DefaultIndirectCostParams returns the standard tuning.
func DefaultIndirectCostParams() IndirectCostParams {
	return IndirectCostParams{
		MeanLaborCost:         125000,
		StddevLaborCost:       5000,
		MeanOtherExpense:      30000,
		StddevOtherExpense:    3000,
		OutlierProbability:    0.01,
		OutlierMultiplierMin:  1.1,
		OutlierMultiplierMax:  1.3,
		BaseInflationRate:     0.005,
		InflationFluctuation:  0.0005,
		SeasonalityAmplitude:  0.05,
		DependencyFactor:      0.5,
		InitialCostMultiplier: 2,
		UnitBufferDays:        30,
	}
}

// unitCostMultipliers scales the overhead means by business unit.
var unitCostMultipliers = map[int]float64{
	1: 1.0,
	2: 0.7,
	3: 1.2,
	4: 0.8,
}

// IndirectCostRow is one month of non-project overhead for one unit.
type IndirectCostRow struct {
	Month         string
	UnitID        int
	LaborCosts    float64
	OtherExpenses float64
	TotalCosts    float64
}

// IndirectCosts synthesizes the monthly overhead series per business
// unit: normal draws around inflation-drifting means, a sinusoidal
// seasonality factor, a dependency on the previous month and the
// occasional outlier. The month range spans the earliest to the latest
// planned project start; each unit enters the series a buffer ahead of
// its first project.
func IndirectCosts(pr *store.Projects, rng *randsrc.Source, params IndirectCostParams) []IndirectCostRow {
	projects := pr.All()
	if len(projects) == 0 {
		return nil
	}

	earliest, latest := projects[0].PlannedStart, projects[0].PlannedStart
	unitStart := make(map[int]time.Time)
	for _, proj := range projects {
		if proj.PlannedStart.Before(earliest) {
			earliest = proj.PlannedStart
		}
		if proj.PlannedStart.After(latest) {
			latest = proj.PlannedStart
		}
		if cur, ok := unitStart[proj.UnitID]; !ok || proj.PlannedStart.Before(cur) {
			unitStart[proj.UnitID] = proj.PlannedStart
		}
	}
	for unit, start := range unitStart {
		unitStart[unit] = start.AddDate(0, 0, -params.UnitBufferDays)
	}

	units := make([]int, 0, len(unitStart))
	for unit := range unitStart {
		units = append(units, unit)
	}
	sort.Ints(units)

	prevLabor := make(map[int]float64, len(units))
	prevOther := make(map[int]float64, len(units))
	seen := make(map[int]bool, len(units))
	for _, unit := range units {
		prevLabor[unit] = params.MeanLaborCost
		prevOther[unit] = params.MeanOtherExpense
	}

	inflation := params.BaseInflationRate
	var rows []IndirectCostRow
	for i, m := range simclock.MonthsBetween(earliest, simclock.MonthOf(latest).End()) {
		inflation += rng.Uniform(-params.InflationFluctuation, params.InflationFluctuation)
		season := 1 + params.SeasonalityAmplitude*math.Sin(math.Pi*float64(i)/12)

		for _, unit := range units {
			if m.End().Before(unitStart[unit]) {
				continue
			}
			mult := unitCostMultipliers[unit]
			if mult == 0 {
				mult = 1.0
			}

			labor := rng.Normal(params.MeanLaborCost*(1+inflation)*mult, params.StddevLaborCost)
			other := rng.Normal(params.MeanOtherExpense*(1+inflation)*mult, params.StddevOtherExpense)
			labor = math.Max(labor, 0) * season
			other = math.Max(other, 0) * season

			if !seen[unit] {
				labor *= params.InitialCostMultiplier
				other *= params.InitialCostMultiplier
				seen[unit] = true
			} else {
				labor += params.DependencyFactor * prevLabor[unit]
				other += params.DependencyFactor * prevOther[unit]
			}
			prevLabor[unit] = labor
			prevOther[unit] = other

			if rng.Chance(params.OutlierProbability) {
				outlier := rng.Uniform(params.OutlierMultiplierMin, params.OutlierMultiplierMax)
				labor *= outlier
				other *= outlier
			}

			labor = math.Round(labor*100) / 100
			other = math.Round(other*100) / 100
			rows = append(rows, IndirectCostRow{
				Month:         m.Start().Format("Jan-06"),
				UnitID:        unit,
				LaborCosts:    labor,
				OtherExpenses: other,
				TotalCosts:    labor + other,
			})
		}
	}
	return rows
}

// WriteIndirectCostsCSV writes the overhead series as CSV.
func WriteIndirectCostsCSV(w io.Writer, rows []IndirectCostRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Month", "Business Unit ID", "Non-proj Labor Costs", "Other Expense Costs", "Total Indirect Costs"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Month,
			fmt.Sprintf("%d", r.UnitID),
			fmt.Sprintf("%.2f", r.LaborCosts),
			fmt.Sprintf("%.2f", r.OtherExpenses),
			fmt.Sprintf("%.2f", r.TotalCosts),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
