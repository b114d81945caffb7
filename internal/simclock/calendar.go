package simclock

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used across stores and reports.
const DateLayout = "2006-01-02"

// Date builds a UTC midnight time.Time. All simulation dates are produced
// through this constructor so that map keys and comparisons stay exact.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay reports whether d falls on Monday through Friday.
func IsWorkingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Month identifies a calendar month inside the horizon.
type Month struct {
	Year  int
	Month time.Month
}

// Key returns the YYYY-MM form used by reports.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns the first day of the month.
func (m Month) Start() time.Time {
	return Date(m.Year, m.Month, 1)
}

// End returns the last day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// MonthOf returns the Month containing d.
func MonthOf(d time.Time) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// Calendar enumerates the days, working days and months of a simulation
// horizon. No component consults the host clock; every date decision
// flows through a Calendar.
type Calendar struct {
	startYear int
	endYear   int
}

// New creates a Calendar spanning [startYear-01-01, endYear-12-31].
func New(startYear, endYear int) (*Calendar, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("start year %d is after end year %d", startYear, endYear)
	}
	return &Calendar{startYear: startYear, endYear: endYear}, nil
}

// StartYear returns the first simulated year.
func (c *Calendar) StartYear() int { return c.startYear }

// EndYear returns the last simulated year.
func (c *Calendar) EndYear() int { return c.endYear }

// Start returns the first day of the horizon.
func (c *Calendar) Start() time.Time { return Date(c.startYear, time.January, 1) }

// End returns the last day of the horizon.
func (c *Calendar) End() time.Time { return Date(c.endYear, time.December, 31) }

// Contains reports whether d lies inside the horizon, endpoints included.
func (c *Calendar) Contains(d time.Time) bool {
	return !d.Before(c.Start()) && !d.After(c.End())
}

// Clamp limits d to the horizon.
func (c *Calendar) Clamp(d time.Time) time.Time {
	if d.Before(c.Start()) {
		return c.Start()
	}
	if d.After(c.End()) {
		return c.End()
	}
	return d
}

// Years lists the simulated years in order.
func (c *Calendar) Years() []int {
	years := make([]int, 0, c.endYear-c.startYear+1)
	for y := c.startYear; y <= c.endYear; y++ {
		years = append(years, y)
	}
	return years
}

// Months lists every month of the given year.
func (c *Calendar) Months(year int) []Month {
	months := make([]Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, Month{Year: year, Month: m})
	}
	return months
}

// Days enumerates all days in [from, to], inclusive of both endpoints.
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WorkingDays enumerates weekdays in [from, to].
func WorkingDays(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// WorkingDaysIn enumerates the weekdays of a month, truncated to the
// horizon boundary.
func (c *Calendar) WorkingDaysIn(m Month) []time.Time {
	end := m.End()
	if end.After(c.End()) {
		end = c.End()
	}
	return WorkingDays(m.Start(), end)
}

// CountWorkingDays counts weekdays in [from, to].
func CountWorkingDays(from, to time.Time) int {
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// AddWorkingDays advances from by n weekdays and returns the resulting
// date. The start day itself is not counted.
func AddWorkingDays(from time.Time, n int) time.Time {
	d := from
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if IsWorkingDay(d) {
			added++
		}
	}
	return d
}

// MonthsBetween lists the calendar months touched by [from, to].
func MonthsBetween(from, to time.Time) []Month {
	var months []Month
	cur := Month{Year: from.Year(), Month: from.Month()}
	last := Month{Year: to.Year(), Month: to.Month()}
	for {
		months = append(months, cur)
		if cur == last {
			return months
		}
		next := cur.Start().AddDate(0, 1, 0)
		cur = Month{Year: next.Year(), Month: next.Month()}
	}
}

// DayBefore returns the previous calendar day.
func DayBefore(d time.Time) time.Time { return d.AddDate(0, 0, -1) }

// DayAfter returns the next calendar day.
func DayAfter(d time.Time) time.Time { return d.AddDate(0, 0, 1) }

// MinDate returns the earlier of a and b.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
