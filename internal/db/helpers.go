package db

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/synthline/firmforge/internal/simclock"
)

// dateString formats a simulation date for SQLite storage.
func dateString(t time.Time) string {
	return t.Format(simclock.DateLayout)
}

// nullableDate converts a *time.Time to a value suitable for SQLite
// storage. Returns nil (SQL NULL) if the pointer is nil.
func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return dateString(*t)
}

// nullableMoney converts a *decimal.Decimal to a REAL value or NULL.
func nullableMoney(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
