package storage

import (
	"database/sql"
	"time"
)

// timeLayout is the canonical TEXT encoding for timestamps.
const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// FormatTime encodes a timestamp for a TEXT column; zero times map to
// NULL so "never happened" stays distinguishable.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}

// ParseTime decodes a nullable TEXT timestamp. NULL and malformed
// values come back as the zero time.
func ParseTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BoolToInt converts a bool for an INTEGER column.
func BoolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
