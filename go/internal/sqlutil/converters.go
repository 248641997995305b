package sqlutil

import (
	"database/sql"
	"time"

	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
)

// Helper functions for converting between Go types and the column encodings
// used by the sqlite backend (UTC unix millis for instants, YYYY-MM-DD text for dates).

// ToMillis converts a time to UTC unix milliseconds
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromMillis converts UTC unix milliseconds to a time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ToNullMillis converts a Go time pointer to sql.NullInt64
func ToNullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: ToMillis(*t), Valid: true}
}

// FromNullMillis converts sql.NullInt64 to a Go time pointer
func FromNullMillis(val sql.NullInt64) *time.Time {
	if !val.Valid {
		return nil
	}
	t := FromMillis(val.Int64)
	return &t
}

// ToNullDate converts a Date pointer to sql.NullString
func ToNullDate(d *leagueclock.Date) sql.NullString {
	if d == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// FromNullDate converts sql.NullString to a Date pointer
func FromNullDate(val sql.NullString) (*leagueclock.Date, error) {
	if !val.Valid {
		return nil, nil
	}
	d, err := leagueclock.ParseDate(val.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ToNullTimeDate converts a Date pointer to a nullable midnight-UTC time, the
// encoding pgx uses for DATE columns
func ToNullTimeDate(d *leagueclock.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time(time.UTC)
	return &t
}

// FromNullTimeDate converts a nullable DATE column scanned by pgx to a Date pointer
func FromNullTimeDate(t *time.Time) *leagueclock.Date {
	if t == nil {
		return nil
	}
	d := leagueclock.DateOf(*t, time.UTC)
	return &d
}
