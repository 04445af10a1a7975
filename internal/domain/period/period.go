package period

import (
	"errors"
	"fmt"
	"time"
)

// Key identifies a billing month in canonical "YYYY-MM" form.
type Key string

// Domain errors
var (
	ErrInvalidKey = errors.New("period must be in YYYY-MM form")
)

// monthNames is the fixed display name table, January first.
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// KeyOf returns the period key for the given instant.
// PRE: t is a valid time
// POST: Returns "YYYY-MM" using t's own year and month, no zone conversion
func KeyOf(t time.Time) Key {
	return Key(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// Parse validates a raw string as a period key.
// PRE: none
// POST: Returns the key, or ErrInvalidKey if the form or month is invalid
func Parse(raw string) (Key, error) {
	if len(raw) != 7 || raw[4] != '-' {
		return "", ErrInvalidKey
	}
	var year, month int
	if _, err := fmt.Sscanf(raw, "%04d-%02d", &year, &month); err != nil {
		return "", ErrInvalidKey
	}
	if year < 1 || month < 1 || month > 12 {
		return "", ErrInvalidKey
	}
	return Key(raw), nil
}

// Year returns the key's four-digit year.
// PRE: k is a valid key
func (k Key) Year() int {
	var year, month int
	fmt.Sscanf(string(k), "%04d-%02d", &year, &month)
	return year
}

// Month returns the key's month, 1..12.
// PRE: k is a valid key
func (k Key) Month() int {
	var year, month int
	fmt.Sscanf(string(k), "%04d-%02d", &year, &month)
	return month
}

// Prev returns the key for the preceding month.
// PRE: k is a valid key
// POST: January rolls back to December of the previous year
func (k Key) Prev() Key {
	year, month := k.Year(), k.Month()
	month--
	if month < 1 {
		month = 12
		year--
	}
	return Key(fmt.Sprintf("%04d-%02d", year, month))
}

// DisplayName returns a human-readable "Month Year" label.
// PRE: k is a valid key (Parse first)
func (k Key) DisplayName() string {
	return fmt.Sprintf("%s %d", monthNames[k.Month()-1], k.Year())
}

// Bounds returns the half-open calendar month interval [start, end) in UTC.
// PRE: k is a valid key
// POST: start is midnight on the 1st, end is midnight on the 1st of the next month
func (k Key) Bounds() (time.Time, time.Time) {
	start := time.Date(k.Year(), time.Month(k.Month()), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// KeysOfYear returns the twelve period keys of a year, January first.
// PRE: year >= 1
func KeysOfYear(year int) [12]Key {
	var keys [12]Key
	for m := 1; m <= 12; m++ {
		keys[m-1] = Key(fmt.Sprintf("%04d-%02d", year, m))
	}
	return keys
}
