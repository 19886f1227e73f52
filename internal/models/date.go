package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-day wire format used for every date field.
const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. The empty value means "unset"
// and is encoded as JSON null.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == "" }

// Valid reports whether d is unset or a well-formed day.
func (d Date) Valid() bool {
	if d == "" {
		return true
	}
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Time parses the day at midnight UTC.
func (d Date) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// String returns the raw value.
func (d Date) String() string { return string(d) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// Timestamps written by older clients keep only their day part.
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	*d = Date(s)
	return nil
}
