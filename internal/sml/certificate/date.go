package certificate

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of a Date.
const DateLayout = "2006-01-02"

// acceptedLayouts are tried in order by ParseDate.
var acceptedLayouts = []string{
	DateLayout,
	"02.01.2006",
	"02/01/2006",
	"2.1.2006",
}

// Date is a calendar date without time of day or zone. The zero value is
// not a valid date.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its parts. Out-of-range parts are normalized
// the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses a user-supplied date. It returns nil with no error for
// blank input, meaning "not supplied".
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := DateOf(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Compare returns -1, 0 or +1 like time.Time.Compare.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	if parsed == nil {
		*d = Date{}
		return nil
	}
	*d = *parsed
	return nil
}
