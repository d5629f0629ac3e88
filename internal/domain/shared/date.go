package shared

import (
	"strings"
	"time"
)

// BusinessDateLayout is the format of business dates (YYYY-MM-DD).
const BusinessDateLayout = "2006-01-02"

// ParseBusinessDate validates a YYYY-MM-DD date.
func ParseBusinessDate(date string) (time.Time, error) {
	t, err := time.Parse(BusinessDateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, NewValidationError("invalid date %q, expected YYYY-MM-DD", date)
	}
	return t, nil
}

// BusinessDate returns the calendar date of t in loc. A nil loc means UTC.
func BusinessDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(BusinessDateLayout)
}
