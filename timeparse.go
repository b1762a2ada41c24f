// FILE: lixenwraith/envchain/timeparse.go
package envchain

import (
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Naive is the location carried by datetimes that have no UTC offset.
// Its name matches the zone BurntSushi/toml assigns to TOML local datetimes,
// so decoded documents and parsed strings agree on what "naive" means.
var Naive = time.FixedZone(naiveZone, 0)

// Zone names used by the TOML decoder for local (offset-free) values.
const (
	naiveZone     = "datetime-local"
	localDateZone = "date-local"
	localTimeZone = "time-local"
)

// IsNaive reports whether t carries no UTC offset.
func IsNaive(t time.Time) bool {
	return t.Location().String() == naiveZone
}

// NaiveDate builds a naive datetime from wall-clock components.
func NaiveDate(year int, month time.Month, day, hour, min, sec, nsec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, nsec, Naive)
}

var errTimeOffset = errors.New("time values must not carry a UTC offset")

// Accepted wall-clock layouts; fractional seconds are accepted after the seconds
// field even though the layouts do not spell them out.
var clockLayouts = []string{"15:04:05", "15:04"}

// parseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func parseDate(s string) (civil.Date, error) {
	return civil.ParseDate(s)
}

// parseTime parses an ISO-8601 time of day. A trailing UTC offset is recognized
// by the grammar but always rejected.
func parseTime(s string) (civil.Time, error) {
	clock, offset := splitOffset(s)
	t, err := parseClock(clock)
	if err != nil {
		return civil.Time{}, err
	}
	if offset != "" {
		return civil.Time{}, errTimeOffset
	}
	return civil.TimeOf(t), nil
}

// parseDateTime parses an ISO-8601 datetime. The date and time are separated by
// 'T' or a space; an optional "Z" or ±HH:MM suffix makes the result aware.
// Offset-free input is returned in the Naive location. A bare date is accepted
// as midnight.
func parseDateTime(s string) (time.Time, error) {
	datePart, clockPart, hasClock := cutDateTime(s)

	d, err := civil.ParseDate(datePart)
	if err != nil {
		return time.Time{}, err
	}
	if !hasClock {
		return NaiveDate(d.Year, d.Month, d.Day, 0, 0, 0, 0), nil
	}

	clock, offset := splitOffset(clockPart)
	t, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	loc := Naive
	if offset != "" {
		if loc, err = parseOffset(offset); err != nil {
			return time.Time{}, err
		}
	}

	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
}

// cutDateTime splits "YYYY-MM-DDTHH:MM..." into its date and time halves.
func cutDateTime(s string) (string, string, bool) {
	if i := strings.IndexAny(s, "Tt "); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// splitOffset separates a trailing "Z" or ±HH[:MM] suffix from a clock value.
func splitOffset(s string) (clock, offset string) {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return s[:len(s)-1], "Z"
	}
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func parseClock(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseOffset turns "Z", "+02:30", "-0500" or "+01" into a location.
func parseOffset(offset string) (*time.Location, error) {
	if offset == "Z" {
		return time.UTC, nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		t, err := time.Parse(layout, offset)
		if err != nil {
			continue
		}
		_, seconds := t.Zone()
		if seconds == 0 {
			return time.UTC, nil
		}
		return time.FixedZone("", seconds), nil
	}
	return nil, errors.New("invalid UTC offset " + offset)
}
