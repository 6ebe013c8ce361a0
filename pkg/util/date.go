package util

import (
    "strconv"
    "time"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, bool) {
    t, err := time.Parse(DateLayout, s)
    if err != nil {
        return time.Time{}, false
    }
    return t.UTC(), true
}

// FormatDate renders a time as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
    return t.UTC().Format(DateLayout)
}

// Day truncates a time to its UTC calendar day.
func Day(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween lists every UTC day in [from, to], inclusive on both ends.
func DaysBetween(from, to time.Time) []time.Time {
    from, to = Day(from), Day(to)
    if to.Before(from) {
        return nil
    }
    out := []time.Time{}
    for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
        out = append(out, d)
    }
    return out
}
