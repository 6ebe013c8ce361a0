package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestParseDate(t *testing.T) {
    got, ok := ParseDate("2025-03-10")
    if !ok {
        t.Fatalf("expected ok")
    }
    want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("unexpected date %v", got)
    }
    if _, ok := ParseDate("10/03/2025"); ok {
        t.Fatalf("expected failure for non-ISO date")
    }
}

func TestDayTruncatesToUTC(t *testing.T) {
    loc := time.FixedZone("X", -5*3600)
    in := time.Date(2025, 3, 10, 22, 30, 0, 0, loc) // 03:30 UTC next day
    want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
    if got := Day(in); !got.Equal(want) {
        t.Fatalf("expected %v, got %v", want, got)
    }
}

func TestDaysBetween(t *testing.T) {
    from := time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
    to := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
    days := DaysBetween(from, to)
    if len(days) != 3 {
        t.Fatalf("expected 3 days, got %d", len(days))
    }
    if FormatDate(days[0]) != "2025-03-08" || FormatDate(days[2]) != "2025-03-10" {
        t.Fatalf("unexpected range %v", days)
    }
    if DaysBetween(to, from) != nil {
        t.Fatalf("expected nil for inverted range")
    }
}
