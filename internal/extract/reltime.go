package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimestampLayout is the normalized form every PostDate is rendered in.
const TimestampLayout = "2006-01-02 15:04:05"

var relativePattern = regexp.MustCompile(
	`^(?:about\s+)?(an?|\d+)\s+(second|sec|minute|min|hour|hr|day|week|month|year|yr)s?\.?\s+ago$`)

// NormalizeTimestamp converts the relative-time expressions rendered on the
// page ("3 hrs ago", "a day ago", "yesterday") into an absolute local
// timestamp anchored at now. Strings that already carry an absolute date
// are parsed as such; anything unrecognizable passes through unchanged so
// the artifact still records what the page showed.
func NormalizeTimestamp(raw string, now time.Time) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	switch lower {
	case "just now", "now":
		return now.Format(TimestampLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(TimestampLayout)
	}

	if m := relativePattern.FindStringSubmatch(lower); m != nil {
		n := 1
		if m[1] != "a" && m[1] != "an" {
			n, _ = strconv.Atoi(m[1])
		}
		return shiftBack(now, n, m[2]).Format(TimestampLayout)
	}

	if t, err := dateparse.ParseLocal(trimmed); err == nil {
		return t.Format(TimestampLayout)
	}

	return trimmed
}

func shiftBack(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "second", "sec":
		return now.Add(-time.Duration(n) * time.Second)
	case "minute", "min":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour", "hr":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "month":
		return now.AddDate(0, -n, 0)
	case "year", "yr":
		return now.AddDate(-n, 0, 0)
	}
	return now
}
