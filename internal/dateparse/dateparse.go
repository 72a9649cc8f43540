// Package dateparse resolves natural-language due dates like "tomorrow",
// "next friday" or "in 3 days" into concrete timestamps.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var (
	inPattern      = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)$`)
	weekdayPattern = regexp.MustCompile(`^(next|this|on)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
)

// Parse resolves text relative to now. Returned times are midnight UTC of the
// target day, except for explicit timestamps which are kept as given.
func Parse(text string, now time.Time) (time.Time, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	// Explicit formats first.
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(text)); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", normalized); err == nil {
		return t, nil
	}

	today := midnight(now)

	switch normalized {
	case "today", "tonight":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next week":
		return today.AddDate(0, 0, 7), nil
	case "next month":
		return today.AddDate(0, 1, 0), nil
	}

	if m := inPattern.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid count in %q", text)
		}
		switch strings.TrimSuffix(m[2], "s") {
		case "day":
			return today.AddDate(0, 0, n), nil
		case "week":
			return today.AddDate(0, 0, 7*n), nil
		case "month":
			return today.AddDate(0, n, 0), nil
		}
	}

	if m := weekdayPattern.FindStringSubmatch(normalized); m != nil {
		return resolveWeekday(today, m[1], weekdays[m[2]]), nil
	}

	// Bare weekday name: next occurrence, today excluded.
	if day, ok := weekdays[normalized]; ok {
		return resolveWeekday(today, "next", day), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}

// resolveWeekday maps "next friday" style phrases to a date. "next" always
// lands at least one day ahead; "this" may land in the past within the
// current week; "on" means the next occurrence including today.
func resolveWeekday(today time.Time, qualifier string, target time.Weekday) time.Time {
	delta := int(target) - int(today.Weekday())

	switch qualifier {
	case "next":
		if delta <= 0 {
			delta += 7
		}
	case "this":
		// This week's occurrence, which may already be in the past.
	case "on":
		if delta < 0 {
			delta += 7
		}
	}

	return today.AddDate(0, 0, delta)
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
