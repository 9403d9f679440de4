// Package when resolves free-form date and recurrence expressions against a
// reference day, and computes the next occurrence of recurring tasks.
package when

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsable reports an expression matching none of the recognized forms.
var ErrUnparsable = errors.New("could not understand date expression")

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"mo":        time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tu":        time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"we":        time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"th":        time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"fr":        time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sa":        time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"su":        time.Sunday,
}

// legacyRecurrence maps recurrence spellings found in old store files to a
// day interval. Unknown tokens mean "no recurrence", never an error.
var legacyRecurrence = map[string]int{
	"daily":     1,
	"day":       1,
	"everyday":  1,
	"every day": 1,
}

// Resolve parses a date/recurrence expression relative to today.
// The returned interval is the recurrence in days, 0 meaning one-shot.
// Forms are checked in priority order; the first match wins.
func Resolve(expr string, today Date) (Date, int, error) {
	value := strings.TrimSpace(expr)
	if value == "" {
		return Date{}, 0, ErrUnparsable
	}
	lowered := strings.ToLower(value)

	switch lowered {
	case "daily", "everyday", "every day":
		return today, 1, nil
	case "today":
		return today, 0, nil
	case "tomorrow":
		return today.AddDays(1), 0, nil
	}

	if rest, ok := strings.CutPrefix(lowered, "in "); ok {
		rest = strings.TrimSpace(rest)
		if s, ok := strings.CutSuffix(rest, " days"); ok {
			rest = strings.TrimSpace(s)
		} else if s, ok := strings.CutSuffix(rest, " day"); ok {
			rest = strings.TrimSpace(s)
		}
		offset, err := strconv.Atoi(rest)
		if err != nil || offset < 0 {
			return Date{}, 0, ErrUnparsable
		}
		return today.AddDays(offset), 0, nil
	}

	if rest, ok := strings.CutPrefix(lowered, "every "); ok {
		rest = strings.TrimSpace(rest)
		switch rest {
		case "day", "daily", "day(s)":
			return today, 1, nil
		}
		if wd, ok := weekdays[rest]; ok {
			return nextWeekday(today, wd), 7, nil
		}
		if strings.HasSuffix(rest, " days") || strings.HasSuffix(rest, " day") {
			fields := strings.Fields(rest)
			interval, err := strconv.Atoi(fields[0])
			if err == nil && interval > 0 {
				return today.AddDays(interval), interval, nil
			}
		}
		return Date{}, 0, ErrUnparsable
	}

	if wd, ok := weekdays[lowered]; ok {
		return nextWeekday(today, wd), 0, nil
	}

	if d, err := ParseDate(value); err == nil {
		return d, 0, nil
	}

	if month, day, ok := splitMonthDay(value); ok {
		d, err := NewDate(today.Year(), time.Month(month), day)
		if err != nil {
			return Date{}, 0, ErrUnparsable
		}
		return d, 0, nil
	}

	if allDigits(value) {
		day, err := strconv.Atoi(value)
		if err != nil {
			return Date{}, 0, ErrUnparsable
		}
		d, err := NewDate(today.Year(), today.Month(), day)
		if err != nil {
			return Date{}, 0, ErrUnparsable
		}
		return d, 0, nil
	}

	return Date{}, 0, ErrUnparsable
}

// NextDue computes the reschedule target for a completed recurring task.
// It never re-parses expressions: the interval is already in days.
func NextDue(due *Date, recurrenceDays int, today Date) Date {
	base := today
	if due != nil {
		base = *due
	}
	return base.AddDays(recurrenceDays)
}

// LegacyRecurrence normalizes an old-format recurrence token to a day
// interval, or 0 if the token is unknown or non-positive.
func LegacyRecurrence(raw string) int {
	token := strings.ToLower(strings.TrimSpace(raw))
	if n, ok := legacyRecurrence[token]; ok {
		return n
	}
	if n, err := strconv.Atoi(token); err == nil && n > 0 {
		return n
	}
	return 0
}

// nextWeekday is the next occurrence of target strictly after d: when the
// weekdays match, the result is a full week out, never d itself.
func nextWeekday(d Date, target time.Weekday) Date {
	delta := (int(target) - int(d.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return d.AddDays(delta)
}

func splitMonthDay(s string) (month, day int, ok bool) {
	left, right, found := strings.Cut(s, "-")
	if !found || !allDigits(left) || !allDigits(right) {
		return 0, 0, false
	}
	m, err1 := strconv.Atoi(left)
	d, err2 := strconv.Atoi(right)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return m, d, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
