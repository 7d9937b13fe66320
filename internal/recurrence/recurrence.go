// Package recurrence parses free-text maintenance cadences ("3 months",
// "weekly", "90 days") and advances dates by them. All functions are
// pure: no clock access, no I/O.
package recurrence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unit is the calendar unit a rule advances by.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Rule is a parsed recurrence interval.
type Rule struct {
	Unit  Unit
	Every int
}

// String renders the rule in the canonical form the parser accepts,
// e.g. "1 day", "3 months".
func (r Rule) String() string {
	if r.Every == 1 {
		return fmt.Sprintf("1 %s", r.Unit)
	}
	return fmt.Sprintf("%d %ss", r.Every, r.Unit)
}

// FallbackDays is the interval applied when an interval string cannot be
// parsed. Unknown input must never fail generation, so NextDue silently
// schedules 30 days out. This is deliberate policy, not error recovery
// gone missing: a task on a wrong-but-sane cadence beats no task at all.
const FallbackDays = 30

var numericForm = regexp.MustCompile(`^(\d+)\s+(day|week|month|year)s?$`)

var namedForms = map[string]Rule{
	"daily":    {Unit: UnitDay, Every: 1},
	"weekly":   {Unit: UnitWeek, Every: 1},
	"monthly":  {Unit: UnitMonth, Every: 1},
	"yearly":   {Unit: UnitYear, Every: 1},
	"annual":   {Unit: UnitYear, Every: 1},
	"annually": {Unit: UnitYear, Every: 1},
}

// ParseInterval parses a free-text interval into a Rule. It recognizes
// named cadences ("daily", "weekly", "monthly", "yearly"/"annual") and
// numeric forms ("<n> <unit>(s)", with an optional "every" prefix),
// case-insensitively and tolerant of surrounding whitespace. Returns
// ok=false for anything else.
func ParseInterval(text string) (Rule, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimPrefix(s, "every ")
	if s == "" {
		return Rule{}, false
	}
	if r, ok := namedForms[s]; ok {
		return r, true
	}
	m := numericForm.FindStringSubmatch(s)
	if m == nil {
		return Rule{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Rule{}, false
	}
	if n < 1 {
		n = 1
	}
	return Rule{Unit: Unit(m[2]), Every: n}, true
}

// Advance moves t forward by the rule's interval. Month and year steps
// clamp to the last valid day of the target month when the original
// day-of-month does not exist there (Jan 31 + 1 month = Feb 28/29),
// never rolling into the following month.
func Advance(t time.Time, r Rule) time.Time {
	every := r.Every
	if every < 1 {
		every = 1
	}
	switch r.Unit {
	case UnitDay:
		return t.AddDate(0, 0, every)
	case UnitWeek:
		return t.AddDate(0, 0, 7*every)
	case UnitMonth:
		return addMonthsClamped(t, every)
	case UnitYear:
		return addMonthsClamped(t, 12*every)
	}
	return t.AddDate(0, 0, FallbackDays)
}

// addMonthsClamped adds months without time.AddDate's rollover behavior.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// Normalize to the first of the target month, then clamp the day.
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextDue computes the next due date for an interval string from the
// given anchor. Unparseable intervals fall back to FallbackDays.
func NextDue(intervalText string, anchor time.Time) time.Time {
	r, ok := ParseInterval(intervalText)
	if !ok {
		return anchor.AddDate(0, 0, FallbackDays)
	}
	return Advance(anchor, r)
}
