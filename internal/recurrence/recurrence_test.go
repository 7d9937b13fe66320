package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in    string
		want  Rule
		valid bool
	}{
		{"daily", Rule{UnitDay, 1}, true},
		{"weekly", Rule{UnitWeek, 1}, true},
		{"monthly", Rule{UnitMonth, 1}, true},
		{"yearly", Rule{UnitYear, 1}, true},
		{"annual", Rule{UnitYear, 1}, true},
		{"annually", Rule{UnitYear, 1}, true},
		{"3 months", Rule{UnitMonth, 3}, true},
		{"1 month", Rule{UnitMonth, 1}, true},
		{"90 days", Rule{UnitDay, 90}, true},
		{"2 weeks", Rule{UnitWeek, 2}, true},
		{"10 years", Rule{UnitYear, 10}, true},
		{"  Weekly  ", Rule{UnitWeek, 1}, true},
		{"3   MONTHS", Rule{UnitMonth, 3}, true},
		{"every 12 months", Rule{UnitMonth, 12}, true},
		{"Every 2 weeks", Rule{UnitWeek, 2}, true},
		{"0 days", Rule{UnitDay, 1}, true}, // every clamps to 1
		{"gibberish", Rule{}, false},
		{"", Rule{}, false},
		{"three months", Rule{}, false},
		{"months 3", Rule{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseInterval(tt.in)
		if ok != tt.valid {
			t.Errorf("ParseInterval(%q) ok = %v, want %v", tt.in, ok, tt.valid)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseInterval(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAdvanceMonthEndClamp(t *testing.T) {
	tests := []struct {
		in   time.Time
		rule Rule
		want time.Time
	}{
		{date(2025, time.January, 31), Rule{UnitMonth, 1}, date(2025, time.February, 28)},
		{date(2024, time.January, 31), Rule{UnitMonth, 1}, date(2024, time.February, 29)}, // leap year
		{date(2025, time.March, 31), Rule{UnitMonth, 1}, date(2025, time.April, 30)},
		{date(2025, time.January, 15), Rule{UnitMonth, 1}, date(2025, time.February, 15)},
		{date(2025, time.November, 30), Rule{UnitMonth, 3}, date(2026, time.February, 28)},
		{date(2024, time.February, 29), Rule{UnitYear, 1}, date(2025, time.February, 28)},
		{date(2025, time.January, 31), Rule{UnitDay, 1}, date(2025, time.February, 1)},
		{date(2025, time.January, 1), Rule{UnitWeek, 2}, date(2025, time.January, 15)},
	}
	for _, tt := range tests {
		got := Advance(tt.in, tt.rule)
		if !got.Equal(tt.want) {
			t.Errorf("Advance(%s, %+v) = %s, want %s", tt.in.Format("2006-01-02"), tt.rule, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestAdvanceClampsEvery(t *testing.T) {
	got := Advance(date(2025, time.June, 1), Rule{UnitMonth, 0})
	if want := date(2025, time.July, 1); !got.Equal(want) {
		t.Errorf("Advance with every=0 = %s, want %s", got, want)
	}
}

func TestNextDueFallback(t *testing.T) {
	anchor := date(2025, time.June, 1)
	got := NextDue("gibberish", anchor)
	if want := anchor.AddDate(0, 0, 30); !got.Equal(want) {
		t.Errorf("NextDue fallback = %s, want %s", got, want)
	}

	got = NextDue("3 months", anchor)
	if want := date(2025, time.September, 1); !got.Equal(want) {
		t.Errorf("NextDue(3 months) = %s, want %s", got, want)
	}
}

func TestRuleString(t *testing.T) {
	if got := (Rule{UnitMonth, 3}).String(); got != "3 months" {
		t.Errorf("String() = %q, want %q", got, "3 months")
	}
	if got := (Rule{UnitWeek, 1}).String(); got != "1 week" {
		t.Errorf("String() = %q, want %q", got, "1 week")
	}
	// Canonical form round-trips through the parser.
	r := Rule{UnitDay, 90}
	back, ok := ParseInterval(r.String())
	if !ok || back != r {
		t.Errorf("round trip of %q failed: %+v %v", r.String(), back, ok)
	}
}
