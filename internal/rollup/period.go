package rollup

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// SummaryPeriods are the windows reported in every summary, shortest first.
var SummaryPeriods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriod accepts the period names plus "day" as an alias of today.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	case "day":
		return PeriodToday, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

type Alignment string

const (
	AlignRolling  Alignment = "rolling"
	AlignCalendar Alignment = "calendar"
)

func ParseAlignment(s string) (Alignment, error) {
	switch a := Alignment(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlignRolling, nil
	case AlignRolling, AlignCalendar:
		return a, nil
	}
	return "", fmt.Errorf("%w: alignment %q", ErrInvalidPeriod, s)
}

// ParseWeekday parses an English weekday name. The empty string means Monday.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return time.Monday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("%w: week start %q", ErrInvalidPeriod, s)
}

type PeriodOptions struct {
	Alignment Alignment // empty means rolling
	WeekStart string    // calendar weeks only; empty means Monday
}

// Range is the half-open interval [Start, End). A zero bound is unbounded on that side.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidRange,
			r.End.Format(time.RFC3339), r.Start.Format(time.RFC3339))
	}
	return nil
}

func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// Resolve returns the current window for period and the equally sized window right before it.
// Midnights and calendar boundaries are taken in now's location.
func Resolve(period Period, now time.Time, opts PeriodOptions) (current, previous Range, err error) {
	align, err := ParseAlignment(string(opts.Alignment))
	if err != nil {
		return Range{}, Range{}, err
	}

	y, m, d := now.Date()
	loc := now.Location()

	switch period {
	case PeriodToday:
		start := startOfDay(y, m, d, loc)
		return Range{start, startOfDay(y, m, d+1, loc)}, Range{startOfDay(y, m, d-1, loc), start}, nil

	case PeriodWeek:
		if align == AlignCalendar {
			weekStart, err := ParseWeekday(opts.WeekStart)
			if err != nil {
				return Range{}, Range{}, err
			}
			first := d - (int(now.Weekday())-int(weekStart)+7)%7
			start := startOfDay(y, m, first, loc)
			return Range{start, startOfDay(y, m, first+7, loc)}, Range{startOfDay(y, m, first-7, loc), start}, nil
		}
		current, previous = rolling(now, 7)
		return current, previous, nil

	case PeriodMonth:
		if align == AlignCalendar {
			start := startOfDay(y, m, 1, loc)
			return Range{start, startOfDay(y, m+1, 1, loc)}, Range{startOfDay(y, m-1, 1, loc), start}, nil
		}
		current, previous = rolling(now, 30)
		return current, previous, nil

	case PeriodYear:
		if align == AlignCalendar {
			start := startOfDay(y, time.January, 1, loc)
			return Range{start, startOfDay(y+1, time.January, 1, loc)}, Range{startOfDay(y-1, time.January, 1, loc), start}, nil
		}
		current, previous = rolling(now, 365)
		return current, previous, nil
	}

	return Range{}, Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

func rolling(now time.Time, days int) (current, previous Range) {
	start := now.AddDate(0, 0, -days)
	return Range{start, now}, Range{start.AddDate(0, 0, -days), start}
}

// startOfDay returns the first instant of the civil date y-m-d in loc; out-of-range days and months normalise as in
// time.Date. Where a DST change skips midnight, time.Date lands on the previous evening, so step forward until the
// wall clock reads the requested date.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	y, m, d = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for t.Day() != d {
		t = t.Add(15 * time.Minute)
	}
	return t
}

// civilDate identifies a calendar day independently of the instant its first moment falls on.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}
