// Package recurrence expands a reading frequency policy into the concrete
// calendar dates it covers.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/khatm/pkg/models"
)

// ErrInvalidPolicy indicates an unknown frequency type, an empty day set for
// a weekly/custom policy, or an unrecognized day name.
var ErrInvalidPolicy = errors.New("invalid recurrence policy")

// ErrInvalidRange indicates the end date precedes the start date.
var ErrInvalidRange = errors.New("end date is before start date")

// Policy is a reading frequency rule. Days is required for weekly and
// custom frequencies and ignored for daily. Custom resolves identically to
// weekly: both are an explicit weekday subset.
type Policy struct {
	Frequency string   // models.FrequencyDaily, FrequencyWeekly or FrequencyCustom
	Days      []string // day names: sun, mon, tue, wed, thu, fri, sat
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Resolve returns every date from start to end inclusive that the policy
// selects, in ascending order. A valid range with no matching weekday
// occurrences yields an empty slice, not an error.
func Resolve(start, end time.Time, p Policy) ([]time.Time, error) {
	startDay := dateOnly(start)
	endDay := dateOnly(end)

	if endDay.Before(startDay) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, startDay.Format("2006-01-02"), endDay.Format("2006-01-02"))
	}

	switch p.Frequency {
	case models.FrequencyDaily:
		var dates []time.Time
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
		return dates, nil

	case models.FrequencyWeekly, models.FrequencyCustom:
		wanted, err := parseDays(p.Days)
		if err != nil {
			return nil, err
		}
		dates := []time.Time{}
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			if wanted[d.Weekday()] {
				dates = append(dates, d)
			}
		}
		return dates, nil

	default:
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidPolicy, p.Frequency)
	}
}

func parseDays(days []string) (map[time.Weekday]bool, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: day set is empty", ErrInvalidPolicy)
	}
	wanted := make(map[time.Weekday]bool, len(days))
	for _, name := range days {
		wd, ok := dayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown day name %q", ErrInvalidPolicy, name)
		}
		wanted[wd] = true
	}
	return wanted, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
