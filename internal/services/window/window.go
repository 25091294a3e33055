package window

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError marks a malformed or incomplete deadline specification.
// The listing write path rejects the whole request when it sees one.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// DeadlineSpec is the auction end-time input. Exactly one of the two modes
// must be supplied:
//
//	(a) EndDate + EndTime + TimeZone  — wall clock in TimeZone
//	(b) DurationDays (+ optional EndTime) + TimeZone — relative to "now"
type DeadlineSpec struct {
	EndDate      string `json:"endDate,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	TimeZone     string `json:"timeZone"`
	DurationDays int    `json:"duration,omitempty"`
}

// ResolveDeadline converts the spec into an absolute UTC instant.
//
// Ambiguous or nonexistent wall-clock times (DST transitions) are rejected
// rather than silently shifted to whichever offset the tz database picks.
func ResolveDeadline(spec DeadlineSpec, now time.Time) (time.Time, error) {
	if spec.TimeZone == "" {
		return time.Time{}, &ValidationError{Field: "timeZone", Msg: "is required"}
	}
	loc, err := time.LoadLocation(spec.TimeZone)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "timeZone", Msg: "unknown IANA time zone " + spec.TimeZone}
	}

	hasDate := spec.EndDate != ""
	hasDuration := spec.DurationDays > 0

	switch {
	case hasDate && hasDuration:
		return time.Time{}, &ValidationError{Msg: "endDate and duration are mutually exclusive"}
	case hasDate:
		if spec.EndTime == "" {
			return time.Time{}, &ValidationError{Field: "endTime", Msg: "is required with endDate"}
		}
		return resolveAbsolute(spec.EndDate, spec.EndTime, loc)
	case hasDuration:
		return resolveRelative(spec.DurationDays, spec.EndTime, loc, now)
	default:
		return time.Time{}, &ValidationError{Msg: "either endDate+endTime or duration must be supplied"}
	}
}

func resolveAbsolute(endDate, endTime string, loc *time.Location) (time.Time, error) {
	d, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "endDate", Msg: "must be YYYY-MM-DD"}
	}
	hh, mm, err := parseClock(endTime)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, loc)

	// time.Date normalises nonexistent wall clocks (spring-forward gap)
	// to a different hour; detect that and refuse.
	if t.Year() != d.Year() || t.Month() != d.Month() || t.Day() != d.Day() ||
		t.Hour() != hh || t.Minute() != mm {
		return time.Time{}, &ValidationError{Msg: "local time does not exist in " + loc.String()}
	}
	if ambiguousInZone(t, loc) {
		return time.Time{}, &ValidationError{Msg: "local time is ambiguous in " + loc.String()}
	}
	return t.UTC(), nil
}

func resolveRelative(days int, endTime string, loc *time.Location, now time.Time) (time.Time, error) {
	local := now.In(loc).AddDate(0, 0, days)

	hh, mm, sec, nsec := 23, 59, 59, 0
	if endTime != "" {
		h, m, err := parseClock(endTime)
		if err != nil {
			return time.Time{}, err
		}
		hh, mm, sec, nsec = h, m, 0, 0
	}
	t := time.Date(local.Year(), local.Month(), local.Day(), hh, mm, sec, nsec, loc)
	if t.Hour() != hh || t.Minute() != mm {
		return time.Time{}, &ValidationError{Msg: "local time does not exist in " + loc.String()}
	}
	if ambiguousInZone(t, loc) {
		return time.Time{}, &ValidationError{Msg: "local time is ambiguous in " + loc.String()}
	}
	return t.UTC(), nil
}

// ambiguousInZone reports whether the wall clock of t maps to two distinct
// instants (fall-back DST overlap): a nearby instant carrying the exact
// same local reading means the clock was repeated. Shifts of 30 minutes
// (Lord Howe Island) are probed as well as the usual full hour.
func ambiguousInZone(t time.Time, loc *time.Location) bool {
	deltas := []time.Duration{
		-time.Hour, -30 * time.Minute, 30 * time.Minute, time.Hour,
	}
	for _, d := range deltas {
		u := t.Add(d).In(loc)
		if u.Year() == t.Year() && u.Month() == t.Month() && u.Day() == t.Day() &&
			u.Hour() == t.Hour() && u.Minute() == t.Minute() {
			return true
		}
	}
	return false
}

func parseClock(s string) (hh, mm int, err error) {
	t, perr := time.Parse(timeLayout, s)
	if perr != nil {
		return 0, 0, &ValidationError{Field: "endTime", Msg: "must be HH:mm"}
	}
	return t.Hour(), t.Minute(), nil
}
