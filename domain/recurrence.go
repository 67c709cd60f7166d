package domain

import "time"

// Recurrence pattern types.
const (
	RecurDaily   = "daily"
	RecurWeekly  = "weekly"
	RecurMonthly = "monthly"
	RecurYearly  = "yearly"
)

// RecurrencePattern describes how occurrences of a series repeat. The JSON
// shape matches what is persisted alongside tasks and series, so the field
// set and names must stay stable. OccurrenceCount is bookkeeping tracked on
// the series row and excluded from the wire format.
type RecurrencePattern struct {
	Type            string     `json:"type"`
	Interval        int        `json:"interval"`
	EndDate         *time.Time `json:"end_date"`
	Count           *int       `json:"count"`
	OccurrenceCount int        `json:"-"`
}

// Validate rejects malformed patterns at series creation time, before any
// occurrence exists. The calculator below still degrades to "no next
// occurrence" on bad input so data persisted before validation existed keeps
// behaving as it always did.
func (p *RecurrencePattern) Validate() error {
	if p == nil {
		return ErrInvalidPattern
	}
	switch p.Type {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
	default:
		return WrapError(ErrCodeInvalidPattern, "unknown recurrence type", nil)
	}
	if p.Interval < 1 {
		return WrapError(ErrCodeInvalidPattern, "interval must be positive", nil)
	}
	if p.Count != nil && *p.Count < 1 {
		return WrapError(ErrCodeInvalidPattern, "count must be positive", nil)
	}
	return nil
}

// Next computes the occurrence following anchor, or ok=false when the series
// has terminated (count exhausted, end date passed) or the pattern is not
// something this calculator understands.
//
// Monthly additions clamp the day-of-month to the last valid day of the
// target month (Jan 31 + 1 month is Feb 28, or Feb 29 in a leap year).
// Yearly additions behave the same way, so a Feb 29 anchor lands on Feb 28
// in non-leap target years.
func (p *RecurrencePattern) Next(anchor time.Time) (time.Time, bool) {
	if p == nil || p.Interval < 1 {
		return time.Time{}, false
	}
	if p.Count != nil && p.OccurrenceCount >= *p.Count {
		return time.Time{}, false
	}

	var next time.Time
	switch p.Type {
	case RecurDaily:
		next = anchor.AddDate(0, 0, p.Interval)
	case RecurWeekly:
		next = anchor.AddDate(0, 0, p.Interval*7)
	case RecurMonthly:
		next = addMonthsClamped(anchor, p.Interval)
	case RecurYearly:
		next = addMonthsClamped(anchor, p.Interval*12)
	default:
		return time.Time{}, false
	}

	if p.EndDate != nil && next.After(*p.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// addMonthsClamped adds months without the normalization time.AddDate does
// (which would roll Jan 31 + 1 month over into March).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month-1) + months
	year += m / 12
	month = time.Month(m%12 + 1)

	if last := daysInMonth(year, month); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// First of the next month, rolled back a day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
