package app

import (
	"time"

	"github.com/Krminfinity/hotel-recommender/internal/domain"
)

// JST is the business timezone for "today": stay dates are Japanese hotel
// nights regardless of server locale. Fixed offset, Japan has no DST.
var JST = time.FixedZone("JST", 9*60*60)

var weekdays = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// ResolveDate turns exactly one of (explicit ISO date, weekday token) into a
// concrete stay date. Explicit dates must not be in the past; weekdays
// resolve to the next strictly-future occurrence (1-7 days ahead, so a
// weekday matching today means next week).
func ResolveDate(dateStr, weekday string, now time.Time) (time.Time, error) {
	if dateStr != "" && weekday != "" {
		return time.Time{}, domain.Validationf("provide either date or weekday, not both")
	}

	today := midnight(now.In(JST))

	if dateStr != "" {
		d, err := time.ParseInLocation("2006-01-02", dateStr, JST)
		if err != nil {
			return time.Time{}, domain.Validationf("date must be in YYYY-MM-DD format: %q", dateStr)
		}
		if d.Before(today) {
			return time.Time{}, domain.Validationf("date %s is in the past", dateStr)
		}
		return d, nil
	}

	if weekday != "" {
		target, ok := weekdays[weekday]
		if !ok {
			return time.Time{}, domain.Validationf("unknown weekday %q (want mon..sun)", weekday)
		}
		days := (int(target) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days), nil
	}

	return time.Time{}, domain.Validationf("either date or weekday is required")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
