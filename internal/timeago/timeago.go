// Package timeago renders the short message ages shown on inbox rows.
package timeago

import (
	"strconv"
	"time"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
	month  = 30 * day  // fixed-length, not calendar-aware
	year   = 365 * day // fixed-length, not calendar-aware
)

// Format returns a compact age string for a past instant: "now" under five
// seconds, then "42s", "3m", "5h", "2d", "1w", "6mo", "1y". Boundaries are
// half-open and all divisions truncate. Behaviour for past > now is
// undefined; callers must not pass future timestamps.
func Format(past, now time.Time) string {
	s := int64(now.Sub(past) / time.Second)
	switch {
	case s < 5:
		return "now"
	case s < minute:
		return strconv.FormatInt(s, 10) + "s"
	case s < hour:
		return strconv.FormatInt(s/minute, 10) + "m"
	case s < day:
		return strconv.FormatInt(s/hour, 10) + "h"
	case s < week:
		return strconv.FormatInt(s/day, 10) + "d"
	case s < month:
		return strconv.FormatInt(s/week, 10) + "w"
	case s < year:
		return strconv.FormatInt(s/month, 10) + "mo"
	default:
		return strconv.FormatInt(s/year, 10) + "y"
	}
}
