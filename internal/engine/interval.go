// internal/engine/interval.go
package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

/*
 * Interval expression parsing.
 *
 * Converts human-readable duration strings ("2 days", "30 minutes") used by
 * the OLDER_THAN/NEWER_THAN operators into a time.Duration. Pure lookup:
 * minute/hour/day/week unit sizes multiplied by the parsed integer.
 *
 * Unmatched input returns 0, never an error. Rule values come from external
 * configuration; a typo in one rule must not raise during evaluation of the
 * write path it is attached to. Units below a minute (seconds, millis) are
 * deliberately unsupported and also yield 0.
 */

var intervalPattern = regexp.MustCompile(`^\s*(\d+)\s+(minute|hour|day|week)s?\s*$`)

// Unit sizes for interval expressions.
const (
	intervalMinute = time.Minute
	intervalHour   = time.Hour
	intervalDay    = 24 * time.Hour
	intervalWeek   = 7 * 24 * time.Hour
)

// ParseInterval converts an interval expression to a duration.
// Grammar: <integer> <unit>[s] with unit in {minute, hour, day, week},
// case-insensitive. Returns 0 for anything else.
func ParseInterval(s string) time.Duration {
	m := intervalPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits that overflow int64 are not a usable interval
		return 0
	}

	var unit time.Duration
	switch m[2] {
	case "minute":
		unit = intervalMinute
	case "hour":
		unit = intervalHour
	case "day":
		unit = intervalDay
	case "week":
		unit = intervalWeek
	}

	return time.Duration(n) * unit
}
