package rumble

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numberPattern = regexp.MustCompile(`(\d+)`)

// ParseRelativeDate converts Rumble's relative date text ("3 hours ago",
// "2 weeks ago") into a timestamp relative to now. Day-or-coarser units
// are anchored to midnight, matching how the listing rounds them.
// Returns false when the text doesn't carry a recognizable unit.
//
// Only used for diagnostics: the persisted publish_date is synthesized
// by the ordering assigner, never taken from here.
func ParseRelativeDate(text string, now time.Time) (time.Time, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return time.Time{}, false
	}

	midnight := now.Truncate(24 * time.Hour)

	switch {
	case strings.Contains(text, "minute"):
		return now.Add(-time.Duration(n) * time.Minute), true
	case strings.Contains(text, "hour"):
		return now.Add(-time.Duration(n) * time.Hour), true
	case strings.Contains(text, "day"):
		return midnight.AddDate(0, 0, -n), true
	case strings.Contains(text, "week"):
		return midnight.AddDate(0, 0, -7*n), true
	case strings.Contains(text, "month"):
		return midnight.AddDate(0, 0, -30*n), true
	case strings.Contains(text, "year"):
		return midnight.AddDate(0, 0, -365*n), true
	}
	return time.Time{}, false
}
