package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	eraPattern     = regexp.MustCompile(`^(\d+)\s*(BCE|CE)$`)
	centuryPattern = regexp.MustCompile(`^(\d+)(?:st|nd|rd|th)\s+century\s*(BCE|CE)$`)
	yearPattern    = regexp.MustCompile(`^(\d{3,4})$`)
)

// ParseDate converts a date like '3500 BCE', '16th century CE' or '1840 CE'
// into an approximate numeric year: BCE negative, CE positive, century
// dates to the century midpoint. A bare 3-4 digit year is taken as CE.
// Anything unparseable yields 0, which marks the date as unknown.
func ParseDate(date string) int {
	date = strings.TrimSpace(date)

	if match := eraPattern.FindStringSubmatch(date); match != nil {
		year, _ := strconv.Atoi(match[1])
		if match[2] == "BCE" {
			return -year
		}

		return year
	}

	if match := centuryPattern.FindStringSubmatch(date); match != nil {
		century, _ := strconv.Atoi(match[1])
		mid := century*100 - 50
		if match[2] == "BCE" {
			return -mid
		}

		return mid
	}

	if match := yearPattern.FindStringSubmatch(date); match != nil {
		year, _ := strconv.Atoi(match[1])
		return year
	}

	return 0
}

// Radius maps a year in the range -5000..2000 linearly onto a marker
// radius of 12..4 pixels (older sites draw larger), clamped to 4..12.
// Year 0 (unknown date) gets a fixed radius of 5.
func Radius(year int) int {
	if year == 0 {
		return 5
	}

	m := (4.0 - 12.0) / (2000.0 - (-5000.0))
	b := 12.0 - m*(-5000.0)
	r := m*float64(year) + b

	return int(math.Max(4, math.Min(12, r)))
}
