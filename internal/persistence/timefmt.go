package persistence

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone data for minimal container images
)

// DefaultTimezone is the zone used for display when none is configured.
const DefaultTimezone = "America/New_York"

// displayLayout renders numeric month/day and a 12-hour clock, e.g. "11/14, 5:13 PM".
const displayLayout = "1/2, 3:04 PM"

// TimeFormatter renders stored epoch-millisecond timestamps in a fixed zone.
type TimeFormatter struct {
	loc *time.Location
}

// NewTimeFormatter loads the named zone.
func NewTimeFormatter(zone string) (TimeFormatter, error) {
	if zone == "" {
		zone = DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return TimeFormatter{}, fmt.Errorf("load display timezone %q: %w", zone, err)
	}
	return TimeFormatter{loc: loc}, nil
}

// Location returns the display zone.
func (f TimeFormatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// Format renders an epoch-millisecond timestamp.
func (f TimeFormatter) Format(epochMillis int64) string {
	return time.UnixMilli(epochMillis).In(f.Location()).Format(displayLayout)
}
