// Package datefmt renders backend timestamps for the admin pages.
//
// Output follows the "D MMM YYYY HH:mm:ss" pattern used across the UI,
// e.g. "3 Feb 2026 14:05:09", in the configured display timezone.
package datefmt

import (
	"fmt"
	"time"
	_ "time/tzdata" // container images ship without zoneinfo
)

// Layout is the display layout for all timestamps.
const Layout = "2 Jan 2006 15:04:05"

// zoned layouts carry their own offset; local layouts are read in the display zone.
var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
)

type Formatter struct {
	loc *time.Location
}

func New(timezone string) (*Formatter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Formatter{loc: loc}, nil
}

// Format returns "" for empty input and the input unchanged when it cannot
// be parsed.
func (f *Formatter) Format(datetime string) string {
	if datetime == "" {
		return ""
	}
	t, ok := f.parse(datetime)
	if !ok {
		return datetime
	}
	return t.In(f.loc).Format(Layout)
}

func (f *Formatter) parse(s string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, f.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
