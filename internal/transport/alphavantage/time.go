package alphavantage

import (
	"fmt"
	"time"
)

// Provider timestamp layouts. Requests use the minute-precision form with no
// timezone suffix; feed items come back with seconds.
const (
	requestLayout = "20060102T1504"
	feedLayout    = "20060102T150405"
)

// FormatTimestamp renders a time in the compact request form (local time).
func FormatTimestamp(t time.Time) string {
	return t.Format(requestLayout)
}

// ParseTimestamp decodes a feed timestamp (YYYYMMDDTHHmmss).
func ParseTimestamp(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(feedLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid alphavantage timestamp %q: %w", raw, err)
	}
	return t, nil
}
