package repository

import (
	"fmt"
	"time"
)

// timestampLayout is how snapshot timestamps are stored in TEXT columns.
const timestampLayout = time.RFC3339Nano

// FormatTime renders a timestamp for storage, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTime parses a stored timestamp in RFC3339 (with or without fractional
// seconds) or "2006-01-02" format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(timestampLayout, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}
