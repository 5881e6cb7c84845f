package utils

import (
	"fmt"
	"time"
)

// DeltaTime renders d as "2h 3m 5s", dropping leading zero units.
func DeltaTime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

const dateLayout = "2006-01-02 15:04"

// FormatDate renders a modification time for the listing columns. Zero
// times render as a dash padded to the same width.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return fmt.Sprintf("%-*s", len(dateLayout), "-")
	}
	return t.Local().Format(dateLayout)
}
