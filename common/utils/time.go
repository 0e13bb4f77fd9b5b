package utils

import "time"

// TimeFormat is the layout used for log lines.
const TimeFormat = "2006-01-02 15:04:05.000"

// MonthsLater adds calendar months to t in UTC.
func MonthsLater(t time.Time, months int) time.Time {
	return t.UTC().AddDate(0, months, 0)
}
