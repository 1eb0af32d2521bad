package usecase

import "time"

// Unit statuses shared by batch reports.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusFailed  = "failed"
)

const dateLayout = "2006-01-02"

// gameDay truncates t to its calendar day in loc, stored as UTC midnight.
func gameDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
