package timezone

import (
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		panic(err)
	}
}

// the roster service thinks in dutch calendar days, a run from a machine
// in another zone must not shift the export window by a day
func Now() time.Time {
	return time.Now().In(Location)
}

// Today returns midnight of the current day in Location.
func Today() time.Time {
	return StartOfDay(Now())
}

func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
