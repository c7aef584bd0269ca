package timezone

import (
	"time"
	_ "time/tzdata"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		panic(err)
	}
}

// the portal and its students are in IST, day boundaries for attendance
// snapshots are computed there regardless of where the server runs.
func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay returns midnight of t's calendar day in Location.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
