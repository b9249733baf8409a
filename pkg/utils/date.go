package utils

import (
	"log"
	"time"
)

func GetTaipeiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowTaipei() time.Time {
	return time.Now().In(GetTaipeiLocation())
}

// SameCalendarDay reports whether a and b fall on the same calendar day
// after both are converted to loc.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	al, bl := a.In(loc), b.In(loc)
	ay, am, ad := al.Date()
	by, bm, bd := bl.Date()
	return ay == by && am == bm && ad == bd
}

// DateString formats t as YYYY-MM-DD in loc.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
