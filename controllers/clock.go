package controllers

import (
	"time"

	"gateworks-backend/utils"
)

// BusinessClock resolves "today" in the business time zone. A nil Location
// means time.Local and a nil Now means time.Now.
type BusinessClock struct {
	Location *time.Location
	Now      func() time.Time
}

func (bc BusinessClock) today() time.Time {
	now := time.Now
	if bc.Now != nil {
		now = bc.Now
	}
	loc := bc.Location
	if loc == nil {
		loc = time.Local
	}
	return utils.CalendarDate(now().In(loc))
}
