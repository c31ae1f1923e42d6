package services

import (
	"sort"
	"time"

	"gateworks-backend/models"
	"gateworks-backend/utils"
)

// DueInfo is derived from a facility on every evaluation and never stored.
type DueInfo struct {
	NextDueDate time.Time `json:"next_due_date"`
	IsDueToday  bool      `json:"is_due_today"`
	IsUpcoming  bool      `json:"is_upcoming"`
}

// NextDueDate adds the maintenance interval to the last maintenance date,
// or to the installation date when the facility has never been serviced.
func NextDueDate(f *models.Facility) time.Time {
	return utils.AddMonths(f.LastServiceDate(), f.MaintenanceIntervalMonths)
}

// IsDueToday ignores time of day.
func IsDueToday(f *models.Facility, today time.Time) bool {
	return utils.SameDay(NextDueDate(f), today)
}

// IsUpcoming is inclusive: a due date equal to ref is upcoming.
func IsUpcoming(f *models.Facility, ref time.Time) bool {
	return !NextDueDate(f).Before(ref)
}

func Evaluate(f *models.Facility, ref time.Time) DueInfo {
	next := NextDueDate(f)
	return DueInfo{
		NextDueDate: next,
		IsDueToday:  utils.SameDay(next, ref),
		IsUpcoming:  !next.Before(ref),
	}
}

type UpcomingMaintenance struct {
	Facility    models.Facility `json:"facility"`
	NextDueDate time.Time       `json:"next_due_date"`
}

// Upcoming keeps facilities due at or after ref, sorted by due date and cut
// to limit. A limit of zero or less keeps them all.
func Upcoming(facilities []models.Facility, ref time.Time, limit int) []UpcomingMaintenance {
	out := make([]UpcomingMaintenance, 0, len(facilities))
	for i := range facilities {
		next := NextDueDate(&facilities[i])
		if next.Before(ref) {
			continue
		}
		out = append(out, UpcomingMaintenance{Facility: facilities[i], NextDueDate: next})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextDueDate.Before(out[j].NextDueDate)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
