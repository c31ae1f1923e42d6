// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

// ReportController builds the maintenance report for the admin panel.
type ReportController struct {
	BusinessClock
}

type MaintenanceReport struct {
	DueThisMonth      int               `json:"due_this_month"`
	DueThisQuarter    int               `json:"due_this_quarter"`
	DueThisYear       int               `json:"due_this_year"`
	Overdue           int               `json:"overdue"`
	RemindersSent     int64             `json:"reminders_sent"`
	RemindersFailed   int64             `json:"reminders_failed"`
	ReminderGrowth    float64           `json:"reminder_growth"`
	TopClients        []ClientSummary   `json:"top_clients"`
	OverdueFacilities []OverdueFacility `json:"overdue_facilities"`
}

type ClientSummary struct {
	Name       string `json:"name"`
	Facilities int    `json:"facilities"`
}

type OverdueFacility struct {
	Facility    string    `json:"facility"`
	Client      string    `json:"client"`
	NextDueDate time.Time `json:"next_due_date"`
	DaysOverdue int       `json:"days_overdue"`
}

// GetMaintenanceReport summarizes due dates for the current month, quarter
// and year, overdue facilities and this month's reminder activity.
func (rc *ReportController) GetMaintenanceReport(c *gin.Context) {
	today := rc.today()
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfYear := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	var facilities []models.Facility
	if err := config.DB.Preload("Client").Find(&facilities).Error; err != nil {
		respondDBError(c, err, "Failed to get facilities")
		return
	}

	report := MaintenanceReport{
		TopClients:        []ClientSummary{},
		OverdueFacilities: []OverdueFacility{},
	}
	for i := range facilities {
		f := &facilities[i]
		next := services.NextDueDate(f)
		if inRange(next, firstOfMonth, firstOfMonth.AddDate(0, 1, 0)) {
			report.DueThisMonth++
		}
		if inRange(next, rc.getQuarterStart(today), rc.getQuarterStart(today).AddDate(0, 3, 0)) {
			report.DueThisQuarter++
		}
		if inRange(next, firstOfYear, firstOfYear.AddDate(1, 0, 0)) {
			report.DueThisYear++
		}
		if next.Before(today) {
			report.Overdue++
			clientName := ""
			if f.Client != nil {
				clientName = f.Client.Name
			}
			report.OverdueFacilities = append(report.OverdueFacilities, OverdueFacility{
				Facility:    f.Name,
				Client:      clientName,
				NextDueDate: next,
				DaysOverdue: utils.DaysBetween(next, today),
			})
		}
	}

	var err error
	report.RemindersSent, err = rc.countReminders(models.ReminderSent, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		respondDBError(c, err, "Failed to get reminder statistics")
		return
	}
	report.RemindersFailed, err = rc.countReminders(models.ReminderFailed, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		respondDBError(c, err, "Failed to get reminder statistics")
		return
	}
	lastMonthSent, err := rc.countReminders(models.ReminderSent, firstOfMonth.AddDate(0, -1, 0), firstOfMonth)
	if err != nil {
		respondDBError(c, err, "Failed to get reminder statistics")
		return
	}
	report.ReminderGrowth = rc.calculateGrowthPercentage(float64(report.RemindersSent), float64(lastMonthSent))

	report.TopClients, err = rc.getTopClients(5)
	if err != nil {
		respondDBError(c, err, "Failed to get top clients")
		return
	}

	c.JSON(http.StatusOK, report)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (rc *ReportController) countReminders(status string, start, end time.Time) (int64, error) {
	var count int64
	err := config.DB.Model(&models.ReminderLog{}).
		Where("channel = ? AND status = ? AND sent_at >= ? AND sent_at < ?", models.ChannelEmail, status, start, end).
		Count(&count).Error
	return count, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopClients(limit int) ([]ClientSummary, error) {
	var clients []ClientSummary
	err := config.DB.Table("facilities").
		Select("clients.name, COUNT(facilities.id) as facilities").
		Joins("JOIN clients ON clients.id = facilities.client_id").
		Group("clients.id, clients.name").
		Order("facilities DESC").
		Limit(limit).
		Scan(&clients).Error
	return emptyIfNil(clients), err
}
