package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
)

const (
	dashboardUpcomingLimit = 5
	dashboardRecentLimit   = 5
)

type DashboardOverview struct {
	TotalClients      int64                          `json:"total_clients"`
	TotalFacilities   int64                          `json:"total_facilities"`
	TotalProducts     int64                          `json:"total_products"`
	TotalServices     int64                          `json:"total_services"`
	TotalWorks        int64                          `json:"total_works"`
	UpcomingReminders []services.UpcomingMaintenance `json:"upcoming_maintenance"`
	RecentReminders   []models.ReminderLog           `json:"recent_reminders"`
}

type DashboardController struct {
	BusinessClock
}

// GetDashboardOverview loads the counters and lists concurrently and fails
// as a whole if any of them fails.
func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	g, ctx := errgroup.WithContext(c.Request.Context())
	db := config.DB.WithContext(ctx)
	var overview DashboardOverview

	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Client{}, &overview.TotalClients},
		{&models.Facility{}, &overview.TotalFacilities},
		{&models.Product{}, &overview.TotalProducts},
		{&models.Service{}, &overview.TotalServices},
		{&models.Work{}, &overview.TotalWorks},
	}
	for _, q := range counts {
		q := q
		g.Go(func() error {
			return db.Model(q.model).Count(q.dst).Error
		})
	}

	g.Go(func() error {
		upcoming, err := loadUpcoming(db, dc.today(), dashboardUpcomingLimit)
		overview.UpcomingReminders = upcoming
		return err
	})
	g.Go(func() error {
		return db.Order("sent_at DESC").Limit(dashboardRecentLimit).Find(&overview.RecentReminders).Error
	})

	if err := g.Wait(); err != nil {
		respondDBError(c, err, "Failed to load dashboard")
		return
	}
	overview.RecentReminders = emptyIfNil(overview.RecentReminders)
	c.JSON(http.StatusOK, overview)
}
