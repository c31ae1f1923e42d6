package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateworks-backend/models"
)

func TestDashboardOverview(t *testing.T) {
	db := setupTestDB(t)
	a := seedClient(t, db, "Ana", strPtr("ana@example.com"))
	b := seedClient(t, db, "Luis", nil)
	f := seedFacility(t, db, a.ID, "Portón norte", day(2024, 1, 15))
	seedFacility(t, db, a.ID, "Barrera", day(2024, 2, 1))
	seedFacility(t, db, b.ID, "Cortina", day(2023, 6, 1))
	require.NoError(t, db.Create(&models.ReminderLog{
		FacilityID: f.ID, ClientID: a.ID, Channel: models.ChannelEmail,
		Recipient: "ana@example.com", Status: models.ReminderSent, SentAt: facilityToday,
	}).Error)

	dc := &DashboardController{BusinessClock: testClock}
	r := gin.New()
	r.GET("/dashboard", dc.GetDashboardOverview)

	w := performJSON(r, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got DashboardOverview
	parseResponse(t, w, &got)
	assert.EqualValues(t, 2, got.TotalClients)
	assert.EqualValues(t, 3, got.TotalFacilities)
	assert.Zero(t, got.TotalProducts)
	assert.Len(t, got.RecentReminders, 1)
	// Cortina is overdue and excluded; Portón norte is due today.
	require.Len(t, got.UpcomingReminders, 2)
	assert.Equal(t, "Portón norte", got.UpcomingReminders[0].Facility.Name)
}

func TestMaintenanceReport(t *testing.T) {
	db := setupTestDB(t)
	a := seedClient(t, db, "Ana", strPtr("ana@example.com"))
	b := seedClient(t, db, "Luis", nil)
	f := seedFacility(t, db, a.ID, "Portón norte", day(2024, 1, 15))
	seedFacility(t, db, a.ID, "Barrera", day(2024, 3, 20))
	seedFacility(t, db, b.ID, "Cortina", day(2023, 6, 1))

	logs := []models.ReminderLog{
		{FacilityID: f.ID, ClientID: a.ID, Channel: models.ChannelEmail, Status: models.ReminderSent, SentAt: day(2024, 4, 2)},
		{FacilityID: f.ID, ClientID: a.ID, Channel: models.ChannelEmail, Status: models.ReminderFailed, SentAt: day(2024, 4, 3)},
		{FacilityID: f.ID, ClientID: a.ID, Channel: models.ChannelEmail, Status: models.ReminderSent, SentAt: day(2024, 3, 10)},
		{FacilityID: f.ID, ClientID: a.ID, Channel: models.ChannelEmail, Status: models.ReminderSent, SentAt: day(2024, 3, 11)},
	}
	require.NoError(t, db.Create(&logs).Error)

	rc := &ReportController{BusinessClock: testClock}
	r := gin.New()
	r.GET("/report", rc.GetMaintenanceReport)

	w := performJSON(r, http.MethodGet, "/report", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got MaintenanceReport
	parseResponse(t, w, &got)
	// Due dates: 2024-04-15, 2024-06-20 and 2023-09-01.
	assert.Equal(t, 1, got.DueThisMonth)
	assert.Equal(t, 2, got.DueThisQuarter)
	assert.Equal(t, 2, got.DueThisYear)
	assert.Equal(t, 1, got.Overdue)
	require.Len(t, got.OverdueFacilities, 1)
	assert.Equal(t, "Cortina", got.OverdueFacilities[0].Facility)
	assert.Equal(t, "Luis", got.OverdueFacilities[0].Client)
	assert.EqualValues(t, 1, got.RemindersSent)
	assert.EqualValues(t, 1, got.RemindersFailed)
	assert.InDelta(t, -50.0, got.ReminderGrowth, 0.001)
	require.NotEmpty(t, got.TopClients)
	assert.Equal(t, ClientSummary{Name: "Ana", Facilities: 2}, got.TopClients[0])
}
