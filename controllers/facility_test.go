package controllers

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/storage"
	"gateworks-backend/utils"
)

var facilityToday = time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)

var testClock = BusinessClock{Location: time.UTC, Now: func() time.Time { return facilityToday }}

func newTestPipeline(store storage.ObjectStore) *services.ImagePipeline {
	return services.NewImagePipeline(store, "images", config.ImageConfig{}, time.Second, utils.NoRetry())
}

func facilityRouter(fc *FacilityController) *gin.Engine {
	r := gin.New()
	r.POST("/facilities", fc.CreateFacility)
	r.GET("/facilities", fc.GetFacilities)
	r.GET("/facilities/upcoming", fc.GetUpcomingMaintenance)
	r.GET("/facilities/:id", fc.GetFacility)
	r.PUT("/facilities/:id", fc.UpdateFacility)
	r.PATCH("/facilities/:id/report", fc.UpdateFacilityReport)
	r.DELETE("/facilities/:id", fc.DeleteFacility)
	return r
}

func newFacilityController() *FacilityController {
	return &FacilityController{BusinessClock: testClock}
}

func TestCreateFacilityDefaultsInterval(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)

	w := performJSON(facilityRouter(newFacilityController()), http.MethodPost, "/facilities", gin.H{
		"client_id":         c.ID,
		"name":              "Portón norte",
		"installation_date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got models.Facility
	parseResponse(t, w, &got)
	assert.Equal(t, 3, got.MaintenanceIntervalMonths)
	assert.Equal(t, day(2024, 1, 15), got.InstallationDate.UTC())
	assert.Empty(t, got.Images)
}

func TestCreateFacilityRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	r := facilityRouter(newFacilityController())

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"zero interval", gin.H{"client_id": c.ID, "name": "P", "installation_date": "2024-01-15", "maintenance_interval_months": 0}, http.StatusBadRequest},
		{"negative interval", gin.H{"client_id": c.ID, "name": "P", "installation_date": "2024-01-15", "maintenance_interval_months": -2}, http.StatusBadRequest},
		{"bad date", gin.H{"client_id": c.ID, "name": "P", "installation_date": "15/01/2024"}, http.StatusBadRequest},
		{"blank name", gin.H{"client_id": c.ID, "name": "  ", "installation_date": "2024-01-15"}, http.StatusBadRequest},
		{"unknown client", gin.H{"client_id": uuid.New(), "name": "P", "installation_date": "2024-01-15"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(r, http.MethodPost, "/facilities", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestGetFacilitiesFilters(t *testing.T) {
	db := setupTestDB(t)
	ana := seedClient(t, db, "Ana", nil)
	beto := seedClient(t, db, "Beto", nil)
	seedFacility(t, db, ana.ID, "Portón norte", day(2023, 6, 1))
	seedFacility(t, db, ana.ID, "Cortina bodega", day(2024, 2, 10))
	seedFacility(t, db, beto.ID, "Portón sur", day(2024, 3, 5))
	r := facilityRouter(newFacilityController())

	names := func(path string) []string {
		w := performJSON(r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got []models.Facility
		parseResponse(t, w, &got)
		out := make([]string, 0, len(got))
		for _, f := range got {
			out = append(out, f.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Portón norte", "Portón sur"}, names("/facilities?q=port"))
	assert.ElementsMatch(t, []string{"Portón norte", "Cortina bodega"}, names("/facilities?client_id="+ana.ID.String()))
	assert.ElementsMatch(t, []string{"Cortina bodega", "Portón sur"}, names("/facilities?from=2024-01-01&to=2024-03-05"))

	w := performJSON(r, http.MethodGet, "/facilities?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFacilityIncludesDueInfo(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	f := seedFacility(t, db, c.ID, "Portón", day(2024, 1, 15))

	w := performJSON(facilityRouter(newFacilityController()), http.MethodGet, "/facilities/"+f.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Maintenance services.DueInfo `json:"maintenance"`
	}
	parseResponse(t, w, &got)
	assert.Equal(t, day(2024, 4, 15), got.Maintenance.NextDueDate.UTC())
	assert.True(t, got.Maintenance.IsDueToday)
	assert.True(t, got.Maintenance.IsUpcoming)
}

func TestUpdateFacilityReport(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	f := seedFacility(t, db, c.ID, "Portón", day(2024, 1, 15), "https://cdn.example.com/public/images/a.jpg")

	w := performJSON(facilityRouter(newFacilityController()), http.MethodPatch, "/facilities/"+f.ID.String()+"/report", gin.H{
		"details":               `<p>Cambio de <b>motor</b></p><script>alert(1)</script>`,
		"images":                []string{"https://cdn.example.com/public/images/b.jpg"},
		"last_maintenance_date": "2024-04-10",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Facility
	require.NoError(t, db.First(&stored, "id = ?", f.ID).Error)
	require.NotNil(t, stored.Details)
	assert.Equal(t, "<p>Cambio de <b>motor</b></p>", *stored.Details)
	assert.Equal(t, []string{
		"https://cdn.example.com/public/images/a.jpg",
		"https://cdn.example.com/public/images/b.jpg",
	}, []string(stored.Images))
	require.NotNil(t, stored.LastMaintenanceDate)
	assert.Equal(t, day(2024, 4, 10), stored.LastMaintenanceDate.UTC())
}

func TestUpdateFacilityReportNeedsChanges(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	f := seedFacility(t, db, c.ID, "Portón", day(2024, 1, 15))

	w := performJSON(facilityRouter(newFacilityController()), http.MethodPatch, "/facilities/"+f.ID.String()+"/report", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateFacilityRejectsInvalidInterval(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	f := seedFacility(t, db, c.ID, "Portón", day(2024, 1, 15))

	w := performJSON(facilityRouter(newFacilityController()), http.MethodPut, "/facilities/"+f.ID.String(), gin.H{
		"maintenance_interval_months": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(facilityRouter(newFacilityController()), http.MethodPut, "/facilities/"+f.ID.String(), gin.H{
		"maintenance_interval_months": 6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.Facility
	require.NoError(t, db.First(&stored, "id = ?", f.ID).Error)
	assert.Equal(t, 6, stored.MaintenanceIntervalMonths)
}

func TestGetUpcomingMaintenance(t *testing.T) {
	db := setupTestDB(t)
	c := seedClient(t, db, "Ana", nil)
	// Due 2024-05-01, 2024-04-15, 2024-03-01 and 2024-06-20.
	seedFacility(t, db, c.ID, "Later", day(2024, 2, 1))
	seedFacility(t, db, c.ID, "Today", day(2024, 1, 15))
	seedFacility(t, db, c.ID, "Overdue", day(2023, 12, 1))
	seedFacility(t, db, c.ID, "Latest", day(2024, 3, 20))

	w := performJSON(facilityRouter(newFacilityController()), http.MethodGet, "/facilities/upcoming?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []services.UpcomingMaintenance
	parseResponse(t, w, &got)
	require.Len(t, got, 2)
	assert.Equal(t, "Today", got[0].Facility.Name)
	assert.Equal(t, "Later", got[1].Facility.Name)
}

func TestDeleteFacilityRemovesImages(t *testing.T) {
	db := setupTestDB(t)
	store := storage.NewMemoryStore("images", "https://cdn.example.com")
	pipeline := newTestPipeline(store)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	up := pipeline.Upload(context.Background(), services.UploadFile{
		Name: "a.png", ContentType: "image/png", Size: int64(buf.Len()), Data: buf.Bytes(),
	}, services.FolderWorks, "")
	require.True(t, up.Success, up.Error)

	c := seedClient(t, db, "Ana", nil)
	f := seedFacility(t, db, c.ID, "Portón", day(2024, 1, 15), up.URL)

	fc := newFacilityController()
	fc.Images = pipeline
	w := performJSON(facilityRouter(fc), http.MethodDelete, "/facilities/"+f.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 0, store.Len())
	var count int64
	db.Model(&models.Facility{}).Count(&count)
	assert.Zero(t, count)
}
