package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gateworks-backend/config"
	"gateworks-backend/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB points config.DB at a fresh in-memory database for one test.
// Foreign keys are enforced as in production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(config.SQLiteDSN(":memory:")), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		sqlDB.Close()
	})
	return db
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedClient(t *testing.T, db *gorm.DB, name string, email *string) models.Client {
	t.Helper()
	c := models.Client{Name: name, Email: email}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedFacility(t *testing.T, db *gorm.DB, clientID uuid.UUID, name string, installed time.Time, images ...string) models.Facility {
	t.Helper()
	f := models.Facility{
		ClientID:                  clientID,
		Name:                      name,
		InstallationDate:          installed,
		MaintenanceIntervalMonths: 3,
		Images:                    images,
	}
	require.NoError(t, db.Create(&f).Error)
	return f
}
