package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gateworks-backend/cart"
	"gateworks-backend/config"
	"gateworks-backend/controllers"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/storage"
	"gateworks-backend/utils"
)

func newTestRouter(t *testing.T) (*gin.Engine, *utils.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	store := storage.NewMemoryStore("images", "")
	pipeline := services.NewImagePipeline(store, "images", config.ImageConfig{}, time.Second, utils.NoRetry())
	clock := controllers.BusinessClock{Location: time.UTC}
	jwtManager := utils.NewJWTManager("routes-secret", 1)

	r := SetupRouter(Handlers{
		JWT:       jwtManager,
		Auth:      &controllers.AuthController{JWT: jwtManager},
		Client:    &controllers.ClientController{Images: pipeline},
		Profile:   &controllers.ProfileController{Images: pipeline},
		Facility:  &controllers.FacilityController{Images: pipeline, BusinessClock: clock},
		Catalog:   &controllers.CatalogController{Images: pipeline},
		Media:     &controllers.MediaController{Pipeline: pipeline, MaxFiles: 5},
		Reminder:  &controllers.ReminderController{Service: services.NewReminderService(db, nil, time.UTC), CronSecret: "cron"},
		Report:    &controllers.ReportController{BusinessClock: clock},
		Dashboard: &controllers.DashboardController{BusinessClock: clock},
		Health:    &controllers.HealthController{Store: store},
		Cart:      &controllers.CartController{Service: cart.NewService(cart.NewMemoryStore())},
	})
	return r, jwtManager
}

func get(r http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	r, jwtManager := newTestRouter(t)

	adminToken, err := jwtManager.GenerateToken("00000000-0000-0000-0000-000000000001", int(models.RoleAdmin))
	require.NoError(t, err)
	customerToken, err := jwtManager.GenerateToken("00000000-0000-0000-0000-000000000002", int(models.RoleCustomer))
	require.NoError(t, err)

	paths := []string{
		"/api/admin/clients",
		"/api/admin/facilities",
		"/api/admin/facilities/upcoming",
		"/api/admin/products",
		"/api/admin/categories",
		"/api/admin/services",
		"/api/admin/works",
		"/api/admin/reminders",
		"/api/admin/dashboard",
		"/api/admin/reports/maintenance",
	}
	for _, path := range paths {
		assert.Equal(t, http.StatusUnauthorized, get(r, path, ""), path)
		assert.Equal(t, http.StatusForbidden, get(r, path, customerToken), path)
		assert.Equal(t, http.StatusOK, get(r, path, adminToken), path)
	}
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/health", ""))
	assert.Equal(t, http.StatusOK, get(r, "/api/public/es/products", ""))
	assert.Equal(t, http.StatusOK, get(r, "/api/public/en/works", ""))
	assert.Equal(t, http.StatusNotFound, get(r, "/api/public/es/services/none", ""))
	assert.Equal(t, http.StatusOK, get(r, "/api/public/cart/visitor-1", ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/cron/maintenance-reminders", ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/auth/me", ""))
}
