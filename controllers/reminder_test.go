package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gateworks-backend/models"
	"gateworks-backend/services"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, msg services.Notification) services.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg.To)
	return services.Result{Success: true}
}

func (n *recordingNotifier) NotifySMS(ctx context.Context, msg services.Notification) services.Result {
	return services.Result{Success: true}
}

func reminderRouter(db *gorm.DB, notifier services.Notifier, secret string) *gin.Engine {
	svc := services.NewReminderService(db, notifier, nil).WithClock(func() time.Time { return facilityToday })
	rc := &ReminderController{Service: svc, CronSecret: secret}
	r := gin.New()
	r.GET("/cron", rc.RunMaintenanceReminders)
	r.GET("/reminders", GetReminderLogs)
	return r
}

func cronRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/cron", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRunMaintenanceRemindersRequiresSecret(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	r := reminderRouter(db, notifier, "s3cret")

	for _, token := range []string{"", "wrong"} {
		w := cronRequest(r, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, w.Body.String())
	}
	assert.Empty(t, notifier.sent)
}

func TestRunMaintenanceReminders(t *testing.T) {
	db := setupTestDB(t)
	due := seedClient(t, db, "Ana", strPtr("ana@example.com"))
	seedFacility(t, db, due.ID, "Portón norte", day(2024, 1, 15))
	later := seedClient(t, db, "Luis", strPtr("luis@example.com"))
	seedFacility(t, db, later.ID, "Barrera", day(2024, 2, 1))
	seedClient(t, db, "Sin correo", nil)

	notifier := &recordingNotifier{}
	r := reminderRouter(db, notifier, "s3cret")

	w := cronRequest(r, "s3cret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary services.ReminderSummary
	parseResponse(t, w, &summary)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, []services.Recipient{{Facility: "Portón norte", Client: "Ana"}}, summary.SentTo)
	assert.Equal(t, []string{"ana@example.com"}, notifier.sent)

	// A second trigger on the same day sends nothing new.
	w = cronRequest(r, "s3cret")
	parseResponse(t, w, &summary)
	assert.Equal(t, 0, summary.Sent)

	w = performJSON(r, http.MethodGet, "/reminders?status="+models.ReminderSent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.ReminderLog
	parseResponse(t, w, &logs)
	assert.Len(t, logs, 1)

	w = performJSON(r, http.MethodGet, "/reminders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunMaintenanceRemindersReportsLoadFailure(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.Facility{}))

	w := cronRequest(reminderRouter(db, &recordingNotifier{}, ""), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	parseResponse(t, w, &body)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "failed to fetch facilities")
}
