// controllers/reminder.go
package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

type ReminderController struct {
	Service    *services.ReminderService
	CronSecret string
}

func (rc *ReminderController) authorized(c *gin.Context) bool {
	if rc.CronSecret == "" {
		return true
	}
	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
	return subtle.ConstantTimeCompare([]byte(token), []byte(rc.CronSecret)) == 1
}

// RunMaintenanceReminders is hit by the external daily trigger.
func (rc *ReminderController) RunMaintenanceReminders(c *gin.Context) {
	if !rc.authorized(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	summary, err := rc.Service.SendDueReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetReminderLogs lists past send attempts, newest first. Accepts
// ?facility_id= and ?status=.
func GetReminderLogs(c *gin.Context) {
	query := config.DB.Order("sent_at DESC").Limit(defaultPageSize)

	if raw := c.Query("facility_id"); raw != "" {
		facilityID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid facility ID format")
			return
		}
		query = query.Where("facility_id = ?", facilityID)
	}
	switch status := c.Query("status"); status {
	case "":
	case models.ReminderSent, models.ReminderFailed:
		query = query.Where("status = ?", status)
	default:
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	var logs []models.ReminderLog
	if err := query.Find(&logs).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve reminder logs")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(logs))
}
