package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

const defaultUpcomingLimit = 10

var detailsPolicy = bluemonday.UGCPolicy()

type CreateFacilityInput struct {
	ClientID                  uuid.UUID `json:"client_id" binding:"required"`
	Name                      string    `json:"name" binding:"required"`
	InstallationDate          string    `json:"installation_date" binding:"required"`
	MaintenanceIntervalMonths *int      `json:"maintenance_interval_months"`
	LastMaintenanceDate       *string   `json:"last_maintenance_date"`
	Details                   *string   `json:"details"`
	Images                    []string  `json:"images"`
}

type UpdateFacilityInput struct {
	Name                      *string `json:"name"`
	InstallationDate          *string `json:"installation_date"`
	MaintenanceIntervalMonths *int    `json:"maintenance_interval_months"`
	LastMaintenanceDate       *string `json:"last_maintenance_date"`
}

// FacilityReportInput is the field report: details replace the old text,
// images are appended to the existing list.
type FacilityReportInput struct {
	Details             *string  `json:"details"`
	Images              []string `json:"images"`
	LastMaintenanceDate *string  `json:"last_maintenance_date"`
}

// FacilityController groups the facility handlers that need the media
// pipeline or the business clock.
type FacilityController struct {
	Images *services.ImagePipeline
	BusinessClock
}

func sanitizeDetails(details *string) *string {
	if details == nil {
		return nil
	}
	clean := strings.TrimSpace(detailsPolicy.Sanitize(*details))
	if clean == "" {
		return nil
	}
	return &clean
}

func parseOptionalDate(s *string) (*time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, true
	}
	d, err := utils.ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return nil, false
	}
	return &d, true
}

func (fc *FacilityController) CreateFacility(c *gin.Context) {
	var input CreateFacilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	installed, err := utils.ParseDate(input.InstallationDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid installation date, expected YYYY-MM-DD")
		return
	}
	lastMaintenance, ok := parseOptionalDate(input.LastMaintenanceDate)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid last maintenance date, expected YYYY-MM-DD")
		return
	}

	var client models.Client
	if err := config.DB.Select("id").First(&client, "id = ?", input.ClientID).Error; err != nil {
		respondLookupError(c, err, "Client not found")
		return
	}

	facility := models.Facility{
		ClientID:                  client.ID,
		Name:                      strings.TrimSpace(input.Name),
		InstallationDate:          installed,
		MaintenanceIntervalMonths: models.DefaultMaintenanceIntervalMonths,
		LastMaintenanceDate:       lastMaintenance,
		Details:                   sanitizeDetails(input.Details),
		Images:                    datatypes.JSONSlice[string](emptyIfNil(input.Images)),
	}
	if input.MaintenanceIntervalMonths != nil {
		facility.MaintenanceIntervalMonths = *input.MaintenanceIntervalMonths
	}
	if err := facility.Validate(); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.DB.Create(&facility).Error; err != nil {
		respondDBError(c, err, "Failed to create facility")
		return
	}
	c.JSON(http.StatusCreated, facility)
}

// GetFacilities accepts ?q=, ?client_id= and an installation date range ?from=&to=.
func (fc *FacilityController) GetFacilities(c *gin.Context) {
	query := config.DB.Preload("Client").Scopes(listScope(c, "facilities"))

	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientID)
	}
	if raw := c.Query("from"); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("installation_date >= ?", from)
	}
	if raw := c.Query("to"); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("installation_date < ?", to.AddDate(0, 0, 1))
	}

	var facilities []models.Facility
	if err := query.Find(&facilities).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve facilities")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(facilities))
}

type facilityView struct {
	models.Facility
	Maintenance services.DueInfo `json:"maintenance"`
}

func (fc *FacilityController) GetFacility(c *gin.Context) {
	id, ok := parseID(c, "id", "facility")
	if !ok {
		return
	}

	var facility models.Facility
	if err := config.DB.Preload("Client").First(&facility, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Facility not found")
		return
	}
	c.JSON(http.StatusOK, facilityView{Facility: facility, Maintenance: services.Evaluate(&facility, fc.today())})
}

func (fc *FacilityController) UpdateFacility(c *gin.Context) {
	id, ok := parseID(c, "id", "facility")
	if !ok {
		return
	}

	var input UpdateFacilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var facility models.Facility
	if err := config.DB.First(&facility, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Facility not found")
		return
	}

	if input.Name != nil {
		facility.Name = strings.TrimSpace(*input.Name)
	}
	if input.InstallationDate != nil {
		installed, err := utils.ParseDate(*input.InstallationDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid installation date, expected YYYY-MM-DD")
			return
		}
		facility.InstallationDate = installed
	}
	if input.MaintenanceIntervalMonths != nil {
		facility.MaintenanceIntervalMonths = *input.MaintenanceIntervalMonths
	}
	if input.LastMaintenanceDate != nil {
		last, ok := parseOptionalDate(input.LastMaintenanceDate)
		if !ok {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid last maintenance date, expected YYYY-MM-DD")
			return
		}
		facility.LastMaintenanceDate = last
	}
	if err := facility.Validate(); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.DB.Save(&facility).Error; err != nil {
		respondDBError(c, err, "Failed to update facility")
		return
	}
	c.JSON(http.StatusOK, facility)
}

// UpdateFacilityReport applies a field report in a single UPDATE statement.
func (fc *FacilityController) UpdateFacilityReport(c *gin.Context) {
	id, ok := parseID(c, "id", "facility")
	if !ok {
		return
	}

	var input FacilityReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var facility models.Facility
	if err := config.DB.First(&facility, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Facility not found")
		return
	}

	updates := map[string]interface{}{}
	if input.Details != nil {
		facility.Details = sanitizeDetails(input.Details)
		updates["details"] = facility.Details
	}
	if len(input.Images) > 0 {
		facility.Images = append(facility.Images, input.Images...)
		updates["images"] = facility.Images
	}
	if input.LastMaintenanceDate != nil {
		last, ok := parseOptionalDate(input.LastMaintenanceDate)
		if !ok || last == nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid last maintenance date, expected YYYY-MM-DD")
			return
		}
		facility.LastMaintenanceDate = last
		updates["last_maintenance_date"] = last
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := config.DB.Model(&models.Facility{}).Where("id = ?", id).UpdateColumns(updates).Error; err != nil {
		respondDBError(c, err, "Failed to update facility report")
		return
	}
	c.JSON(http.StatusOK, facility)
}

// DeleteFacility deletes the record, then removes its images from storage.
// Images that cannot be removed are only logged.
func (fc *FacilityController) DeleteFacility(c *gin.Context) {
	id, ok := parseID(c, "id", "facility")
	if !ok {
		return
	}

	var facility models.Facility
	if err := config.DB.First(&facility, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Facility not found")
		return
	}
	if err := config.DB.Delete(&models.Facility{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Failed to delete facility")
		return
	}

	if fc.Images != nil && len(facility.Images) > 0 {
		if failed := fc.Images.DeleteMany(c.Request.Context(), facility.Images); len(failed) > 0 {
			zap.S().Warnw("facility images left in storage", "facility", id, "urls", failed)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Facility deleted successfully"})
}

// GetUpcomingMaintenance lists facilities due today or later, soonest first.
func (fc *FacilityController) GetUpcomingMaintenance(c *gin.Context) {
	limit := defaultUpcomingLimit
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		limit = n
	}

	upcoming, err := loadUpcoming(config.DB, fc.today(), limit)
	if err != nil {
		respondDBError(c, err, "Failed to retrieve upcoming maintenance")
		return
	}
	c.JSON(http.StatusOK, upcoming)
}

func loadUpcoming(db *gorm.DB, today time.Time, limit int) ([]services.UpcomingMaintenance, error) {
	var facilities []models.Facility
	if err := db.Preload("Client").Find(&facilities).Error; err != nil {
		return nil, err
	}
	return services.Upcoming(facilities, today, limit), nil
}
