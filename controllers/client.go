package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

type CreateClientInput struct {
	Name               string     `json:"name" binding:"required"`
	Email              *string    `json:"email"`
	Phone              *string    `json:"phone"`
	FirstInteractionAt *time.Time `json:"first_interaction_at"`
}

type UpdateClientInput struct {
	Name               *string    `json:"name"`
	Email              *string    `json:"email"`
	Phone              *string    `json:"phone"`
	FirstInteractionAt *time.Time `json:"first_interaction_at"`
}

// ClientController serves client CRUD. Images is used to clean up the
// media of facilities removed along with a client.
type ClientController struct {
	Images *services.ImagePipeline
}

func normalizeContact(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func (cc *ClientController) CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
		return
	}

	email := normalizeContact(input.Email)
	if email != nil && !utils.ValidateEmail(*email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	phone := normalizeContact(input.Phone)
	if phone != nil && !utils.ValidatePhone(*phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	client := models.Client{
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		Phone:              phone,
		FirstInteractionAt: input.FirstInteractionAt,
	}
	if err := config.DB.Create(&client).Error; err != nil {
		respondDBError(c, err, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (cc *ClientController) GetClients(c *gin.Context) {
	var clients []models.Client
	if err := config.DB.Scopes(listScope(c, "clients")).Find(&clients).Error; err != nil {
		respondDBError(c, err, "Failed to retrieve clients")
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(clients))
}

func (cc *ClientController) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id", "client")
	if !ok {
		return
	}

	var client models.Client
	if err := config.DB.Preload("Facilities").First(&client, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id", "client")
	if !ok {
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var client models.Client
	if err := config.DB.First(&client, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Client not found")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
			return
		}
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeContact(input.Email)
		if email != nil && !utils.ValidateEmail(*email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		client.Email = email
	}
	if input.Phone != nil {
		phone := normalizeContact(input.Phone)
		if phone != nil && !utils.ValidatePhone(*phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		client.Phone = phone
	}
	if input.FirstInteractionAt != nil {
		client.FirstInteractionAt = input.FirstInteractionAt
	}

	if err := config.DB.Save(&client).Error; err != nil {
		respondDBError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes the client. Facilities go with it through the
// ON DELETE CASCADE constraint and their images are removed from storage.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	id, ok := parseID(c, "id", "client")
	if !ok {
		return
	}

	var facilities []models.Facility
	if err := config.DB.Select("id", "images").Where("client_id = ?", id).Find(&facilities).Error; err != nil {
		respondDBError(c, err, "Failed to delete client")
		return
	}

	result := config.DB.Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		respondDBError(c, result.Error, "Failed to delete client")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	var images []string
	for _, f := range facilities {
		images = append(images, f.Images...)
	}
	if cc.Images != nil && len(images) > 0 {
		if failed := cc.Images.DeleteMany(c.Request.Context(), images); len(failed) > 0 {
			zap.S().Warnw("facility images left in storage", "client", id, "urls", failed)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
