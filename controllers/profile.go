package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gateworks-backend/config"
	"gateworks-backend/services"
	"gateworks-backend/utils"
)

type UpdateProfileInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Avatar   *string `json:"avatar"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ProfileController struct {
	Images *services.ImagePipeline
}

// UpdateProfile edits the signed-in user's own profile. A replaced avatar
// is removed from storage.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Full name is required")
			return
		}
		profile.FullName = name
	}
	if input.Phone != nil {
		phone := normalizeContact(input.Phone)
		if phone != nil && !utils.ValidatePhone(*phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		profile.Phone = phone
	}
	oldAvatar := profile.Avatar
	if input.Avatar != nil {
		profile.Avatar = strings.TrimSpace(*input.Avatar)
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		respondDBError(c, err, "Failed to update profile")
		return
	}

	if pc.Images != nil && oldAvatar != "" && oldAvatar != profile.Avatar {
		if res := pc.Images.Delete(c.Request.Context(), oldAvatar); !res.Success {
			zap.S().Warnw("old avatar left in storage", "url", oldAvatar, "error", res.Error)
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": profileJSON(profile)})
}

func (pc *ProfileController) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, profile.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		respondDBError(c, err, "Failed to hash password")
		return
	}
	if err := config.DB.Model(&profile).UpdateColumn("password", hash).Error; err != nil {
		respondDBError(c, err, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
