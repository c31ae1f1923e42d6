package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gateworks-backend/config"
	"gateworks-backend/models"
	"gateworks-backend/utils"
)

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController issues and clears session tokens.
type AuthController struct {
	JWT          *utils.JWTManager
	SecureCookie bool
}

func profileJSON(p models.Profile) gin.H {
	return gin.H{
		"id":        p.ID,
		"email":     p.Email,
		"full_name": p.FullName,
		"phone":     p.Phone,
		"avatar":    p.Avatar,
		"role":      p.Role.String(),
	}
}

func (ac *AuthController) startSession(c *gin.Context, p models.Profile, status int, message string) {
	token, err := ac.JWT.GenerateToken(p.ID.String(), int(p.Role))
	if err != nil {
		respondDBError(c, err, "Failed to generate token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookie, token, int(ac.JWT.Expiry().Seconds()), "/", "", ac.SecureCookie, true)
	c.JSON(status, gin.H{
		"message": message,
		"token":   token,
		"user":    profileJSON(p),
	})
}

// SignUp always creates a customer profile; admins are promoted out of band.
func (ac *AuthController) SignUp(c *gin.Context) {
	var input SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.Profile
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(c, err, "Database error")
		return
	}

	profile := models.Profile{
		Email:    email,
		FullName: strings.TrimSpace(input.FullName),
		Phone:    normalizeContact(&input.Phone),
		Role:     models.RoleCustomer,
	}
	if profile.Phone != nil && !utils.ValidatePhone(*profile.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		respondDBError(c, err, "Failed to hash password")
		return
	}
	profile.Password = hash

	if err := config.DB.Create(&profile).Error; err != nil {
		respondDBError(c, err, "Failed to create user")
		return
	}

	ac.startSession(c, profile, http.StatusCreated, "Registration successful")
}

func (ac *AuthController) SignIn(c *gin.Context) {
	var input SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var profile models.Profile
	err := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			respondDBError(c, err, "Database error")
		}
		return
	}
	if !utils.CheckPasswordHash(input.Password, profile.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ac.startSession(c, profile, http.StatusOK, "Signed in")
}

func (ac *AuthController) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookie, "", -1, "/", "", ac.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func currentProfile(c *gin.Context) (models.Profile, bool) {
	var profile models.Profile
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return profile, false
	}
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		} else {
			respondDBError(c, err, "Database error")
		}
		return profile, false
	}
	return profile, true
}

func (ac *AuthController) Me(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profileJSON(profile)})
}
