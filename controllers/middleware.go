package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gateworks-backend/models"
	"gateworks-backend/utils"
)

// RequireCapability must run after the auth middleware.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(utils.ContextRole)
		if !ok {
			utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
			return
		}
		r, ok := role.(int)
		if !ok || !models.Role(r).Can(capability) {
			utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
