package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gateworks-backend/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondLookupError maps a failed First() to 404 or a generic 500.
func respondLookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	zap.S().Errorw("database error", "path", c.FullPath(), "error", err)
	utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
}

func respondDBError(c *gin.Context, err error, message string) {
	zap.S().Errorw(message, "path", c.FullPath(), "error", err)
	utils.RespondWithError(c, http.StatusInternalServerError, message)
}

// listScope applies the ?q= name filter, newest-first ordering and
// ?limit=/&offset= to table.
func listScope(c *gin.Context, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			db = db.Where("LOWER("+table+".name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		limit := defaultPageSize
		if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
			limit = min(n, maxPageSize)
		}
		offset := 0
		if n, err := strconv.Atoi(c.Query("offset")); err == nil && n > 0 {
			offset = n
		}
		return db.Order(table + ".created_at DESC").Limit(limit).Offset(offset)
	}
}

func resolveSlug(slug, name string) string {
	if s := utils.Slugify(slug); s != "" {
		return s
	}
	return utils.Slugify(name)
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
