package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"gateworks-backend/storage"
)

type downStore struct{ *storage.MemoryStore }

func (downStore) Ping(ctx context.Context) error { return errors.New("bucket unreachable") }

func TestHealthCheck(t *testing.T) {
	setupTestDB(t)

	hc := &HealthController{Store: storage.NewMemoryStore("images", "")}
	r := gin.New()
	r.GET("/health", hc.Check)

	w := performJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"healthy":true,"checks":{"database":"ok","storage":"ok"}}`, w.Body.String())

	hc.Store = downStore{storage.NewMemoryStore("images", "")}
	w = performJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "bucket unreachable")
}
