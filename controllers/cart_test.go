package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateworks-backend/cart"
)

func cartRouter() *gin.Engine {
	cc := &CartController{Service: cart.NewService(cart.NewMemoryStore())}
	r := gin.New()
	g := r.Group("/cart/:id")
	g.GET("", cc.GetCart)
	g.POST("/items", cc.AddItem)
	g.PUT("/items/:productId", cc.SetQuantity)
	g.DELETE("/items/:productId", cc.RemoveItem)
	g.DELETE("", cc.ClearCart)
	return r
}

func TestCartFlow(t *testing.T) {
	r := cartRouter()

	w := performJSON(r, http.MethodGet, "/cart/abc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(r, http.MethodPost, "/cart/abc/items", gin.H{"product_id": "p1", "name": "Motor"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = performJSON(r, http.MethodPost, "/cart/abc/items", gin.H{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	var got cart.Cart
	parseResponse(t, w, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	w = performJSON(r, http.MethodPut, "/cart/abc/items/p1", gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code)
	parseResponse(t, w, &got)
	assert.Equal(t, 5, got.TotalQuantity())

	w = performJSON(r, http.MethodDelete, "/cart/abc/items/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	parseResponse(t, w, &got)
	assert.Empty(t, got.Items)

	w = performJSON(r, http.MethodDelete, "/cart/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartErrors(t *testing.T) {
	r := cartRouter()

	tests := []struct {
		name, method, path string
		body               gin.H
		want               int
	}{
		{"missing product", http.MethodPost, "/cart/abc/items", gin.H{"quantity": 1}, http.StatusBadRequest},
		{"negative add", http.MethodPost, "/cart/abc/items", gin.H{"product_id": "p1", "quantity": -1}, http.StatusBadRequest},
		{"unknown item", http.MethodPut, "/cart/abc/items/p9", gin.H{"quantity": 1}, http.StatusNotFound},
		{"negative quantity", http.MethodPut, "/cart/abc/items/p9", gin.H{"quantity": -1}, http.StatusBadRequest},
		{"quantity required", http.MethodPut, "/cart/abc/items/p9", gin.H{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
