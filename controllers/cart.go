package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gateworks-backend/cart"
	"gateworks-backend/utils"
)

type AddCartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

type SetQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartController struct {
	Service *cart.Service
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidCartID),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrInvalidQuantity):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	default:
		respondDBError(c, err, "Cart unavailable")
	}
}

func (cc *CartController) GetCart(c *gin.Context) {
	ct, err := cc.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

// AddItem defaults the quantity to one.
func (cc *CartController) AddItem(c *gin.Context) {
	var input AddCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	ct, err := cc.Service.Add(c.Request.Context(), c.Param("id"), cart.Item{
		ProductID: input.ProductID,
		Name:      input.Name,
		Slug:      input.Slug,
		Image:     input.Image,
		Quantity:  input.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (cc *CartController) SetQuantity(c *gin.Context) {
	var input SetQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ct, err := cc.Service.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("productId"), *input.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	ct, err := cc.Service.Remove(c.Request.Context(), c.Param("id"), c.Param("productId"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.Service.Clear(c.Request.Context(), c.Param("id")); err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
