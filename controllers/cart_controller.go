package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/middleware"
	"github.com/perfectism-co/easyBuy/services"
)

type AddItemsRequest struct {
	Items []services.AddItemInput `json:"items" binding:"required,dive"`
}

type RemoveItemsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart returns the current cart.
func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.cartService.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItems merges a batch of items into the cart.
func (cc *CartController) AddItems(c *gin.Context) {
	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := cc.cartService.AddItems(c.Request.Context(), middleware.UserID(c), req.Items)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItems deletes the listed products from the cart.
func (cc *CartController) RemoveItems(c *gin.Context) {
	var req RemoveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	removed, err := cc.cartService.RemoveItems(c.Request.Context(), middleware.UserID(c), req.ProductIDs)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// SetQuantity overwrites the quantity of one cart item.
func (cc *CartController) SetQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cart, err := cc.cartService.SetQuantity(c.Request.Context(), middleware.UserID(c), c.Param("product_id"), req.Quantity)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
