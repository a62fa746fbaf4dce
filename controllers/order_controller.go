package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/middleware"
	"github.com/perfectism-co/easyBuy/services"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// Create places an order from raw product/coupon/shipping ids.
func (oc *OrderController) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	orderID, err := oc.orderService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": orderID})
}

// List returns the user's order history.
func (oc *OrderController) List(c *gin.Context) {
	orders, err := oc.orderService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order.
func (oc *OrderController) Get(c *gin.Context) {
	order, err := oc.orderService.Get(c.Request.Context(), middleware.UserID(c), c.Param("order_id"))
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Update rewrites an order's items, shipping and coupon in place.
func (oc *OrderController) Update(c *gin.Context) {
	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := oc.orderService.Update(c.Request.Context(), middleware.UserID(c), c.Param("order_id"), req); err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

// Delete removes an order from the history.
func (oc *OrderController) Delete(c *gin.Context) {
	if err := oc.orderService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("order_id")); err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
