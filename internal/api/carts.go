package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/model"
	"storefront/internal/validation"
)

// Reasons reported when a cart mutation is refused.
const (
	reasonOutOfStock     = "insufficient stock"
	reasonCouponMinTotal = "percentage coupons need a larger order total"
)

// getCart handles GET /api/carts/:session
func (h *handler) getCart(c *gin.Context) {
	ctx := c.Request.Context()

	view, err := h.carts.GetCart(ctx, c.Param("session"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// addToCart handles POST /api/carts/:session/items
func (h *handler) addToCart(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.AddToCartRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	applied, err := h.carts.AddToCart(ctx, c.Param("session"), req.ProductID)
	h.writeMutation(c, applied, err, http.StatusConflict, reasonOutOfStock)
}

// updateQuantity handles PATCH /api/carts/:session/items/:productId
func (h *handler) updateQuantity(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.UpdateQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	applied, err := h.carts.UpdateQuantity(ctx, c.Param("session"), c.Param("productId"), *req.Quantity)
	h.writeMutation(c, applied, err, http.StatusConflict, reasonOutOfStock)
}

// removeFromCart handles DELETE /api/carts/:session/items/:productId
func (h *handler) removeFromCart(c *gin.Context) {
	err := h.carts.RemoveFromCart(c.Request.Context(), c.Param("session"), c.Param("productId"))
	h.writeMutation(c, true, err, 0, "")
}

// applyCoupon handles PUT /api/carts/:session/coupon
func (h *handler) applyCoupon(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.ApplyCouponRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	applied, err := h.carts.ApplyCoupon(ctx, c.Param("session"), req.Code)
	h.writeMutation(c, applied, err, http.StatusUnprocessableEntity, reasonCouponMinTotal)
}

// removeCoupon handles DELETE /api/carts/:session/coupon
func (h *handler) removeCoupon(c *gin.Context) {
	err := h.carts.RemoveCoupon(c.Request.Context(), c.Param("session"))
	h.writeMutation(c, true, err, 0, "")
}

// completeOrder handles POST /api/carts/:session/checkout
func (h *handler) completeOrder(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.carts.CompleteOrder(ctx, c.Param("session"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// listOrders handles GET /api/carts/:session/orders
func (h *handler) listOrders(c *gin.Context) {
	ctx := c.Request.Context()

	orders, err := h.carts.ListOrders(ctx, c.Param("session"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// writeMutation answers a cart mutation with the resulting cart. A refused
// mutation gets rejectStatus and the reason alongside the unchanged cart.
func (h *handler) writeMutation(c *gin.Context, applied bool, err error, rejectStatus int, reason string) {
	ctx := c.Request.Context()
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	view, err := h.carts.GetCart(ctx, c.Param("session"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	result := model.MutationResult{Applied: applied, Cart: view}
	status := http.StatusOK
	if !applied {
		result.Reason = reason
		status = rejectStatus
	}
	c.JSON(status, result)
}
