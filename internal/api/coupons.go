package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/validation"
)

// listCoupons handles GET /api/coupons
func (h *handler) listCoupons(c *gin.Context) {
	ctx := c.Request.Context()

	coupons, err := h.coupons.ListCoupons(ctx)
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	out := make([]model.CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, model.CouponResponse{Coupon: coupon, Label: pricing.FormatCouponDiscount(coupon)})
	}
	c.JSON(http.StatusOK, out)
}

// createCoupon handles POST /api/admin/coupons
func (h *handler) createCoupon(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.CreateCouponRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	coupon, err := h.coupons.CreateCoupon(ctx, &req)
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// deleteCoupon handles DELETE /api/admin/coupons/:code
func (h *handler) deleteCoupon(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.coupons.DeleteCoupon(ctx, c.Param("code")); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
