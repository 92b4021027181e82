package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/validation"
)

const soldOutLabel = "SOLD OUT"

// listProducts handles GET /api/products?q=&session=
// With a session, each product also carries the stock that session can still add.
func (h *handler) listProducts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.products.ListProducts(ctx, c.Query("q"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	var cart []model.CartItem
	if session := c.Query("session"); session != "" {
		view, err := h.carts.GetCart(ctx, session)
		if err != nil {
			writeError(ctx, h.log, c, err)
			return
		}
		cart = cartItems(view)
	}

	out := make([]model.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse(p, cart, c.Query("session") != ""))
	}
	c.JSON(http.StatusOK, out)
}

// listAdminProducts handles GET /api/admin/products
func (h *handler) listAdminProducts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.products.ListProducts(ctx, c.Query("q"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	out := make([]model.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, model.ProductResponse{
			Product:            p,
			DisplayPrice:       pricing.FormatAdminPrice(p.Price),
			MaxDiscountPercent: pricing.MaxDiscountPercent(p.Discounts),
			DiscountLabels:     pricing.FormatDiscountTiers(p.Discounts),
		})
	}
	c.JSON(http.StatusOK, out)
}

// getProduct handles GET /api/products/:id
func (h *handler) getProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := h.products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusOK, productResponse(*product, nil, false))
}

// createProduct handles POST /api/admin/products
func (h *handler) createProduct(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.CreateProductRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	product, err := h.products.CreateProduct(ctx, &req)
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// updateProduct handles PATCH /api/admin/products/:id
func (h *handler) updateProduct(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.UpdateProductRequest
	if err := validation.BindAndValidate(c, &req, h.validator); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}

	product, err := h.products.UpdateProduct(ctx, c.Param("id"), &req)
	if err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct handles DELETE /api/admin/products/:id
func (h *handler) deleteProduct(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.products.DeleteProduct(ctx, c.Param("id")); err != nil {
		writeError(ctx, h.log, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func productResponse(p model.Product, cart []model.CartItem, withStock bool) model.ProductResponse {
	resp := model.ProductResponse{
		Product:            p,
		DisplayPrice:       pricing.FormatPrice(p.Price),
		MaxDiscountPercent: pricing.MaxDiscountPercent(p.Discounts),
		DiscountLabels:     pricing.FormatDiscountTiers(p.Discounts),
	}
	if withStock {
		remaining := pricing.RemainingStock(p, cart)
		resp.RemainingStock = &remaining
		resp.SoldOut = remaining <= 0
	} else {
		resp.SoldOut = p.Stock <= 0
	}
	if resp.SoldOut {
		resp.DisplayPrice = soldOutLabel
	}
	return resp
}

func cartItems(view *model.CartView) []model.CartItem {
	items := make([]model.CartItem, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, model.CartItem{Product: line.Product, Quantity: line.Quantity})
	}
	return items
}
