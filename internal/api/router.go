package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/model"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

type cartService interface {
	GetCart(ctx context.Context, sessionID string) (*model.CartView, error)
	AddToCart(ctx context.Context, sessionID, productID string) (bool, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) error
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (bool, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (bool, error)
	RemoveCoupon(ctx context.Context, sessionID string) error
	CompleteOrder(ctx context.Context, sessionID string) (*model.Order, error)
	ListOrders(ctx context.Context, sessionID string) ([]*model.Order, error)
}

type productService interface {
	ListProducts(ctx context.Context, search string) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type couponService interface {
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
}

// RouterConfig groups dependencies for the HTTP API.
type RouterConfig struct {
	Carts     cartService
	Products  productService
	Coupons   couponService
	Logger    *logger.Logger
	Validator *validatorv10.Validate
	// Gatherer backs /metrics; nil leaves the endpoint off.
	Gatherer prometheus.Gatherer
}

type handler struct {
	carts     cartService
	products  productService
	coupons   couponService
	log       *logger.Logger
	validator *validatorv10.Validate
}

// NewRouter builds the gin engine with every storefront route registered.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Carts == nil || cfg.Products == nil || cfg.Coupons == nil {
		return nil, fmt.Errorf("cart, product and coupon services are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Validator == nil {
		cfg.Validator = validation.New()
	}

	h := &handler{
		carts:     cfg.Carts,
		products:  cfg.Products,
		coupons:   cfg.Coupons,
		log:       cfg.Logger,
		validator: cfg.Validator,
	}

	router := gin.New()
	router.Use(RequestID(cfg.Logger), Logging(cfg.Logger), Recoverer(cfg.Logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/coupons", h.listCoupons)

		carts := api.Group("/carts/:session")
		carts.GET("", h.getCart)
		carts.POST("/items", h.addToCart)
		carts.PATCH("/items/:productId", h.updateQuantity)
		carts.DELETE("/items/:productId", h.removeFromCart)
		carts.PUT("/coupon", h.applyCoupon)
		carts.DELETE("/coupon", h.removeCoupon)
		carts.POST("/checkout", h.completeOrder)
		carts.GET("/orders", h.listOrders)
	}

	admin := router.Group("/api/admin")
	{
		admin.GET("/products", h.listAdminProducts)
		admin.POST("/products", h.createProduct)
		admin.PATCH("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/coupons", h.createCoupon)
		admin.DELETE("/coupons/:code", h.deleteCoupon)
	}

	return router, nil
}
