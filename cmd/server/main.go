package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/api"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"
	"storefront/pkg/config"
	"storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/redis"
)

type repositories struct {
	products repository.ProductRepository
	coupons  repository.CouponRepository
	orders   repository.OrderRepository
	carts    repository.CartRepository
	tx       interface {
		WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "storefront"}).Error(context.Background(), "config.load", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":            cfg.App.Env,
		"catalog_driver": cfg.Store.CatalogDriver,
		"cart_driver":    cfg.Store.CartDriver,
	})

	repos, cleanup, err := openRepositories(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "storage.open", err)
		os.Exit(1)
	}
	defer cleanup()

	if cfg.App.SeedData {
		if err := service.SeedCatalog(ctx, repos.products, repos.coupons, logg); err != nil {
			logg.Error(ctx, "catalog.seed", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	queue := service.NewSerializer(storeMetrics)
	v := validation.New()

	cartSvc, err := service.NewCartService(service.CartServiceParams{
		Carts:                    repos.carts,
		Products:                 repos.products,
		Coupons:                  repos.coupons,
		Orders:                   repos.orders,
		Tx:                       repos.tx,
		Queue:                    queue,
		Metrics:                  storeMetrics,
		Logger:                   logg,
		PercentageCouponMinTotal: cfg.Pricing.PercentageCouponMinTotal,
	})
	if err != nil {
		logg.Error(ctx, "service.cart", err)
		os.Exit(1)
	}
	productSvc, err := service.NewProductService(repos.products, queue, v, logg)
	if err != nil {
		logg.Error(ctx, "service.product", err)
		os.Exit(1)
	}
	couponSvc, err := service.NewCouponService(repos.coupons, repos.carts, repos.tx, queue, v, logg)
	if err != nil {
		logg.Error(ctx, "service.coupon", err)
		os.Exit(1)
	}

	if cfg.App.IsProd() || os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.RouterConfig{
		Carts:     cartSvc,
		Products:  productSvc,
		Coupons:   couponSvc,
		Logger:    logg,
		Validator: v,
		Gatherer:  registry,
	})
	if err != nil {
		logg.Error(ctx, "router.build", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server.start")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server.listen", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info(ctx, "server.shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "server.shutdown", err)
	}

	logg.Info(ctx, "server.exited")
}

// openRepositories connects the configured drivers. The returned cleanup
// closes every connection that was opened.
func openRepositories(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*repositories, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos := &repositories{
		products: repository.NewMemoryProductRepository(),
		coupons:  repository.NewMemoryCouponRepository(),
		orders:   repository.NewMemoryOrderRepository(),
		carts:    repository.NewMemoryCartRepository(),
		tx:       database.NoTransaction{},
	}

	var mongoDB *database.MongoDB
	if cfg.UsesMongo() {
		var err error
		mongoDB, err = database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := mongoDB.Disconnect(context.Background()); err != nil {
				logg.Error(ctx, "mongo.disconnect", err)
			}
		})
		logg.Info(ctx, "mongo.connected")

		if cfg.Mongo.Transactions {
			repos.tx = database.NewUnitOfWork(mongoDB.Client)
		}
	}

	if strings.EqualFold(cfg.Store.CatalogDriver, config.DriverMongo) {
		repos.products = repository.NewProductRepository(mongoDB.Database)
		repos.coupons = repository.NewCouponRepository(mongoDB.Database)
		repos.orders = repository.NewOrderRepository(mongoDB.Database)
	}

	switch strings.ToLower(cfg.Store.CartDriver) {
	case config.DriverMongo:
		repos.carts = repository.NewCartRepository(mongoDB.Database)
	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
				logg.Error(ctx, "redis.close", err)
			}
		})
		logg.Info(ctx, "redis.connected")
		repos.carts = repository.NewRedisCartRepository(client, cfg.Redis.CartTTL)
	}

	return repos, cleanup, nil
}
