package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/validation"
	"storefront/pkg/database"
	"storefront/pkg/logger"
)

type testEnv struct {
	router   *gin.Engine
	products repository.ProductRepository
	carts    repository.CartRepository
}

// newTestEnv wires the full stack on in-memory repositories with the starter
// catalog plus any extra products.
func newTestEnv(t *testing.T, extra ...model.Product) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	products := repository.NewMemoryProductRepository()
	coupons := repository.NewMemoryCouponRepository()
	carts := repository.NewMemoryCartRepository()
	orders := repository.NewMemoryOrderRepository()
	require.NoError(t, service.SeedCatalog(ctx, products, coupons, logger.Nop()))
	for _, p := range extra {
		require.NoError(t, products.CreateProduct(ctx, &p))
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)
	queue := service.NewSerializer(m)
	v := validation.New()
	log := logger.Nop()

	cartSvc, err := service.NewCartService(service.CartServiceParams{
		Carts:                    carts,
		Products:                 products,
		Coupons:                  coupons,
		Orders:                   orders,
		Tx:                       database.NoTransaction{},
		Queue:                    queue,
		Metrics:                  m,
		Logger:                   log,
		PercentageCouponMinTotal: pricing.DefaultPercentageCouponMinTotal,
	})
	require.NoError(t, err)
	productSvc, err := service.NewProductService(products, queue, v, log)
	require.NoError(t, err)
	couponSvc, err := service.NewCouponService(coupons, carts, database.NoTransaction{}, queue, v, log)
	require.NoError(t, err)

	router, err := NewRouter(RouterConfig{
		Carts:     cartSvc,
		Products:  productSvc,
		Coupons:   couponSvc,
		Logger:    log,
		Validator: v,
		Gatherer:  reg,
	})
	require.NoError(t, err)

	return &testEnv{router: router, products: products, carts: carts}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// waitForServer waits for the server to be ready
func waitForServer(baseURL string, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return context.DeadlineExceeded
}
