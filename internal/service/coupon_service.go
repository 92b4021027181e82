package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/validation"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// CouponService handles business logic for the coupon catalog
type CouponService struct {
	coupons   repository.CouponRepository
	carts     repository.CartRepository
	tx        txRunner
	queue     *Serializer
	validator *validatorv10.Validate
	log       *logger.Logger
	now       func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons repository.CouponRepository, carts repository.CartRepository, tx txRunner, queue *Serializer, v *validatorv10.Validate, log *logger.Logger) (*CouponService, error) {
	if coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if queue == nil {
		return nil, fmt.Errorf("serializer required")
	}
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CouponService{
		coupons:   coupons,
		carts:     carts,
		tx:        tx,
		queue:     queue,
		validator: v,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *CouponService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.coupons.ListCoupons(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

// CreateCoupon adds a coupon. A taken code returns ErrCouponAlreadyExists.
func (s *CouponService) CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	if req.DiscountType == model.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount must be between 0 and 100").
			WithDetails(map[string]string{"CreateCouponRequest.DiscountValue": "lte"})
	}

	coupon := &model.Coupon{
		Code:          req.Code,
		Name:          strings.TrimSpace(req.Name),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		CreatedAt:     s.now().UTC(),
	}

	err := s.queue.Do(ctx, couponCatalogKey, func(ctx context.Context) error {
		return s.coupons.CreateCoupon(ctx, coupon)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "coupon_code", coupon.Code), "coupon created")
	return coupon, nil
}

// DeleteCoupon removes the coupon and unselects it from every cart.
func (s *CouponService) DeleteCoupon(ctx context.Context, code string) error {
	var cleared int64
	err := s.queue.Do(ctx, couponCatalogKey, func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.coupons.DeleteCoupon(ctx, code); err != nil {
				return err
			}
			n, err := s.carts.ClearCouponSelection(ctx, code)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear coupon selections")
			}
			cleared = n
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"coupon_code":    code,
		"carts_affected": cleared,
	}), "coupon deleted")
	return nil
}
