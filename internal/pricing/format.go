package pricing

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"storefront/internal/model"
)

var printer = message.NewPrinter(language.Korean)

// FormatPrice renders a shopper-facing price, e.g. "₩10,000".
func FormatPrice(price int64) string {
	return printer.Sprintf("₩%d", price)
}

// FormatAdminPrice renders an admin-facing price, e.g. "10,000원".
func FormatAdminPrice(price int64) string {
	return printer.Sprintf("%d원", price)
}

func FormatPercent(percent int64) string {
	return printer.Sprintf("%d%%", percent)
}

// FormatDiscountRate renders a fractional rate, e.g. 0.1 as "10% 할인".
func FormatDiscountRate(rate decimal.Decimal) string {
	return FormatPercent(roundHalfUp(rate.Mul(oneHundred))) + " 할인"
}

// FormatDiscountTier renders a tier as "10개 이상 10% 할인".
func FormatDiscountTier(tier model.Discount) string {
	return printer.Sprintf("%d개 이상 ", tier.Quantity) + FormatDiscountRate(decimal.NewFromFloat(tier.Rate))
}

// FormatDiscountTiers labels every tier, smallest threshold first.
func FormatDiscountTiers(tiers []model.Discount) []string {
	sorted := slices.Clone(tiers)
	slices.SortStableFunc(sorted, func(a, b model.Discount) int {
		return cmp.Compare(a.Quantity, b.Quantity)
	})
	labels := make([]string, 0, len(sorted))
	for _, tier := range sorted {
		labels = append(labels, FormatDiscountTier(tier))
	}
	return labels
}

func FormatCouponDiscount(coupon model.Coupon) string {
	if coupon.DiscountType == model.DiscountTypeAmount {
		return FormatAdminPrice(coupon.DiscountValue) + " 할인"
	}
	return FormatPercent(coupon.DiscountValue) + " 할인"
}
