package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type DiscountCode struct {
	Code           string          `json:"code"`
	Type           DiscountType    `json:"type"`
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxUses        *int            `json:"max_uses,omitempty"`
	UsedCount      int             `json:"used_count"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	Active         bool            `json:"active"`
	AutoApply      bool            `json:"auto_apply"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (d DiscountCode) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

func (d DiscountCode) Exhausted() bool {
	return d.MaxUses != nil && d.UsedCount >= *d.MaxUses
}

// Usable reports whether the code may be redeemed at all, independent of
// any cart.
func (d DiscountCode) Usable(now time.Time) bool {
	return d.Active && !d.Expired(now) && !d.Exhausted()
}

// AppliedDiscount is computed against a specific eligible subtotal and is
// never trusted across requests.
type AppliedDiscount struct {
	Code           string          `json:"code"`
	Type           DiscountType    `json:"type"`
	Value          decimal.Decimal `json:"value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message"`
}

type DiscountResult struct {
	Valid   bool             `json:"valid"`
	Error   string           `json:"error,omitempty"`
	Applied *AppliedDiscount `json:"applied,omitempty"`
}

// Eligibility is the slice of a cart that discount rules see.
type Eligibility struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Units    int             `json:"units"`
}
