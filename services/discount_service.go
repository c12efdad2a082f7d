package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultEligibleCategory is the only category whose lines count toward
// discount minimums and amounts.
const DefaultEligibleCategory = "beds"

type DiscountService struct {
	store            DiscountStore
	pricing          *PricingService
	eligibleCategory string
	currency         string
	now              func() time.Time
	log              *zap.Logger
}

func NewDiscountService(store DiscountStore, pricing *PricingService, eligibleCategory, currency string, log *zap.Logger) *DiscountService {
	if eligibleCategory == "" {
		eligibleCategory = DefaultEligibleCategory
	}
	return &DiscountService{
		store:            store,
		pricing:          pricing,
		eligibleCategory: eligibleCategory,
		currency:         currency,
		now:              time.Now,
		log:              log,
	}
}

// Eligibility sums the eligible category's lines: their subtotal and their
// unit count.
func (s *DiscountService) Eligibility(cart models.Cart) models.Eligibility {
	e := models.Eligibility{Subtotal: decimal.Zero}
	for _, line := range cart.Lines {
		if !strings.EqualFold(line.Product.CategoryID, s.eligibleCategory) {
			continue
		}
		unit := s.pricing.UnitPrice(line.Product, line.Selection)
		e.Subtotal = e.Subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		e.Units += line.Quantity
	}
	return e
}

// Evaluate runs the rule chain against an already fetched code. The first
// failing rule decides the error. The amount is not clamped here.
func (s *DiscountService) Evaluate(code *models.DiscountCode, e models.Eligibility, now time.Time) models.DiscountResult {
	if code == nil || !code.Active {
		return reject(MsgInvalidCode)
	}
	if code.Expired(now) {
		return reject(MsgExpired)
	}
	if code.Exhausted() {
		return reject(MsgUsageLimit)
	}
	// A cart with nothing eligible is rejected even when the minimum is zero.
	if !e.Subtotal.IsPositive() || e.Subtotal.LessThan(code.MinOrderAmount) {
		return reject(MsgMinimumOrderNot)
	}

	applied := &models.AppliedDiscount{
		Code:  models.NormalizeCode(code.Code),
		Type:  code.Type,
		Value: code.Value,
	}
	switch code.Type {
	case models.DiscountPercentage:
		applied.DiscountAmount = RoundCurrency(e.Subtotal.Mul(code.Value).Div(decimal.NewFromInt(100)))
		applied.Message = fmt.Sprintf("%s%% off eligible items", code.Value.String())
	case models.DiscountFixed:
		applied.DiscountAmount = RoundCurrency(code.Value.Mul(decimal.NewFromInt(int64(e.Units))))
		applied.Message = fmt.Sprintf("%s off per item x %d", s.formatMoney(code.Value), e.Units)
	default:
		return reject(MsgInvalidCode)
	}
	return models.DiscountResult{Valid: true, Applied: applied}
}

// Validate looks the code up and evaluates it against the cart's eligible
// lines. Only lookup failures are returned as errors.
func (s *DiscountService) Validate(ctx context.Context, code string, cart models.Cart) (models.DiscountResult, error) {
	normalized := models.NormalizeCode(code)
	if normalized == "" {
		return reject(MsgInvalidCode), nil
	}
	dc, err := s.store.FetchDiscountByCode(ctx, normalized)
	if err != nil {
		return models.DiscountResult{}, errors.Wrap(err, "fetch discount")
	}
	return s.Evaluate(dc, s.Eligibility(cart), s.now()), nil
}

func (s *DiscountService) FindAutoApply(ctx context.Context) (*models.DiscountCode, error) {
	dc, err := s.store.FindAutoApplyCode(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find auto-apply discount")
	}
	return dc, nil
}

// ApplyCode validates a manually entered code and, when valid, records it on
// the returned cart.
func (s *DiscountService) ApplyCode(ctx context.Context, cart models.Cart, code string) (models.Cart, models.DiscountResult, error) {
	res, err := s.Validate(ctx, code, cart)
	if err != nil || !res.Valid {
		return cart, res, err
	}
	out := cart.Clone()
	out.DiscountCode = res.Applied.Code
	out.DiscountSource = models.DiscountSourceManual
	out.Version++
	return out, res, nil
}

// RemoveCode drops the cart's code. Auto-apply stays off for this cart
// until it is cleared.
func (s *DiscountService) RemoveCode(cart models.Cart) models.Cart {
	if cart.DiscountCode == "" && cart.AutoApplyDismissed {
		return cart
	}
	out := cart.Clone()
	out.DiscountCode = ""
	out.DiscountSource = ""
	out.AutoApplyDismissed = true
	out.Version++
	return out
}

// AutoApply tries the store's auto-apply code when the cart has no code yet,
// the shopper has not dismissed discounts and the subtotal is non-zero.
// Failures are silent: the cart comes back unchanged.
func (s *DiscountService) AutoApply(ctx context.Context, cart models.Cart, subtotal decimal.Decimal) models.Cart {
	if cart.DiscountCode != "" || cart.AutoApplyDismissed || !subtotal.IsPositive() {
		return cart
	}
	dc, err := s.FindAutoApply(ctx)
	if err != nil {
		s.log.Warn("auto-apply lookup failed", zap.Error(err))
		return cart
	}
	if dc == nil || !dc.AutoApply {
		return cart
	}
	res := s.Evaluate(dc, s.Eligibility(cart), s.now())
	if !res.Valid {
		s.log.Debug("auto-apply code not eligible", zap.String("code", dc.Code), zap.String("reason", res.Error))
		return cart
	}
	out := cart.Clone()
	out.DiscountCode = res.Applied.Code
	out.DiscountSource = models.DiscountSourceAuto
	out.Version++
	return out
}

// ClampToEligible caps an applied discount at the cart's eligible subtotal.
// A capped discount says so in its message.
func (s *DiscountService) ClampToEligible(applied models.AppliedDiscount, cart models.Cart) models.AppliedDiscount {
	eligible := s.Eligibility(cart).Subtotal
	if applied.DiscountAmount.GreaterThan(eligible) {
		applied.DiscountAmount = eligible
		note := "capped at " + s.formatMoney(eligible)
		if applied.Message != "" {
			note = applied.Message + " (" + note + ")"
		}
		applied.Message = note
	}
	if applied.DiscountAmount.IsNegative() {
		applied.DiscountAmount = decimal.Zero
	}
	return applied
}

func (s *DiscountService) formatMoney(v decimal.Decimal) string {
	return FormatMoney(s.currency, v)
}

func reject(msg string) models.DiscountResult {
	return models.DiscountResult{Valid: false, Error: msg}
}

var currencySymbols = map[string]string{"GBP": "£", "EUR": "€", "USD": "$"}

// FormatMoney renders an amount with two decimals and the currency symbol
// when one is known.
func FormatMoney(currency string, v decimal.Decimal) string {
	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return sym + v.StringFixed(2)
	}
	if currency == "" {
		return v.StringFixed(2)
	}
	return strings.ToUpper(currency) + " " + v.StringFixed(2)
}
