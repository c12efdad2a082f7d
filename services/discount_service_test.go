package services

import (
	"context"
	"testing"
	"time"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func save10() models.DiscountCode {
	return models.DiscountCode{
		Code:           "SAVE10",
		Type:           models.DiscountFixed,
		Value:          d("10"),
		MinOrderAmount: d("100"),
		Active:         true,
	}
}

func percent15() models.DiscountCode {
	return models.DiscountCode{
		Code:   "BEDS15",
		Type:   models.DiscountPercentage,
		Value:  d("15"),
		Active: true,
	}
}

// twoBedLines builds the 1 + 2 bed cart used by the fixed-discount scenario,
// with an eligible subtotal of £1200.
func twoBedLines(t *testing.T, env *testEnv) models.Cart {
	t.Helper()
	a := bedProduct()
	a.ID, a.Slug, a.BasePrice, a.DiscountPercentage = "bed-a", "bed-a", d("600"), d("0")
	b := bedProduct()
	b.ID, b.Slug, b.BasePrice, b.DiscountPercentage = "bed-b", "bed-b", d("300"), d("0")

	cart, err := env.carts.AddToCart(models.Cart{}, a, 1, models.Selection{})
	require.NoError(t, err)
	cart, err = env.carts.AddToCart(cart, b, 2, models.Selection{})
	require.NoError(t, err)
	return cart
}

func TestFixedDiscountMultipliesByEligibleUnits(t *testing.T) {
	env := newTestEnv(save10())
	cart := twoBedLines(t, env)

	e := env.discounts.Eligibility(cart)
	assert.Equal(t, 3, e.Units)
	assert.True(t, d("1200").Equal(e.Subtotal))

	res, err := env.discounts.Validate(context.Background(), "save10", cart)
	require.NoError(t, err)
	require.True(t, res.Valid, res.Error)
	assert.True(t, d("30").Equal(res.Applied.DiscountAmount), "got %s", res.Applied.DiscountAmount)
	assert.Equal(t, "SAVE10", res.Applied.Code)
	assert.Equal(t, "£10.00 off per item x 3", res.Applied.Message)
}

func TestPercentageDiscountOnEligibleSubtotalOnly(t *testing.T) {
	env := newTestEnv(percent15())
	cart := twoBedLines(t, env)
	cart, err := env.carts.AddToCart(cart, mattressProduct(), 1, models.Selection{})
	require.NoError(t, err)

	res, err := env.discounts.Validate(context.Background(), "BEDS15", cart)
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.True(t, d("180").Equal(res.Applied.DiscountAmount), "got %s", res.Applied.DiscountAmount)
}

func TestMattressOnlyCartIsIneligible(t *testing.T) {
	code := percent15()
	code.MinOrderAmount = d("0")
	env := newTestEnv(code)

	cart, err := env.carts.AddToCart(models.Cart{}, mattressProduct(), 3, models.Selection{})
	require.NoError(t, err)

	res, err := env.discounts.Validate(context.Background(), code.Code, cart)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgMinimumOrderNot, res.Error)
}

func TestDiscountRuleChain(t *testing.T) {
	eligible := models.Eligibility{Subtotal: d("1200"), Units: 3}
	past := fixedNow.Add(-time.Hour)

	tests := []struct {
		name   string
		code   *models.DiscountCode
		e      models.Eligibility
		errMsg string
	}{
		{"unknown code", nil, eligible, MsgInvalidCode},
		{"inactive code", func() *models.DiscountCode { c := save10(); c.Active = false; return &c }(), eligible, MsgInvalidCode},
		{"expired code", func() *models.DiscountCode { c := save10(); c.ExpiresAt = timePtr(past); return &c }(), eligible, MsgExpired},
		{"expires exactly now", func() *models.DiscountCode { c := save10(); c.ExpiresAt = timePtr(fixedNow); return &c }(), eligible, MsgExpired},
		{"usage exhausted", func() *models.DiscountCode { c := save10(); c.MaxUses = intPtr(5); c.UsedCount = 5; return &c }(), eligible, MsgUsageLimit},
		{"below minimum", func() *models.DiscountCode { c := save10(); return &c }(), models.Eligibility{Subtotal: d("99.99"), Units: 1}, MsgMinimumOrderNot},
		{"expired wins over minimum", func() *models.DiscountCode { c := save10(); c.ExpiresAt = timePtr(past); return &c }(), models.Eligibility{}, MsgExpired},
	}
	env := newTestEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.discounts.Evaluate(tt.code, tt.e, fixedNow)
			assert.False(t, res.Valid)
			assert.Nil(t, res.Applied)
			assert.Equal(t, tt.errMsg, res.Error)
		})
	}
}

func TestDiscountAcceptedAtMinimumAndBeforeExpiry(t *testing.T) {
	c := save10()
	c.ExpiresAt = timePtr(fixedNow.Add(time.Minute))
	c.MaxUses = intPtr(5)
	c.UsedCount = 4

	env := newTestEnv()
	res := env.discounts.Evaluate(&c, models.Eligibility{Subtotal: d("100"), Units: 1}, fixedNow)
	require.True(t, res.Valid, res.Error)
	assert.True(t, d("10").Equal(res.Applied.DiscountAmount))
}

func TestValidatePropagatesLookupFailure(t *testing.T) {
	env := newTestEnv()
	env.codes.err = errors.New("connection refused")

	_, err := env.discounts.Validate(context.Background(), "SAVE10", models.Cart{})
	assert.Error(t, err)
}

func TestValidateBlankCode(t *testing.T) {
	env := newTestEnv()
	res, err := env.discounts.Validate(context.Background(), "   ", models.Cart{})
	require.NoError(t, err)
	assert.Equal(t, MsgInvalidCode, res.Error)
}

func TestApplyAndRemoveCode(t *testing.T) {
	env := newTestEnv(save10())
	cart := twoBedLines(t, env)

	applied, res, err := env.discounts.ApplyCode(context.Background(), cart, " save10 ")
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, "SAVE10", applied.DiscountCode)
	assert.Equal(t, models.DiscountSourceManual, applied.DiscountSource)
	assert.Equal(t, cart.Version+1, applied.Version)

	removed := env.discounts.RemoveCode(applied)
	assert.Empty(t, removed.DiscountCode)
	assert.True(t, removed.AutoApplyDismissed)

	rejected, res, err := env.discounts.ApplyCode(context.Background(), cart, "NOPE")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, cart, rejected)
}

func TestAutoApply(t *testing.T) {
	auto := percent15()
	auto.Code = "WELCOME"
	auto.AutoApply = true
	env := newTestEnv(auto)
	ctx := context.Background()
	cart := twoBedLines(t, env)
	subtotal := env.carts.Summarize(cart).Subtotal

	out := env.discounts.AutoApply(ctx, cart, subtotal)
	assert.Equal(t, "WELCOME", out.DiscountCode)
	assert.Equal(t, models.DiscountSourceAuto, out.DiscountSource)

	t.Run("not over an existing code", func(t *testing.T) {
		withCode := cart
		withCode.DiscountCode = "SAVE10"
		assert.Equal(t, withCode, env.discounts.AutoApply(ctx, withCode, subtotal))
	})

	t.Run("not after the shopper removed a code", func(t *testing.T) {
		dismissed := env.discounts.RemoveCode(out)
		assert.Equal(t, dismissed, env.discounts.AutoApply(ctx, dismissed, subtotal))
	})

	t.Run("not on an empty cart", func(t *testing.T) {
		assert.Equal(t, models.Cart{}, env.discounts.AutoApply(ctx, models.Cart{}, d("0")))
	})

	t.Run("silent when ineligible", func(t *testing.T) {
		mattressOnly, err := env.carts.AddToCart(models.Cart{}, mattressProduct(), 1, models.Selection{})
		require.NoError(t, err)
		got := env.discounts.AutoApply(ctx, mattressOnly, env.carts.Summarize(mattressOnly).Subtotal)
		assert.Empty(t, got.DiscountCode)
	})

	t.Run("silent on lookup failure", func(t *testing.T) {
		env.codes.err = errors.New("timeout")
		defer func() { env.codes.err = nil }()
		assert.Equal(t, cart, env.discounts.AutoApply(ctx, cart, subtotal))
	})
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "£10.00", FormatMoney("GBP", d("10")))
	assert.Equal(t, "€5.50", FormatMoney("eur", d("5.5")))
	assert.Equal(t, "CHF 3.00", FormatMoney("CHF", d("3")))
	assert.Equal(t, "7.25", FormatMoney("", d("7.25")))
}

func TestClampToEligible(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()
	p.BasePrice, p.DiscountPercentage = d("25"), d("0")
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{})
	require.NoError(t, err)

	capped := env.discounts.ClampToEligible(models.AppliedDiscount{
		Code: "SAVE10", DiscountAmount: d("30"), Message: "£10.00 off per item x 3",
	}, cart)
	assert.True(t, d("25").Equal(capped.DiscountAmount))
	assert.Equal(t, "£10.00 off per item x 3 (capped at £25.00)", capped.Message)

	within := env.discounts.ClampToEligible(models.AppliedDiscount{
		Code: "SAVE10", DiscountAmount: d("10"), Message: "£10.00 off per item x 1",
	}, cart)
	assert.True(t, d("10").Equal(within.DiscountAmount))
	assert.Equal(t, "£10.00 off per item x 1", within.Message)
}
