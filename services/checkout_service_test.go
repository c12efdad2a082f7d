package services

import (
	"context"
	"testing"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shopper() models.ShippingDetails {
	return models.ShippingDetails{
		Email:        "sam@example.com",
		FullName:     "Sam Taylor",
		AddressLine1: "1 High Street",
		City:         "Leeds",
		Postcode:     "LS1 1AA",
	}
}

func TestAssembleOrderEmptyCart(t *testing.T) {
	env := newTestEnv()
	_, err := env.checkout.AssembleOrder(models.Cart{}, nil, shopper())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestAssembleOrderTotals(t *testing.T) {
	env := newTestEnv(save10())
	cart := twoBedLines(t, env)
	cart, err := env.carts.AddToCart(cart, mattressProduct(), 1, models.Selection{})
	require.NoError(t, err)

	res, err := env.discounts.Validate(context.Background(), "SAVE10", cart)
	require.NoError(t, err)
	require.True(t, res.Valid)

	intent, err := env.checkout.AssembleOrder(cart, res.Applied, shopper())
	require.NoError(t, err)

	require.Len(t, intent.Lines, 3)
	assert.Equal(t, "GBP", intent.Currency)
	assert.True(t, d("1500").Equal(intent.Subtotal), "subtotal %s", intent.Subtotal)
	assert.True(t, intent.Shipping.IsZero())
	require.NotNil(t, intent.Discount)
	assert.True(t, d("30").Equal(intent.Discount.DiscountAmount))
	assert.True(t, d("1470").Equal(intent.Total), "total %s", intent.Total)
	assert.Equal(t, "sam@example.com", intent.Customer.Email)
}

func TestAssembleOrderClampsDiscountToEligibleSubtotal(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()
	p.BasePrice, p.DiscountPercentage = d("20"), d("0")
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{})
	require.NoError(t, err)

	applied := &models.AppliedDiscount{Code: "BIG", Type: models.DiscountFixed, Value: d("50"), DiscountAmount: d("50")}
	intent, err := env.checkout.AssembleOrder(cart, applied, shopper())
	require.NoError(t, err)

	assert.True(t, d("20").Equal(intent.Discount.DiscountAmount))
	assert.Equal(t, "capped at £20.00", intent.Discount.Message)
	assert.True(t, d("39").Equal(intent.Total), "only shipping remains, got %s", intent.Total)
	assert.True(t, d("50").Equal(applied.DiscountAmount), "input left untouched")
}

func TestAssembleOrderLineImages(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()

	tests := []struct {
		name string
		sel  models.Selection
		prod func(models.Product) models.Product
		want string
	}{
		{"selected color image", models.Selection{Color: &p.Colors[0]}, nil, "https://cdn.example.com/beds/oslo-grey.jpg"},
		{"selected color product shot", models.Selection{Color: &p.Colors[1]}, nil, "https://cdn.example.com/beds/oslo-navy-1.jpg"},
		{"default color when selected has none", models.Selection{Color: &p.Colors[2]}, nil, "https://cdn.example.com/beds/oslo-grey.jpg"},
		{"first product image", models.Selection{}, func(p models.Product) models.Product { p.Colors = nil; return p }, "https://cdn.example.com/beds/oslo-main.jpg"},
		{"no image at all", models.Selection{}, func(p models.Product) models.Product { p.Colors, p.Images = nil, nil; return p }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prod := p
			if tt.prod != nil {
				prod = tt.prod(p)
			}
			cart := models.Cart{Lines: []models.CartLine{{CartItemID: "l", Product: prod, Selection: tt.sel, Quantity: 1}}}
			intent, err := env.checkout.AssembleOrder(cart, nil, shopper())
			require.NoError(t, err)
			assert.Equal(t, tt.want, intent.Lines[0].Image)
		})
	}
}

func TestAssembleOrderEchoesSelection(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()
	sel := models.Selection{Size: sizeNamed(p, "King"), Headboard: headboardNamed(p, "48in"), AssemblyAdded: true}
	cart, err := env.carts.AddToCart(models.Cart{}, p, 2, sel)
	require.NoError(t, err)

	intent, err := env.checkout.AssembleOrder(cart, nil, shopper())
	require.NoError(t, err)
	line := intent.Lines[0]
	assert.Equal(t, "King", line.Selection.Size.Name)
	assert.True(t, line.AssemblyAdded)
	assert.True(t, d("639").Equal(line.UnitPrice))
	assert.True(t, d("1278").Equal(line.LineTotal))
}

func seedCart(t *testing.T, env *testEnv, sessionID string, cart models.Cart) {
	t.Helper()
	require.NoError(t, env.store.PersistCart(context.Background(), sessionID, cart, 0))
}

func TestPlaceOrderClearsCartOnSuccess(t *testing.T) {
	env := newTestEnv(save10())
	ctx := context.Background()
	p := bedProduct()
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{Size: sizeNamed(p, "King")})
	require.NoError(t, err)
	cart.DiscountCode = "SAVE10"
	seedCart(t, env, "s1", cart)

	receipt, intent, err := env.checkout.PlaceOrder(ctx, "s1", shopper())
	require.NoError(t, err)
	assert.Equal(t, "order-1", receipt.OrderID)
	assert.NotEmpty(t, receipt.SessionURL)
	require.NotNil(t, intent.Discount)
	assert.True(t, d("10").Equal(intent.Discount.DiscountAmount))
	assert.True(t, d("540").Equal(intent.Total))

	stored, err := env.store.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Lines)
	assert.Empty(t, stored.DiscountCode)
	assert.Equal(t, []string{"sam@example.com"}, env.notifier.sent)
}

func TestPlaceOrderKeepsCartWhenOrderFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	cart, err := env.carts.AddToCart(models.Cart{}, bedProduct(), 1, models.Selection{})
	require.NoError(t, err)
	seedCart(t, env, "s1", cart)
	env.orders.err = errors.New("payment gateway down")

	_, _, err = env.checkout.PlaceOrder(ctx, "s1", shopper())
	assert.ErrorIs(t, err, ErrOrderFailed)

	stored, err := env.store.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, cart.Lines, stored.Lines)
	assert.Empty(t, env.notifier.sent)
}

func TestPlaceOrderDropsInvalidDiscount(t *testing.T) {
	expired := save10()
	expired.ExpiresAt = timePtr(fixedNow.Add(-1))
	env := newTestEnv(expired)
	cart, err := env.carts.AddToCart(models.Cart{}, bedProduct(), 1, models.Selection{})
	require.NoError(t, err)
	cart.DiscountCode = "SAVE10"
	seedCart(t, env, "s1", cart)

	_, intent, err := env.checkout.PlaceOrder(context.Background(), "s1", shopper())
	require.NoError(t, err)
	assert.Nil(t, intent.Discount)
	assert.True(t, d("450").Equal(intent.Subtotal))
	assert.True(t, d("489").Equal(intent.Total))
}

func TestPlaceOrderRepricesFromCurrentCatalog(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{Size: sizeNamed(p, "King")})
	require.NoError(t, err)
	seedCart(t, env, "s1", cart)

	repriced := bedProduct()
	repriced.DiscountPercentage = d("20")
	env.products.bySlug[repriced.Slug] = repriced

	_, intent, err := env.checkout.PlaceOrder(context.Background(), "s1", shopper())
	require.NoError(t, err)
	assert.True(t, d("500").Equal(intent.Lines[0].UnitPrice), "400 + 100, got %s", intent.Lines[0].UnitPrice)
}

func TestPlaceOrderFailsForDiscontinuedOption(t *testing.T) {
	env := newTestEnv()
	p := bedProduct()
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{Size: sizeNamed(p, "King")})
	require.NoError(t, err)
	seedCart(t, env, "s1", cart)

	changed := bedProduct()
	changed.Sizes = changed.Sizes[:1]
	env.products.bySlug[changed.Slug] = changed

	_, _, err = env.checkout.PlaceOrder(context.Background(), "s1", shopper())
	assert.ErrorIs(t, err, ErrLineUnavailable)
	assert.Empty(t, env.orders.intents)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.checkout.PlaceOrder(context.Background(), "nobody", shopper())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestPlaceOrderIgnoresEmailFailure(t *testing.T) {
	env := newTestEnv()
	cart, err := env.carts.AddToCart(models.Cart{}, bedProduct(), 1, models.Selection{})
	require.NoError(t, err)
	seedCart(t, env, "s1", cart)
	env.notifier.err = errors.New("smtp down")

	_, _, err = env.checkout.PlaceOrder(context.Background(), "s1", shopper())
	assert.NoError(t, err)
}

func TestPlaceOrderKeepsFabricOfSharedColorName(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := bedProduct()
	p.Colors = append(p.Colors, models.Color{Name: "Grey", Fabric: "Linen", Image: "beds/oslo-grey-linen.jpg"})
	env.products.bySlug[p.Slug] = p

	view, err := env.shop.AddItem(ctx, "s1", models.AddToCartRequest{
		ProductSlug: p.Slug,
		Quantity:    1,
		Selection:   models.SelectionRequest{Size: "King", Fabric: "Linen", Color: "Grey"},
	})
	require.NoError(t, err)
	require.Equal(t, "Linen", view.Lines[0].Selection.Color.Fabric)

	_, intent, err := env.checkout.PlaceOrder(ctx, "s1", shopper())
	require.NoError(t, err)
	require.Len(t, intent.Lines, 1)
	line := intent.Lines[0]
	require.NotNil(t, line.Selection.Color)
	assert.Equal(t, "Grey", line.Selection.Color.Name)
	assert.Equal(t, "Linen", line.Selection.Color.Fabric)
	assert.Equal(t, "https://cdn.example.com/beds/oslo-grey-linen.jpg", line.Image)
}

// snapshotStore serves every load from one snapshot, the way two requests
// that read the cart at the same moment both see it.
type snapshotStore struct {
	*fakeCartStore
	snapshot models.Cart
}

func (s snapshotStore) LoadCart(context.Context, string) (*models.Cart, error) {
	c := s.snapshot.Clone()
	return &c, nil
}

func TestPlaceOrderConcurrentCheckoutCreatesOneOrder(t *testing.T) {
	env := newTestEnv(save10())
	ctx := context.Background()
	p := bedProduct()
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{Size: sizeNamed(p, "King")})
	require.NoError(t, err)
	cart.DiscountCode = "SAVE10"
	seedCart(t, env, "s1", cart)

	checkout := NewCheckoutService(CheckoutDeps{
		Pricing:   env.pricing,
		Carts:     env.carts,
		Discounts: env.discounts,
		Products:  env.products,
		Store:     snapshotStore{fakeCartStore: env.store, snapshot: cart},
		Orders:    env.orders,
		Notifier:  env.notifier,
		Currency:  "GBP",
		Log:       zap.NewNop(),
	})

	first, _, err := checkout.PlaceOrder(ctx, "s1", shopper())
	require.NoError(t, err)
	assert.Equal(t, "order-1", first.OrderID)

	_, _, err = checkout.PlaceOrder(ctx, "s1", shopper())
	assert.ErrorIs(t, err, ErrStaleCart)
	assert.Len(t, env.orders.intents, 1)
	assert.Len(t, env.notifier.sent, 1)
}

func TestPlaceOrderReportsCappedDiscount(t *testing.T) {
	big := save10()
	big.Code, big.Value, big.MinOrderAmount = "BIG50", d("50"), d("0")
	env := newTestEnv(big)
	p := bedProduct()
	p.BasePrice, p.DiscountPercentage = d("20"), d("0")
	env.products.bySlug[p.Slug] = p
	cart, err := env.carts.AddToCart(models.Cart{}, p, 1, models.Selection{})
	require.NoError(t, err)
	cart.DiscountCode = "BIG50"
	seedCart(t, env, "s1", cart)

	_, intent, err := env.checkout.PlaceOrder(context.Background(), "s1", shopper())
	require.NoError(t, err)
	require.NotNil(t, intent.Discount)
	assert.True(t, d("20").Equal(intent.Discount.DiscountAmount))
	assert.Equal(t, "£50.00 off per item x 1 (capped at £20.00)", intent.Discount.Message)
}
