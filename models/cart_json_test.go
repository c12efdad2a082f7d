package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func configuredCart() models.Cart {
	king := models.Size{Name: "King", Dimensions: "150 x 200 cm", PriceModifier: dec("100")}
	bed := models.Product{
		ID: "bed-1", Slug: "oslo", Name: "Oslo Bed", CategoryID: "beds",
		BasePrice: dec("500"), DiscountPercentage: dec("10"),
		Sizes:           []models.Size{{Name: "Double", PriceModifier: dec("0")}, king},
		Colors:          []models.Color{{Name: "Grey", Fabric: "Linen", Image: "beds/grey.jpg", IsDefault: true}},
		StorageOptions:  []models.SimpleOption{{Name: "Ottoman", PriceModifier: dec("120.50")}},
		BaseOptions:     []models.SimpleOption{{Name: "Slatted", PriceModifier: dec("35")}},
		FirmnessOptions: []models.SimpleOption{{Name: "Firm", PriceModifier: dec("20")}},
		HeadboardOptions: []models.HeadboardOption{{
			Name:          "48in",
			PriceModifier: dec("15"),
			PriceBySize:   map[models.SizeCode]decimal.Decimal{models.SizeCode5FT: dec("40.25"), models.SizeCode4FT6: dec("30")},
		}},
	}
	mattress := models.Product{
		ID: "mat-1", Slug: "cloud", Name: "Cloud Mattress", CategoryID: "mattresses",
		BasePrice: dec("300"),
		Sizes:     []models.Size{{Name: "King", PriceModifier: dec("80")}},
	}

	return models.Cart{
		Version:            4,
		DiscountCode:       "SAVE10",
		DiscountSource:     models.DiscountSourceManual,
		AutoApplyDismissed: true,
		Lines: []models.CartLine{
			{
				CartItemID: "line-1",
				Product:    bed,
				Selection: models.Selection{
					Size:          &king,
					Color:         &bed.Colors[0],
					Storage:       &bed.StorageOptions[0],
					Headboard:     &bed.HeadboardOptions[0],
					Base:          &bed.BaseOptions[0],
					Firmness:      &bed.FirmnessOptions[0],
					AssemblyAdded: true,
					Bundle:        &models.Bundle{Product: mattress},
				},
				Quantity: 2,
				AddedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				CartItemID: "line-2",
				Product:    mattress,
				Selection:  models.Selection{Size: &mattress.Sizes[0]},
				Quantity:   1,
				AddedAt:    time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
			},
		},
	}
}

func TestCartJSONRoundTrip(t *testing.T) {
	pricing := services.NewPricingService(services.DefaultAssemblyFee)
	cart := configuredCart()

	raw, err := json.Marshal(cart)
	require.NoError(t, err)
	var decoded models.Cart
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, cart.Version, decoded.Version)
	assert.Equal(t, cart.DiscountCode, decoded.DiscountCode)
	assert.Equal(t, cart.DiscountSource, decoded.DiscountSource)
	assert.Equal(t, cart.AutoApplyDismissed, decoded.AutoApplyDismissed)
	require.Len(t, decoded.Lines, len(cart.Lines))

	for i, want := range cart.Lines {
		got := decoded.Lines[i]
		assert.Equal(t, want.CartItemID, got.CartItemID)
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.True(t, want.AddedAt.Equal(got.AddedAt))
		assert.Equal(t, want.Key(), got.Key())

		wantPrice := pricing.UnitPrice(want.Product, want.Selection)
		gotPrice := pricing.UnitPrice(got.Product, got.Selection)
		assert.True(t, wantPrice.Equal(gotPrice), "line %d: %s != %s", i, wantPrice, gotPrice)
	}

	headboard := decoded.Lines[0].Selection.Headboard
	require.NotNil(t, headboard)
	assert.True(t, dec("40.25").Equal(headboard.PriceBySize[models.SizeCode5FT]))
	require.NotNil(t, decoded.Lines[0].Selection.Bundle)
	assert.Equal(t, "mat-1", decoded.Lines[0].Selection.Bundle.Product.ID)
	assert.Equal(t, "Linen", decoded.Lines[0].Selection.Color.Fabric)
}

func TestCartJSONRoundTripPrice(t *testing.T) {
	pricing := services.NewPricingService(services.DefaultAssemblyFee)
	raw, err := json.Marshal(configuredCart())
	require.NoError(t, err)
	var decoded models.Cart
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// 450 + 100 + 120.50 + 40.25 + 35 + 20 + 49 + bundle (300 + 80)
	assert.True(t, dec("1194.75").Equal(pricing.UnitPrice(decoded.Lines[0].Product, decoded.Lines[0].Selection)))
}
