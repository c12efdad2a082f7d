package services

import (
	"furniture-shop/models"

	"github.com/shopspring/decimal"
)

// DefaultAssemblyFee is the surcharge for professional assembly.
var DefaultAssemblyFee = decimal.NewFromInt(49)

const (
	ComponentBase     = "base"
	ComponentAssembly = "assembly"
	ComponentBundle   = "bundle"
)

type PriceComponent struct {
	Kind   string          `json:"kind"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type PriceBreakdown struct {
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	DiscountPrice decimal.Decimal  `json:"discount_price"`
	Components    []PriceComponent `json:"components"`
	// BundleAttachable is false when a bundle was requested but has no size
	// matching the selected one. Such a bundle adds nothing to the price.
	BundleAttachable bool `json:"bundle_attachable"`
}

type PricingService struct {
	assemblyFee decimal.Decimal
}

func NewPricingService(assemblyFee decimal.Decimal) *PricingService {
	if assemblyFee.IsNegative() {
		assemblyFee = decimal.Zero
	}
	return &PricingService{assemblyFee: assemblyFee}
}

// Resolve prices one configured unit of product. It is pure and total: any
// product/selection pair yields a price.
func (s *PricingService) Resolve(product models.Product, sel models.Selection) PriceBreakdown {
	base := product.DiscountPrice()
	b := PriceBreakdown{
		DiscountPrice:    base,
		Components:       []PriceComponent{{Kind: ComponentBase, Label: product.Name, Amount: base}},
		BundleAttachable: true,
	}
	sum := base

	var size *models.Size
	if product.HasFacet(models.FacetSize) {
		size = sel.Size
	}

	for _, f := range sel.Facets() {
		if !product.HasFacet(f.Kind) {
			continue
		}
		amount := f.Modifier.Amount(size)
		b.Components = append(b.Components, PriceComponent{Kind: f.Kind.String(), Label: f.Name, Amount: amount})
		sum = sum.Add(amount)
	}

	if sel.AssemblyAdded {
		b.Components = append(b.Components, PriceComponent{Kind: ComponentAssembly, Label: "Assembly", Amount: s.assemblyFee})
		sum = sum.Add(s.assemblyFee)
	}

	if sel.Bundle != nil {
		bundleSize, ok := BundleSize(sel.Bundle.Product, size)
		b.BundleAttachable = ok
		if ok {
			price := s.Resolve(sel.Bundle.Product, models.Selection{Size: bundleSize}).UnitPrice
			b.Components = append(b.Components, PriceComponent{Kind: ComponentBundle, Label: sel.Bundle.Product.Name, Amount: price})
			sum = sum.Add(price)
		}
	}

	b.UnitPrice = RoundCurrency(sum)
	return b
}

func (s *PricingService) UnitPrice(product models.Product, sel models.Selection) decimal.Decimal {
	return s.Resolve(product, sel).UnitPrice
}

// BundleSize finds the bundle product's size whose name equals the selected
// size name.
func BundleSize(bundle models.Product, selected *models.Size) (*models.Size, bool) {
	if selected == nil {
		return nil, false
	}
	for i := range bundle.Sizes {
		if bundle.Sizes[i].Name == selected.Name {
			size := bundle.Sizes[i]
			return &size, true
		}
	}
	return nil, false
}

// RoundCurrency rounds to two places, half up. Amounts here are never
// negative, so decimal's half-away-from-zero is equivalent.
func RoundCurrency(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
