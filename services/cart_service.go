package services

import (
	"time"

	"furniture-shop/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingPolicy charges a flat fee below FreeThreshold. A zero threshold
// disables free shipping.
type ShippingPolicy struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

func (p ShippingPolicy) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if p.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.FlatFee
}

// CartService implements line identity and aggregation. Every mutation takes
// a cart by value and returns the next version; the input is never modified.
type CartService struct {
	pricing  *PricingService
	shipping ShippingPolicy
	newID    func() string
	now      func() time.Time
}

func NewCartService(pricing *PricingService, shipping ShippingPolicy) *CartService {
	return &CartService{
		pricing:  pricing,
		shipping: shipping,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (s *CartService) ShippingPolicy() ShippingPolicy {
	return s.shipping
}

// AddToCart merges into the line with the same identity key or appends a new
// one. An attached bundle becomes its own line, sized to match.
func (s *CartService) AddToCart(cart models.Cart, product models.Product, quantity int, sel models.Selection) (models.Cart, error) {
	if quantity < 1 {
		return cart, ErrInvalidQuantity
	}
	sel = normalizeSelection(product, sel)

	out := cart.Clone()
	if sel.Bundle != nil {
		bundle := sel.Bundle.Product
		size, ok := BundleSize(bundle, sel.Size)
		if !ok {
			return cart, ErrBundleNotAttachable
		}
		sel.Bundle = nil
		out = s.addLine(out, product, quantity, sel)
		out = s.addLine(out, bundle, quantity, normalizeSelection(bundle, models.Selection{Size: size}))
	} else {
		out = s.addLine(out, product, quantity, sel)
	}
	out.Version = cart.Version + 1
	return out, nil
}

func (s *CartService) addLine(cart models.Cart, product models.Product, quantity int, sel models.Selection) models.Cart {
	key := models.NewLineKey(product.ID, sel)
	for i := range cart.Lines {
		if cart.Lines[i].Key() == key {
			cart.Lines[i].Quantity += quantity
			return cart
		}
	}
	cart.Lines = append(cart.Lines, models.CartLine{
		CartItemID: s.newID(),
		Product:    product,
		Selection:  sel,
		Quantity:   quantity,
		AddedAt:    s.now().UTC(),
	})
	return cart
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line; an
// unknown id leaves the cart as it was.
func (s *CartService) UpdateQuantity(cart models.Cart, cartItemID string, quantity int) models.Cart {
	if quantity <= 0 {
		return s.RemoveLine(cart, cartItemID)
	}
	i := lineIndex(cart, cartItemID)
	if i < 0 || cart.Lines[i].Quantity == quantity {
		return cart
	}
	out := cart.Clone()
	out.Lines[i].Quantity = quantity
	out.Version++
	return out
}

// RemoveLine is idempotent.
func (s *CartService) RemoveLine(cart models.Cart, cartItemID string) models.Cart {
	i := lineIndex(cart, cartItemID)
	if i < 0 {
		return cart
	}
	out := cart
	out.Lines = make([]models.CartLine, 0, len(cart.Lines)-1)
	out.Lines = append(out.Lines, cart.Lines[:i]...)
	out.Lines = append(out.Lines, cart.Lines[i+1:]...)
	out.Version++
	return out
}

// Clear empties the cart and resets its discount state.
func (s *CartService) Clear(cart models.Cart) models.Cart {
	return models.Cart{Lines: []models.CartLine{}, Version: cart.Version + 1}
}

// Summarize derives every total from the current lines.
func (s *CartService) Summarize(cart models.Cart) models.CartSummary {
	summary := models.CartSummary{
		Lines:        make([]models.CartLineView, 0, len(cart.Lines)),
		Subtotal:     decimal.Zero,
		Version:      cart.Version,
		DiscountCode: cart.DiscountCode,
	}
	for _, line := range cart.Lines {
		unit := s.pricing.UnitPrice(line.Product, line.Selection)
		total := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		summary.Lines = append(summary.Lines, models.CartLineView{CartLine: line, UnitPrice: unit, LineTotal: total})
		summary.ItemCount += line.Quantity
		summary.Subtotal = summary.Subtotal.Add(total)
	}
	summary.Shipping = s.shipping.Shipping(summary.Subtotal)
	summary.Total = summary.Subtotal.Add(summary.Shipping)
	return summary
}

func lineIndex(cart models.Cart, cartItemID string) int {
	for i := range cart.Lines {
		if cart.Lines[i].CartItemID == cartItemID {
			return i
		}
	}
	return -1
}

// normalizeSelection drops picks for facets the product does not offer.
func normalizeSelection(p models.Product, sel models.Selection) models.Selection {
	if !p.HasFacet(models.FacetSize) {
		sel.Size = nil
	}
	if !p.HasFacet(models.FacetColor) {
		sel.Color = nil
	}
	if !p.HasFacet(models.FacetStorage) {
		sel.Storage = nil
	}
	if !p.HasFacet(models.FacetHeadboard) {
		sel.Headboard = nil
	}
	if !p.HasFacet(models.FacetBase) {
		sel.Base = nil
	}
	if !p.HasFacet(models.FacetFirmness) {
		sel.Firmness = nil
	}
	return sel
}
