package services

import (
	"context"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartView is a cart summary with its discount evaluated against the
// current lines.
type CartView struct {
	models.CartSummary
	Discount       *models.AppliedDiscount `json:"discount,omitempty"`
	DiscountError  string                  `json:"discount_error,omitempty"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	GrandTotal     decimal.Decimal         `json:"grand_total"`
}

// Storefront runs cart operations for one session: load, mutate, auto-apply
// and a version-guarded write back.
type Storefront struct {
	carts     *CartService
	discounts *DiscountService
	products  ProductFetcher
	store     CartStore
	log       *zap.Logger
}

func NewStorefront(carts *CartService, discounts *DiscountService, products ProductFetcher, store CartStore, log *zap.Logger) *Storefront {
	return &Storefront{carts: carts, discounts: discounts, products: products, store: store, log: log}
}

func (s *Storefront) load(ctx context.Context, sessionID string) (models.Cart, error) {
	cart, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return models.Cart{}, errors.Wrap(err, "load cart")
	}
	if cart == nil {
		return models.Cart{Lines: []models.CartLine{}}, nil
	}
	return *cart, nil
}

// mutate applies fn to the stored cart and persists the result when it
// changed. The returned cart is the one now stored.
func (s *Storefront) mutate(ctx context.Context, sessionID string, fn func(models.Cart) (models.Cart, error)) (models.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return cart, err
	}
	next, err := fn(cart)
	if err != nil {
		return cart, err
	}
	next = s.discounts.AutoApply(ctx, next, s.carts.Summarize(next).Subtotal)
	if next.Version == cart.Version {
		return next, nil
	}
	if err := s.store.PersistCart(ctx, sessionID, next, cart.Version); err != nil {
		return cart, err
	}
	return next, nil
}

func (s *Storefront) View(ctx context.Context, sessionID string) (CartView, error) {
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) { return c, nil })
	if err != nil {
		return CartView{}, err
	}
	return s.render(ctx, cart)
}

func (s *Storefront) AddItem(ctx context.Context, sessionID string, req models.AddToCartRequest) (CartView, error) {
	product, err := s.products.FetchProduct(ctx, req.ProductSlug)
	if err != nil {
		return CartView{}, err
	}
	var bundle *models.Product
	if req.Selection.BundleSlug != "" {
		b, err := s.products.FetchProduct(ctx, req.Selection.BundleSlug)
		if err != nil {
			return CartView{}, errors.Wrap(err, "fetch bundle")
		}
		bundle = &b
	}
	sel, err := BindSelection(product, req.Selection, bundle)
	if err != nil {
		return CartView{}, err
	}

	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return s.carts.AddToCart(c, product, req.Quantity, sel)
	})
	if err != nil {
		return CartView{}, err
	}
	s.log.Info("cart item added",
		zap.String("session_id", sessionID),
		zap.String("product", product.Slug),
		zap.Int("quantity", req.Quantity))
	return s.render(ctx, cart)
}

func (s *Storefront) UpdateItem(ctx context.Context, sessionID, cartItemID string, quantity int) (CartView, error) {
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return s.carts.UpdateQuantity(c, cartItemID, quantity), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.render(ctx, cart)
}

func (s *Storefront) RemoveItem(ctx context.Context, sessionID, cartItemID string) (CartView, error) {
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return s.carts.RemoveLine(c, cartItemID), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.render(ctx, cart)
}

func (s *Storefront) Clear(ctx context.Context, sessionID string) (CartView, error) {
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return s.carts.Clear(c), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.render(ctx, cart)
}

// ApplyDiscount records a manually entered code. An invalid code leaves the
// cart unchanged and comes back as a failed result, not an error.
func (s *Storefront) ApplyDiscount(ctx context.Context, sessionID, code string) (CartView, models.DiscountResult, error) {
	var res models.DiscountResult
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		next, r, err := s.discounts.ApplyCode(ctx, c, code)
		res = r
		return next, err
	})
	if err != nil {
		return CartView{}, res, err
	}
	view, err := s.render(ctx, cart)
	return view, res, err
}

func (s *Storefront) RemoveDiscount(ctx context.Context, sessionID string) (CartView, error) {
	cart, err := s.mutate(ctx, sessionID, func(c models.Cart) (models.Cart, error) {
		return s.discounts.RemoveCode(c), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.render(ctx, cart)
}

func (s *Storefront) render(ctx context.Context, cart models.Cart) (CartView, error) {
	view := CartView{CartSummary: s.carts.Summarize(cart), DiscountAmount: decimal.Zero}
	if cart.DiscountCode != "" {
		res, err := s.discounts.Validate(ctx, cart.DiscountCode, cart)
		if err != nil {
			return CartView{}, err
		}
		if res.Valid {
			applied := s.discounts.ClampToEligible(*res.Applied, cart)
			view.Discount = &applied
			view.DiscountAmount = applied.DiscountAmount
		} else {
			view.DiscountError = res.Error
		}
	}
	total := view.Subtotal.Sub(view.DiscountAmount).Add(view.Shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}
	view.GrandTotal = RoundCurrency(total)
	return view, nil
}
