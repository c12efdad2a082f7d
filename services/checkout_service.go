package services

import (
	"context"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CheckoutService struct {
	pricing   *PricingService
	carts     *CartService
	discounts *DiscountService
	products  ProductFetcher
	store     CartStore
	orders    OrderCreator
	notifier  Notifier
	images    ImageResolver
	currency  string
	log       *zap.Logger
	tracer    trace.Tracer
}

type CheckoutDeps struct {
	Pricing   *PricingService
	Carts     *CartService
	Discounts *DiscountService
	Products  ProductFetcher
	Store     CartStore
	Orders    OrderCreator
	Notifier  Notifier
	Images    ImageResolver
	Currency  string
	Log       *zap.Logger
}

func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		pricing:   d.Pricing,
		carts:     d.Carts,
		discounts: d.Discounts,
		products:  d.Products,
		store:     d.Store,
		orders:    d.Orders,
		notifier:  d.Notifier,
		images:    d.Images,
		currency:  d.Currency,
		log:       d.Log,
		tracer:    otel.Tracer("furniture-shop/checkout"),
	}
}

// AssembleOrder freezes a cart into an order intent. Unit prices are
// resolved again from each line's product and selection; the discount, if
// any, is taken as already validated and only clamped to the eligible
// subtotal.
func (s *CheckoutService) AssembleOrder(cart models.Cart, applied *models.AppliedDiscount, details models.ShippingDetails) (models.OrderIntent, error) {
	if len(cart.Lines) == 0 {
		return models.OrderIntent{}, ErrCartEmpty
	}

	intent := models.OrderIntent{
		Currency: s.currency,
		Lines:    make([]models.OrderLineItem, 0, len(cart.Lines)),
		Subtotal: decimal.Zero,
		Customer: details,
	}
	for _, line := range cart.Lines {
		unit := s.pricing.UnitPrice(line.Product, line.Selection)
		total := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		intent.Lines = append(intent.Lines, models.OrderLineItem{
			ProductID:     line.Product.ID,
			ProductName:   line.Product.Name,
			CategoryID:    line.Product.CategoryID,
			Image:         s.resolveImage(DisplayImage(line)),
			Quantity:      line.Quantity,
			UnitPrice:     unit,
			LineTotal:     total,
			Selection:     line.Selection,
			AssemblyAdded: line.Selection.AssemblyAdded,
		})
		intent.Subtotal = intent.Subtotal.Add(total)
	}
	intent.Shipping = s.carts.ShippingPolicy().Shipping(intent.Subtotal)

	discount := decimal.Zero
	if applied != nil {
		d := s.discounts.ClampToEligible(*applied, cart)
		discount = d.DiscountAmount
		intent.Discount = &d
	}

	total := intent.Subtotal.Sub(discount).Add(intent.Shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}
	intent.Total = RoundCurrency(total)
	return intent, nil
}

// PlaceOrder turns the session's cart into an order. The cart is cleared
// only after the order service accepted the intent; on any failure it is
// left untouched so the shopper can retry.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, details models.ShippingDetails) (models.OrderReceipt, models.OrderIntent, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()

	fail := func(err error) (models.OrderReceipt, models.OrderIntent, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.OrderReceipt{}, models.OrderIntent{}, err
	}

	stored, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return fail(errors.Wrap(err, "load cart"))
	}
	if stored == nil || len(stored.Lines) == 0 {
		return fail(ErrCartEmpty)
	}
	cart := *stored

	fresh, err := s.refreshLines(ctx, cart)
	if err != nil {
		return fail(err)
	}

	var applied *models.AppliedDiscount
	if fresh.DiscountCode != "" {
		res, err := s.discounts.Validate(ctx, fresh.DiscountCode, fresh)
		if err != nil {
			return fail(err)
		}
		if res.Valid {
			applied = res.Applied
		} else {
			s.log.Info("discount dropped at checkout",
				zap.String("session_id", sessionID),
				zap.String("code", fresh.DiscountCode),
				zap.String("reason", res.Error))
		}
	}

	intent, err := s.AssembleOrder(fresh, applied, details)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(
		attribute.Int("order.lines", len(intent.Lines)),
		attribute.String("order.total", intent.Total.String()),
	)

	// Reserve the cart version first: of two checkouts that loaded the same
	// cart, only one gets to create an order.
	pending := cart.Clone()
	pending.Version++
	if err := s.store.PersistCart(ctx, sessionID, pending, cart.Version); err != nil {
		return fail(errors.Wrap(err, "reserve cart"))
	}

	receipt, err := s.orders.CreateOrder(ctx, intent)
	if err != nil {
		s.log.Error("order creation failed", zap.String("session_id", sessionID), zap.Error(err))
		if errors.Is(err, ErrDiscountExhausted) {
			return fail(err)
		}
		return fail(errors.Wrap(ErrOrderFailed, err.Error()))
	}

	if err := s.store.PersistCart(ctx, sessionID, s.carts.Clear(pending), pending.Version); err != nil {
		s.log.Warn("cart not cleared after order",
			zap.String("session_id", sessionID),
			zap.String("order_id", receipt.OrderID),
			zap.Error(err))
	}

	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(details.Email, receipt, intent); err != nil {
			s.log.Warn("order confirmation email failed", zap.String("order_id", receipt.OrderID), zap.Error(err))
		}
	}

	s.log.Info("order placed",
		zap.String("order_id", receipt.OrderID),
		zap.String("total", intent.Total.String()),
		zap.Int("lines", len(intent.Lines)))
	return receipt, intent, nil
}

// refreshLines rebinds every line against the current catalog so prices
// reflect product data as of checkout.
func (s *CheckoutService) refreshLines(ctx context.Context, cart models.Cart) (models.Cart, error) {
	out := cart.Clone()
	fetched := map[string]models.Product{}
	for i, line := range out.Lines {
		product, ok := fetched[line.Product.Slug]
		if !ok {
			p, err := s.products.FetchProduct(ctx, line.Product.Slug)
			if err != nil {
				if errors.Is(err, ErrProductNotFound) {
					return cart, errors.Wrapf(ErrLineUnavailable, "%s", line.Product.Name)
				}
				return cart, errors.Wrap(err, "fetch product")
			}
			fetched[line.Product.Slug] = p
			product = p
		}
		sel, err := BindSelection(product, RequestOf(line.Selection), nil)
		if err != nil {
			return cart, errors.Wrapf(ErrLineUnavailable, "%s: %v", line.Product.Name, err)
		}
		out.Lines[i].Product = product
		out.Lines[i].Selection = sel
	}
	return out, nil
}

func (s *CheckoutService) resolveImage(ref string) string {
	if s.images == nil || ref == "" {
		return ref
	}
	return s.images.ResolveImage(ref)
}

// DisplayImage picks a line's picture: the selected swatch's image, then the
// product's default swatch, then the first product image.
func DisplayImage(line models.CartLine) string {
	if c := line.Selection.Color; c != nil {
		if img := c.DisplayImage(); img != "" {
			return img
		}
	}
	if c := line.Product.DefaultColor(); c != nil {
		if img := c.DisplayImage(); img != "" {
			return img
		}
	}
	if len(line.Product.Images) > 0 {
		return line.Product.Images[0]
	}
	return ""
}
