package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"furniture-shop/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func bedProduct() models.Product {
	return models.Product{
		ID:                 "bed-1",
		Slug:               "oslo-ottoman-bed",
		Name:               "Oslo Ottoman Bed",
		CategoryID:         "beds",
		BasePrice:          d("500"),
		DiscountPercentage: d("10"),
		Images:             []string{"beds/oslo-main.jpg"},
		Sizes: []models.Size{
			{Name: "Double", PriceModifier: d("0")},
			{Name: "King", PriceModifier: d("100")},
			{Name: "Single", PriceModifier: d("-50")},
		},
		Colors: []models.Color{
			{Name: "Grey", Fabric: "Plush Velvet", Image: "beds/oslo-grey.jpg", IsDefault: true},
			{Name: "Navy", Fabric: "Plush Velvet", ProductImages: []string{"beds/oslo-navy-1.jpg"}},
			{Name: "Charcoal", Fabric: "Linen"},
		},
		StorageOptions: []models.SimpleOption{
			{Name: "No Storage", PriceModifier: d("0")},
			{Name: "Ottoman", PriceModifier: d("120")},
		},
		HeadboardOptions: []models.HeadboardOption{
			{Name: "Standard", PriceModifier: d("0")},
			{Name: "48in", PriceModifier: d("15"), PriceBySize: map[models.SizeCode]decimal.Decimal{
				models.SizeCode5FT:  d("40"),
				models.SizeCode4FT6: d("30"),
			}},
			{Name: "Winged", PriceModifier: d("15")},
		},
	}
}

func mattressProduct() models.Product {
	return models.Product{
		ID:         "mat-1",
		Slug:       "cloud-hybrid-mattress",
		Name:       "Cloud Hybrid Mattress",
		CategoryID: "mattresses",
		BasePrice:  d("300"),
		Images:     []string{"mattresses/cloud.jpg"},
		Sizes: []models.Size{
			{Name: "Double", PriceModifier: d("0")},
			{Name: "King", PriceModifier: d("80")},
		},
		FirmnessOptions: []models.SimpleOption{
			{Name: "Medium", PriceModifier: d("0")},
			{Name: "Firm", PriceModifier: d("20")},
		},
	}
}

func sizeNamed(p models.Product, name string) *models.Size {
	for i := range p.Sizes {
		if p.Sizes[i].Name == name {
			s := p.Sizes[i]
			return &s
		}
	}
	panic("no size " + name)
}

func headboardNamed(p models.Product, name string) *models.HeadboardOption {
	for i := range p.HeadboardOptions {
		if p.HeadboardOptions[i].Name == name {
			h := p.HeadboardOptions[i]
			return &h
		}
	}
	panic("no headboard " + name)
}

type fakeProducts struct {
	bySlug map[string]models.Product
	err    error
}

func newFakeProducts(ps ...models.Product) *fakeProducts {
	f := &fakeProducts{bySlug: map[string]models.Product{}}
	for _, p := range ps {
		f.bySlug[p.Slug] = p
	}
	return f
}

func (f *fakeProducts) FetchProduct(_ context.Context, slug string) (models.Product, error) {
	if f.err != nil {
		return models.Product{}, f.err
	}
	p, ok := f.bySlug[slug]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProducts) ListCategory(_ context.Context, categoryID string, page, limit int) ([]models.Product, int, error) {
	var out []models.Product
	for _, p := range f.bySlug {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type fakeDiscounts struct {
	codes map[string]models.DiscountCode
	auto  *models.DiscountCode
	err   error
}

func newFakeDiscounts(codes ...models.DiscountCode) *fakeDiscounts {
	f := &fakeDiscounts{codes: map[string]models.DiscountCode{}}
	for _, c := range codes {
		f.codes[c.Code] = c
		if c.AutoApply {
			cc := c
			f.auto = &cc
		}
	}
	return f
}

func (f *fakeDiscounts) FetchDiscountByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.codes[models.NormalizeCode(code)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeDiscounts) FindAutoApplyCode(context.Context) (*models.DiscountCode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.auto, nil
}

type fakeCartStore struct {
	mu       sync.Mutex
	carts    map[string]models.Cart
	persists int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]models.Cart{}}
}

func (f *fakeCartStore) LoadCart(_ context.Context, sessionID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[sessionID]
	if !ok {
		return nil, nil
	}
	c = c.Clone()
	return &c, nil
}

func (f *fakeCartStore) PersistCart(_ context.Context, sessionID string, cart models.Cart, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.carts[sessionID].Version != expectedVersion {
		return ErrStaleCart
	}
	f.carts[sessionID] = cart.Clone()
	f.persists++
	return nil
}

type fakeOrders struct {
	intents []models.OrderIntent
	err     error
}

func (f *fakeOrders) CreateOrder(_ context.Context, intent models.OrderIntent) (models.OrderReceipt, error) {
	if f.err != nil {
		return models.OrderReceipt{}, f.err
	}
	f.intents = append(f.intents, intent)
	id := fmt.Sprintf("order-%d", len(f.intents))
	return models.OrderReceipt{OrderID: id, SessionURL: "https://pay.example.com/" + id}, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendOrderConfirmation(to string, _ models.OrderReceipt, _ models.OrderIntent) error {
	f.sent = append(f.sent, to)
	return f.err
}

type prefixImages struct{}

func (prefixImages) ResolveImage(ref string) string { return "https://cdn.example.com/" + ref }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	pricing   *PricingService
	carts     *CartService
	discounts *DiscountService
	checkout  *CheckoutService
	shop      *Storefront
	products  *fakeProducts
	codes     *fakeDiscounts
	store     *fakeCartStore
	orders    *fakeOrders
	notifier  *fakeNotifier
}

func newTestEnv(codes ...models.DiscountCode) *testEnv {
	log := zap.NewNop()
	env := &testEnv{
		products: newFakeProducts(bedProduct(), mattressProduct()),
		codes:    newFakeDiscounts(codes...),
		store:    newFakeCartStore(),
		orders:   &fakeOrders{},
		notifier: &fakeNotifier{},
	}
	env.pricing = NewPricingService(DefaultAssemblyFee)
	env.carts = NewCartService(env.pricing, ShippingPolicy{FreeThreshold: d("500"), FlatFee: d("39")})
	seq := 0
	env.carts.newID = func() string { seq++; return fmt.Sprintf("line-%d", seq) }
	env.carts.now = func() time.Time { return fixedNow }
	env.discounts = NewDiscountService(env.codes, env.pricing, "", "GBP", log)
	env.discounts.now = func() time.Time { return fixedNow }
	env.checkout = NewCheckoutService(CheckoutDeps{
		Pricing:   env.pricing,
		Carts:     env.carts,
		Discounts: env.discounts,
		Products:  env.products,
		Store:     env.store,
		Orders:    env.orders,
		Notifier:  env.notifier,
		Images:    prefixImages{},
		Currency:  "GBP",
		Log:       log,
	})
	env.shop = NewStorefront(env.carts, env.discounts, env.products, env.store, log)
	return env
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }
