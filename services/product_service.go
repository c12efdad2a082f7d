package services

import (
	"context"
	"math"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type ProductCatalog interface {
	ProductFetcher
	ListCategory(ctx context.Context, categoryID string, page, limit int) ([]models.Product, int, error)
}

// ProductDetail is what a product page needs to render its configurator.
type ProductDetail struct {
	Product          models.Product   `json:"product"`
	Fabrics          []string         `json:"fabrics,omitempty"`
	DefaultSelection models.Selection `json:"default_selection"`
	Price            PriceBreakdown   `json:"price"`
}

type ProductSummary struct {
	ID            string          `json:"id"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	BasePrice     decimal.Decimal `json:"base_price"`
	FromPrice     decimal.Decimal `json:"from_price"`
	DiscountBadge decimal.Decimal `json:"discount_percentage"`
}

type Quote struct {
	Selection models.Selection `json:"selection"`
	Price     PriceBreakdown   `json:"price"`
}

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

type ProductService struct {
	catalog ProductCatalog
	pricing *PricingService
	images  ImageResolver
}

func NewProductService(catalog ProductCatalog, pricing *PricingService, images ImageResolver) *ProductService {
	return &ProductService{catalog: catalog, pricing: pricing, images: images}
}

func (s *ProductService) GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := s.catalog.FetchProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	sel := DefaultSelection(p)
	return &ProductDetail{
		Product:          s.withImages(p),
		Fabrics:          Fabrics(p),
		DefaultSelection: sel,
		Price:            s.pricing.Resolve(p, sel),
	}, nil
}

// Quote prices a configuration without touching the cart.
func (s *ProductService) Quote(ctx context.Context, slug string, req models.SelectionRequest) (*Quote, error) {
	p, err := s.catalog.FetchProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	var bundle *models.Product
	if req.BundleSlug != "" {
		b, err := s.catalog.FetchProduct(ctx, req.BundleSlug)
		if err != nil {
			return nil, errors.Wrap(err, "fetch bundle")
		}
		bundle = &b
	}
	sel, err := BindSelection(p, req, bundle)
	if err != nil {
		return nil, err
	}
	return &Quote{Selection: sel, Price: s.pricing.Resolve(p, sel)}, nil
}

func (s *ProductService) ListCategory(ctx context.Context, categoryID string, page, limit int) ([]ProductSummary, models.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	products, total, err := s.catalog.ListCategory(ctx, categoryID, page, limit)
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}

	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		summary := ProductSummary{
			ID:            p.ID,
			Slug:          p.Slug,
			Name:          p.Name,
			BasePrice:     p.BasePrice,
			FromPrice:     s.pricing.UnitPrice(p, DefaultSelection(p)),
			DiscountBadge: p.DiscountPercentage,
		}
		if len(p.Images) > 0 {
			summary.Image = s.resolve(p.Images[0])
		}
		out = append(out, summary)
	}

	meta := models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return out, meta, nil
}

func (s *ProductService) withImages(p models.Product) models.Product {
	if s.images == nil {
		return p
	}
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = s.resolve(img)
	}
	p.Images = images
	colors := make([]models.Color, len(p.Colors))
	for i, c := range p.Colors {
		c.Image = s.resolve(c.Image)
		if len(c.ProductImages) > 0 {
			shots := make([]string, len(c.ProductImages))
			for j, img := range c.ProductImages {
				shots[j] = s.resolve(img)
			}
			c.ProductImages = shots
		}
		colors[i] = c
	}
	p.Colors = colors
	return p
}

func (s *ProductService) resolve(ref string) string {
	if s.images == nil || ref == "" {
		return ref
	}
	return s.images.ResolveImage(ref)
}
