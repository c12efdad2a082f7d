package repositories

import (
	"context"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewProductRepository(db *pgxpool.Pool, log *zap.Logger) *ProductRepository {
	return &ProductRepository{db: db, log: log}
}

// FetchProduct loads an active product with all of its option lists.
func (r *ProductRepository) FetchProduct(ctx context.Context, slug string) (models.Product, error) {
	query := `
		SELECT id, slug, name, category_id, subcategory_id,
		       base_price::text, discount_percentage::text,
		       images, sizes, colors, storage_options, base_options, firmness_options, headboard_options
		FROM products
		WHERE slug = $1 AND is_active = true
	`

	var (
		p         models.Product
		basePrice string
		discount  string
	)
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&p.ID, &p.Slug, &p.Name, &p.CategoryID, &p.SubcategoryID,
		&basePrice, &discount,
		&p.Images, &p.Sizes, &p.Colors, &p.StorageOptions, &p.BaseOptions, &p.FirmnessOptions, &p.HeadboardOptions,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, errors.Wrapf(services.ErrProductNotFound, "slug %q", slug)
	}
	if err != nil {
		return models.Product{}, errors.Wrap(err, "query product")
	}

	if err := parsePrices(&p, basePrice, discount); err != nil {
		return models.Product{}, err
	}

	r.log.Debug("product fetched", zap.String("slug", slug), zap.Int("sizes", len(p.Sizes)))
	return p, nil
}

// ListCategory returns the active products of a category, newest first.
func (r *ProductRepository) ListCategory(ctx context.Context, categoryID string, page, limit int) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND is_active = true`, categoryID,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	query := `
		SELECT id, slug, name, category_id, subcategory_id,
		       base_price::text, discount_percentage::text, images, sizes, colors
		FROM products
		WHERE category_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, categoryID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var (
			p                   models.Product
			basePrice, discount string
		)
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.CategoryID, &p.SubcategoryID,
			&basePrice, &discount, &p.Images, &p.Sizes, &p.Colors); err != nil {
			return nil, 0, errors.Wrap(err, "scan product")
		}
		if err := parsePrices(&p, basePrice, discount); err != nil {
			return nil, 0, errors.Wrapf(err, "product %s", p.Slug)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// parsePrices reads the numeric columns, which are selected as text.
func parsePrices(p *models.Product, basePrice, discount string) error {
	var err error
	if p.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return errors.Wrap(err, "parse base price")
	}
	if p.DiscountPercentage, err = decimal.NewFromString(discount); err != nil {
		return errors.Wrap(err, "parse discount percentage")
	}
	return nil
}
