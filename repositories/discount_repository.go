package repositories

import (
	"context"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type DiscountRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewDiscountRepository(db *pgxpool.Pool, log *zap.Logger) *DiscountRepository {
	return &DiscountRepository{db: db, log: log}
}

const discountColumns = `code, type, value::text, min_order_amount::text, max_uses, used_count, expires_at, active, auto_apply`

func (r *DiscountRepository) FetchDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_codes WHERE code = UPPER($1)`
	dc, err := scanDiscount(r.db.QueryRow(ctx, query, models.NormalizeCode(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query discount code")
	}
	return dc, nil
}

// FindAutoApplyCode returns the active auto-apply code, if one is configured.
func (r *DiscountRepository) FindAutoApplyCode(ctx context.Context) (*models.DiscountCode, error) {
	query := `SELECT ` + discountColumns + `
		FROM discount_codes
		WHERE auto_apply = true AND active = true
		ORDER BY created_at DESC
		LIMIT 1`
	dc, err := scanDiscount(r.db.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query auto-apply code")
	}
	return dc, nil
}

// IncrementDiscountUsage consumes one use of code. It fails with
// ErrDiscountExhausted when the limit was reached concurrently.
func (r *DiscountRepository) IncrementDiscountUsage(ctx context.Context, db Execer, code string) error {
	if db == nil {
		db = r.db
	}
	tag, err := db.Exec(ctx, `
		UPDATE discount_codes
		SET used_count = used_count + 1
		WHERE code = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`, models.NormalizeCode(code))
	if err != nil {
		return errors.Wrap(err, "increment discount usage")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(services.ErrDiscountExhausted, "code %s", code)
	}
	return nil
}

func scanDiscount(row pgx.Row) (*models.DiscountCode, error) {
	var (
		dc             models.DiscountCode
		discountType   string
		value, minimum string
		maxUses        pgtype.Int4
		expiresAt      pgtype.Timestamptz
	)
	if err := row.Scan(&dc.Code, &discountType, &value, &minimum, &maxUses, &dc.UsedCount, &expiresAt, &dc.Active, &dc.AutoApply); err != nil {
		return nil, err
	}
	dc.Type = models.DiscountType(discountType)

	var err error
	if dc.Value, err = decimal.NewFromString(value); err != nil {
		return nil, errors.Wrap(err, "parse value")
	}
	if dc.MinOrderAmount, err = decimal.NewFromString(minimum); err != nil {
		return nil, errors.Wrap(err, "parse min order amount")
	}
	if maxUses.Valid {
		n := int(maxUses.Int32)
		dc.MaxUses = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		dc.ExpiresAt = &t
	}
	return &dc, nil
}
