package repositories

import (
	"context"
	"strings"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, orderID string, intent models.OrderIntent) error
}

// OrderRepository stores order intents and hands them on to payment. It
// implements services.OrderCreator.
type OrderRepository struct {
	db         *pgxpool.Pool
	discounts  *DiscountRepository
	events     OrderEventPublisher
	sessionURL string
	log        *zap.Logger
	newID      func() string
}

func NewOrderRepository(db *pgxpool.Pool, discounts *DiscountRepository, events OrderEventPublisher, sessionURL string, log *zap.Logger) *OrderRepository {
	return &OrderRepository{
		db:         db,
		discounts:  discounts,
		events:     events,
		sessionURL: sessionURL,
		log:        log,
		newID:      uuid.NewString,
	}
}

// CreateOrder writes the order, its items and the discount usage in one
// transaction, then publishes an order.created event.
func (r *OrderRepository) CreateOrder(ctx context.Context, intent models.OrderIntent) (models.OrderReceipt, error) {
	orderID := r.newID()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.OrderReceipt{}, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		code   *string
		amount = decimal.Zero
	)
	if intent.Discount != nil {
		if err := r.discounts.IncrementDiscountUsage(ctx, tx, intent.Discount.Code); err != nil {
			return models.OrderReceipt{}, err
		}
		c := intent.Discount.Code
		code = &c
		amount = intent.Discount.DiscountAmount
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, currency, email, customer, subtotal, discount_code, discount_amount, shipping, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
	`, orderID, intent.Currency, intent.Customer.Email, intent.Customer,
		intent.Subtotal, code, amount, intent.Shipping, intent.Total)
	if err != nil {
		return models.OrderReceipt{}, errors.Wrap(err, "insert order")
	}

	batch := &pgx.Batch{}
	for _, line := range intent.Lines {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, product_name, image, quantity, unit_price, line_total, selection, assembly_added)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, orderID, line.ProductID, line.ProductName, line.Image, line.Quantity,
			line.UnitPrice, line.LineTotal, line.Selection, line.AssemblyAdded)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return models.OrderReceipt{}, errors.Wrap(err, "insert order items")
	}

	if err := tx.Commit(ctx); err != nil {
		return models.OrderReceipt{}, errors.Wrap(err, "commit order")
	}

	if r.events != nil {
		if err := r.events.PublishOrderCreated(ctx, orderID, intent); err != nil {
			r.log.Error("order event not published", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	return models.OrderReceipt{OrderID: orderID, SessionURL: r.paymentURL(orderID)}, nil
}

func (r *OrderRepository) paymentURL(orderID string) string {
	if r.sessionURL == "" {
		return ""
	}
	return strings.TrimRight(r.sessionURL, "/") + "/" + orderID
}
