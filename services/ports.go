package services

import (
	"context"

	"furniture-shop/models"
)

type ProductFetcher interface {
	FetchProduct(ctx context.Context, slug string) (models.Product, error)
}

// DiscountStore returns (nil, nil) when no code matches.
type DiscountStore interface {
	FetchDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	FindAutoApplyCode(ctx context.Context) (*models.DiscountCode, error)
}

// CartStore persists a session's cart. PersistCart fails with ErrStaleCart
// when the stored version differs from expectedVersion.
type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) (*models.Cart, error)
	PersistCart(ctx context.Context, sessionID string, cart models.Cart, expectedVersion int64) error
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, intent models.OrderIntent) (models.OrderReceipt, error)
}

type Notifier interface {
	SendOrderConfirmation(toEmail string, receipt models.OrderReceipt, intent models.OrderIntent) error
}

type ImageResolver interface {
	ResolveImage(ref string) string
}
