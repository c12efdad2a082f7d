package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountSourceManual = "manual"
	DiscountSourceAuto   = "auto"
)

// Cart is owned by a single session. Version increases on every mutation and
// guards persistence against outdated writes.
type Cart struct {
	Lines              []CartLine `json:"lines"`
	Version            int64      `json:"version"`
	DiscountCode       string     `json:"discount_code,omitempty"`
	DiscountSource     string     `json:"discount_source,omitempty"`
	AutoApplyDismissed bool       `json:"auto_apply_dismissed,omitempty"`
}

type CartLine struct {
	CartItemID string    `json:"cart_item_id"`
	Product    Product   `json:"product"`
	Selection  Selection `json:"selection"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

func (l CartLine) Key() LineKey {
	return NewLineKey(l.Product.ID, l.Selection)
}

// Clone returns a cart whose line slice can be mutated without touching c.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}

type CartLineView struct {
	CartLine
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartSummary struct {
	Lines        []CartLineView  `json:"lines"`
	ItemCount    int             `json:"item_count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	Version      int64           `json:"version"`
	DiscountCode string          `json:"discount_code,omitempty"`
}
