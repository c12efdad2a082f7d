package services

import "github.com/go-faster/errors"

var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrUnknownOption       = errors.New("option not offered for this product")
	ErrBundleNotAttachable = errors.New("bundle has no matching size")
	ErrProductNotFound     = errors.New("product not found")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrStaleCart           = errors.New("cart was modified by another request")
	ErrLineUnavailable     = errors.New("cart line is no longer available")
	ErrDiscountExhausted   = errors.New("discount usage limit reached")
	ErrOrderFailed         = errors.New("order could not be created")
)

// Discount rejection messages shown to the shopper.
const (
	MsgInvalidCode     = "Invalid code"
	MsgExpired         = "Expired"
	MsgUsageLimit      = "Usage limit reached"
	MsgMinimumOrderNot = "Minimum order not met"
)
