package models

import "github.com/shopspring/decimal"

type ShippingDetails struct {
	Email        string `json:"email" binding:"required,email"`
	FullName     string `json:"full_name" binding:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	Postcode     string `json:"postcode" binding:"required"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

type OrderLineItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	CategoryID    string          `json:"category_id"`
	Image         string          `json:"image,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Selection     Selection       `json:"selection"`
	AssemblyAdded bool            `json:"assembly_added"`
}

// OrderIntent is the frozen, fully priced order handed to the order service.
type OrderIntent struct {
	Currency string           `json:"currency"`
	Lines    []OrderLineItem  `json:"lines"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Discount *AppliedDiscount `json:"discount,omitempty"`
	Shipping decimal.Decimal  `json:"shipping"`
	Total    decimal.Decimal  `json:"total"`
	Customer ShippingDetails  `json:"customer"`
}

type OrderReceipt struct {
	OrderID    string `json:"order_id"`
	SessionURL string `json:"session_url,omitempty"`
}
