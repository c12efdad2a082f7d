package models

// SelectionRequest names the chosen option per facet. Empty fields mean "not
// chosen".
type SelectionRequest struct {
	Size          string `json:"size"`
	Color         string `json:"color"`
	Fabric        string `json:"fabric"`
	Storage       string `json:"storage"`
	Headboard     string `json:"headboard"`
	Base          string `json:"base"`
	Firmness      string `json:"firmness"`
	AssemblyAdded bool   `json:"assembly_added"`
	BundleSlug    string `json:"bundle_slug"`
}

type AddToCartRequest struct {
	ProductSlug string           `json:"product_slug" binding:"required"`
	Quantity    int              `json:"quantity" binding:"required,min=1"`
	Selection   SelectionRequest `json:"selection"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

type CheckoutRequest struct {
	Customer ShippingDetails `json:"customer" binding:"required"`
}
