package models

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 string            `json:"id"`
	Slug               string            `json:"slug"`
	Name               string            `json:"name"`
	CategoryID         string            `json:"category_id"`
	SubcategoryID      string            `json:"subcategory_id,omitempty"`
	BasePrice          decimal.Decimal   `json:"base_price"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage"`
	Images             []string          `json:"images,omitempty"`
	Sizes              []Size            `json:"sizes,omitempty"`
	Colors             []Color           `json:"colors,omitempty"`
	StorageOptions     []SimpleOption    `json:"storage_options,omitempty"`
	BaseOptions        []SimpleOption    `json:"base_options,omitempty"`
	FirmnessOptions    []SimpleOption    `json:"firmness_options,omitempty"`
	HeadboardOptions   []HeadboardOption `json:"headboard_options,omitempty"`
}

// DiscountPrice is the base price net of the product-level discount. The
// percentage is clamped to [0, 100] so a bad catalog row can never produce a
// negative or inflated price.
func (p Product) DiscountPrice() decimal.Decimal {
	base := p.BasePrice
	if base.IsNegative() {
		base = decimal.Zero
	}
	pct := p.DiscountPercentage
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return base.Mul(hundred.Sub(pct)).Div(hundred)
}

func (p Product) HasFacet(kind FacetKind) bool {
	switch kind {
	case FacetSize:
		return len(p.Sizes) > 0
	case FacetColor:
		return len(p.Colors) > 0
	case FacetStorage:
		return len(p.StorageOptions) > 0
	case FacetHeadboard:
		return len(p.HeadboardOptions) > 0
	case FacetBase:
		return len(p.BaseOptions) > 0
	case FacetFirmness:
		return len(p.FirmnessOptions) > 0
	}
	return false
}

func (p Product) DefaultColor() *Color {
	for i := range p.Colors {
		if p.Colors[i].IsDefault {
			return &p.Colors[i]
		}
	}
	if len(p.Colors) > 0 {
		return &p.Colors[0]
	}
	return nil
}

type Size struct {
	Name          string          `json:"name"`
	Dimensions    string          `json:"dimensions,omitempty"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type Color struct {
	Name          string   `json:"name"`
	Hex           string   `json:"hex,omitempty"`
	Fabric        string   `json:"fabric,omitempty"`
	Image         string   `json:"image,omitempty"`
	ProductImages []string `json:"product_images,omitempty"`
	IsDefault     bool     `json:"is_default,omitempty"`
}

// DisplayImage returns the swatch's own image, falling back to the first of
// its product shots.
func (c Color) DisplayImage() string {
	if c.Image != "" {
		return c.Image
	}
	if len(c.ProductImages) > 0 {
		return c.ProductImages[0]
	}
	return ""
}

type SimpleOption struct {
	Name          string          `json:"name"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
}

type HeadboardOption struct {
	Name          string                       `json:"name"`
	PriceModifier decimal.Decimal              `json:"price_modifier"`
	PriceBySize   map[SizeCode]decimal.Decimal `json:"price_by_size,omitempty"`
}

type SizeCode string

const (
	SizeCode2FT6 SizeCode = "2FT6"
	SizeCode3FT  SizeCode = "3FT"
	SizeCode4FT  SizeCode = "4FT"
	SizeCode4FT6 SizeCode = "4FT6"
	SizeCode5FT  SizeCode = "5FT"
	SizeCode6FT  SizeCode = "6FT"
)

var sizeCodes = map[string]SizeCode{
	"small single": SizeCode2FT6,
	"single":       SizeCode3FT,
	"small double": SizeCode4FT,
	"double":       SizeCode4FT6,
	"king":         SizeCode5FT,
	"queen":        SizeCode6FT,
	"super king":   SizeCode6FT,
}

// sizeOrder is the display ordering domain for size names.
var sizeOrder = []string{"small single", "single", "small double", "double", "king", "queen"}

func normalizeSizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SizeCodeFor maps a size display name to its canonical code.
func SizeCodeFor(name string) (SizeCode, bool) {
	code, ok := sizeCodes[normalizeSizeName(name)]
	return code, ok
}

// SizeRank returns the position of name in the size ordering domain, or -1
// when the name is not part of it.
func SizeRank(name string) int {
	n := normalizeSizeName(name)
	for i, s := range sizeOrder {
		if s == n {
			return i
		}
	}
	return -1
}

// SortSizes returns a copy of sizes in display order. Names outside the
// ordering domain go last, cheapest first.
func SortSizes(sizes []Size) []Size {
	out := make([]Size, len(sizes))
	copy(out, sizes)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := SizeRank(out[i].Name), SizeRank(out[j].Name)
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		}
		return out[i].PriceModifier.LessThan(out[j].PriceModifier)
	})
	return out
}
