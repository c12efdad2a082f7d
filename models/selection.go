package models

import "github.com/shopspring/decimal"

type FacetKind int

const (
	FacetSize FacetKind = iota
	FacetColor
	FacetStorage
	FacetHeadboard
	FacetBase
	FacetFirmness
)

var facetKinds = []FacetKind{FacetSize, FacetColor, FacetStorage, FacetHeadboard, FacetBase, FacetFirmness}

func (k FacetKind) String() string {
	switch k {
	case FacetSize:
		return "size"
	case FacetColor:
		return "color"
	case FacetStorage:
		return "storage"
	case FacetHeadboard:
		return "headboard"
	case FacetBase:
		return "base"
	case FacetFirmness:
		return "firmness"
	}
	return "unknown"
}

// Modifier is the price effect of a selected option. It is closed to the two
// shapes below.
type Modifier interface {
	// Amount returns the top-up for this option given the selected size,
	// which may be nil.
	Amount(size *Size) decimal.Decimal
	isModifier()
}

type PlainModifier struct {
	Value decimal.Decimal
}

func (m PlainModifier) Amount(*Size) decimal.Decimal { return TopUp(m.Value) }
func (PlainModifier) isModifier()                    {}

// SizeKeyedModifier prices an option per size code and falls back to a flat
// amount when the size is missing or has no table entry.
type SizeKeyedModifier struct {
	Fallback decimal.Decimal
	BySize   map[SizeCode]decimal.Decimal
}

func (m SizeKeyedModifier) Amount(size *Size) decimal.Decimal {
	if size != nil && len(m.BySize) > 0 {
		if code, ok := SizeCodeFor(size.Name); ok {
			if v, ok := m.BySize[code]; ok {
				return TopUp(v)
			}
		}
	}
	return TopUp(m.Fallback)
}

func (SizeKeyedModifier) isModifier() {}

// TopUp clamps a modifier to zero; option prices only ever add.
func TopUp(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

type Facet struct {
	Kind     FacetKind
	Name     string
	Modifier Modifier
}

// Bundle attaches a secondary product (the mattress upsell) to a selection.
// It is priced against its own size whose name equals the selected size.
type Bundle struct {
	Product Product `json:"product"`
}

type Selection struct {
	Size          *Size            `json:"size,omitempty"`
	Color         *Color           `json:"color,omitempty"`
	Storage       *SimpleOption    `json:"storage,omitempty"`
	Headboard     *HeadboardOption `json:"headboard,omitempty"`
	Base          *SimpleOption    `json:"base,omitempty"`
	Firmness      *SimpleOption    `json:"firmness,omitempty"`
	AssemblyAdded bool             `json:"assembly_added"`
	Bundle        *Bundle          `json:"bundle,omitempty"`
}

// Facets lists the selected options in fixed kind order.
func (s Selection) Facets() []Facet {
	facets := make([]Facet, 0, len(facetKinds))
	for _, kind := range facetKinds {
		if f, ok := s.Facet(kind); ok {
			facets = append(facets, f)
		}
	}
	return facets
}

func (s Selection) Facet(kind FacetKind) (Facet, bool) {
	switch kind {
	case FacetSize:
		if s.Size != nil {
			return Facet{Kind: kind, Name: s.Size.Name, Modifier: PlainModifier{Value: s.Size.PriceModifier}}, true
		}
	case FacetColor:
		if s.Color != nil {
			return Facet{Kind: kind, Name: s.Color.Name, Modifier: PlainModifier{}}, true
		}
	case FacetStorage:
		if s.Storage != nil {
			return Facet{Kind: kind, Name: s.Storage.Name, Modifier: PlainModifier{Value: s.Storage.PriceModifier}}, true
		}
	case FacetHeadboard:
		if s.Headboard != nil {
			return Facet{Kind: kind, Name: s.Headboard.Name, Modifier: SizeKeyedModifier{
				Fallback: s.Headboard.PriceModifier,
				BySize:   s.Headboard.PriceBySize,
			}}, true
		}
	case FacetBase:
		if s.Base != nil {
			return Facet{Kind: kind, Name: s.Base.Name, Modifier: PlainModifier{Value: s.Base.PriceModifier}}, true
		}
	case FacetFirmness:
		if s.Firmness != nil {
			return Facet{Kind: kind, Name: s.Firmness.Name, Modifier: PlainModifier{Value: s.Firmness.PriceModifier}}, true
		}
	}
	return Facet{}, false
}

func (s Selection) facetName(kind FacetKind) string {
	if f, ok := s.Facet(kind); ok {
		return f.Name
	}
	return ""
}

// LineKey is the cart line identity. Absent facets contribute the empty
// string, so "nothing selected" is itself a distinct value.
type LineKey struct {
	ProductID     string
	Size          string
	Color         string
	Storage       string
	Headboard     string
	Base          string
	Firmness      string
	AssemblyAdded bool
}

func NewLineKey(productID string, s Selection) LineKey {
	return LineKey{
		ProductID:     productID,
		Size:          s.facetName(FacetSize),
		Color:         s.facetName(FacetColor),
		Storage:       s.facetName(FacetStorage),
		Headboard:     s.facetName(FacetHeadboard),
		Base:          s.facetName(FacetBase),
		Firmness:      s.facetName(FacetFirmness),
		AssemblyAdded: s.AssemblyAdded,
	}
}
