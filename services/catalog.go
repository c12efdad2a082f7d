package services

import (
	"strings"

	"furniture-shop/models"

	"github.com/go-faster/errors"
)

// DefaultSelection picks the initial configuration shown for a product:
// the price-neutral option of each facet where one exists, else the first.
func DefaultSelection(p models.Product) models.Selection {
	var sel models.Selection
	if len(p.Sizes) > 0 {
		sizes := models.SortSizes(p.Sizes)
		sel.Size = &sizes[zeroOrFirst(len(sizes), func(i int) bool { return sizes[i].PriceModifier.IsZero() })]
	}
	if c := p.DefaultColor(); c != nil {
		color := *c
		sel.Color = &color
	}
	sel.Storage = defaultSimple(p.StorageOptions)
	sel.Base = defaultSimple(p.BaseOptions)
	sel.Firmness = defaultSimple(p.FirmnessOptions)
	if len(p.HeadboardOptions) > 0 {
		i := zeroOrFirst(len(p.HeadboardOptions), func(i int) bool { return p.HeadboardOptions[i].PriceModifier.IsZero() })
		h := p.HeadboardOptions[i]
		sel.Headboard = &h
	}
	return sel
}

func defaultSimple(opts []models.SimpleOption) *models.SimpleOption {
	if len(opts) == 0 {
		return nil
	}
	o := opts[zeroOrFirst(len(opts), func(i int) bool { return opts[i].PriceModifier.IsZero() })]
	return &o
}

func zeroOrFirst(n int, isZero func(int) bool) int {
	for i := 0; i < n; i++ {
		if isZero(i) {
			return i
		}
	}
	return 0
}

// Fabrics lists the product's fabrics in first-seen order.
func Fabrics(p models.Product) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range p.Colors {
		if c.Fabric == "" || seen[c.Fabric] {
			continue
		}
		seen[c.Fabric] = true
		out = append(out, c.Fabric)
	}
	return out
}

// ColorsForFabric filters the visible swatches by fabric. An empty fabric
// shows every color.
func ColorsForFabric(p models.Product, fabric string) []models.Color {
	if fabric == "" {
		return p.Colors
	}
	var out []models.Color
	for _, c := range p.Colors {
		if strings.EqualFold(c.Fabric, fabric) {
			out = append(out, c)
		}
	}
	return out
}

// BindSelection resolves option names into a typed selection. Names for
// facets the product does not offer are ignored. bundle may be nil.
func BindSelection(p models.Product, req models.SelectionRequest, bundle *models.Product) (models.Selection, error) {
	sel := models.Selection{AssemblyAdded: req.AssemblyAdded}

	if req.Size != "" && len(p.Sizes) > 0 {
		i := indexByName(len(p.Sizes), func(i int) string { return p.Sizes[i].Name }, req.Size)
		if i < 0 {
			return sel, unknownOption(models.FacetSize, req.Size)
		}
		size := p.Sizes[i]
		sel.Size = &size
	}

	if len(p.Colors) > 0 {
		colors := ColorsForFabric(p, req.Fabric)
		switch {
		case req.Color != "":
			i := indexByName(len(colors), func(i int) string { return colors[i].Name }, req.Color)
			if i < 0 {
				return sel, unknownOption(models.FacetColor, req.Color)
			}
			color := colors[i]
			sel.Color = &color
		case req.Fabric != "":
			if len(colors) == 0 {
				return sel, errors.Wrapf(ErrUnknownOption, "fabric %q", req.Fabric)
			}
			color := colors[0]
			for _, c := range colors {
				if c.IsDefault {
					color = c
					break
				}
			}
			sel.Color = &color
		}
	}

	var err error
	if sel.Storage, err = bindSimple(models.FacetStorage, p.StorageOptions, req.Storage); err != nil {
		return sel, err
	}
	if sel.Base, err = bindSimple(models.FacetBase, p.BaseOptions, req.Base); err != nil {
		return sel, err
	}
	if sel.Firmness, err = bindSimple(models.FacetFirmness, p.FirmnessOptions, req.Firmness); err != nil {
		return sel, err
	}

	if req.Headboard != "" && len(p.HeadboardOptions) > 0 {
		i := indexByName(len(p.HeadboardOptions), func(i int) string { return p.HeadboardOptions[i].Name }, req.Headboard)
		if i < 0 {
			return sel, unknownOption(models.FacetHeadboard, req.Headboard)
		}
		h := p.HeadboardOptions[i]
		sel.Headboard = &h
	}

	if bundle != nil {
		sel.Bundle = &models.Bundle{Product: *bundle}
	}
	return sel, nil
}

func bindSimple(kind models.FacetKind, opts []models.SimpleOption, name string) (*models.SimpleOption, error) {
	if name == "" || len(opts) == 0 {
		return nil, nil
	}
	i := indexByName(len(opts), func(i int) string { return opts[i].Name }, name)
	if i < 0 {
		return nil, unknownOption(kind, name)
	}
	o := opts[i]
	return &o, nil
}

func indexByName(n int, name func(int) string, want string) int {
	want = strings.TrimSpace(want)
	for i := 0; i < n; i++ {
		if strings.EqualFold(name(i), want) {
			return i
		}
	}
	return -1
}

func unknownOption(kind models.FacetKind, name string) error {
	return errors.Wrapf(ErrUnknownOption, "%s %q", kind, name)
}

// RequestOf is the inverse of BindSelection: it names every chosen option so
// a selection can be rebound against a fresher copy of the product.
func RequestOf(sel models.Selection) models.SelectionRequest {
	req := models.SelectionRequest{AssemblyAdded: sel.AssemblyAdded}
	for _, f := range sel.Facets() {
		switch f.Kind {
		case models.FacetSize:
			req.Size = f.Name
		case models.FacetColor:
			req.Color = f.Name
			req.Fabric = sel.Color.Fabric
		case models.FacetStorage:
			req.Storage = f.Name
		case models.FacetHeadboard:
			req.Headboard = f.Name
		case models.FacetBase:
			req.Base = f.Name
		case models.FacetFirmness:
			req.Firmness = f.Name
		}
	}
	return req
}
