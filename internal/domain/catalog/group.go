package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupStatus is the aggregate status of a product group
type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "active"
	GroupStatusPartial  GroupStatus = "partial"
	GroupStatusInactive GroupStatus = "inactive"
)

// ProductGroup is the display and bulk-action unit built from products
// sharing a group key.
type ProductGroup struct {
	GroupKey    string
	BaseName    string
	Category    string
	ImageURL    string
	PriceMin    decimal.Decimal
	PriceMax    decimal.Decimal
	TotalStock  int
	TotalSold   int
	HasPreorder bool
	MainProduct *Product
	Variants    []Product
}

// Members returns the main product (if any) followed by the variants
func (g *ProductGroup) Members() []Product {
	members := make([]Product, 0, len(g.Variants)+1)
	if g.MainProduct != nil {
		members = append(members, *g.MainProduct)
	}
	return append(members, g.Variants...)
}

// MemberIDs returns the ids of every product in the group
func (g *ProductGroup) MemberIDs() []uuid.UUID {
	members := g.Members()
	ids := make([]uuid.UUID, len(members))
	for i := range members {
		ids[i] = members[i].ID
	}
	return ids
}

// Status derives the aggregate status. Variants decide it; a group
// without variants takes the status of its main product.
func (g *ProductGroup) Status() GroupStatus {
	members := g.Variants
	if len(members) == 0 && g.MainProduct != nil {
		members = []Product{*g.MainProduct}
	}
	inactive := 0
	for i := range members {
		if !members[i].IsActive() {
			inactive++
		}
	}
	switch {
	case inactive == 0:
		return GroupStatusActive
	case inactive == len(members):
		return GroupStatusInactive
	default:
		return GroupStatusPartial
	}
}

// HasVariants returns true if the group has at least one variant
func (g *ProductGroup) HasVariants() bool {
	return len(g.Variants) > 0
}

// GroupProducts folds a flat product list into groups keyed by the SKU
// group key. Groups keep first-seen order and variants are ordered by
// sold quantity, highest first. No product is dropped: a second product
// without variant suffix in the same group is kept as a variant.
func GroupProducts(products []Product) []ProductGroup {
	index := make(map[string]int)
	groups := make([]ProductGroup, 0)

	for i := range products {
		p := products[i]
		key := p.Key()

		idx, ok := index[key.GroupKey]
		if !ok {
			groups = append(groups, ProductGroup{
				GroupKey: key.GroupKey,
				PriceMin: p.Price,
				PriceMax: p.Price,
			})
			idx = len(groups) - 1
			index[key.GroupKey] = idx
		}
		g := &groups[idx]

		if key.HasVariant() || g.MainProduct != nil {
			g.Variants = append(g.Variants, p)
		} else {
			g.MainProduct = &p
		}

		g.TotalStock += p.StockCount()
		g.TotalSold += p.SoldQty
		if p.IsPreorder() {
			g.HasPreorder = true
		}
		if p.Price.LessThan(g.PriceMin) {
			g.PriceMin = p.Price
		}
		if p.Price.GreaterThan(g.PriceMax) {
			g.PriceMax = p.Price
		}
	}

	for i := range groups {
		g := &groups[i]
		sort.SliceStable(g.Variants, func(a, b int) bool {
			return g.Variants[a].SoldQty > g.Variants[b].SoldQty
		})
		g.BaseName = baseName(g)
		g.ImageURL = firstNonEmpty(g, func(p *Product) string { return p.ImageURL })
		g.Category = firstNonEmpty(g, func(p *Product) string { return p.Category })
	}

	return groups
}

// FlattenGroups is the inverse of GroupProducts: main product first, then
// variants, group by group.
func FlattenGroups(groups []ProductGroup) []Product {
	out := make([]Product, 0)
	for i := range groups {
		out = append(out, groups[i].Members()...)
	}
	return out
}

func firstNonEmpty(g *ProductGroup, field func(*Product) string) string {
	if g.MainProduct != nil {
		if v := field(g.MainProduct); v != "" {
			return v
		}
	}
	for i := range g.Variants {
		if v := field(&g.Variants[i]); v != "" {
			return v
		}
	}
	return ""
}

// baseName runs after the sold-qty sort, so without a main product the
// top-selling variant names the group.
func baseName(g *ProductGroup) string {
	if g.MainProduct != nil {
		return g.MainProduct.Name
	}
	if len(g.Variants) == 0 {
		return g.GroupKey
	}
	first := g.Variants[0]
	return StripVariantSuffix(first.Name, first.Key().VariantName)
}

// StripVariantSuffix removes a trailing variant label from a product name
// when it follows one of the known naming patterns. The name is returned
// unchanged when none matches.
func StripVariantSuffix(name, variant string) string {
	if variant == "" {
		return name
	}
	suffixes := []string{
		" (" + variant + ")",
		"（" + variant + "）",
		"(" + variant + ")",
		" - " + variant,
		"_" + variant,
		"/" + variant,
		" " + variant,
	}
	for _, s := range suffixes {
		if len(name) <= len(s) {
			continue
		}
		tail := name[len(name)-len(s):]
		if strings.EqualFold(tail, s) {
			if base := strings.TrimSpace(name[:len(name)-len(s)]); base != "" {
				return base
			}
		}
	}
	return name
}
