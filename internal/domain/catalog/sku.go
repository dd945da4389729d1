package catalog

import "strings"

// SKUSeparator splits a group key from its variant name.
const SKUSeparator = "_"

// SKUKey is the structural reading of a SKU.
//
// The encoding is one level deep: only the first separator is structural,
// so "TEE_red_L" reads as group "TEE" with variant "red_L".
type SKUKey struct {
	GroupKey    string
	VariantName string
}

// ParseSKU splits a SKU on its first separator.
// A SKU without separator, or with nothing after it, has no variant.
func ParseSKU(sku string) SKUKey {
	group, variant, found := strings.Cut(sku, SKUSeparator)
	if !found {
		return SKUKey{GroupKey: sku}
	}
	return SKUKey{GroupKey: group, VariantName: variant}
}

// HasVariant returns true if the key names a variant
func (k SKUKey) HasVariant() bool {
	return k.VariantName != ""
}

// String renders the key back into SKU form
func (k SKUKey) String() string {
	if !k.HasVariant() {
		return k.GroupKey
	}
	return k.GroupKey + SKUSeparator + k.VariantName
}
