package importer

// transform.go converts reconciled raw rows into canonical records.
//
// Product rows pass a business filter first; failing it is an intentional
// exclusion, not a data error, so filtered rows are counted but never
// reported as problems. Inventory and price rows always produce a record;
// unparseable numerics become NULL fields.

import (
	"sort"
	"strings"
)

// MaxShippingDays is the inclusive upper bound for the product shipping
// filter. Tokens that fail the digit-stripped parse count as 0 and pass.
const MaxShippingDays = 24

// TransformProducts applies the import filter and builds canonical products
// from the reconciled set, in SKU order. A product is imported only when
// its wire flag is "0", its availability flag is "1" and its shipping time
// is at most MaxShippingDays.
func TransformProducts(keyed map[string]RawRow) (products []Product, filtered int) {
	for _, sku := range sortedKeys(keyed) {
		row := keyed[sku]
		if row[FieldIsWire] != "0" || row[FieldAvailable] != "1" || ShippingDays(row[FieldShipping]) > MaxShippingDays {
			filtered++
			continue
		}
		products = append(products, Product{
			SKU:          sku,
			Name:         row[FieldName],
			EAN:          row[FieldEAN],
			Manufacturer: row[FieldProducerName],
			Category:     LastCategorySegment(row[FieldCategory]),
			ImageURL:     row[FieldDefaultImage],
		})
	}
	return products, filtered
}

// TransformInventory builds canonical inventory records in SKU order.
func TransformInventory(keyed map[string]RawRow) []Inventory {
	records := make([]Inventory, 0, len(keyed))
	for _, sku := range sortedKeys(keyed) {
		row := keyed[sku]
		records = append(records, Inventory{
			SKU:          sku,
			Qty:          ParseIntToken(row[FieldQty]),
			ShippingCost: ParseDecimalToken(row[FieldShippingCost]),
			Unit:         row[FieldUnit],
		})
	}
	return records
}

// TransformPrices builds canonical price records in SKU order.
func TransformPrices(keyed map[string]RawRow) []Price {
	records := make([]Price, 0, len(keyed))
	for _, sku := range sortedKeys(keyed) {
		row := keyed[sku]
		records = append(records, Price{
			SKU:      sku,
			NetPrice: ParseDecimalToken(row[FieldNetPrice]),
		})
	}
	return records
}

// LastCategorySegment derives the leaf category from a hierarchical path:
// split on '|' or '/', drop empty segments, trim, take the last.
// An empty or missing path yields "".
func LastCategorySegment(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '|' || r == '/' })
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return ""
}

func sortedKeys(keyed map[string]RawRow) []string {
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
