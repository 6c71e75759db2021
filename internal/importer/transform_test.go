package importer

import (
	"testing"
)

func productRowFor(sku string, overrides RawRow) RawRow {
	row := RawRow{
		FieldSKU:          sku,
		FieldName:         "Widget",
		FieldEAN:          "123",
		FieldProducerName: "Acme",
		FieldCategory:     "Electronics|Audio|Headphones",
		FieldIsWire:       "0",
		FieldShipping:     "3",
		FieldAvailable:    "1",
		FieldDefaultImage: "http://img/1.jpg",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestTransformProductsFilter(t *testing.T) {
	tests := []struct {
		name      string
		overrides RawRow
		wantKept  bool
	}{
		{"passes all rules", RawRow{}, true},
		{"wire product excluded", RawRow{FieldIsWire: "1"}, false},
		{"unavailable excluded", RawRow{FieldAvailable: "0"}, false},
		{"blank availability excluded", RawRow{FieldAvailable: ""}, false},
		{"shipping over limit excluded", RawRow{FieldShipping: "30"}, false},
		{"shipping at limit passes", RawRow{FieldShipping: "24"}, true},
		{"shipping with unit passes", RawRow{FieldShipping: "24 days"}, true},
		{"unparseable shipping counts as zero", RawRow{FieldShipping: "abc"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyed := map[string]RawRow{"A1": productRowFor("A1", tt.overrides)}
			products, filtered := TransformProducts(keyed)

			if tt.wantKept {
				if len(products) != 1 || filtered != 0 {
					t.Errorf("kept = %d filtered = %d, want 1/0", len(products), filtered)
				}
			} else {
				if len(products) != 0 || filtered != 1 {
					t.Errorf("kept = %d filtered = %d, want 0/1", len(products), filtered)
				}
			}
		})
	}
}

func TestTransformProductsFields(t *testing.T) {
	keyed := map[string]RawRow{"A1": productRowFor("A1", nil)}
	products, _ := TransformProducts(keyed)
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1", len(products))
	}

	p := products[0]
	if p.SKU != "A1" || p.Name != "Widget" || p.EAN != "123" {
		t.Errorf("product = %+v", p)
	}
	if p.Manufacturer != "Acme" {
		t.Errorf("manufacturer = %q, want Acme", p.Manufacturer)
	}
	if p.Category != "Headphones" {
		t.Errorf("category = %q, want leaf segment Headphones", p.Category)
	}
	if p.ImageURL != "http://img/1.jpg" {
		t.Errorf("imageURL = %q", p.ImageURL)
	}
}

func TestTransformProductsOrder(t *testing.T) {
	keyed := map[string]RawRow{
		"B2": productRowFor("B2", nil),
		"A1": productRowFor("A1", nil),
		"C3": productRowFor("C3", nil),
	}
	products, _ := TransformProducts(keyed)
	if len(products) != 3 {
		t.Fatalf("products = %d, want 3", len(products))
	}
	for i, want := range []string{"A1", "B2", "C3"} {
		if products[i].SKU != want {
			t.Errorf("products[%d].SKU = %q, want %q (SKU order)", i, products[i].SKU, want)
		}
	}
}

func TestTransformInventory(t *testing.T) {
	keyed := map[string]RawRow{
		"A1": {FieldSKU: "A1", FieldQty: "10", FieldShippingCost: "4.99", FieldUnit: "pcs"},
		"A2": {FieldSKU: "A2", FieldQty: "garbled", FieldShippingCost: "", FieldUnit: ""},
	}

	records := TransformInventory(keyed)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	a1 := records[0]
	if !a1.Qty.Valid || a1.Qty.Int32 != 10 {
		t.Errorf("A1 qty = %+v, want 10", a1.Qty)
	}
	if !a1.ShippingCost.Valid {
		t.Errorf("A1 shipping cost should parse")
	}
	if a1.Unit != "pcs" {
		t.Errorf("A1 unit = %q", a1.Unit)
	}

	a2 := records[1]
	if a2.Qty.Valid {
		t.Error("A2 qty should be NULL for garbled input")
	}
	if a2.ShippingCost.Valid {
		t.Error("A2 shipping cost should be NULL for empty input")
	}
}

func TestTransformPrices(t *testing.T) {
	keyed := map[string]RawRow{
		"A1": {FieldSKU: "A1", FieldNetPrice: "19.99"},
		"A2": {FieldSKU: "A2", FieldNetPrice: "not a number"},
	}

	records := TransformPrices(keyed)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if !records[0].NetPrice.Valid {
		t.Error("A1 net price should parse")
	}
	if records[1].NetPrice.Valid {
		t.Error("A2 net price should be NULL, validation rejects it later")
	}
}

func TestLastCategorySegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Electronics|Audio|Headphones", "Headphones"},
		{"Tools/Hand Tools/Hammers", "Hammers"},
		{"Electronics| Audio |", "Audio"},
		{"Single", "Single"},
		{"  padded  ", "padded"},
		{"|||", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LastCategorySegment(tt.in); got != tt.want {
			t.Errorf("LastCategorySegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
