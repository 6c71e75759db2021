package importer

// mappings.go declares the static field mappings for the three feeds.
//
// The product feed is semicolon-delimited; inventory and prices use commas.
// The price feed ships in two variants: a headerless file addressed by
// column position, and a header variant addressed by name. Both mappings
// are interchangeable inputs to ReadRecords; PriceMapping (positional) is
// the wired default.

// ProductMapping describes the product feed (header, ';'-delimited).
var ProductMapping = FieldMapping{
	Source:    "Products",
	Delimiter: ';',
	HasHeader: true,
	Columns: []ColumnBinding{
		{Field: FieldSKU, Name: "sku"},
		{Field: FieldName, Name: "name"},
		{Field: FieldEAN, Name: "ean"},
		{Field: FieldProducerName, Name: "producer_name"},
		{Field: FieldCategory, Name: "category"},
		{Field: FieldIsWire, Name: "is_wire"},
		{Field: FieldShipping, Name: "shipping"},
		{Field: FieldAvailable, Name: "available"},
		{Field: FieldDefaultImage, Name: "default_image"},
	},
}

// InventoryMapping describes the inventory feed (header, ','-delimited).
var InventoryMapping = FieldMapping{
	Source:    "Inventory",
	Delimiter: ',',
	HasHeader: true,
	Columns: []ColumnBinding{
		{Field: FieldSKU, Name: "sku"},
		{Field: FieldUnit, Name: "unit"},
		{Field: FieldQty, Name: "qty"},
		{Field: FieldShippingCost, Name: "shipping_cost"},
	},
}

// PriceMapping describes the headerless price feed variant, addressed by
// column position.
var PriceMapping = FieldMapping{
	Source:    "Prices",
	Delimiter: ',',
	HasHeader: false,
	Columns: []ColumnBinding{
		{Field: FieldSKU, Index: 1},
		{Field: FieldNetPrice, Index: 3},
	},
}

// PriceHeaderMapping describes the price feed variant that carries a header
// row. Swap it in for PriceMapping when the upstream switches formats.
var PriceHeaderMapping = FieldMapping{
	Source:    "Prices",
	Delimiter: ',',
	HasHeader: true,
	Columns: []ColumnBinding{
		{Field: FieldSKU, Name: "sku"},
		{Field: FieldNetPrice, Name: "net_price"},
	},
}
