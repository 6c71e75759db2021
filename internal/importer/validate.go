package importer

// RejectionSampleLimit caps the human-facing sample in a rejection report.
// The full rejected count is always carried alongside.
const RejectionSampleLimit = 10

// maxNetPrice is the inclusive upper bound for a valid net price.
var maxNetPrice = ParseDecimalToken("9999999999999999.99")

// ValidatePrices partitions transformed prices into records fit for loading
// and rejected ones. A price is rejected when its value failed to parse
// (NULL) or exceeds the upper bound. Rejected records are reported, never
// persisted.
func ValidatePrices(prices []Price) (valid []Price, report RejectionReport) {
	for _, p := range prices {
		if !p.NetPrice.Valid || CompareNumeric(p.NetPrice, maxNetPrice) > 0 {
			report.Total++
			if len(report.Sample) < RejectionSampleLimit {
				report.Sample = append(report.Sample, RejectedPrice{
					SKU:      p.SKU,
					NetPrice: NumericString(p.NetPrice),
				})
			}
			continue
		}
		valid = append(valid, p)
	}
	return valid, report
}
