package listing

// pricingFactor scales annual offered income into an asking price.
const pricingFactor = 7

// EstimateAskingPrice suggests an asking price from the monthly rent and
// the income percentage offered for sale:
// rent × 12 × (percentage / 100) × factor.
func EstimateAskingPrice(monthlyRent, incomePercentage float64) float64 {
	return monthlyRent * 12 * (incomePercentage / 100) * pricingFactor
}
