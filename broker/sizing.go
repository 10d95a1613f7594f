package broker

import "github.com/shopspring/decimal"

// CashFraction is the share of available cash a strategy commits to an
// entry. The 5% held back is headroom for the case where the sizing
// price and the fill price differ (next-bar fills).
var CashFraction = decimal.NewFromFloat(0.95)

// SizeOrder returns the quantity the sizing policy allows at the given
// price: cash times CashFraction divided by price. Quantity is
// fractional. A non-positive price yields zero.
func SizeOrder(cash, price decimal.Decimal) decimal.Decimal {
	if price.Sign() <= 0 {
		return decimal.Zero
	}
	return cash.Mul(CashFraction).Div(price)
}
