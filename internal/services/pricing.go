package services

import "github.com/shopspring/decimal"

// DefaultTaxRate is applied to the subtotal when checkout carries no tax override.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// CalculateTax returns the override when given, else subtotal × DefaultTaxRate rounded to cents.
func CalculateTax(subtotal decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return subtotal.Mul(DefaultTaxRate).Round(2)
}

// CalculateTotals computes total = subtotal + shipping + tax − discount.
func CalculateTotals(subtotal, shipping decimal.Decimal, taxOverride *decimal.Decimal, discount decimal.Decimal) Totals {
	tax := CalculateTax(subtotal, taxOverride)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}
