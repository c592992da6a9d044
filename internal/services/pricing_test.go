package services_test

import (
	"testing"

	"marketplace/internal/services"

	"github.com/shopspring/decimal"
)

func TestCalculateTax(t *testing.T) {
	assertMoney(t, "4.40", services.CalculateTax(money("55"), nil))
	// 0.08 * 10.19 = 0.8152
	assertMoney(t, "0.82", services.CalculateTax(money("10.19"), nil))

	override := money("1.23")
	assertMoney(t, "1.23", services.CalculateTax(money("55"), &override))

	zero := decimal.Zero
	assertMoney(t, "0", services.CalculateTax(money("55"), &zero))
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		shipping string
		discount string
		total    string
	}{
		{"no shipping no discount", "55", "0", "0", "59.40"},
		{"fixed discount", "55", "0", "20", "39.40"},
		{"with shipping", "100", "7.50", "0", "115.50"},
		{"discount larger than subtotal", "10", "0", "25", "-14.20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.CalculateTotals(money(tt.subtotal), money(tt.shipping), nil, money(tt.discount))
			assertMoney(t, tt.total, got.Total)
			// total == subtotal + shipping + tax - discount
			assertMoney(t, got.Subtotal.Add(got.Shipping).Add(got.Tax).Sub(got.Discount).String(), got.Total)
		})
	}
}
