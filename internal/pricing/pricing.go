// Package pricing computes cart totals. Everything here is a pure function
// of its inputs: amounts are integer minor units and rates are decimals.
package pricing

import (
	"github.com/shopspring/decimal"

	"milsabores/internal/cart"
	"milsabores/pkg/money"
)

// Subtotal is the sum of unit price times quantity over every line.
func Subtotal(items []cart.LineItem) money.Money {
	var total money.Money
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// DiscountAmount applies rate to subtotal, rounding half away from zero.
func DiscountAmount(subtotal money.Money, rate decimal.Decimal) money.Money {
	return subtotal.MulRate(rate)
}

// Total is subtotal minus discount.
func Total(subtotal, discount money.Money) money.Money {
	return subtotal.Sub(discount)
}

// Quote bundles the computed figures for one cart and class.
type Quote struct {
	Class    DiscountClass
	Rate     decimal.Decimal
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
	Lines    int
	Units    int
}

func Price(items []cart.LineItem, class DiscountClass) Quote {
	subtotal := Subtotal(items)
	rate := DiscountRate(class)
	discount := DiscountAmount(subtotal, rate)

	units := 0
	for _, item := range items {
		units += item.Quantity
	}
	return Quote{
		Class:    class,
		Rate:     rate,
		Subtotal: subtotal,
		Discount: discount,
		Total:    Total(subtotal, discount),
		Lines:    len(items),
		Units:    units,
	}
}
