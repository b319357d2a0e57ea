package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	TaxRate               = decimal.RequireFromString("0.09")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(15)
)

// Totals is the price breakdown of a cart. Amounts are exact; rounding only
// happens in Display.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Currency currency.Unit
}

func ComputeTotals(cart Cart, unit currency.Unit) Totals {
	subtotal := decimal.Zero
	for _, l := range cart.Lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	tax := subtotal.Mul(TaxRate)

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
		Currency: unit,
	}
}

type TotalsDisplay struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

func (t Totals) Display() TotalsDisplay {
	return TotalsDisplay{
		Subtotal: Money{Amount: t.Subtotal, Currency: t.Currency}.String(),
		Tax:      Money{Amount: t.Tax, Currency: t.Currency}.String(),
		Shipping: Money{Amount: t.Shipping, Currency: t.Currency}.String(),
		Total:    Money{Amount: t.Total, Currency: t.Currency}.String(),
	}
}
