// Package billing computes invoice figures from line items, a tax rate,
// and a flat discount. It is pure: no persistence, no validation.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/andy/bizhaven/internal/domain"
)

// Totals holds the computed billing figures for one invoice.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64

	// ItemAmounts are the per-item quantity x rate amounts, in input order.
	ItemAmounts []float64
}

// Calculate produces invoice totals from items, a fractional tax rate
// (0.0825 = 8.25%) and a flat discount amount.
//
// The discount is applied once, to the taxable subset, before tax. A
// discount larger than the taxable total floors the tax base at zero; a
// discount larger than the subtotal floors the non-tax component of the
// total at zero. The two bases are reduced independently; the total is
// always at least the tax.
func Calculate(items []*domain.InvoiceItem, taxRate, discount float64) Totals {
	subtotal := decimal.Zero
	taxableTotal := decimal.Zero
	amounts := make([]float64, 0, len(items))

	for _, item := range items {
		amount := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.Rate))
		amounts = append(amounts, amount.InexactFloat64())

		subtotal = subtotal.Add(amount)
		if item.Taxable {
			taxableTotal = taxableTotal.Add(amount)
		}
	}

	disc := decimal.NewFromFloat(discount)
	taxBase := decimal.Max(taxableTotal.Sub(disc), decimal.Zero)
	tax := taxBase.Mul(decimal.NewFromFloat(taxRate))
	total := decimal.Max(subtotal.Sub(disc), decimal.Zero).Add(tax)

	return Totals{
		Subtotal:    subtotal.InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		Total:       total.InexactFloat64(),
		ItemAmounts: amounts,
	}
}
