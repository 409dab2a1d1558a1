package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andy/bizhaven/internal/domain"
)

func item(qty, rate float64, taxable bool) *domain.InvoiceItem {
	return &domain.InvoiceItem{Description: "work", Quantity: qty, Rate: rate, Taxable: taxable}
}

func TestCalculate_MixedTaxability(t *testing.T) {
	// Two taxable lines (300 + 250) and one non-taxable (650).
	items := []*domain.InvoiceItem{
		item(3, 100, true),
		item(2.5, 100, true),
		item(1, 650, false),
	}

	totals := Calculate(items, 0.08, 0)

	assert.InDelta(t, 1200, totals.Subtotal, 1e-9)
	assert.InDelta(t, 44, totals.Tax, 1e-9) // 8% of the 550 taxable portion
	assert.InDelta(t, 1244, totals.Total, 1e-9)
	assert.Equal(t, []float64{300, 250, 650}, totals.ItemAmounts)
}

func TestCalculate_DiscountedMixedInvoice(t *testing.T) {
	// Design is taxable, materials are not; the discount reduces the
	// taxable base before tax applies.
	items := []*domain.InvoiceItem{
		{Description: "Design", Quantity: 4, Rate: 150, Taxable: true},
		{Description: "Materials", Quantity: 6, Rate: 100, Taxable: false},
	}

	totals := Calculate(items, 0.08, 50)

	assert.InDelta(t, 1200, totals.Subtotal, 1e-9)
	assert.InDelta(t, 44, totals.Tax, 1e-9) // 8% of max(600-50, 0)
	assert.InDelta(t, 1194, totals.Total, 1e-9)
}

func TestCalculate_DiscountBeforeTax(t *testing.T) {
	items := []*domain.InvoiceItem{item(1, 1000, true)}

	totals := Calculate(items, 0.10, 200)

	assert.InDelta(t, 1000, totals.Subtotal, 1e-9)
	assert.InDelta(t, 80, totals.Tax, 1e-9) // 10% of 800, not of 1000
	assert.InDelta(t, 880, totals.Total, 1e-9)
}

func TestCalculate_DiscountExceedsTaxableTotal(t *testing.T) {
	// Taxable portion is 100, discount is 300: the tax base floors at
	// zero but the discount still reduces the full subtotal.
	items := []*domain.InvoiceItem{
		item(1, 100, true),
		item(1, 500, false),
	}

	totals := Calculate(items, 0.08, 300)

	assert.InDelta(t, 600, totals.Subtotal, 1e-9)
	assert.InDelta(t, 0, totals.Tax, 1e-9)
	assert.InDelta(t, 300, totals.Total, 1e-9)
}

func TestCalculate_DiscountExceedsSubtotal(t *testing.T) {
	items := []*domain.InvoiceItem{item(1, 50, true)}

	totals := Calculate(items, 0.08, 100)

	assert.InDelta(t, 50, totals.Subtotal, 1e-9)
	assert.InDelta(t, 0, totals.Tax, 1e-9)
	assert.InDelta(t, 0, totals.Total, 1e-9)
}

func TestCalculate_TotalNeverBelowTax(t *testing.T) {
	// The bases are reduced independently, but the total always
	// includes the full tax.
	items := []*domain.InvoiceItem{
		item(1, 400, true),
		item(1, 100, false),
	}

	totals := Calculate(items, 0.25, 450)

	assert.InDelta(t, 0, totals.Tax, 1e-9)
	assert.InDelta(t, 50, totals.Total, 1e-9)
	assert.GreaterOrEqual(t, totals.Total, totals.Tax)
}

func TestCalculate_EmptyItems(t *testing.T) {
	totals := Calculate(nil, 0.08, 0)

	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.Total)
	assert.Empty(t, totals.ItemAmounts)
}

func TestCalculate_ExactDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 style float drift must not leak into totals.
	items := []*domain.InvoiceItem{
		item(0.1, 3, true),
		item(0.2, 3, true),
	}

	totals := Calculate(items, 0, 0)

	assert.Equal(t, 0.9, totals.Subtotal)
}

func TestCalculate_FractionalQuantities(t *testing.T) {
	items := []*domain.InvoiceItem{item(7.25, 85.50, true)}

	totals := Calculate(items, 0.0825, 0)

	assert.InDelta(t, 619.875, totals.Subtotal, 1e-9)
	assert.InDelta(t, 51.1396875, totals.Tax, 1e-9)
	assert.InDelta(t, 671.0146875, totals.Total, 1e-9)
}
