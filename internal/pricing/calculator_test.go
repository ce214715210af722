package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestEffectiveUnitPrice(t *testing.T) {
	// Valid discount wins
	assert.Equal(t, 800.0, EffectiveUnitPrice(1000, f(800)))
	// No discount falls back to base
	assert.Equal(t, 1000.0, EffectiveUnitPrice(1000, nil))
	// Discount at or above base is ignored
	assert.Equal(t, 1000.0, EffectiveUnitPrice(1000, f(1000)))
	assert.Equal(t, 1000.0, EffectiveUnitPrice(1000, f(1200)))
	// Zero or negative discount is ignored
	assert.Equal(t, 1000.0, EffectiveUnitPrice(1000, f(0)))
	assert.Equal(t, 1000.0, EffectiveUnitPrice(1000, f(-5)))
	// Negative base coerces to zero
	assert.Equal(t, 0.0, EffectiveUnitPrice(-100, nil))
}

func TestEffectiveUnitPriceNeverExceedsBase(t *testing.T) {
	bases := []float64{0, 1, 99.99, 1000, 250000}
	discounts := []*float64{nil, f(0), f(1), f(99.99), f(1000), f(999999)}
	for _, base := range bases {
		for _, d := range discounts {
			price := EffectiveUnitPrice(base, d)
			assert.LessOrEqual(t, price, base, "effective price must never exceed base")
			if d != nil && *d > 0 && *d < base {
				assert.Equal(t, *d, price)
			}
		}
	}
}

func TestLineSubtotal(t *testing.T) {
	assert.Equal(t, 2000.0, LineSubtotal(1000, 0, 2))
	assert.Equal(t, 2300.0, LineSubtotal(1000, 150, 2))
	// Negative quantity counts as zero
	assert.Equal(t, 0.0, LineSubtotal(1000, 0, -3))
	// Malformed prices coerce to zero rather than going negative
	assert.Equal(t, 300.0, LineSubtotal(-1000, 100, 3))
}

func TestSubtotalMatchesSumOfLines(t *testing.T) {
	lines := []Line{
		{UnitPrice: 1000, ConfigPrice: 0, Quantity: 2},
		{UnitPrice: 549.5, ConfigPrice: 120, Quantity: 1},
		{UnitPrice: 75, ConfigPrice: 0, Quantity: 10},
	}
	var expected float64
	for _, l := range lines {
		expected += LineSubtotal(l.UnitPrice, l.ConfigPrice, l.Quantity)
	}
	assert.Equal(t, expected, Subtotal(lines))
	assert.Equal(t, 13, ItemCount(lines))
}

func TestSubtotalEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Subtotal(nil))
	assert.Equal(t, 0, ItemCount(nil))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 20, DiscountPercent(1000, f(800)))
	assert.Equal(t, 33, DiscountPercent(1500, f(999)))
	// No valid discount
	assert.Equal(t, 0, DiscountPercent(1000, nil))
	assert.Equal(t, 0, DiscountPercent(1000, f(1000)))
	assert.Equal(t, 0, DiscountPercent(1000, f(1500)))
	assert.Equal(t, 0, DiscountPercent(0, f(10)))
}

func TestTaxAndTotal(t *testing.T) {
	subtotal := 2000.0
	tax := Tax(subtotal, 0.12)
	assert.Equal(t, 240.0, tax)
	assert.Equal(t, 2240.0, Total(subtotal, tax, 0))
	assert.Equal(t, 2140.0, Total(subtotal, tax, 100))
	// Total never goes negative
	assert.Equal(t, 0.0, Total(100, 0, 500))
}

func TestMoneyCoercion(t *testing.T) {
	assert.Equal(t, 99.5, Money(99.5))
	assert.Equal(t, 99.5, Money("99.5"))
	assert.Equal(t, 100.0, Money(" 100 "))
	assert.Equal(t, 0.0, Money(nil))
	assert.Equal(t, 0.0, Money("not-a-number"))
	assert.Equal(t, 0.0, Money(map[string]string{}))
	assert.Equal(t, 0.0, Money(-12.0))
}

func TestQuantityCoercion(t *testing.T) {
	assert.Equal(t, 5, Quantity(5))
	assert.Equal(t, 5, Quantity(5.0))
	assert.Equal(t, 5, Quantity("5"))
	assert.Equal(t, 0, Quantity(nil))
	assert.Equal(t, 0, Quantity("abc"))
	assert.Equal(t, 0, Quantity(-4))
}
