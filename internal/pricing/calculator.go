// Package pricing contains the pure price and total arithmetic shared by the
// cart, the quotation draft and the server-side quotation service. All
// functions are stateless; malformed numeric input coerces to zero so a bad
// payload degrades a figure instead of failing a page.
package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Line describes a cart or quotation line for aggregation
type Line struct {
	UnitPrice   float64
	ConfigPrice float64
	Quantity    int
}

// EffectiveUnitPrice returns the discount price when it is set, positive and
// strictly below the base price, otherwise the base price.
func EffectiveUnitPrice(base float64, discount *float64) float64 {
	base = nonNegative(base)
	if discount != nil && *discount > 0 && *discount < base {
		return *discount
	}
	return base
}

// LineSubtotal computes (unitPrice + configPrice) * quantity
func LineSubtotal(unitPrice, configPrice float64, quantity int) float64 {
	if quantity < 0 {
		quantity = 0
	}
	return (nonNegative(unitPrice) + nonNegative(configPrice)) * float64(quantity)
}

// Subtotal sums the line subtotals of all lines
func Subtotal(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += LineSubtotal(l.UnitPrice, l.ConfigPrice, l.Quantity)
	}
	return sum
}

// ItemCount sums the quantities of all lines
func ItemCount(lines []Line) int {
	var count int
	for _, l := range lines {
		if l.Quantity > 0 {
			count += l.Quantity
		}
	}
	return count
}

// DiscountPercent returns the rounded percentage saved against the base
// price, or 0 when there is no valid discount.
func DiscountPercent(basePrice float64, discountPrice *float64) int {
	if basePrice <= 0 || discountPrice == nil || *discountPrice <= 0 || *discountPrice >= basePrice {
		return 0
	}
	return int(math.Round(100 * (basePrice - *discountPrice) / basePrice))
}

// Tax computes the tax amount for a subtotal at the given rate (e.g. 0.12)
func Tax(subtotal, rate float64) float64 {
	return nonNegative(subtotal) * nonNegative(rate)
}

// Total computes subtotal + tax - discount, never below zero
func Total(subtotal, tax, discount float64) float64 {
	total := nonNegative(subtotal) + nonNegative(tax) - nonNegative(discount)
	if total < 0 {
		return 0
	}
	return total
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Money parses an amount that may arrive as a JSON number, a numeric string
// or be absent entirely. Anything unparseable is 0.
func Money(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return nonNegative(n)
	case float32:
		return nonNegative(float64(n))
	case int:
		return nonNegative(float64(n))
	case int64:
		return nonNegative(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return nonNegative(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return nonNegative(f)
	default:
		return 0
	}
}

// Quantity parses a count the same way Money parses an amount
func Quantity(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case int:
		if n < 0 {
			return 0
		}
		return n
	case int64:
		if n < 0 {
			return 0
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return Quantity(string(n))
		}
		return Quantity(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		if i < 0 {
			return 0
		}
		return i
	default:
		return 0
	}
}
