// Package pricing computes order totals: customer-tiered discounts, taxes,
// and the final total, all as decimals rounded half-up to two places.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CustomerType selects the discount ladder and tax rate for an order.
type CustomerType string

const (
	TypeStandard CustomerType = "STANDARD"
	TypePremium  CustomerType = "PREMIUM"
	TypeVIP      CustomerType = "VIP"
)

// ParseCustomerType maps a stored type tag to a known tier.
// Unknown or empty tags fall back to STANDARD.
func ParseCustomerType(tag string) CustomerType {
	switch CustomerType(tag) {
	case TypePremium:
		return TypePremium
	case TypeVIP:
		return TypeVIP
	default:
		return TypeStandard
	}
}

// LineItem is the flat pricing input: a unit price and a quantity.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote holds the four computed order amounts, each rounded to two
// fractional digits.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// InvalidLineItemError indicates a line item that should have been rejected
// before reaching the pricing policy.
type InvalidLineItemError struct {
	Index  int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Index+1, e.Reason)
}

type tier struct {
	threshold decimal.Decimal
	rate      decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Discount ladders, highest tier first. Boundaries are inclusive.
// VIP is a flat rate, modeled as a single tier with a zero threshold.
var discountTiers = map[CustomerType][]tier{
	TypeStandard: {
		{threshold: d("2000"), rate: d("0.15")},
		{threshold: d("1000"), rate: d("0.10")},
		{threshold: d("500"), rate: d("0.05")},
	},
	TypePremium: {
		{threshold: d("1500"), rate: d("0.18")},
		{threshold: d("800"), rate: d("0.12")},
		{threshold: d("400"), rate: d("0.07")},
	},
	TypeVIP: {
		{threshold: decimal.Zero, rate: d("0.20")},
	},
}

var taxRates = map[CustomerType]decimal.Decimal{
	TypeStandard: d("0.14975"),
	TypePremium:  d("0.12"),
	TypeVIP:      d("0.10"),
}

var maxDiscountRatios = map[CustomerType]decimal.Decimal{
	TypeStandard: d("0.15"),
	TypePremium:  d("0.18"),
	TypeVIP:      d("0.20"),
}

// TaxRate returns the tax rate applied after discount for this tier.
func (ct CustomerType) TaxRate() decimal.Decimal {
	return taxRates[ParseCustomerType(string(ct))]
}

// MaxDiscountRatio returns the ceiling the validator enforces on the
// effective discount ratio for this tier.
func (ct CustomerType) MaxDiscountRatio() decimal.Decimal {
	return maxDiscountRatios[ParseCustomerType(string(ct))]
}

// DiscountFor returns the unrounded discount amount for a two-place
// subtotal under this tier's ladder.
func DiscountFor(subtotal decimal.Decimal, ct CustomerType) decimal.Decimal {
	for _, t := range discountTiers[ParseCustomerType(string(ct))] {
		if subtotal.GreaterThanOrEqual(t.threshold) {
			return subtotal.Mul(t.rate)
		}
	}
	return decimal.Zero
}

// Compute prices an order: subtotal, tiered discount, tax on the discounted
// amount, and total, each rounded half-up to two places. The function is
// pure; calling it twice with the same input yields identical output.
//
// Input is expected to be pre-validated by the caller. A negative unit
// price or non-positive quantity fails with InvalidLineItemError rather
// than being silently coerced.
func Compute(items []LineItem, ct CustomerType) (Quote, error) {
	ct = ParseCustomerType(string(ct))

	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return Quote{}, &InvalidLineItemError{Index: i, Reason: "quantity must be greater than 0"}
		}
		if item.UnitPrice.IsNegative() {
			return Quote{}, &InvalidLineItemError{Index: i, Reason: "unit price must be zero or greater"}
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
	}
	subtotal = subtotal.Round(2)

	discount := DiscountFor(subtotal, ct).Round(2)

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRates[ct]).Round(2)
	total := taxable.Add(tax).Round(2)

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}, nil
}
