package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(price string, qty int) []LineItem {
	return []LineItem{{UnitPrice: decimal.RequireFromString(price), Quantity: qty}}
}

func TestCompute_TierBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		items        []LineItem
		customerType CustomerType
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "standard below first tier",
			items:        items("499.99", 1),
			customerType: TypeStandard,
			wantSubtotal: "499.99",
			wantDiscount: "0.00",
			wantTax:      "74.87",
			wantTotal:    "574.86",
		},
		{
			name:         "standard exactly at 500 gets 5%",
			items:        items("500.00", 1),
			customerType: TypeStandard,
			wantSubtotal: "500.00",
			wantDiscount: "25.00",
			wantTax:      "71.13",
			wantTotal:    "546.13",
		},
		{
			name:         "standard exactly at 1000 gets 10% not 5%",
			items:        items("1000.00", 1),
			customerType: TypeStandard,
			wantSubtotal: "1000.00",
			wantDiscount: "100.00",
			wantTax:      "134.78",
			wantTotal:    "1034.78",
		},
		{
			name:         "standard at 2000 gets 15%",
			items:        items("2000.00", 1),
			customerType: TypeStandard,
			wantSubtotal: "2000.00",
			wantDiscount: "300.00",
			wantTax:      "254.58",
			wantTotal:    "1954.58",
		},
		{
			name:         "premium at 1500 gets 18%",
			items:        items("1500.00", 1),
			customerType: TypePremium,
			wantSubtotal: "1500.00",
			wantDiscount: "270.00",
			wantTax:      "147.60",
			wantTotal:    "1377.60",
		},
		{
			name:         "premium at 800 gets 12%",
			items:        items("800.00", 1),
			customerType: TypePremium,
			wantSubtotal: "800.00",
			wantDiscount: "96.00",
			wantTax:      "84.48",
			wantTotal:    "788.48",
		},
		{
			name:         "premium just below 400 gets nothing",
			items:        items("399.99", 1),
			customerType: TypePremium,
			wantSubtotal: "399.99",
			wantDiscount: "0.00",
			wantTax:      "48.00",
			wantTotal:    "447.99",
		},
		{
			name:         "vip flat 20% on small order",
			items:        items("300.00", 1),
			customerType: TypeVIP,
			wantSubtotal: "300.00",
			wantDiscount: "60.00",
			wantTax:      "24.00",
			wantTotal:    "264.00",
		},
		{
			name:         "unknown type falls back to standard",
			items:        items("500.00", 1),
			customerType: CustomerType("GOLD"),
			wantSubtotal: "500.00",
			wantDiscount: "25.00",
			wantTax:      "71.13",
			wantTotal:    "546.13",
		},
		{
			name: "multi-line subtotal sums before tiering",
			items: []LineItem{
				{UnitPrice: decimal.RequireFromString("299.99"), Quantity: 2},
				{UnitPrice: decimal.RequireFromString("400.02"), Quantity: 1},
			},
			customerType: TypeStandard,
			wantSubtotal: "1000.00",
			wantDiscount: "100.00",
			wantTax:      "134.78",
			wantTotal:    "1034.78",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compute(tt.items, tt.customerType)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSubtotal, q.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, q.Discount.StringFixed(2))
			assert.Equal(t, tt.wantTax, q.Tax.StringFixed(2))
			assert.Equal(t, tt.wantTotal, q.Total.StringFixed(2))

			// total == subtotal - discount + tax, exactly.
			assert.True(t, q.Total.Equal(q.Subtotal.Sub(q.Discount).Add(q.Tax)))

			// No output carries more than two fractional digits.
			for _, v := range []decimal.Decimal{q.Subtotal, q.Discount, q.Tax, q.Total} {
				assert.True(t, v.Equal(v.Round(2)), "more than two fractional digits: %s", v)
			}
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := []LineItem{
		{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3},
		{UnitPrice: decimal.RequireFromString("1299.99"), Quantity: 1},
	}

	first, err := Compute(in, TypePremium)
	require.NoError(t, err)
	second, err := Compute(in, TypePremium)
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Discount.String(), second.Discount.String())
	assert.Equal(t, first.Tax.String(), second.Tax.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
}

func TestCompute_RejectsInvalidInput(t *testing.T) {
	_, err := Compute(items("10.00", 0), TypeStandard)
	var lineErr *InvalidLineItemError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 0, lineErr.Index)

	_, err = Compute(items("-1.00", 1), TypeStandard)
	require.ErrorAs(t, err, &lineErr)
}

func TestCompute_EmptyItems(t *testing.T) {
	q, err := Compute(nil, TypeStandard)
	require.NoError(t, err)
	assert.Equal(t, "0.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", q.Total.StringFixed(2))
}

func TestParseCustomerType(t *testing.T) {
	assert.Equal(t, TypePremium, ParseCustomerType("PREMIUM"))
	assert.Equal(t, TypeVIP, ParseCustomerType("VIP"))
	assert.Equal(t, TypeStandard, ParseCustomerType("STANDARD"))
	assert.Equal(t, TypeStandard, ParseCustomerType(""))
	assert.Equal(t, TypeStandard, ParseCustomerType("premium"))
}

func TestMaxDiscountRatio(t *testing.T) {
	assert.Equal(t, "0.15", TypeStandard.MaxDiscountRatio().String())
	assert.Equal(t, "0.18", TypePremium.MaxDiscountRatio().String())
	assert.Equal(t, "0.2", TypeVIP.MaxDiscountRatio().String())
	assert.Equal(t, "0.15", CustomerType("whatever").MaxDiscountRatio().String())
}
