package staging

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimsys/order-entry/internal/domain/pricing"
)

func kinds(r Report) []ViolationKind {
	out := make([]ViolationKind, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Kind
	}
	return out
}

func TestValidate_EmptyOrder(t *testing.T) {
	w := NewWorkspace()

	report := Validate(w, pricing.TypeStandard)
	require.False(t, report.Valid())
	assert.Equal(t, []ViolationKind{ViolationEmptyOrder}, kinds(report))
	assert.Equal(t, []string{"order must have at least one line item"}, report.Messages())
}

func TestValidate_CleanWorkspace(t *testing.T) {
	w, _ := buildWorkspace(t, snap(1, "Laptop", "1299.99"))

	report := Validate(w, pricing.TypeStandard)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Messages())
}

func TestValidate_OrphanLineIndependentOfOtherViolations(t *testing.T) {
	// A restored workspace can carry bad data the staging operations would
	// have rejected; the validator must still report every problem at once.
	w := Restore(
		[]StagedShipper{{ID: 1, Number: "SHIP-001"}},
		[]StagedContainer{{ID: 1, ShipperID: 1, Number: "CNT-001", Type: ContainerBox}},
		[]StagedLine{
			{ID: 1, Product: snap(1, "Laptop", "1299.99"), Quantity: 0, ContainerID: 1},
			{ID: 2, Product: snap(6, "Mouse", "29.99"), Quantity: 1, ContainerID: 9},
		},
	)

	report := Validate(w, pricing.TypeStandard)
	require.False(t, report.Valid())
	assert.Equal(t, []ViolationKind{
		ViolationInvalidQuantity,
		ViolationOrphanReference,
	}, kinds(report))
	assert.Contains(t, report.Messages()[0], "line 1")
	assert.Contains(t, report.Messages()[1], "container 9")
}

func TestValidate_OrphanContainer(t *testing.T) {
	w := Restore(
		[]StagedShipper{{ID: 1, Number: "SHIP-001"}},
		[]StagedContainer{{ID: 1, ShipperID: 5, Number: "CNT-001", Type: ContainerBox}},
		[]StagedLine{{ID: 1, Product: snap(1, "Laptop", "1299.99"), Quantity: 1, ContainerID: 1}},
	)

	report := Validate(w, pricing.TypeVIP)
	require.False(t, report.Valid())
	assert.Equal(t, []ViolationKind{ViolationOrphanReference}, kinds(report))
	assert.Contains(t, report.Messages()[0], "shipper 5")
}

func TestValidate_NegativePrice(t *testing.T) {
	w := Restore(
		[]StagedShipper{{ID: 1, Number: "SHIP-001"}},
		[]StagedContainer{{ID: 1, ShipperID: 1, Number: "CNT-001", Type: ContainerBox}},
		[]StagedLine{{
			ID:          1,
			Product:     ProductSnapshot{ProductID: 1, Name: "Broken", UnitPrice: decimal.RequireFromString("-5.00")},
			Quantity:    1,
			ContainerID: 1,
		}},
	)

	report := Validate(w, pricing.TypeStandard)
	require.False(t, report.Valid())
	assert.Equal(t, []ViolationKind{ViolationInvalidPrice}, kinds(report))
}

func TestValidate_DiscountWithinCeiling(t *testing.T) {
	// The tier ladders never exceed their ceilings, so a defensive pass over
	// every tier boundary must stay clean.
	for _, price := range []string{"300.00", "500.00", "1000.00", "2000.00", "9999.99"} {
		for _, ct := range []pricing.CustomerType{pricing.TypeStandard, pricing.TypePremium, pricing.TypeVIP} {
			w, _ := buildWorkspace(t, snap(1, "Item", price))
			report := Validate(w, ct)
			assert.True(t, report.Valid(), "type %s price %s: %v", ct, price, report.Messages())
		}
	}
}
