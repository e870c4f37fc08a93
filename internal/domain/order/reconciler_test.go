package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimsys/order-entry/internal/domain/catalog"
	"github.com/aimsys/order-entry/internal/domain/pricing"
	"github.com/aimsys/order-entry/internal/domain/staging"
)

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stagedFixture builds a workspace with two shippers, three containers, and
// four lines spread across them.
func stagedFixture(t *testing.T) *staging.Workspace {
	t.Helper()

	ws := staging.NewWorkspace()

	s1, err := ws.AddOrSelectShipper(0, "SHIP-001", "FedEx", "TRK1")
	require.NoError(t, err)
	s2, err := ws.AddOrSelectShipper(0, "SHIP-002", "UPS", "TRK2")
	require.NoError(t, err)

	c1, err := ws.AddOrSelectContainer(s1, 0, "CNT-001", staging.ContainerBox, mustDecimal("10.50"), "30x20x10")
	require.NoError(t, err)
	c2, err := ws.AddOrSelectContainer(s1, 0, "CNT-002", staging.ContainerCrate, mustDecimal("4.25"), "")
	require.NoError(t, err)
	c3, err := ws.AddOrSelectContainer(s2, 0, "CNT-003", staging.ContainerPallet, mustDecimal("80.00"), "")
	require.NoError(t, err)

	add := func(prodID int64, name, price string, qty int, container staging.LocalID) {
		_, err := ws.AddLine(staging.ProductSnapshot{
			ProductID: prodID,
			Name:      name,
			UnitPrice: mustDecimal(price),
		}, qty, container)
		require.NoError(t, err)
	}
	add(1, "Laptop", "1299.99", 1, c1)
	add(6, "Mouse", "29.99", 2, c1)
	add(3, "Tablet", "599.99", 1, c2)
	add(5, "Keyboard", "149.99", 1, c3)

	return ws
}

func testCustomer() catalog.Customer {
	return catalog.Customer{ID: 2, Name: "Jane Smith", Type: pricing.TypeStandard}
}

func TestBuildPlan_NewOrder(t *testing.T) {
	ws := stagedFixture(t)
	quote, err := pricing.Compute(ws.SnapshotLines(), pricing.TypeStandard)
	require.NoError(t, err)

	seq := Sequences{NextOrder: 10, NextShipper: 21, NextContainer: 35, NextLine: 108}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	plan := BuildPlan(ws, 0, testCustomer(), quote, seq, now)

	assert.False(t, plan.Replace)
	assert.Equal(t, seq, plan.Basis)
	assert.Equal(t, ID(10), plan.Order.ID)
	assert.Equal(t, int64(2), plan.Order.CustomerID)
	assert.Equal(t, "Jane Smith", plan.Order.CustomerName)
	assert.Equal(t, now, plan.Order.OrderDate)
	assert.Equal(t, quote.Total.String(), plan.Order.Total.String())

	// Contiguous id blocks in staging iteration order.
	require.Len(t, plan.Shippers, 2)
	assert.Equal(t, ID(21), plan.Shippers[0].ID)
	assert.Equal(t, ID(22), plan.Shippers[1].ID)

	require.Len(t, plan.Containers, 3)
	assert.Equal(t, ID(35), plan.Containers[0].ID)
	assert.Equal(t, ID(36), plan.Containers[1].ID)
	assert.Equal(t, ID(37), plan.Containers[2].ID)

	require.Len(t, plan.Lines, 4)
	for i, l := range plan.Lines {
		assert.Equal(t, ID(108+i), l.ID)
		assert.Equal(t, ID(10), l.OrderID)
	}

	// Parent references are remapped to the new persisted ids.
	assert.Equal(t, ID(21), plan.Containers[0].ShipperID)
	assert.Equal(t, ID(21), plan.Containers[1].ShipperID)
	assert.Equal(t, ID(22), plan.Containers[2].ShipperID)

	assert.Equal(t, ID(35), plan.Lines[0].ContainerID)
	assert.Equal(t, ID(35), plan.Lines[1].ContainerID)
	assert.Equal(t, ID(36), plan.Lines[2].ContainerID)
	assert.Equal(t, ID(37), plan.Lines[3].ContainerID)

	// Every row carries the denormalized order id.
	for _, s := range plan.Shippers {
		assert.Equal(t, ID(10), s.OrderID)
	}
	for _, c := range plan.Containers {
		assert.Equal(t, ID(10), c.OrderID)
	}
}

func TestBuildPlan_ExistingOrderKeepsID(t *testing.T) {
	ws := stagedFixture(t)
	quote, err := pricing.Compute(ws.SnapshotLines(), pricing.TypeStandard)
	require.NoError(t, err)

	seq := Sequences{NextOrder: 10, NextShipper: 21, NextContainer: 35, NextLine: 108}
	plan := BuildPlan(ws, 4, testCustomer(), quote, seq, time.Now())

	assert.True(t, plan.Replace)
	assert.Equal(t, ID(4), plan.Order.ID)
	// Child ids still come from the global sequences, not from the order.
	assert.Equal(t, ID(21), plan.Shippers[0].ID)
	for _, l := range plan.Lines {
		assert.Equal(t, ID(4), l.OrderID)
	}
}

func TestBuildPlan_ShipperWeightFromContainers(t *testing.T) {
	ws := stagedFixture(t)
	quote, err := pricing.Compute(ws.SnapshotLines(), pricing.TypeStandard)
	require.NoError(t, err)

	plan := BuildPlan(ws, 0, testCustomer(), quote, Sequences{1, 1, 1, 1}, time.Now())

	assert.Equal(t, "14.75", plan.Shippers[0].TotalWeight.String())
	assert.Equal(t, "80", plan.Shippers[1].TotalWeight.String())
}

func TestBuildPlan_SnapshotsCarriedVerbatim(t *testing.T) {
	ws := stagedFixture(t)
	quote, err := pricing.Compute(ws.SnapshotLines(), pricing.TypeStandard)
	require.NoError(t, err)

	plan := BuildPlan(ws, 0, testCustomer(), quote, Sequences{1, 1, 1, 1}, time.Now())

	assert.Equal(t, "Laptop", plan.Lines[0].ProductName)
	assert.Equal(t, "1299.99", plan.Lines[0].UnitPrice.String())
	assert.Equal(t, 2, plan.Lines[1].Quantity)
	assert.Equal(t, staging.ContainerCrate, plan.Containers[1].Type)
	assert.Equal(t, "30x20x10", plan.Containers[0].Dimensions)
}
