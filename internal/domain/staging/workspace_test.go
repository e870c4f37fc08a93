package staging

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id int64, name, price string) ProductSnapshot {
	return ProductSnapshot{
		ProductID: id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
	}
}

// buildWorkspace stages one shipper, one container, and the given lines.
func buildWorkspace(t *testing.T, lines ...ProductSnapshot) (*Workspace, LocalID) {
	t.Helper()

	w := NewWorkspace()
	shipperID, err := w.AddOrSelectShipper(0, "SHIP-001", "FedEx", "TRK123")
	require.NoError(t, err)

	containerID, err := w.AddOrSelectContainer(shipperID, 0, "CNT-001", ContainerBox, decimal.Zero, "")
	require.NoError(t, err)

	for _, s := range lines {
		_, err := w.AddLine(s, 1, containerID)
		require.NoError(t, err)
	}
	return w, containerID
}

func TestWorkspace_LocalIDAllocation(t *testing.T) {
	w := NewWorkspace()

	s1, err := w.AddOrSelectShipper(0, "SHIP-001", "UPS", "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(1), s1)

	s2, err := w.AddOrSelectShipper(0, "SHIP-002", "DHL", "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(2), s2)

	// Selecting an existing shipper returns it unchanged.
	got, err := w.AddOrSelectShipper(s1, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, s1, got)
	assert.Len(t, w.Shippers(), 2)

	// Selecting an unknown shipper fails.
	_, err = w.AddOrSelectShipper(99, "", "", "")
	require.ErrorIs(t, err, ErrUnknownShipper)

	c1, err := w.AddOrSelectContainer(s1, 0, "CNT-001", ContainerPallet, decimal.Zero, "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(1), c1)

	c2, err := w.AddOrSelectContainer(s2, 0, "CNT-002", ContainerBag, decimal.Zero, "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(2), c2)

	// Container creation under an unknown shipper fails.
	_, err = w.AddOrSelectContainer(42, 0, "CNT-003", ContainerBox, decimal.Zero, "")
	require.ErrorIs(t, err, ErrUnknownShipper)
}

func TestWorkspace_LocalIDsResumeFromRestoredMax(t *testing.T) {
	// Restored workspaces keep persisted ids as local ids; new entities
	// continue from max+1, not from 1.
	w := Restore(
		[]StagedShipper{{ID: 7, Number: "SHIP-007"}},
		[]StagedContainer{{ID: 12, ShipperID: 7, Number: "CNT-012", Type: ContainerCrate}},
		[]StagedLine{{ID: 30, Product: snap(1, "Laptop", "1299.99"), Quantity: 1, ContainerID: 12}},
	)

	s, err := w.AddOrSelectShipper(0, "SHIP-008", "", "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(8), s)

	c, err := w.AddOrSelectContainer(s, 0, "CNT-013", ContainerBox, decimal.Zero, "")
	require.NoError(t, err)
	assert.Equal(t, LocalID(13), c)

	l, err := w.AddLine(snap(6, "Mouse", "29.99"), 2, c)
	require.NoError(t, err)
	assert.Equal(t, LocalID(31), l)
}

func TestWorkspace_AddLine(t *testing.T) {
	w, containerID := buildWorkspace(t)

	_, err := w.AddLine(snap(1, "Laptop", "1299.99"), 0, containerID)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = w.AddLine(snap(1, "Laptop", "1299.99"), -3, containerID)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = w.AddLine(snap(1, "Laptop", "1299.99"), 1, 99)
	require.ErrorIs(t, err, ErrUnknownContainer)

	id, err := w.AddLine(snap(1, "Laptop", "1299.99"), 2, containerID)
	require.NoError(t, err)
	assert.Equal(t, LocalID(1), id)

	lines := w.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Laptop", lines[0].Product.Name)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestWorkspace_RemoveLine(t *testing.T) {
	w, _ := buildWorkspace(t,
		snap(1, "Laptop", "1299.99"),
		snap(3, "Tablet", "599.99"),
		snap(6, "Mouse", "29.99"),
	)

	require.ErrorIs(t, w.RemoveLine(3), ErrIndexOutOfRange)
	require.ErrorIs(t, w.RemoveLine(-1), ErrIndexOutOfRange)

	require.NoError(t, w.RemoveLine(1))

	lines := w.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Laptop", lines[0].Product.Name)
	assert.Equal(t, "Mouse", lines[1].Product.Name)
}

func TestWorkspace_SnapshotLines(t *testing.T) {
	w, _ := buildWorkspace(t,
		snap(1, "Laptop", "1299.99"),
		snap(6, "Mouse", "29.99"),
	)

	items := w.SnapshotLines()
	require.Len(t, items, 2)
	assert.Equal(t, "1299.99", items[0].UnitPrice.String())
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "29.99", items[1].UnitPrice.String())
}

func TestWorkspace_CommittedRefusesMutation(t *testing.T) {
	w, containerID := buildWorkspace(t, snap(1, "Laptop", "1299.99"))
	w.MarkCommitted()

	_, err := w.AddLine(snap(6, "Mouse", "29.99"), 1, containerID)
	require.ErrorIs(t, err, ErrCommitted)
	require.ErrorIs(t, w.RemoveLine(0), ErrCommitted)
	_, err = w.AddOrSelectShipper(0, "SHIP-002", "", "")
	require.ErrorIs(t, err, ErrCommitted)
	assert.True(t, w.Committed())
}

func TestParseContainerType(t *testing.T) {
	for _, tag := range []string{"Box", "Pallet", "Crate", "Bag"} {
		got, err := ParseContainerType(tag)
		require.NoError(t, err)
		assert.Equal(t, ContainerType(tag), got)
	}

	_, err := ParseContainerType("Envelope")
	require.ErrorIs(t, err, ErrUnknownContainerType)
	_, err = ParseContainerType("box")
	require.ErrorIs(t, err, ErrUnknownContainerType)
}
