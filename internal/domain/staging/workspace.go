// Package staging holds the in-memory shipment hierarchy an editing session
// builds before commit: shippers own containers, containers own order lines.
//
// Entities carry session-scoped local identifiers (LocalID) allocated as
// max+1 within the workspace. Local ids exist only so lines can point at
// containers and containers at shippers before durable ids are assigned;
// the commit layer renumbers everything.
package staging

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/pricing"
)

// LocalID identifies a staged entity within a single workspace. It is never
// a durable identifier; see the order package for persisted ids.
type LocalID int64

// ContainerType enumerates the supported physical container kinds.
type ContainerType string

const (
	ContainerBox    ContainerType = "Box"
	ContainerPallet ContainerType = "Pallet"
	ContainerCrate  ContainerType = "Crate"
	ContainerBag    ContainerType = "Bag"
)

// ErrUnknownContainerType is returned when a container type tag is not one
// of the closed set.
var ErrUnknownContainerType = errors.New("unknown container type")

// ParseContainerType validates a container type tag. Unlike customer types
// there is no fallback; an unknown tag is an error.
func ParseContainerType(tag string) (ContainerType, error) {
	switch ContainerType(tag) {
	case ContainerBox, ContainerPallet, ContainerCrate, ContainerBag:
		return ContainerType(tag), nil
	default:
		return "", errors.Wrapf(ErrUnknownContainerType, "%q", tag)
	}
}

// Sentinel errors for workspace mutations.
var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrUnknownShipper   = errors.New("shipper not staged in this workspace")
	ErrUnknownContainer = errors.New("container not staged in this workspace")
	ErrIndexOutOfRange  = errors.New("line index out of range")
	ErrCommitted        = errors.New("workspace already committed")
)

// ProductSnapshot captures a product's name and unit price at add time.
// Snapshots are deliberate point-in-time copies and are never re-read from
// the catalog.
type ProductSnapshot struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
}

// StagedLine is one order line inside a container.
type StagedLine struct {
	ID          LocalID
	Product     ProductSnapshot
	Quantity    int
	ContainerID LocalID
}

// StagedContainer is one container inside a shipper.
type StagedContainer struct {
	ID         LocalID
	ShipperID  LocalID
	Number     string
	Type       ContainerType
	Weight     decimal.Decimal
	Dimensions string
}

// StagedShipper is the top of the staged hierarchy.
type StagedShipper struct {
	ID             LocalID
	Number         string
	Carrier        string
	TrackingNumber string
}

// Workspace is the mutable staging buffer for one editing session. It has
// no external dependencies and must not be shared across sessions.
type Workspace struct {
	shippers   []StagedShipper
	containers []StagedContainer
	lines      []StagedLine
	committed  bool
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Restore populates a workspace from a persisted hierarchy, keeping the
// given ids as the initial local ids so an unchanged order round-trips
// recognizably. The commit layer renumbers every row regardless of these
// ids, so collisions with other orders' persisted ids are harmless.
func Restore(shippers []StagedShipper, containers []StagedContainer, lines []StagedLine) *Workspace {
	w := &Workspace{
		shippers:   make([]StagedShipper, len(shippers)),
		containers: make([]StagedContainer, len(containers)),
		lines:      make([]StagedLine, len(lines)),
	}
	copy(w.shippers, shippers)
	copy(w.containers, containers)
	copy(w.lines, lines)
	return w
}

// AddOrSelectShipper selects the staged shipper with the given id, or
// creates a new one when id is zero. The new shipper gets local id
// max(existing)+1, starting at 1 for an empty workspace.
func (w *Workspace) AddOrSelectShipper(id LocalID, number, carrier, trackingNumber string) (LocalID, error) {
	if w.committed {
		return 0, ErrCommitted
	}
	if id != 0 {
		for i := range w.shippers {
			if w.shippers[i].ID == id {
				return id, nil
			}
		}
		return 0, errors.Wrapf(ErrUnknownShipper, "shipper %d", id)
	}

	next := nextLocalID(len(w.shippers), func(i int) LocalID { return w.shippers[i].ID })
	w.shippers = append(w.shippers, StagedShipper{
		ID:             next,
		Number:         number,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
	})
	return next, nil
}

// AddOrSelectContainer selects the staged container with the given id under
// any shipper, or creates a new one under shipperID when id is zero.
func (w *Workspace) AddOrSelectContainer(shipperID, id LocalID, number string, ctype ContainerType, weight decimal.Decimal, dimensions string) (LocalID, error) {
	if w.committed {
		return 0, ErrCommitted
	}
	if id != 0 {
		for i := range w.containers {
			if w.containers[i].ID == id {
				return id, nil
			}
		}
		return 0, errors.Wrapf(ErrUnknownContainer, "container %d", id)
	}

	if !w.hasShipper(shipperID) {
		return 0, errors.Wrapf(ErrUnknownShipper, "shipper %d", shipperID)
	}

	next := nextLocalID(len(w.containers), func(i int) LocalID { return w.containers[i].ID })
	w.containers = append(w.containers, StagedContainer{
		ID:         next,
		ShipperID:  shipperID,
		Number:     number,
		Type:       ctype,
		Weight:     weight,
		Dimensions: dimensions,
	})
	return next, nil
}

// AddLine appends a line holding the given product snapshot. The quantity
// must be positive and the container must already be staged.
func (w *Workspace) AddLine(product ProductSnapshot, quantity int, containerID LocalID) (LocalID, error) {
	if w.committed {
		return 0, ErrCommitted
	}
	if quantity <= 0 {
		return 0, errors.Wrapf(ErrInvalidQuantity, "got %d", quantity)
	}
	if !w.hasContainer(containerID) {
		return 0, errors.Wrapf(ErrUnknownContainer, "container %d", containerID)
	}

	next := nextLocalID(len(w.lines), func(i int) LocalID { return w.lines[i].ID })
	w.lines = append(w.lines, StagedLine{
		ID:          next,
		Product:     product,
		Quantity:    quantity,
		ContainerID: containerID,
	})
	return next, nil
}

// RemoveLine removes the line at the given zero-based position. Lines are
// never edited in place; callers remove and re-add instead.
func (w *Workspace) RemoveLine(index int) error {
	if w.committed {
		return ErrCommitted
	}
	if index < 0 || index >= len(w.lines) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, %d lines", index, len(w.lines))
	}
	w.lines = append(w.lines[:index], w.lines[index+1:]...)
	return nil
}

// SnapshotLines returns the flat pricing input in insertion order.
func (w *Workspace) SnapshotLines() []pricing.LineItem {
	items := make([]pricing.LineItem, len(w.lines))
	for i, line := range w.lines {
		items[i] = pricing.LineItem{
			UnitPrice: line.Product.UnitPrice,
			Quantity:  line.Quantity,
		}
	}
	return items
}

// Shippers returns the staged shippers in creation order.
func (w *Workspace) Shippers() []StagedShipper {
	out := make([]StagedShipper, len(w.shippers))
	copy(out, w.shippers)
	return out
}

// Containers returns the staged containers in creation order.
func (w *Workspace) Containers() []StagedContainer {
	out := make([]StagedContainer, len(w.containers))
	copy(out, w.containers)
	return out
}

// Lines returns the staged lines in insertion order.
func (w *Workspace) Lines() []StagedLine {
	out := make([]StagedLine, len(w.lines))
	copy(out, w.lines)
	return out
}

// MarkCommitted seals the workspace after a successful commit. Further
// mutations fail with ErrCommitted; each edit re-enters through a fresh
// load from the store.
func (w *Workspace) MarkCommitted() {
	w.committed = true
}

// Committed reports whether the workspace has been sealed by a commit.
func (w *Workspace) Committed() bool {
	return w.committed
}

func (w *Workspace) hasShipper(id LocalID) bool {
	for i := range w.shippers {
		if w.shippers[i].ID == id {
			return true
		}
	}
	return false
}

func (w *Workspace) hasContainer(id LocalID) bool {
	for i := range w.containers {
		if w.containers[i].ID == id {
			return true
		}
	}
	return false
}

func nextLocalID(n int, at func(int) LocalID) LocalID {
	var maxID LocalID
	for i := 0; i < n; i++ {
		if id := at(i); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
