// Package order owns the persisted order model and the commit path that
// maps a validated staging workspace onto durable identifiers.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/staging"
)

// ID is a durable store identifier. It is a distinct type from
// staging.LocalID so the two id spaces can never be confused.
type ID int64

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrSequenceConflict is returned when another writer consumed ids
	// between plan building and apply. The commit is rolled back; the
	// workspace stays intact so the save can be retried.
	ErrSequenceConflict = errors.New("id sequence moved since plan was built")
)

// Order is the persisted order header. CustomerName is a point-in-time
// snapshot, not a live reference. Totals are always recomputed in full on
// save, never adjusted incrementally.
type Order struct {
	ID           ID
	CustomerID   int64
	CustomerName string
	OrderDate    time.Time
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Shipper is a persisted shipment row.
type Shipper struct {
	ID             ID
	OrderID        ID
	Number         string
	Carrier        string
	TrackingNumber string
	ShipDate       *time.Time
	TotalWeight    decimal.Decimal
}

// Container is a persisted container row. OrderID is denormalized next to
// ShipperID, matching the store schema.
type Container struct {
	ID         ID
	ShipperID  ID
	OrderID    ID
	Number     string
	Type       staging.ContainerType
	Weight     decimal.Decimal
	Dimensions string
}

// Line is a persisted order line. ProductName and UnitPrice are snapshots
// captured when the line was staged.
type Line struct {
	ID          ID
	OrderID     ID
	ContainerID ID
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Hierarchy is a full persisted order: header plus the three-level shipment
// tree, each level in id order.
type Hierarchy struct {
	Order      Order
	Shippers   []Shipper
	Containers []Container
	Lines      []Line
}

// Sequences holds the next free identifier per table, each computed as
// max(existing)+1. The read-then-insert scheme is only safe under a single
// writer; Store.Apply re-checks the basis inside its transaction and fails
// with ErrSequenceConflict instead of silently colliding.
type Sequences struct {
	NextOrder     ID
	NextShipper   ID
	NextContainer ID
	NextLine      ID
}

// Summary aggregates the orders table for reporting: order count plus
// grand totals across all persisted orders.
type Summary struct {
	Orders    int64
	Revenue   decimal.Decimal
	Discounts decimal.Decimal
	Tax       decimal.Decimal
}

// Store is the durable order store. Apply must be atomic: either the whole
// plan lands or none of it does.
type Store interface {
	NextSequences(ctx context.Context) (Sequences, error)
	Apply(ctx context.Context, plan *CommitPlan) error
	GetHierarchy(ctx context.Context, id ID) (*Hierarchy, error)
	List(ctx context.Context) ([]Order, error)
	Summarize(ctx context.Context) (Summary, error)
	Delete(ctx context.Context, id ID) error
}
