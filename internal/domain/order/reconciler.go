package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/catalog"
	"github.com/aimsys/order-entry/internal/domain/pricing"
	"github.com/aimsys/order-entry/internal/domain/staging"
)

// CommitPlan is the full set of rows a save produces, with durable ids
// assigned and every parent reference remapped from local to persisted ids.
// Rows are ordered parent before child: the order header, then shippers,
// then containers, then lines.
type CommitPlan struct {
	// Basis records the sequences the plan was built from. Store.Apply
	// verifies them inside its transaction before writing.
	Basis Sequences

	// Replace is true when the plan rewrites an existing order: the header
	// row is updated in place and the previous hierarchy is deleted in full
	// before the new rows are inserted.
	Replace bool

	Order      Order
	Shippers   []Shipper
	Containers []Container
	Lines      []Line
}

// BuildPlan maps a validated workspace onto durable identifiers.
//
// A new order takes seq.NextOrder; an existing one keeps its id and is
// rewritten in full. Each staged level receives a contiguous id block
// starting at the table's max+1, assigned in staging iteration order, so a
// commit never reuses an id that exists in the store even when staged
// local ids collide with persisted ids from other orders.
func BuildPlan(
	ws *staging.Workspace,
	existing ID,
	customer catalog.Customer,
	quote pricing.Quote,
	seq Sequences,
	now time.Time,
) *CommitPlan {
	orderID := existing
	replace := existing != 0
	if !replace {
		orderID = seq.NextOrder
	}

	plan := &CommitPlan{
		Basis:   seq,
		Replace: replace,
		Order: Order{
			ID:           orderID,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			OrderDate:    now,
			Subtotal:     quote.Subtotal,
			Discount:     quote.Discount,
			Tax:          quote.Tax,
			Total:        quote.Total,
		},
	}

	shipperIDs := make(map[staging.LocalID]ID)
	for i, s := range ws.Shippers() {
		id := seq.NextShipper + ID(i)
		shipperIDs[s.ID] = id
		plan.Shippers = append(plan.Shippers, Shipper{
			ID:             id,
			OrderID:        orderID,
			Number:         s.Number,
			Carrier:        s.Carrier,
			TrackingNumber: s.TrackingNumber,
			TotalWeight:    decimal.Zero,
		})
	}

	containerIDs := make(map[staging.LocalID]ID)
	for i, c := range ws.Containers() {
		id := seq.NextContainer + ID(i)
		containerIDs[c.ID] = id
		plan.Containers = append(plan.Containers, Container{
			ID:         id,
			ShipperID:  shipperIDs[c.ShipperID],
			OrderID:    orderID,
			Number:     c.Number,
			Type:       c.Type,
			Weight:     c.Weight,
			Dimensions: c.Dimensions,
		})
	}

	// Shipper total weight is derived from its containers.
	for i := range plan.Shippers {
		weight := decimal.Zero
		for _, c := range plan.Containers {
			if c.ShipperID == plan.Shippers[i].ID {
				weight = weight.Add(c.Weight)
			}
		}
		plan.Shippers[i].TotalWeight = weight
	}

	for i, l := range ws.Lines() {
		plan.Lines = append(plan.Lines, Line{
			ID:          seq.NextLine + ID(i),
			OrderID:     orderID,
			ContainerID: containerIDs[l.ContainerID],
			ProductID:   l.Product.ProductID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.UnitPrice,
		})
	}

	return plan
}
