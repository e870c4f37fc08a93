package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/catalog"
	"github.com/aimsys/order-entry/internal/domain/pricing"
	"github.com/aimsys/order-entry/internal/domain/staging"
)

// ValidationError aggregates every pre-commit violation from a save
// attempt so the caller sees all problems at once.
type ValidationError struct {
	Report staging.Report
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Report.Messages(), "; ")
}

// LineInput is one requested order line.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// ContainerInput is one requested container with its lines.
type ContainerInput struct {
	Number     string
	Type       string
	Weight     decimal.Decimal
	Dimensions string
	Lines      []LineInput
}

// ShipperInput is one requested shipper with its containers.
type ShipperInput struct {
	Number         string
	Carrier        string
	TrackingNumber string
	Containers     []ContainerInput
}

// SaveRequest is the full staged hierarchy for one save attempt.
type SaveRequest struct {
	CustomerID int64
	Shippers   []ShipperInput
}

// Service orchestrates an editing session: it resolves catalog entries,
// stages the hierarchy, prices it, validates it, and commits the result
// through the store.
type Service struct {
	customers catalog.CustomerRepository
	products  catalog.ProductRepository
	store     Store
	now       func() time.Time
}

// NewService creates a Service with the required collaborators.
func NewService(customers catalog.CustomerRepository, products catalog.ProductRepository, store Store) *Service {
	return &Service{
		customers: customers,
		products:  products,
		store:     store,
		now:       time.Now,
	}
}

// Stage builds a fresh workspace from the request, snapshotting each
// product's current name and price from the catalog. Catalog misses and
// malformed container types fail here, before validation.
func (s *Service) Stage(ctx context.Context, req SaveRequest) (*staging.Workspace, error) {
	ws := staging.NewWorkspace()

	for _, sh := range req.Shippers {
		shipperID, err := ws.AddOrSelectShipper(0, sh.Number, sh.Carrier, sh.TrackingNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "stage shipper %q", sh.Number)
		}

		for _, c := range sh.Containers {
			ctype, err := staging.ParseContainerType(c.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "stage container %q", c.Number)
			}

			containerID, err := ws.AddOrSelectContainer(shipperID, 0, c.Number, ctype, c.Weight, c.Dimensions)
			if err != nil {
				return nil, errors.Wrapf(err, "stage container %q", c.Number)
			}

			for _, l := range c.Lines {
				p, err := s.products.GetByID(ctx, l.ProductID)
				if err != nil {
					return nil, errors.Wrapf(err, "product %d", l.ProductID)
				}

				snapshot := staging.ProductSnapshot{
					ProductID: p.ID,
					Name:      p.Name,
					UnitPrice: p.UnitPrice,
				}
				if _, err := ws.AddLine(snapshot, l.Quantity, containerID); err != nil {
					return nil, errors.Wrapf(err, "product %d", l.ProductID)
				}
			}
		}
	}

	return ws, nil
}

// Commit validates the workspace against the customer's pricing tier and,
// when clean, writes the full hierarchy atomically. A zero existing id
// creates a new order; a non-zero id rewrites that order in full.
//
// On success the workspace is sealed; a later edit re-enters through
// LoadWorkspace. On any failure the workspace is left intact for retry.
func (s *Service) Commit(ctx context.Context, ws *staging.Workspace, customerID int64, existing ID) (*Hierarchy, error) {
	if ws.Committed() {
		return nil, staging.ErrCommitted
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "customer %d", customerID)
	}

	if report := staging.Validate(ws, customer.Type); !report.Valid() {
		return nil, &ValidationError{Report: report}
	}

	quote, err := pricing.Compute(ws.SnapshotLines(), customer.Type)
	if err != nil {
		return nil, errors.Wrap(err, "compute totals")
	}

	seq, err := s.store.NextSequences(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read id sequences")
	}

	plan := BuildPlan(ws, existing, *customer, quote, seq, s.now())
	if err := s.store.Apply(ctx, plan); err != nil {
		return nil, errors.Wrap(err, "apply commit plan")
	}
	ws.MarkCommitted()

	return &Hierarchy{
		Order:      plan.Order,
		Shippers:   plan.Shippers,
		Containers: plan.Containers,
		Lines:      plan.Lines,
	}, nil
}

// Save stages the request and commits it in one step. This is the
// request/response entry point the HTTP layer uses.
func (s *Service) Save(ctx context.Context, req SaveRequest, existing ID) (*Hierarchy, error) {
	ws, err := s.Stage(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, ws, req.CustomerID, existing)
}

// LoadWorkspace populates a workspace from a persisted order, keeping the
// persisted ids as the initial local ids. Commit renumbers every row
// regardless, so the load-time ids only matter within the session.
func (s *Service) LoadWorkspace(ctx context.Context, id ID) (*staging.Workspace, error) {
	h, err := s.store.GetHierarchy(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load order %d", id)
	}

	shippers := make([]staging.StagedShipper, len(h.Shippers))
	for i, sh := range h.Shippers {
		shippers[i] = staging.StagedShipper{
			ID:             staging.LocalID(sh.ID),
			Number:         sh.Number,
			Carrier:        sh.Carrier,
			TrackingNumber: sh.TrackingNumber,
		}
	}

	containers := make([]staging.StagedContainer, len(h.Containers))
	for i, c := range h.Containers {
		containers[i] = staging.StagedContainer{
			ID:         staging.LocalID(c.ID),
			ShipperID:  staging.LocalID(c.ShipperID),
			Number:     c.Number,
			Type:       c.Type,
			Weight:     c.Weight,
			Dimensions: c.Dimensions,
		}
	}

	lines := make([]staging.StagedLine, len(h.Lines))
	for i, l := range h.Lines {
		lines[i] = staging.StagedLine{
			ID: staging.LocalID(l.ID),
			Product: staging.ProductSnapshot{
				ProductID: l.ProductID,
				Name:      l.ProductName,
				UnitPrice: l.UnitPrice,
			},
			Quantity:    l.Quantity,
			ContainerID: staging.LocalID(l.ContainerID),
		}
	}

	return staging.Restore(shippers, containers, lines), nil
}

// Get returns a persisted order with its full hierarchy.
func (s *Service) Get(ctx context.Context, id ID) (*Hierarchy, error) {
	return s.store.GetHierarchy(ctx, id)
}

// List returns all order headers in id order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.List(ctx)
}

// Summary returns the aggregate totals across all orders.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.store.Summarize(ctx)
}

// Delete removes an order and its hierarchy, children first.
func (s *Service) Delete(ctx context.Context, id ID) error {
	return s.store.Delete(ctx, id)
}
