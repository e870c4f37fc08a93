package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aimsys/order-entry/internal/domain/order"
	"github.com/aimsys/order-entry/internal/domain/staging"
)

const (
	// One snapshot for all four tables so the basis check sees a single
	// consistent view.
	nextSequencesSQL = `SELECT
		(SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders),
		(SELECT COALESCE(MAX(shipper_id), 0) + 1 FROM shipper),
		(SELECT COALESCE(MAX(container_id), 0) + 1 FROM container),
		(SELECT COALESCE(MAX(line_id), 0) + 1 FROM order_line)`

	insertOrderSQL = `INSERT INTO orders (order_id, cust_id, cust_name, order_date, subtotal, discount, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	// order_date is the creation timestamp and survives rewrites.
	updateOrderSQL = `UPDATE orders
		SET cust_id = $2, cust_name = $3, subtotal = $4, discount = $5, tax = $6, total = $7
		WHERE order_id = $1`

	insertShipperSQL = `INSERT INTO shipper (shipper_id, order_id, shipper_number, carrier, tracking_number, ship_date, total_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertContainerSQL = `INSERT INTO container (container_id, shipper_id, order_id, container_number, container_type, weight, dimensions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertLineSQL = `INSERT INTO order_line (line_id, order_id, container_id, prod_id, prod_name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getOrderSQL = `SELECT order_id, cust_id, cust_name, order_date, subtotal, discount, tax, total
		FROM orders WHERE order_id = $1`

	listOrdersSQL = `SELECT order_id, cust_id, cust_name, order_date, subtotal, discount, tax, total
		FROM orders ORDER BY order_id`

	getShippersSQL = `SELECT shipper_id, order_id, shipper_number, carrier, tracking_number, ship_date, total_weight
		FROM shipper WHERE order_id = $1 ORDER BY shipper_id`

	getContainersSQL = `SELECT container_id, shipper_id, order_id, container_number, container_type, weight, dimensions
		FROM container WHERE order_id = $1 ORDER BY container_id`

	getLinesSQL = `SELECT line_id, order_id, container_id, prod_id, prod_name, quantity, unit_price
		FROM order_line WHERE order_id = $1 ORDER BY line_id`

	summarizeSQL = `SELECT COUNT(*),
		COALESCE(SUM(total), 0), COALESCE(SUM(discount), 0), COALESCE(SUM(tax), 0)
		FROM orders`
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Every save runs in
// a single transaction, so a failed commit leaves no partial hierarchy.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// NextSequences reads the next free identifier for each table.
func (s *OrderStore) NextSequences(ctx context.Context) (order.Sequences, error) {
	var seq order.Sequences
	err := s.pool.QueryRow(ctx, nextSequencesSQL).Scan(
		&seq.NextOrder, &seq.NextShipper, &seq.NextContainer, &seq.NextLine,
	)
	if err != nil {
		return order.Sequences{}, fmt.Errorf("reading id sequences: %w", err)
	}
	return seq, nil
}

// Apply writes the whole plan in one transaction. The plan's basis sequences
// are re-checked first: if another writer consumed ids since the plan was
// built, the transaction rolls back with order.ErrSequenceConflict.
func (s *OrderStore) Apply(ctx context.Context, plan *order.CommitPlan) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var current order.Sequences
	err = tx.QueryRow(ctx, nextSequencesSQL).Scan(
		&current.NextOrder, &current.NextShipper, &current.NextContainer, &current.NextLine,
	)
	if err != nil {
		return fmt.Errorf("re-reading id sequences: %w", err)
	}
	if current != plan.Basis {
		return order.ErrSequenceConflict
	}

	if plan.Replace {
		tag, err := tx.Exec(ctx, updateOrderSQL,
			plan.Order.ID, plan.Order.CustomerID, plan.Order.CustomerName,
			plan.Order.Subtotal, plan.Order.Discount, plan.Order.Tax, plan.Order.Total,
		)
		if err != nil {
			return fmt.Errorf("updating order %d: %w", plan.Order.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		if err := deleteHierarchy(ctx, tx, plan.Order.ID); err != nil {
			return err
		}
	} else {
		_, err := tx.Exec(ctx, insertOrderSQL,
			plan.Order.ID, plan.Order.CustomerID, plan.Order.CustomerName, plan.Order.OrderDate,
			plan.Order.Subtotal, plan.Order.Discount, plan.Order.Tax, plan.Order.Total,
		)
		if err != nil {
			return fmt.Errorf("inserting order %d: %w", plan.Order.ID, err)
		}
	}

	for _, sh := range plan.Shippers {
		_, err := tx.Exec(ctx, insertShipperSQL,
			sh.ID, sh.OrderID, sh.Number, sh.Carrier, sh.TrackingNumber, sh.ShipDate, sh.TotalWeight,
		)
		if err != nil {
			return fmt.Errorf("inserting shipper %d: %w", sh.ID, err)
		}
	}
	for _, c := range plan.Containers {
		_, err := tx.Exec(ctx, insertContainerSQL,
			c.ID, c.ShipperID, c.OrderID, c.Number, string(c.Type), c.Weight, c.Dimensions,
		)
		if err != nil {
			return fmt.Errorf("inserting container %d: %w", c.ID, err)
		}
	}
	for _, l := range plan.Lines {
		_, err := tx.Exec(ctx, insertLineSQL,
			l.ID, l.OrderID, l.ContainerID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("inserting order line %d: %w", l.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", plan.Order.ID, err)
	}
	return nil
}

// GetHierarchy returns an order header with its full shipment tree, each
// level in id order.
func (s *OrderStore) GetHierarchy(ctx context.Context, id order.ID) (*order.Hierarchy, error) {
	rows, err := s.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	h := &order.Hierarchy{Order: o}

	rows, err = s.pool.Query(ctx, getShippersSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting shippers for order %d: %w", id, err)
	}
	if h.Shippers, err = pgx.CollectRows(rows, scanShipper); err != nil {
		return nil, fmt.Errorf("getting shippers for order %d: %w", id, err)
	}

	rows, err = s.pool.Query(ctx, getContainersSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting containers for order %d: %w", id, err)
	}
	if h.Containers, err = pgx.CollectRows(rows, scanContainer); err != nil {
		return nil, fmt.Errorf("getting containers for order %d: %w", id, err)
	}

	rows, err = s.pool.Query(ctx, getLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting lines for order %d: %w", id, err)
	}
	if h.Lines, err = pgx.CollectRows(rows, scanLine); err != nil {
		return nil, fmt.Errorf("getting lines for order %d: %w", id, err)
	}

	return h, nil
}

// List returns all order headers in id order.
func (s *OrderStore) List(ctx context.Context) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Summarize aggregates the orders table for reporting.
func (s *OrderStore) Summarize(ctx context.Context) (order.Summary, error) {
	var sum order.Summary
	err := s.pool.QueryRow(ctx, summarizeSQL).Scan(
		&sum.Orders, &sum.Revenue, &sum.Discounts, &sum.Tax,
	)
	if err != nil {
		return order.Summary{}, fmt.Errorf("summarizing orders: %w", err)
	}
	return sum, nil
}

// Delete removes an order and its hierarchy, children first, in one
// transaction.
func (s *OrderStore) Delete(ctx context.Context, id order.ID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := deleteHierarchy(ctx, tx, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	return nil
}

func deleteHierarchy(ctx context.Context, tx pgx.Tx, id order.ID) error {
	for _, q := range []string{
		`DELETE FROM order_line WHERE order_id = $1`,
		`DELETE FROM container WHERE order_id = $1`,
		`DELETE FROM shipper WHERE order_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return fmt.Errorf("deleting hierarchy of order %d: %w", id, err)
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.OrderDate,
		&o.Subtotal, &o.Discount, &o.Tax, &o.Total,
	)
	return o, err
}

func scanShipper(row pgx.CollectableRow) (order.Shipper, error) {
	var sh order.Shipper
	err := row.Scan(
		&sh.ID, &sh.OrderID, &sh.Number, &sh.Carrier, &sh.TrackingNumber,
		&sh.ShipDate, &sh.TotalWeight,
	)
	return sh, err
}

func scanContainer(row pgx.CollectableRow) (order.Container, error) {
	var (
		c     order.Container
		ctype string
	)
	err := row.Scan(
		&c.ID, &c.ShipperID, &c.OrderID, &c.Number, &ctype, &c.Weight, &c.Dimensions,
	)
	c.Type = staging.ContainerType(ctype)
	return c, err
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(
		&l.ID, &l.OrderID, &l.ContainerID, &l.ProductID, &l.ProductName,
		&l.Quantity, &l.UnitPrice,
	)
	return l, err
}
