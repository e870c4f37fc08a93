package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aimsys/order-entry/internal/domain/catalog"
	"github.com/aimsys/order-entry/internal/domain/pricing"
)

const (
	listCustomersSQL = `SELECT cust_id, cust_name, cust_type, email, phone, address
		FROM customer ORDER BY cust_id`

	getCustomerByIDSQL = `SELECT cust_id, cust_name, cust_type, email, phone, address
		FROM customer WHERE cust_id = $1`

	listProductsSQL = `SELECT prod_id, prod_name, unit_price
		FROM product ORDER BY prod_id`

	getProductByIDSQL = `SELECT prod_id, prod_name, unit_price
		FROM product WHERE prod_id = $1`
)

var _ catalog.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository implements catalog.CustomerRepository backed by
// PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// List returns all customers ordered by ID.
func (r *CustomerRepository) List(ctx context.Context) ([]catalog.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*catalog.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (catalog.Customer, error) {
	var (
		c        catalog.Customer
		custType string
	)
	err := row.Scan(&c.ID, &c.Name, &custType, &c.Email, &c.Phone, &c.Address)
	c.Type = pricing.ParseCustomerType(custType)
	return c, err
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by
// PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.UnitPrice)
	return p, err
}
