// Package catalog defines the read-only customer and product lookups the
// order engine consumes.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/pricing"
)

var (
	// ErrCustomerNotFound is returned when a requested customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Customer is a catalog entry. The type tag drives pricing policy selection
// and is immutable for the duration of an editing session.
type Customer struct {
	ID      int64
	Name    string
	Type    pricing.CustomerType
	Email   string
	Phone   string
	Address string
}

// Product is a read-only catalog entry with a non-negative unit price.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// CustomerRepository defines read operations over the customer catalog.
type CustomerRepository interface {
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
}

// ProductRepository defines read operations over the product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}
