// Command seed-db loads the demo catalog (five customers, ten products)
// and, when the orders table is empty, one demo order committed through the
// regular save path.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aimsys/order-entry/internal/domain/order"
	"github.com/aimsys/order-entry/internal/repository"
)

type customerSeed struct {
	id       int64
	name     string
	custType string
	email    string
	phone    string
	address  string
}

type productSeed struct {
	id    int64
	name  string
	price string
}

var customers = []customerSeed{
	{1, "John Doe", "STANDARD", "john.doe@email.com", "555-0101", "123 Main St"},
	{2, "Jane Smith", "PREMIUM", "jane.smith@email.com", "555-0102", "456 Oak Ave"},
	{3, "Bob Johnson", "VIP", "bob.j@email.com", "555-0103", "789 Pine Rd"},
	{4, "Alice Williams", "STANDARD", "alice.w@email.com", "555-0104", "321 Elm St"},
	{5, "Charlie Brown", "PREMIUM", "charlie.b@email.com", "555-0105", "654 Maple Dr"},
}

var products = []productSeed{
	{1, "Laptop", "1299.99"},
	{2, "Smartphone", "899.99"},
	{3, "Tablet", "599.99"},
	{4, "Monitor", "349.99"},
	{5, "Keyboard", "149.99"},
	{6, "Mouse", "29.99"},
	{7, "Headphones", "199.99"},
	{8, "Webcam", "89.99"},
	{9, "USB Hub", "39.99"},
	{10, "Desk Lamp", "49.99"},
}

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedDemoOrder(ctx, pool); err != nil {
		return errors.Wrap(err, "seed demo order")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		_, err := pool.Exec(ctx,
			`INSERT INTO customer (cust_id, cust_name, cust_type, email, phone, address)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (cust_id) DO UPDATE SET
			   cust_name = EXCLUDED.cust_name, cust_type = EXCLUDED.cust_type,
			   email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address`,
			c.id, c.name, c.custType, c.email, c.phone, c.address,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert customer %d", c.id)
		}
		slog.Info("upserted customer", slog.Int64("id", c.id), slog.String("name", c.name))
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO product (prod_id, prod_name, unit_price)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (prod_id) DO UPDATE SET
			   prod_name = EXCLUDED.prod_name, unit_price = EXCLUDED.unit_price`,
			p.id, p.name, p.price,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %d", p.id)
		}
		slog.Info("upserted product", slog.Int64("id", p.id), slog.String("name", p.name))
	}

	return nil
}

// seedDemoOrder commits one order through the regular save path so its ids
// and totals come from the same code the API uses. Skipped when any order
// already exists.
func seedDemoOrder(ctx context.Context, pool *pgxpool.Pool) error {
	store := repository.NewOrderStore(pool)

	existing, err := store.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}
	if len(existing) > 0 {
		slog.Info("orders present, skipping demo order", slog.Int("count", len(existing)))
		return nil
	}

	svc := order.NewService(
		repository.NewCustomerRepository(pool),
		repository.NewProductRepository(pool),
		store,
	)

	h, err := svc.Save(ctx, order.SaveRequest{
		CustomerID: 1,
		Shippers: []order.ShipperInput{{
			Number:  "SHIP-0001",
			Carrier: "FedEx",
			Containers: []order.ContainerInput{{
				Number: "CNT-0001",
				Type:   "Box",
				Lines: []order.LineInput{
					{ProductID: 1, Quantity: 1},
					{ProductID: 3, Quantity: 1},
					{ProductID: 6, Quantity: 1},
				},
			}},
		}},
	}, 0)
	if err != nil {
		return errors.Wrap(err, "save demo order")
	}

	slog.Info("seeded demo order",
		slog.Int64("id", int64(h.Order.ID)),
		slog.String("total", h.Order.Total.StringFixed(2)),
	)
	return nil
}
