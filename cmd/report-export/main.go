// Command report-export dumps the persisted orders as two gzipped CSV
// files: a header-level summary and a flattened hierarchy detail. Aggregate
// totals across all orders are printed at the end.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/aimsys/order-entry/internal/domain/order"
	"github.com/aimsys/order-entry/internal/repository"
)

func main() {
	var (
		databaseURL string
		outDir      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outDir, "out-dir", ".", "directory for the exported files")
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

	if err := run(ctx, databaseURL, outDir); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("export completed successfully")
}

func run(ctx context.Context, databaseURL, outDir string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	store := repository.NewOrderStore(pool)

	orders, err := store.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list orders")
	}
	slog.Info("exporting orders", slog.Int("count", len(orders)))

	// Both files are independent reads, so write them in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeSummaryFile(filepath.Join(outDir, "orders-summary.csv.gz"), orders)
	})
	g.Go(func() error {
		return writeHierarchyFile(gctx, filepath.Join(outDir, "orders-hierarchy.csv.gz"), store, orders)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sum, err := store.Summarize(ctx)
	if err != nil {
		return errors.Wrap(err, "summarize orders")
	}
	slog.Info("totals",
		slog.Int64("orders", sum.Orders),
		slog.String("revenue", sum.Revenue.StringFixed(2)),
		slog.String("discounts", sum.Discounts.StringFixed(2)),
		slog.String("tax", sum.Tax.StringFixed(2)),
	)

	return nil
}

// csvGz opens path and returns a CSV writer on top of a gzip stream, plus a
// close function that flushes both layers.
func csvGz(path string) (*csv.Writer, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}

	gz := pgzip.NewWriter(f)
	w := csv.NewWriter(gz)

	closeAll := func() error {
		w.Flush()
		if err := w.Error(); err != nil {
			_ = gz.Close()
			_ = f.Close()
			return errors.Wrapf(err, "flush %s", path)
		}
		if err := gz.Close(); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "close gzip %s", path)
		}
		return f.Close()
	}
	return w, closeAll, nil
}

func writeSummaryFile(path string, orders []order.Order) (err error) {
	w, closeAll, err := csvGz(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeAll(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.Write([]string{
		"order_id", "cust_id", "cust_name", "order_date",
		"subtotal", "discount", "tax", "total",
	}); err != nil {
		return errors.Wrap(err, "write summary header")
	}

	for _, o := range orders {
		if err := w.Write([]string{
			strconv.FormatInt(int64(o.ID), 10),
			strconv.FormatInt(o.CustomerID, 10),
			o.CustomerName,
			o.OrderDate.Format(time.RFC3339),
			o.Subtotal.StringFixed(2),
			o.Discount.StringFixed(2),
			o.Tax.StringFixed(2),
			o.Total.StringFixed(2),
		}); err != nil {
			return errors.Wrapf(err, "write summary row for order %d", o.ID)
		}
	}

	slog.Info("wrote summary file", slog.String("path", path), slog.Int("orders", len(orders)))
	return nil
}

// writeHierarchyFile flattens each order's shipment tree into one row per
// order line, with its container and shipper context alongside.
func writeHierarchyFile(ctx context.Context, path string, store *repository.OrderStore, orders []order.Order) (err error) {
	w, closeAll, err := csvGz(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeAll(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.Write([]string{
		"order_id", "shipper_number", "carrier", "container_number", "container_type",
		"prod_id", "prod_name", "quantity", "unit_price",
	}); err != nil {
		return errors.Wrap(err, "write hierarchy header")
	}

	var rows int
	for _, o := range orders {
		h, err := store.GetHierarchy(ctx, o.ID)
		if err != nil {
			return errors.Wrapf(err, "load order %d", o.ID)
		}

		shippers := make(map[order.ID]order.Shipper, len(h.Shippers))
		for _, s := range h.Shippers {
			shippers[s.ID] = s
		}
		containers := make(map[order.ID]order.Container, len(h.Containers))
		for _, c := range h.Containers {
			containers[c.ID] = c
		}

		for _, l := range h.Lines {
			c := containers[l.ContainerID]
			s := shippers[c.ShipperID]
			if err := w.Write([]string{
				strconv.FormatInt(int64(o.ID), 10),
				s.Number,
				s.Carrier,
				c.Number,
				string(c.Type),
				strconv.FormatInt(l.ProductID, 10),
				l.ProductName,
				strconv.Itoa(l.Quantity),
				l.UnitPrice.StringFixed(2),
			}); err != nil {
				return errors.Wrapf(err, "write hierarchy row for line %d", l.ID)
			}
			rows++
		}
	}

	slog.Info("wrote hierarchy file", slog.String("path", path), slog.Int("rows", rows))
	return nil
}
