package importer

// store.go is the persistence layer: an atomic truncate-and-reload of the
// three catalog tables, and the read-side join for single-SKU lookups.
//
// The bulk load uses the PostgreSQL COPY protocol with an explicit column
// list per entity. Column sets are declared statically next to their row
// builders; no reflection is involved.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned by lookups for SKUs absent from the store.
var ErrNotFound = errors.New("product not found")

// Store is the persistence capability the import service depends on.
type Store interface {
	// ReplaceAll truncates the catalog tables and bulk-loads the given
	// record sets inside one all-or-nothing transaction.
	ReplaceAll(ctx context.Context, products []Product, inventory []Inventory, prices []Price) error

	// ProductViewBySku returns the joined view for one SKU, or ErrNotFound.
	ProductViewBySku(ctx context.Context, sku string) (*ProductView, error)
}

// DB is the subset of *pgxpool.Pool the store uses. Narrowing it keeps the
// store testable without a live server.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db DB
}

func NewPGStore(db DB) *PGStore {
	return &PGStore{db: db}
}

// Static field-to-column lists for the COPY bulk inserts. Order must match
// the corresponding row builders below.
var (
	productColumns   = []string{"sku", "name", "ean", "manufacturer", "category", "image_url"}
	inventoryColumns = []string{"sku", "qty", "shipping_cost", "unit"}
	priceColumns     = []string{"sku", "net_price"}
)

func productRow(p Product) []any {
	return []any{p.SKU, p.Name, p.EAN, p.Manufacturer, p.Category, p.ImageURL}
}

func inventoryRow(v Inventory) []any {
	return []any{v.SKU, v.Qty, v.ShippingCost, v.Unit}
}

func priceRow(p Price) []any {
	return []any{p.SKU, p.NetPrice}
}

// ReplaceAll implements the atomic load: truncate products, inventory and
// prices, then bulk-insert each set, all within one transaction. Any
// failure rolls the whole run back; partial loads are never observable.
func (s *PGStore) ReplaceAll(ctx context.Context, products []Product, inventory []Inventory, prices []Price) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"products", "inventory", "prices"} {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	if err := copyAll(ctx, tx, "products", productColumns, len(products), func(i int) []any {
		return productRow(products[i])
	}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "inventory", inventoryColumns, len(inventory), func(i int) []any {
		return inventoryRow(inventory[i])
	}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "prices", priceColumns, len(prices), func(i int) []any {
		return priceRow(prices[i])
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// copyAll bulk-inserts one full batch via COPY. There is no partial-batch
// retry; a failed COPY aborts the surrounding transaction.
func copyAll(ctx context.Context, tx pgx.Tx, table string, columns []string, n int, row func(i int) []any) error {
	if n == 0 {
		return nil
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns,
		pgx.CopyFromSlice(n, func(i int) ([]any, error) {
			return row(i), nil
		}))
	if err != nil {
		return fmt.Errorf("bulk insert %s: %w", table, err)
	}
	if copied != int64(n) {
		return fmt.Errorf("bulk insert %s: copied %d of %d rows", table, copied, n)
	}
	return nil
}

const productViewQuery = `
SELECT p.sku, p.name, p.ean, p.manufacturer, p.category, p.image_url,
       i.qty, i.shipping_cost, i.unit, pr.net_price
FROM products p
LEFT JOIN inventory i ON i.sku = p.sku
LEFT JOIN prices pr ON pr.sku = p.sku
WHERE p.sku = $1`

// ProductViewBySku performs the read-side join. A product lacking inventory
// or price data still returns, with those fields nil.
func (s *PGStore) ProductViewBySku(ctx context.Context, sku string) (*ProductView, error) {
	var (
		view         ProductView
		qty          pgtype.Int4
		shippingCost pgtype.Numeric
		unit         pgtype.Text
		netPrice     pgtype.Numeric
	)

	err := s.db.QueryRow(ctx, productViewQuery, sku).Scan(
		&view.SKU, &view.Name, &view.EAN, &view.Manufacturer, &view.Category, &view.ImageURL,
		&qty, &shippingCost, &unit, &netPrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product view: %w", err)
	}

	if qty.Valid {
		view.Qty = &qty.Int32
	}
	if shippingCost.Valid {
		s := NumericString(shippingCost)
		view.ShippingCost = &s
	}
	if unit.Valid {
		view.Unit = &unit.String
	}
	if netPrice.Valid {
		s := NumericString(netPrice)
		view.NetPrice = &s
	}

	return &view, nil
}
