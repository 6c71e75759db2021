package importer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeTx records transaction operations in order. Embedding pgx.Tx supplies
// the methods the store never calls; invoking one panics the test.
type fakeTx struct {
	pgx.Tx
	ops       *[]string
	copyErrOn string // table name whose COPY fails
	committed bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	*tx.ops = append(*tx.ops, sql)
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	name := table[len(table)-1]
	if name == tx.copyErrOn {
		return 0, errors.New("copy rejected")
	}
	var n int64
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return n, err
		}
		n++
	}
	*tx.ops = append(*tx.ops, fmt.Sprintf("copy %s (%d cols, %d rows)", name, len(columns), n))
	return n, nil
}

func (tx *fakeTx) Commit(_ context.Context) error {
	tx.committed = true
	*tx.ops = append(*tx.ops, "commit")
	return nil
}

func (tx *fakeTx) Rollback(_ context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	*tx.ops = append(*tx.ops, "rollback")
	return nil
}

type fakeDB struct {
	ops       []string
	copyErrOn string
	row       *fakeRow
}

func (db *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	return &fakeTx{ops: &db.ops, copyErrOn: db.copyErrOn}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return db.row
}

// fakeRow assigns canned values positionally on Scan.
type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch t := d.(type) {
		case *string:
			*t = r.vals[i].(string)
		case *pgtype.Int4:
			*t = r.vals[i].(pgtype.Int4)
		case *pgtype.Numeric:
			*t = r.vals[i].(pgtype.Numeric)
		case *pgtype.Text:
			*t = r.vals[i].(pgtype.Text)
		default:
			return fmt.Errorf("unexpected scan target %T", d)
		}
	}
	return nil
}

func testLoadSets() ([]Product, []Inventory, []Price) {
	products := []Product{
		{SKU: "A1", Name: "Widget"},
		{SKU: "A3", Name: "Gizmo"},
	}
	inventory := []Inventory{
		{SKU: "A1", Qty: ParseIntToken("10"), ShippingCost: ParseDecimalToken("4.99"), Unit: "pcs"},
	}
	prices := []Price{
		{SKU: "A1", NetPrice: ParseDecimalToken("19.99")},
	}
	return products, inventory, prices
}

func TestReplaceAllTruncatesThenLoads(t *testing.T) {
	db := &fakeDB{}
	store := NewPGStore(db)
	products, inventory, prices := testLoadSets()

	if err := store.ReplaceAll(context.Background(), products, inventory, prices); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	want := []string{
		"TRUNCATE TABLE products",
		"TRUNCATE TABLE inventory",
		"TRUNCATE TABLE prices",
		"copy products (6 cols, 2 rows)",
		"copy inventory (4 cols, 1 rows)",
		"copy prices (2 cols, 1 rows)",
		"commit",
	}
	if !reflect.DeepEqual(db.ops, want) {
		t.Errorf("ops = %v\nwant %v", db.ops, want)
	}
}

func TestReplaceAllEmptySetsSkipCopy(t *testing.T) {
	db := &fakeDB{}
	store := NewPGStore(db)

	if err := store.ReplaceAll(context.Background(), nil, nil, nil); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	want := []string{
		"TRUNCATE TABLE products",
		"TRUNCATE TABLE inventory",
		"TRUNCATE TABLE prices",
		"commit",
	}
	if !reflect.DeepEqual(db.ops, want) {
		t.Errorf("ops = %v\nwant %v", db.ops, want)
	}
}

func TestReplaceAllRollsBackOnCopyFailure(t *testing.T) {
	db := &fakeDB{copyErrOn: "inventory"}
	store := NewPGStore(db)
	products, inventory, prices := testLoadSets()

	err := store.ReplaceAll(context.Background(), products, inventory, prices)
	if err == nil {
		t.Fatal("ReplaceAll() expected error when COPY fails")
	}

	last := db.ops[len(db.ops)-1]
	if last != "rollback" {
		t.Errorf("last op = %q, want rollback", last)
	}
	for _, op := range db.ops {
		if op == "commit" {
			t.Error("failed load must never commit")
		}
	}
}

func TestProductViewBySku(t *testing.T) {
	db := &fakeDB{row: &fakeRow{vals: []any{
		"A1", "Widget", "111", "Acme", "Audio", "http://img/a1.jpg",
		ParseIntToken("10"), ParseDecimalToken("4.99"),
		pgtype.Text{String: "pcs", Valid: true}, ParseDecimalToken("19.99"),
	}}}
	store := NewPGStore(db)

	view, err := store.ProductViewBySku(context.Background(), "A1")
	if err != nil {
		t.Fatalf("ProductViewBySku() error = %v", err)
	}

	if view.SKU != "A1" || view.Name != "Widget" || view.Category != "Audio" {
		t.Errorf("view = %+v", view)
	}
	if view.Qty == nil || *view.Qty != 10 {
		t.Errorf("qty = %v, want 10", view.Qty)
	}
	if view.Unit == nil || *view.Unit != "pcs" {
		t.Errorf("unit = %v, want pcs", view.Unit)
	}
	if view.NetPrice == nil || *view.NetPrice != "19.99" {
		t.Errorf("netPrice = %v, want 19.99", view.NetPrice)
	}
	if view.ShippingCost == nil || *view.ShippingCost != "4.99" {
		t.Errorf("shippingCost = %v, want 4.99", view.ShippingCost)
	}
}

func TestProductViewBySkuMissingJoins(t *testing.T) {
	db := &fakeDB{row: &fakeRow{vals: []any{
		"A1", "Widget", "", "", "", "",
		pgtype.Int4{}, pgtype.Numeric{}, pgtype.Text{}, pgtype.Numeric{},
	}}}
	store := NewPGStore(db)

	view, err := store.ProductViewBySku(context.Background(), "A1")
	if err != nil {
		t.Fatalf("ProductViewBySku() error = %v", err)
	}
	if view.Qty != nil || view.ShippingCost != nil || view.Unit != nil || view.NetPrice != nil {
		t.Errorf("view = %+v, unmatched joins must stay nil", view)
	}
}

func TestProductViewBySkuNotFound(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}
	store := NewPGStore(db)

	if _, err := store.ProductViewBySku(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
