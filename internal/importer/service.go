package importer

// service.go orchestrates one import run: fetch the three feeds, read them
// against their mappings, reconcile by SKU, transform and filter, validate
// prices, then hand the surviving sets to the store for the atomic reload.
//
// Data-quality findings (missing keys, duplicates, rejected prices) are
// recovered locally and reported in the summary; transport, strict-mode
// parse and load failures abort the run with no data change.

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ViewCache is an optional read-through cache for product views. All
// methods must be safe to skip; the service treats a nil cache as absent.
type ViewCache interface {
	Get(ctx context.Context, sku string) (*ProductView, error)
	Set(ctx context.Context, view *ProductView) error
	Invalidate(ctx context.Context) error
}

// FeedConfig locates the three feeds and sets the reader's bad-row policy.
type FeedConfig struct {
	ProductsURL     string
	InventoryURL    string
	PricesURL       string
	TolerateBadRows bool
}

// Service is the import pipeline plus the lookup read path.
type Service struct {
	store         Store
	fetch         Fetcher
	cache         ViewCache
	feeds         FeedConfig
	importTimeout time.Duration
	gate          *importGate
}

// NewService wires the pipeline. cache may be nil.
func NewService(store Store, fetch Fetcher, cache ViewCache, feeds FeedConfig, importTimeout time.Duration) *Service {
	return &Service{
		store:         store,
		fetch:         fetch,
		cache:         cache,
		feeds:         feeds,
		importTimeout: importTimeout,
		gate:          newImportGate(),
	}
}

// feedResult carries one feed through the concurrent fetch+read stage.
type feedResult struct {
	rows   []RawRow
	report *ReadReport
	err    error
}

// RunImport executes one full import run and returns its summary.
// Concurrent runs are refused with ErrImportInProgress; the caller is the
// single-flight boundary the store itself does not provide.
func (s *Service) RunImport(ctx context.Context) (*ImportSummary, error) {
	if !s.gate.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer s.gate.Release()

	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	start := time.Now()
	importID := uuid.New().String()
	log := slog.With("import_id", importID)
	log.Info("import started")

	// The three feeds have no data dependency before reconciliation, so
	// fetch and read them concurrently.
	var products, inventory, prices feedResult
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); products = s.readFeed(ctx, s.feeds.ProductsURL, ProductMapping) }()
	go func() { defer wg.Done(); inventory = s.readFeed(ctx, s.feeds.InventoryURL, InventoryMapping) }()
	go func() { defer wg.Done(); prices = s.readFeed(ctx, s.feeds.PricesURL, PriceMapping) }()
	wg.Wait()

	for _, res := range []feedResult{products, inventory, prices} {
		if res.err != nil {
			return nil, res.err
		}
	}

	productMap, productDiag := ReconcileByKey(products.rows, SKUOf, "Products")
	inventoryMap, inventoryDiag := ReconcileByKey(inventory.rows, SKUOf, "Inventory")
	priceMap, priceDiag := ReconcileByKey(prices.rows, SKUOf, "Prices")
	for _, diag := range []SourceDiagnostics{productDiag, inventoryDiag, priceDiag} {
		if diag.MissingKey > 0 {
			log.Warn("records without key skipped", "source", diag.Source, "count", diag.MissingKey)
		}
		if len(diag.DuplicateKeys) > 0 {
			log.Warn("duplicate keys found", "source", diag.Source, "keys", diag.DuplicateKeys)
		}
	}

	canonProducts, filtered := TransformProducts(productMap)
	canonInventory := TransformInventory(inventoryMap)
	canonPrices := TransformPrices(priceMap)

	validPrices, rejection := ValidatePrices(canonPrices)
	if rejection.Total > 0 {
		log.Warn("price records rejected", "count", rejection.Total, "sample", rejection.Sample)
	}

	if err := s.store.ReplaceAll(ctx, canonProducts, canonInventory, validPrices); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn("cache invalidation failed", "error", err)
		}
	}

	summary := &ImportSummary{
		ImportID:         importID,
		Products:         productDiag,
		Inventory:        inventoryDiag,
		Prices:           priceDiag,
		ProductsImported: len(canonProducts),
		ProductsFiltered: filtered,
		InventoryLoaded:  len(canonInventory),
		PricesLoaded:     len(validPrices),
		RejectedPrices:   rejection,
		DurationMs:       time.Since(start).Milliseconds(),
	}

	log.Info("import completed",
		"products", summary.ProductsImported,
		"products_filtered", summary.ProductsFiltered,
		"inventory", summary.InventoryLoaded,
		"prices", summary.PricesLoaded,
		"prices_rejected", rejection.Total,
		"duration_ms", summary.DurationMs,
	)

	return summary, nil
}

// readFeed fetches and parses one feed.
func (s *Service) readFeed(ctx context.Context, source string, mapping FieldMapping) feedResult {
	data, err := s.fetch.Fetch(ctx, source)
	if err != nil {
		return feedResult{err: fmt.Errorf("%s: %w", mapping.Source, err)}
	}
	rows, report, err := ReadRecords(bytes.NewReader(data), mapping, ReadOptions{
		TolerateBadRows: s.feeds.TolerateBadRows,
	})
	if err != nil {
		return feedResult{err: err}
	}
	if len(report.Skipped) > 0 {
		slog.Warn("malformed rows skipped", "source", mapping.Source, "count", len(report.Skipped))
	}
	return feedResult{rows: rows, report: report}
}

// GetBySku returns the joined view for one SKU. A blank SKU is an
// immediate not-found; no query is issued.
func (s *Service) GetBySku(ctx context.Context, sku string) (*ProductView, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if view, err := s.cache.Get(ctx, sku); err == nil && view != nil {
			return view, nil
		}
	}

	view, err := s.store.ProductViewBySku(ctx, sku)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, view); err != nil {
			slog.Debug("cache set failed", "sku", sku, "error", err)
		}
	}
	return view, nil
}
