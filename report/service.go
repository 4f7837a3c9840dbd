/*
service.go - Report orchestration over the fetch boundary

PURPOSE:
  The one place concurrency exists. Five ledgers plus reference data
  are fetched in parallel (fan-out); the pipeline starts only once ALL
  fetches complete (fan-in barrier). One failed fetch fails the whole
  report: no partial or inconsistent snapshot ever aggregates.

CANCELLATION:
  errgroup.WithContext cancels the sibling fetches on first failure,
  and the caller's context cancels everything when the requester goes
  away. A canceled report returns the context error; the in-flight
  computation's result is discarded, never raced against a newer one.

NO SHARED STATE:
  Each fetch returns an independent immutable list, merged only after
  the barrier. Every invocation is a fresh pure computation; nothing is
  cached across filter changes.

SEE ALSO:
  - ledger.Source, refdata.Source: The fetch boundary interfaces
  - criteria.go .. assemble.go: The pure pipeline the snapshot feeds
*/
package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/flocio/agrisale/ledger"
	"github.com/flocio/agrisale/refdata"
)

// =============================================================================
// REQUEST - Caller-supplied filter/sort configuration
// =============================================================================

// Request is the recognized filter/sort configuration. All filter
// fields are optional; absence means no restriction.
type Request struct {
	EntityID    *ledger.EntityID
	ProductName *string
	Dates       *DateRange

	GroupBy       GroupBy
	SortBy        SortField
	SortAscending bool
	TieBreak      TieBreak

	IncludeUndated bool
}

func (r Request) criteria() Criteria {
	return Criteria{EntityID: r.EntityID, ProductName: r.ProductName, Dates: r.Dates}
}

// Validate rejects malformed requests before any fetch happens.
func (r Request) Validate() error {
	if r.Dates != nil {
		return r.Dates.Validate()
	}
	return nil
}

func (r Request) sortOptions() SortOptions {
	field := r.SortBy
	if field == "" {
		field = SortByDate
	}
	return SortOptions{Field: field, Ascending: r.SortAscending, TieBreak: r.TieBreak}
}

// =============================================================================
// SERVICE
// =============================================================================

// Service builds reports from one fresh snapshot per invocation.
type Service struct {
	Ledgers ledger.Source
	Refs    refdata.Source
}

func NewService(ledgers ledger.Source, refs refdata.Source) *Service {
	return &Service{Ledgers: ledgers, Refs: refs}
}

// snapshot is one fan-in result: all ledgers plus the reference
// directory, fetched under the same barrier.
type snapshot struct {
	records ledger.RecordSet
	dir     *refdata.Directory
}

// fetch runs the fan-out. First error cancels siblings and fails the
// report with a FetchError naming the ledger that failed.
func (s *Service) fetch(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := s.Ledgers.Sales(gCtx)
		if err != nil {
			return &ledger.FetchError{Ledger: "sales", Err: err}
		}
		snap.records.Sales = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.Ledgers.Returns(gCtx)
		if err != nil {
			return &ledger.FetchError{Ledger: "returns", Err: err}
		}
		snap.records.Returns = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.Ledgers.Purchases(gCtx)
		if err != nil {
			return &ledger.FetchError{Ledger: "purchases", Err: err}
		}
		snap.records.Purchases = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.Ledgers.Incomes(gCtx)
		if err != nil {
			return &ledger.FetchError{Ledger: "incomes", Err: err}
		}
		snap.records.Incomes = recs
		return nil
	})
	g.Go(func() error {
		recs, err := s.Ledgers.Remittances(gCtx)
		if err != nil {
			return &ledger.FetchError{Ledger: "remittances", Err: err}
		}
		snap.records.Remittances = recs
		return nil
	})
	g.Go(func() error {
		dir, err := refdata.Load(gCtx, s.Refs)
		if err != nil {
			return &ledger.FetchError{Ledger: "refdata", Err: err}
		}
		snap.dir = dir
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Requester navigated away while we were loading: discard.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// prepare fetches, normalizes, and filters one snapshot.
func (s *Service) prepare(ctx context.Context, req Request) ([]ledger.Transaction, *refdata.Directory, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := snap.records.Normalize()
	if err != nil {
		return nil, nil, err
	}
	return Filter(txs, req.criteria()), snap.dir, nil
}

// =============================================================================
// AGGREGATED REPORTS
// =============================================================================

// Aggregated builds an aggregation report under the given report kind
// and the request's grouping, filter, and sort configuration.
func (s *Service) Aggregated(ctx context.Context, kind ReportKind, req Request) (Report, error) {
	txs, dir, err := s.prepare(ctx, req)
	if err != nil {
		return Report{}, err
	}

	groups := Aggregate(txs, Options{
		Report:         kind,
		By:             req.GroupBy,
		IncludeUndated: req.IncludeUndated,
	})
	rows := RowsOf(groups)
	for i := range rows {
		if req.GroupBy.Entity {
			rows[i].EntityName = entityLabel(dir, rows[i].Key.EntityID, kind)
		}
		if req.GroupBy.Product {
			rows[i].Unit = dir.ProductUnit(rows[i].Key.ProductName)
		}
	}
	Sort(rows, req.sortOptions())
	return Assemble(kind, rows), nil
}

// StockMovement is the unified net stock movement report.
func (s *Service) StockMovement(ctx context.Context, req Request) (Report, error) {
	return s.Aggregated(ctx, StockMovement, req)
}

// SalesValue is the net sales revenue report.
func (s *Service) SalesValue(ctx context.Context, req Request) (Report, error) {
	return s.Aggregated(ctx, SalesValue, req)
}

// PurchaseValue is the net supplier-side value report.
func (s *Service) PurchaseValue(ctx context.Context, req Request) (Report, error) {
	return s.Aggregated(ctx, PurchaseValue, req)
}

// =============================================================================
// LEDGER LISTING REPORTS
// =============================================================================

// Listing builds a single ledger's own screen: filtered raw rows under
// the ledger's local convention, sorted per the request, with totals.
// Party narrows kinds that span counterparties: the purchases screen
// shows supplier returns but never customer returns. PartyNone keeps
// every party.
func (s *Service) Listing(ctx context.Context, kinds []ledger.Kind, party ledger.Party, req Request) (TransactionReport, error) {
	txs, dir, err := s.prepare(ctx, req)
	if err != nil {
		return TransactionReport{}, err
	}

	keep := make(map[ledger.Kind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		if !keep[tx.Kind] {
			continue
		}
		if party != ledger.PartyNone && tx.Party != party {
			continue
		}
		rows = append(rows, TransactionRow{
			Tx:         tx,
			EntityName: dir.EntityName(tx.Party, tx.EntityID),
			Unit:       dir.ProductUnit(tx.ProductName),
		})
	}
	Sort(rows, req.sortOptions())
	return AssembleTransactions(rows), nil
}

// =============================================================================
// RECONCILIATION REPORTS
// =============================================================================

// CustomerReconciliation compares net sales value (sales minus customer
// returns) against income collected, per (date x entity).
func (s *Service) CustomerReconciliation(ctx context.Context, req Request) (ReconciliationReport, error) {
	return s.reconciliation(ctx, req, SalesValue, CashCollected, ledger.PartyCustomer)
}

// SupplierReconciliation compares net purchase value (purchases minus
// supplier returns) against remittances paid, per (date x entity).
func (s *Service) SupplierReconciliation(ctx context.Context, req Request) (ReconciliationReport, error) {
	return s.reconciliation(ctx, req, PurchaseValue, CashPaid, ledger.PartySupplier)
}

func (s *Service) reconciliation(ctx context.Context, req Request, payableKind, paymentKind ReportKind, party ledger.Party) (ReconciliationReport, error) {
	txs, dir, err := s.prepare(ctx, req)
	if err != nil {
		return ReconciliationReport{}, err
	}

	// Reconciliation is always keyed by date x entity.
	by := GroupBy{Date: true, Entity: true}
	payable := Aggregate(txs, Options{Report: payableKind, By: by, IncludeUndated: req.IncludeUndated})
	payment := Aggregate(txs, Options{Report: paymentKind, By: by, IncludeUndated: req.IncludeUndated})

	rows := Reconcile(payable, payment)
	for i := range rows {
		rows[i].EntityName = dir.EntityName(party, rows[i].Key.EntityID)
	}
	if req.SortBy != "" {
		Sort(rows, req.sortOptions())
	}
	return AssembleReconciliation(rows), nil
}

// entityLabel resolves an entity name for aggregated rows. The party
// role follows the report kind: customer-side reports join customers,
// supplier-side reports join suppliers.
func entityLabel(dir *refdata.Directory, id ledger.EntityID, kind ReportKind) string {
	switch kind {
	case SalesValue, CashCollected:
		return dir.EntityName(ledger.PartyCustomer, id)
	case PurchaseValue, CashPaid:
		return dir.EntityName(ledger.PartySupplier, id)
	default:
		// Mixed-party reports (stock movement) try customer then supplier.
		if name := dir.EntityName(ledger.PartyCustomer, id); name != refdata.UnknownName {
			return name
		}
		return dir.EntityName(ledger.PartySupplier, id)
	}
}
