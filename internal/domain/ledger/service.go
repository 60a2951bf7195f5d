package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/pkg/logger"
)

// WarehouseGetter validates warehouse references on entry creation.
type WarehouseGetter interface {
	GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error)
}

// Service owns the ledger entry lifecycle: create with effect application,
// single-level revert, and the administrative modify/delete paths. Every
// operation runs inside one database transaction; either every stock
// mutation commits, or none do.
type Service struct {
	repo       Repository
	store      StockStore
	categories CategoryResolver
	warehouses WarehouseGetter
	txm        tx.Manager
	now        func() time.Time
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	store StockStore,
	categories CategoryResolver,
	warehouses WarehouseGetter,
	txm tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		categories: categories,
		warehouses: warehouses,
		txm:        txm,
		now:        time.Now,
	}
}

// CreateInput carries the fields of a new ledger entry. Line items use
// Quantity as absolute magnitude for IN/OUT/TRANSFER and QuantityDiff as
// signed delta for ADJUST.
type CreateInput struct {
	Type               EntryType
	WarehouseID        id.ID
	RelatedWarehouseID *id.ID
	Items              []LineItem
	Actor              string
	Notes              string
	// Date defaults to now when zero.
	Date time.Time
}

// Create records a new entry and applies its stock effect atomically. The
// persisted snapshot is always the current multi-item encoding. For
// transfers, the caller's warehouse is the outbound side: the entry is
// recorded as the outbound leg at the primary warehouse (negative aggregate)
// with RelatedWarehouseID naming the receiving warehouse.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	if !input.Type.Valid() {
		return nil, apperror.NewUnsupportedEntryType(string(input.Type))
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewValidation("at least one line item is required")
	}
	if input.Type == TypeTransfer && input.RelatedWarehouseID == nil {
		return nil, apperror.NewValidation("transfer requires a related warehouse")
	}

	var created *Entry
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.warehouses.GetByID(ctx, input.WarehouseID); err != nil {
			return err
		}
		if input.RelatedWarehouseID != nil {
			if _, err := s.warehouses.GetByID(ctx, *input.RelatedWarehouseID); err != nil {
				return err
			}
		}

		items := normalizeItems(input.Type, input.Items)

		date := input.Date
		if date.IsZero() {
			date = s.now()
		}

		e := &Entry{
			ID:                 id.New(),
			WarehouseID:        input.WarehouseID,
			RelatedWarehouseID: input.RelatedWarehouseID,
			Type:               input.Type,
			Quantity:           aggregateQuantity(input.Type, items),
			Date:               date,
			Actor:              input.Actor,
			Notes:              input.Notes,
		}

		snap := Snapshot{
			Kind:  KindMultiItem,
			Type:  string(input.Type),
			Items: items,
		}
		encoded, err := snap.Encode()
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		e.Snapshot = encoded

		mutations, err := s.resolveMutations(ctx, e, items, false)
		if err != nil {
			return err
		}

		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		if err := s.applyMutations(ctx, mutations); err != nil {
			return err
		}

		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger entry created",
		"entry_id", created.ID,
		"type", created.Type,
		"quantity", created.Quantity,
	)
	return created, nil
}

// GetByID retrieves one entry.
func (s *Service) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// List retrieves entries, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}

// ModifyInput carries administrative field updates. Nil fields stay as-is.
type ModifyInput struct {
	Quantity *int64
	Actor    *string
	Notes    *string
	Date     *time.Time
}

// Modify rewrites entry fields. Changing the quantity first reverses the old
// stock effect, rewrites the stored quantity, then re-applies the new effect;
// any failure rolls the whole modification back. Quantity changes are limited
// to single-line-item entries that have not been reverted, since a new
// aggregate cannot be attributed across multiple line items.
func (s *Service) Modify(ctx context.Context, entryID id.ID, input ModifyInput) (*Entry, error) {
	var modified *Entry

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}

		if input.Quantity != nil && *input.Quantity != e.Quantity {
			if err := s.rewriteQuantity(ctx, e, *input.Quantity); err != nil {
				return err
			}
		}

		if input.Actor != nil {
			e.Actor = *input.Actor
		}
		if input.Notes != nil {
			e.Notes = *input.Notes
		}
		if input.Date != nil {
			e.Date = *input.Date
		}

		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		modified = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger entry modified", "entry_id", entryID)
	return modified, nil
}

// rewriteQuantity swaps an entry's stock effect for one with a new aggregate.
func (s *Service) rewriteQuantity(ctx context.Context, e *Entry, newQuantity int64) error {
	snap := DecodeSnapshot(e.Snapshot, e.Quantity)
	if snap.Reverted {
		return apperror.NewValidation("cannot change quantity of a reverted entry").
			WithDetail("entry_id", e.ID)
	}
	if len(snap.Items) != 1 {
		return apperror.NewValidation("quantity change is only supported for single-item entries").
			WithDetail("entry_id", e.ID).
			WithDetail("item_count", len(snap.Items))
	}

	if err := s.reverseEffect(ctx, e); err != nil {
		return err
	}

	magnitude := newQuantity
	if magnitude < 0 {
		magnitude = -magnitude
	}
	item := snap.Items[0]
	item.Quantity = magnitude
	item.QuantityDiff = newQuantity
	snap.Items = []LineItem{item}

	encoded, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	e.Snapshot = encoded
	e.Quantity = newQuantity

	mutations, err := s.resolveMutations(ctx, e, snap.Items, false)
	if err != nil {
		return err
	}
	return s.applyMutations(ctx, mutations)
}

// Delete reverses (or, for an already-reverted entry, restores) the entry's
// stock effect and removes the row entirely. Unlike Revert, no audit trail is
// retained.
func (s *Service) Delete(ctx context.Context, entryID id.ID) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if err := s.reverseEffect(ctx, e); err != nil {
			return err
		}
		return s.repo.Delete(ctx, entryID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "ledger entry deleted", "entry_id", entryID)
	return nil
}

// normalizeItems fills in the redundant quantity fields so both are always
// populated on newly written snapshots.
func normalizeItems(t EntryType, items []LineItem) []LineItem {
	normalized := make([]LineItem, len(items))
	for i, li := range items {
		out := LineItem{
			CategoryName: li.CategoryName,
			Specs:        li.Specs,
		}
		if out.Specs == nil {
			out.Specs = map[string]string{}
		}

		switch t {
		case TypeAdjust:
			out.Quantity = li.Magnitude()
			out.QuantityDiff = li.Diff()
		case TypeIn:
			out.Quantity = li.Magnitude()
			out.QuantityDiff = li.Magnitude()
		case TypeOut, TypeTransfer:
			out.Quantity = li.Magnitude()
			out.QuantityDiff = -li.Magnitude()
		}
		normalized[i] = out
	}
	return normalized
}

// aggregateQuantity derives the signed top-level quantity from normalized
// line items: positive for inbound-direction entries, negative for
// outbound-direction entries, net delta for adjustments.
func aggregateQuantity(t EntryType, items []LineItem) int64 {
	var total int64
	for _, li := range items {
		switch t {
		case TypeIn:
			total += li.Magnitude()
		case TypeOut, TypeTransfer:
			total -= li.Magnitude()
		case TypeAdjust:
			total += li.Diff()
		}
	}
	return total
}
