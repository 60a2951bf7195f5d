package ledger

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/stock"
	"stockledger/pkg/logger"
)

// CategoryResolver resolves a category name to its id. A missing category
// aborts the whole operation with a NOT_FOUND error.
type CategoryResolver interface {
	ResolveByName(ctx context.Context, name string) (id.ID, error)
}

// StockStore is the slice of the stock service the effect engines mutate
// through.
type StockStore interface {
	Find(ctx context.Context, warehouseID, categoryID id.ID) ([]stock.Item, error)
	Adjust(ctx context.Context, itemID id.ID, delta int64) (int64, error)
}

// stockMutation is one buffered per-row quantity delta. All line items of an
// entry resolve before anything is applied, so a failed lookup leaves the
// store untouched even without relying on the surrounding transaction.
type stockMutation struct {
	itemID      id.ID
	warehouseID id.ID
	delta       int64
}

// resolveMutations turns line items into concrete stock-row deltas according
// to the entry's type. With inverse set, every per-type effect is negated:
// the reversal engine and administrative delete reuse the same rules in the
// opposite direction.
//
// Transfers resolve a second leg in the related warehouse; when no matching
// position exists there, that leg is skipped rather than failing the whole
// operation. The primary leg is never skipped.
func (s *Service) resolveMutations(ctx context.Context, e *Entry, items []LineItem, inverse bool) ([]stockMutation, error) {
	if !e.Type.Valid() {
		return nil, apperror.NewUnsupportedEntryType(string(e.Type))
	}
	if len(items) == 0 {
		return nil, apperror.NewValidation("entry has no resolvable line items").
			WithDetail("entry_id", e.ID)
	}

	sign := int64(1)
	if inverse {
		sign = -1
	}

	mutations := make([]stockMutation, 0, len(items))
	for _, li := range items {
		if li.CategoryName == "" {
			return nil, apperror.NewValidation("line item has no category name").
				WithDetail("entry_id", e.ID)
		}

		categoryID, err := s.categories.ResolveByName(ctx, li.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", li.CategoryName, err)
		}

		target, err := s.matchItem(ctx, e.WarehouseID, categoryID, li.Specs)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, apperror.NewNotFound("stock item", nil).
				WithDetail("category", li.CategoryName).
				WithDetail("specs", li.Specs).
				WithDetail("warehouse_id", e.WarehouseID)
		}

		switch e.Type {
		case TypeIn:
			mutations = append(mutations, stockMutation{
				itemID:      target.ID,
				warehouseID: e.WarehouseID,
				delta:       sign * li.Magnitude(),
			})

		case TypeOut:
			mutations = append(mutations, stockMutation{
				itemID:      target.ID,
				warehouseID: e.WarehouseID,
				delta:       -sign * li.Magnitude(),
			})

		case TypeAdjust:
			mutations = append(mutations, stockMutation{
				itemID:      target.ID,
				warehouseID: e.WarehouseID,
				delta:       sign * li.Diff(),
			})

		case TypeTransfer:
			primaryDelta := sign * li.Magnitude()
			if e.IsTransferOutbound() {
				primaryDelta = -primaryDelta
			}
			mutations = append(mutations, stockMutation{
				itemID:      target.ID,
				warehouseID: e.WarehouseID,
				delta:       primaryDelta,
			})

			if e.RelatedWarehouseID == nil {
				break
			}
			related, err := s.matchItem(ctx, *e.RelatedWarehouseID, categoryID, li.Specs)
			if err != nil {
				return nil, err
			}
			if related == nil {
				// No matching position in the counterpart warehouse: this leg
				// is skipped, leaving an asymmetric stock state. Preserved
				// behavior; callers must be aware of it.
				logger.Warn(ctx, "transfer counterpart position missing, leg skipped",
					"entry_id", e.ID,
					"category", li.CategoryName,
					"related_warehouse_id", *e.RelatedWarehouseID,
				)
				break
			}
			mutations = append(mutations, stockMutation{
				itemID:      related.ID,
				warehouseID: *e.RelatedWarehouseID,
				delta:       -primaryDelta,
			})
		}
	}

	return mutations, nil
}

// matchItem finds the stock row for (warehouse, category, specs), or nil.
func (s *Service) matchItem(ctx context.Context, warehouseID, categoryID id.ID, specs stock.SpecMap) (*stock.Item, error) {
	candidates, err := s.store.Find(ctx, warehouseID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find stock items: %w", err)
	}
	item, ok := stock.Match(candidates, specs)
	if !ok {
		return nil, nil
	}
	return item, nil
}

// applyMutations commits buffered deltas through the stock store. Each
// decrement is clamped at zero by the store; see the round-trip caveat on
// Revert.
func (s *Service) applyMutations(ctx context.Context, mutations []stockMutation) error {
	for _, m := range mutations {
		newQty, err := s.store.Adjust(ctx, m.itemID, m.delta)
		if err != nil {
			return fmt.Errorf("adjust item %s by %d: %w", m.itemID, m.delta, err)
		}
		logger.Debug(ctx, "stock adjusted",
			"item_id", m.itemID,
			"delta", m.delta,
			"quantity", newQty,
		)
	}
	return nil
}

// primaryAggregate sums the intended deltas at the given warehouse. It is the
// signed aggregate convention used on the entry's top-level quantity field.
func primaryAggregate(mutations []stockMutation, warehouseID id.ID) int64 {
	var total int64
	for _, m := range mutations {
		if m.warehouseID == warehouseID {
			total += m.delta
		}
	}
	return total
}
