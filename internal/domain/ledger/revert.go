package ledger

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/pkg/logger"
)

// Revert undoes a previously applied entry: it applies the inverse stock
// effect and rewrites the entry in place into its terminal REVERTED state,
// carrying the audit trail and the preserved original line items. The entry's
// id and date are kept so it holds its position in chronological listings.
//
// An entry can be reverted at most once; a second attempt fails with
// ALREADY_REVERTED and leaves stock untouched. The round-trip guarantee
// (apply then revert restores the pre-apply quantities) holds only when no
// decrement was clamped at the zero floor in between.
func (s *Service) Revert(ctx context.Context, entryID id.ID, actor, note string) (*Entry, error) {
	var reverted *Entry

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}

		snap := DecodeSnapshot(e.Snapshot, e.Quantity)
		if snap.Reverted {
			return apperror.NewAlreadyReverted(entryID)
		}

		mutations, err := s.resolveMutations(ctx, e, snap.Items, true)
		if err != nil {
			return err
		}
		if err := s.applyMutations(ctx, mutations); err != nil {
			return err
		}

		now := s.now()
		newSnap := Snapshot{
			Kind:                  KindRevertedMultiItem,
			Type:                  revertTypePrefix + string(e.Type),
			Items:                 invertItems(snap.Items),
			Reverted:              true,
			RevertedAt:            &now,
			RevertedBy:            actor,
			RevertNotes:           note,
			OriginalItems:         snap.Items,
			OriginalType:          string(e.Type),
			OriginalTotalQuantity: e.Quantity,
		}
		encoded, err := newSnap.Encode()
		if err != nil {
			return fmt.Errorf("encode reverted snapshot: %w", err)
		}

		originalNotes := e.Notes
		e.Snapshot = encoded
		e.Quantity = primaryAggregate(mutations, e.WarehouseID)
		e.Actor = actor
		e.Notes = fmt.Sprintf("Reverted by %s. Original notes: %s", actor, originalNotes)
		// e.Date is deliberately untouched.

		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		reverted = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger entry reverted",
		"entry_id", entryID,
		"actor", actor,
	)
	return reverted, nil
}

// invertItems produces the line items recorded on a reverted entry: same
// magnitudes, signed diffs negated.
func invertItems(items []LineItem) []LineItem {
	inverted := make([]LineItem, len(items))
	for i, li := range items {
		inverted[i] = LineItem{
			CategoryName: li.CategoryName,
			Specs:        li.Specs,
			Quantity:     li.Magnitude(),
			QuantityDiff: -li.Diff(),
		}
	}
	return inverted
}

// reverseEffect undoes the stock effect of an entry as part of an
// administrative delete or modify. For an active entry this is the same
// inversion Revert performs. For an entry already in the REVERTED state the
// net stock effect of delete must instead restore the original operation
// (the double-reverse path): the preserved original items are re-applied in
// their original direction, using the preserved original type and aggregate.
func (s *Service) reverseEffect(ctx context.Context, e *Entry) error {
	snap := DecodeSnapshot(e.Snapshot, e.Quantity)

	if snap.Reverted {
		orig := *e
		if snap.OriginalType != "" {
			orig.Type = EntryType(snap.OriginalType)
		}
		orig.Quantity = snap.OriginalTotalQuantity
		items := snap.OriginalItems
		if len(items) == 0 {
			items = snap.Items
		}

		mutations, err := s.resolveMutations(ctx, &orig, items, false)
		if err != nil {
			return err
		}
		return s.applyMutations(ctx, mutations)
	}

	mutations, err := s.resolveMutations(ctx, e, snap.Items, true)
	if err != nil {
		return err
	}
	return s.applyMutations(ctx, mutations)
}
