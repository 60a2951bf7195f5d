// Package ledger_repo provides the PostgreSQL implementation of the ledger
// entry repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const entryTable = "ledger_entries"

var entryColumns = []string{
	"id", "warehouse_id", "related_warehouse_id",
	"type", "quantity", "date", "actor", "notes", "snapshot",
}

// EntryRepo implements ledger.Repository.
type EntryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewEntryRepo creates a new ledger entry repository.
func NewEntryRepo(txm *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an entry.
func (r *EntryRepo) Create(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Insert(entryTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.WarehouseID, e.RelatedWarehouseID,
			e.Type, e.Quantity, e.Date, e.Actor, e.Notes, e.Snapshot,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by id.
func (r *EntryRepo) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entryTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ledger entry", entryID.String())
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// Update rewrites an entry in place. The revert path depends on this writing
// snapshot, quantity, actor and notes while leaving id and date untouched.
func (r *EntryRepo) Update(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Update(entryTable).
		Set("warehouse_id", e.WarehouseID).
		Set("related_warehouse_id", e.RelatedWarehouseID).
		Set("type", e.Type).
		Set("quantity", e.Quantity).
		Set("date", e.Date).
		Set("actor", e.Actor).
		Set("notes", e.Notes).
		Set("snapshot", e.Snapshot).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ledger entry", e.ID.String())
	}
	return nil
}

// Delete removes an entry.
func (r *EntryRepo) Delete(ctx context.Context, entryID id.ID) error {
	q := r.builder.Delete(entryTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ledger entry", entryID.String())
	}
	return nil
}

// List retrieves entries newest first. The warehouse filter matches entries
// where the warehouse appears on either side of a transfer.
func (r *EntryRepo) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entryTable)

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"warehouse_id": *filter.WarehouseID},
			squirrel.Eq{"related_warehouse_id": *filter.WarehouseID},
		})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Day != nil {
		dayStart := time.Date(
			filter.Day.Year(), filter.Day.Month(), filter.Day.Day(),
			0, 0, 0, 0, filter.Day.Location(),
		)
		q = q.Where(squirrel.GtOrEq{"date": dayStart}).
			Where(squirrel.Lt{"date": dayStart.AddDate(0, 0, 1)})
	}

	q = q.OrderBy("date DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*EntryRepo)(nil)
