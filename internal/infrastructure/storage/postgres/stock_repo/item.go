// Package stock_repo provides the PostgreSQL implementation of the stock
// item repository.
package stock_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/stock"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	itemTable     = "stock_items"
	categoryTable = "cat_categories"
)

var itemColumns = []string{"id", "warehouse_id", "category_id", "specs", "quantity", "updated_at"}

// ItemRepo implements stock.Repository.
type ItemRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new stock item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a stock item.
func (r *ItemRepo) Create(ctx context.Context, item *stock.Item) error {
	q := r.builder.Insert(itemTable).
		Columns("id", "warehouse_id", "category_id", "specs", "quantity").
		Values(item.ID, item.WarehouseID, item.CategoryID, item.Specs, item.Quantity)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID retrieves a stock item by id.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*stock.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemTable).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item stock.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// Update rewrites an item's mutable fields.
func (r *ItemRepo) Update(ctx context.Context, item *stock.Item) error {
	q := r.builder.Update(itemTable).
		Set("warehouse_id", item.WarehouseID).
		Set("category_id", item.CategoryID).
		Set("specs", item.Specs).
		Set("quantity", item.Quantity).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", item.ID.String())
	}
	return nil
}

// Delete removes a stock item.
func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	q := r.builder.Delete(itemTable).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID.String())
	}
	return nil
}

// List retrieves items matching the filter.
func (r *ItemRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemTable)
	q = applyFilter(q, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []stock.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// ListWithCategory retrieves items joined with their category names.
func (r *ItemRepo) ListWithCategory(ctx context.Context, filter stock.Filter) ([]stock.ItemWithCategory, error) {
	q := r.builder.Select(
		"i.id", "i.warehouse_id", "i.category_id", "i.specs", "i.quantity", "i.updated_at",
		"c.name AS category_name",
	).From(itemTable + " i").
		Join(categoryTable + " c ON c.id = i.category_id")
	q = applyFilterPrefixed(q, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []stock.ItemWithCategory
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items with category: %w", err)
	}
	return items, nil
}

// ListByWarehouseCategory returns items of one warehouse+category ordered by
// id. Spec matching relies on this order for its tie-break.
func (r *ItemRepo) ListByWarehouseCategory(ctx context.Context, warehouseID, categoryID id.ID) ([]stock.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemTable).
		Where(squirrel.Eq{
			"warehouse_id": warehouseID,
			"category_id":  categoryID,
		}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []stock.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// AdjustQuantity applies a signed delta clamped at the zero floor in a single
// statement, so concurrent adjustments serialize on the row lock.
func (r *ItemRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	sql := `
		UPDATE stock_items
		SET quantity = GREATEST(0, quantity + $1), updated_at = now()
		WHERE id = $2
		RETURNING quantity
	`

	var newQuantity int64
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, delta, itemID).Scan(&newQuantity); err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewNotFound("stock item", itemID.String())
		}
		return 0, fmt.Errorf("adjust quantity: %w", err)
	}
	return newQuantity, nil
}

// CountByWarehouse counts the stock positions of a warehouse.
func (r *ItemRepo) CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error) {
	q := r.builder.Select("COUNT(*)").
		From(itemTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func applyFilter(q squirrel.SelectBuilder, filter stock.Filter) squirrel.SelectBuilder {
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	q = q.OrderBy("id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func applyFilterPrefixed(q squirrel.SelectBuilder, filter stock.Filter) squirrel.SelectBuilder {
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"i.warehouse_id": *filter.WarehouseID})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"i.category_id": *filter.CategoryID})
	}
	q = q.OrderBy("i.id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// Ensure interface compliance.
var _ stock.Repository = (*ItemRepo)(nil)
