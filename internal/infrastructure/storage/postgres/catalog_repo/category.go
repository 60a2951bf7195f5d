package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/category"
	"stockledger/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

var categoryColumns = []string{"id", "name", "attributes"}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	q := r.builder.Insert(categoryTable).
		Columns("id", "name", "attributes").
		Values(c.ID, c.Name, c.Attributes)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	return r.getBy(ctx, squirrel.Eq{"id": categoryID}, categoryID.String())
}

// GetByName retrieves a category by its unique name. Ledger snapshots
// reference categories this way.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	return r.getBy(ctx, squirrel.Eq{"name": name}, name)
}

func (r *CategoryRepo) getBy(ctx context.Context, cond squirrel.Eq, ref string) (*category.Category, error) {
	q := r.builder.Select(categoryColumns...).
		From(categoryTable).
		Where(cond)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c category.Category
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("category", ref)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List retrieves categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context, limit, offset int) ([]category.Category, error) {
	q := r.builder.Select(categoryColumns...).
		From(categoryTable).
		OrderBy("name")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var categories []category.Category
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &categories, sql, args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

// Update rewrites a category's mutable fields.
func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	q := r.builder.Update(categoryTable).
		Set("name", c.Name).
		Set("attributes", c.Attributes).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", c.ID.String())
	}
	return nil
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	q := r.builder.Delete(categoryTable).
		Where(squirrel.Eq{"id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", categoryID.String())
	}
	return nil
}

// Ensure interface compliance.
var _ category.Repository = (*CategoryRepo)(nil)
