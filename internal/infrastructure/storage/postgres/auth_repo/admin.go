// Package auth_repo provides the PostgreSQL implementation of the admin
// credential repository.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/auth"
	"stockledger/internal/infrastructure/storage/postgres"
)

const adminTable = "admin_credentials"

// AdminRepo implements auth.Repository. The table holds a single row.
type AdminRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewAdminRepo creates a new admin credential repository.
func NewAdminRepo(txm *postgres.TxManager) *AdminRepo {
	return &AdminRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get loads the admin principal.
func (r *AdminRepo) Get(ctx context.Context) (*auth.Admin, error) {
	q := r.builder.Select("id", "password_hash", "created_at", "updated_at").
		From(adminTable).
		OrderBy("created_at").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var admin auth.Admin
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &admin, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("admin credentials", nil)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// SetPasswordHash replaces the stored password hash.
func (r *AdminRepo) SetPasswordHash(ctx context.Context, hash string) error {
	q := r.builder.Update(adminTable).
		Set("password_hash", hash).
		Set("updated_at", squirrel.Expr("now()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("admin credentials", nil)
	}
	return nil
}

// Ensure interface compliance.
var _ auth.Repository = (*AdminRepo)(nil)
