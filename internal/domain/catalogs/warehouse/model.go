// Package warehouse provides the Warehouse catalog: the physical locations
// stock positions live in.
package warehouse

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// Warehouse is a storage location.
type Warehouse struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Validate checks required fields.
func (w *Warehouse) Validate(ctx context.Context) error {
	if w.Name == "" {
		return apperror.NewValidation("warehouse name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines persistence for warehouses.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error
	GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
	Update(ctx context.Context, w *Warehouse) error
	Delete(ctx context.Context, warehouseID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Warehouse, error)
}
