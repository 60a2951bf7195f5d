package warehouse

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/pkg/logger"
)

// ItemCounter reports how many stock rows a warehouse holds. Satisfied by the
// stock service; used to refuse deleting warehouses that still hold stock.
type ItemCounter interface {
	CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error)
}

// Service provides business logic for the Warehouse catalog.
type Service struct {
	repo  Repository
	items ItemCounter
}

// NewService creates a new Warehouse service.
func NewService(repo Repository, items ItemCounter) *Service {
	return &Service{repo: repo, items: items}
}

// Create adds a warehouse.
func (s *Service) Create(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(w.ID) {
		w.ID = id.New()
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return err
	}
	logger.Info(ctx, "warehouse created", "id", w.ID, "name", w.Name)
	return nil
}

// GetByID retrieves one warehouse.
func (s *Service) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	return s.repo.GetByID(ctx, warehouseID)
}

// Update rewrites a warehouse.
func (s *Service) Update(ctx context.Context, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, w)
}

// Delete removes a warehouse. Refused while the warehouse still holds items.
func (s *Service) Delete(ctx context.Context, warehouseID id.ID) error {
	count, err := s.items.CountByWarehouse(ctx, warehouseID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewWarehouseNotEmpty(warehouseID, count)
	}
	return s.repo.Delete(ctx, warehouseID)
}

// List retrieves warehouses.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Warehouse, error) {
	return s.repo.List(ctx, limit, offset)
}
