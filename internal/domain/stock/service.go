package stock

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/pkg/logger"
)

// Service provides business operations for stock items.
// Mutations are expected to run inside a transaction managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a stock item. If an item with set-equal specs already exists in
// the same warehouse and category, the quantities are merged into the
// existing row instead of creating a duplicate position.
func (s *Service) Create(ctx context.Context, item *Item) (*Item, error) {
	if item.Quantity < 0 {
		return nil, apperror.NewValidation("quantity must not be negative")
	}

	existing, err := s.repo.ListByWarehouseCategory(ctx, item.WarehouseID, item.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if match, ok := Match(existing, item.Specs); ok {
		newQty, err := s.repo.AdjustQuantity(ctx, match.ID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("merge quantity: %w", err)
		}
		match.Quantity = newQty
		logger.Info(ctx, "merged stock item into existing position",
			"item_id", match.ID,
			"quantity", newQty,
		)
		return match, nil
	}

	if id.IsNil(item.ID) {
		item.ID = id.New()
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// GetByID retrieves one stock item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List retrieves stock items.
func (s *Service) List(ctx context.Context, filter Filter) ([]Item, error) {
	return s.repo.List(ctx, filter)
}

// ListWithCategory retrieves stock items joined with category names.
func (s *Service) ListWithCategory(ctx context.Context, filter Filter) ([]ItemWithCategory, error) {
	return s.repo.ListWithCategory(ctx, filter)
}

// Update rewrites an item's specs and/or quantity.
func (s *Service) Update(ctx context.Context, item *Item) error {
	if item.Quantity < 0 {
		return apperror.NewValidation("quantity must not be negative")
	}
	return s.repo.Update(ctx, item)
}

// Delete removes a stock item row.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.repo.Delete(ctx, itemID)
}

// Find returns the items of one warehouse+category in tie-break order.
func (s *Service) Find(ctx context.Context, warehouseID, categoryID id.ID) ([]Item, error) {
	return s.repo.ListByWarehouseCategory(ctx, warehouseID, categoryID)
}

// Adjust applies a signed quantity delta to an item, clamped at zero.
func (s *Service) Adjust(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	return s.repo.AdjustQuantity(ctx, itemID, delta)
}

// CountByWarehouse returns how many item rows a warehouse holds.
func (s *Service) CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error) {
	return s.repo.CountByWarehouse(ctx, warehouseID)
}
