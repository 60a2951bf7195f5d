package category

import (
	"context"

	"stockledger/internal/core/id"
	"stockledger/pkg/logger"
)

// Service provides business logic for the Category catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Category service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	logger.Info(ctx, "category created", "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves one category.
func (s *Service) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, categoryID)
}

// ResolveByName resolves a category name to its id. Ledger engines use this
// weak-reference lookup while applying and reverting effects.
func (s *Service) ResolveByName(ctx context.Context, name string) (id.ID, error) {
	c, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return id.Nil(), err
	}
	return c.ID, nil
}

// Update rewrites a category.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, categoryID id.ID) error {
	return s.repo.Delete(ctx, categoryID)
}

// List retrieves categories.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Category, error) {
	return s.repo.List(ctx, limit, offset)
}
