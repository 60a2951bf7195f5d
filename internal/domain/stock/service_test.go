package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

type fakeRepo struct {
	items []*Item
}

func (f *fakeRepo) Create(ctx context.Context, item *Item) error {
	cp := *item
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	for _, item := range f.items {
		if item.ID == itemID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("stock item", itemID.String())
}

func (f *fakeRepo) Update(ctx context.Context, item *Item) error {
	for i, existing := range f.items {
		if existing.ID == item.ID {
			cp := *item
			f.items[i] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("stock item", item.ID.String())
}

func (f *fakeRepo) Delete(ctx context.Context, itemID id.ID) error {
	for i, item := range f.items {
		if item.ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("stock item", itemID.String())
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]Item, error) {
	out := make([]Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeRepo) ListWithCategory(ctx context.Context, filter Filter) ([]ItemWithCategory, error) {
	return nil, nil
}

func (f *fakeRepo) ListByWarehouseCategory(ctx context.Context, warehouseID, categoryID id.ID) ([]Item, error) {
	var out []Item
	for _, item := range f.items {
		if item.WarehouseID == warehouseID && item.CategoryID == categoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	for _, item := range f.items {
		if item.ID == itemID {
			item.Quantity += delta
			if item.Quantity < 0 {
				item.Quantity = 0
			}
			return item.Quantity, nil
		}
	}
	return 0, apperror.NewNotFound("stock item", itemID.String())
}

func (f *fakeRepo) CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error) {
	n := 0
	for _, item := range f.items {
		if item.WarehouseID == warehouseID {
			n++
		}
	}
	return n, nil
}

func TestServiceCreate_NewPosition(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &Item{
		WarehouseID: id.New(),
		CategoryID:  id.New(),
		Specs:       SpecMap{"length": "2m"},
		Quantity:    4,
	})
	require.NoError(t, err)

	assert.False(t, id.IsNil(created.ID))
	assert.Len(t, repo.items, 1)
}

func TestServiceCreate_MergesIntoMatchingPosition(t *testing.T) {
	wh, cat := id.New(), id.New()
	existingID := id.New()
	repo := &fakeRepo{items: []*Item{
		{ID: existingID, WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "2m"}, Quantity: 3},
	}}
	svc := NewService(repo)

	merged, err := svc.Create(context.Background(), &Item{
		WarehouseID: wh,
		CategoryID:  cat,
		Specs:       SpecMap{"length": "2m"},
		Quantity:    4,
	})
	require.NoError(t, err)

	assert.Equal(t, existingID, merged.ID)
	assert.Equal(t, int64(7), merged.Quantity)
	assert.Len(t, repo.items, 1)
}

func TestServiceCreate_DifferentSpecsStaySeparate(t *testing.T) {
	wh, cat := id.New(), id.New()
	repo := &fakeRepo{items: []*Item{
		{ID: id.New(), WarehouseID: wh, CategoryID: cat, Specs: SpecMap{"length": "2m"}, Quantity: 3},
	}}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &Item{
		WarehouseID: wh,
		CategoryID:  cat,
		Specs:       SpecMap{"length": "5m"},
		Quantity:    4,
	})
	require.NoError(t, err)
	assert.Len(t, repo.items, 2)
}

func TestServiceCreate_RejectsNegativeQuantity(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Create(context.Background(), &Item{Quantity: -1})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
