package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

type fakeRepo struct {
	warehouses map[id.ID]*Warehouse
	deleted    []id.ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{warehouses: make(map[id.ID]*Warehouse)}
}

func (f *fakeRepo) Create(ctx context.Context, w *Warehouse) error {
	f.warehouses[w.ID] = w
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, warehouseID id.ID) (*Warehouse, error) {
	w, ok := f.warehouses[warehouseID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return w, nil
}

func (f *fakeRepo) Update(ctx context.Context, w *Warehouse) error {
	f.warehouses[w.ID] = w
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, warehouseID id.ID) error {
	delete(f.warehouses, warehouseID)
	f.deleted = append(f.deleted, warehouseID)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]Warehouse, error) {
	out := make([]Warehouse, 0, len(f.warehouses))
	for _, w := range f.warehouses {
		out = append(out, *w)
	}
	return out, nil
}

type fakeCounter struct {
	counts map[id.ID]int
}

func (f *fakeCounter) CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error) {
	return f.counts[warehouseID], nil
}

func TestCreate_AssignsID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeCounter{})

	w := &Warehouse{Name: "Main"}
	require.NoError(t, svc.Create(context.Background(), w))

	assert.False(t, id.IsNil(w.ID))
	assert.Contains(t, repo.warehouses, w.ID)
}

func TestCreate_RequiresName(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeCounter{})

	err := svc.Create(context.Background(), &Warehouse{})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDelete_RefusedWhileHoldingStock(t *testing.T) {
	repo := newFakeRepo()
	warehouseID := id.New()
	repo.warehouses[warehouseID] = &Warehouse{ID: warehouseID, Name: "Main"}

	svc := NewService(repo, &fakeCounter{counts: map[id.ID]int{warehouseID: 3}})

	err := svc.Delete(context.Background(), warehouseID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeWarehouseNotEmpty, appErr.Code)
	assert.Equal(t, 3, appErr.Details["item_count"])
	assert.Empty(t, repo.deleted)
}

func TestDelete_EmptyWarehouse(t *testing.T) {
	repo := newFakeRepo()
	warehouseID := id.New()
	repo.warehouses[warehouseID] = &Warehouse{ID: warehouseID, Name: "Main"}

	svc := NewService(repo, &fakeCounter{})

	require.NoError(t, svc.Delete(context.Background(), warehouseID))
	assert.Equal(t, []id.ID{warehouseID}, repo.deleted)
}
