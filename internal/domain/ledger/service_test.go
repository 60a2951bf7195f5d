package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/stock"
)

// --- Fakes ---

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEntryRepo struct {
	entries map[id.ID]*Entry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[id.ID]*Entry)}
}

func (f *fakeEntryRepo) Create(ctx context.Context, e *Entry) error {
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return nil, apperror.NewNotFound("ledger entry", entryID.String())
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntryRepo) Update(ctx context.Context, e *Entry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return apperror.NewNotFound("ledger entry", e.ID.String())
	}
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, entryID id.ID) error {
	if _, ok := f.entries[entryID]; !ok {
		return apperror.NewNotFound("ledger entry", entryID.String())
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeEntryRepo) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	out := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

type fakeStockStore struct {
	items   map[id.ID]*stock.Item
	adjusts []int64
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{items: make(map[id.ID]*stock.Item)}
}

func (f *fakeStockStore) add(warehouseID, categoryID id.ID, specs stock.SpecMap, qty int64) id.ID {
	itemID := id.New()
	f.items[itemID] = &stock.Item{
		ID:          itemID,
		WarehouseID: warehouseID,
		CategoryID:  categoryID,
		Specs:       specs,
		Quantity:    qty,
	}
	return itemID
}

func (f *fakeStockStore) Find(ctx context.Context, warehouseID, categoryID id.ID) ([]stock.Item, error) {
	var out []stock.Item
	for _, item := range f.items {
		if item.WarehouseID == warehouseID && item.CategoryID == categoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStockStore) Adjust(ctx context.Context, itemID id.ID, delta int64) (int64, error) {
	item, ok := f.items[itemID]
	if !ok {
		return 0, apperror.NewNotFound("stock item", itemID.String())
	}
	item.Quantity += delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	f.adjusts = append(f.adjusts, delta)
	return item.Quantity, nil
}

func (f *fakeStockStore) quantity(t *testing.T, itemID id.ID) int64 {
	t.Helper()
	item, ok := f.items[itemID]
	require.True(t, ok)
	return item.Quantity
}

type fakeResolver struct {
	categories map[string]id.ID
}

func (f *fakeResolver) ResolveByName(ctx context.Context, name string) (id.ID, error) {
	categoryID, ok := f.categories[name]
	if !ok {
		return id.Nil(), apperror.NewNotFound("category", name)
	}
	return categoryID, nil
}

type fakeWarehouses struct {
	known map[id.ID]bool
}

func (f *fakeWarehouses) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	if !f.known[warehouseID] {
		return nil, apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return &warehouse.Warehouse{ID: warehouseID, Name: "wh"}, nil
}

// --- Fixture ---

type fixture struct {
	svc       *Service
	repo      *fakeEntryRepo
	store     *fakeStockStore
	resolver  *fakeResolver
	mainWH    id.ID
	otherWH   id.ID
	cableCat  id.ID
	screenCat id.ID
}

func newFixture() *fixture {
	mainWH, otherWH := id.New(), id.New()
	cableCat, screenCat := id.New(), id.New()

	repo := newFakeEntryRepo()
	store := newFakeStockStore()
	resolver := &fakeResolver{categories: map[string]id.ID{
		"Cable":  cableCat,
		"Screen": screenCat,
	}}
	warehouses := &fakeWarehouses{known: map[id.ID]bool{mainWH: true, otherWH: true}}

	svc := NewService(repo, store, resolver, warehouses, &fakeTxManager{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return &fixture{
		svc: svc, repo: repo, store: store, resolver: resolver,
		mainWH: mainWH, otherWH: otherWH,
		cableCat: cableCat, screenCat: screenCat,
	}
}

// --- Create ---

func TestCreate_InboundIncreasesStock(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)
	screen := f.store.add(f.mainWH, f.screenCat, stock.SpecMap{"size": "27"}, 1)

	e, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5},
			{CategoryName: "Screen", Specs: map[string]string{"size": "27"}, Quantity: 2},
		},
		Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), e.Quantity)
	assert.Equal(t, int64(15), f.store.quantity(t, cable))
	assert.Equal(t, int64(3), f.store.quantity(t, screen))

	stored, err := f.repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	snap := DecodeSnapshot(stored.Snapshot, stored.Quantity)
	assert.Equal(t, KindMultiItem, snap.Kind)
	require.Len(t, snap.Items, 2)
	assert.False(t, snap.Reverted)
}

func TestCreate_OutboundClampsAtZero(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 3)

	e, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeOut,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5},
		},
		Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-5), e.Quantity)
	assert.Equal(t, int64(0), f.store.quantity(t, cable))
}

func TestCreate_UnknownCategoryLeavesStockUntouched(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5},
			{CategoryName: "Nonexistent", Specs: map[string]string{}, Quantity: 1},
		},
		Actor: "alice",
	})
	require.Error(t, err)

	// All line items resolve before anything is applied.
	assert.Empty(t, f.store.adjusts)
	assert.Equal(t, int64(10), f.store.quantity(t, cable))
	entries, _ := f.repo.List(context.Background(), ListFilter{})
	assert.Empty(t, entries)
}

func TestCreate_UnknownSpecsFails(t *testing.T) {
	f := newFixture()
	f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	_, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeOut,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "5m"}, Quantity: 1},
		},
		Actor: "alice",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_UnsupportedType(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateInput{
		Type:        EntryType("RETURN"),
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Quantity: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnsupportedEntryType, appErr.Code)
}

func TestCreate_TransferMovesBothSides(t *testing.T) {
	f := newFixture()
	src := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)
	dst := f.store.add(f.otherWH, f.cableCat, stock.SpecMap{"length": "2m"}, 1)

	e, err := f.svc.Create(context.Background(), CreateInput{
		Type:               TypeTransfer,
		WarehouseID:        f.mainWH,
		RelatedWarehouseID: &f.otherWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 4},
		},
		Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-4), e.Quantity)
	assert.True(t, e.IsTransferOutbound())
	assert.Equal(t, int64(6), f.store.quantity(t, src))
	assert.Equal(t, int64(5), f.store.quantity(t, dst))
}

func TestCreate_TransferSkipsMissingCounterpartLeg(t *testing.T) {
	f := newFixture()
	src := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)
	// No matching position in the other warehouse.

	_, err := f.svc.Create(context.Background(), CreateInput{
		Type:               TypeTransfer,
		WarehouseID:        f.mainWH,
		RelatedWarehouseID: &f.otherWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 4},
		},
		Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), f.store.quantity(t, src))
	assert.Len(t, f.store.adjusts, 1)
}

func TestCreate_TransferRequiresRelatedWarehouse(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeTransfer,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Quantity: 1}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreate_AdjustAppliesSignedDiff(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e, err := f.svc.Create(context.Background(), CreateInput{
		Type:        TypeAdjust,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, QuantityDiff: -3},
		},
		Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(-3), e.Quantity)
	assert.Equal(t, int64(7), f.store.quantity(t, cable))
}

// --- Revert ---

func createEntry(t *testing.T, f *fixture, input CreateInput) *Entry {
	t.Helper()
	e, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	return e
}

func TestRevert_RestoresStockAndRewritesEntry(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5},
		},
		Actor: "alice",
		Notes: "delivery 42",
	})
	require.Equal(t, int64(15), f.store.quantity(t, cable))
	originalDate := e.Date

	reverted, err := f.svc.Revert(context.Background(), e.ID, "bob", "wrong delivery")
	require.NoError(t, err)

	// Stock restored to the pre-apply quantity.
	assert.Equal(t, int64(10), f.store.quantity(t, cable))

	// Entry rewritten in place: same id and date, new aggregate and audit.
	assert.Equal(t, e.ID, reverted.ID)
	assert.Equal(t, originalDate, reverted.Date)
	assert.Equal(t, int64(-5), reverted.Quantity)
	assert.Equal(t, "bob", reverted.Actor)
	assert.Equal(t, "Reverted by bob. Original notes: delivery 42", reverted.Notes)

	snap := DecodeSnapshot(reverted.Snapshot, reverted.Quantity)
	assert.True(t, snap.Reverted)
	assert.Equal(t, "REVERT_IN", snap.Type)
	assert.Equal(t, "IN", snap.OriginalType)
	assert.Equal(t, int64(5), snap.OriginalTotalQuantity)
	assert.Equal(t, "bob", snap.RevertedBy)
	require.NotNil(t, snap.RevertedAt)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(-5), snap.Items[0].QuantityDiff)
	require.Len(t, snap.OriginalItems, 1)
	assert.Equal(t, int64(5), snap.OriginalItems[0].QuantityDiff)
}

func TestRevert_SecondAttemptFails(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})

	_, err := f.svc.Revert(context.Background(), e.ID, "bob", "")
	require.NoError(t, err)
	require.Equal(t, int64(10), f.store.quantity(t, cable))

	_, err = f.svc.Revert(context.Background(), e.ID, "carol", "")
	require.Error(t, err)
	assert.True(t, apperror.IsAlreadyReverted(err))

	// Stock untouched by the failed attempt.
	assert.Equal(t, int64(10), f.store.quantity(t, cable))
}

func TestRevert_ClampedOutboundOvershoots(t *testing.T) {
	// The decrement was clamped at zero, so the revert restores more than was
	// actually removed. Preserved behavior: the round-trip guarantee holds
	// only without clamping.
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 3)

	e := createEntry(t, f, CreateInput{
		Type:        TypeOut,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})
	require.Equal(t, int64(0), f.store.quantity(t, cable))

	_, err := f.svc.Revert(context.Background(), e.ID, "bob", "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.store.quantity(t, cable))
}

func TestRevert_Transfer(t *testing.T) {
	f := newFixture()
	src := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)
	dst := f.store.add(f.otherWH, f.cableCat, stock.SpecMap{"length": "2m"}, 1)

	e := createEntry(t, f, CreateInput{
		Type:               TypeTransfer,
		WarehouseID:        f.mainWH,
		RelatedWarehouseID: &f.otherWH,
		Items:              []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 4}},
		Actor:              "alice",
	})
	require.Equal(t, int64(6), f.store.quantity(t, src))
	require.Equal(t, int64(5), f.store.quantity(t, dst))

	_, err := f.svc.Revert(context.Background(), e.ID, "bob", "")
	require.NoError(t, err)

	assert.Equal(t, int64(10), f.store.quantity(t, src))
	assert.Equal(t, int64(1), f.store.quantity(t, dst))
}

// --- Delete ---

func TestDelete_ReversesActiveEntry(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})
	require.Equal(t, int64(15), f.store.quantity(t, cable))

	require.NoError(t, f.svc.Delete(context.Background(), e.ID))

	assert.Equal(t, int64(10), f.store.quantity(t, cable))
	_, err := f.repo.GetByID(context.Background(), e.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_RestoresRevertedEntry(t *testing.T) {
	// Deleting a reverted entry must re-apply the original effect, otherwise
	// the reversal would be counted twice.
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})
	_, err := f.svc.Revert(context.Background(), e.ID, "bob", "")
	require.NoError(t, err)
	require.Equal(t, int64(10), f.store.quantity(t, cable))

	require.NoError(t, f.svc.Delete(context.Background(), e.ID))

	assert.Equal(t, int64(15), f.store.quantity(t, cable))
}

// --- Modify ---

func TestModify_QuantityReappliesEffect(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})
	require.Equal(t, int64(15), f.store.quantity(t, cable))

	newQty := int64(2)
	modified, err := f.svc.Modify(context.Background(), e.ID, ModifyInput{Quantity: &newQty})
	require.NoError(t, err)

	assert.Equal(t, int64(2), modified.Quantity)
	assert.Equal(t, int64(12), f.store.quantity(t, cable))

	snap := DecodeSnapshot(modified.Snapshot, modified.Quantity)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(2), snap.Items[0].Quantity)
}

func TestModify_MetadataOnly(t *testing.T) {
	f := newFixture()
	cable := f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})

	actor, notes := "bob", "corrected paperwork"
	modified, err := f.svc.Modify(context.Background(), e.ID, ModifyInput{Actor: &actor, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "bob", modified.Actor)
	assert.Equal(t, "corrected paperwork", modified.Notes)
	// No stock movement for metadata-only changes.
	assert.Equal(t, int64(15), f.store.quantity(t, cable))
}

func TestModify_QuantityRejectedForRevertedEntry(t *testing.T) {
	f := newFixture()
	f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items:       []LineItem{{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5}},
		Actor:       "alice",
	})
	_, err := f.svc.Revert(context.Background(), e.ID, "bob", "")
	require.NoError(t, err)

	newQty := int64(3)
	_, err = f.svc.Modify(context.Background(), e.ID, ModifyInput{Quantity: &newQty})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestModify_QuantityRejectedForMultiItemEntry(t *testing.T) {
	f := newFixture()
	f.store.add(f.mainWH, f.cableCat, stock.SpecMap{"length": "2m"}, 10)
	f.store.add(f.mainWH, f.screenCat, stock.SpecMap{"size": "27"}, 5)

	e := createEntry(t, f, CreateInput{
		Type:        TypeIn,
		WarehouseID: f.mainWH,
		Items: []LineItem{
			{CategoryName: "Cable", Specs: map[string]string{"length": "2m"}, Quantity: 5},
			{CategoryName: "Screen", Specs: map[string]string{"size": "27"}, Quantity: 1},
		},
		Actor: "alice",
	})

	newQty := int64(3)
	_, err := f.svc.Modify(context.Background(), e.ID, ModifyInput{Quantity: &newQty})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
