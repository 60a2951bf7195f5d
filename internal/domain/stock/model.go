// Package stock provides the stock store: current quantity-on-hand per
// (warehouse, category, specification-map) position.
package stock

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"stockledger/internal/core/id"
)

// SpecMap is the unordered attribute-name to chosen-option set that, together
// with warehouse and category, identifies a stock position.
type SpecMap map[string]string

// Equal reports set equality of key/value pairs, independent of order.
func (m SpecMap) Equal(other SpecMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Scan implements sql.Scanner for JSONB columns.
func (m *SpecMap) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("cannot scan %T into SpecMap", src)
}

// Value implements driver.Valuer for JSONB columns.
func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		m = SpecMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Item is one physical stock row. Quantity is always >= 0: the store clamps
// decrements at zero instead of rejecting them.
type Item struct {
	ID          id.ID     `db:"id" json:"id"`
	WarehouseID id.ID     `db:"warehouse_id" json:"warehouseId"`
	CategoryID  id.ID     `db:"category_id" json:"categoryId"`
	Specs       SpecMap   `db:"specs" json:"specs"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// ItemWithCategory is an item joined with its category name for listings.
type ItemWithCategory struct {
	Item
	CategoryName string `db:"category_name" json:"categoryName"`
}

// Match returns the first item whose specification map compares equal as a
// set to specs. Rows are expected in a deterministic order (the repository
// orders by id), which fixes the tie-break when duplicate positions exist.
func Match(items []Item, specs SpecMap) (*Item, bool) {
	for i := range items {
		if items[i].Specs.Equal(specs) {
			return &items[i], true
		}
	}
	return nil, false
}

// Filter narrows item listings.
type Filter struct {
	WarehouseID *id.ID
	CategoryID  *id.ID
	Limit       int
	Offset      int
}

// Repository defines persistence for stock items.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ID) error
	List(ctx context.Context, filter Filter) ([]Item, error)
	ListWithCategory(ctx context.Context, filter Filter) ([]ItemWithCategory, error)

	// ListByWarehouseCategory returns items of one warehouse+category ordered
	// by id, the order Match relies on for its tie-break.
	ListByWarehouseCategory(ctx context.Context, warehouseID, categoryID id.ID) ([]Item, error)

	// AdjustQuantity applies a signed delta clamped at zero
	// (new = max(0, old + delta)) under a row lock, touches updated_at, and
	// returns the new quantity.
	AdjustQuantity(ctx context.Context, itemID id.ID, delta int64) (int64, error)

	CountByWarehouse(ctx context.Context, warehouseID id.ID) (int, error)
}
