package dto

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/stock"
)

// CreateItemRequest creates a stock item. When a position with the same
// warehouse, category and specification set already exists, the quantity is
// merged into it instead.
type CreateItemRequest struct {
	WarehouseID string            `json:"warehouseId" binding:"required,uuid"`
	CategoryID  string            `json:"categoryId" binding:"required,uuid"`
	Specs       map[string]string `json:"specs"`
	Quantity    int64             `json:"quantity" binding:"min=0"`
}

// ToEntity converts the request to a domain entity.
func (r CreateItemRequest) ToEntity() (*stock.Item, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return nil, err
	}
	categoryID, err := id.Parse(r.CategoryID)
	if err != nil {
		return nil, err
	}
	return &stock.Item{
		ID:          id.New(),
		WarehouseID: warehouseID,
		CategoryID:  categoryID,
		Specs:       stock.SpecMap(r.Specs),
		Quantity:    r.Quantity,
	}, nil
}

// UpdateItemRequest updates a stock item.
type UpdateItemRequest struct {
	Specs    map[string]string `json:"specs"`
	Quantity *int64            `json:"quantity" binding:"omitempty,min=0"`
}

// ApplyTo applies the request to an existing entity.
func (r UpdateItemRequest) ApplyTo(item *stock.Item) {
	if r.Specs != nil {
		item.Specs = stock.SpecMap(r.Specs)
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
}

// ItemResponse is the wire form of a stock item.
type ItemResponse struct {
	ID          string            `json:"id"`
	WarehouseID string            `json:"warehouseId"`
	CategoryID  string            `json:"categoryId"`
	Specs       map[string]string `json:"specs"`
	Quantity    int64             `json:"quantity"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FromItem converts a domain entity to its response form.
func FromItem(item *stock.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID.String(),
		WarehouseID: item.WarehouseID.String(),
		CategoryID:  item.CategoryID.String(),
		Specs:       item.Specs,
		Quantity:    item.Quantity,
		UpdatedAt:   item.UpdatedAt,
	}
}

// FromItems converts a slice of items.
func FromItems(items []stock.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = FromItem(&items[i])
	}
	return out
}

// ItemWithCategoryResponse adds the category name to an item.
type ItemWithCategoryResponse struct {
	ItemResponse
	CategoryName string `json:"categoryName"`
}

// FromItemsWithCategory converts joined items.
func FromItemsWithCategory(items []stock.ItemWithCategory) []ItemWithCategoryResponse {
	out := make([]ItemWithCategoryResponse, len(items))
	for i := range items {
		out[i] = ItemWithCategoryResponse{
			ItemResponse: FromItem(&items[i].Item),
			CategoryName: items[i].CategoryName,
		}
	}
	return out
}

// ItemListQuery filters item listings.
type ItemListQuery struct {
	ListQuery
	WarehouseID string `form:"warehouseId" binding:"omitempty,uuid"`
	CategoryID  string `form:"categoryId" binding:"omitempty,uuid"`
}

// ToFilter converts the query to a domain filter.
func (q ItemListQuery) ToFilter() (stock.Filter, error) {
	filter := stock.Filter{
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.WarehouseID != "" {
		warehouseID, err := id.Parse(q.WarehouseID)
		if err != nil {
			return filter, err
		}
		filter.WarehouseID = &warehouseID
	}
	if q.CategoryID != "" {
		categoryID, err := id.Parse(q.CategoryID)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = &categoryID
	}
	return filter, nil
}
