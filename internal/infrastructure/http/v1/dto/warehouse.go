package dto

import (
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/warehouse"
)

// CreateWarehouseRequest creates a warehouse.
type CreateWarehouseRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts the request to a domain entity.
func (r CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	return &warehouse.Warehouse{
		ID:   id.New(),
		Name: r.Name,
	}
}

// UpdateWarehouseRequest updates a warehouse.
type UpdateWarehouseRequest struct {
	Name string `json:"name" binding:"required"`
}

// ApplyTo applies the request to an existing entity.
func (r UpdateWarehouseRequest) ApplyTo(w *warehouse.Warehouse) {
	w.Name = r.Name
}

// WarehouseResponse is the wire form of a warehouse.
type WarehouseResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromWarehouse converts a domain entity to its response form.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:   w.ID.String(),
		Name: w.Name,
	}
}

// FromWarehouses converts a slice of warehouses.
func FromWarehouses(warehouses []warehouse.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		out[i] = FromWarehouse(&warehouses[i])
	}
	return out
}
