package dto

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

// LineItemRequest is one stock position affected by a new entry. Quantity is
// the absolute magnitude for IN/OUT/TRANSFER entries and the signed delta for
// ADJUST entries.
type LineItemRequest struct {
	Category string            `json:"category" binding:"required"`
	Specs    map[string]string `json:"specs"`
	Quantity int64             `json:"quantity" binding:"required"`
}

// CreateEntryRequest creates a ledger entry and applies its stock effect.
type CreateEntryRequest struct {
	Type               string            `json:"type" binding:"required"`
	WarehouseID        string            `json:"warehouseId" binding:"required,uuid"`
	RelatedWarehouseID string            `json:"relatedWarehouseId" binding:"omitempty,uuid"`
	Items              []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	User               string            `json:"user" binding:"required"`
	Notes              string            `json:"notes"`
	Date               *time.Time        `json:"date"`
}

// ToInput converts the request to a service input.
func (r CreateEntryRequest) ToInput() (ledger.CreateInput, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return ledger.CreateInput{}, err
	}

	input := ledger.CreateInput{
		Type:        ledger.EntryType(r.Type),
		WarehouseID: warehouseID,
		Actor:       r.User,
		Notes:       r.Notes,
	}
	if r.RelatedWarehouseID != "" {
		relatedID, err := id.Parse(r.RelatedWarehouseID)
		if err != nil {
			return ledger.CreateInput{}, err
		}
		input.RelatedWarehouseID = &relatedID
	}
	if r.Date != nil {
		input.Date = *r.Date
	}

	input.Items = make([]ledger.LineItem, len(r.Items))
	for i, li := range r.Items {
		input.Items[i] = ledger.LineItem{
			CategoryName: li.Category,
			Specs:        li.Specs,
			Quantity:     li.Quantity,
			QuantityDiff: li.Quantity,
		}
	}
	return input, nil
}

// RevertEntryRequest reverts an entry.
type RevertEntryRequest struct {
	User  string `json:"user" binding:"required"`
	Notes string `json:"notes"`
}

// ModifyEntryRequest rewrites entry fields. Absent fields stay as-is.
type ModifyEntryRequest struct {
	Quantity *int64     `json:"quantity"`
	User     *string    `json:"user"`
	Notes    *string    `json:"notes"`
	Date     *time.Time `json:"date"`
}

// ToInput converts the request to a service input.
func (r ModifyEntryRequest) ToInput() ledger.ModifyInput {
	return ledger.ModifyInput{
		Quantity: r.Quantity,
		Actor:    r.User,
		Notes:    r.Notes,
		Date:     r.Date,
	}
}

// LineItemResponse is one decoded stock position of an entry.
type LineItemResponse struct {
	Category     string            `json:"category"`
	Specs        map[string]string `json:"specs"`
	Quantity     int64             `json:"quantity"`
	QuantityDiff int64             `json:"quantityDiff"`
}

// EntryResponse is the wire form of a ledger entry with its snapshot decoded.
type EntryResponse struct {
	ID                 string             `json:"id"`
	WarehouseID        string             `json:"warehouseId"`
	RelatedWarehouseID string             `json:"relatedWarehouseId,omitempty"`
	Type               string             `json:"type"`
	Quantity           int64              `json:"quantity"`
	Date               time.Time          `json:"date"`
	User               string             `json:"user"`
	Notes              string             `json:"notes"`
	Items              []LineItemResponse `json:"items"`

	Reverted    bool       `json:"reverted"`
	RevertedAt  *time.Time `json:"revertedAt,omitempty"`
	RevertedBy  string     `json:"revertedBy,omitempty"`
	RevertNotes string     `json:"revertNotes,omitempty"`
}

// FromEntry converts a domain entry, decoding its snapshot payload.
func FromEntry(e *ledger.Entry) EntryResponse {
	snap := ledger.DecodeSnapshot(e.Snapshot, e.Quantity)

	resp := EntryResponse{
		ID:          e.ID.String(),
		WarehouseID: e.WarehouseID.String(),
		Type:        string(e.Type),
		Quantity:    e.Quantity,
		Date:        e.Date,
		User:        e.Actor,
		Notes:       e.Notes,
		Items:       fromLineItems(snap.Items),
		Reverted:    snap.Reverted,
		RevertedAt:  snap.RevertedAt,
		RevertedBy:  snap.RevertedBy,
		RevertNotes: snap.RevertNotes,
	}
	if e.RelatedWarehouseID != nil {
		resp.RelatedWarehouseID = e.RelatedWarehouseID.String()
	}
	return resp
}

// FromEntries converts a slice of entries.
func FromEntries(entries []ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = FromEntry(&entries[i])
	}
	return out
}

func fromLineItems(items []ledger.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, li := range items {
		out[i] = LineItemResponse{
			Category:     li.CategoryName,
			Specs:        li.Specs,
			Quantity:     li.Magnitude(),
			QuantityDiff: li.Diff(),
		}
	}
	return out
}

// EntryListQuery filters entry listings.
type EntryListQuery struct {
	ListQuery
	WarehouseID string `form:"warehouseId" binding:"omitempty,uuid"`
	Type        string `form:"type"`
	// Day filters entries to one calendar day, formatted 2006-01-02.
	Day string `form:"day" binding:"omitempty,datetime=2006-01-02"`
}

// ToFilter converts the query to a domain filter.
func (q EntryListQuery) ToFilter() (ledger.ListFilter, error) {
	filter := ledger.ListFilter{
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
	if q.Type != "" {
		t := ledger.EntryType(q.Type)
		filter.Type = &t
	}
	if q.Day != "" {
		day, err := time.Parse("2006-01-02", q.Day)
		if err != nil {
			return filter, err
		}
		filter.Day = &day
	}
	return filter, nil
}
