// Package ledger provides the inventory ledger: append-style entries that
// record every quantity-affecting operation, the engine that applies their
// stock effects, and the reversal engine that undoes them.
package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// EntryType identifies the kind of inventory operation an entry records.
type EntryType string

const (
	TypeIn       EntryType = "IN"       // goods received into the warehouse
	TypeOut      EntryType = "OUT"      // goods issued out of the warehouse
	TypeAdjust   EntryType = "ADJUST"   // stocktake correction, signed delta
	TypeTransfer EntryType = "TRANSFER" // movement between two warehouses
)

// Valid reports whether t is one of the four supported entry types.
func (t EntryType) Valid() bool {
	switch t {
	case TypeIn, TypeOut, TypeAdjust, TypeTransfer:
		return true
	}
	return false
}

// Entry is one ledger record. Entries are append-oriented: after creation
// the only mutation paths are a single revert (which rewrites the snapshot
// payload, aggregate quantity, actor and notes in place) and administrative
// modify/delete. ID and Date never change, so an entry keeps its position in
// chronological listings across a revert.
type Entry struct {
	ID          id.ID     `db:"id" json:"id"`
	WarehouseID id.ID     `db:"warehouse_id" json:"warehouseId"`

	// RelatedWarehouseID is set only for transfers and names the counterpart
	// warehouse of the movement.
	RelatedWarehouseID *id.ID `db:"related_warehouse_id" json:"relatedWarehouseId,omitempty"`

	Type EntryType `db:"type" json:"type"`

	// Quantity is the signed aggregate effect at the primary warehouse:
	// negative for outbound-direction entries, positive for inbound-direction
	// entries, net delta for adjustments.
	Quantity int64 `db:"quantity" json:"quantity"`

	Date  time.Time `db:"date" json:"date"`
	Actor string    `db:"actor" json:"user"`
	Notes string    `db:"notes" json:"notes"`

	// Snapshot holds the encoded payload describing the affected stock
	// positions. Historical rows appear in several encodings; see snapshot.go.
	Snapshot string `db:"snapshot" json:"snapshot"`
}

// IsTransferOutbound reports whether a transfer entry records the outbound
// leg at its primary warehouse (negative aggregate by convention).
func (e *Entry) IsTransferOutbound() bool {
	return e.Quantity < 0
}

// ListFilter narrows entry listings.
type ListFilter struct {
	// WarehouseID matches entries whose primary OR related warehouse equals it.
	WarehouseID *id.ID
	Type        *EntryType
	// Day filters to a single calendar day (entry dates within it).
	Day    *time.Time
	Limit  int
	Offset int
}

// Repository defines persistence for ledger entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, entryID id.ID) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
