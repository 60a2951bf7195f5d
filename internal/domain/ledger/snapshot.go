package ledger

import (
	"encoding/json"
	"strings"
	"time"
)

// maxUnwrapAttempts bounds how many times a string-encoded JSON payload is
// unwrapped before the remainder is treated as an opaque legacy string.
const maxUnwrapAttempts = 5

// revertTypePrefix tags the payload of a reverted entry. Historical rows may
// carry the longer legacyRevertTypePrefix instead.
const (
	revertTypePrefix       = "REVERT_"
	legacyRevertTypePrefix = "MULTI_ITEM_REVERT_"
)

// LineItem is one stock-position-affecting unit within a snapshot. The
// position is identified by category name plus specification map and is
// re-resolved against the stock store whenever effects are applied; line
// items deliberately carry no stable SKU reference.
type LineItem struct {
	CategoryName string            `json:"category_name"`
	Specs        map[string]string `json:"specs"`

	// Quantity is the absolute magnitude for IN/OUT/TRANSFER lines.
	Quantity int64 `json:"quantity"`

	// QuantityDiff is the signed delta for ADJUST lines. Older payloads may
	// populate only one of the two fields.
	QuantityDiff int64 `json:"quantity_diff"`
}

// Magnitude returns the absolute per-line quantity, falling back to the
// signed diff when only that field was populated.
func (li LineItem) Magnitude() int64 {
	q := li.Quantity
	if q == 0 {
		q = li.QuantityDiff
	}
	if q < 0 {
		return -q
	}
	return q
}

// Diff returns the signed per-line delta, falling back to the magnitude
// field when only that was populated.
func (li LineItem) Diff() int64 {
	if li.QuantityDiff != 0 {
		return li.QuantityDiff
	}
	return li.Quantity
}

// SnapshotKind tags which persisted encoding a snapshot was decoded from.
type SnapshotKind int

const (
	// KindLegacy is the oldest form: a bare "<category> - <json specs>"
	// string with the quantity implied by the entry's aggregate field.
	KindLegacy SnapshotKind = iota

	// KindSingleObject is a JSON object carrying one line item's fields at
	// the top level.
	KindSingleObject

	// KindMultiItem is the current form: a JSON object with an "items" list.
	KindMultiItem

	// KindRevertedMultiItem is a multi-item payload additionally carrying the
	// reversal audit trail and the preserved pre-reversal items.
	KindRevertedMultiItem
)

// Snapshot is the normalized in-memory representation of an entry's payload.
type Snapshot struct {
	Kind  SnapshotKind
	Type  string
	Items []LineItem

	// Reversal audit trail, populated only for KindRevertedMultiItem.
	Reverted              bool
	RevertedAt            *time.Time
	RevertedBy            string
	RevertNotes           string
	OriginalItems         []LineItem
	OriginalType          string
	OriginalTotalQuantity int64
}

// payload is the wire shape of the JSON snapshot forms.
type payload struct {
	Type  string     `json:"type,omitempty"`
	Items []LineItem `json:"items,omitempty"`

	// Single-object form fields.
	CategoryName string            `json:"category_name,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
	Quantity     int64             `json:"quantity,omitempty"`
	QuantityDiff int64             `json:"quantity_diff,omitempty"`

	// Reverted form fields.
	Reverted              bool       `json:"reverted,omitempty"`
	RevertedAt            *time.Time `json:"reverted_at,omitempty"`
	RevertedBy            string     `json:"reverted_by,omitempty"`
	RevertNotes           string     `json:"revert_notes,omitempty"`
	OriginalItems         []LineItem `json:"original_items,omitempty"`
	OriginalType          string     `json:"original_type,omitempty"`
	OriginalTotalQuantity int64      `json:"original_total_quantity,omitempty"`
}

// DecodeSnapshot converts any of the persisted payload forms into a
// normalized Snapshot. aggregateQty supplies the implied quantity for legacy
// bare-string payloads (taken from the entry's aggregate field).
//
// Decoding never fails: malformed legacy data degrades to a best-effort
// single-item snapshot so that years of accumulated historical rows stay
// readable.
func DecodeSnapshot(raw string, aggregateQty int64) Snapshot {
	text, ok := unwrapJSON(raw)
	if !ok {
		// Not JSON at any depth: the oldest bare-string form.
		return decodeLegacy(text, aggregateQty)
	}

	// A bare JSON array is an items list with no envelope.
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		var items []LineItem
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return Snapshot{Kind: KindMultiItem, Items: items}
		}
		return decodeLegacy(raw, aggregateQty)
	}

	var p payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return decodeLegacy(text, aggregateQty)
	}

	if p.Reverted || isRevertType(p.Type) {
		return Snapshot{
			Kind:                  KindRevertedMultiItem,
			Type:                  p.Type,
			Items:                 p.Items,
			Reverted:              true,
			RevertedAt:            p.RevertedAt,
			RevertedBy:            p.RevertedBy,
			RevertNotes:           p.RevertNotes,
			OriginalItems:         p.OriginalItems,
			OriginalType:          p.OriginalType,
			OriginalTotalQuantity: p.OriginalTotalQuantity,
		}
	}

	if len(p.Items) > 0 {
		return Snapshot{Kind: KindMultiItem, Type: p.Type, Items: p.Items}
	}

	// Single line item's fields at the top level.
	return Snapshot{
		Kind: KindSingleObject,
		Type: p.Type,
		Items: []LineItem{{
			CategoryName: p.CategoryName,
			Specs:        p.Specs,
			Quantity:     p.Quantity,
			QuantityDiff: firstNonZero(p.QuantityDiff, p.Quantity),
		}},
	}
}

// unwrapJSON peels string-encoded JSON (a string containing JSON text) up to
// maxUnwrapAttempts times. It returns the innermost JSON text and true, or
// the original input and false when the input is not JSON at all. When the
// bound is hit while the value is still a string, that remaining string is
// returned as an opaque non-JSON value.
func unwrapJSON(raw string) (string, bool) {
	current := raw
	var v any
	if err := json.Unmarshal([]byte(current), &v); err != nil {
		return raw, false
	}

	for attempts := 0; attempts < maxUnwrapAttempts; attempts++ {
		s, isString := v.(string)
		if !isString {
			return current, true
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			// A JSON string whose content is not JSON: legacy text that was
			// double-encoded once.
			return s, false
		}
		current = s
		v = inner
	}

	if _, isString := v.(string); isString {
		return current, false
	}
	return current, true
}

// decodeLegacy parses the bare-string form "<category> - <json specs>". The
// implied quantity comes from the entry's aggregate field. If nothing parses,
// the literal string becomes the category name of a single line item: a
// recoverable-but-imprecise result, not an error.
func decodeLegacy(raw string, aggregateQty int64) Snapshot {
	magnitude := aggregateQty
	if magnitude < 0 {
		magnitude = -magnitude
	}

	item := LineItem{
		CategoryName: raw,
		Specs:        map[string]string{},
		Quantity:     magnitude,
		QuantityDiff: aggregateQty,
	}

	if name, specsJSON, found := strings.Cut(raw, " - "); found {
		item.CategoryName = name
		var specs map[string]string
		if err := json.Unmarshal([]byte(specsJSON), &specs); err == nil {
			item.Specs = specs
		} else {
			// Unparseable specs: keep the category split, drop the rest.
			item.Specs = map[string]string{}
		}
	}

	return Snapshot{Kind: KindLegacy, Items: []LineItem{item}}
}

// Encode serializes the snapshot in the current multi-item JSON form.
// Reverted snapshots keep their audit fields and original_items untouched.
func (s Snapshot) Encode() (string, error) {
	p := payload{
		Type:  s.Type,
		Items: s.Items,
	}
	if s.Reverted {
		p.Reverted = true
		p.RevertedAt = s.RevertedAt
		p.RevertedBy = s.RevertedBy
		p.RevertNotes = s.RevertNotes
		p.OriginalItems = s.OriginalItems
		p.OriginalType = s.OriginalType
		p.OriginalTotalQuantity = s.OriginalTotalQuantity
	}

	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isRevertType(t string) bool {
	return strings.HasPrefix(t, revertTypePrefix) || strings.HasPrefix(t, legacyRevertTypePrefix)
}

func firstNonZero(a, b int64) int64 {
	if a != 0 {
		return a
	}
	return b
}
