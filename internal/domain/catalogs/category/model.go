// Package category provides the Category catalog. A category names a family
// of stock positions and defines which specification attributes its items
// carry.
package category

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// AttributeDefinition declares one specification attribute and its allowed
// options.
type AttributeDefinition struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// AttributeList is stored as a JSONB column.
type AttributeList []AttributeDefinition

// Scan implements sql.Scanner.
func (l *AttributeList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into AttributeList", src)
}

// Value implements driver.Valuer.
func (l AttributeList) Value() (driver.Value, error) {
	if l == nil {
		l = AttributeList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Category groups stock positions and defines their attribute schema.
// Ledger line items reference categories by name, not id: a deliberate weak
// reference resolved at apply/revert time.
type Category struct {
	ID         id.ID         `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Attributes AttributeList `db:"attributes" json:"attributes"`
}

// Validate checks required fields.
func (c *Category) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("category name is required").
			WithDetail("field", "name")
	}
	for i, attr := range c.Attributes {
		if attr.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("attribute %d: name is required", i))
		}
	}
	return nil
}

// Repository defines persistence for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, categoryID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Category, error)
}
