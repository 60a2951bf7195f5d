package dto

import (
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/category"
)

// AttributeDefinition mirrors category.AttributeDefinition on the wire.
type AttributeDefinition struct {
	Name    string   `json:"name" binding:"required"`
	Options []string `json:"options"`
}

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Name       string                `json:"name" binding:"required"`
	Attributes []AttributeDefinition `json:"attributes"`
}

// ToEntity converts the request to a domain entity.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	return &category.Category{
		ID:         id.New(),
		Name:       r.Name,
		Attributes: toAttributeList(r.Attributes),
	}
}

// UpdateCategoryRequest updates a category.
type UpdateCategoryRequest struct {
	Name       string                `json:"name" binding:"required"`
	Attributes []AttributeDefinition `json:"attributes"`
}

// ApplyTo applies the request to an existing entity.
func (r UpdateCategoryRequest) ApplyTo(c *category.Category) {
	c.Name = r.Name
	c.Attributes = toAttributeList(r.Attributes)
}

func toAttributeList(attrs []AttributeDefinition) category.AttributeList {
	out := make(category.AttributeList, len(attrs))
	for i, a := range attrs {
		out[i] = category.AttributeDefinition{
			Name:    a.Name,
			Options: a.Options,
		}
	}
	return out
}

// CategoryResponse is the wire form of a category.
type CategoryResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Attributes []AttributeDefinition `json:"attributes"`
}

// FromCategory converts a domain entity to its response form.
func FromCategory(c *category.Category) CategoryResponse {
	attrs := make([]AttributeDefinition, len(c.Attributes))
	for i, a := range c.Attributes {
		attrs[i] = AttributeDefinition{
			Name:    a.Name,
			Options: a.Options,
		}
	}
	return CategoryResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		Attributes: attrs,
	}
}

// FromCategories converts a slice of categories.
func FromCategories(categories []category.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = FromCategory(&categories[i])
	}
	return out
}
