package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalogs/category"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// CategoryHandler handles category catalog endpoints.
type CategoryHandler struct {
	*BaseHandler
	service *category.Service
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes mounts category routes on the group.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := req.ToEntity()
	if err := h.service.Create(ctx, cat); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cat.ID.String())
}

// Get handles GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	categoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	cat, err := h.service.GetByID(ctx, categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategory(cat))
}

// List handles GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	categories, err := h.service.List(ctx, q.Limit, q.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategories(categories))
}

// Update handles PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	categoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat, err := h.service.GetByID(ctx, categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(cat)
	if err := h.service.Update(ctx, cat); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCategory(cat))
}

// Delete handles DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	categoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, categoryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
