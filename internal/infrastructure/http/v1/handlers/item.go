package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/stock"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles stock item endpoints.
type ItemHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewItemHandler creates a new stock item handler.
func NewItemHandler(base *BaseHandler, service *stock.Service) *ItemHandler {
	return &ItemHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes mounts item routes on the group.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/with-category", h.ListWithCategory)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /items. When a position with the same warehouse,
// category and specification set already exists, the quantity merges into it
// and the existing position is returned.
func (h *ItemHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("error", err.Error()))
		return
	}

	created, err := h.service.Create(ctx, item)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created.ID.String())
}

// Get handles GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(item))
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ItemListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
		return
	}

	items, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItems(items))
}

// ListWithCategory handles GET /items/with-category
func (h *ItemHandler) ListWithCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ItemListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
		return
	}

	items, err := h.service.ListWithCategory(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItemsWithCategory(items))
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(item)
	if err := h.service.Update(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(item))
}

// Delete handles DELETE /items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
