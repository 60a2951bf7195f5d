package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler handles warehouse catalog endpoints.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes mounts warehouse routes on the group.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToEntity()
	if err := h.service.Create(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w.ID.String())
}

// Get handles GET /warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	w, err := h.service.GetByID(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(w))
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	warehouses, err := h.service.List(ctx, q.Limit, q.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouses(warehouses))
}

// Update handles PUT /warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.GetByID(ctx, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(w)
	if err := h.service.Update(ctx, w); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromWarehouse(w))
}

// Delete handles DELETE /warehouses/:id
func (h *WarehouseHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, warehouseID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
