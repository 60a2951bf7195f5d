package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// EntryHandler handles ledger entry endpoints.
type EntryHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewEntryHandler creates a new ledger entry handler.
func NewEntryHandler(base *BaseHandler, service *ledger.Service) *EntryHandler {
	return &EntryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes mounts entry routes on the group.
func (h *EntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/revert", h.Revert)
	rg.PATCH("/:id", h.Modify)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /entries
func (h *EntryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("error", err.Error()))
		return
	}

	entry, err := h.service.Create(ctx, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromEntry(entry))
}

// Get handles GET /entries/:id
func (h *EntryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetByID(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(entry))
}

// List handles GET /entries
func (h *EntryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.EntryListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
		return
	}

	entries, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntries(entries))
}

// Revert handles POST /entries/:id/revert
func (h *EntryHandler) Revert(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.RevertEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Revert(ctx, entryID, req.User, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(entry))
}

// Modify handles PATCH /entries/:id
func (h *EntryHandler) Modify(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.ModifyEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Modify(ctx, entryID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(entry))
}

// Delete handles DELETE /entries/:id
func (h *EntryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
