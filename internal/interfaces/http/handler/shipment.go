package handler

import (
	"strconv"

	shipmentapp "github.com/shipments/backend/internal/application/shipment"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shipments/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ShipmentHandler exposes read and maintenance endpoints over shipments
type ShipmentHandler struct {
	BaseHandler
	shipments *shipmentapp.Service
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipments *shipmentapp.Service) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

// List returns one page of shipments, newest first
func (h *ShipmentHandler) List(c *gin.Context) {
	var req dto.ListShipmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.shipments.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]dto.ShipmentResponse, len(page.Items))
	for i := range page.Items {
		items[i] = dto.ShipmentFromDomain(&page.Items[i])
	}
	h.SuccessWithMeta(c, items, page.Total, req.Limit, req.Offset, len(items))
}

// Get returns one shipment with its status history
func (h *ShipmentHandler) Get(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}

	details, err := h.shipments.Get(c.Request.Context(), shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := dto.ShipmentDetailsResponse{
		ShipmentResponse: dto.ShipmentFromDomain(details.Shipment),
		History:          make([]dto.StatusEntryResponse, len(details.History)),
	}
	if details.Current != nil {
		resp.CurrentStatus = details.Current.Status.String()
	}
	for i := range details.History {
		resp.History[i] = dto.StatusEntryFromDomain(&details.History[i])
	}
	h.Success(c, resp)
}

// Search finds shipments by shipping or tracking number substring
func (h *ShipmentHandler) Search(c *gin.Context) {
	var req dto.SearchShipmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Query parameter q is required")
		return
	}

	matches, err := h.shipments.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	items := make([]dto.ShipmentResponse, len(matches))
	for i := range matches {
		items[i] = dto.ShipmentFromDomain(&matches[i])
	}
	h.Success(c, items)
}

// AppendStatus records a manual status change
func (h *ShipmentHandler) AppendStatus(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}

	var req dto.AppendStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Status is required")
		return
	}

	entry, err := h.shipments.AppendStatus(c.Request.Context(), shipmentID, shipment.Status(req.Status))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.StatusEntryFromDomain(entry))
}

// Delete removes a shipment and its history
func (h *ShipmentHandler) Delete(c *gin.Context) {
	shipmentID, ok := h.shipmentID(c)
	if !ok {
		return
	}

	if err := h.shipments.Delete(c.Request.Context(), shipmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Cleanup removes duplicate shipment rows sharing a shipping number
func (h *ShipmentHandler) Cleanup(c *gin.Context) {
	removed, err := h.shipments.Cleanup(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.CleanupResponse{Removed: removed})
}

func (h *ShipmentHandler) shipmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid shipment id")
		return 0, false
	}
	return id, true
}

// RegisterRoutes registers the shipment endpoints
func (h *ShipmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipments := rg.Group("/shipments")
	{
		shipments.GET("", h.List)
		shipments.GET("/search", h.Search)
		shipments.POST("/cleanup", h.Cleanup)
		shipments.GET("/:id", h.Get)
		shipments.POST("/:id/status", h.AppendStatus)
		shipments.DELETE("/:id", h.Delete)
	}
}
