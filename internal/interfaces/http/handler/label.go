package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LabelHandler serves rendered shipping label PDFs
type LabelHandler struct {
	BaseHandler
	labels *printing.LabelGenerator
	logger *zap.Logger
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(labels *printing.LabelGenerator, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{
		labels: labels,
		logger: logger.Named("http.labels"),
	}
}

// Download streams the label PDF as an attachment
func (h *LabelHandler) Download(c *gin.Context) {
	shipmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || shipmentID <= 0 {
		h.BadRequest(c, "Invalid shipment id")
		return
	}

	pdf, err := h.labels.Fetch(c.Request.Context(), shipmentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Shipment not found")
			return
		}
		h.logger.Error("label rendering failed",
			zap.Int64("shipment_id", shipmentID),
			zap.Error(err))
		h.InternalError(c, "Failed to generate label")
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("shipment_label_%d.pdf", shipmentID)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// RegisterRoutes registers the label endpoint
func (h *LabelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shipments/:id/label", h.Download)
}
