package handler

import (
	"errors"
	"net/http"

	webhookapp "github.com/shipments/backend/internal/application/webhook"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Webhook payloads are small; anything larger is not a platform delivery.
const maxWebhookPayloadSize = 1 << 20

// WebhookHandler receives event deliveries from the platform. The endpoint
// is called by the platform itself and keeps a deliberately stable response
// shape: {"message": ...} on success, {"error": ...} on failure.
type WebhookHandler struct {
	BaseHandler
	dispatcher *webhookapp.Service
	logger     *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(dispatcher *webhookapp.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger.Named("http.webhook"),
	}
}

// HandleSallaWebhook processes one webhook delivery
func (h *WebhookHandler) HandleSallaWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayloadSize)

	var envelope webhookapp.EventEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload: " + err.Error()})
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &envelope)
	if err != nil {
		h.respondError(c, &envelope, err)
		return
	}

	body := gin.H{"message": result.Message}
	if result.PDFLabel != "" {
		body["pdf_label"] = result.PDFLabel
	}
	c.JSON(result.Status, body)
}

func (h *WebhookHandler) respondError(c *gin.Context, envelope *webhookapp.EventEnvelope, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(dto.MapDomainCode(domainErr.Code))
		c.JSON(status, gin.H{"error": domainErr.Message})
		return
	}

	h.logger.Error("webhook dispatch failed",
		zap.String("event", envelope.Event),
		zap.Int64("merchant", envelope.Merchant),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// RegisterRoutes registers the webhook endpoint
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/salla", h.HandleSallaWebhook)
}
