package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"

	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LabelGenerator renders shipping labels and keeps them in storage. It backs
// both the dispatcher's label port and the HTTP label download endpoint.
type LabelGenerator struct {
	shipments shipment.Repository
	renderer  PDFRenderer
	storage   LabelStorage
	tmpl      *template.Template
	cost      decimal.Decimal
	logger    *zap.Logger
}

// NewLabelGenerator creates a new label generator
func NewLabelGenerator(
	shipments shipment.Repository,
	renderer PDFRenderer,
	storage LabelStorage,
	shippingCost string,
	logger *zap.Logger,
) (*LabelGenerator, error) {
	tmpl, err := newLabelTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to parse label template: %w", err)
	}
	cost, err := decimal.NewFromString(shippingCost)
	if err != nil {
		cost = decimal.NewFromInt(19)
	}
	return &LabelGenerator{
		shipments: shipments,
		renderer:  renderer,
		storage:   storage,
		tmpl:      tmpl,
		cost:      cost,
		logger:    logger.Named("labels"),
	}, nil
}

type labelView struct {
	ShippingNumber string
	TrackingNumber string
	CourierName    string
	PaymentMethod  string
	Weight         string
	Cost           decimal.Decimal
	Currency       string

	FromName    string
	FromAddress string
	FromCity    string
	FromCountry string
	FromPhone   string

	ToName    string
	ToAddress string
	ToCity    string
	ToCountry string
	ToPhone   string
}

// Generate renders the label for a shipment, stores it and returns the URL
// it is served under
func (g *LabelGenerator) Generate(ctx context.Context, s *shipment.Shipment) (string, error) {
	pdf, err := g.render(ctx, s)
	if err != nil {
		return "", err
	}

	result, err := g.storage.Store(ctx, s.ShipmentID, pdf)
	if err != nil {
		return "", err
	}

	g.logger.Info("label generated",
		zap.Int64("shipment_id", s.ShipmentID),
		zap.Int64("bytes", result.Size))
	return result.URL, nil
}

// Fetch returns the stored label PDF for a shipment, rendering it on demand
// when no stored copy exists. Returns the repository's not-found error when
// the shipment itself is unknown; rendering failures come back as
// RenderError.
func (g *LabelGenerator) Fetch(ctx context.Context, shipmentID int64) ([]byte, error) {
	s, err := g.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	pdf, err := g.storage.Get(ctx, shipmentID)
	if err == nil {
		return pdf, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	pdf, err = g.render(ctx, s)
	if err != nil {
		return nil, err
	}
	if _, err := g.storage.Store(ctx, shipmentID, pdf); err != nil {
		g.logger.Warn("failed to cache re-rendered label",
			zap.Int64("shipment_id", shipmentID),
			zap.Error(err))
	}
	return pdf, nil
}

func (g *LabelGenerator) render(ctx context.Context, s *shipment.Shipment) ([]byte, error) {
	view := g.buildView(s)

	var html bytes.Buffer
	if err := g.tmpl.Execute(&html, view); err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to render label template", err)
	}

	result, err := g.renderer.Render(ctx, &RenderRequest{
		HTML:  html.String(),
		Title: fmt.Sprintf("Shipping label %s", s.ShippingNumber),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

func (g *LabelGenerator) buildView(s *shipment.Shipment) *labelView {
	view := &labelView{
		ShippingNumber: s.ShippingNumber,
		TrackingNumber: s.TrackingNumber,
		CourierName:    s.CourierName,
		PaymentMethod:  s.PaymentMethod,
		Cost:           g.cost,
		Currency:       s.Total.GetString("currency"),

		FromName:    s.ShipFrom.GetString("name"),
		FromAddress: s.ShipFrom.GetString("address_line"),
		FromCity:    s.ShipFrom.GetString("city"),
		FromCountry: s.ShipFrom.GetString("country"),
		FromPhone:   s.ShipFrom.GetString("phone"),

		ToName:    s.ShipTo.GetString("name"),
		ToAddress: s.ShipTo.GetString("address_line"),
		ToCity:    s.ShipTo.GetString("city"),
		ToCountry: s.ShipTo.GetString("country"),
		ToPhone:   s.ShipTo.GetString("phone"),
	}

	if s.TotalWeight != nil {
		value := toDecimal(s.TotalWeight["value"])
		units := s.TotalWeight.GetString("units")
		if !value.IsZero() {
			view.Weight = value.String() + " " + units
		}
	}
	return view
}
