package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shipments/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/gomail.v2"
)

// mailSender abstracts the SMTP dialer so tests can capture messages
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier sends status-change emails to a static staff list.
// It satisfies the dispatcher's Notifier port.
type EmailNotifier struct {
	cfg    *config.MailConfig
	sender mailSender
	tmpl   *template.Template
	logger *zap.Logger
	title  cases.Caser
}

// NewEmailNotifier creates a new email notifier using the configured SMTP transport
func NewEmailNotifier(cfg *config.MailConfig, logger *zap.Logger) (*EmailNotifier, error) {
	tmpl, err := template.New("status").Parse(statusChangeTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification template: %w", err)
	}
	return &EmailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		tmpl:   tmpl,
		logger: logger.Named("notification"),
		title:  cases.Title(language.English),
	}, nil
}

type statusChangeView struct {
	ShipmentID     int64
	ShippingNumber string
	TrackingNumber string
	CourierName    string
	Status         string
	ShipFrom       shipment.Attrs
	ShipTo         shipment.Attrs
}

// NotifyStatusChange renders the HTML notification with a plain-text
// fallback and sends it to every configured staff address.
func (n *EmailNotifier) NotifyStatusChange(_ context.Context, s *shipment.Shipment, status shipment.Status) error {
	if len(n.cfg.StaffEmails) == 0 {
		n.logger.Warn("no staff emails configured, skipping notification",
			zap.Int64("shipment_id", s.ShipmentID))
		return nil
	}

	view := statusChangeView{
		ShipmentID:     s.ShipmentID,
		ShippingNumber: s.ShippingNumber,
		TrackingNumber: s.TrackingNumber,
		CourierName:    s.CourierName,
		Status:         n.title.String(strings.ReplaceAll(status.String(), "_", " ")),
		ShipFrom:       s.ShipFrom,
		ShipTo:         s.ShipTo,
	}

	var html bytes.Buffer
	if err := n.tmpl.Execute(&html, view); err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", n.cfg.StaffEmails...)
	msg.SetHeader("Subject", fmt.Sprintf("Shipment %s is %s", view.ShippingNumber, view.Status))
	msg.SetBody("text/plain", stripTags(html.String()))
	msg.AddAlternative("text/html", html.String())

	if err := n.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.logger.Info("status notification sent",
		zap.Int64("shipment_id", s.ShipmentID),
		zap.String("status", status.String()),
		zap.Int("recipients", len(n.cfg.StaffEmails)))
	return nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags derives the plain-text alternative from the rendered HTML
func stripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}
