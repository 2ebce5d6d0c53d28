package notification

import (
	"context"

	"adorn-jewellery/internal/config"
	"adorn-jewellery/internal/domain"

	"go.uber.org/zap"
)

// Notifier sends the storefront's transactional e-mail.
// Each method reports whether every message was delivered; failures are
// logged and never returned.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) bool
	ContactReceived(ctx context.Context, message *domain.ContactMessage) bool
}

type orderData struct {
	Order    *domain.Order
	Currency string
}

type contactData struct {
	Message *domain.ContactMessage
}

// Dispatcher renders templates and hands them to a Sender
type Dispatcher struct {
	renderer *Renderer
	sender   Sender
	cfg      config.MailConfig
	logger   *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(renderer *Renderer, sender Sender, cfg config.MailConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		sender:   sender,
		cfg:      cfg,
		logger:   logger,
	}
}

// OrderPlaced sends the customer confirmation and the admin alert
func (d *Dispatcher) OrderPlaced(ctx context.Context, order *domain.Order) bool {
	data := orderData{Order: order, Currency: d.cfg.Currency}
	fields := []zap.Field{zap.String("order_number", order.OrderNumber)}

	customer := d.send(ctx, TemplateOrderConfirmation, data, []string{order.Email}, fields)
	admin := d.notifyAdmin(ctx, TemplateOrderAdmin, data, fields)
	return customer && admin
}

// ContactReceived alerts the admin about a new contact message
func (d *Dispatcher) ContactReceived(ctx context.Context, message *domain.ContactMessage) bool {
	fields := []zap.Field{zap.String("contact_message_id", message.ID.String())}
	return d.notifyAdmin(ctx, TemplateContactAdmin, contactData{Message: message}, fields)
}

func (d *Dispatcher) notifyAdmin(ctx context.Context, template string, data interface{}, fields []zap.Field) bool {
	if d.cfg.AdminEmail == "" {
		d.logger.Warn("ADMIN_EMAIL not set, skipping admin notification",
			append(fields, zap.String("template", template))...)
		return false
	}
	return d.send(ctx, template, data, []string{d.cfg.AdminEmail}, fields)
}

func (d *Dispatcher) send(ctx context.Context, template string, data interface{}, to []string, fields []zap.Field) bool {
	fields = append(fields, zap.String("template", template), zap.Strings("to", to))

	content, err := d.renderer.Render(template, data)
	if err != nil {
		d.logger.Error("Failed to render notification", append(fields, zap.Error(err))...)
		return false
	}

	msg := Message{
		To:      to,
		Subject: d.cfg.SubjectPrefix + content.Subject,
		Text:    content.Text,
		HTML:    content.HTML,
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("Failed to send notification", append(fields, zap.Error(err))...)
		return false
	}

	d.logger.Info("Notification sent", fields...)
	return true
}
