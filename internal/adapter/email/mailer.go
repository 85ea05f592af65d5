package email

import (
	"context"
	"fmt"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Mailer renders and sends every transactional email.
type Mailer struct {
	provider     Provider
	siteURL      string
	supportEmail string
}

// NewMailer builds a Mailer. Contact messages go to supportEmail.
func NewMailer(provider Provider, siteURL, supportEmail string) *Mailer {
	return &Mailer{provider: provider, siteURL: siteURL, supportEmail: supportEmail}
}

func (m *Mailer) send(ctx context.Context, to, replyTo, subject, tmpl, title string, data any) error {
	if to == "" {
		return fmt.Errorf("send %s: empty recipient", tmpl)
	}
	html, err := render(tmpl, title, m.siteURL, data)
	if err != nil {
		return err
	}
	return m.provider.Send(ctx, Message{To: []string{to}, ReplyTo: replyTo, Subject: subject, HTML: html})
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, msg model.OrderConfirmation) error {
	subject := "Pedido confirmado #" + model.ShortOrderID(msg.OrderID)
	return m.send(ctx, msg.To, "", subject, "order_confirmation", "Confirmación de Pedido", msg)
}

func (m *Mailer) SendShippingNotification(ctx context.Context, msg model.ShippingNotice) error {
	subject := fmt.Sprintf("Tu pedido #%s está en camino", model.ShortOrderID(msg.OrderID))
	return m.send(ctx, msg.To, "", subject, "shipping", "Pedido Enviado", msg)
}

func (m *Mailer) SendDeliveryConfirmation(ctx context.Context, msg model.OrderNotice) error {
	subject := fmt.Sprintf("Pedido #%s entregado", model.ShortOrderID(msg.OrderID))
	return m.send(ctx, msg.To, "", subject, "delivered", "Pedido Entregado", msg)
}

func (m *Mailer) SendCancellationApproved(ctx context.Context, msg model.OrderNotice) error {
	subject := fmt.Sprintf("Pedido #%s cancelado", model.ShortOrderID(msg.OrderID))
	return m.send(ctx, msg.To, "", subject, "cancellation_approved", "Pedido Cancelado", msg)
}

func (m *Mailer) SendCancellationRejected(ctx context.Context, msg model.OrderNotice) error {
	subject := fmt.Sprintf("Solicitud de cancelación - Pedido #%s", model.ShortOrderID(msg.OrderID))
	return m.send(ctx, msg.To, "", subject, "cancellation_rejected", "Cancelación no aprobada", msg)
}

func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.send(ctx, to, "", "Bienvenido a Benice", "welcome", "Bienvenido", struct{ Name string }{name})
}

func (m *Mailer) SendNewsletterWelcome(ctx context.Context, to, promoCode string) error {
	return m.send(ctx, to, "", "Tu código de descuento exclusivo", "newsletter", "Newsletter", struct{ PromoCode string }{promoCode})
}

func (m *Mailer) SendContact(ctx context.Context, msg model.ContactMessage) error {
	return m.send(ctx, m.supportEmail, msg.Email, "[Contacto] "+msg.Subject, "contact", "Nuevo Contacto", msg)
}
