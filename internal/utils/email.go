package utils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"dkstore_back_end/internal/config"
	"dkstore_back_end/internal/models"
)

// Mailer sends transactional emails over SMTP. A Mailer built from an
// empty SMTP config drops every message.
type Mailer struct {
	cfg  config.SMTP
	send func(ctx context.Context, msg *mail.Msg) error
	log  *slog.Logger
}

func NewMailer(cfg config.SMTP) *Mailer {
	m := &Mailer{cfg: cfg, log: slog.Default().With("component", "mailer")}
	m.send = m.dialAndSend
	return m
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Send delivers one HTML email.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.cfg.Enabled() {
		m.log.DebugContext(ctx, "smtp disabled, email dropped", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.send(ctx, msg); err != nil {
		return err
	}
	m.log.InfoContext(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

// OrderPlaced sends the order confirmation.
func (m *Mailer) OrderPlaced(ctx context.Context, to models.User, order models.Order) error {
	body, err := renderOrderConfirmation(to, order)
	if err != nil {
		return err
	}
	return m.Send(ctx, to.Email, fmt.Sprintf("Pedido %s confirmado - DK Store", order.OrderNumber), body)
}

// OrderStatusChanged tells the customer their order moved to a new status.
func (m *Mailer) OrderStatusChanged(ctx context.Context, to models.User, order models.Order) error {
	body, err := renderStatusUpdate(to, order)
	if err != nil {
		return err
	}
	return m.Send(ctx, to.Email, fmt.Sprintf("Pedido %s: %s", order.OrderNumber, statusLabel(order.Status)), body)
}
