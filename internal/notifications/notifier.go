// Package notifications turns consumed order events into customer mail.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/services"
	"marketplace/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender delivers a plain-text message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTP
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// OrderNotifier mails an order confirmation for every order.created event.
type OrderNotifier struct {
	sender  Sender
	log     *zap.Logger
	timeout time.Duration
}

func NewOrderNotifier(sender Sender, log *zap.Logger) *OrderNotifier {
	return &OrderNotifier{sender: sender, log: log, timeout: 30 * time.Second}
}

// HandleDelivery adapts Handle to the RabbitMQ consumer callback.
func (n *OrderNotifier) HandleDelivery(msg amqp.Delivery) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	return n.Handle(ctx, msg.Body)
}

// Handle decodes one event envelope. Events other than order.created are
// acknowledged without action.
func (n *OrderNotifier) Handle(ctx context.Context, body []byte) error {
	var env rabbitmq.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode event envelope: %w", err)
	}
	if env.Type != services.EventOrderCreated {
		n.log.Debug("skipping event", zap.String("type", env.Type))
		return nil
	}

	var ev services.OrderCreatedEvent
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	if ev.Email == "" {
		n.log.Warn("order has no recipient email, skipping confirmation", zap.String("order_id", ev.OrderID))
		return nil
	}

	subject := fmt.Sprintf("Order %s confirmed", ev.OrderNumber)
	if err := n.sender.Send(ctx, ev.Email, subject, ConfirmationText(ev)); err != nil {
		return err
	}
	n.log.Info("order confirmation sent", zap.String("order_id", ev.OrderID), zap.String("to", ev.Email))
	return nil
}

// ConfirmationText renders the plain-text body of an order confirmation.
func ConfirmationText(ev services.OrderCreatedEvent) string {
	var b strings.Builder
	currency := strings.ToUpper(ev.Currency)
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", ev.OrderNumber)
	for _, item := range ev.Items {
		fmt.Fprintf(&b, "  %d x %s  @ %s %s  = %s %s\n",
			item.Quantity, item.ProductID,
			item.Price.StringFixed(2), currency,
			item.Total.StringFixed(2), currency)
	}
	fmt.Fprintf(&b, "\nTotal: %s %s\n", ev.Total.StringFixed(2), currency)
	return b.String()
}
