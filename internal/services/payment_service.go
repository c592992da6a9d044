package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	methodCard  = "card"
	methodLocal = "manual"
)

// PaymentService bridges orders to the payment gateway and keeps a local
// Payment row mirroring each intent.
type PaymentService struct {
	payments repositories.PaymentRepository
	orders   *OrderService
	gateway  payment.Gateway
	pub      EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewPaymentService creates a new PaymentService. gateway must not be nil;
// pass payment.Unavailable{} when no provider is configured.
func NewPaymentService(payments repositories.PaymentRepository, orders *OrderService, gateway payment.Gateway, pub EventPublisher, log *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// CreatePaymentIntent opens a payment for a PENDING order. When the gateway
// fails the payment is still recorded, locally and without a transaction id.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, actor Actor, orderID string, amount *decimal.Decimal) (*models.Payment, error) {
	order, err := s.orders.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if order.Status != models.OrderPending {
		return nil, ErrOrderNotPending
	}

	total := order.TotalAmount
	if amount != nil {
		total = *amount
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	p := &models.Payment{
		OrderID:        order.ID,
		Amount:         total,
		Currency:       order.Currency,
		Status:         models.PaymentPending,
		PaymentMethod:  methodLocal,
		RefundedAmount: decimal.Zero,
	}

	intent, err := s.gateway.CreateIntent(ctx, total, order.Currency, map[string]string{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
	})
	if err != nil {
		s.log.Warn("payment gateway unavailable, recording local payment",
			zap.String("order_id", order.ID), zap.Error(err))
	} else {
		p.PaymentMethod = methodCard
		p.TransactionID = &intent.ID
		p.ClientSecret = intent.ClientSecret
		status := intent.Status
		p.GatewayResponse = &status
	}

	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("order_id", p.OrderID),
		zap.Bool("gateway", p.TransactionID != nil))
	return p, nil
}

// ConfirmPayment asks the gateway for the intent status and mirrors it.
func (s *PaymentService) ConfirmPayment(ctx context.Context, actor Actor, paymentID string) (*models.Payment, error) {
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.GetOrder(ctx, actor, p.OrderID); err != nil {
		return nil, err
	}
	if p.TransactionID == nil {
		return nil, ErrNoGatewayTransaction
	}

	status, err := s.gateway.RetrieveIntent(ctx, *p.TransactionID)
	if err != nil {
		return nil, err
	}
	p.GatewayResponse = &status

	switch status {
	case payment.IntentSucceeded:
		if err := s.complete(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	case payment.IntentCanceled:
		if p.Status == models.PaymentPending {
			p.Status = models.PaymentFailed
		}
	case payment.IntentProcessing, payment.IntentRequiresPaymentMethod:
		s.log.Debug("payment intent not settled yet", zap.String("payment_id", p.ID), zap.String("status", status))
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// HandleWebhook verifies and applies a gateway event. Events for unknown
// intents and unhandled event types are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ConstructWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	if event.Type != payment.EventIntentSucceeded && event.Type != payment.EventIntentFailed {
		s.log.Debug("ignoring webhook event", zap.String("event_id", event.ID), zap.String("type", event.Type))
		return nil
	}

	p, err := s.payments.GetByTransactionID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("webhook for unknown payment intent", zap.String("intent_id", event.IntentID))
			return nil
		}
		return err
	}

	status := event.Type
	p.GatewayResponse = &status
	if event.Type == payment.EventIntentSucceeded {
		return s.complete(ctx, p)
	}
	if p.Status == models.PaymentPending {
		p.Status = models.PaymentFailed
	}
	return s.payments.Update(ctx, p)
}

// complete marks the payment COMPLETED and moves its order to PROCESSING.
// Repeated calls are no-ops.
func (s *PaymentService) complete(ctx context.Context, p *models.Payment) error {
	if p.Status != models.PaymentPending && p.Status != models.PaymentFailed {
		return nil
	}
	p.Status = models.PaymentCompleted
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}
	if err := s.orders.markProcessing(ctx, p.OrderID); err != nil {
		return err
	}
	s.log.Info("payment completed", zap.String("payment_id", p.ID), zap.String("order_id", p.OrderID))
	publishEvent(ctx, s.pub, s.log, EventPaymentCompleted, PaymentCompletedEvent{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Currency:  p.Currency,
	})
	return nil
}

// RefundPayment refunds part or all of a completed payment. Admin only.
func (s *PaymentService) RefundPayment(ctx context.Context, actor Actor, paymentID string, amount decimal.Decimal) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PaymentCompleted && p.Status != models.PaymentPartiallyRefunded {
		return nil, ErrPaymentNotRefundable
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	refunded := p.RefundedAmount.Add(amount)
	if refunded.GreaterThan(p.Amount) {
		return nil, fmt.Errorf("%w: %s already refunded of %s",
			ErrRefundExceedsPayment, p.RefundedAmount.StringFixed(2), p.Amount.StringFixed(2))
	}

	if p.TransactionID != nil {
		refundID, err := s.gateway.CreateRefund(ctx, *p.TransactionID, amount)
		if err != nil {
			return nil, err
		}
		p.GatewayResponse = &refundID
	}

	now := s.now()
	p.RefundedAmount = refunded
	p.RefundedAt = &now
	if refunded.Equal(p.Amount) {
		p.Status = models.PaymentRefunded
	} else {
		p.Status = models.PaymentPartiallyRefunded
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("payment refunded",
		zap.String("payment_id", p.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("status", string(p.Status)))
	return p, nil
}

// ListPayments returns the payments of an order visible to actor.
func (s *PaymentService) ListPayments(ctx context.Context, actor Actor, orderID string) ([]models.Payment, error) {
	if _, err := s.orders.GetOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return s.payments.ListByOrder(ctx, orderID)
}

func (s *PaymentService) load(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}
