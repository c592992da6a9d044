package services_test

import (
	"context"
	"errors"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/payment"
	"marketplace/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admin = services.Actor{UserID: "admin-1", Role: models.RoleAdmin}

func placeOrder(t *testing.T, f *fixture) (checkoutScene, *models.Order) {
	t.Helper()
	s := fillCart(t, f)
	res, err := f.orders.CreateOrder(context.Background(), s.buyer.ID, s.input())
	require.NoError(t, err)
	return s, res.Order
}

func TestPaymentService_CreateIntentWithGateway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(money("59.40"))
	}), "usd", mock.Anything).
		Return(&payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: payment.IntentRequiresPaymentMethod}, nil).Once()

	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "pi_123", *p.TransactionID)
	assert.Equal(t, "pi_123_secret", p.ClientSecret)
	assertMoney(t, "59.40", p.Amount)
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_CreateIntentGatewayDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, payment.ErrGatewayUnavailable).Once()

	amount := money("10")
	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, &amount)
	require.NoError(t, err, "gateway failure degrades to a local payment")
	assert.Nil(t, p.TransactionID)
	assert.Equal(t, models.PaymentPending, p.Status)
	assertMoney(t, "10", p.Amount)

	payments, err := f.payments.ListPayments(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestPaymentService_CreateIntentRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	stranger := f.user(t, models.RoleCustomer)
	_, err := f.payments.CreatePaymentIntent(ctx, actorOf(stranger), order.ID, nil)
	assert.ErrorIs(t, err, services.ErrForbidden)

	zero := money("0")
	_, err = f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, &zero)
	assert.ErrorIs(t, err, services.ErrInvalidAmount)

	_, err = f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), "missing", nil)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = f.orders.CancelOrder(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	_, err = f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	assert.ErrorIs(t, err, services.ErrOrderNotPending)
}

func TestPaymentService_ConfirmMovesOrderToProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&payment.Intent{ID: "pi_ok", ClientSecret: "secret"}, nil).Once()
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_ok").Return(payment.IntentSucceeded, nil).Once()

	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)

	p, err = f.payments.ConfirmPayment(ctx, actorOf(s.buyer), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)

	stored, err := f.orders.GetOrder(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, stored.Status)

	f.pub.AssertCalled(t, "Publish", mock.Anything, services.EventPaymentCompleted, mock.Anything)
}

func TestPaymentService_ConfirmUnsettledIntents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&payment.Intent{ID: "pi_wait"}, nil).Once()
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_wait").Return(payment.IntentProcessing, nil).Once()
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_wait").Return(payment.IntentCanceled, nil).Once()

	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)

	p, err = f.payments.ConfirmPayment(ctx, actorOf(s.buyer), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)

	p, err = f.payments.ConfirmPayment(ctx, actorOf(s.buyer), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, p.Status)

	stored, err := f.orders.GetOrder(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
}

func TestPaymentService_ConfirmLocalPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, payment.ErrGatewayUnavailable).Once()
	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(ctx, actorOf(s.buyer), p.ID)
	assert.ErrorIs(t, err, services.ErrNoGatewayTransaction)
}

func TestPaymentService_Webhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&payment.Intent{ID: "pi_hook"}, nil).Once()
	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)

	f.gateway.On("ConstructWebhookEvent", []byte("bad"), "sig").Return(nil, errors.New("signature mismatch")).Once()
	assert.ErrorIs(t, f.payments.HandleWebhook(ctx, []byte("bad"), "sig"), services.ErrInvalidWebhook)

	f.gateway.On("ConstructWebhookEvent", []byte("other"), "sig").
		Return(&payment.WebhookEvent{ID: "evt_0", Type: "customer.created"}, nil).Once()
	assert.NoError(t, f.payments.HandleWebhook(ctx, []byte("other"), "sig"))

	f.gateway.On("ConstructWebhookEvent", []byte("ok"), "sig").
		Return(&payment.WebhookEvent{ID: "evt_1", Type: payment.EventIntentSucceeded, IntentID: "pi_hook"}, nil).Once()
	require.NoError(t, f.payments.HandleWebhook(ctx, []byte("ok"), "sig"))

	payments, err := f.payments.ListPayments(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, p.ID, payments[0].ID)
	assert.Equal(t, models.PaymentCompleted, payments[0].Status)

	stored, err := f.orders.GetOrder(ctx, actorOf(s.buyer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, stored.Status)
}

func TestPaymentService_PartialRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, order := placeOrder(t, f)

	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&payment.Intent{ID: "pi_ref"}, nil).Once()
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_ref").Return(payment.IntentSucceeded, nil).Once()
	f.gateway.On("CreateRefund", mock.Anything, "pi_ref", mock.Anything).Return("re_1", nil).Twice()

	p, err := f.payments.CreatePaymentIntent(ctx, actorOf(s.buyer), order.ID, nil)
	require.NoError(t, err)

	_, err = f.payments.RefundPayment(ctx, admin, p.ID, money("10"))
	assert.ErrorIs(t, err, services.ErrPaymentNotRefundable, "pending payments are not refundable")

	_, err = f.payments.ConfirmPayment(ctx, actorOf(s.buyer), p.ID)
	require.NoError(t, err)

	_, err = f.payments.RefundPayment(ctx, actorOf(s.buyer), p.ID, money("10"))
	assert.ErrorIs(t, err, services.ErrForbidden)

	p, err = f.payments.RefundPayment(ctx, admin, p.ID, money("9.40"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartiallyRefunded, p.Status)
	assertMoney(t, "9.40", p.RefundedAmount)
	assert.NotNil(t, p.RefundedAt)

	_, err = f.payments.RefundPayment(ctx, admin, p.ID, money("50.01"))
	assert.ErrorIs(t, err, services.ErrRefundExceedsPayment)

	_, err = f.payments.RefundPayment(ctx, admin, p.ID, money("-1"))
	assert.ErrorIs(t, err, services.ErrInvalidAmount)

	p, err = f.payments.RefundPayment(ctx, admin, p.ID, money("50"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, p.Status)
	assertMoney(t, "59.40", p.RefundedAmount)
	f.gateway.AssertExpectations(t)
}
