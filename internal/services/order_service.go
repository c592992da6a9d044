package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutInput is what the buyer submits to turn their cart into an order.
type CheckoutInput struct {
	BillingAddressID  string
	ShippingAddressID string
	CouponCode        *string
	ShippingAmount    *decimal.Decimal
	TaxAmount         *decimal.Decimal
	Notes             *string
}

// CheckoutResult is the created order plus the fate of the submitted coupon.
type CheckoutResult struct {
	Order         *models.Order `json:"order"`
	CouponApplied bool          `json:"coupon_applied"`
	CouponMessage string        `json:"coupon_message,omitempty"`
}

// OrderDeps groups the collaborators of OrderService.
type OrderDeps struct {
	Orders    repositories.OrderRepository
	Users     repositories.UserRepository
	Sequence  repositories.Sequence
	Carts     *CartService
	Addresses *AddressService
	Coupons   *CouponService
	Publisher EventPublisher
	Logger    *zap.Logger
	Currency  string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders    repositories.OrderRepository
	users     repositories.UserRepository
	sequence  repositories.Sequence
	carts     *CartService
	addresses *AddressService
	coupons   *CouponService
	publisher EventPublisher
	log       *zap.Logger
	currency  string
	now       func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(d OrderDeps) *OrderService {
	currency := strings.ToLower(d.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &OrderService{
		orders:    d.Orders,
		users:     d.Users,
		sequence:  d.Sequence,
		carts:     d.Carts,
		addresses: d.Addresses,
		coupons:   d.Coupons,
		publisher: d.Publisher,
		log:       d.Logger,
		currency:  currency,
		now:       time.Now,
	}
}

// CreateOrder turns the user's cart into a PENDING order. An unusable coupon
// does not fail checkout; the result reports it instead.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	// 1. Cart
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 2. Every product still sellable
	for _, line := range cart.Lines {
		if line.Product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
		}
		if !line.Product.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.Product.Name)
		}
	}

	// 3. Addresses
	if _, err := s.addresses.ValidateOwnership(ctx, userID, in.BillingAddressID); err != nil {
		return nil, err
	}
	if _, err := s.addresses.ValidateOwnership(ctx, userID, in.ShippingAddressID); err != nil {
		return nil, err
	}

	shipping := decimal.Zero
	if in.ShippingAmount != nil {
		if in.ShippingAmount.IsNegative() {
			return nil, fmt.Errorf("%w: shipping amount must not be negative", ErrValidation)
		}
		shipping = *in.ShippingAmount
	}
	if in.TaxAmount != nil && in.TaxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount must not be negative", ErrValidation)
	}

	// 4-5. Coupon
	result := &CheckoutResult{}
	discount := decimal.Zero
	var coupon *models.Coupon
	if in.CouponCode != nil && strings.TrimSpace(*in.CouponCode) != "" {
		var ev CouponEvaluation
		coupon, ev, err = s.coupons.Lookup(ctx, *in.CouponCode, cart.Subtotal)
		if err != nil {
			return nil, err
		}
		result.CouponApplied = ev.Applied
		result.CouponMessage = ev.Reason
		if ev.Applied {
			discount = ev.Discount
		} else {
			s.log.Info("coupon ignored at checkout",
				zap.String("user_id", userID), zap.String("code", ev.Code), zap.String("reason", ev.Reason))
		}
	}

	// 6. Totals
	totals := CalculateTotals(cart.Subtotal, shipping, in.TaxAmount, discount)

	// 7. Order number
	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	// 8. Persist with a price snapshot per line
	order := &models.Order{
		OrderNumber:       number,
		UserID:            userID,
		BillingAddressID:  in.BillingAddressID,
		ShippingAddressID: in.ShippingAddressID,
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.Tax,
		ShippingAmount:    totals.Shipping,
		DiscountAmount:    totals.Discount,
		TotalAmount:       totals.Total,
		Status:            models.OrderPending,
		Currency:          s.currency,
		Notes:             in.Notes,
		Items:             make([]models.OrderItem, 0, len(cart.Lines)),
	}
	if result.CouponApplied {
		code := coupon.Code
		order.CouponCode = &code
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Total:     line.LineTotal,
		})
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// 9. Coupon usage; the limit was checked above but not under a lock.
	if result.CouponApplied {
		if err := s.coupons.Redeem(ctx, coupon); err != nil {
			s.log.Error("failed to record coupon usage", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	// 10. Cart
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.log.Error("failed to clear cart after checkout", zap.String("user_id", userID), zap.Error(err))
	}

	// 11. Reload with addresses
	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	result.Order = created

	s.log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.TotalAmount.StringFixed(2)))
	s.publishCreated(ctx, created)

	return result, nil
}

// nextOrderNumber formats ORD-<base36 millis>-<sequence>.
func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	n, err := s.sequence.Next(ctx, repositories.OrderNumberSequence)
	if err != nil {
		return "", err
	}
	stamp := strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36))
	return fmt.Sprintf("ORD-%s-%04d", stamp, n), nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	ev := OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.TotalAmount,
		Currency:    order.Currency,
		CreatedAt:   order.CreatedAt,
		Items:       make([]OrderItemEvent, 0, len(order.Items)),
	}
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, order.UserID); err == nil {
			ev.Email = user.Email
		}
	}
	for _, item := range order.Items {
		ev.Items = append(ev.Items, OrderItemEvent{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Total,
		})
	}
	publishEvent(ctx, s.publisher, s.log, EventOrderCreated, ev)
}

// ListOrders returns the buyer's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListSellerOrders returns orders containing at least one of the seller's products.
func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID string) ([]models.Order, error) {
	return s.orders.ListBySeller(ctx, sellerID)
}

// GetOrder is visible to the buyer, to sellers with a line in the order and to admins.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order to status. Fulfilment only moves forward
// (PENDING, PROCESSING, SHIPPED, DELIVERED); CANCELLED is reachable from any
// status before DELIVERED and is final.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, order); err != nil {
		return nil, err
	}

	if err := checkTransition(order.Status, status); err != nil {
		return nil, err
	}

	now := s.now()
	change := repositories.StatusChange{Status: status}
	switch status {
	case models.OrderShipped:
		change.ShippedAt = &now
	case models.OrderDelivered:
		change.DeliveredAt = &now
	case models.OrderCancelled:
		change.CancelledAt = &now
	}
	if err := s.orders.UpdateStatus(ctx, orderID, change); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = status
	if change.ShippedAt != nil {
		order.ShippedAt = change.ShippedAt
	}
	if change.DeliveredAt != nil {
		order.DeliveredAt = change.DeliveredAt
	}
	if change.CancelledAt != nil {
		order.CancelledAt = change.CancelledAt
	}

	s.log.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.String("by", actor.UserID))
	publishEvent(ctx, s.publisher, s.log, EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: string(previous),
		NewStatus: string(status),
		ChangedBy: actor.UserID,
		ChangedAt: now,
	})
	return order, nil
}

// CancelOrder is UpdateStatus to CANCELLED.
func (s *OrderService) CancelOrder(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, orderID, models.OrderCancelled)
}

func checkTransition(from, to models.OrderStatus) error {
	switch {
	case from == models.OrderCancelled && to == models.OrderCancelled:
		return ErrAlreadyCancelled
	case from == models.OrderDelivered && to == models.OrderCancelled:
		return ErrCannotCancelDelivered
	case from == models.OrderCancelled, from == models.OrderDelivered:
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, from)
	case to == models.OrderCancelled:
		return nil
	case to.Rank() <= from.Rank():
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// markProcessing advances a PENDING order once it is paid. Orders in any
// other status are left as they are.
func (s *OrderService) markProcessing(ctx context.Context, orderID string) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderPending {
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, repositories.StatusChange{Status: models.OrderProcessing}); err != nil {
		return err
	}
	publishEvent(ctx, s.publisher, s.log, EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:   orderID,
		OldStatus: string(models.OrderPending),
		NewStatus: string(models.OrderProcessing),
		ChangedBy: "payment",
		ChangedAt: s.now(),
	})
	return nil
}

func (s *OrderService) load(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) authorize(ctx context.Context, actor Actor, order *models.Order) error {
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return nil
	}
	ok, err := s.orders.HasSellerItem(ctx, order.ID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
