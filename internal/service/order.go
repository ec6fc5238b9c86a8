package service

import (
	"context"
	"errors"
	"time"

	"tavola-rest-api/internal/events"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"
	"tavola-rest-api/internal/worker"

	"tavola-rest-api/pkg/uid"

	"go.uber.org/zap"
)

// ItemRequest is one requested order line.
type ItemRequest struct {
	ProductID string
	Quantity  int64
}

// OrderService handles the order lifecycle. The delivered transition
// hands the order to the aggregator through the worker pool; the HTTP
// response never waits on, or fails because of, aggregation.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	business   *BusinessService
	coupons    *CouponService
	aggregator *Aggregator
	pool       *worker.Pool
	publisher  events.Publisher
	logger     *zap.Logger
}

// NewOrderService creates the order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	business *BusinessService,
	coupons *CouponService,
	aggregator *Aggregator,
	pool *worker.Pool,
	publisher events.Publisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		business:   business,
		coupons:    coupons,
		aggregator: aggregator,
		pool:       pool,
		publisher:  publisher,
		logger:     logger,
	}
}

// Create places an order: prices the requested items from the current
// menu, applies an optional coupon, and persists the order as pending.
func (s *OrderService) Create(ctx context.Context, customerID string, items []ItemRequest, couponCode, note string) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	biz, err := s.business.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !biz.Open {
		return nil, ErrBusinessClosed
	}

	lines := make([]model.OrderItem, 0, len(items))
	var subtotal float64
	for _, req := range items {
		if req.Quantity < 1 {
			continue
		}
		p, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProductUnavailable
			}
			return nil, err
		}
		if !p.Available {
			return nil, ErrProductUnavailable
		}
		lines = append(lines, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Quantity:  req.Quantity,
		})
		subtotal += p.Price * float64(req.Quantity)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if subtotal < biz.MinOrder {
		return nil, ErrBelowMinimum
	}

	var discount float64
	if couponCode != "" {
		_, d, err := s.coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discount = d
	}

	order := &model.Order{
		ID:          uid.New(),
		CustomerID:  customerID,
		Items:       lines,
		Subtotal:    subtotal,
		CouponCode:  couponCode,
		Discount:    discount,
		DeliveryFee: biz.DeliveryFee,
		Total:       subtotal - discount + biz.DeliveryFee,
		Status:      model.OrderStatusPending,
		Note:        note,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if couponCode != "" {
		if err := s.coupons.Redeem(ctx, couponCode); err != nil {
			// The order stands; the usage counter catches up on the next
			// redemption or a manual fix.
			s.logger.Warn("coupon redeem failed",
				zap.String("order_id", order.ID), zap.String("code", couponCode), zap.Error(err))
		}
	}

	s.publisher.Publish(ctx, events.ChannelOrders, events.Event{
		Type:    "order.created",
		Payload: map[string]interface{}{"order_id": order.ID, "total": order.Total},
	})
	return order, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns a filtered page of orders.
func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	return s.orders.List(ctx, f)
}

// Pay marks an order as paid.
func (s *OrderService) Pay(ctx context.Context, id string) error {
	return s.orders.SetPaid(ctx, id)
}

// UpdateStatus transitions an order. On the terminal delivered
// transition the full order is handed to the post-order aggregator,
// fire-and-forget.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.ValidTransition(order.Status, status) {
		return nil, ErrInvalidTransition
	}

	var deliveredAt *time.Time
	if status == model.OrderStatusDelivered {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		return nil, err
	}
	order.Status = status
	order.DeliveredAt = deliveredAt

	s.publisher.Publish(ctx, events.ChannelOrders, events.Event{
		Type:    "order.status",
		Payload: map[string]interface{}{"order_id": order.ID, "status": status},
	})

	if status == model.OrderStatusDelivered {
		s.enqueueAggregation(order)
	}
	return order, nil
}

// enqueueAggregation submits the delivered order to the worker pool. A
// full queue or a closing pool drops the work with a log line; the
// dashboard and customer aggregates catch up when the event is replayed
// manually, never at the cost of the customer-facing response.
func (s *OrderService) enqueueAggregation(order *model.Order) {
	o := *order // detach from the request's lifetime
	err := s.pool.Submit(func(ctx context.Context) {
		s.aggregator.Run(ctx, &o)
	})
	if err != nil {
		s.logger.Error("aggregation enqueue failed",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}
