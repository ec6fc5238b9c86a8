package service

// ServiceError is a domain-rule violation surfaced to the handler layer.
type ServiceError string

func (e ServiceError) Error() string { return string(e) }

const (
	// ErrBusinessClosed indicates the restaurant is not accepting orders.
	ErrBusinessClosed ServiceError = "business is closed"

	// ErrBelowMinimum indicates the order subtotal is under the minimum.
	ErrBelowMinimum ServiceError = "order below minimum amount"

	// ErrEmptyOrder indicates an order with no purchasable items.
	ErrEmptyOrder ServiceError = "order has no items"

	// ErrProductUnavailable indicates a line item references an
	// unavailable or unknown product.
	ErrProductUnavailable ServiceError = "product unavailable"

	// ErrInvalidCoupon indicates the coupon cannot be applied.
	ErrInvalidCoupon ServiceError = "coupon not applicable"

	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition ServiceError = "invalid status transition"
)
