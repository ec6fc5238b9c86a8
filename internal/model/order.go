package model

import "time"

// Order statuses. Delivered and cancelled are terminal.
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// nextStatuses is the allowed transition table.
var nextStatuses = map[string][]string{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
}

// ValidTransition reports whether an order may move from one status to
// another.
func ValidTransition(from, to string) bool {
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Name, category and price are copied
// from the product at order time so the order survives later menu edits.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Category  string  `bson:"category" json:"category"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int64   `bson:"quantity" json:"quantity"`
}

// Order is a customer order.
type Order struct {
	ID          string      `bson:"_id" json:"id"`
	CustomerID  string      `bson:"customer_id" json:"customer_id"`
	Items       []OrderItem `bson:"items" json:"items"`
	Subtotal    float64     `bson:"subtotal" json:"subtotal"`
	CouponCode  string      `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	Discount    float64     `bson:"discount" json:"discount"`
	DeliveryFee float64     `bson:"delivery_fee" json:"delivery_fee"`
	Total       float64     `bson:"total" json:"total"`
	Status      string      `bson:"status" json:"status"`
	Paid        bool        `bson:"paid" json:"paid"`
	Note        string      `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
	DeliveredAt *time.Time  `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}

// ItemCount returns the total quantity across all lines.
func (o *Order) ItemCount() int64 {
	var n int64
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderFilter narrows an order list query.
type OrderFilter struct {
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}
