package model

import "time"

// Coupon discount types.
const (
	CouponTypePercent = "percent"
	CouponTypeFixed   = "fixed"
)

// Coupon is a discount code.
type Coupon struct {
	ID          string     `bson:"_id" json:"id"`
	Code        string     `bson:"code" json:"code"`
	Type        string     `bson:"type" json:"type"`
	Value       float64    `bson:"value" json:"value"`
	MinOrder    float64    `bson:"min_order" json:"min_order"`
	MaxDiscount float64    `bson:"max_discount,omitempty" json:"max_discount,omitempty"`
	UsageLimit  int64      `bson:"usage_limit,omitempty" json:"usage_limit,omitempty"`
	UsedCount   int64      `bson:"used_count" json:"used_count"`
	Active      bool       `bson:"active" json:"active"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// Usable reports whether the coupon can be applied to an order of the
// given subtotal at the given time.
func (c *Coupon) Usable(subtotal float64, now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return subtotal >= c.MinOrder
}

// Discount returns the discount amount for the given subtotal.
func (c *Coupon) Discount(subtotal float64) float64 {
	var d float64
	switch c.Type {
	case CouponTypePercent:
		d = subtotal * c.Value / 100
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	case CouponTypeFixed:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}

// CouponFilter narrows a coupon list query.
type CouponFilter struct {
	Active *bool
	Page   int
	Limit  int
}
