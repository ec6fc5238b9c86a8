package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tavola-rest-api/internal/model"

	"github.com/cespare/xxhash/v2"
)

// Entity classes with a cache policy. The set is fixed: this layer is not
// a general-purpose caching framework.
type Entity string

const (
	EntityBusiness  Entity = "business"
	EntityProduct   Entity = "product"
	EntityCoupon    Entity = "coupon"
	EntityDashboard Entity = "dashboard"
)

// Dashboard sub-aggregate selectors.
const (
	DashboardToday    = "stats:today"
	DashboardWeekly   = "revenue:weekly"
	DashboardHourly   = "sales:hourly"
	DashboardTop      = "products:top"
	DashboardActivity = "activity:recent"
	DashboardOverview = "overview"
)

// TTLSet carries the TTL classes of the read model. Zero means permanent
// (manual invalidation only).
type TTLSet struct {
	Product     time.Duration
	ProductList time.Duration
	Coupon      time.Duration
	CouponList  time.Duration
	Today       time.Duration
	Weekly      time.Duration
	Hourly      time.Duration
	Top         time.Duration
	Activity    time.Duration
}

// Overview returns the TTL of the combined dashboard view: the shortest
// positive TTL among its constituents, so the overview never outlives
// its most volatile part.
func (t TTLSet) Overview() time.Duration {
	return minTTL(t.Today, t.Weekly, t.Hourly, t.Top, t.Activity)
}

// Policy binds an entity class to its key naming, TTL class and the list
// patterns every write must invalidate. Patterns are an explicit registry
// resolved at invalidation time; no caller globs the keyspace directly.
type Policy struct {
	Entity       Entity
	TTL          time.Duration
	ListTTL      time.Duration
	Key          func(selector string) string
	ListPatterns []string
}

// Keys builds namespaced cache keys. All keys share one prefix so a
// deployment can point several environments at one Redis.
type Keys struct {
	prefix string
}

// NewKeys creates a key builder with the given namespace prefix.
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

func (k Keys) join(parts ...string) string {
	return k.prefix + ":" + strings.Join(parts, ":")
}

// Business returns the business-settings singleton key.
func (k Keys) Business() string { return k.join("business", "settings") }

// Product returns the by-id product key.
func (k Keys) Product(id string) string { return k.join("product", "id", id) }

// ProductList returns the list key for a filter signature.
func (k Keys) ProductList(f model.ProductFilter) string {
	return k.join("products", "list", signature(f.Category, f.Available, f.Search, f.SortBy, f.Page, f.Limit))
}

// ProductListPattern matches every cached product list.
func (k Keys) ProductListPattern() string { return k.join("products", "list", "*") }

// Coupon returns the by-code coupon key.
func (k Keys) Coupon(code string) string {
	return k.join("coupon", "code", strings.ToUpper(code))
}

// CouponList returns the list key for a filter signature.
func (k Keys) CouponList(f model.CouponFilter) string {
	return k.join("coupons", "list", signature(f.Active, f.Page, f.Limit))
}

// CouponListPattern matches every cached coupon list.
func (k Keys) CouponListPattern() string { return k.join("coupons", "list", "*") }

// Dashboard returns the key of one dashboard sub-aggregate.
func (k Keys) Dashboard(name string) string { return k.join("dashboard", name) }

// DashboardPattern matches every dashboard entry, combined view included.
func (k Keys) DashboardPattern() string { return k.join("dashboard", "*") }

// AggregateClaim returns the once-per-order claim key of the post-order
// aggregator.
func (k Keys) AggregateClaim(orderID string) string {
	return k.join("aggregate", "claim", orderID)
}

// signature hashes a canonical encoding of filter parts into a short,
// stable key fragment.
func signature(parts ...interface{}) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(fmt.Sprint(parts...))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Policies is the per-entity policy registry.
type Policies struct {
	keys     Keys
	byEntity map[Entity]Policy
}

// NewPolicies builds the registry for the fixed entity set.
func NewPolicies(keys Keys, ttl TTLSet) *Policies {
	p := &Policies{keys: keys, byEntity: make(map[Entity]Policy)}

	p.byEntity[EntityBusiness] = Policy{
		Entity: EntityBusiness,
		TTL:    0, // permanent: read on every request, changed rarely
		Key:    func(string) string { return keys.Business() },
	}
	p.byEntity[EntityProduct] = Policy{
		Entity:       EntityProduct,
		TTL:          ttl.Product,
		ListTTL:      ttl.ProductList,
		Key:          keys.Product,
		ListPatterns: []string{keys.ProductListPattern()},
	}
	p.byEntity[EntityCoupon] = Policy{
		Entity:       EntityCoupon,
		TTL:          ttl.Coupon,
		ListTTL:      ttl.CouponList,
		Key:          keys.Coupon,
		ListPatterns: []string{keys.CouponListPattern()},
	}
	p.byEntity[EntityDashboard] = Policy{
		Entity:       EntityDashboard,
		TTL:          ttl.Overview(),
		Key:          keys.Dashboard,
		ListPatterns: []string{keys.DashboardPattern()},
	}

	return p
}

// Keys exposes the registry's key builder.
func (p *Policies) Keys() Keys { return p.keys }

// For returns the policy of an entity class.
func (p *Policies) For(e Entity) Policy { return p.byEntity[e] }

// minTTL returns the shortest positive duration.
func minTTL(ds ...time.Duration) time.Duration {
	var min time.Duration
	for _, d := range ds {
		if d <= 0 {
			continue
		}
		if min == 0 || d < min {
			min = d
		}
	}
	return min
}
