package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/config"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"

	"go.uber.org/zap"
)

// ratingTiers maps sales-count thresholds to ratings. Evaluated from the
// highest threshold down; the baseline is 4.0.
var ratingTiers = []struct {
	sales  int64
	rating float64
}{
	{200, 5.0},
	{100, 4.7},
	{50, 4.5},
	{10, 4.2},
}

// ratingFor returns the step-function rating for a sales count.
func ratingFor(salesCount int64) float64 {
	for _, t := range ratingTiers {
		if salesCount >= t.sales {
			return t.rating
		}
	}
	return 4.0
}

// Aggregator updates the order-derived aggregates after an order reaches
// the terminal delivered state. It runs detached from the request that
// advanced the order: nothing here may fail that request, so every step
// catches, logs and swallows its own errors.
type Aggregator struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	store     *cache.Store
	policies  *cache.Policies
	cfg       config.AnalyticsConfig
	logger    *zap.Logger
}

// NewAggregator creates the post-order aggregator.
func NewAggregator(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	store *cache.Store,
	policies *cache.Policies,
	cfg config.AnalyticsConfig,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		products:  products,
		customers: customers,
		store:     store,
		policies:  policies,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes one delivered order. It never returns an error: the two
// update steps are separately committed and independently best-effort,
// and the caller has already responded to the customer.
func (a *Aggregator) Run(ctx context.Context, order *model.Order) {
	if !a.claim(ctx, order.ID) {
		return
	}

	touched, statsOK := a.updateProductStats(ctx, order)
	behaviorOK := a.updateCustomerBehavior(ctx, order)

	if !statsOK || !behaviorOK {
		// Release the claim so a manual re-delivery of the event can
		// retry; there is no automatic retry.
		if err := a.store.Cache.Delete(ctx, a.policies.Keys().AggregateClaim(order.ID)); err != nil {
			a.logger.Warn("aggregation claim release failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	a.invalidate(ctx, touched)
}

// claim marks the order as aggregated. The claim lives in the advisory
// cache, so deduplication of a twice-fired delivered event is
// best-effort: with the cache down the aggregator runs anyway and may
// double-count, a known limitation rather than a silent fix. Claims
// expire after ClaimTTL so processed orders do not occupy the keyspace
// forever.
func (a *Aggregator) claim(ctx context.Context, orderID string) bool {
	n, err := a.store.Cache.Increment(ctx, a.policies.Keys().AggregateClaim(orderID), a.cfg.ClaimTTL)
	if err != nil {
		a.logger.Warn("aggregation claim unavailable; proceeding",
			zap.String("order_id", orderID), zap.Error(err))
		return true
	}
	if n > 1 {
		a.logger.Warn("duplicate delivered event; skipping aggregation",
			zap.String("order_id", orderID), zap.Int64("claims", n))
		return false
	}
	return true
}

// updateProductStats applies the order's per-product quantity and revenue
// deltas in one batched update, then recomputes ratings for exactly the
// touched products in a second batch. It returns the ids of products that
// exist, for cache invalidation.
func (a *Aggregator) updateProductStats(ctx context.Context, order *model.Order) ([]string, bool) {
	deltas := make(map[string]model.StatsDelta, len(order.Items))
	for _, it := range order.Items {
		d := deltas[it.ProductID]
		d.Quantity += it.Quantity
		d.Revenue += it.Price * float64(it.Quantity)
		deltas[it.ProductID] = d
	}
	if len(deltas) == 0 {
		return nil, true
	}

	if err := a.products.IncrementStats(ctx, deltas); err != nil {
		a.logger.Error("product stats update failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return nil, false
	}

	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	counts, err := a.products.SalesCounts(ctx, ids)
	if err != nil {
		a.logger.Error("sales count read failed",
			zap.String("order_id", order.ID), zap.Error(err))
		// The additive update committed; report those ids as touched so
		// their cache entries still get invalidated.
		return ids, false
	}

	ratings := make(map[string]float64, len(counts))
	touched := make([]string, 0, len(counts))
	for _, id := range ids {
		count, ok := counts[id]
		if !ok {
			// Product deleted after the order was placed: skip the line
			// item, the rest of the batch is unaffected.
			a.logger.Warn("product missing during aggregation; skipped",
				zap.String("order_id", order.ID), zap.String("product_id", id))
			continue
		}
		ratings[id] = ratingFor(count)
		touched = append(touched, id)
	}

	if err := a.products.SetRatings(ctx, ratings); err != nil {
		a.logger.Error("product rating update failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return touched, false
	}
	return touched, true
}

// updateCustomerBehavior merges one delivered order into the customer's
// running aggregates and persists them as a single update.
func (a *Aggregator) updateCustomerBehavior(ctx context.Context, order *model.Order) bool {
	c, err := a.customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a.logger.Warn("customer missing during aggregation; skipped",
				zap.String("order_id", order.ID), zap.String("customer_id", order.CustomerID))
		} else {
			a.logger.Error("customer load failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
		return false
	}

	b := MergeOrder(c.Behavior, order, c.CreatedAt, a.cfg)

	if err := a.customers.UpdateBehavior(ctx, c.ID, b); err != nil {
		a.logger.Error("customer behavior update failed",
			zap.String("order_id", order.ID), zap.String("customer_id", c.ID), zap.Error(err))
		return false
	}
	return true
}

// invalidate drops the dashboard entries (order and revenue counts
// changed) and the touched products' by-id entries. Customer behavior is
// not independently cached and needs nothing here.
func (a *Aggregator) invalidate(ctx context.Context, productIDs []string) {
	a.store.Invalidate(ctx, a.policies.For(cache.EntityDashboard))

	keys := a.policies.Keys()
	for _, id := range productIDs {
		if err := a.store.Cache.Delete(ctx, keys.Product(id)); err != nil {
			a.logger.Warn("product cache invalidate failed",
				zap.String("product_id", id), zap.Error(err))
		}
	}
}

// MergeOrder folds one order into a customer's ordering behavior. Pure:
// callers persist the result. accountCreated anchors the order-frequency
// classification.
func MergeOrder(b model.OrderingBehavior, order *model.Order, accountCreated time.Time, cfg config.AnalyticsConfig) model.OrderingBehavior {
	orderedAt := order.CreatedAt
	if orderedAt.IsZero() {
		orderedAt = time.Now().UTC()
	}

	prevOrders := b.TotalOrders
	b.TotalOrders++
	b.TotalSpent += order.Total
	b.AverageOrderValue = b.TotalSpent / float64(b.TotalOrders)

	// Incremental mean over item counts: no order history is re-scanned.
	items := float64(order.ItemCount())
	b.AvgItemsPerOrder = (b.AvgItemsPerOrder*float64(prevOrders) + items) / float64(b.TotalOrders)

	b.MostOrderedItems = mergeMostOrdered(b.MostOrderedItems, order.Items, orderedAt, cfg.MostOrderedCap)
	b.FavoriteCategories = mergeCategories(b.FavoriteCategories, order.Items, cfg.FavoriteCatCap)

	b.OrderFrequency = classifyFrequency(b.TotalOrders, accountCreated, orderedAt, cfg)
	b.PreferredOrderTime = orderTimeBucket(orderedAt.Hour())
	b.LastOrderDate = &orderedAt

	return b
}

// mergeMostOrdered merges line items into the most-ordered list, keeping
// it sorted descending by count and capped.
func mergeMostOrdered(existing []model.OrderedItem, items []model.OrderItem, at time.Time, limit int) []model.OrderedItem {
	merged := make([]model.OrderedItem, len(existing))
	copy(merged, existing)

	for _, it := range items {
		found := false
		for i := range merged {
			if merged[i].ProductID == it.ProductID {
				merged[i].Count += it.Quantity
				merged[i].TotalSpent += it.Price * float64(it.Quantity)
				merged[i].LastOrdered = at
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, model.OrderedItem{
				ProductID:   it.ProductID,
				Name:        it.Name,
				Count:       it.Quantity,
				TotalSpent:  it.Price * float64(it.Quantity),
				LastOrdered: at,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Count > merged[j].Count })
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// mergeCategories merges line-item categories, sorted descending by count
// and capped.
func mergeCategories(existing []model.CategoryCount, items []model.OrderItem, limit int) []model.CategoryCount {
	merged := make([]model.CategoryCount, len(existing))
	copy(merged, existing)

	for _, it := range items {
		if it.Category == "" {
			continue
		}
		found := false
		for i := range merged {
			if merged[i].Category == it.Category {
				merged[i].Count += it.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, model.CategoryCount{Category: it.Category, Count: it.Quantity})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Count > merged[j].Count })
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// classifyFrequency projects total orders over the account's age onto a
// per-month rate and classifies it against the configured thresholds.
func classifyFrequency(totalOrders int64, accountCreated, now time.Time, cfg config.AnalyticsConfig) string {
	ageDays := now.Sub(accountCreated).Hours() / 24
	if ageDays < 1 {
		ageDays = 1
	}
	perMonth := float64(totalOrders) / ageDays * 30

	switch {
	case perMonth < cfg.RegularPerMonth:
		return model.FrequencyOccasional
	case perMonth < cfg.FrequentPerMonth:
		return model.FrequencyRegular
	default:
		return model.FrequencyFrequent
	}
}

// orderTimeBucket maps an hour of day onto the preference buckets.
func orderTimeBucket(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return model.OrderTimeMorning
	case hour >= 11 && hour < 17:
		return model.OrderTimeAfternoon
	case hour >= 17 && hour < 22:
		return model.OrderTimeEvening
	default:
		return model.OrderTimeNight
	}
}
