package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/config"
	"tavola-rest-api/internal/model"
)

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		RegularPerMonth:  2,
		FrequentPerMonth: 8,
		MostOrderedCap:   10,
		FavoriteCatCap:   4,
		TopProductsLimit: 5,
		ClaimTTL:         time.Hour,
	}
}

func testPolicies() *cache.Policies {
	return cache.NewPolicies(cache.NewKeys("tavola"), cache.TTLSet{
		Product:     10 * time.Minute,
		ProductList: 5 * time.Minute,
		Coupon:      10 * time.Minute,
		CouponList:  5 * time.Minute,
		Today:       2 * time.Minute,
		Weekly:      10 * time.Minute,
		Hourly:      5 * time.Minute,
		Top:         5 * time.Minute,
		Activity:    2 * time.Minute,
	})
}

func newTestAggregator(t *testing.T, products *fakeProductRepo, customers *fakeCustomerRepo, logger *zap.Logger) (*Aggregator, *cache.MemoryCache) {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	store := cache.NewStore(mem, logger)
	agg := NewAggregator(products, customers, store, testPolicies(), testAnalyticsConfig(), logger)
	return agg, mem
}

func deliveredOrder(customerID string, items ...model.OrderItem) *model.Order {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}
	now := time.Now().UTC()
	return &model.Order{
		ID:         "order-1",
		CustomerID: customerID,
		Items:      items,
		Subtotal:   subtotal,
		Total:      subtotal,
		Status:     model.OrderStatusDelivered,
		CreatedAt:  now,
	}
}

func TestRatingFor(t *testing.T) {
	cases := []struct {
		sales  int64
		rating float64
	}{
		{0, 4.0},
		{9, 4.0},
		{10, 4.2},
		{49, 4.2},
		{50, 4.5},
		{99, 4.5},
		{100, 4.7},
		{199, 4.7},
		{200, 5.0},
		{1000, 5.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.rating, ratingFor(tc.sales), "sales=%d", tc.sales)
	}
}

func TestMergeOrder(t *testing.T) {
	cfg := testAnalyticsConfig()
	accountCreated := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("totals and averages update incrementally", func(t *testing.T) {
		b := model.OrderingBehavior{
			TotalOrders:      2,
			TotalSpent:       100,
			AvgItemsPerOrder: 3,
		}
		order := &model.Order{
			Total:     50,
			Items:     []model.OrderItem{{ProductID: "p1", Quantity: 6, Price: 5}},
			CreatedAt: accountCreated.Add(30 * 24 * time.Hour),
		}

		got := MergeOrder(b, order, accountCreated, cfg)

		assert.Equal(t, int64(3), got.TotalOrders)
		assert.Equal(t, float64(150), got.TotalSpent)
		assert.Equal(t, float64(50), got.AverageOrderValue)
		assert.InDelta(t, 4.0, got.AvgItemsPerOrder, 1e-9) // (3*2+6)/3
		require.NotNil(t, got.LastOrderDate)
		assert.Equal(t, order.CreatedAt, *got.LastOrderDate)
	})

	t.Run("average order value stays exact", func(t *testing.T) {
		b := model.OrderingBehavior{TotalOrders: 3, TotalSpent: 150, AverageOrderValue: 50}
		order := &model.Order{Total: 50, CreatedAt: accountCreated.Add(24 * time.Hour)}

		got := MergeOrder(b, order, accountCreated, cfg)

		assert.Equal(t, int64(4), got.TotalOrders)
		assert.Equal(t, float64(200), got.TotalSpent)
		assert.Equal(t, float64(50), got.AverageOrderValue, "200/4 must be exactly 50.0")
	})

	t.Run("most ordered list merges and stays capped", func(t *testing.T) {
		existing := make([]model.OrderedItem, 0, cfg.MostOrderedCap)
		for i := 0; i < cfg.MostOrderedCap; i++ {
			existing = append(existing, model.OrderedItem{
				ProductID: string(rune('a' + i)),
				Count:     int64(20 - i),
			})
		}
		b := model.OrderingBehavior{MostOrderedItems: existing}
		order := &model.Order{
			Items:     []model.OrderItem{{ProductID: "new", Name: "Tiramisu", Quantity: 15, Price: 6}},
			CreatedAt: accountCreated.Add(24 * time.Hour),
		}

		got := MergeOrder(b, order, accountCreated, cfg)

		assert.Len(t, got.MostOrderedItems, cfg.MostOrderedCap)
		ids := make([]string, 0, len(got.MostOrderedItems))
		for _, it := range got.MostOrderedItems {
			ids = append(ids, it.ProductID)
		}
		assert.Contains(t, ids, "new", "higher-count newcomer evicts the tail")
		assert.NotContains(t, ids, string(rune('a'+cfg.MostOrderedCap-1)), "lowest-count entry falls off")
	})

	t.Run("repeat product accumulates instead of duplicating", func(t *testing.T) {
		b := model.OrderingBehavior{
			MostOrderedItems: []model.OrderedItem{{ProductID: "p1", Name: "Margherita", Count: 3, TotalSpent: 30}},
		}
		order := &model.Order{
			Items:     []model.OrderItem{{ProductID: "p1", Name: "Margherita", Quantity: 2, Price: 10}},
			CreatedAt: accountCreated.Add(24 * time.Hour),
		}

		got := MergeOrder(b, order, accountCreated, cfg)

		require.Len(t, got.MostOrderedItems, 1)
		assert.Equal(t, int64(5), got.MostOrderedItems[0].Count)
		assert.Equal(t, float64(50), got.MostOrderedItems[0].TotalSpent)
	})

	t.Run("favorite categories are quantity weighted and capped", func(t *testing.T) {
		b := model.OrderingBehavior{}
		order := &model.Order{
			Items: []model.OrderItem{
				{ProductID: "p1", Category: "pizza", Quantity: 3},
				{ProductID: "p2", Category: "pasta", Quantity: 1},
				{ProductID: "p3", Category: "dessert", Quantity: 1},
				{ProductID: "p4", Category: "drinks", Quantity: 1},
				{ProductID: "p5", Category: "sides", Quantity: 2},
			},
			CreatedAt: accountCreated.Add(24 * time.Hour),
		}

		got := MergeOrder(b, order, accountCreated, cfg)

		require.Len(t, got.FavoriteCategories, cfg.FavoriteCatCap)
		assert.Equal(t, "pizza", got.FavoriteCategories[0].Category)
		assert.Equal(t, int64(3), got.FavoriteCategories[0].Count)
	})
}

func TestClassifyFrequency(t *testing.T) {
	cfg := testAnalyticsConfig()
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	thirtyDaysLater := created.Add(30 * 24 * time.Hour)

	cases := []struct {
		name   string
		orders int64
		now    time.Time
		want   string
	}{
		{"one order in a month is occasional", 1, thirtyDaysLater, model.FrequencyOccasional},
		{"two orders in a month is regular", 2, thirtyDaysLater, model.FrequencyRegular},
		{"seven orders in a month is regular", 7, thirtyDaysLater, model.FrequencyRegular},
		{"eight orders in a month is frequent", 8, thirtyDaysLater, model.FrequencyFrequent},
		{"young account age clamps to one day", 1, created.Add(time.Hour), model.FrequencyFrequent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyFrequency(tc.orders, created, tc.now, cfg))
		})
	}
}

func TestOrderTimeBucket(t *testing.T) {
	cases := map[int]string{
		5:  model.OrderTimeMorning,
		10: model.OrderTimeMorning,
		11: model.OrderTimeAfternoon,
		16: model.OrderTimeAfternoon,
		17: model.OrderTimeEvening,
		21: model.OrderTimeEvening,
		22: model.OrderTimeNight,
		3:  model.OrderTimeNight,
	}
	for hour, want := range cases {
		assert.Equal(t, want, orderTimeBucket(hour), "hour=%d", hour)
	}
}

func TestAggregatorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("updates stats, rating and behavior", func(t *testing.T) {
		products := newFakeProductRepo(
			&model.Product{ID: "p1", Name: "Margherita", Category: "pizza", Price: 10,
				Stats: model.ProductStats{SalesCount: 9, Rating: 4.0}},
		)
		customers := newFakeCustomerRepo(&model.Customer{
			ID:        "c1",
			CreatedAt: time.Now().UTC().Add(-60 * 24 * time.Hour),
		})
		agg, mem := newTestAggregator(t, products, customers, zap.NewNop())

		order := deliveredOrder("c1", model.OrderItem{
			ProductID: "p1", Name: "Margherita", Category: "pizza", Price: 10, Quantity: 1,
		})
		agg.Run(ctx, order)

		p, err := products.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.Stats.SalesCount)
		assert.Equal(t, float64(10), p.Stats.TotalRevenue)
		assert.Equal(t, 4.2, p.Stats.Rating, "crossing from nine to ten sales lifts the rating")

		c, err := customers.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Behavior.TotalOrders)
		assert.Equal(t, float64(10), c.Behavior.TotalSpent)

		// Claim survives a clean run.
		ok, err := mem.Exists(ctx, testPolicies().Keys().AggregateClaim(order.ID))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicate delivered event is skipped", func(t *testing.T) {
		products := newFakeProductRepo(&model.Product{ID: "p1", Price: 10})
		customers := newFakeCustomerRepo(&model.Customer{ID: "c1", CreatedAt: time.Now().UTC()})
		agg, _ := newTestAggregator(t, products, customers, zap.NewNop())

		order := deliveredOrder("c1", model.OrderItem{ProductID: "p1", Price: 10, Quantity: 1})
		agg.Run(ctx, order)
		agg.Run(ctx, order)

		assert.Len(t, products.incremented, 1, "second event must not double count")
	})

	t.Run("claim expires instead of living forever", func(t *testing.T) {
		products := newFakeProductRepo(&model.Product{ID: "p1", Price: 10})
		customers := newFakeCustomerRepo(&model.Customer{ID: "c1", CreatedAt: time.Now().UTC()})
		mem := cache.NewMemoryCache()
		t.Cleanup(func() { _ = mem.Close() })
		cfg := testAnalyticsConfig()
		cfg.ClaimTTL = 5 * time.Millisecond
		agg := NewAggregator(products, customers, cache.NewStore(mem, zap.NewNop()), testPolicies(), cfg, zap.NewNop())

		order := deliveredOrder("c1", model.OrderItem{ProductID: "p1", Price: 10, Quantity: 1})
		agg.Run(ctx, order)

		key := testPolicies().Keys().AggregateClaim(order.ID)
		ok, err := mem.Exists(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, "claim is held right after the run")

		assert.Eventually(t, func() bool {
			ok, err := mem.Exists(ctx, key)
			return err == nil && !ok
		}, time.Second, 5*time.Millisecond, "claim must expire with its ttl")
	})

	t.Run("missing product skips its line only", func(t *testing.T) {
		products := newFakeProductRepo(&model.Product{ID: "p1", Price: 10})
		customers := newFakeCustomerRepo(&model.Customer{ID: "c1", CreatedAt: time.Now().UTC()})

		core, observed := observer.New(zapcore.WarnLevel)
		agg, _ := newTestAggregator(t, products, customers, zap.New(core))

		order := deliveredOrder("c1",
			model.OrderItem{ProductID: "p1", Price: 10, Quantity: 1},
			model.OrderItem{ProductID: "ghost", Price: 5, Quantity: 1},
		)
		agg.Run(ctx, order)

		skipped := observed.FilterMessage("product missing during aggregation; skipped").All()
		assert.Len(t, skipped, 1)

		// The surviving product was still rated.
		require.Len(t, products.ratingsSet, 1)
		assert.Contains(t, products.ratingsSet[0], "p1")
		assert.NotContains(t, products.ratingsSet[0], "ghost")

		// The customer step still ran.
		c, err := customers.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Behavior.TotalOrders)
	})

	t.Run("failed step releases the claim for replay", func(t *testing.T) {
		products := newFakeProductRepo(&model.Product{ID: "p1", Price: 10})
		customers := newFakeCustomerRepo(&model.Customer{ID: "c1", CreatedAt: time.Now().UTC()})
		customers.updateErr = errors.New("write timeout")
		agg, mem := newTestAggregator(t, products, customers, zap.NewNop())

		order := deliveredOrder("c1", model.OrderItem{ProductID: "p1", Price: 10, Quantity: 1})
		agg.Run(ctx, order)

		ok, err := mem.Exists(ctx, testPolicies().Keys().AggregateClaim(order.ID))
		require.NoError(t, err)
		assert.False(t, ok, "claim must be released after a failed step")

		// A replay after the fault clears processes the order.
		customers.updateErr = nil
		agg.Run(ctx, order)
		c, err := customers.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.Behavior.TotalOrders)
	})

	t.Run("invalidates dashboard and touched product entries", func(t *testing.T) {
		products := newFakeProductRepo(&model.Product{ID: "p1", Price: 10})
		customers := newFakeCustomerRepo(&model.Customer{ID: "c1", CreatedAt: time.Now().UTC()})
		agg, mem := newTestAggregator(t, products, customers, zap.NewNop())
		keys := testPolicies().Keys()

		require.NoError(t, mem.Set(ctx, keys.Dashboard(cache.DashboardToday), []byte("v"), 0))
		require.NoError(t, mem.Set(ctx, keys.Product("p1"), []byte("v"), 0))
		require.NoError(t, mem.Set(ctx, keys.Product("other"), []byte("v"), 0))

		order := deliveredOrder("c1", model.OrderItem{ProductID: "p1", Price: 10, Quantity: 1})
		agg.Run(ctx, order)

		ok, _ := mem.Exists(ctx, keys.Dashboard(cache.DashboardToday))
		assert.False(t, ok, "dashboard entries are stale after aggregation")
		ok, _ = mem.Exists(ctx, keys.Product("p1"))
		assert.False(t, ok, "touched product entry is dropped")
		ok, _ = mem.Exists(ctx, keys.Product("other"))
		assert.True(t, ok, "untouched product entries survive")
	})
}
