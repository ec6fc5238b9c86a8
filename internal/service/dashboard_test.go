package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/model"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newDashboardFixture(t *testing.T, orders *fakeOrderRepo, db Pinger) (*DashboardService, *cache.MemoryCache) {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	store := cache.NewStore(mem, zap.NewNop())
	keys := cache.NewKeys("tavola")
	ttl := cache.TTLSet{
		Today:    2 * time.Minute,
		Weekly:   10 * time.Minute,
		Hourly:   5 * time.Minute,
		Top:      5 * time.Minute,
		Activity: 2 * time.Minute,
	}
	return NewDashboardService(orders, db, store, keys, ttl, 5), mem
}

func seededOrderRepo() *fakeOrderRepo {
	r := newFakeOrderRepo()
	r.todayStats = &model.TodayStats{
		Revenue:    230,
		OrderCount: 6,
		StatusCounts: map[string]int64{
			model.OrderStatusDelivered: 4,
			model.OrderStatusPending:   1,
			model.OrderStatusCancelled: 1,
		},
		AverageOrder: 46,
	}
	r.weekly = []model.RevenuePoint{{Date: "2026-08-30", Revenue: 410, Orders: 11}}
	r.hourly = []model.HourlyPoint{{Hour: 12, Revenue: 120, Orders: 4}}
	r.top = []model.TopProduct{{ProductID: "p1", Name: "Margherita", Quantity: 40, Revenue: 480}}
	r.recent = []model.Activity{{OrderID: "o1", Status: model.OrderStatusDelivered, Total: 32}}
	return r
}

func TestDashboardOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("composes all sub-aggregates", func(t *testing.T) {
		orders := seededOrderRepo()
		svc, _ := newDashboardFixture(t, orders, fakePinger{})

		got, err := svc.Overview(ctx)
		require.NoError(t, err)

		assert.Equal(t, float64(230), got.Today.Revenue)
		assert.Len(t, got.WeeklyRevenue, 1)
		assert.Len(t, got.HourlySales, 1)
		assert.Len(t, got.TopProducts, 1)
		assert.Len(t, got.Recent, 1)
		assert.Equal(t, "ok", got.System.Database)
		assert.Equal(t, "ok", got.System.Cache)
		assert.False(t, got.GeneratedAt.IsZero())
	})

	t.Run("second call serves from cache", func(t *testing.T) {
		orders := seededOrderRepo()
		svc, _ := newDashboardFixture(t, orders, fakePinger{})

		_, err := svc.Overview(ctx)
		require.NoError(t, err)
		calls := orders.topCalls

		_, err = svc.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, calls, orders.topCalls, "cached overview must not requery")
	})

	t.Run("any failed sub-query fails the whole view", func(t *testing.T) {
		orders := seededOrderRepo()
		orders.topErr = errors.New("aggregation timeout")
		svc, mem := newDashboardFixture(t, orders, fakePinger{})

		_, err := svc.Overview(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "top products")

		// No partial dashboard may be cached.
		keys := cache.NewKeys("tavola")
		ok, _ := mem.Exists(ctx, keys.Dashboard(cache.DashboardOverview))
		assert.False(t, ok)
	})

	t.Run("system probe reports a dead store without failing", func(t *testing.T) {
		orders := seededOrderRepo()
		svc, _ := newDashboardFixture(t, orders, fakePinger{err: errors.New("no reachable servers")})

		got, err := svc.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, "unreachable", got.System.Database)
		assert.Equal(t, "ok", got.System.Cache)
	})

	t.Run("system probe is live even when the view is cached", func(t *testing.T) {
		orders := seededOrderRepo()
		db := &struct{ fakePinger }{}
		svc, _ := newDashboardFixture(t, orders, db)

		got, err := svc.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", got.System.Database)

		db.err = errors.New("connection reset")
		got, err = svc.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, "unreachable", got.System.Database, "probe must not be cached with the view")
	})
}

func TestDashboardSubAggregates(t *testing.T) {
	ctx := context.Background()

	t.Run("today stats cached at own key", func(t *testing.T) {
		orders := seededOrderRepo()
		svc, mem := newDashboardFixture(t, orders, fakePinger{})

		stats, err := svc.Today(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), stats.OrderCount)

		keys := cache.NewKeys("tavola")
		ok, _ := mem.Exists(ctx, keys.Dashboard(cache.DashboardToday))
		assert.True(t, ok)
	})

	t.Run("top products keyed per limit", func(t *testing.T) {
		orders := seededOrderRepo()
		svc, mem := newDashboardFixture(t, orders, fakePinger{})

		_, err := svc.TopProducts(ctx, 3)
		require.NoError(t, err)
		_, err = svc.TopProducts(ctx, 7)
		require.NoError(t, err)

		keys := cache.NewKeys("tavola")
		ok, _ := mem.Exists(ctx, keys.Dashboard("products:top:3"))
		assert.True(t, ok)
		ok, _ = mem.Exists(ctx, keys.Dashboard("products:top:7"))
		assert.True(t, ok)
	})

	t.Run("sub-query error is not cached", func(t *testing.T) {
		orders := seededOrderRepo()
		orders.weeklyErr = errors.New("cursor timeout")
		svc, mem := newDashboardFixture(t, orders, fakePinger{})

		_, err := svc.WeeklyRevenue(ctx)
		require.Error(t, err)

		keys := cache.NewKeys("tavola")
		ok, _ := mem.Exists(ctx, keys.Dashboard(cache.DashboardWeekly))
		assert.False(t, ok)

		orders.weeklyErr = nil
		points, err := svc.WeeklyRevenue(ctx)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})
}
