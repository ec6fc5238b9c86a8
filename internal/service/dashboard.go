package service

import (
	"context"
	"fmt"
	"time"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Pinger is a liveness probe of the authoritative store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DashboardService composes the admin dashboard from parallel
// authoritative queries behind layered TTLs. Each sub-aggregate caches at
// its own TTL and invalidates independently, so a direct sub-aggregate
// call is cheaper than the combined overview.
type DashboardService struct {
	orders   repository.OrderRepository
	db       Pinger
	store    *cache.Store
	keys     cache.Keys
	ttl      cache.TTLSet
	topLimit int
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(orders repository.OrderRepository, db Pinger, store *cache.Store, keys cache.Keys, ttl cache.TTLSet, topLimit int) *DashboardService {
	if topLimit < 1 {
		topLimit = 5
	}
	return &DashboardService{
		orders:   orders,
		db:       db,
		store:    store,
		keys:     keys,
		ttl:      ttl,
		topLimit: topLimit,
	}
}

// overviewCore is the cacheable part of the overview. The system probe
// stays out: it is live on every call.
type overviewCore struct {
	Today         model.TodayStats     `msgpack:"today"`
	WeeklyRevenue []model.RevenuePoint `msgpack:"weekly_revenue"`
	HourlySales   []model.HourlyPoint  `msgpack:"hourly_sales"`
	TopProducts   []model.TopProduct   `msgpack:"top_products"`
	Recent        []model.Activity     `msgpack:"recent_activity"`
	GeneratedAt   time.Time            `msgpack:"generated_at"`
}

func dayStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Today returns today's revenue and order counts.
func (s *DashboardService) Today(ctx context.Context) (*model.TodayStats, error) {
	key := s.keys.Dashboard(cache.DashboardToday)
	return cache.ReadThrough(ctx, s.store, key, s.ttl.Today, func(ctx context.Context) (*model.TodayStats, error) {
		return s.orders.TodayStats(ctx, dayStart(time.Now().UTC()))
	})
}

// WeeklyRevenue returns the 7-day revenue chart.
func (s *DashboardService) WeeklyRevenue(ctx context.Context) ([]model.RevenuePoint, error) {
	key := s.keys.Dashboard(cache.DashboardWeekly)
	return cache.ReadThrough(ctx, s.store, key, s.ttl.Weekly, func(ctx context.Context) ([]model.RevenuePoint, error) {
		from := dayStart(time.Now().UTC()).AddDate(0, 0, -6)
		return s.orders.WeeklyRevenue(ctx, from)
	})
}

// HourlySales returns today's paid sales bucketed by hour.
func (s *DashboardService) HourlySales(ctx context.Context) ([]model.HourlyPoint, error) {
	key := s.keys.Dashboard(cache.DashboardHourly)
	return cache.ReadThrough(ctx, s.store, key, s.ttl.Hourly, func(ctx context.Context) ([]model.HourlyPoint, error) {
		return s.orders.HourlySales(ctx, dayStart(time.Now().UTC()))
	})
}

// TopProducts returns the best sellers.
func (s *DashboardService) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	if limit < 1 {
		limit = s.topLimit
	}
	key := s.keys.Dashboard(fmt.Sprintf("%s:%d", cache.DashboardTop, limit))
	return cache.ReadThrough(ctx, s.store, key, s.ttl.Top, func(ctx context.Context) ([]model.TopProduct, error) {
		return s.orders.TopProducts(ctx, limit)
	})
}

// Recent returns the recent activity feed.
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit < 1 {
		limit = 10
	}
	key := s.keys.Dashboard(fmt.Sprintf("%s:%d", cache.DashboardActivity, limit))
	return cache.ReadThrough(ctx, s.store, key, s.ttl.Activity, func(ctx context.Context) ([]model.Activity, error) {
		return s.orders.Recent(ctx, limit)
	})
}

// System probes the store and cache. Never cached and never failing: a
// degraded dependency is a finding to report, not an error.
func (s *DashboardService) System(ctx context.Context) model.SystemStatus {
	status := model.SystemStatus{Database: "ok", Cache: "ok", Time: time.Now().UTC()}

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(probeCtx); err != nil {
		status.Database = "unreachable"
	}
	if err := s.store.Cache.Ping(probeCtx); err != nil {
		status.Cache = "unreachable"
	}
	return status
}

// Overview returns the combined dashboard. On a cache miss the
// sub-queries fan out concurrently and all must succeed: there is no
// partial dashboard, and a failed compose writes no combined entry. The
// combined entry lives for the shortest TTL among its parts.
func (s *DashboardService) Overview(ctx context.Context) (*model.DashboardOverview, error) {
	key := s.keys.Dashboard(cache.DashboardOverview)

	core, err := cache.ReadThrough(ctx, s.store, key, s.ttl.Overview(), func(ctx context.Context) (*overviewCore, error) {
		return s.compose(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &model.DashboardOverview{
		Today:         core.Today,
		WeeklyRevenue: core.WeeklyRevenue,
		HourlySales:   core.HourlySales,
		TopProducts:   core.TopProducts,
		Recent:        core.Recent,
		System:        s.System(ctx),
		GeneratedAt:   core.GeneratedAt,
	}, nil
}

// compose runs the sub-queries concurrently and joins all of them.
func (s *DashboardService) compose(ctx context.Context) (*overviewCore, error) {
	core := &overviewCore{GeneratedAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		today, err := s.Today(gctx)
		if err != nil {
			return fmt.Errorf("today stats: %w", err)
		}
		core.Today = *today
		return nil
	})
	g.Go(func() error {
		var err error
		core.WeeklyRevenue, err = s.WeeklyRevenue(gctx)
		if err != nil {
			return fmt.Errorf("weekly revenue: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		core.HourlySales, err = s.HourlySales(gctx)
		if err != nil {
			return fmt.Errorf("hourly sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		core.TopProducts, err = s.TopProducts(gctx, s.topLimit)
		if err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		core.Recent, err = s.Recent(gctx, 10)
		if err != nil {
			return fmt.Errorf("recent activity: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return core, nil
}
