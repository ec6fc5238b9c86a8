package service

import (
	"context"
	"errors"
	"time"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"

	"tavola-rest-api/pkg/uid"
)

// CouponPage is one cached page of a coupon list query.
type CouponPage struct {
	Items []model.Coupon `msgpack:"items" json:"items"`
	Total int64          `msgpack:"total" json:"total"`
}

// CouponService serves discount codes through the cache-aside layer.
type CouponService struct {
	repo     repository.CouponRepository
	store    *cache.Store
	policies *cache.Policies
}

// NewCouponService creates the coupon service.
func NewCouponService(repo repository.CouponRepository, store *cache.Store, policies *cache.Policies) *CouponService {
	return &CouponService{repo: repo, store: store, policies: policies}
}

// Get returns one coupon by code, read through the cache.
func (s *CouponService) Get(ctx context.Context, code string) (*model.Coupon, error) {
	pol := s.policies.For(cache.EntityCoupon)
	return cache.ReadThrough(ctx, s.store, pol.Key(code), pol.TTL, func(ctx context.Context) (*model.Coupon, error) {
		return s.repo.GetByCode(ctx, code)
	})
}

// List returns a page of coupons, read through the list cache.
func (s *CouponService) List(ctx context.Context, f model.CouponFilter) (*CouponPage, error) {
	pol := s.policies.For(cache.EntityCoupon)
	key := s.policies.Keys().CouponList(f)
	return cache.ReadThrough(ctx, s.store, key, pol.ListTTL, func(ctx context.Context) (*CouponPage, error) {
		items, total, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return &CouponPage{Items: items, Total: total}, nil
	})
}

// Create inserts a coupon and invalidates the list caches.
func (s *CouponService) Create(ctx context.Context, c *model.Coupon) error {
	if c.ID == "" {
		c.ID = uid.New()
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityCoupon), c.Code)
	return nil
}

// Update writes a coupon, then invalidates its exact key and the list
// patterns, strictly after the store commit.
func (s *CouponService) Update(ctx context.Context, c *model.Coupon) error {
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityCoupon), c.Code)
	return nil
}

// Delete removes a coupon and invalidates its cache entries.
func (s *CouponService) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityCoupon), code)
	return nil
}

// Validate checks a code against a subtotal and returns the coupon and
// the discount it grants.
func (s *CouponService) Validate(ctx context.Context, code string, subtotal float64) (*model.Coupon, float64, error) {
	c, err := s.Get(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrInvalidCoupon
		}
		return nil, 0, err
	}
	if !c.Usable(subtotal, time.Now().UTC()) {
		return nil, 0, ErrInvalidCoupon
	}
	return c, c.Discount(subtotal), nil
}

// Redeem bumps the usage counter after an order applied the coupon, then
// invalidates the cached coupon so the new count is visible.
func (s *CouponService) Redeem(ctx context.Context, code string) error {
	if err := s.repo.IncrementUsage(ctx, code); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityCoupon), code)
	return nil
}
