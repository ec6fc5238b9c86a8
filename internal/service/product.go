package service

import (
	"context"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"

	"tavola-rest-api/pkg/uid"
)

// ProductPage is one cached page of a product list query.
type ProductPage struct {
	Items []model.Product `msgpack:"items" json:"items"`
	Total int64           `msgpack:"total" json:"total"`
}

// ProductService serves menu items through the cache-aside layer.
type ProductService struct {
	repo     repository.ProductRepository
	store    *cache.Store
	policies *cache.Policies
}

// NewProductService creates the product service.
func NewProductService(repo repository.ProductRepository, store *cache.Store, policies *cache.Policies) *ProductService {
	return &ProductService{repo: repo, store: store, policies: policies}
}

// Get returns one product, read through the by-id cache.
func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	pol := s.policies.For(cache.EntityProduct)
	return cache.ReadThrough(ctx, s.store, pol.Key(id), pol.TTL, func(ctx context.Context) (*model.Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// List returns a page of products, read through the list cache keyed by
// the filter signature.
func (s *ProductService) List(ctx context.Context, f model.ProductFilter) (*ProductPage, error) {
	pol := s.policies.For(cache.EntityProduct)
	key := s.policies.Keys().ProductList(f)
	return cache.ReadThrough(ctx, s.store, key, pol.ListTTL, func(ctx context.Context) (*ProductPage, error) {
		items, total, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Items: items, Total: total}, nil
	})
}

// Create inserts a product and invalidates the list caches that could
// now be stale.
func (s *ProductService) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uid.New()
	}
	if p.Stats.Rating == 0 {
		p.Stats.Rating = 4.0
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityProduct), p.ID)
	return nil
}

// Update writes a product and then invalidates its exact key plus every
// list pattern. The authoritative write commits first; invalidating
// before it would let a concurrent reader repopulate the pre-write value.
func (s *ProductService) Update(ctx context.Context, p *model.Product) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityProduct), p.ID)
	return nil
}

// Delete removes a product and invalidates its cache entries.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityProduct), id)
	return nil
}
