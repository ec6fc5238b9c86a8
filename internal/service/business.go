package service

import (
	"context"

	"tavola-rest-api/internal/cache"
	"tavola-rest-api/internal/events"
	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"
)

// BusinessService serves the settings singleton through the cache. The
// entry is permanent: settings are read on every order path and change
// rarely, so they stay cached until a write invalidates them.
type BusinessService struct {
	repo      repository.BusinessRepository
	store     *cache.Store
	policies  *cache.Policies
	publisher events.Publisher
}

// NewBusinessService creates the business service.
func NewBusinessService(repo repository.BusinessRepository, store *cache.Store, policies *cache.Policies, publisher events.Publisher) *BusinessService {
	return &BusinessService{repo: repo, store: store, policies: policies, publisher: publisher}
}

// Get returns the settings, read through the cache.
func (s *BusinessService) Get(ctx context.Context) (*model.Business, error) {
	pol := s.policies.For(cache.EntityBusiness)
	return cache.ReadThrough(ctx, s.store, pol.Key(""), pol.TTL, func(ctx context.Context) (*model.Business, error) {
		return s.repo.Get(ctx)
	})
}

// Update writes the settings and invalidates the cached singleton,
// strictly in that order.
func (s *BusinessService) Update(ctx context.Context, b *model.Business) error {
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}
	s.store.Invalidate(ctx, s.policies.For(cache.EntityBusiness))
	return nil
}

// SetOpen toggles the open flag and notifies the push channel.
func (s *BusinessService) SetOpen(ctx context.Context, open bool) (*model.Business, error) {
	b, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	b.Open = open
	if err := s.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.ChannelBusiness, events.Event{
		Type:    "business.status",
		Payload: map[string]bool{"open": open},
	})
	return b, nil
}
