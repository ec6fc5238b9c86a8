package service

import (
	"context"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"

	"tavola-rest-api/pkg/uid"
)

// CustomerService handles customer records. Behavior aggregates are
// written only by the aggregator; this service never touches them.
type CustomerService struct {
	repo repository.CustomerRepository
}

// NewCustomerService creates the customer service.
func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// Create registers a customer with empty ordering behavior.
func (s *CustomerService) Create(ctx context.Context, c *model.Customer) error {
	if c.ID == "" {
		c.ID = uid.New()
	}
	c.Behavior = model.OrderingBehavior{}
	return s.repo.Create(ctx, c)
}

// Get returns one customer, behavior included.
func (s *CustomerService) Get(ctx context.Context, id string) (*model.Customer, error) {
	return s.repo.GetByID(ctx, id)
}
