package service

import (
	"context"
	"sync"
	"time"

	"tavola-rest-api/internal/model"
	"tavola-rest-api/internal/repository"
)

// fakeProductRepo is an in-memory ProductRepository for tests.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product

	incremented  []map[string]model.StatsDelta
	ratingsSet   []map[string]float64
	incrementErr error
	salesErr     error
	ratingsErr   error
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) IncrementStats(ctx context.Context, deltas map[string]model.StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.incremented = append(r.incremented, deltas)
	for id, d := range deltas {
		if p, ok := r.products[id]; ok {
			p.Stats.SalesCount += d.Quantity
			p.Stats.TotalRevenue += d.Revenue
		}
	}
	return nil
}

func (r *fakeProductRepo) SalesCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.salesErr != nil {
		return nil, r.salesErr
	}
	counts := make(map[string]int64)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			counts[id] = p.Stats.SalesCount
		}
	}
	return counts, nil
}

func (r *fakeProductRepo) SetRatings(ctx context.Context, ratings map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ratingsErr != nil {
		return r.ratingsErr
	}
	r.ratingsSet = append(r.ratingsSet, ratings)
	for id, rating := range ratings {
		if p, ok := r.products[id]; ok {
			p.Stats.Rating = rating
		}
	}
	return nil
}

// fakeCustomerRepo is an in-memory CustomerRepository for tests.
type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*model.Customer
	updateErr error
}

func newFakeCustomerRepo(customers ...*model.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[string]*model.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) UpdateBehavior(ctx context.Context, id string, b model.OrderingBehavior) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	c, ok := r.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Behavior = b
	return nil
}

// fakeOrderRepo is an in-memory OrderRepository for tests.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	todayStats *model.TodayStats
	weekly     []model.RevenuePoint
	hourly     []model.HourlyPoint
	top        []model.TopProduct
	recent     []model.Activity

	todayErr  error
	weeklyErr error
	hourlyErr error
	topErr    error
	recentErr error

	topCalls int
}

func newFakeOrderRepo(orders ...*model.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id, status string, deliveredAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	return nil
}

func (r *fakeOrderRepo) SetPaid(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Paid = true
	return nil
}

func (r *fakeOrderRepo) TodayStats(ctx context.Context, dayStart time.Time) (*model.TodayStats, error) {
	if r.todayErr != nil {
		return nil, r.todayErr
	}
	if r.todayStats != nil {
		return r.todayStats, nil
	}
	return &model.TodayStats{StatusCounts: map[string]int64{}}, nil
}

func (r *fakeOrderRepo) WeeklyRevenue(ctx context.Context, from time.Time) ([]model.RevenuePoint, error) {
	return r.weekly, r.weeklyErr
}

func (r *fakeOrderRepo) HourlySales(ctx context.Context, dayStart time.Time) ([]model.HourlyPoint, error) {
	return r.hourly, r.hourlyErr
}

func (r *fakeOrderRepo) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	r.mu.Lock()
	r.topCalls++
	r.mu.Unlock()
	return r.top, r.topErr
}

func (r *fakeOrderRepo) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	return r.recent, r.recentErr
}

// fakeBusinessRepo is an in-memory BusinessRepository for tests.
type fakeBusinessRepo struct {
	mu       sync.Mutex
	business *model.Business
}

func newFakeBusinessRepo(b *model.Business) *fakeBusinessRepo {
	if b == nil {
		b = model.DefaultBusiness()
	}
	return &fakeBusinessRepo{business: b}
}

func (r *fakeBusinessRepo) Get(ctx context.Context) (*model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.business
	return &cp, nil
}

func (r *fakeBusinessRepo) Update(ctx context.Context, b *model.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.business = b
	return nil
}

// fakeCouponRepo is an in-memory CouponRepository for tests.
type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
}

func newFakeCouponRepo(coupons ...*model.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{coupons: make(map[string]*model.Coupon)}
	for _, c := range coupons {
		r.coupons[c.Code] = c
	}
	return r
}

func (r *fakeCouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[c.Code]; ok {
		return repository.ErrDuplicate
	}
	r.coupons[c.Code] = c
	return nil
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCouponRepo) Update(ctx context.Context, c *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[c.Code]; !ok {
		return repository.ErrNotFound
	}
	r.coupons[c.Code] = c
	return nil
}

func (r *fakeCouponRepo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[code]; !ok {
		return repository.ErrNotFound
	}
	delete(r.coupons, code)
	return nil
}

func (r *fakeCouponRepo) List(ctx context.Context, f model.CouponFilter) ([]model.Coupon, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCouponRepo) IncrementUsage(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[code]
	if !ok {
		return repository.ErrNotFound
	}
	c.UsedCount++
	return nil
}
