package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
)

// Store holds products and competitors in memory. It backs both
// ProductRepo and CompetitorRepo so that product deletes cascade.
type Store struct {
	mu          sync.RWMutex
	products    map[string]entity.Product
	competitors map[string]entity.Competitor
	now         func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]entity.Product),
		competitors: make(map[string]entity.Competitor),
		now:         time.Now,
	}
}

// Products returns a ProductRepository view of the store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Competitors returns a CompetitorRepository view of the store.
func (s *Store) Competitors() *CompetitorRepo { return &CompetitorRepo{s: s} }

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]entity.Product)
	s.competitors = make(map[string]entity.Competitor)
}

// competitorsOf returns copies of the product's competitors; callers hold s.mu.
func (s *Store) competitorsOf(productID string) []*entity.Competitor {
	out := []*entity.Competitor{}
	for _, c := range s.competitors {
		if c.ProductID == productID {
			out = append(out, &c)
		}
	}
	sortCompetitors(out)
	return out
}

func sortCompetitors(cs []*entity.Competitor) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].LastChecked.Equal(cs[j].LastChecked) {
			return cs[i].LastChecked.Before(cs[j].LastChecked)
		}
		return cs[i].ID < cs[j].ID
	})
}

// ProductRepo is an in-memory implementation of repository.ProductRepository.
type ProductRepo struct {
	s *Store
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = r.s.now().UTC()
	p.Competitors = []*entity.Competitor{}

	stored := *p
	stored.Competitors = nil
	r.s.products[p.ID] = stored
	return nil
}

func (r *ProductRepo) FindAll(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p.Competitors = r.s.competitorsOf(p.ID)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ProductRepo) FindByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Competitors = r.s.competitorsOf(id)
	return &p, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for cid, c := range r.s.competitors {
		if c.ProductID == id {
			delete(r.s.competitors, cid)
		}
	}
	delete(r.s.products, id)
	return nil
}

// CompetitorRepo is an in-memory implementation of repository.CompetitorRepository.
type CompetitorRepo struct {
	s *Store
}

var _ repository.CompetitorRepository = (*CompetitorRepo)(nil)

func (r *CompetitorRepo) Create(_ context.Context, c *entity.Competitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[c.ProductID]; !ok {
		return repository.ErrNotFound
	}
	c.ID = uuid.NewString()
	r.s.competitors[c.ID] = *c
	return nil
}

func (r *CompetitorRepo) FindAll(_ context.Context) ([]*entity.Competitor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entity.Competitor, 0, len(r.s.competitors))
	for _, c := range r.s.competitors {
		out = append(out, &c)
	}
	sortCompetitors(out)
	return out, nil
}

func (r *CompetitorRepo) FindByID(_ context.Context, id string) (*entity.Competitor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.competitors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CompetitorRepo) UpdatePrice(_ context.Context, id string, price float64, checkedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.competitors[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.CurrentPrice = price
	c.LastChecked = checkedAt
	r.s.competitors[id] = c
	return nil
}

func (r *CompetitorRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.competitors, id)
	return nil
}
