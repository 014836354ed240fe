package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/repos"
	"bazaar/internal/validate"
)

// CatalogService serves the product list from memory. The cache only ever
// changes after the store has confirmed a write.
type CatalogService struct {
	Prods  *repos.ProductRepo
	Cats   *repos.CategoryRepo
	Inv    *repos.InventoryRepo
	Images *ImageService

	mu    sync.RWMutex
	cache []domain.Product
}

func NewCatalogService(db *sqlx.DB, images *ImageService) *CatalogService {
	return &CatalogService{
		Prods:  repos.NewProductRepo(db),
		Cats:   repos.NewCategoryRepo(db),
		Inv:    repos.NewInventoryRepo(db),
		Images: images,
	}
}

// Refresh reloads the whole catalog from the store.
func (s *CatalogService) Refresh(ctx context.Context) error {
	list, err := s.Prods.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cache = list
	s.mu.Unlock()
	return nil
}

// RefreshProducts re-reads the given products, dropping any that are gone.
func (s *CatalogService) RefreshProducts(ctx context.Context, ids ...string) {
	for _, id := range ids {
		p, err := s.Prods.Get(ctx, id)
		switch {
		case err == nil:
			s.put(p)
		case errors.Is(err, ErrNotFound):
			s.drop(id)
		default:
			applog.Error(nil, "catalog.refresh", err, map[string]any{"product_id": id})
		}
	}
}

func (s *CatalogService) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.cache...)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.cache {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrNotFound
}

// Search matches q case-insensitively against name and description, and
// category exactly when given.
func (s *CatalogService) Search(q, category string) []domain.Product {
	q = validate.Q(q)
	category = strings.TrimSpace(category)
	out := []domain.Product{}
	for _, p := range s.List() {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *CatalogService) Categories(ctx context.Context) ([]repos.CategoryCount, error) {
	return s.Cats.List(ctx)
}

// ProductInput is the admin form. Nil Rating/ReviewsCount keep the stored
// values of an existing product and the defaults for a new one.
type ProductInput struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	Stock        int             `json:"stock"`
	Rating       *float64        `json:"rating"`
	ReviewsCount *int            `json:"reviews_count"`
}

func (in ProductInput) validate() (ProductInput, error) {
	var ok bool
	if in.Name, ok = validate.Label(in.Name, 120); !ok {
		return in, ErrInvalidInput
	}
	if in.Category, ok = validate.Label(in.Category, 60); !ok {
		return in, ErrInvalidInput
	}
	if len(in.Description) > 4000 || !validate.Price(in.Price) || !validate.Stock(in.Stock) {
		return in, ErrInvalidInput
	}
	if in.Rating != nil && !validate.Rating(*in.Rating) {
		return in, ErrInvalidInput
	}
	if in.ReviewsCount != nil && *in.ReviewsCount < 0 {
		return in, ErrInvalidInput
	}
	if in.ID != "" {
		if in.ID, ok = validate.ID(in.ID); !ok {
			return in, ErrInvalidInput
		}
	}
	return in, nil
}

// Upsert writes the product to the store; only on success is the cached
// entry replaced in place (existing id) or prepended (new product).
func (s *CatalogService) Upsert(ctx context.Context, in ProductInput) (domain.Product, error) {
	in, err := in.validate()
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID: in.ID, Name: in.Name, Description: strings.TrimSpace(in.Description),
		Price: in.Price, Category: in.Category, Stock: in.Stock,
		Rating: domain.DefaultRating,
	}
	image := in.Image
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		// the store, not the cache, decides whether this replaces a product
		existing, err := s.Prods.Get(ctx, p.ID)
		switch {
		case err == nil:
			p.Rating, p.ReviewsCount, p.CreatedAt = existing.Rating, existing.ReviewsCount, existing.CreatedAt
			if image == "" {
				image = existing.Image
			}
		case !errors.Is(err, ErrNotFound):
			applog.Error(nil, "catalog.upsert.lookup", err, map[string]any{"product_id": p.ID})
			return domain.Product{}, err
		}
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewsCount != nil {
		p.ReviewsCount = *in.ReviewsCount
	}
	if p.Image, err = s.Images.Resolve(ctx, "products", image); err != nil {
		return domain.Product{}, err
	}

	if err := s.Prods.Upsert(ctx, p); err != nil {
		applog.Error(nil, "catalog.upsert", err, map[string]any{"product_id": p.ID})
		return domain.Product{}, err
	}
	saved, err := s.Prods.Get(ctx, p.ID)
	if err != nil {
		applog.Error(nil, "catalog.upsert.reload", err, map[string]any{"product_id": p.ID})
		return domain.Product{}, err
	}
	s.put(saved)
	return saved, nil
}

// Delete removes from the store, then from the cache.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.Prods.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			applog.Error(nil, "catalog.delete", err, map[string]any{"product_id": id})
		}
		return err
	}
	s.drop(id)
	return nil
}

// SetStock overwrites a product's stock level (admin restock).
func (s *CatalogService) SetStock(ctx context.Context, id string, qty int) (domain.Product, error) {
	if !validate.Stock(qty) {
		return domain.Product{}, ErrInvalidInput
	}
	if err := s.Inv.SetQty(ctx, id, qty); err != nil {
		return domain.Product{}, err
	}
	s.RefreshProducts(ctx, id)
	return s.Get(id)
}

func (s *CatalogService) put(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cache {
		if s.cache[i].ID == p.ID {
			s.cache[i] = p
			return
		}
	}
	s.cache = append([]domain.Product{p}, s.cache...)
}

func (s *CatalogService) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cache {
		if s.cache[i].ID == id {
			s.cache = append(s.cache[:i:i], s.cache[i+1:]...)
			return
		}
	}
}
