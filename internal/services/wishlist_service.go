package services

import "bazaar/internal/domain"

// WishlistService manages the visitor's favorite products.
type WishlistService struct {
	State   *SessionState
	Catalog *CatalogService
}

func NewWishlistService(state *SessionState, catalog *CatalogService) *WishlistService {
	return &WishlistService{State: state, Catalog: catalog}
}

// Toggle adds or removes productID and reports the new membership.
func (s *WishlistService) Toggle(sid, productID string) (bool, error) {
	if _, err := s.Catalog.Get(productID); err != nil {
		return false, err
	}
	return s.State.ToggleFavorite(sid, productID), nil
}

func (s *WishlistService) IDs(sid string) []string { return s.State.Favorites(sid) }

// List resolves favorites against the catalog, skipping deleted products.
func (s *WishlistService) List(sid string) []domain.Product {
	out := []domain.Product{}
	for _, id := range s.State.Favorites(sid) {
		if p, err := s.Catalog.Get(id); err == nil {
			out = append(out, p)
		}
	}
	return out
}
