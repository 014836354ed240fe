package services

import (
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

type CartService struct {
	State   *SessionState
	Catalog *CatalogService
}

func NewCartService(state *SessionState, catalog *CatalogService) *CartService {
	return &CartService{State: state, Catalog: catalog}
}

// Add snapshots the cached product into the cart. Stock is not checked here;
// checkout revalidates against the store.
func (s *CartService) Add(sid, productID string, qty int) error {
	p, err := s.Catalog.Get(productID)
	if err != nil {
		return err
	}
	s.State.AddLine(sid, p, validate.ClampQty(qty))
	return nil
}

func (s *CartService) SetQty(sid, productID string, qty int) error {
	if !s.State.SetQty(sid, productID, validate.ClampQty(qty)) {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) Remove(sid, productID string) { s.State.RemoveLine(sid, productID) }

func (s *CartService) Clear(sid string) { s.State.ClearCart(sid) }

type CartView struct {
	Items []domain.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func (s *CartService) View(sid string) CartView {
	lines := s.State.Lines(sid)
	v := CartView{Items: lines, Total: decimal.Zero}
	if v.Items == nil {
		v.Items = []domain.CartLine{}
	}
	for _, l := range lines {
		v.Total = v.Total.Add(l.Subtotal())
		v.Count += l.Quantity
	}
	return v
}
