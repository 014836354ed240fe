package services

import (
	"sort"
	"strings"
	"sync"

	"bazaar/internal/domain"
)

// SessionState holds the per-visitor cart and favorites in memory. Neither
// is ever written to the database; both disappear on logout or restart.
// Keys are cloned on write: request strings from fasthttp alias buffers that
// are reused after the handler returns.
type SessionState struct {
	mu    sync.Mutex
	carts map[string][]domain.CartLine
	favs  map[string]map[string]struct{}
}

func NewSessionState() *SessionState {
	return &SessionState{
		carts: map[string][]domain.CartLine{},
		favs:  map[string]map[string]struct{}{},
	}
}

func (s *SessionState) Lines(sid string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.carts[sid]...)
}

// AddLine increments an existing line or appends a new one.
func (s *SessionState) AddLine(sid string, p domain.Product, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sid]
	for i := range lines {
		if lines[i].ID == p.ID {
			lines[i].Quantity += qty
			return
		}
	}
	s.carts[strings.Clone(sid)] = append(lines, domain.CartLine{Product: p, Quantity: qty})
}

// SetQty overwrites a line's quantity; ok is false if the line is absent.
func (s *SessionState) SetQty(sid, productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.carts[sid] {
		if s.carts[sid][i].ID == productID {
			s.carts[sid][i].Quantity = qty
			return true
		}
	}
	return false
}

func (s *SessionState) RemoveLine(sid, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sid]
	for i := range lines {
		if lines[i].ID == productID {
			s.carts[strings.Clone(sid)] = append(lines[:i:i], lines[i+1:]...)
			return
		}
	}
}

func (s *SessionState) ClearCart(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
}

// ToggleFavorite flips membership and reports whether the product is now a favorite.
func (s *SessionState) ToggleFavorite(sid, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.favs[sid]
	if set == nil {
		set = map[string]struct{}{}
		s.favs[strings.Clone(sid)] = set
	}
	if _, ok := set[productID]; ok {
		delete(set, productID)
		return false
	}
	set[strings.Clone(productID)] = struct{}{}
	return true
}

func (s *SessionState) Favorites(sid string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.favs[sid]))
	for id := range s.favs[sid] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Forget drops everything held for sid.
func (s *SessionState) Forget(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
	delete(s.favs, sid)
}
