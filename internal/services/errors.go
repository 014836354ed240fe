package services

import (
	"errors"
	"fmt"

	"bazaar/internal/repos"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrBadCreds          = errors.New("invalid email or password")
	ErrWrongPassword     = errors.New("current password incorrect")
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidInput      = errors.New("invalid input")
	ErrReservedEmail     = errors.New("email reserved for the administrator")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAlreadyRated      = errors.New("order already rated")
	ErrNotRateable       = errors.New("order cannot be rated in its current status")

	// ErrNotFound is the store's not-found sentinel, so errors.Is matches
	// both cache misses and StoreErrors of KindNotFound.
	ErrNotFound = repos.ErrNotFound
)

// InsufficientStockError names the first cart line the store cannot cover.
type InsufficientStockError struct {
	ProductID string
	Product   string
	Wanted    int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: want %d, have %d", e.Product, e.Wanted, e.Available)
}
