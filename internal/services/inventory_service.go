package services

import (
	"context"
	"errors"

	"bazaar/internal/domain"
	"bazaar/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

// LowStockBelow is the threshold for admin low-stock alerts.
const LowStockBelow = 3

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability reads live stock and buckets it into IN_STOCK (5 or
// more), LOW_STOCK (1 to 4) or OUT_OF_STOCK. Unknown products are out of stock.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Availability{Status: OutOfStock, Qty: 0}, nil
		}
		return domain.Availability{}, err
	}
	return Availability(qty), nil
}

func Availability(qty int) domain.Availability {
	status := OutOfStock
	switch {
	case qty >= 5:
		status = InStock
	case qty > 0:
		status = LowStock
	}
	return domain.Availability{Status: status, Qty: qty}
}

func (s *InventoryService) List(ctx context.Context) ([]repos.InventoryRow, error) {
	return s.Inv.ListAll(ctx)
}
