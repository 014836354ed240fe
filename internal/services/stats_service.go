package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bazaar/internal/repos"
)

type DashboardStats struct {
	Products   int             `json:"products"`
	Orders     int             `json:"orders"`
	Buyers     int             `json:"buyers"`
	TodaySales decimal.Decimal `json:"today_sales"`
}

type StatsService struct {
	Prods    *repos.ProductRepo
	Orders   *repos.OrderRepo
	Accounts *repos.AccountRepo
}

func NewStatsService(db *sqlx.DB) *StatsService {
	return &StatsService{
		Prods:    repos.NewProductRepo(db),
		Orders:   repos.NewOrderRepo(db),
		Accounts: repos.NewAccountRepo(db),
	}
}

// Dashboard counts products, orders and buyers, and sums non-rejected sales
// since UTC midnight.
func (s *StatsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.Products, err = s.Prods.Count(ctx); err != nil {
		return st, err
	}
	if st.Orders, err = s.Orders.Count(ctx); err != nil {
		return st, err
	}
	if st.Buyers, err = s.Accounts.CountBuyers(ctx); err != nil {
		return st, err
	}
	midnight := repos.Now().UTC().Truncate(24 * time.Hour)
	if st.TodaySales, err = s.Orders.SalesSince(ctx, midnight.Format(repos.TimeLayout)); err != nil {
		return st, err
	}
	return st, nil
}
