// Package reporting aggregates orders and customers for the admin back office.
package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Store interface {
	// Revenue sums order totals, cancelled orders excluded.
	Revenue(ctx context.Context) (decimal.Decimal, error)
	RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error)
	CountByStatus(ctx context.Context) (map[orders.Status]int, error)
	CountCustomers(ctx context.Context) (int, error)
	CategorySales(ctx context.Context) ([]CategorySales, error)
	RecentOrders(ctx context.Context, n int) ([]orders.Order, error)
}

const (
	TrendDays    = 7
	RecentOrders = 5
)

type Service struct {
	Store Store
	Redis redis.Cmdable // nil disables the dashboard cache
	Now   func() time.Time
}

func NewService(store Store, rdb redis.Cmdable) *Service {
	return &Service{Store: store, Redis: rdb, Now: time.Now}
}

// Dashboard is served from Redis for up to a minute.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if d, ok := s.cached(ctx); ok {
		return d, nil
	}
	d, err := s.build(ctx)
	if err != nil {
		return Dashboard{}, apperr.Internal("build dashboard", err)
	}
	if s.Redis != nil {
		if b, err := json.Marshal(d); err == nil {
			_ = s.Redis.Set(ctx, redisx.KeyAnalyticsDashboard, b, redisx.TTLAnalytics).Err()
		}
	}
	return d, nil
}

func (s *Service) cached(ctx context.Context) (Dashboard, bool) {
	if s.Redis == nil {
		return Dashboard{}, false
	}
	b, err := s.Redis.Get(ctx, redisx.KeyAnalyticsDashboard).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("reporting: cache read: %v", err)
		}
		return Dashboard{}, false
	}
	var d Dashboard
	if err := json.Unmarshal(b, &d); err != nil {
		return Dashboard{}, false
	}
	return d, true
}

func (s *Service) build(ctx context.Context) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	d.GeneratedAt = s.Now().UTC()
	if d.TotalRevenue, err = s.Store.Revenue(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.OrdersByStatus, err = s.Store.CountByStatus(ctx); err != nil {
		return Dashboard{}, err
	}
	for _, n := range d.OrdersByStatus {
		d.TotalOrders += n
	}
	d.PendingOrders = d.OrdersByStatus[orders.StatusPending]
	if d.TotalCustomers, err = s.Store.CountCustomers(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.RevenueTrend, err = s.trend(ctx, d.GeneratedAt); err != nil {
		return Dashboard{}, err
	}
	if d.CategorySales, err = s.Store.CategorySales(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.RecentOrders, err = s.Store.RecentOrders(ctx, RecentOrders); err != nil {
		return Dashboard{}, err
	}
	if d.CategorySales == nil {
		d.CategorySales = []CategorySales{}
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []orders.Order{}
	}
	return d, nil
}

// trend returns one bucket per UTC day, oldest first, ending today.
func (s *Service) trend(ctx context.Context, now time.Time) ([]DayRevenue, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]DayRevenue, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		rev, n, err := s.Store.RevenueBetween(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		out = append(out, DayRevenue{Date: from.Format("2006-01-02"), Revenue: rev, Orders: n})
	}
	return out, nil
}

func (s *Service) OrderStats(ctx context.Context) (OrderStats, error) {
	by, err := s.Store.CountByStatus(ctx)
	if err != nil {
		return OrderStats{}, apperr.Internal("count orders", err)
	}
	rev, err := s.Store.Revenue(ctx)
	if err != nil {
		return OrderStats{}, apperr.Internal("sum revenue", err)
	}
	st := OrderStats{ByStatus: by, Revenue: rev}
	for _, n := range by {
		st.Total += n
	}
	return st, nil
}
