package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/shopspring/decimal"
)

type fakeOrder struct {
	status orders.Status
	total  int64
	at     time.Time
}

type fakeStore struct {
	orders    []fakeOrder
	customers int
	calls     int
	fail      error
}

func (f *fakeStore) Revenue(context.Context) (decimal.Decimal, error) {
	f.calls++
	sum := decimal.Zero
	for _, o := range f.orders {
		if o.status != orders.StatusCancelled {
			sum = sum.Add(decimal.NewFromInt(o.total))
		}
	}
	return sum, f.fail
}

func (f *fakeStore) RevenueBetween(_ context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	sum, n := decimal.Zero, 0
	for _, o := range f.orders {
		if o.status != orders.StatusCancelled && !o.at.Before(from) && o.at.Before(to) {
			sum = sum.Add(decimal.NewFromInt(o.total))
			n++
		}
	}
	return sum, n, nil
}

func (f *fakeStore) CountByStatus(context.Context) (map[orders.Status]int, error) {
	out := map[orders.Status]int{}
	for _, o := range f.orders {
		out[o.status]++
	}
	return out, nil
}

func (f *fakeStore) CountCustomers(context.Context) (int, error) { return f.customers, nil }

func (f *fakeStore) CategorySales(context.Context) ([]CategorySales, error) {
	return []CategorySales{{Category: catalog.CategoryTShirts, Units: 3, Revenue: decimal.NewFromInt(3000)}}, nil
}

func (f *fakeStore) RecentOrders(context.Context, int) ([]orders.Order, error) { return nil, nil }

var now = time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)

func sample() *fakeStore {
	return &fakeStore{
		customers: 4,
		orders: []fakeOrder{
			{orders.StatusPending, 1180, now.Add(-time.Hour)},
			{orders.StatusDelivered, 500, now.AddDate(0, 0, -2)},
			{orders.StatusCancelled, 9999, now.AddDate(0, 0, -2)},
			{orders.StatusShipped, 700, now.AddDate(0, 0, -30)},
		},
	}
}

func TestDashboard(t *testing.T) {
	svc := NewService(sample(), nil)
	svc.Now = func() time.Time { return now }

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !d.TotalRevenue.Equal(decimal.NewFromInt(2380)) {
		t.Fatalf("revenue = %s, cancelled must be excluded", d.TotalRevenue)
	}
	if d.TotalOrders != 4 || d.PendingOrders != 1 || d.TotalCustomers != 4 {
		t.Fatalf("counts: %+v", d)
	}
	if len(d.RevenueTrend) != TrendDays {
		t.Fatalf("trend has %d days", len(d.RevenueTrend))
	}
	last, twoAgo := d.RevenueTrend[6], d.RevenueTrend[4]
	if last.Date != "2026-06-10" || !last.Revenue.Equal(decimal.NewFromInt(1180)) || last.Orders != 1 {
		t.Fatalf("today bucket = %+v", last)
	}
	if twoAgo.Date != "2026-06-08" || !twoAgo.Revenue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("two days ago bucket = %+v", twoAgo)
	}
	if d.RecentOrders == nil || len(d.CategorySales) != 1 {
		t.Fatalf("lists: %+v %+v", d.RecentOrders, d.CategorySales)
	}
}

func TestDashboardIsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	defer rdb.Close()

	store := sample()
	svc := NewService(store, rdb)
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	store.orders = append(store.orders, fakeOrder{orders.StatusPending, 100, now})
	second, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 || !second.TotalRevenue.Equal(first.TotalRevenue) {
		t.Fatalf("second call should hit the cache (calls=%d)", store.calls)
	}

	mr.FastForward(redisx.TTLAnalytics + time.Second)
	third, _ := svc.Dashboard(ctx)
	if !third.TotalRevenue.Equal(decimal.NewFromInt(2480)) {
		t.Fatalf("cache should expire, revenue = %s", third.TotalRevenue)
	}
}

func TestOrderStats(t *testing.T) {
	svc := NewService(sample(), nil)
	st, err := svc.OrderStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 4 || st.ByStatus[orders.StatusCancelled] != 1 || !st.Revenue.Equal(decimal.NewFromInt(2380)) {
		t.Fatalf("stats = %+v", st)
	}

	failing := sample()
	failing.fail = context.DeadlineExceeded
	if _, err := NewService(failing, nil).OrderStats(context.Background()); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("store error: got %v", err)
	}
}
