package reporting

import (
	"context"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var rev decimal.Decimal
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders WHERE order_status <> 'cancelled'`).Scan(&rev)
	return rev, err
}

func (r *Repo) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	var (
		rev decimal.Decimal
		n   int
	)
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM orders
		WHERE order_status <> 'cancelled' AND created_at >= $1 AND created_at < $2`, from, to).Scan(&rev, &n)
	return rev, n, err
}

func (r *Repo) CountByStatus(ctx context.Context) (map[orders.Status]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT order_status, COUNT(*) FROM orders GROUP BY order_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[orders.Status]int{}
	for rows.Next() {
		var (
			st string
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[orders.Status(st)] = n
	}
	return out, rows.Err()
}

func (r *Repo) CountCustomers(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role='user'`).Scan(&n)
	return n, err
}

// CategorySales dipecah dari snapshot item order, kategori diambil dari
// produk (produk yang sudah soft-delete tetap ikut).
func (r *Repo) CategorySales(ctx context.Context) ([]CategorySales, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.category,
			SUM((it->>'quantity')::int),
			SUM((it->>'price')::numeric * (it->>'quantity')::int)
		FROM orders o
		CROSS JOIN LATERAL jsonb_array_elements(o.items) it
		JOIN products p ON p.id = (it->>'productId')::uuid
		WHERE o.order_status <> 'cancelled'
		GROUP BY p.category
		ORDER BY 3 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategorySales
	for rows.Next() {
		var (
			cat string
			cs  CategorySales
		)
		if err := rows.Scan(&cat, &cs.Units, &cs.Revenue); err != nil {
			return nil, err
		}
		cs.Category = catalog.Category(cat)
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *Repo) RecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	out, _, err := (&orders.Repo{DB: r.DB}).List(ctx, orders.ListQuery{Page: 1, Limit: n})
	return out, err
}
