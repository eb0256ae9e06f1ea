package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, order_number, user_id, items, shipping_address, payment_method, payment_status,
	order_status, status_history, subtotal, tax, shipping, discount, total, source,
	tracking_carrier, tracking_number, delivered_at, cancelled_at, created_at, updated_at`

// Place: kurangi stok (conditional) -> insert order -> kosongkan cart, satu
// transaksi. Kalau ada satu size yang stoknya kurang, semua di-rollback.
func (r *Repo) Place(ctx context.Context, o *Order, clearCart bool) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := reserveStock(ctx, tx, StockMoves(o.Items)); err != nil {
		return err
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("order number: %w", err)
	}
	o.OrderNumber = FormatOrderNumber(o.CreatedAt, seq)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, order_number, user_id, items, shipping_address, payment_method,
			payment_status, order_status, status_history, subtotal, tax, shipping, discount, total,
			source, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		o.ID, o.OrderNumber, o.UserID, o.Items, o.ShippingAddress, string(o.PaymentInfo.Method),
		string(o.PaymentInfo.Status), string(o.Status), o.StatusHistory,
		o.Pricing.Subtotal, o.Pricing.Tax, o.Pricing.Shipping, o.Pricing.Discount, o.Pricing.Total,
		string(o.Source), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	if clearCart {
		if _, err := tx.Exec(ctx, `
			UPDATE carts SET items='[]', total_items=0, total_price=0, updated_at=$2
			WHERE user_id=$1`, o.UserID, o.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Order, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.UserID != "" {
		where = append(where, "user_id = "+arg(q.UserID))
	}
	if q.Status != "" {
		where = append(where, "order_status = "+arg(string(q.Status)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, "(order_number ILIKE "+p+" OR shipping_address->>'email' ILIKE "+p+")")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit := arg(q.Limit)
	offset := arg((q.Page - 1) * q.Limit)
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders`+cond+
		` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// SaveTransition: guard pakai status lama supaya dua update paralel tidak
// saling timpa; restock di transaksi yang sama.
func (r *Repo) SaveTransition(ctx context.Context, o Order, ch Change) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	carrier, number := "", ""
	if o.Tracking != nil {
		carrier, number = o.Tracking.Carrier, o.Tracking.Number
	}
	ct, err := tx.Exec(ctx, `
		UPDATE orders SET order_status=$3, payment_status=$4, status_history=$5,
			tracking_carrier=$6, tracking_number=$7, delivered_at=$8, cancelled_at=$9, updated_at=$10
		WHERE id=$1 AND order_status=$2`,
		o.ID, string(ch.From), string(o.Status), string(o.PaymentInfo.Status), o.StatusHistory,
		carrier, number, o.DeliveredAt, o.CancelledAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrStatusConflict
	}
	if ch.Restock {
		if err := releaseStock(ctx, tx, StockMoves(o.Items)); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                        Order
		method, payStatus, state string
		source                   string
		carrier, number          string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Items, &o.ShippingAddress, &method, &payStatus,
		&state, &o.StatusHistory, &o.Pricing.Subtotal, &o.Pricing.Tax, &o.Pricing.Shipping,
		&o.Pricing.Discount, &o.Pricing.Total, &source, &carrier, &number,
		&o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.PaymentInfo = PaymentInfo{Method: PaymentMethod(method), Status: PaymentStatus(payStatus)}
	o.Status = Status(state)
	o.Source = SourceKind(source)
	if carrier != "" || number != "" {
		o.Tracking = &Tracking{Carrier: carrier, Number: number}
	}
	return o, nil
}
