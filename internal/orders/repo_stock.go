package orders

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// reserveStock mengurangi stok per (produk, size) hanya kalau cukup.
// RowsAffected 0 berarti stok sudah diambil order lain.
func reserveStock(ctx context.Context, tx pgx.Tx, moves []StockMove) error {
	for _, m := range moves {
		ct, err := tx.Exec(ctx, `
			UPDATE product_sizes SET stock = stock - $3, sold_count = sold_count + $3
			WHERE product_id=$1 AND size=$2 AND stock >= $3`,
			m.ProductID, string(m.Size), m.Qty)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return &InsufficientStockError{ProductID: m.ProductID, Size: m.Size}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET sold_count = sold_count + $2,
				total_stock = (SELECT COALESCE(SUM(stock), 0) FROM product_sizes WHERE product_id=$1),
				updated_at = now()
			WHERE id=$1`, m.ProductID, m.Qty); err != nil {
			return err
		}
	}
	return nil
}

// releaseStock is the inverse of reserveStock, used on cancellation.
func releaseStock(ctx context.Context, tx pgx.Tx, moves []StockMove) error {
	for _, m := range moves {
		if _, err := tx.Exec(ctx, `
			UPDATE product_sizes SET stock = stock + $3, sold_count = GREATEST(sold_count - $3, 0)
			WHERE product_id=$1 AND size=$2`,
			m.ProductID, string(m.Size), m.Qty); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET sold_count = GREATEST(sold_count - $2, 0),
				total_stock = (SELECT COALESCE(SUM(stock), 0) FROM product_sizes WHERE product_id=$1),
				updated_at = now()
			WHERE id=$1`, m.ProductID, m.Qty); err != nil {
			return err
		}
	}
	return nil
}
