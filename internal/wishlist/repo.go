package wishlist

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT w.product_id::text FROM wishlist w
		JOIN products p ON p.id = w.product_id AND p.is_active
		WHERE w.user_id=$1 ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) Add(ctx context.Context, userID, productID string, at time.Time) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO wishlist(user_id, product_id, added_at) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID, at)
	return err
}

func (r *Repo) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM wishlist WHERE user_id=$1 AND product_id::text=$2`, userID, productID)
	return err
}
