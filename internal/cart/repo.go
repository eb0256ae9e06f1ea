package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Get(ctx context.Context, userID string) (Cart, error) {
	c := Cart{UserID: userID}
	err := r.DB.QueryRow(ctx, `SELECT items, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.Items, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		c.Items = []Item{}
		return c, nil
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Save upserts the whole cart document, totals included.
func (r *Repo) Save(ctx context.Context, c Cart) error {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO carts(user_id, items, total_items, total_price, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id) DO UPDATE
		SET items=EXCLUDED.items, total_items=EXCLUDED.total_items,
		    total_price=EXCLUDED.total_price, updated_at=EXCLUDED.updated_at`,
		c.UserID, items, c.TotalItems, c.TotalPrice, c.UpdatedAt)
	return err
}
