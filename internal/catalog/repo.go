package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, price, sale_price, category, colors, images,
	is_active, is_featured, rating_average, rating_count, total_stock, sold_count, created_at, updated_at`

// whitelist ORDER BY, jangan pernah interpolasi input client
var orderBy = map[SortOrder]string{
	SortNewest:     "created_at DESC, id",
	SortPriceAsc:   "COALESCE(sale_price, price) ASC, id",
	SortPriceDesc:  "COALESCE(sale_price, price) DESC, id",
	SortName:       "name ASC, id",
	SortRating:     "rating_average DESC, rating_count DESC, id",
	SortPopularity: "sold_count DESC, id",
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]Product, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !q.IncludeInactive {
		where = append(where, "is_active")
	}
	if q.Category != "" {
		where = append(where, "category = "+arg(string(q.Category)))
	}
	if q.MinPrice != nil {
		where = append(where, "COALESCE(sale_price, price) >= "+arg(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		where = append(where, "COALESCE(sale_price, price) <= "+arg(*q.MaxPrice))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if q.Featured != nil {
		where = append(where, "is_featured = "+arg(*q.Featured))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sort, ok := orderBy[q.Sort]
	if !ok {
		sort = orderBy[SortNewest]
	}
	limit := arg(q.Limit)
	offset := arg((q.Page - 1) * q.Limit)
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products`+cond+
		` ORDER BY `+sort+` LIMIT `+limit+` OFFSET `+offset, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadSizes(ctx, r.DB, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	ps := []Product{p}
	if err := r.loadSizes(ctx, r.DB, ps); err != nil {
		return Product{}, err
	}
	return ps[0], nil
}

func (r *Repo) Insert(ctx context.Context, p Product) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO products(id, name, description, price, sale_price, category, colors, images,
			is_active, is_featured, total_stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.Name, p.Description, p.Price, p.SalePrice, string(p.Category), p.Colors, p.Images,
		p.IsActive, p.IsFeatured, p.TotalStock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	if err := writeSizes(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) Update(ctx context.Context, p Product) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, sale_price=$5, category=$6,
			colors=$7, images=$8, is_active=$9, is_featured=$10, total_stock=$11, updated_at=$12
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, p.SalePrice, string(p.Category),
		p.Colors, p.Images, p.IsActive, p.IsFeatured, p.TotalStock, p.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_sizes WHERE product_id=$1`, p.ID); err != nil {
		return err
	}
	if err := writeSizes(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) error {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func writeSizes(ctx context.Context, tx pgx.Tx, p Product) error {
	for i, s := range p.Sizes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_sizes(product_id, size, stock, sold_count, position)
			VALUES ($1,$2,$3,$4,$5)`, p.ID, string(s.Size), s.Stock, s.SoldCount, i); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repo) loadSizes(ctx context.Context, q querier, ps []Product) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ps))
	idx := make(map[string]int, len(ps))
	for i, p := range ps {
		ids = append(ids, p.ID)
		idx[p.ID] = i
		ps[i].Sizes = []SizeStock{}
	}
	rows, err := q.Query(ctx, `
		SELECT product_id::text, size, stock, sold_count FROM product_sizes
		WHERE product_id::text = ANY($1) ORDER BY product_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pid  string
			size string
			s    SizeStock
		)
		if err := rows.Scan(&pid, &size, &s.Stock, &s.SoldCount); err != nil {
			return err
		}
		s.Size = Size(size)
		i := idx[pid]
		ps[i].Sizes = append(ps[i].Sizes, s)
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p        Product
		sale     decimal.NullDecimal
		category string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &sale, &category, &p.Colors, &p.Images,
		&p.IsActive, &p.IsFeatured, &p.Rating.Average, &p.Rating.Count, &p.TotalStock, &p.SoldCount,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Category = Category(category)
	if sale.Valid {
		d := sale.Decimal
		p.SalePrice = &d
	}
	return p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
