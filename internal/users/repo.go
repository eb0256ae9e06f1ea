package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type Repo struct{ DB *pgxpool.Pool }

const userCols = `id, email, name, phone, COALESCE(password_hash, ''), role, is_active, email_verified,
	COALESCE(otp_code, ''), otp_expires_at, otp_attempts, addresses, last_login_at, created_at, updated_at`

func (r *Repo) GetByID(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, strings.ToLower(email))
}

func (r *Repo) one(ctx context.Context, sql string, arg any) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *Repo) Create(ctx context.Context, u User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, name, phone, password_hash, role, is_active, email_verified,
			otp_code, otp_expires_at, otp_attempts, addresses, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,NULLIF($9,''),$10,$11,$12,$13,$14)`,
		u.ID, strings.ToLower(u.Email), u.Name, u.Phone, u.PasswordHash, string(u.Role), u.IsActive,
		u.EmailVerified, u.OTPCode, u.OTPExpiresAt, u.OTPAttempts, addresses(u), u.CreatedAt, u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

// Update writes every mutable column; callers load, modify and save.
func (r *Repo) Update(ctx context.Context, u User) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET name=$2, phone=$3, password_hash=NULLIF($4,''), role=$5, is_active=$6,
			email_verified=$7, otp_code=NULLIF($8,''), otp_expires_at=$9, otp_attempts=$10,
			addresses=$11, last_login_at=$12, updated_at=$13
		WHERE id=$1`,
		u.ID, u.Name, u.Phone, u.PasswordHash, string(u.Role), u.IsActive, u.EmailVerified,
		u.OTPCode, u.OTPExpiresAt, u.OTPAttempts, addresses(u), u.LastLoginAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]User, int, error) {
	search := "%" + strings.TrimSpace(q.Search) + "%"
	var total int
	if err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE role='user' AND (name ILIKE $1 OR email ILIKE $1)`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Query(ctx, `SELECT `+userCols+` FROM users
		WHERE role='user' AND (name ILIKE $1 OR email ILIKE $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, search, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func addresses(u User) []Address {
	if u.Addresses == nil {
		return []Address{}
	}
	return u.Addresses
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &role, &u.IsActive,
		&u.EmailVerified, &u.OTPCode, &u.OTPExpiresAt, &u.OTPAttempts, &u.Addresses, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}
