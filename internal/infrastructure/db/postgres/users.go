package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/baechuer/event-hub/internal/domain"
)

const userColumns = `id, username, email, password, first_name, last_name, role, created_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		id   int64
		role string
	)
	if err := s.Scan(&id, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &role, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.ID = toID(id)
	u.Role = domain.Role(role)
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Get(ctx context.Context, id domain.ID) (domain.User, error) {
	n, ok := rowID(id)
	if !ok {
		return domain.User{}, domain.ErrNotFound("user")
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound("user")
	}
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (username, email, password, first_name, last_name, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+userColumns,
		u.Username, u.Email, u.Password, u.FirstName, u.LastName, string(u.Role), u.CreatedAt,
	)
	created, err := scanUser(row)
	if constraint, ok := uniqueConstraint(err); ok {
		field := "username"
		if strings.Contains(constraint, "email") {
			field = "email"
		}
		return domain.User{}, domain.ErrDuplicateUser(field)
	}
	return created, err
}

// UpdateProfile leaves columns whose input field is nil untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id domain.ID, in domain.ProfileInput) (domain.User, error) {
	n, ok := rowID(id)
	if !ok {
		return domain.User{}, domain.ErrNotFound("user")
	}
	row := r.db.QueryRowContext(ctx, `
UPDATE users SET
  first_name = COALESCE($2, first_name),
  last_name  = COALESCE($3, last_name),
  email      = COALESCE($4, email)
WHERE id = $1
RETURNING `+userColumns,
		n, in.FirstName, in.LastName, in.Email,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound("user")
	}
	if _, dup := uniqueConstraint(err); dup {
		return domain.User{}, domain.ErrDuplicateUser("email")
	}
	return u, err
}
