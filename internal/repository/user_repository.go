package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, branch_id, name, email, role, password_hash, active, created_at, updated_at
		FROM users
		WHERE deleted_at IS NULL AND lower(email) = lower($1)
	`, email)
	return scanUser(row)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, branch_id, name, email, role, password_hash, active, created_at, updated_at
		FROM users
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var branchID pgtype.Int8
	var role string
	if err := row.Scan(&u.ID, &branchID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.UserRole(role)
	if branchID.Valid {
		u.BranchID = &branchID.Int64
	}
	return &u, nil
}
