package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type BranchRepository struct {
	DB *db.Postgres
}

type CreateBranchInput struct {
	Name    string
	Code    string
	Address string
	Phone   string
}

func (r BranchRepository) Create(ctx context.Context, in CreateBranchInput) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO branches (name, code, address, phone, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4, true, now(), now())
		RETURNING id, name, code, address, phone, active, created_at, updated_at
	`, in.Name, in.Code, in.Address, in.Phone).Scan(
		&b.ID, &b.Name, &b.Code, &b.Address, &b.Phone, &b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrDuplicateEntry
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, code, address, phone, active, created_at, updated_at
		FROM branches
		WHERE deleted_at IS NULL AND id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.Phone, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM branches WHERE deleted_at IS NULL AND id = $1)
	`, id).Scan(&exists)
	return exists, err
}

func (r BranchRepository) List(ctx context.Context, limit, offset int) ([]domain.Branch, int, error) {
	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM branches WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, code, address, phone, active, created_at, updated_at
		FROM branches
		WHERE deleted_at IS NULL
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.Phone, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

type UpdateBranchInput struct {
	Name    *string
	Code    *string
	Address *string
	Phone   *string
	Active  *bool
}

func (r BranchRepository) Update(ctx context.Context, id int64, in UpdateBranchInput) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE branches SET
			name    = COALESCE($2, name),
			code    = COALESCE($3, code),
			address = COALESCE($4, address),
			phone   = COALESCE($5, phone),
			active  = COALESCE($6, active),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1
		RETURNING id, name, code, address, phone, active, created_at, updated_at
	`, id, in.Name, in.Code, in.Address, in.Phone, in.Active).Scan(
		&b.ID, &b.Name, &b.Code, &b.Address, &b.Phone, &b.Active, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE branches SET deleted_at = now() WHERE deleted_at IS NULL AND id = $1
	`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Name resolves a branch display name for ledger listings.
func (r BranchRepository) Name(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.DB.Pool.QueryRow(ctx, `SELECT name FROM branches WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return name, err
}
