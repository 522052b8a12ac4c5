package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

const employeeColumns = `id, branch_id, name, role, phone, email, join_date, default_commission_rate, active, created_at, updated_at`

type CreateEmployeeInput struct {
	BranchID              int64
	Name                  string
	Role                  string
	Phone                 string
	Email                 string
	JoinDate              time.Time
	DefaultCommissionRate *decimal.Decimal
}

func (r EmployeeRepository) Create(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO employees (branch_id, name, role, phone, email, join_date, default_commission_rate, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, true, now(), now())
		RETURNING `+employeeColumns+`
	`, in.BranchID, in.Name, in.Role, in.Phone, in.Email, in.JoinDate.Format("2006-01-02"), in.DefaultCommissionRate)
	return scanEmployee(row)
}

func (r EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	return scanEmployee(row)
}

func (r EmployeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM employees WHERE deleted_at IS NULL AND id = $1)
	`, id).Scan(&exists)
	return exists, err
}

func (r EmployeeRepository) List(ctx context.Context, branchID *int64, limit, offset int) ([]domain.Employee, int, error) {
	var total int
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT count(*) FROM employees
		WHERE deleted_at IS NULL AND ($1::bigint IS NULL OR branch_id = $1)
	`, branchID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE deleted_at IS NULL AND ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, branchID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

type UpdateEmployeeInput struct {
	Name                  *string
	Role                  *string
	Phone                 *string
	Email                 *string
	DefaultCommissionRate *decimal.Decimal
	Active                *bool
}

func (r EmployeeRepository) Update(ctx context.Context, id int64, in UpdateEmployeeInput) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE employees SET
			name  = COALESCE($2, name),
			role  = COALESCE($3, role),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			default_commission_rate = COALESCE($6, default_commission_rate),
			active = COALESCE($7, active),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1
		RETURNING `+employeeColumns+`
	`, id, in.Name, in.Role, in.Phone, in.Email, in.DefaultCommissionRate, in.Active)
	return scanEmployee(row)
}

func (r EmployeeRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE employees SET deleted_at = now() WHERE deleted_at IS NULL AND id = $1
	`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Name resolves an employee display name for ledger listings.
func (r EmployeeRepository) Name(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.DB.Pool.QueryRow(ctx, `SELECT name FROM employees WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return name, err
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.BranchID, &e.Name, &e.Role, &e.Phone, &e.Email, &e.JoinDate, &e.DefaultCommissionRate, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
