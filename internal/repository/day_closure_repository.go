package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type DayClosureRepository struct {
	DB *db.Postgres
}

const dayClosureColumns = `id, branch_id, closure_date, total_sales, total_cash, total_expense,
	total_net, total_commission, total_bonus, entries_count, employees_count,
	closed_by, closed_at, pdf_path, pdf_generated_at, notes`

// CreateAndLock closes a branch day inside one transaction: the day's entries
// are read FOR UPDATE, build turns that snapshot into the closure row, the row
// is inserted and every entry for the (branch, date) pair is locked. Either
// the closure exists with all its entries locked, or nothing changed. The
// unique index on (branch_id, closure_date) turns a concurrent duplicate into
// ErrDayAlreadyClosed.
func (r DayClosureRepository) CreateAndLock(ctx context.Context, branchID int64, date time.Time, build func(entries []domain.DailyEntry) domain.DayClosure) (*domain.DayClosure, error) {
	day := date.Format("2006-01-02")
	var out *domain.DayClosure
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+dailyEntryColumns+`
			FROM daily_entries
			WHERE deleted_at IS NULL AND branch_id = $1 AND entry_date = $2
			ORDER BY employee_id ASC
			FOR UPDATE
		`, branchID, day)
		if err != nil {
			return err
		}
		entries, err := collectDailyEntries(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return domain.ErrNoEntriesToClose
		}

		closure := build(entries)
		row := tx.QueryRow(ctx, `
			INSERT INTO day_closures
				(branch_id, closure_date, total_sales, total_cash, total_expense, total_net,
				 total_commission, total_bonus, entries_count, employees_count, closed_by, closed_at, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id, closed_at
		`, branchID, day, closure.TotalSales, closure.TotalCash,
			closure.TotalExpense, closure.TotalNet, closure.TotalCommission, closure.TotalBonus,
			closure.EntriesCount, closure.EmployeesCount, closure.ClosedBy, closure.ClosedAt, closure.Notes)
		created := closure
		if err := row.Scan(&created.ID, &created.ClosedAt); err != nil {
			if db.IsUniqueViolation(err) {
				return domain.ErrDayAlreadyClosed
			}
			return err
		}

		created.PDFPath = fmt.Sprintf("/day-closures/%d/pdf", created.ID)
		if _, err := tx.Exec(ctx, `
			UPDATE day_closures SET pdf_path = $2 WHERE id = $1
		`, created.ID, created.PDFPath); err != nil {
			return err
		}

		cmd, err := tx.Exec(ctx, `
			UPDATE daily_entries
			SET is_locked = true, locked_at = $3, locked_by = $4
			WHERE deleted_at IS NULL AND branch_id = $1 AND entry_date = $2
		`, branchID, day, created.ClosedAt, created.ClosedBy)
		if err != nil {
			return err
		}
		if int(cmd.RowsAffected()) != len(entries) {
			// an entry appeared or vanished after the snapshot; abort
			return fmt.Errorf("close day %s for branch %d: entries changed during close", day, branchID)
		}

		out = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r DayClosureRepository) GetByID(ctx context.Context, id int64) (*domain.DayClosure, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+dayClosureColumns+`
		FROM day_closures
		WHERE id = $1
	`, id)
	return scanDayClosure(row)
}

func (r DayClosureRepository) ExistsForBranchDate(ctx context.Context, branchID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM day_closures WHERE branch_id = $1 AND closure_date = $2)
	`, branchID, date.Format("2006-01-02")).Scan(&exists)
	return exists, err
}

type DayClosureFilter struct {
	BranchID *int64
	From     *time.Time
	To       *time.Time
}

func (r DayClosureRepository) List(ctx context.Context, f DayClosureFilter, limit, offset int) ([]domain.DayClosure, int, error) {
	var from, to *string
	if f.From != nil {
		s := f.From.Format("2006-01-02")
		from = &s
	}
	if f.To != nil {
		s := f.To.Format("2006-01-02")
		to = &s
	}
	var total int
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT count(*) FROM day_closures
		WHERE ($1::bigint IS NULL OR branch_id = $1)
		  AND ($2::date IS NULL OR closure_date >= $2)
		  AND ($3::date IS NULL OR closure_date <= $3)
	`, f.BranchID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+dayClosureColumns+`
		FROM day_closures
		WHERE ($1::bigint IS NULL OR branch_id = $1)
		  AND ($2::date IS NULL OR closure_date >= $2)
		  AND ($3::date IS NULL OR closure_date <= $3)
		ORDER BY closure_date DESC, id DESC
		LIMIT $4 OFFSET $5
	`, f.BranchID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []domain.DayClosure
	for rows.Next() {
		c, err := scanDayClosure(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

// StampPDFGenerated sets pdf_generated_at on first render only.
func (r DayClosureRepository) StampPDFGenerated(ctx context.Context, id int64, at time.Time) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE day_closures SET pdf_generated_at = $2
		WHERE id = $1 AND pdf_generated_at IS NULL
	`, id, at)
	return err
}

func scanDayClosure(row pgx.Row) (*domain.DayClosure, error) {
	var c domain.DayClosure
	if err := row.Scan(&c.ID, &c.BranchID, &c.Date, &c.TotalSales, &c.TotalCash, &c.TotalExpense,
		&c.TotalNet, &c.TotalCommission, &c.TotalBonus, &c.EntriesCount, &c.EmployeesCount,
		&c.ClosedBy, &c.ClosedAt, &c.PDFPath, &c.PDFGeneratedAt, &c.Notes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
