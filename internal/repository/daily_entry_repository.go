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

type DailyEntryRepository struct {
	DB *db.Postgres
}

const dailyEntryColumns = `id, branch_id, employee_id, entry_date, sales, cash, expense,
	commission_rate, commission, bonus, bonus_reason, note, transactions_count, source, net,
	is_locked, locked_at, locked_by, created_by, updated_by, created_at, updated_at`

type CreateDailyEntryInput struct {
	BranchID          int64
	EmployeeID        int64
	Date              time.Time
	Sales             decimal.Decimal
	Cash              decimal.Decimal
	Expense           decimal.Decimal
	CommissionRate    decimal.Decimal
	Commission        decimal.Decimal
	Bonus             decimal.Decimal
	BonusReason       string
	Note              string
	TransactionsCount int
	Source            domain.EntrySource
	Net               decimal.Decimal
	CreatedBy         int64
}

// Create inserts a daily entry. The unique index on (employee_id, entry_date)
// is the real duplicate guard, and the NOT EXISTS clause refuses the insert
// once the branch day is closed; the service-level checks are only fast paths.
func (r DailyEntryRepository) Create(ctx context.Context, in CreateDailyEntryInput) (*domain.DailyEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO daily_entries
			(branch_id, employee_id, entry_date, sales, cash, expense, commission_rate, commission,
			 bonus, bonus_reason, note, transactions_count, source, net, is_locked, created_by, created_at, updated_at)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, false, $15, now(), now()
		WHERE NOT EXISTS (
			SELECT 1 FROM day_closures WHERE branch_id = $1 AND closure_date = $3
		)
		RETURNING `+dailyEntryColumns+`
	`, in.BranchID, in.EmployeeID, in.Date.Format("2006-01-02"), in.Sales, in.Cash, in.Expense,
		in.CommissionRate, in.Commission, in.Bonus, in.BonusReason, in.Note, in.TransactionsCount,
		string(in.Source), in.Net, in.CreatedBy)
	entry, err := scanDailyEntry(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrDuplicateEntry
		}
		if errors.Is(err, domain.ErrNotFound) {
			// zero rows: a closure landed between the service check and here
			return nil, domain.ErrDayLocked
		}
		return nil, err
	}
	return entry, nil
}

func (r DailyEntryRepository) GetByID(ctx context.Context, id int64) (*domain.DailyEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+dailyEntryColumns+`
		FROM daily_entries
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	return scanDailyEntry(row)
}

func (r DailyEntryRepository) ExistsForEmployeeDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM daily_entries
			WHERE deleted_at IS NULL AND employee_id = $1 AND entry_date = $2
		)
	`, employeeID, date.Format("2006-01-02")).Scan(&exists)
	return exists, err
}

type UpdateDailyEntryInput struct {
	Sales             decimal.Decimal
	Cash              decimal.Decimal
	Expense           decimal.Decimal
	CommissionRate    decimal.Decimal
	Commission        decimal.Decimal
	Bonus             decimal.Decimal
	BonusReason       string
	Note              string
	TransactionsCount int
	Net               decimal.Decimal
	UpdatedBy         int64
}

// Update persists recomputed fields. The lock guard runs in the same
// statement so a concurrently locked row is never overwritten.
func (r DailyEntryRepository) Update(ctx context.Context, id int64, in UpdateDailyEntryInput) (*domain.DailyEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE daily_entries SET
			sales = $2, cash = $3, expense = $4, commission_rate = $5, commission = $6,
			bonus = $7, bonus_reason = $8, note = $9, transactions_count = $10, net = $11,
			updated_by = $12, updated_at = now()
		WHERE deleted_at IS NULL AND id = $1 AND is_locked = false
		RETURNING `+dailyEntryColumns+`
	`, id, in.Sales, in.Cash, in.Expense, in.CommissionRate, in.Commission,
		in.Bonus, in.BonusReason, in.Note, in.TransactionsCount, in.Net, in.UpdatedBy)
	entry, err := scanDailyEntry(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDayLocked
		}
		return nil, err
	}
	return entry, nil
}

func (r DailyEntryRepository) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE daily_entries SET deleted_at = now(), updated_by = $2
		WHERE deleted_at IS NULL AND id = $1 AND is_locked = false
	`, id, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrDayLocked
	}
	return nil
}

func (r DailyEntryRepository) ListForEmployeeRange(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.DailyEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+dailyEntryColumns+`
		FROM daily_entries
		WHERE deleted_at IS NULL AND employee_id = $1 AND entry_date >= $2 AND entry_date <= $3
		ORDER BY entry_date ASC
	`, employeeID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDailyEntries(rows)
}

type DailyEntryFilter struct {
	BranchID   *int64
	EmployeeID *int64
	From       *time.Time
	To         *time.Time
}

func (r DailyEntryRepository) List(ctx context.Context, f DailyEntryFilter, limit, offset int) ([]domain.DailyEntry, int, error) {
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
		SELECT count(*) FROM daily_entries
		WHERE deleted_at IS NULL
		  AND ($1::bigint IS NULL OR branch_id = $1)
		  AND ($2::bigint IS NULL OR employee_id = $2)
		  AND ($3::date IS NULL OR entry_date >= $3)
		  AND ($4::date IS NULL OR entry_date <= $4)
	`, f.BranchID, f.EmployeeID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+dailyEntryColumns+`
		FROM daily_entries
		WHERE deleted_at IS NULL
		  AND ($1::bigint IS NULL OR branch_id = $1)
		  AND ($2::bigint IS NULL OR employee_id = $2)
		  AND ($3::date IS NULL OR entry_date >= $3)
		  AND ($4::date IS NULL OR entry_date <= $4)
		ORDER BY entry_date DESC, id DESC
		LIMIT $5 OFFSET $6
	`, f.BranchID, f.EmployeeID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectDailyEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectDailyEntries(rows pgx.Rows) ([]domain.DailyEntry, error) {
	var items []domain.DailyEntry
	for rows.Next() {
		entry, err := scanDailyEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *entry)
	}
	return items, rows.Err()
}

func scanDailyEntry(row pgx.Row) (*domain.DailyEntry, error) {
	var e domain.DailyEntry
	var source string
	if err := row.Scan(&e.ID, &e.BranchID, &e.EmployeeID, &e.Date, &e.Sales, &e.Cash, &e.Expense,
		&e.CommissionRate, &e.Commission, &e.Bonus, &e.BonusReason, &e.Note, &e.TransactionsCount,
		&source, &e.Net, &e.IsLocked, &e.LockedAt, &e.LockedBy, &e.CreatedBy, &e.UpdatedBy,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Source = domain.EntrySource(source)
	return &e, nil
}
