package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"salonops-backend/internal/db"
)

// ReportRepository is a read-only projection over daily entries, closures
// and the ledger. It never writes.
type ReportRepository struct {
	DB *db.Postgres
}

type BranchDashboard struct {
	BranchID        int64
	Date            time.Time
	TotalSales      decimal.Decimal
	TotalCash       decimal.Decimal
	TotalExpense    decimal.Decimal
	TotalNet        decimal.Decimal
	TotalCommission decimal.Decimal
	TotalBonus      decimal.Decimal
	EntriesCount    int
	EmployeesCount  int
	DayClosed       bool
	PendingAdvances int
}

// Dashboard aggregates the live state of one branch day. When the day is
// already closed the figures match the frozen closure snapshot because the
// underlying entries are locked.
func (r ReportRepository) Dashboard(ctx context.Context, branchID int64, date time.Time) (BranchDashboard, error) {
	d := BranchDashboard{BranchID: branchID, Date: date}
	day := date.Format("2006-01-02")
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(sales), 0),
			COALESCE(SUM(cash), 0),
			COALESCE(SUM(expense), 0),
			COALESCE(SUM(net), 0),
			COALESCE(SUM(commission), 0),
			COALESCE(SUM(bonus), 0),
			COUNT(*),
			COUNT(DISTINCT employee_id)
		FROM daily_entries
		WHERE deleted_at IS NULL AND branch_id = $1 AND entry_date = $2
	`, branchID, day).Scan(&d.TotalSales, &d.TotalCash, &d.TotalExpense, &d.TotalNet,
		&d.TotalCommission, &d.TotalBonus, &d.EntriesCount, &d.EmployeesCount)
	if err != nil {
		return d, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM day_closures WHERE branch_id = $1 AND closure_date = $2)
	`, branchID, day).Scan(&d.DayClosed); err != nil {
		return d, err
	}

	err = r.DB.Pool.QueryRow(ctx, `
		SELECT count(*) FROM advance_requests
		WHERE deleted_at IS NULL AND branch_id = $1 AND status = 'pending'
	`, branchID).Scan(&d.PendingAdvances)
	return d, err
}
