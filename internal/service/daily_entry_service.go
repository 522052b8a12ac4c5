package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

// EmployeeGetter resolves employees for branch-membership and rate checks.
type EmployeeGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// DailyEntryStore is the persistence surface the daily entry service needs.
type DailyEntryStore interface {
	Create(ctx context.Context, in repository.CreateDailyEntryInput) (*domain.DailyEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.DailyEntry, error)
	ExistsForEmployeeDate(ctx context.Context, employeeID int64, date time.Time) (bool, error)
	Update(ctx context.Context, id int64, in repository.UpdateDailyEntryInput) (*domain.DailyEntry, error)
	SoftDelete(ctx context.Context, id int64, actorID int64) error
	ListForEmployeeRange(ctx context.Context, employeeID int64, from, to time.Time) ([]domain.DailyEntry, error)
}

// ClosureChecker answers whether a branch day is already closed.
type ClosureChecker interface {
	ExistsForBranchDate(ctx context.Context, branchID int64, date time.Time) (bool, error)
}

// DailyEntryService enforces the one-entry-per-employee-per-day rule and the
// day lock. Commission and net are always recomputed here, never accepted
// from the caller.
type DailyEntryService struct {
	entries   DailyEntryStore
	employees EmployeeGetter
	closures  ClosureChecker
	now       func() time.Time
}

func NewDailyEntryService(entries DailyEntryStore, employees EmployeeGetter, closures ClosureChecker) *DailyEntryService {
	return &DailyEntryService{entries: entries, employees: employees, closures: closures, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *DailyEntryService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type CreateDailyEntryParams struct {
	ActorID           int64
	EmployeeID        int64
	BranchID          int64
	Date              time.Time
	Sales             decimal.Decimal
	Cash              decimal.Decimal
	Expense           decimal.Decimal
	CommissionRate    *decimal.Decimal
	Bonus             decimal.Decimal
	BonusReason       string
	Note              string
	TransactionsCount int
	Source            domain.EntrySource
}

func (p CreateDailyEntryParams) validate() error {
	if p.EmployeeID <= 0 || p.BranchID <= 0 {
		return fmt.Errorf("%w: employee and branch are required", domain.ErrValidation)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if p.Sales.IsNegative() || p.Cash.IsNegative() || p.Expense.IsNegative() || p.Bonus.IsNegative() {
		return fmt.Errorf("%w: money fields cannot be negative", domain.ErrValidation)
	}
	if p.CommissionRate != nil && p.CommissionRate.IsNegative() {
		return fmt.Errorf("%w: commission rate cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (s *DailyEntryService) Create(ctx context.Context, p CreateDailyEntryParams) (*domain.DailyEntry, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	employee, err := s.employees.GetByID(ctx, p.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee.BranchID != p.BranchID {
		return nil, domain.ErrBranchMismatch
	}

	closed, err := s.closures.ExistsForBranchDate(ctx, p.BranchID, p.Date)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, domain.ErrDayLocked
	}

	// fast path; the unique index is the real guard against races
	exists, err := s.entries.ExistsForEmployeeDate(ctx, p.EmployeeID, p.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEntry
	}

	rate := domain.EffectiveRate(p.CommissionRate, employee.DefaultCommissionRate)
	source := p.Source
	if source == "" {
		source = domain.EntrySourceAPI
	}
	return s.entries.Create(ctx, repository.CreateDailyEntryInput{
		BranchID:          p.BranchID,
		EmployeeID:        p.EmployeeID,
		Date:              p.Date,
		Sales:             p.Sales,
		Cash:              p.Cash,
		Expense:           p.Expense,
		CommissionRate:    rate,
		Commission:        domain.Commission(p.Sales, rate),
		Bonus:             p.Bonus,
		BonusReason:       p.BonusReason,
		Note:              p.Note,
		TransactionsCount: p.TransactionsCount,
		Source:            source,
		Net:               domain.Net(p.Sales, p.Cash, p.Expense),
		CreatedBy:         p.ActorID,
	})
}

type UpdateDailyEntryParams struct {
	ActorID           int64
	Sales             *decimal.Decimal
	Cash              *decimal.Decimal
	Expense           *decimal.Decimal
	CommissionRate    *decimal.Decimal
	Bonus             *decimal.Decimal
	BonusReason       *string
	Note              *string
	TransactionsCount *int
}

// Update applies the given fields, leaving the rest unchanged, then
// recomputes commission and net from the effective values.
func (s *DailyEntryService) Update(ctx context.Context, id int64, p UpdateDailyEntryParams) (*domain.DailyEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnlocked(ctx, entry); err != nil {
		return nil, err
	}

	sales := pick(p.Sales, entry.Sales)
	cash := pick(p.Cash, entry.Cash)
	expense := pick(p.Expense, entry.Expense)
	rate := pick(p.CommissionRate, entry.CommissionRate)
	bonus := pick(p.Bonus, entry.Bonus)
	if sales.IsNegative() || cash.IsNegative() || expense.IsNegative() || bonus.IsNegative() || rate.IsNegative() {
		return nil, fmt.Errorf("%w: money fields cannot be negative", domain.ErrValidation)
	}

	in := repository.UpdateDailyEntryInput{
		Sales:             sales,
		Cash:              cash,
		Expense:           expense,
		CommissionRate:    rate,
		Commission:        domain.Commission(sales, rate),
		Bonus:             bonus,
		BonusReason:       entry.BonusReason,
		Note:              entry.Note,
		TransactionsCount: entry.TransactionsCount,
		Net:               domain.Net(sales, cash, expense),
		UpdatedBy:         p.ActorID,
	}
	if p.BonusReason != nil {
		in.BonusReason = *p.BonusReason
	}
	if p.Note != nil {
		in.Note = *p.Note
	}
	if p.TransactionsCount != nil {
		in.TransactionsCount = *p.TransactionsCount
	}
	return s.entries.Update(ctx, id, in)
}

func (s *DailyEntryService) Delete(ctx context.Context, id int64, actorID int64) error {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureUnlocked(ctx, entry); err != nil {
		return err
	}
	return s.entries.SoftDelete(ctx, id, actorID)
}

func (s *DailyEntryService) ensureUnlocked(ctx context.Context, entry *domain.DailyEntry) error {
	if entry.IsLocked {
		return domain.ErrDayLocked
	}
	closed, err := s.closures.ExistsForBranchDate(ctx, entry.BranchID, entry.Date)
	if err != nil {
		return err
	}
	if closed {
		return domain.ErrDayLocked
	}
	return nil
}

// DayStat is one day's figure inside an employee stats report.
type DayStat struct {
	Date  time.Time
	Sales decimal.Decimal
}

// EmployeeStats aggregates an employee's entries over a period.
type EmployeeStats struct {
	EmployeeID        int64
	From              time.Time
	To                time.Time
	TotalSales        decimal.Decimal
	TotalCash         decimal.Decimal
	TotalExpense      decimal.Decimal
	TotalNet          decimal.Decimal
	TotalCommission   decimal.Decimal
	TotalBonus        decimal.Decimal
	TotalEarnings     decimal.Decimal
	WorkingDays       int
	PeriodDays        int
	ZeroDays          int
	BestDay           *DayStat
	WorstDay          *DayStat
	AvgSalesPerDay    decimal.Decimal
	AvgNetPerDay      decimal.Decimal
	AvgCommissionRate decimal.Decimal
}

// Stats computes period aggregates for one employee. The average commission
// rate is weighted by sales (total commission over total sales), matching
// the analytics convention used elsewhere.
func (s *DailyEntryService) Stats(ctx context.Context, employeeID int64, from, to time.Time) (EmployeeStats, error) {
	stats := EmployeeStats{EmployeeID: employeeID, From: from, To: to}
	if from.After(to) {
		return stats, fmt.Errorf("%w: from must not be after to", domain.ErrValidation)
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return stats, err
	}

	entries, err := s.entries.ListForEmployeeRange(ctx, employeeID, from, to)
	if err != nil {
		return stats, err
	}

	stats.PeriodDays = int(to.Sub(from).Hours()/24) + 1
	stats.WorkingDays = len(entries)
	stats.ZeroDays = stats.PeriodDays - stats.WorkingDays

	for _, e := range entries {
		stats.TotalSales = stats.TotalSales.Add(e.Sales)
		stats.TotalCash = stats.TotalCash.Add(e.Cash)
		stats.TotalExpense = stats.TotalExpense.Add(e.Expense)
		stats.TotalNet = stats.TotalNet.Add(e.Net)
		stats.TotalCommission = stats.TotalCommission.Add(e.Commission)
		stats.TotalBonus = stats.TotalBonus.Add(e.Bonus)

		day := DayStat{Date: e.Date, Sales: e.Sales}
		if stats.BestDay == nil || e.Sales.GreaterThan(stats.BestDay.Sales) {
			d := day
			stats.BestDay = &d
		}
		if stats.WorstDay == nil || e.Sales.LessThan(stats.WorstDay.Sales) {
			d := day
			stats.WorstDay = &d
		}
	}
	stats.TotalEarnings = stats.TotalCommission.Add(stats.TotalBonus)

	if stats.WorkingDays > 0 {
		days := decimal.NewFromInt(int64(stats.WorkingDays))
		stats.AvgSalesPerDay = stats.TotalSales.Div(days).Round(2)
		stats.AvgNetPerDay = stats.TotalNet.Div(days).Round(2)
	}
	stats.AvgCommissionRate = domain.WeightedCommissionRate(stats.TotalCommission, stats.TotalSales)
	return stats, nil
}

func pick(override *decimal.Decimal, current decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return current
}
