package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salonops-backend/internal/domain"
)

// ClosureStore is the persistence surface the closure engine needs.
// CreateAndLock owns the whole close: it snapshots the day's entries under
// row locks, calls build to turn the snapshot into the closure row, inserts
// it and locks every entry, all inside one transaction.
type ClosureStore interface {
	ExistsForBranchDate(ctx context.Context, branchID int64, date time.Time) (bool, error)
	CreateAndLock(ctx context.Context, branchID int64, date time.Time, build func(entries []domain.DailyEntry) domain.DayClosure) (*domain.DayClosure, error)
	GetByID(ctx context.Context, id int64) (*domain.DayClosure, error)
	StampPDFGenerated(ctx context.Context, id int64, at time.Time) error
}

// ClosureRenderer turns a closure snapshot into a document.
type ClosureRenderer interface {
	Render(closure domain.DayClosure) ([]byte, error)
}

// Notifier posts an in-app notification; failures are logged, not surfaced.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, typ domain.NotificationType) error
}

// ClosureService snapshots a branch day into an immutable summary and locks
// the underlying entries. A (branch, date) pair moves Open -> Closed exactly
// once; there is no way back.
type ClosureService struct {
	closures ClosureStore
	renderer ClosureRenderer
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewClosureService(closures ClosureStore, renderer ClosureRenderer, notifier Notifier, logger *slog.Logger) *ClosureService {
	return &ClosureService{
		closures: closures,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *ClosureService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create closes a branch day: totals are summed over the then-current
// entries, the closure row is inserted and every entry is locked, all in one
// transaction.
func (s *ClosureService) Create(ctx context.Context, branchID int64, date time.Time, notes string, actorID int64) (*domain.DayClosure, error) {
	if branchID <= 0 {
		return nil, fmt.Errorf("%w: branch is required", domain.ErrValidation)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	// fast path; the unique index and the in-transaction snapshot are the
	// real guard against races
	closed, err := s.closures.ExistsForBranchDate(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, domain.ErrDayAlreadyClosed
	}

	created, err := s.closures.CreateAndLock(ctx, branchID, date, func(entries []domain.DailyEntry) domain.DayClosure {
		closure := domain.DayClosure{
			BranchID: branchID,
			Date:     date,
			ClosedBy: actorID,
			ClosedAt: s.now(),
			Notes:    notes,
		}
		employees := make(map[int64]struct{}, len(entries))
		for _, e := range entries {
			closure.TotalSales = closure.TotalSales.Add(e.Sales)
			closure.TotalCash = closure.TotalCash.Add(e.Cash)
			closure.TotalExpense = closure.TotalExpense.Add(e.Expense)
			closure.TotalNet = closure.TotalNet.Add(e.Net)
			closure.TotalCommission = closure.TotalCommission.Add(e.Commission)
			closure.TotalBonus = closure.TotalBonus.Add(e.Bonus)
			employees[e.EmployeeID] = struct{}{}
		}
		closure.EntriesCount = len(entries)
		closure.EmployeesCount = len(employees)
		return closure
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Day %s closed with %d entries, total sales %s",
			date.Format("2006-01-02"), created.EntriesCount, created.TotalSales.StringFixed(2))
		if err := s.notifier.Notify(ctx, actorID, "Day closed", msg, domain.NotificationInfo); err != nil {
			s.logger.Warn("closure notification failed", "err", err, "closure_id", created.ID)
		}
	}
	return created, nil
}

func (s *ClosureService) Get(ctx context.Context, id int64) (*domain.DayClosure, error) {
	return s.closures.GetByID(ctx, id)
}

// PDF renders the closure document, stamping pdf_generated_at on first
// access. The artifact depends only on the frozen closure row, so repeated
// renders return identical bytes.
func (s *ClosureService) PDF(ctx context.Context, id int64) ([]byte, *domain.DayClosure, error) {
	closure, err := s.closures.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if closure.PDFGeneratedAt == nil {
		if err := s.closures.StampPDFGenerated(ctx, id, s.now()); err != nil {
			return nil, nil, err
		}
	}
	data, err := s.renderer.Render(*closure)
	if err != nil {
		return nil, nil, err
	}
	return data, closure, nil
}
