package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

// AdvanceStore is the persistence surface the advance workflow needs. The
// Approve implementation must run the status guard, the ledger post and the
// request update inside one transaction.
type AdvanceStore interface {
	Create(ctx context.Context, in repository.CreateAdvanceInput) (*domain.AdvanceRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.AdvanceRequest, error)
	Approve(ctx context.Context, in repository.ApproveAdvanceInput) (*domain.AdvanceRequest, *domain.LedgerEntry, error)
	Reject(ctx context.Context, id int64, actorID int64, reason string, at time.Time) (*domain.AdvanceRequest, error)
	Cancel(ctx context.Context, id int64, actorID int64, at time.Time) (*domain.AdvanceRequest, error)
}

// AdvanceService runs the pending -> approved/rejected/cancelled state
// machine. All three transitions are terminal; any call against a
// non-pending request fails with ErrNotPending.
type AdvanceService struct {
	advances  AdvanceStore
	employees EmployeeGetter
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewAdvanceService(advances AdvanceStore, employees EmployeeGetter, notifier Notifier, logger *slog.Logger) *AdvanceService {
	return &AdvanceService{advances: advances, employees: employees, notifier: notifier, logger: logger, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *AdvanceService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type CreateAdvanceParams struct {
	EmployeeID int64
	BranchID   int64
	Amount     decimal.Decimal
	Reason     string
	Attachment string
}

func (s *AdvanceService) Create(ctx context.Context, p CreateAdvanceParams) (*domain.AdvanceRequest, error) {
	if p.EmployeeID <= 0 {
		return nil, fmt.Errorf("%w: employee is required", domain.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	employee, err := s.employees.GetByID(ctx, p.EmployeeID)
	if err != nil {
		return nil, err
	}
	branchID := p.BranchID
	if branchID == 0 {
		branchID = employee.BranchID
	}
	if branchID != employee.BranchID {
		return nil, domain.ErrBranchMismatch
	}
	return s.advances.Create(ctx, repository.CreateAdvanceInput{
		EmployeeID: p.EmployeeID,
		BranchID:   branchID,
		Amount:     p.Amount.Round(2),
		Reason:     p.Reason,
		Attachment: p.Attachment,
	})
}

type ApproveAdvanceParams struct {
	RequestID     int64
	ActorID       int64
	DecisionNotes string
	PaymentDate   *time.Time
	PaymentMethod string
}

// Approve posts the ledger debit and stamps the request in one transaction.
// The amount comes from the stored request, never from the caller.
func (s *AdvanceService) Approve(ctx context.Context, p ApproveAdvanceParams) (*domain.AdvanceRequest, *domain.LedgerEntry, error) {
	request, err := s.advances.GetByID(ctx, p.RequestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != domain.AdvancePending {
		return nil, nil, domain.ErrNotPending
	}

	now := s.now()
	paymentDate := now
	if p.PaymentDate != nil {
		paymentDate = *p.PaymentDate
	}
	approved, entry, err := s.advances.Approve(ctx, repository.ApproveAdvanceInput{
		RequestID:     p.RequestID,
		ActorID:       p.ActorID,
		DecisionNotes: p.DecisionNotes,
		PaymentDate:   paymentDate,
		PaymentMethod: p.PaymentMethod,
		ProcessedAt:   now,
		LedgerInput: repository.CreateLedgerInput{
			Party:         domain.Party{Kind: domain.PartyEmployee, ID: request.EmployeeID},
			Date:          paymentDate,
			Direction:     domain.DirectionDebit,
			Amount:        request.Amount,
			Description:   fmt.Sprintf("Advance payment for request #%d", request.ID),
			Category:      "advance",
			Source:        domain.SourceAdvanceRequest,
			Reference:     &domain.Reference{Type: "advance_request", ID: request.ID},
			PaymentMethod: p.PaymentMethod,
			Status:        domain.LedgerConfirmed,
			CreatedBy:     p.ActorID,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("Advance request #%d approved for %s", approved.ID, approved.Amount.StringFixed(2))
		if err := s.notifier.Notify(ctx, p.ActorID, "Advance approved", msg, domain.NotificationInfo); err != nil {
			s.logger.Warn("advance notification failed", "err", err, "request_id", approved.ID)
		}
	}
	return approved, entry, nil
}

// Reject marks a pending request rejected; the ledger is never touched.
func (s *AdvanceService) Reject(ctx context.Context, requestID, actorID int64, reason string) (*domain.AdvanceRequest, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	return s.advances.Reject(ctx, requestID, actorID, reason, s.now())
}

// Cancel withdraws a pending request; the ledger is never touched.
func (s *AdvanceService) Cancel(ctx context.Context, requestID, actorID int64) (*domain.AdvanceRequest, error) {
	return s.advances.Cancel(ctx, requestID, actorID, s.now())
}
