package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

// LedgerStore is the persistence surface the ledger service needs.
type LedgerStore interface {
	Create(ctx context.Context, in repository.CreateLedgerInput) (*domain.LedgerEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	SetStatus(ctx context.Context, id int64, status domain.LedgerStatus, actorID int64) (*domain.LedgerEntry, error)
	Balance(ctx context.Context, party domain.Party) (domain.BalanceSummary, error)
}

// PartyResolver verifies that employee/branch parties actually exist.
// Supplier and customer parties are pass-through: the ledger does not own
// those registries.
type PartyResolver interface {
	EmployeeExists(ctx context.Context, id int64) (bool, error)
	BranchExists(ctx context.Context, id int64) (bool, error)
}

// LedgerService posts debit/credit records against parties and computes
// balances on demand. Entries are immutable once written except for status
// transitions and soft delete.
type LedgerService struct {
	ledger  LedgerStore
	parties PartyResolver
	now     func() time.Time
}

func NewLedgerService(ledger LedgerStore, parties PartyResolver) *LedgerService {
	return &LedgerService{ledger: ledger, parties: parties, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *LedgerService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type PostLedgerParams struct {
	ActorID       int64
	Party         domain.Party
	Date          time.Time
	Direction     domain.LedgerDirection
	Amount        decimal.Decimal
	Description   string
	Category      string
	Source        domain.LedgerSource
	Reference     *domain.Reference
	PaymentMethod string
	Status        domain.LedgerStatus
}

// Post validates and persists a ledger entry, returning it together with the
// party's new balance.
func (s *LedgerService) Post(ctx context.Context, p PostLedgerParams) (*domain.LedgerEntry, domain.BalanceSummary, error) {
	var zero domain.BalanceSummary
	if !p.Party.Valid() {
		return nil, zero, fmt.Errorf("%w: invalid party", domain.ErrValidation)
	}
	if !p.Direction.Valid() {
		return nil, zero, fmt.Errorf("%w: direction must be debit or credit", domain.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return nil, zero, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if p.Source == "" {
		p.Source = domain.SourceManual
	}
	if !p.Source.Valid() {
		return nil, zero, fmt.Errorf("%w: unknown source %q", domain.ErrValidation, p.Source)
	}
	if p.Status == "" {
		p.Status = domain.LedgerConfirmed
	}
	if !p.Status.Valid() {
		return nil, zero, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, p.Status)
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}

	if err := s.verifyParty(ctx, p.Party); err != nil {
		return nil, zero, err
	}

	entry, err := s.ledger.Create(ctx, repository.CreateLedgerInput{
		Party:         p.Party,
		Date:          p.Date,
		Direction:     p.Direction,
		Amount:        p.Amount.Round(2),
		Description:   p.Description,
		Category:      p.Category,
		Source:        p.Source,
		Reference:     p.Reference,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		CreatedBy:     p.ActorID,
	})
	if err != nil {
		return nil, zero, err
	}

	balance, err := s.ledger.Balance(ctx, p.Party)
	if err != nil {
		return nil, zero, err
	}
	return entry, balance, nil
}

// Balance computes credits minus debits over confirmed entries. A positive
// balance means the party is owed money.
func (s *LedgerService) Balance(ctx context.Context, partyType string, partyID int64) (domain.BalanceSummary, error) {
	party, err := domain.ParseParty(partyType, partyID)
	if err != nil {
		return domain.BalanceSummary{}, err
	}
	return s.ledger.Balance(ctx, party)
}

// SetStatus moves an entry freely between pending, confirmed and cancelled.
func (s *LedgerService) SetStatus(ctx context.Context, id int64, status domain.LedgerStatus, actorID int64) (*domain.LedgerEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.ledger.SetStatus(ctx, id, status, actorID)
}

func (s *LedgerService) verifyParty(ctx context.Context, party domain.Party) error {
	switch party.Kind {
	case domain.PartyEmployee:
		ok, err := s.parties.EmployeeExists(ctx, party.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: employee %d", domain.ErrNotFound, party.ID)
		}
	case domain.PartyBranch:
		ok, err := s.parties.BranchExists(ctx, party.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: branch %d", domain.ErrNotFound, party.ID)
		}
	case domain.PartySupplier, domain.PartyCustomer:
		// external registries; accepted as-is
	}
	return nil
}
