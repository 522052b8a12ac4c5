package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonops-backend/internal/domain"
)

func newAdvanceFixture() (*AdvanceService, *fakeAdvanceStore, *fakeLedgerStore, *fakeNotifier) {
	ledger := newFakeLedgerStore()
	advances := newFakeAdvanceStore(ledger)
	employees := &fakeEmployees{byID: map[int64]*domain.Employee{
		1: {ID: 1, BranchID: 10, Name: "Hasan"},
	}}
	notifier := &fakeNotifier{}
	svc := NewAdvanceService(advances, employees, notifier, slog.Default())
	svc.WithNow(fixedClock(testDate(8)))
	return svc, advances, ledger, notifier
}

func TestAdvanceCreate(t *testing.T) {
	svc, _, _, _ := newAdvanceFixture()

	req, err := svc.Create(context.Background(), CreateAdvanceParams{
		EmployeeID: 1,
		Amount:     dec("500"),
		Reason:     "rent",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AdvancePending, req.Status)
	// branch defaults to the employee's branch
	assert.Equal(t, int64(10), req.BranchID)
}

func TestAdvanceCreateBranchMismatch(t *testing.T) {
	svc, _, _, _ := newAdvanceFixture()

	_, err := svc.Create(context.Background(), CreateAdvanceParams{
		EmployeeID: 1, BranchID: 99, Amount: dec("500"),
	})
	require.ErrorIs(t, err, domain.ErrBranchMismatch)
}

func TestAdvanceCreateValidation(t *testing.T) {
	svc, _, _, _ := newAdvanceFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("0")})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("-5")})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, CreateAdvanceParams{EmployeeID: 404, Amount: dec("5")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvanceApprove(t *testing.T) {
	// GIVEN a pending request
	// WHEN it is approved
	// THEN a confirmed ledger debit is posted with the stored amount
	svc, _, ledger, notifier := newAdvanceFixture()
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("750"), Reason: "rent"})
	require.NoError(t, err)

	approved, entry, err := svc.Approve(ctx, ApproveAdvanceParams{
		RequestID:     req.ID,
		ActorID:       42,
		DecisionNotes: "ok",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AdvanceApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, int64(42), *approved.ProcessedBy)
	require.NotNil(t, approved.LedgerEntryID)
	assert.Equal(t, entry.ID, *approved.LedgerEntryID)

	assert.Equal(t, domain.Party{Kind: domain.PartyEmployee, ID: 1}, entry.Party)
	assert.Equal(t, domain.DirectionDebit, entry.Direction)
	assert.Equal(t, "750.00", entry.Amount.StringFixed(2))
	assert.Equal(t, domain.SourceAdvanceRequest, entry.Source)
	assert.Equal(t, domain.LedgerConfirmed, entry.Status)
	require.NotNil(t, entry.Reference)
	assert.Equal(t, domain.Reference{Type: "advance_request", ID: req.ID}, *entry.Reference)

	// the employee now owes the advance
	balance, err := ledger.Balance(ctx, entry.Party)
	require.NoError(t, err)
	assert.Equal(t, "-750.00", balance.Balance.StringFixed(2))

	assert.Equal(t, []string{"Advance approved"}, notifier.titles)
}

func TestAdvanceApproveTwice(t *testing.T) {
	svc, _, ledger, _ := newAdvanceFixture()
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("100")})
	require.NoError(t, err)

	_, _, err = svc.Approve(ctx, ApproveAdvanceParams{RequestID: req.ID, ActorID: 1})
	require.NoError(t, err)

	_, _, err = svc.Approve(ctx, ApproveAdvanceParams{RequestID: req.ID, ActorID: 1})
	require.ErrorIs(t, err, domain.ErrNotPending)

	// exactly one ledger entry despite the retry
	assert.Len(t, ledger.entries, 1)
}

func TestAdvanceRejectThenApprove(t *testing.T) {
	svc, _, ledger, _ := newAdvanceFixture()
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("100")})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID, 5, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, domain.AdvanceRejected, rejected.Status)
	assert.Equal(t, "insufficient funds", rejected.RejectionReason)

	_, _, err = svc.Approve(ctx, ApproveAdvanceParams{RequestID: req.ID, ActorID: 5})
	require.ErrorIs(t, err, domain.ErrNotPending)
	assert.Empty(t, ledger.entries)
}

func TestAdvanceRejectRequiresReason(t *testing.T) {
	svc, _, _, _ := newAdvanceFixture()

	_, err := svc.Reject(context.Background(), 1, 5, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdvanceCancel(t *testing.T) {
	svc, _, ledger, _ := newAdvanceFixture()
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateAdvanceParams{EmployeeID: 1, Amount: dec("100")})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, req.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.AdvanceCancelled, cancelled.Status)
	assert.Empty(t, ledger.entries)

	_, err = svc.Cancel(ctx, req.ID, 1)
	require.ErrorIs(t, err, domain.ErrNotPending)
}
