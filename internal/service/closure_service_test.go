package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonops-backend/internal/domain"
)

func newClosureFixture() (*ClosureService, *DailyEntryService, *fakeEntryStore, *fakeClosureStore, *fakeNotifier, *fakeRenderer) {
	entries := newFakeEntryStore()
	closures := newFakeClosureStore(entries)
	entries.closures = closures
	employees := &fakeEmployees{byID: map[int64]*domain.Employee{
		1: {ID: 1, BranchID: 10, DefaultCommissionRate: decPtr("10")},
		2: {ID: 2, BranchID: 10},
		3: {ID: 3, BranchID: 10},
	}}
	entrySvc := NewDailyEntryService(entries, employees, closures)
	notifier := &fakeNotifier{}
	renderer := &fakeRenderer{}
	svc := NewClosureService(closures, renderer, notifier, slog.Default())
	svc.WithNow(fixedClock(testDate(20)))
	return svc, entrySvc, entries, closures, notifier, renderer
}

func seedEntries(t *testing.T, entrySvc *DailyEntryService, day int) {
	t.Helper()
	ctx := context.Background()
	_, err := entrySvc.Create(ctx, CreateDailyEntryParams{
		EmployeeID: 1, BranchID: 10, Date: testDate(day),
		Sales: dec("1000"), Cash: dec("100"), Expense: dec("50"), Bonus: dec("20"),
	})
	require.NoError(t, err)
	_, err = entrySvc.Create(ctx, CreateDailyEntryParams{
		EmployeeID: 2, BranchID: 10, Date: testDate(day),
		Sales: dec("400"), Cash: dec("0"), Expense: dec("0"),
	})
	require.NoError(t, err)
}

func TestClosureCreate(t *testing.T) {
	// GIVEN two entries on an open day
	// WHEN the day is closed
	// THEN totals are frozen and every entry is locked
	svc, entrySvc, entries, _, notifier, _ := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 10)

	closure, err := svc.Create(ctx, 10, testDate(10), "end of day", 42)
	require.NoError(t, err)

	assert.Equal(t, "1400.00", closure.TotalSales.StringFixed(2))
	assert.Equal(t, "100.00", closure.TotalCash.StringFixed(2))
	assert.Equal(t, "50.00", closure.TotalExpense.StringFixed(2))
	assert.Equal(t, "1250.00", closure.TotalNet.StringFixed(2))
	assert.Equal(t, "100.00", closure.TotalCommission.StringFixed(2)) // 10% of 1000, 0% of 400
	assert.Equal(t, "20.00", closure.TotalBonus.StringFixed(2))
	assert.Equal(t, 2, closure.EntriesCount)
	assert.Equal(t, 2, closure.EmployeesCount)
	assert.Equal(t, int64(42), closure.ClosedBy)
	assert.Equal(t, testDate(20), closure.ClosedAt)
	assert.Equal(t, "end of day", closure.Notes)

	for _, e := range entries.entries {
		assert.True(t, e.IsLocked)
		require.NotNil(t, e.LockedBy)
		assert.Equal(t, int64(42), *e.LockedBy)
	}

	assert.Equal(t, []string{"Day closed"}, notifier.titles)

	// locked entries reject further writes
	for id := range entries.entries {
		_, err := entrySvc.Update(ctx, id, UpdateDailyEntryParams{Sales: decPtr("1")})
		require.ErrorIs(t, err, domain.ErrDayLocked)
	}
}

func TestClosureCreateAlreadyClosed(t *testing.T) {
	svc, entrySvc, _, _, _, _ := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 11)

	_, err := svc.Create(ctx, 10, testDate(11), "", 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 10, testDate(11), "", 1)
	require.ErrorIs(t, err, domain.ErrDayAlreadyClosed)
}

func TestClosureCreateNoEntries(t *testing.T) {
	svc, _, _, _, _, _ := newClosureFixture()

	_, err := svc.Create(context.Background(), 10, testDate(12), "", 1)
	require.ErrorIs(t, err, domain.ErrNoEntriesToClose)
}

func TestClosureCreateFailureLeavesEntriesUntouched(t *testing.T) {
	// GIVEN two entries on an open day and a store whose closure write fails
	// WHEN the close is attempted
	// THEN no entry is locked and no notification goes out
	svc, entrySvc, entries, closures, notifier, _ := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 15)
	closures.failWith = errors.New("insert failed")

	_, err := svc.Create(ctx, 10, testDate(15), "", 1)
	require.Error(t, err)

	require.Len(t, entries.entries, 2)
	for _, e := range entries.entries {
		assert.False(t, e.IsLocked)
		assert.Nil(t, e.LockedAt)
		assert.Nil(t, e.LockedBy)
	}
	assert.Empty(t, closures.closures)
	assert.Empty(t, notifier.titles)

	// the day stays open for writes
	closures.failWith = nil
	_, err = entrySvc.Update(ctx, 1, UpdateDailyEntryParams{Sales: decPtr("900")})
	require.NoError(t, err)
}

func TestClosureSnapshotMatchesLockedEntries(t *testing.T) {
	// an entry created moments before the close is part of both the frozen
	// totals and the lock set
	svc, entrySvc, entries, _, _, _ := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 16)
	_, err := entrySvc.Create(ctx, CreateDailyEntryParams{
		EmployeeID: 3, BranchID: 10, Date: testDate(16),
		Sales: dec("200"), Cash: dec("0"), Expense: dec("0"),
	})
	require.NoError(t, err)

	closure, err := svc.Create(ctx, 10, testDate(16), "", 5)
	require.NoError(t, err)

	assert.Equal(t, 3, closure.EntriesCount)
	assert.Equal(t, "1600.00", closure.TotalSales.StringFixed(2))
	for _, e := range entries.entries {
		assert.True(t, e.IsLocked)
	}
}

func TestClosureCreateValidation(t *testing.T) {
	svc, _, _, _, _, _ := newClosureFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, 0, testDate(12), "", 1)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestClosureNotificationFailureIsNotFatal(t *testing.T) {
	svc, entrySvc, _, _, notifier, _ := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 13)
	notifier.err = errors.New("queue down")

	closure, err := svc.Create(ctx, 10, testDate(13), "", 1)
	require.NoError(t, err)
	assert.NotNil(t, closure)
}

func TestClosurePDFStampsOnce(t *testing.T) {
	svc, entrySvc, _, closures, _, renderer := newClosureFixture()
	ctx := context.Background()
	seedEntries(t, entrySvc, 14)

	closure, err := svc.Create(ctx, 10, testDate(14), "", 1)
	require.NoError(t, err)

	first, _, err := svc.PDF(ctx, closure.ID)
	require.NoError(t, err)
	second, _, err := svc.PDF(ctx, closure.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, renderer.calls)
	// pdf_generated_at is written on the first render only
	assert.Equal(t, []int64{closure.ID}, closures.stamped)
}

func TestClosurePDFNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newClosureFixture()

	_, _, err := svc.PDF(context.Background(), 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
