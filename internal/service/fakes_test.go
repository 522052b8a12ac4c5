package service

import (
	"context"
	"fmt"
	"time"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

// In-memory fakes for the narrow store interfaces. They mirror the guard
// semantics of the real repositories closely enough for the service-level
// rules under test.

func dayKey(branchID int64, date time.Time) string {
	return fmt.Sprintf("%d#%s", branchID, date.Format("2006-01-02"))
}

type fakeEmployees struct {
	byID map[int64]*domain.Employee
}

func (f *fakeEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

type fakeEntryStore struct {
	nextID  int64
	entries map[int64]*domain.DailyEntry
	// closures replays the storage-level refusal to insert on a closed day;
	// beforeCreate lets a test interleave a write before the insert runs.
	closures     *fakeClosureStore
	beforeCreate func()
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{nextID: 1, entries: make(map[int64]*domain.DailyEntry)}
}

func (f *fakeEntryStore) Create(_ context.Context, in repository.CreateDailyEntryInput) (*domain.DailyEntry, error) {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	if f.closures != nil {
		if _, closed := f.closures.byDay[dayKey(in.BranchID, in.Date)]; closed {
			return nil, domain.ErrDayLocked
		}
	}
	for _, e := range f.entries {
		if e.EmployeeID == in.EmployeeID && sameDay(e.Date, in.Date) {
			return nil, domain.ErrDuplicateEntry
		}
	}
	e := &domain.DailyEntry{
		ID:                f.nextID,
		BranchID:          in.BranchID,
		EmployeeID:        in.EmployeeID,
		Date:              in.Date,
		Sales:             in.Sales,
		Cash:              in.Cash,
		Expense:           in.Expense,
		CommissionRate:    in.CommissionRate,
		Commission:        in.Commission,
		Bonus:             in.Bonus,
		BonusReason:       in.BonusReason,
		Note:              in.Note,
		TransactionsCount: in.TransactionsCount,
		Source:            in.Source,
		Net:               in.Net,
		CreatedBy:         in.CreatedBy,
	}
	f.nextID++
	f.entries[e.ID] = e
	cp := *e
	return &cp, nil
}

func (f *fakeEntryStore) GetByID(_ context.Context, id int64) (*domain.DailyEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntryStore) ExistsForEmployeeDate(_ context.Context, employeeID int64, date time.Time) (bool, error) {
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && sameDay(e.Date, date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntryStore) Update(_ context.Context, id int64, in repository.UpdateDailyEntryInput) (*domain.DailyEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.IsLocked {
		return nil, domain.ErrDayLocked
	}
	e.Sales = in.Sales
	e.Cash = in.Cash
	e.Expense = in.Expense
	e.CommissionRate = in.CommissionRate
	e.Commission = in.Commission
	e.Bonus = in.Bonus
	e.BonusReason = in.BonusReason
	e.Note = in.Note
	e.TransactionsCount = in.TransactionsCount
	e.Net = in.Net
	e.UpdatedBy = &in.UpdatedBy
	cp := *e
	return &cp, nil
}

func (f *fakeEntryStore) SoftDelete(_ context.Context, id int64, _ int64) error {
	e, ok := f.entries[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.IsLocked {
		return domain.ErrDayLocked
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryStore) ListForEmployeeRange(_ context.Context, employeeID int64, from, to time.Time) ([]domain.DailyEntry, error) {
	var out []domain.DailyEntry
	for _, e := range f.entries {
		if e.EmployeeID == employeeID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

type fakeClosureStore struct {
	nextID   int64
	closures map[int64]*domain.DayClosure
	byDay    map[string]int64
	entries  *fakeEntryStore
	stamped  []int64
	failWith error // injected CreateAndLock failure, returned before any mutation
}

func newFakeClosureStore(entries *fakeEntryStore) *fakeClosureStore {
	return &fakeClosureStore{
		nextID:   1,
		closures: make(map[int64]*domain.DayClosure),
		byDay:    make(map[string]int64),
		entries:  entries,
	}
}

func (f *fakeClosureStore) ExistsForBranchDate(_ context.Context, branchID int64, date time.Time) (bool, error) {
	_, ok := f.byDay[dayKey(branchID, date)]
	return ok, nil
}

// CreateAndLock mirrors the real repository's transactional contract: the
// snapshot, the closure insert and the entry locks either all happen or none
// do.
func (f *fakeClosureStore) CreateAndLock(_ context.Context, branchID int64, date time.Time, build func(entries []domain.DailyEntry) domain.DayClosure) (*domain.DayClosure, error) {
	key := dayKey(branchID, date)
	if _, ok := f.byDay[key]; ok {
		return nil, domain.ErrDayAlreadyClosed
	}
	var snapshot []domain.DailyEntry
	var locked []*domain.DailyEntry
	if f.entries != nil {
		for _, e := range f.entries.entries {
			if e.BranchID == branchID && sameDay(e.Date, date) {
				snapshot = append(snapshot, *e)
				locked = append(locked, e)
			}
		}
	}
	if len(snapshot) == 0 {
		return nil, domain.ErrNoEntriesToClose
	}
	closure := build(snapshot)
	if f.failWith != nil {
		return nil, f.failWith
	}
	closure.ID = f.nextID
	f.nextID++
	closure.PDFPath = "/day-closures/pdf"
	f.closures[closure.ID] = &closure
	f.byDay[key] = closure.ID
	for _, e := range locked {
		e.IsLocked = true
		at := closure.ClosedAt
		e.LockedAt = &at
		by := closure.ClosedBy
		e.LockedBy = &by
	}
	cp := closure
	return &cp, nil
}

func (f *fakeClosureStore) GetByID(_ context.Context, id int64) (*domain.DayClosure, error) {
	c, ok := f.closures[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClosureStore) StampPDFGenerated(_ context.Context, id int64, at time.Time) error {
	c, ok := f.closures[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.PDFGeneratedAt == nil {
		c.PDFGeneratedAt = &at
		f.stamped = append(f.stamped, id)
	}
	return nil
}

type fakeLedgerStore struct {
	nextID  int64
	byID    map[int64]*domain.LedgerEntry
	entries []*domain.LedgerEntry
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{nextID: 1, byID: make(map[int64]*domain.LedgerEntry)}
}

func (f *fakeLedgerStore) Create(_ context.Context, in repository.CreateLedgerInput) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		ID:            f.nextID,
		Party:         in.Party,
		Date:          in.Date,
		Direction:     in.Direction,
		Amount:        in.Amount,
		Description:   in.Description,
		Category:      in.Category,
		Source:        in.Source,
		Reference:     in.Reference,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		CreatedBy:     in.CreatedBy,
	}
	f.nextID++
	f.byID[e.ID] = e
	f.entries = append(f.entries, e)
	cp := *e
	return &cp, nil
}

func (f *fakeLedgerStore) GetByID(_ context.Context, id int64) (*domain.LedgerEntry, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeLedgerStore) SetStatus(_ context.Context, id int64, status domain.LedgerStatus, actorID int64) (*domain.LedgerEntry, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = status
	e.UpdatedBy = &actorID
	cp := *e
	return &cp, nil
}

func (f *fakeLedgerStore) Balance(_ context.Context, party domain.Party) (domain.BalanceSummary, error) {
	summary := domain.BalanceSummary{Party: party}
	for _, e := range f.entries {
		if e.Party != party || e.Status != domain.LedgerConfirmed {
			continue
		}
		summary.EntryCount++
		if e.Direction == domain.DirectionDebit {
			summary.TotalDebit = summary.TotalDebit.Add(e.Amount)
		} else {
			summary.TotalCredit = summary.TotalCredit.Add(e.Amount)
		}
		d := e.Date
		if summary.LastEntryDate == nil || d.After(*summary.LastEntryDate) {
			summary.LastEntryDate = &d
		}
	}
	summary.Balance = summary.TotalCredit.Sub(summary.TotalDebit)
	return summary, nil
}

type fakePartyResolver struct {
	employees map[int64]bool
	branches  map[int64]bool
}

func (f fakePartyResolver) EmployeeExists(_ context.Context, id int64) (bool, error) {
	return f.employees[id], nil
}

func (f fakePartyResolver) BranchExists(_ context.Context, id int64) (bool, error) {
	return f.branches[id], nil
}

type fakeAdvanceStore struct {
	nextID   int64
	requests map[int64]*domain.AdvanceRequest
	ledger   *fakeLedgerStore
}

func newFakeAdvanceStore(ledger *fakeLedgerStore) *fakeAdvanceStore {
	return &fakeAdvanceStore{nextID: 1, requests: make(map[int64]*domain.AdvanceRequest), ledger: ledger}
}

func (f *fakeAdvanceStore) Create(_ context.Context, in repository.CreateAdvanceInput) (*domain.AdvanceRequest, error) {
	a := &domain.AdvanceRequest{
		ID:         f.nextID,
		EmployeeID: in.EmployeeID,
		BranchID:   in.BranchID,
		Amount:     in.Amount,
		Reason:     in.Reason,
		Attachment: in.Attachment,
		Status:     domain.AdvancePending,
	}
	f.nextID++
	f.requests[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAdvanceStore) GetByID(_ context.Context, id int64) (*domain.AdvanceRequest, error) {
	a, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdvanceStore) Approve(ctx context.Context, in repository.ApproveAdvanceInput) (*domain.AdvanceRequest, *domain.LedgerEntry, error) {
	a, ok := f.requests[in.RequestID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if a.Status != domain.AdvancePending {
		return nil, nil, domain.ErrNotPending
	}
	entry, err := f.ledger.Create(ctx, in.LedgerInput)
	if err != nil {
		return nil, nil, err
	}
	a.Status = domain.AdvanceApproved
	a.ProcessedAt = &in.ProcessedAt
	a.ProcessedBy = &in.ActorID
	a.DecisionNotes = in.DecisionNotes
	pd := in.PaymentDate
	a.PaymentDate = &pd
	a.PaymentMethod = in.PaymentMethod
	a.LedgerEntryID = &entry.ID
	cp := *a
	return &cp, entry, nil
}

func (f *fakeAdvanceStore) Reject(_ context.Context, id int64, actorID int64, reason string, at time.Time) (*domain.AdvanceRequest, error) {
	return f.transition(id, domain.AdvanceRejected, actorID, reason, at)
}

func (f *fakeAdvanceStore) Cancel(_ context.Context, id int64, actorID int64, at time.Time) (*domain.AdvanceRequest, error) {
	return f.transition(id, domain.AdvanceCancelled, actorID, "", at)
}

func (f *fakeAdvanceStore) transition(id int64, to domain.AdvanceStatus, actorID int64, reason string, at time.Time) (*domain.AdvanceRequest, error) {
	a, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if a.Status != domain.AdvancePending {
		return nil, domain.ErrNotPending
	}
	a.Status = to
	a.ProcessedAt = &at
	a.ProcessedBy = &actorID
	a.RejectionReason = reason
	cp := *a
	return &cp, nil
}

type fakeNotifier struct {
	titles []string
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, _ int64, title, _ string, _ domain.NotificationType) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	return nil
}

type fakeRenderer struct {
	calls int
}

func (f *fakeRenderer) Render(c domain.DayClosure) ([]byte, error) {
	f.calls++
	return []byte("pdf:" + c.Date.Format("2006-01-02")), nil
}
