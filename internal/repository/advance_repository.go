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

type AdvanceRepository struct {
	DB     *db.Postgres
	Ledger LedgerRepository
}

const advanceColumns = `id, employee_id, branch_id, amount, reason, status, requested_at,
	processed_at, processed_by, decision_notes, rejection_reason, payment_date, payment_method,
	attachment, ledger_entry_id, created_at, updated_at`

type CreateAdvanceInput struct {
	EmployeeID int64
	BranchID   int64
	Amount     decimal.Decimal
	Reason     string
	Attachment string
}

func (r AdvanceRepository) Create(ctx context.Context, in CreateAdvanceInput) (*domain.AdvanceRequest, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO advance_requests
			(employee_id, branch_id, amount, reason, status, requested_at, attachment, created_at, updated_at)
		VALUES ($1,$2,$3,$4,'pending', now(), $5, now(), now())
		RETURNING `+advanceColumns+`
	`, in.EmployeeID, in.BranchID, in.Amount, in.Reason, in.Attachment)
	return scanAdvance(row)
}

func (r AdvanceRepository) GetByID(ctx context.Context, id int64) (*domain.AdvanceRequest, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+advanceColumns+`
		FROM advance_requests
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	return scanAdvance(row)
}

type ApproveAdvanceInput struct {
	RequestID     int64
	ActorID       int64
	DecisionNotes string
	PaymentDate   time.Time
	PaymentMethod string
	ProcessedAt   time.Time
	LedgerInput   CreateLedgerInput
}

// Approve runs the whole approval inside one transaction: lock the request
// row, verify it is still pending, post the ledger debit, stamp the request.
// Both writes commit together or neither does.
func (r AdvanceRepository) Approve(ctx context.Context, in ApproveAdvanceInput) (*domain.AdvanceRequest, *domain.LedgerEntry, error) {
	var request *domain.AdvanceRequest
	var entry *domain.LedgerEntry
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := lockAdvance(ctx, tx, in.RequestID)
		if err != nil {
			return err
		}
		if current.Status != domain.AdvancePending {
			return domain.ErrNotPending
		}

		entry, err = r.Ledger.CreateTx(ctx, tx, in.LedgerInput)
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			UPDATE advance_requests SET
				status = 'approved', processed_at = $2, processed_by = $3, decision_notes = $4,
				rejection_reason = '', payment_date = $5, payment_method = $6,
				ledger_entry_id = $7, updated_at = now()
			WHERE id = $1
			RETURNING `+advanceColumns+`
		`, in.RequestID, in.ProcessedAt, in.ActorID, in.DecisionNotes,
			in.PaymentDate.Format("2006-01-02"), in.PaymentMethod, entry.ID)
		request, err = scanAdvance(row)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return request, entry, nil
}

// Reject is update-only; the ledger is never touched.
func (r AdvanceRepository) Reject(ctx context.Context, id int64, actorID int64, reason string, at time.Time) (*domain.AdvanceRequest, error) {
	return r.transition(ctx, id, domain.AdvanceRejected, actorID, reason, at)
}

// Cancel is update-only; the ledger is never touched.
func (r AdvanceRepository) Cancel(ctx context.Context, id int64, actorID int64, at time.Time) (*domain.AdvanceRequest, error) {
	return r.transition(ctx, id, domain.AdvanceCancelled, actorID, "", at)
}

func (r AdvanceRepository) transition(ctx context.Context, id int64, to domain.AdvanceStatus, actorID int64, rejectionReason string, at time.Time) (*domain.AdvanceRequest, error) {
	var request *domain.AdvanceRequest
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		current, err := lockAdvance(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.AdvancePending {
			return domain.ErrNotPending
		}
		row := tx.QueryRow(ctx, `
			UPDATE advance_requests SET
				status = $2, processed_at = $3, processed_by = $4, rejection_reason = $5, updated_at = now()
			WHERE id = $1
			RETURNING `+advanceColumns+`
		`, id, string(to), at, actorID, rejectionReason)
		request, err = scanAdvance(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

type AdvanceFilter struct {
	EmployeeID *int64
	BranchID   *int64
	Status     *domain.AdvanceStatus
}

func (r AdvanceRepository) List(ctx context.Context, f AdvanceFilter, limit, offset int) ([]domain.AdvanceRequest, int, error) {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	where := `
		WHERE deleted_at IS NULL
		  AND ($1::bigint IS NULL OR employee_id = $1)
		  AND ($2::bigint IS NULL OR branch_id = $2)
		  AND ($3::text IS NULL OR status = $3)`
	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM advance_requests`+where,
		f.EmployeeID, f.BranchID, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+advanceColumns+`
		FROM advance_requests`+where+`
		ORDER BY requested_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`, f.EmployeeID, f.BranchID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []domain.AdvanceRequest
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

func lockAdvance(ctx context.Context, tx pgx.Tx, id int64) (*domain.AdvanceRequest, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+advanceColumns+`
		FROM advance_requests
		WHERE deleted_at IS NULL AND id = $1
		FOR UPDATE
	`, id)
	return scanAdvance(row)
}

func scanAdvance(row pgx.Row) (*domain.AdvanceRequest, error) {
	var a domain.AdvanceRequest
	var status string
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.BranchID, &a.Amount, &a.Reason, &status, &a.RequestedAt,
		&a.ProcessedAt, &a.ProcessedBy, &a.DecisionNotes, &a.RejectionReason, &a.PaymentDate,
		&a.PaymentMethod, &a.Attachment, &a.LedgerEntryID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Status = domain.AdvanceStatus(status)
	return &a, nil
}
