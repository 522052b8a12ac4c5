package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type LedgerRepository struct {
	DB *db.Postgres
}

const ledgerColumns = `id, party_type, party_id, entry_date, direction, amount, description,
	category, source, reference_type, reference_id, payment_method, status,
	created_by, updated_by, created_at, updated_at, deleted_at`

type CreateLedgerInput struct {
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
	CreatedBy     int64
}

func (r LedgerRepository) Create(ctx context.Context, in CreateLedgerInput) (*domain.LedgerEntry, error) {
	var refType *string
	var refID *int64
	if in.Reference != nil {
		refType = &in.Reference.Type
		refID = &in.Reference.ID
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO ledger_entries
			(party_type, party_id, entry_date, direction, amount, description, category, source,
			 reference_type, reference_id, payment_method, status, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now(), now())
		RETURNING `+ledgerColumns+`
	`, string(in.Party.Kind), in.Party.ID, in.Date.Format("2006-01-02"), string(in.Direction),
		in.Amount, in.Description, in.Category, string(in.Source), refType, refID,
		in.PaymentMethod, string(in.Status), in.CreatedBy)
	return scanLedgerEntry(row)
}

// CreateTx is the transactional variant used by the advance approval flow.
func (r LedgerRepository) CreateTx(ctx context.Context, tx pgx.Tx, in CreateLedgerInput) (*domain.LedgerEntry, error) {
	var refType *string
	var refID *int64
	if in.Reference != nil {
		refType = &in.Reference.Type
		refID = &in.Reference.ID
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO ledger_entries
			(party_type, party_id, entry_date, direction, amount, description, category, source,
			 reference_type, reference_id, payment_method, status, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now(), now())
		RETURNING `+ledgerColumns+`
	`, string(in.Party.Kind), in.Party.ID, in.Date.Format("2006-01-02"), string(in.Direction),
		in.Amount, in.Description, in.Category, string(in.Source), refType, refID,
		in.PaymentMethod, string(in.Status), in.CreatedBy)
	return scanLedgerEntry(row)
}

func (r LedgerRepository) GetByID(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	return scanLedgerEntry(row)
}

// SetStatus moves an entry between pending/confirmed/cancelled. Amount and
// description stay frozen; only the status and audit fields change.
func (r LedgerRepository) SetStatus(ctx context.Context, id int64, status domain.LedgerStatus, actorID int64) (*domain.LedgerEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE ledger_entries
		SET status = $2, updated_by = $3, updated_at = now()
		WHERE deleted_at IS NULL AND id = $1
		RETURNING `+ledgerColumns+`
	`, id, string(status), actorID)
	return scanLedgerEntry(row)
}

func (r LedgerRepository) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE ledger_entries SET deleted_at = now(), updated_by = $2
		WHERE deleted_at IS NULL AND id = $1
	`, id, actorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Balance aggregates confirmed, non-deleted entries for one party.
// balance = credits - debits; positive means the party is owed.
func (r LedgerRepository) Balance(ctx context.Context, party domain.Party) (domain.BalanceSummary, error) {
	s := domain.BalanceSummary{Party: party}
	var lastDate pgtype.Date
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COUNT(*),
			MAX(entry_date)
		FROM ledger_entries
		WHERE deleted_at IS NULL AND status = 'confirmed'
		  AND party_type = $1 AND party_id = $2
	`, string(party.Kind), party.ID).Scan(&s.TotalDebit, &s.TotalCredit, &s.EntryCount, &lastDate)
	if err != nil {
		return s, err
	}
	if lastDate.Valid {
		t := lastDate.Time
		s.LastEntryDate = &t
	}
	s.Balance = s.TotalCredit.Sub(s.TotalDebit)
	return s, nil
}

type LedgerFilter struct {
	Party          *domain.Party
	Status         *domain.LedgerStatus
	Source         *domain.LedgerSource
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
}

func (r LedgerRepository) List(ctx context.Context, f LedgerFilter, limit, offset int) ([]domain.LedgerEntry, int, error) {
	var partyType *string
	var partyID *int64
	if f.Party != nil {
		pt := string(f.Party.Kind)
		partyType = &pt
		partyID = &f.Party.ID
	}
	var status, source *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	if f.Source != nil {
		s := string(*f.Source)
		source = &s
	}
	var from, to *string
	if f.From != nil {
		s := f.From.Format("2006-01-02")
		from = &s
	}
	if f.To != nil {
		s := f.To.Format("2006-01-02")
		to = &s
	}

	where := `
		WHERE ($1::boolean OR deleted_at IS NULL)
		  AND ($2::text IS NULL OR party_type = $2)
		  AND ($3::bigint IS NULL OR party_id = $3)
		  AND ($4::text IS NULL OR status = $4)
		  AND ($5::text IS NULL OR source = $5)
		  AND ($6::date IS NULL OR entry_date >= $6)
		  AND ($7::date IS NULL OR entry_date <= $7)`

	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM ledger_entries`+where,
		f.IncludeDeleted, partyType, partyID, status, source, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries`+where+`
		ORDER BY entry_date DESC, id DESC
		LIMIT $8 OFFSET $9
	`, f.IncludeDeleted, partyType, partyID, status, source, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var partyType, direction, source, status string
	var refType *string
	var refID *int64
	if err := row.Scan(&e.ID, &partyType, &e.Party.ID, &e.Date, &direction, &e.Amount, &e.Description,
		&e.Category, &source, &refType, &refID, &e.PaymentMethod, &status,
		&e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Party.Kind = domain.PartyKind(partyType)
	e.Direction = domain.LedgerDirection(direction)
	e.Source = domain.LedgerSource(source)
	e.Status = domain.LedgerStatus(status)
	if refType != nil && refID != nil {
		e.Reference = &domain.Reference{Type: *refType, ID: *refID}
	}
	return &e, nil
}
