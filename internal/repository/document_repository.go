package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"salonops-backend/internal/db"
	"salonops-backend/internal/domain"
)

type DocumentRepository struct {
	DB *db.Postgres
}

const documentColumns = `id, owner_type, owner_id, title, number, expiry_date, notes, created_at, updated_at`

type CreateDocumentInput struct {
	Owner      domain.Party
	Title      string
	Number     string
	ExpiryDate *time.Time
	Notes      string
}

func (r DocumentRepository) Create(ctx context.Context, in CreateDocumentInput) (*domain.Document, error) {
	var expiry *string
	if in.ExpiryDate != nil {
		s := in.ExpiryDate.Format("2006-01-02")
		expiry = &s
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO documents (owner_type, owner_id, title, number, expiry_date, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING `+documentColumns+`
	`, string(in.Owner.Kind), in.Owner.ID, in.Title, in.Number, expiry, in.Notes)
	return scanDocument(row)
}

func (r DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE deleted_at IS NULL AND id = $1
	`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	files, err := r.listFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Files = files
	return doc, nil
}

type UpdateDocumentInput struct {
	Title      *string
	Number     *string
	ExpiryDate *time.Time
	Notes      *string
}

func (r DocumentRepository) Update(ctx context.Context, id int64, in UpdateDocumentInput) (*domain.Document, error) {
	var expiry *string
	if in.ExpiryDate != nil {
		s := in.ExpiryDate.Format("2006-01-02")
		expiry = &s
	}
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE documents SET
			title  = COALESCE($2, title),
			number = COALESCE($3, number),
			expiry_date = COALESCE($4, expiry_date),
			notes  = COALESCE($5, notes),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1
		RETURNING `+documentColumns+`
	`, id, in.Title, in.Number, expiry, in.Notes)
	return scanDocument(row)
}

func (r DocumentRepository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.DB.Pool.Exec(ctx, `
		UPDATE documents SET deleted_at = now() WHERE deleted_at IS NULL AND id = $1
	`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r DocumentRepository) List(ctx context.Context, limit, offset int) ([]domain.Document, int, error) {
	var total int
	if err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM documents WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE deleted_at IS NULL
		ORDER BY expiry_date ASC NULLS LAST, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListExpiring returns documents whose expiry falls on or before the horizon.
func (r DocumentRepository) ListExpiring(ctx context.Context, horizon time.Time) ([]domain.Document, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE deleted_at IS NULL AND expiry_date IS NOT NULL AND expiry_date <= $1
		ORDER BY expiry_date ASC
	`, horizon.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// AddFile appends a new version row for a document attachment.
func (r DocumentRepository) AddFile(ctx context.Context, documentID int64, fileName, filePath string, uploadedBy int64) (*domain.DocumentFile, error) {
	var f domain.DocumentFile
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO document_files (document_id, version, file_name, file_path, uploaded_by, uploaded_at)
		VALUES ($1,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM document_files WHERE document_id = $1),
			$2, $3, $4, now())
		RETURNING id, document_id, version, file_name, file_path, uploaded_by, uploaded_at
	`, documentID, fileName, filePath, uploadedBy).Scan(
		&f.ID, &f.DocumentID, &f.Version, &f.FileName, &f.FilePath, &f.UploadedBy, &f.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r DocumentRepository) listFiles(ctx context.Context, documentID int64) ([]domain.DocumentFile, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, document_id, version, file_name, file_path, uploaded_by, uploaded_at
		FROM document_files
		WHERE document_id = $1
		ORDER BY version DESC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []domain.DocumentFile
	for rows.Next() {
		var f domain.DocumentFile
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Version, &f.FileName, &f.FilePath, &f.UploadedBy, &f.UploadedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func collectDocuments(rows pgx.Rows) ([]domain.Document, error) {
	var items []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var ownerType string
	if err := row.Scan(&d.ID, &ownerType, &d.Owner.ID, &d.Title, &d.Number, &d.ExpiryDate, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	d.Owner.Kind = domain.PartyKind(ownerType)
	return &d, nil
}
