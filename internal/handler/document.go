package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
)

type DocumentHandler struct {
	Repo repository.DocumentRepository
	now  func() time.Time
}

func NewDocumentHandler(repo repository.DocumentRepository) DocumentHandler {
	return DocumentHandler{Repo: repo, now: time.Now}
}

func (h DocumentHandler) RegisterRoutes(r chi.Router, guard Guard) {
	manage := guard(domain.PermManageDocument)
	r.Get("/documents", h.list)
	r.With(manage).Post("/documents", h.create)
	r.Get("/documents/expiring", h.expiring)
	r.Get("/documents/{id}", h.get)
	r.With(manage).Put("/documents/{id}", h.update)
	r.With(manage).Delete("/documents/{id}", h.delete)
	r.With(manage).Post("/documents/{id}/files", h.addFile)
}

func (h DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerType  string `json:"owner_type"`
		OwnerID    int64  `json:"owner_id"`
		Title      string `json:"title"`
		Number     string `json:"number"`
		ExpiryDate string `json:"expiry_date"`
		Notes      string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "title is required")
		return
	}
	owner, err := domain.ParseParty(req.OwnerType, req.OwnerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var expiry *time.Time
	if req.ExpiryDate != "" {
		t, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid expiry_date")
			return
		}
		expiry = &t
	}
	doc, err := h.Repo.Create(r.Context(), repository.CreateDocumentInput{
		Owner:      owner,
		Title:      strings.TrimSpace(req.Title),
		Number:     req.Number,
		ExpiryDate: expiry,
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, h.documentJSON(*doc), "document created")
}

func (h DocumentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid document id")
		return
	}
	doc, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, h.documentJSON(*doc))
}

func (h DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, d := range items {
		resp = append(resp, h.documentJSON(d))
	}
	writePaged(w, resp, page, perPage, total)
}

// expiring lists documents within the near-expiry horizon, soonest first.
func (h DocumentHandler) expiring(w http.ResponseWriter, r *http.Request) {
	today := h.now()
	horizon := today.AddDate(0, 0, domain.DocumentNearDays)
	items, err := h.Repo.ListExpiring(r.Context(), horizon)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, d := range items {
		resp = append(resp, h.documentJSON(d))
	}
	writeData(w, http.StatusOK, resp)
}

func (h DocumentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid document id")
		return
	}
	var req struct {
		Title      *string `json:"title"`
		Number     *string `json:"number"`
		ExpiryDate *string `json:"expiry_date"`
		Notes      *string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	var expiry *time.Time
	if req.ExpiryDate != nil {
		t, err := time.Parse(dateLayout, *req.ExpiryDate)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid expiry_date")
			return
		}
		expiry = &t
	}
	doc, err := h.Repo.Update(r.Context(), id, repository.UpdateDocumentInput{
		Title:      req.Title,
		Number:     req.Number,
		ExpiryDate: expiry,
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, h.documentJSON(*doc), "document updated")
}

func (h DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid document id")
		return
	}
	if err := h.Repo.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "document deleted")
}

func (h DocumentHandler) addFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid document id")
		return
	}
	var req struct {
		FileName string `json:"file_name"`
		FilePath string `json:"file_path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if req.FileName == "" || req.FilePath == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "file_name and file_path are required")
		return
	}
	if _, err := h.Repo.GetByID(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	file, err := h.Repo.AddFile(r.Context(), id, req.FileName, req.FilePath, authctx.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, documentFileJSON(*file), "file attached")
}

func (h DocumentHandler) documentJSON(d domain.Document) map[string]any {
	today := h.now()
	out := map[string]any{
		"id":         d.ID,
		"owner_type": string(d.Owner.Kind),
		"owner_id":   d.Owner.ID,
		"title":      d.Title,
		"number":     d.Number,
		"notes":      d.Notes,
		"status":     string(domain.ExpiryStatus(d.ExpiryDate, today)),
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.ExpiryDate != nil {
		out["expiry_date"] = d.ExpiryDate.Format(dateLayout)
		out["days_remaining"] = domain.DaysRemaining(d.ExpiryDate, today)
	}
	if d.Files != nil {
		files := make([]map[string]any, 0, len(d.Files))
		for _, f := range d.Files {
			files = append(files, documentFileJSON(f))
		}
		out["files"] = files
	}
	return out
}

func documentFileJSON(f domain.DocumentFile) map[string]any {
	return map[string]any{
		"id":          f.ID,
		"document_id": f.DocumentID,
		"version":     f.Version,
		"file_name":   f.FileName,
		"file_path":   f.FilePath,
		"uploaded_by": f.UploadedBy,
		"uploaded_at": f.UploadedAt,
	}
}
