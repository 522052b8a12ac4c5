package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
	"salonops-backend/internal/service"
)

type DayClosureHandler struct {
	Service *service.ClosureService
	Repo    repository.DayClosureRepository
}

func (h DayClosureHandler) RegisterRoutes(r chi.Router, guard Guard) {
	r.Get("/day-closures", h.list)
	r.With(guard(domain.PermCreateDayClosure)).Post("/day-closures", h.create)
	r.Get("/day-closures/{id}", h.get)
	r.Get("/day-closures/{id}/pdf", h.pdf)
}

func (h DayClosureHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID int64  `json:"branch_id"`
		Date     string `json:"date"`
		Notes    string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid date")
		return
	}

	closure, err := h.Service.Create(r.Context(), req.BranchID, date, req.Notes, authctx.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, dayClosureJSON(*closure), "day closed")
}

func (h DayClosureHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid closure id")
		return
	}
	closure, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, dayClosureJSON(*closure))
}

func (h DayClosureHandler) list(w http.ResponseWriter, r *http.Request) {
	var f repository.DayClosureFilter
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch_id")
			return
		}
		f.BranchID = &id
	}
	var err error
	if f.From, err = parseDateQuery(r, "from"); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid from")
		return
	}
	if f.To, err = parseDateQuery(r, "to"); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid to")
		return
	}

	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), f, perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, dayClosureJSON(c))
	}
	writePaged(w, resp, page, perPage, total)
}

func (h DayClosureHandler) pdf(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid closure id")
		return
	}
	data, closure, err := h.Service.PDF(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"closure_%d_%s.pdf\"", closure.ID, closure.Date.Format(dateLayout)))
	_, _ = w.Write(data)
}

func dayClosureJSON(c domain.DayClosure) map[string]any {
	out := map[string]any{
		"id":               c.ID,
		"branch_id":        c.BranchID,
		"date":             c.Date.Format(dateLayout),
		"total_sales":      c.TotalSales,
		"total_cash":       c.TotalCash,
		"total_expense":    c.TotalExpense,
		"total_net":        c.TotalNet,
		"total_commission": c.TotalCommission,
		"total_bonus":      c.TotalBonus,
		"entries_count":    c.EntriesCount,
		"employees_count":  c.EmployeesCount,
		"closed_by":        c.ClosedBy,
		"closed_at":        c.ClosedAt,
		"pdf_url":          c.PDFPath,
		"notes":            c.Notes,
	}
	if c.PDFGeneratedAt != nil {
		out["pdf_generated_at"] = c.PDFGeneratedAt
	}
	return out
}
