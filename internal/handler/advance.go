package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
	"salonops-backend/internal/service"
)

type AdvanceHandler struct {
	Service *service.AdvanceService
	Repo    repository.AdvanceRepository
}

func (h AdvanceHandler) RegisterRoutes(r chi.Router, guard Guard) {
	r.Get("/advance-requests", h.list)
	r.With(guard(domain.PermCreateAdvance)).Post("/advance-requests", h.create)
	r.Get("/advance-requests/{id}", h.get)
	r.With(guard(domain.PermApproveAdvance)).Post("/advance-requests/{id}/approve", h.approve)
	r.With(guard(domain.PermApproveAdvance)).Post("/advance-requests/{id}/reject", h.reject)
	r.With(guard(domain.PermCreateAdvance)).Post("/advance-requests/{id}/cancel", h.cancel)
}

func (h AdvanceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employee_id"`
		BranchID   int64  `json:"branch_id"`
		Amount     string `json:"amount"`
		Reason     string `json:"reason"`
		Attachment string `json:"attachment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	amount, err := parseAmount(&req.Amount)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid amount")
		return
	}
	request, err := h.Service.Create(r.Context(), service.CreateAdvanceParams{
		EmployeeID: req.EmployeeID,
		BranchID:   req.BranchID,
		Amount:     amount,
		Reason:     req.Reason,
		Attachment: req.Attachment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, advanceJSON(*request), "advance request submitted")
}

func (h AdvanceHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid request id")
		return
	}
	request, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, advanceJSON(*request))
}

func (h AdvanceHandler) list(w http.ResponseWriter, r *http.Request) {
	var filter repository.AdvanceFilter
	q := r.URL.Query()
	if v := q.Get("employee_id"); v != "" {
		id, ok := pathID(v)
		if !ok {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid employee_id")
			return
		}
		filter.EmployeeID = &id
	}
	if v := q.Get("branch_id"); v != "" {
		id, ok := pathID(v)
		if !ok {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch_id")
			return
		}
		filter.BranchID = &id
	}
	if v := q.Get("status"); v != "" {
		status := domain.AdvanceStatus(v)
		if !status.Valid() {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid status")
			return
		}
		filter.Status = &status
	}
	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, a := range items {
		resp = append(resp, advanceJSON(a))
	}
	writePaged(w, resp, page, perPage, total)
}

func (h AdvanceHandler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid request id")
		return
	}
	var req struct {
		DecisionNotes string `json:"decision_notes"`
		PaymentDate   string `json:"payment_date"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	var paymentDate *time.Time
	if req.PaymentDate != "" {
		t, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payment_date")
			return
		}
		paymentDate = &t
	}
	request, entry, err := h.Service.Approve(r.Context(), service.ApproveAdvanceParams{
		RequestID:     id,
		ActorID:       authctx.ActorID(r.Context()),
		DecisionNotes: req.DecisionNotes,
		PaymentDate:   paymentDate,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload := advanceJSON(*request)
	payload["ledger_entry"] = ledgerEntryJSON(*entry)
	writeMessage(w, http.StatusOK, payload, "advance approved")
}

func (h AdvanceHandler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid request id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	request, err := h.Service.Reject(r.Context(), id, authctx.ActorID(r.Context()), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, advanceJSON(*request), "advance rejected")
}

func (h AdvanceHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid request id")
		return
	}
	request, err := h.Service.Cancel(r.Context(), id, authctx.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, advanceJSON(*request), "advance cancelled")
}

func advanceJSON(a domain.AdvanceRequest) map[string]any {
	out := map[string]any{
		"id":             a.ID,
		"employee_id":    a.EmployeeID,
		"branch_id":      a.BranchID,
		"amount":         a.Amount,
		"reason":         a.Reason,
		"status":         string(a.Status),
		"requested_at":   a.RequestedAt,
		"decision_notes": a.DecisionNotes,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
	if a.ProcessedAt != nil {
		out["processed_at"] = a.ProcessedAt
		out["processed_by"] = a.ProcessedBy
	}
	if a.Status == domain.AdvanceRejected {
		out["rejection_reason"] = a.RejectionReason
	}
	if a.PaymentDate != nil {
		out["payment_date"] = a.PaymentDate.Format(dateLayout)
		out["payment_method"] = a.PaymentMethod
	}
	if a.Attachment != "" {
		out["attachment"] = a.Attachment
	}
	if a.LedgerEntryID != nil {
		out["ledger_entry_id"] = a.LedgerEntryID
	}
	return out
}
