package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

type BranchHandler struct {
	Repo repository.BranchRepository
}

func (h BranchHandler) RegisterRoutes(r chi.Router, guard Guard) {
	manage := guard(domain.PermManageBranch)
	r.Get("/branches", h.list)
	r.With(manage).Post("/branches", h.create)
	r.Get("/branches/{id}", h.get)
	r.With(manage).Put("/branches/{id}", h.update)
	r.With(manage).Delete("/branches/{id}", h.delete)
}

type branchPayload struct {
	Name    *string `json:"name"`
	Code    *string `json:"code"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Active  *bool   `json:"active"`
}

func (h BranchHandler) create(w http.ResponseWriter, r *http.Request) {
	var req branchPayload
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "name is required")
		return
	}
	in := repository.CreateBranchInput{Name: strings.TrimSpace(*req.Name)}
	if req.Code != nil {
		in.Code = *req.Code
	}
	if req.Address != nil {
		in.Address = *req.Address
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}
	branch, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, branchJSON(*branch), "branch created")
}

func (h BranchHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch id")
		return
	}
	branch, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, branchJSON(*branch))
}

func (h BranchHandler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, branchJSON(b))
	}
	writePaged(w, resp, page, perPage, total)
}

func (h BranchHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch id")
		return
	}
	var req branchPayload
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	branch, err := h.Repo.Update(r.Context(), id, repository.UpdateBranchInput{
		Name:    req.Name,
		Code:    req.Code,
		Address: req.Address,
		Phone:   req.Phone,
		Active:  req.Active,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, branchJSON(*branch), "branch updated")
}

func (h BranchHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch id")
		return
	}
	if err := h.Repo.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "branch deleted")
}

func branchJSON(b domain.Branch) map[string]any {
	return map[string]any{
		"id":         b.ID,
		"name":       b.Name,
		"code":       b.Code,
		"address":    b.Address,
		"phone":      b.Phone,
		"active":     b.Active,
		"created_at": b.CreatedAt,
		"updated_at": b.UpdatedAt,
	}
}
