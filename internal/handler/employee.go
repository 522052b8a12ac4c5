package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
)

type EmployeeHandler struct {
	Repo     repository.EmployeeRepository
	Branches repository.BranchRepository
}

func (h EmployeeHandler) RegisterRoutes(r chi.Router, guard Guard) {
	manage := guard(domain.PermManageEmployee)
	r.Get("/employees", h.list)
	r.With(manage).Post("/employees", h.create)
	r.Get("/employees/{id}", h.get)
	r.With(manage).Put("/employees/{id}", h.update)
	r.With(manage).Delete("/employees/{id}", h.delete)
}

func (h EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID              int64   `json:"branch_id"`
		Name                  string  `json:"name"`
		Role                  string  `json:"role"`
		Phone                 string  `json:"phone"`
		Email                 string  `json:"email"`
		JoinDate              string  `json:"join_date"`
		DefaultCommissionRate *string `json:"default_commission_rate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "name is required")
		return
	}
	exists, err := h.Branches.Exists(r.Context(), req.BranchID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !exists {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "branch does not exist")
		return
	}
	rate, err := parseOptionalAmount(req.DefaultCommissionRate)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid default_commission_rate")
		return
	}
	joinDate := time.Now()
	if req.JoinDate != "" {
		if joinDate, err = time.Parse(dateLayout, req.JoinDate); err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid join_date")
			return
		}
	}
	employee, err := h.Repo.Create(r.Context(), repository.CreateEmployeeInput{
		BranchID:              req.BranchID,
		Name:                  strings.TrimSpace(req.Name),
		Role:                  req.Role,
		Phone:                 req.Phone,
		Email:                 req.Email,
		JoinDate:              joinDate,
		DefaultCommissionRate: rate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, employeeJSON(*employee), "employee created")
}

func (h EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid employee id")
		return
	}
	employee, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, employeeJSON(*employee))
}

func (h EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	var branchID *int64
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, ok := pathID(v)
		if !ok {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid branch_id")
			return
		}
		branchID = &id
	}
	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), branchID, perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, employeeJSON(e))
	}
	writePaged(w, resp, page, perPage, total)
}

func (h EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid employee id")
		return
	}
	var req struct {
		Name                  *string `json:"name"`
		Role                  *string `json:"role"`
		Phone                 *string `json:"phone"`
		Email                 *string `json:"email"`
		DefaultCommissionRate *string `json:"default_commission_rate"`
		Active                *bool   `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	rate, err := parseOptionalAmount(req.DefaultCommissionRate)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid default_commission_rate")
		return
	}
	employee, err := h.Repo.Update(r.Context(), id, repository.UpdateEmployeeInput{
		Name:                  req.Name,
		Role:                  req.Role,
		Phone:                 req.Phone,
		Email:                 req.Email,
		DefaultCommissionRate: rate,
		Active:                req.Active,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, employeeJSON(*employee), "employee updated")
}

func (h EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid employee id")
		return
	}
	if err := h.Repo.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "employee deleted")
}

func employeeJSON(e domain.Employee) map[string]any {
	out := map[string]any{
		"id":         e.ID,
		"branch_id":  e.BranchID,
		"name":       e.Name,
		"role":       e.Role,
		"phone":      e.Phone,
		"email":      e.Email,
		"join_date":  e.JoinDate.Format(dateLayout),
		"active":     e.Active,
		"created_at": e.CreatedAt,
		"updated_at": e.UpdatedAt,
	}
	if e.DefaultCommissionRate != nil {
		out["default_commission_rate"] = e.DefaultCommissionRate
	}
	return out
}
