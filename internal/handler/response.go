package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"salonops-backend/internal/domain"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Message *string   `json:"message"`
	Error   *apiError `json:"error,omitempty"`
}

// Machine-readable error codes surfaced to API clients.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "RESOURCE_NOT_FOUND"
	CodeDayLocked        = "DAY_LOCKED"
	CodeDayAlreadyClosed = "DAY_ALREADY_CLOSED"
	CodeDuplicateEntry   = "DUPLICATE_ENTRY"
	CodeNoEntriesToClose = "NO_ENTRIES_TO_CLOSE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL_ERROR"
)

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeRawJSON(w, status, apiResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, data any, message string) {
	writeRawJSON(w, status, apiResponse{Success: true, Data: data, Message: &message})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeRawJSON(w, status, apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// writeDomainError maps core sentinel errors to HTTP statuses and codes.
// Conflict/state errors become 409, validation 400, unknown 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDayLocked):
		writeErrorCode(w, http.StatusConflict, CodeDayLocked, err.Error())
	case errors.Is(err, domain.ErrDayAlreadyClosed):
		writeErrorCode(w, http.StatusConflict, CodeDayAlreadyClosed, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry):
		writeErrorCode(w, http.StatusConflict, CodeDuplicateEntry, err.Error())
	case errors.Is(err, domain.ErrNoEntriesToClose):
		writeErrorCode(w, http.StatusBadRequest, CodeNoEntriesToClose, err.Error())
	case errors.Is(err, domain.ErrNotPending):
		writeErrorCode(w, http.StatusConflict, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrBranchMismatch):
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		writeErrorCode(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

type paginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type pagedPayload struct {
	Items any            `json:"data"`
	Meta  paginationMeta `json:"meta"`
}

func writePaged(w http.ResponseWriter, items any, page, perPage, total int) {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	writeData(w, http.StatusOK, pagedPayload{
		Items: items,
		Meta:  paginationMeta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages},
	})
}

// parsePagination clamps per_page to 1..100, defaulting to 20.
func parsePagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

func decodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func pathID(param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
