package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "email and password are required")
		return
	}

	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt.Format(time.RFC3339),
		"user": map[string]any{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
			"role":  string(result.User.Role),
		},
	})
}
