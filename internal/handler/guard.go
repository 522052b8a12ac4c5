package handler

import (
	"net/http"

	"salonops-backend/internal/domain"
)

// Guard produces route middleware enforcing a permission. The server package
// supplies the implementation so handlers stay free of token concerns.
type Guard func(domain.Permission) func(http.Handler) http.Handler
