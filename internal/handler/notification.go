package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
)

type NotificationHandler struct {
	Repo repository.NotificationRepository
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Get("/notifications/unread-count", h.unreadCount)
	r.Post("/notifications/{id}/read", h.markRead)
	r.Post("/notifications/read-all", h.markAllRead)
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	items, err := h.Repo.List(r.Context(), authctx.ActorID(r.Context()), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationJSON(n))
	}
	writeData(w, http.StatusOK, resp)
}

func (h NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Repo.UnreadCount(r.Context(), authctx.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"unread_count": count})
}

func (h NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid notification id")
		return
	}
	if err := h.Repo.MarkRead(r.Context(), authctx.ActorID(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "notification marked as read")
}

func (h NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.MarkAllRead(r.Context(), authctx.ActorID(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "all notifications marked as read")
}

func notificationJSON(n domain.Notification) map[string]any {
	out := map[string]any{
		"id":         n.ID,
		"title":      n.Title,
		"message":    n.Message,
		"type":       string(n.Type),
		"created_at": n.CreatedAt,
		"read":       n.ReadAt != nil,
	}
	if n.ReadAt != nil {
		out["read_at"] = n.ReadAt
	}
	return out
}
