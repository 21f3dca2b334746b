package handlers

import (
	"net/http"
	"strconv"

	"github.com/printflow/backoffice/internal/httpx"
	"github.com/printflow/backoffice/internal/storage"
)

type NotificationHandler struct {
	Store storage.NotificationStore
}

func NewNotificationHandler(store storage.NotificationStore) *NotificationHandler {
	return &NotificationHandler{Store: store}
}

// List: GET /api/notifications?userId=N
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || uid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return
	}
	ns, err := h.Store.NotificationsByUser(r.Context(), uint(uid))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_notifications", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ns, "total": len(ns)})
}
