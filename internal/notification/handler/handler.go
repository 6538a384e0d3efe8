package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusforum/internal/notification"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/httputil"
	"campusforum/pkg/requestcontext"
)

// Service defines the interface for inbox operations.
type Service interface {
	List(ctx context.Context, userID id.UserID) ([]notification.Notification, error)
	ListUnread(ctx context.Context, userID id.UserID) ([]notification.Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
	Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread", h.HandleListUnread)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
	r.Post("/notifications/read-all", h.HandleMarkAllRead)
	r.Delete("/notifications/{notificationID}", h.HandleDelete)
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(n notification.Notification) notificationResponse {
	out := notificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type.String(),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.ThreadID != nil {
		out.ThreadID = n.ThreadID.String()
	}
	return out
}

func (h *Handler) writeList(w http.ResponseWriter, items []notification.Notification) {
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toResponse(n))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, items)
}

func (h *Handler) HandleListUnread(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListUnread(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, items)
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	if err := h.service.MarkRead(r.Context(), requestcontext.UserID(r.Context()), notificationID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.MarkAllRead(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	if err := h.service.Delete(r.Context(), requestcontext.UserID(r.Context()), notificationID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
