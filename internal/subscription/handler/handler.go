package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusforum/internal/subscription"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/httputil"
	"campusforum/pkg/requestcontext"
)

// Service defines the interface for subscription operations.
type Service interface {
	Subscribe(ctx context.Context, userID id.UserID, threadID id.ThreadID) (*subscription.Subscription, error)
	Unsubscribe(ctx context.Context, userID id.UserID, threadID id.ThreadID) error
	ListForUser(ctx context.Context, userID id.UserID) ([]subscription.Subscription, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts subscription endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/threads/{threadID}/subscription", h.HandleSubscribe)
	r.Delete("/threads/{threadID}/subscription", h.HandleUnsubscribe)
	r.Get("/subscriptions", h.HandleList)
}

type subscriptionResponse struct {
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	threadID, err := id.ParseThreadID(chi.URLParam(r, "threadID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}

	sub, err := h.service.Subscribe(ctx, userID, threadID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, subscriptionResponse{
		ThreadID:  sub.ThreadID.String(),
		CreatedAt: sub.CreatedAt,
	})
}

func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	threadID, err := id.ParseThreadID(chi.URLParam(r, "threadID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}

	if err := h.service.Unsubscribe(ctx, userID, threadID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	subs, err := h.service.ListForUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, subscriptionResponse{
			ThreadID:  sub.ThreadID.String(),
			CreatedAt: sub.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
