package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusforum/internal/authz"
	"campusforum/internal/thread"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/httputil"
	"campusforum/pkg/requestcontext"
)

// Service defines the interface for thread and reply operations.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, categoryID id.CategoryID, title, content string) (*thread.Thread, error)
	Get(ctx context.Context, threadID id.ThreadID) (*thread.Thread, []thread.Reply, error)
	List(ctx context.Context) ([]thread.Thread, error)
	Edit(ctx context.Context, actor authz.Actor, threadID id.ThreadID, categoryID id.CategoryID, title, content string) (*thread.Thread, error)
	Delete(ctx context.Context, actor authz.Actor, threadID id.ThreadID) error
	SetPinned(ctx context.Context, actor authz.Actor, threadID id.ThreadID, pinned bool) (*thread.Thread, error)
	SetLocked(ctx context.Context, actor authz.Actor, threadID id.ThreadID, locked bool) (*thread.Thread, error)
	CreateReply(ctx context.Context, actor authz.Actor, threadID id.ThreadID, content string) (*thread.Reply, error)
	EditReply(ctx context.Context, actor authz.Actor, replyID id.ReplyID, content string) (*thread.Reply, error)
	DeleteReply(ctx context.Context, actor authz.Actor, replyID id.ReplyID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated thread endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/threads", h.HandleCreate)
	r.Put("/threads/{threadID}", h.HandleEdit)
	r.Delete("/threads/{threadID}", h.HandleDelete)
	r.Put("/threads/{threadID}/pin", h.HandlePin)
	r.Put("/threads/{threadID}/lock", h.HandleLock)
	r.Post("/threads/{threadID}/replies", h.HandleCreateReply)
	r.Put("/replies/{replyID}", h.HandleEditReply)
	r.Delete("/replies/{replyID}", h.HandleDeleteReply)
}

// RegisterPublic mounts the read-only endpoints that need no authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/threads", h.HandleList)
	r.Get("/threads/{threadID}", h.HandleGet)
}

type createThreadRequest struct {
	CategoryID string `json:"category_id" valid:"required,uuid"`
	Title      string `json:"title" valid:"required"`
	Content    string `json:"content" valid:"required"`
}

type updateThreadRequest struct {
	CategoryID string `json:"category_id" valid:"required,uuid"`
	Title      string `json:"title" valid:"required"`
	Content    string `json:"content" valid:"required"`
}

type flagRequest struct {
	Value bool `json:"value"`
}

type replyRequest struct {
	Content string `json:"content" valid:"required"`
}

type threadResponse struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	CategoryID  string     `json:"category_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Pinned      bool       `json:"pinned"`
	Locked      bool       `json:"locked"`
	ViewCount   int64      `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastReplyAt *time.Time `json:"last_reply_at,omitempty"`
}

type replyResponse struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type threadDetailResponse struct {
	threadResponse
	Replies []replyResponse `json:"replies"`
}

func toThreadResponse(t *thread.Thread) threadResponse {
	return threadResponse{
		ID:          t.ID.String(),
		AuthorID:    t.AuthorID.String(),
		CategoryID:  t.CategoryID.String(),
		Title:       t.Title,
		Content:     t.Content,
		Pinned:      t.Pinned,
		Locked:      t.Locked,
		ViewCount:   t.ViewCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		LastReplyAt: t.LastReplyAt,
	}
}

func toReplyResponse(r *thread.Reply) replyResponse {
	return replyResponse{
		ID:        r.ID.String(),
		ThreadID:  r.ThreadID.String(),
		AuthorID:  r.AuthorID.String(),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func threadIDParam(r *http.Request) (id.ThreadID, error) {
	return id.ParseThreadID(chi.URLParam(r, "threadID"))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createThreadRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	categoryID, err := id.ParseCategoryID(req.CategoryID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid category id"))
		return
	}

	t, err := h.service.Create(ctx, authz.ActorFromContext(ctx), categoryID, req.Title, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toThreadResponse(t))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	threads, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]threadResponse, 0, len(threads))
	for i := range threads {
		out = append(out, toThreadResponse(&threads[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	threadID, err := threadIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}

	t, replies, err := h.service.Get(r.Context(), threadID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := threadDetailResponse{threadResponse: toThreadResponse(t)}
	out.Replies = make([]replyResponse, 0, len(replies))
	for i := range replies {
		out.Replies = append(out.Replies, toReplyResponse(&replies[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID, err := threadIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateThreadRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	categoryID, err := id.ParseCategoryID(req.CategoryID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid category id"))
		return
	}

	t, err := h.service.Edit(ctx, authz.ActorFromContext(ctx), threadID, categoryID, req.Title, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(t))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID, err := threadIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}

	if err := h.service.Delete(ctx, authz.ActorFromContext(ctx), threadID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandlePin(w http.ResponseWriter, r *http.Request) {
	h.handleFlag(w, r, h.service.SetPinned)
}

func (h *Handler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.handleFlag(w, r, h.service.SetLocked)
}

func (h *Handler) handleFlag(w http.ResponseWriter, r *http.Request,
	set func(ctx context.Context, actor authz.Actor, threadID id.ThreadID, value bool) (*thread.Thread, error),
) {
	ctx := r.Context()
	threadID, err := threadIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[flagRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	t, err := set(ctx, authz.ActorFromContext(ctx), threadID, req.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(t))
}

func (h *Handler) HandleCreateReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID, err := threadIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid thread id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[replyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	reply, err := h.service.CreateReply(ctx, authz.ActorFromContext(ctx), threadID, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReplyResponse(reply))
}

func (h *Handler) HandleEditReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	replyID, err := id.ParseReplyID(chi.URLParam(r, "replyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid reply id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[replyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	reply, err := h.service.EditReply(ctx, authz.ActorFromContext(ctx), replyID, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReplyResponse(reply))
}

func (h *Handler) HandleDeleteReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	replyID, err := id.ParseReplyID(chi.URLParam(r, "replyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid reply id"))
		return
	}

	if err := h.service.DeleteReply(ctx, authz.ActorFromContext(ctx), replyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
