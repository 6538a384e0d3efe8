package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusforum/internal/authz"
	"campusforum/internal/identity"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/httputil"
	"campusforum/pkg/requestcontext"
)

// Service defines the interface for account operations.
type Service interface {
	Register(ctx context.Context, username, email, password string) (*identity.Profile, error)
	Login(ctx context.Context, username, password string) (string, *identity.Profile, error)
	GetProfile(ctx context.Context, userID id.UserID) (*identity.Profile, error)
	UpdateProfile(ctx context.Context, actor authz.Actor, update identity.ProfileUpdate) (*identity.Profile, error)
	List(ctx context.Context, actor authz.Actor) ([]identity.Profile, error)
	Ban(ctx context.Context, actor authz.Actor, targetID id.UserID, reason string) error
	Unban(ctx context.Context, actor authz.Actor, targetID id.UserID) error
	ChangeRole(ctx context.Context, actor authz.Actor, targetID id.UserID, newRole id.Role) (*identity.Profile, error)
	Delete(ctx context.Context, actor authz.Actor, targetID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the authenticated account endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Get("/users/{userID}", h.HandleGetProfile)
	r.Patch("/me", h.HandleUpdateProfile)
	r.Post("/users/{userID}/ban", h.HandleBan)
	r.Post("/users/{userID}/unban", h.HandleUnban)
	r.Put("/users/{userID}/role", h.HandleChangeRole)
	r.Delete("/users/{userID}", h.HandleDelete)
}

type registerRequest struct {
	Username string `json:"username" valid:"required"`
	Email    string `json:"email" valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

type loginRequest struct {
	Username string `json:"username" valid:"required"`
	Password string `json:"password" valid:"required"`
}

type updateProfileRequest struct {
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

type banRequest struct {
	Reason string `json:"reason"`
}

type changeRoleRequest struct {
	Role string `json:"role" valid:"required"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        profileResponse `json:"user"`
}

func toProfileResponse(p *identity.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID.String(),
		Username:  p.Username,
		Email:     p.Email,
		Role:      p.Role.String(),
		Status:    p.Status.String(),
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
	}
}

func userIDParam(r *http.Request) (id.UserID, error) {
	return id.ParseUserID(chi.URLParam(r, "userID"))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProfileResponse(profile))
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	token, profile, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toProfileResponse(profile),
	})
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[updateProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	profile, err := h.service.UpdateProfile(ctx, authz.ActorFromContext(ctx), identity.ProfileUpdate{
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profiles, err := h.service.List(ctx, authz.ActorFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]profileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toProfileResponse(&profiles[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, err := userIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[banRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.Ban(ctx, authz.ActorFromContext(ctx), targetID, req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUnban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, err := userIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.service.Unban(ctx, authz.ActorFromContext(ctx), targetID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, err := userIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[changeRoleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	role, err := id.ParseRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.ChangeRole(ctx, authz.ActorFromContext(ctx), targetID, role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID, err := userIDParam(r)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.service.Delete(ctx, authz.ActorFromContext(ctx), targetID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
