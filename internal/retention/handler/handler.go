package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusforum/internal/retention"
	"campusforum/pkg/platform/httputil"
	"campusforum/pkg/requestcontext"
)

// Handler exposes the retention policy to administrators.
type Handler struct {
	settings  retention.SettingsProvider
	scheduler *retention.Scheduler
	logger    *slog.Logger
}

func New(settings retention.SettingsProvider, scheduler *retention.Scheduler, logger *slog.Logger) *Handler {
	return &Handler{settings: settings, scheduler: scheduler, logger: logger}
}

// Register mounts retention endpoints. Mount behind the admin middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/retention", h.HandleGet)
	r.Put("/admin/retention", h.HandleUpdate)
}

type settingsResponse struct {
	AutoDeleteDays int    `json:"auto_delete_days"`
	SchedulerState string `json:"scheduler_state"`
}

type updateSettingsRequest struct {
	AutoDeleteDays int `json:"auto_delete_days"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	days, err := h.settings.AutoDeleteDays(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settingsResponse{
		AutoDeleteDays: days,
		SchedulerState: string(h.scheduler.Status()),
	})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[updateSettingsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.settings.SetAutoDeleteDays(ctx, req.AutoDeleteDays); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "retention threshold updated",
		"auto_delete_days", req.AutoDeleteDays,
		"actor_id", requestcontext.UserID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, settingsResponse{
		AutoDeleteDays: req.AutoDeleteDays,
		SchedulerState: string(h.scheduler.Status()),
	})
}
