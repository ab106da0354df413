package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meddot/meddot-backend/api/middleware"
	"github.com/meddot/meddot-backend/api/responses"
	"github.com/meddot/meddot-backend/api/validators"
	"github.com/meddot/meddot-backend/internal/toast"
	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
	"github.com/meddot/meddot-backend/pkg/logger"
)

const (
	maxToastMessageLength = 500
	maxToastDuration      = 24 * time.Hour
)

// ToastService is the per-user toast surface the handlers need.
type ToastService interface {
	Render(userID string) []toast.View
	Enqueue(userID, message string, kind toast.Kind, duration time.Duration) (string, bool)
	Dismiss(userID, id string) bool
	Broadcast(message string, kind toast.Kind, duration time.Duration) int
}

type enqueueToastRequest struct {
	Message    string `json:"message"`
	Kind       string `json:"kind"`
	DurationMS int64  `json:"duration_ms"`
}

type enqueueToastResponse struct {
	ID       string `json:"id"`
	Accepted bool   `json:"accepted"`
}

type dismissToastResponse struct {
	Dismissed bool `json:"dismissed"`
}

type broadcastToastResponse struct {
	Delivered int `json:"delivered"`
}

func (req enqueueToastRequest) normalize() (string, toast.Kind, time.Duration) {
	return validators.SanitizeString(req.Message, maxToastMessageLength),
		toast.ParseKind(req.Kind),
		clampToastDuration(req.DurationMS)
}

func ListToasts(svc ToastService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, svc.Render(userID))
	}
}

// clampToastDuration caps durations at maxToastDuration before converting, so
// large millisecond values cannot overflow. Non-positive values pass through
// as zero and pick up the center's default.
func clampToastDuration(ms int64) time.Duration {
	switch {
	case ms <= 0:
		return 0
	case ms > maxToastDuration.Milliseconds():
		return maxToastDuration
	default:
		return time.Duration(ms) * time.Millisecond
	}
}

// EnqueueToast accepts any kind and duration; they are normalized rather than rejected.
func EnqueueToast(svc ToastService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var req enqueueToastRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, kind, duration := req.normalize()
		id, accepted := svc.Enqueue(userID, message, kind, duration)
		responses.WriteSuccess(w, enqueueToastResponse{ID: id, Accepted: accepted})
	}
}

func DismissToast(svc ToastService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast service unavailable"))
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		toastID := strings.TrimSpace(chi.URLParam(r, "toastId"))
		responses.WriteSuccess(w, dismissToastResponse{Dismissed: svc.Dismiss(userID, toastID)})
	}
}

func BroadcastToast(svc ToastService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast service unavailable"))
			return
		}

		var req enqueueToastRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, kind, duration := req.normalize()
		delivered := 0
		if message != "" {
			delivered = svc.Broadcast(message, kind, duration)
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{
				"event":     "toast.broadcast",
				"kind":      string(kind),
				"delivered": delivered,
			}), "toast broadcast")
		}
		responses.WriteSuccess(w, broadcastToastResponse{Delivered: delivered})
	}
}

func requireUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return "", false
	}
	return userID, true
}
