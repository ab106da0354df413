package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meddot/meddot-backend/api/middleware"
	"github.com/meddot/meddot-backend/api/responses"
	"github.com/meddot/meddot-backend/internal/mailrelay"
	"github.com/meddot/meddot-backend/internal/toast"
	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
	"github.com/meddot/meddot-backend/pkg/logger"
)

const mailSentToast = "Email sent"

// MailSender is the relay the endpoint forwards to.
type MailSender interface {
	Send(ctx context.Context, req mailrelay.Request) (*mailrelay.Result, error)
}

// ToastEnqueuer receives the success toast for authenticated senders.
type ToastEnqueuer interface {
	Enqueue(userID, message string, kind toast.Kind, duration time.Duration) (string, bool)
}

type relayError struct {
	Error string `json:"error"`
}

// MailRelayPreflight answers CORS preflight with a plain "ok".
func MailRelayPreflight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// SendEmail relays {to, subject, html} to the mail provider. It answers with a
// flat JSON body instead of the API envelope. toasts may be nil.
func SendEmail(relay MailSender, toasts ToastEnqueuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if relay == nil {
			responses.WriteJSON(w, http.StatusInternalServerError, relayError{Error: "mail relay unavailable"})
			return
		}

		var req mailrelay.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeRelayFailure(r.Context(), logg, w, err)
			return
		}

		res, err := relay.Send(r.Context(), req)
		if err != nil {
			var perr *mailrelay.ProviderError
			switch {
			case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
				responses.WriteJSON(w, http.StatusBadRequest, relayError{Error: mailrelay.MissingFieldsMessage})
			case errors.As(err, &perr):
				responses.WriteJSON(w, http.StatusBadRequest, perr.Payload)
			default:
				writeRelayFailure(r.Context(), logg, w, err)
			}
			return
		}

		if userID := middleware.UserIDFromContext(r.Context()); userID != "" && toasts != nil {
			toasts.Enqueue(userID, mailSentToast, toast.KindSuccess, 0)
		}
		responses.WriteJSON(w, http.StatusOK, res.Payload)
	}
}

func writeRelayFailure(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		logg.Error(logCtx, "mail.relay.failed", err)
	}
	responses.WriteJSON(w, http.StatusInternalServerError, relayError{Error: err.Error()})
}
