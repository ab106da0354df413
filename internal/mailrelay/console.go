package mailrelay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/meddot/meddot-backend/pkg/logger"
)

// ConsoleSender logs messages instead of delivering them.
type ConsoleSender struct {
	logg *logger.Logger
}

func NewConsoleSender(logg *logger.Logger) *ConsoleSender {
	return &ConsoleSender{logg: logg}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) (*Result, error) {
	id := "console-" + uuid.NewString()
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":      "mail.console",
			"message_id": id,
			"to":         msg.To,
			"subject":    msg.Subject,
			"html_bytes": len(msg.HTML),
		})
		s.logg.Info(logCtx, "email not delivered; console sender active")
	}
	payload, _ := json.Marshal(map[string]string{"id": id})
	return &Result{StatusCode: http.StatusOK, Payload: payload}, nil
}
