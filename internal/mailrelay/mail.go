// Package mailrelay forwards transactional email to a third-party provider.
package mailrelay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
)

// MissingFieldsMessage is returned verbatim when any request field is empty.
const MissingFieldsMessage = "Missing required fields: to, subject, html"

var validate = validator.New()

// Request is the relay body.
type Request struct {
	To      string `json:"to" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, MissingFieldsMessage)
	}
	return nil
}

func (r Request) Message() Message {
	return Message{To: r.To, Subject: r.Subject, HTML: r.HTML}
}

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result is a provider acceptance. Payload is passed back to the caller untouched.
type Result struct {
	StatusCode int
	Payload    json.RawMessage
}

// ProviderError carries a provider rejection and its decoded error body.
type ProviderError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider rejected request: status %d", e.StatusCode)
}

type Sender interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// payloadFrom keeps JSON bodies as-is and wraps anything else in {"message": body}.
func payloadFrom(body string, fallback map[string]string) json.RawMessage {
	if body == "" {
		raw, _ := json.Marshal(fallback)
		return raw
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	raw, _ := json.Marshal(map[string]string{"message": body})
	return raw
}
