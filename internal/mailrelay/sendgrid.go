package mailrelay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/meddot/meddot-backend/pkg/config"
	pkgerrors "github.com/meddot/meddot-backend/pkg/errors"
)

const (
	defaultSendgridHost = "https://api.sendgrid.com"
	sendEndpoint        = "/v3/mail/send"
)

type SendgridSender struct {
	key     string
	host    string
	from    *sgmail.Email
	timeout time.Duration
	do      func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

func NewSendgridSender(cfg config.MailConfig) (*SendgridSender, error) {
	if strings.TrimSpace(cfg.SendgridAPIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("mail from address required")
	}
	host := strings.TrimRight(strings.TrimSpace(cfg.SendgridHost), "/")
	if host == "" {
		host = defaultSendgridHost
	}
	return &SendgridSender{
		key:     cfg.SendgridAPIKey,
		host:    host,
		from:    sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		timeout: cfg.Timeout,
		do:      sendgrid.MakeRequestWithContext,
	}, nil
}

func (s *SendgridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	return m
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := sendgrid.GetRequest(s.key, sendEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.do(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, &ProviderError{
			StatusCode: res.StatusCode,
			Payload:    payloadFrom(res.Body, map[string]string{"message": http.StatusText(res.StatusCode)}),
		}
	}

	return &Result{
		StatusCode: res.StatusCode,
		Payload:    payloadFrom(res.Body, map[string]string{"id": messageID(res.Headers)}),
	}, nil
}

func messageID(headers map[string][]string) string {
	for key, values := range headers {
		if strings.EqualFold(key, "X-Message-Id") && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
