package mailrelay

import (
	"context"
	"errors"

	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/metrics"
)

// Relay validates relay requests and forwards them to a Sender.
type Relay struct {
	sender   Sender
	provider string
	metrics  *metrics.MailMetrics
	logg     *logger.Logger
}

type RelayParams struct {
	Sender   Sender
	Provider string
	Metrics  *metrics.MailMetrics
	Logger   *logger.Logger
}

func NewRelay(params RelayParams) *Relay {
	provider := params.Provider
	if provider == "" {
		provider = "unknown"
	}
	return &Relay{
		sender:   params.Sender,
		provider: provider,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}
}

// Send validates req and hands it to the provider. Errors are either a
// validation error, a *ProviderError, or an unexpected failure.
func (r *Relay) Send(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		r.metrics.Observe(r.provider, metrics.MailOutcomeInvalid)
		return nil, err
	}
	if r.sender == nil {
		r.metrics.Observe(r.provider, metrics.MailOutcomeFailed)
		return nil, errors.New("mail sender not configured")
	}

	res, err := r.sender.Send(ctx, req.Message())
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			r.metrics.Observe(r.provider, metrics.MailOutcomeRejected)
			r.warn(ctx, "mail rejected by provider", map[string]any{"provider_status": perr.StatusCode})
		} else {
			r.metrics.Observe(r.provider, metrics.MailOutcomeFailed)
		}
		return nil, err
	}

	r.metrics.Observe(r.provider, metrics.MailOutcomeSent)
	return res, nil
}

func (r *Relay) warn(ctx context.Context, msg string, fields map[string]any) {
	if r.logg == nil {
		return
	}
	fields["event"] = "mail.relay"
	fields["provider"] = r.provider
	r.logg.Warn(r.logg.WithFields(ctx, fields), msg)
}
