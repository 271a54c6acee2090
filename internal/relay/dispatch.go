// Package relay fans a single prompt out to every configured AI service and
// joins the outcomes into one ordered result.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"multiai-bot/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxReasonLen   = 120
)

// ErrNoServices indicates that no AI service credential was configured.
// It is a startup error, never a per-message one.
var ErrNoServices = errors.New("relay: no services configured")

// Completer is the adapter contract implemented by every backend client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service pairs a display name with the client that talks to the backend.
type Service struct {
	Name   string
	Client Completer
}

// Dispatcher invokes all configured services concurrently with an individual
// per-call deadline and collects one outcome per service.
type Dispatcher struct {
	services []Service
	timeout  time.Duration
}

// NewDispatcher validates the service list and builds a Dispatcher.
// A timeout of zero or less falls back to the 30s default.
func NewDispatcher(services []Service, timeout time.Duration) (*Dispatcher, error) {
	if len(services) == 0 {
		return nil, ErrNoServices
	}
	for _, svc := range services {
		if strings.TrimSpace(svc.Name) == "" {
			return nil, errors.New("relay: service name must not be empty")
		}
		if svc.Client == nil {
			return nil, fmt.Errorf("relay: service %q has no client", svc.Name)
		}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		services: append([]Service(nil), services...),
		timeout:  timeout,
	}, nil
}

// ServiceNames returns the configured service names in configuration order.
func (d *Dispatcher) ServiceNames() []string {
	names := make([]string, len(d.services))
	for i, svc := range d.services {
		names[i] = svc.Name
	}
	return names
}

// Dispatch sends the prompt to every service at once and waits for the full
// set to settle. The result preserves configuration order regardless of
// completion order, and individual failures never abort the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) domain.AggregateResult {
	return iter.Map(d.services, func(svc *Service) domain.Outcome {
		return d.invoke(ctx, *svc, prompt)
	})
}

func (d *Dispatcher) invoke(ctx context.Context, svc Service, prompt string) domain.Outcome {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := svc.Client.Complete(callCtx, prompt)
	if err != nil {
		return domain.Failure(svc.Name, failureReason(err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Failure(svc.Name, "empty response")
	}
	return domain.Success(svc.Name, text)
}

// httpStatusCoder matches the status errors raised by the integration
// clients without importing them.
type httpStatusCoder interface {
	HTTPStatusCode() int
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		switch code := statusErr.HTTPStatusCode(); code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "bad credential"
		case http.StatusTooManyRequests:
			return "rate limited"
		default:
			return fmt.Sprintf("api error %d", code)
		}
	}
	reason := strings.TrimSpace(err.Error())
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen] + "..."
	}
	return reason
}
