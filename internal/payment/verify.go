package payment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotVerified = errors.New("ipn not verified")

// Verifier confirms with PayPal that an IPN body really came from it.
type Verifier interface {
	Verify(ctx context.Context, body []byte) error
}

// PostbackVerifier posts the notification back with cmd=_notify-validate
// through a circuit breaker.
type PostbackVerifier struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[string]
}

func NewPostbackVerifier(actionURL string) *PostbackVerifier {
	st := gobreaker.Settings{
		Name:        "paypal-ipn-postback",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= 5 && float64(c.TotalFailures)/float64(c.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	return &PostbackVerifier{
		url: actionURL,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[string](st),
	}
}

func (v *PostbackVerifier) Verify(ctx context.Context, body []byte) error {
	payload := append([]byte("cmd=_notify-validate&"), body...)

	answer, err := v.breaker.Execute(func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		res, err := v.http.Do(req)
		if err != nil {
			return "", err
		}
		defer res.Body.Close()
		b, err := io.ReadAll(io.LimitReader(res.Body, 1024))
		if err != nil {
			return "", err
		}
		if res.StatusCode != http.StatusOK {
			return "", fmt.Errorf("postback status %s", res.Status)
		}
		return strings.TrimSpace(string(b)), nil
	})
	if err != nil {
		return fmt.Errorf("ipn postback: %w", err)
	}
	if answer != "VERIFIED" {
		return fmt.Errorf("%w: %q", ErrNotVerified, answer)
	}
	return nil
}
