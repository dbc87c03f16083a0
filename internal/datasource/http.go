package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tierklinik-dobersberg/cis-slotgrid/internal/slotgrid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// DefaultPath is the path of the timeslot endpoint relative to the base URL.
const DefaultPath = "/service/timeslots"

// HTTPSource fetches schedules from the provider's timeslot endpoint.
type HTTPSource struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default, traced HTTP client.
func WithHTTPClient(cli *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = cli
	}
}

// WithRateLimit limits the number of outgoing requests per second. A
// non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(s *HTTPSource) {
		if rps <= 0 {
			s.limiter = nil
			return
		}

		if burst < 1 {
			burst = 1
		}

		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewHTTPSource(baseURL, path string, opts ...HTTPOption) (*HTTPSource, error) {
	if path == "" {
		path = DefaultPath
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid data source URL %q: %w", baseURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid data source URL %q", baseURL)
	}

	s := &HTTPSource{
		endpoint: u.String(),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *HTTPSource) Fetch(ctx context.Context, req Request) (*slotgrid.Schedule, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, sourceError(err, "rate limit")
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+req.Query().Encode(), nil)
	if err != nil {
		return nil, sourceError(err, "failed to create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	log := logrus.WithFields(logrus.Fields{
		"url":     s.endpoint,
		"request": req.String(),
	})

	res, err := s.client.Do(httpReq)
	if err != nil {
		return nil, sourceError(err, "failed to fetch timeslots")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))

		log.WithField("status", res.StatusCode).Warn("timeslot provider returned an error")

		return nil, sourceError(nil, "unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var schedule slotgrid.Schedule
	if err := json.NewDecoder(res.Body).Decode(&schedule); err != nil {
		return nil, sourceError(err, "failed to decode timeslots")
	}

	log.WithField("days", len(schedule.Dates)).Debug("fetched timeslots")

	return &schedule, nil
}
