package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"people/internal/ratelimit/models"
	"people/pkg/requestcontext"
)

type stubLimiter struct {
	result *models.RateLimitResult
	err    error
	gotIP  string
	calls  int
}

func (l *stubLimiter) CheckIP(_ context.Context, ip string, _ models.EndpointClass) (*models.RateLimitResult, error) {
	l.calls++
	l.gotIP = ip
	return l.result, l.err
}

type RateLimitMiddlewareSuite struct {
	suite.Suite
	limiter *stubLimiter
	logger  *slog.Logger
}

func TestRateLimitMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(RateLimitMiddlewareSuite))
}

func (s *RateLimitMiddlewareSuite) SetupTest() {
	s.limiter = &stubLimiter{}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *RateLimitMiddlewareSuite) serve(m *Middleware) (*httptest.ResponseRecorder, bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/people", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "192.0.2.7", "curl/8"))
	rec := httptest.NewRecorder()
	m.RateLimit(models.ClassWrite)(next).ServeHTTP(rec, req)
	return rec, reached
}

func (s *RateLimitMiddlewareSuite) TestAllowed() {
	s.limiter.result = &models.RateLimitResult{
		Allowed: true, Limit: 10, Remaining: 9, ResetAt: time.Unix(1700000000, 0),
	}

	rec, reached := s.serve(New(s.limiter, s.logger))

	s.True(reached)
	s.Equal("192.0.2.7", s.limiter.gotIP)
	s.Equal("10", rec.Header().Get("X-RateLimit-Limit"))
	s.Equal("9", rec.Header().Get("X-RateLimit-Remaining"))
	s.Equal("1700000000", rec.Header().Get("X-RateLimit-Reset"))
}

func (s *RateLimitMiddlewareSuite) TestExceeded() {
	s.limiter.result = &models.RateLimitResult{
		Allowed: false, Limit: 10, ResetAt: time.Now().Add(30 * time.Second), RetryAfter: 30,
	}
	reg := prometheus.NewRegistry()

	rec, reached := s.serve(New(s.limiter, s.logger, WithRegisterer(reg)))

	s.False(reached)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("30", rec.Header().Get("Retry-After"))
	s.Equal("0", rec.Header().Get("X-RateLimit-Remaining"))

	var body models.RateLimitExceededResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	s.Equal("rate_limit_exceeded", body.Error)
	s.Equal(30, body.RetryAfter)

	families, err := reg.Gather()
	s.Require().NoError(err)
	s.Require().Len(families, 1)
	s.Equal("people_ratelimit_rejected_total", families[0].GetName())
	s.Equal(float64(1), families[0].GetMetric()[0].GetCounter().GetValue())
}

func (s *RateLimitMiddlewareSuite) TestLimiterErrorFailsOpen() {
	s.limiter.err = errors.New("redis down")

	rec, reached := s.serve(New(s.limiter, s.logger))

	s.True(reached)
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(rec.Header().Get("X-RateLimit-Limit"))
}

func (s *RateLimitMiddlewareSuite) TestDisabled() {
	_, reached := s.serve(New(s.limiter, s.logger, WithDisabled(true)))

	s.True(reached)
	s.Zero(s.limiter.calls)
}
