package service

import (
	"context"
	"fmt"
	"time"

	"people/internal/ratelimit/models"
)

// BucketStore keeps the sliding windows.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

// Service applies a per-class limit to each client IP.
type Service struct {
	store  BucketStore
	limits map[models.EndpointClass]models.Limit
}

type Option func(*Service)

// WithLimit overrides the budget of one class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(s *Service) {
		s.limits[class] = limit
	}
}

// DefaultLimits apply when no override is configured.
func DefaultLimits() map[models.EndpointClass]models.Limit {
	return map[models.EndpointClass]models.Limit{
		models.ClassRead:  {Requests: 300, Window: time.Minute},
		models.ClassWrite: {Requests: 60, Window: time.Minute},
	}
}

func New(store BucketStore, opts ...Option) *Service {
	s := &Service{store: store, limits: DefaultLimits()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIP counts one request from ip against the budget of class.
func (s *Service) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	if !class.IsValid() {
		return nil, fmt.Errorf("unknown endpoint class %q", class)
	}
	limit := s.limits[class]
	return s.store.Allow(ctx, key(class, ip), limit.Requests, limit.Window)
}

// ResetIP clears the window of ip for class.
func (s *Service) ResetIP(ctx context.Context, ip string, class models.EndpointClass) error {
	return s.store.Reset(ctx, key(class, ip))
}

func key(class models.EndpointClass, ip string) string {
	return string(class) + ":ip:" + ip
}
