package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"people/internal/person/metrics"
	"people/internal/person/models"
	"people/internal/person/query"
	"people/pkg/requestcontext"
)

const tracerName = "people/internal/person/service"

// Executor runs compiled predicates against storage.
type Executor interface {
	Find(ctx context.Context, p query.Predicate) ([]models.Person, error)
	FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error)
}

// QueryService translates criteria into predicates and hands them to the
// executor. It holds no state between calls and never wraps errors: an
// UnsupportedOperatorError or a storage failure reaches the caller as is.
type QueryService struct {
	executor Executor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type QueryOption func(*QueryService)

func WithQueryLogger(logger *slog.Logger) QueryOption {
	return func(s *QueryService) {
		s.logger = logger
	}
}

func WithQueryMetrics(m *metrics.Metrics) QueryOption {
	return func(s *QueryService) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) QueryOption {
	return func(s *QueryService) {
		s.tracer = tracer
	}
}

func NewQueryService(executor Executor, opts ...QueryOption) *QueryService {
	s := &QueryService{
		executor: executor,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByCriteria returns every person matching all populated criteria.
func (s *QueryService) FindByCriteria(ctx context.Context, criteria query.Criteria) ([]models.Person, error) {
	ctx, span := s.start(ctx, "person.query.FindByCriteria", query.CombinatorAnd, false)
	defer span.End()
	defer s.metrics.ObserveQuery(query.CombinatorAnd.String(), false, time.Now())

	s.logger.DebugContext(ctx, "find by criteria",
		"criteria", criteria.String(),
		"request_id", requestcontext.RequestID(ctx),
	)

	predicate, err := s.translate(ctx, span, criteria, query.CombinatorAnd)
	if err != nil {
		return nil, err
	}
	people, err := s.executor.Find(ctx, predicate)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("query.results", len(people)))
	return people, nil
}

// FindPageByCriteria returns one page of people matching all populated
// criteria.
func (s *QueryService) FindPageByCriteria(ctx context.Context, criteria query.Criteria, pageable models.Pageable) (models.Page, error) {
	return s.findPage(ctx, "person.query.FindPageByCriteria", criteria, query.CombinatorAnd, pageable)
}

// FindPageByOrCriteria returns one page of people matching at least one
// populated criterion.
func (s *QueryService) FindPageByOrCriteria(ctx context.Context, criteria query.Criteria, pageable models.Pageable) (models.Page, error) {
	return s.findPage(ctx, "person.query.FindPageByOrCriteria", criteria, query.CombinatorOr, pageable)
}

func (s *QueryService) findPage(ctx context.Context, name string, criteria query.Criteria, comb query.Combinator, pageable models.Pageable) (models.Page, error) {
	ctx, span := s.start(ctx, name, comb, true)
	defer span.End()
	defer s.metrics.ObserveQuery(comb.String(), true, time.Now())

	s.logger.DebugContext(ctx, "find page by criteria",
		"criteria", criteria.String(),
		"mode", comb.String(),
		"page", pageable.Page,
		"size", pageable.Size,
		"request_id", requestcontext.RequestID(ctx),
	)

	predicate, err := s.translate(ctx, span, criteria, comb)
	if err != nil {
		return models.Page{}, err
	}
	page, err := s.executor.FindPage(ctx, predicate, pageable)
	if err != nil {
		recordError(span, err)
		return models.Page{}, err
	}
	span.SetAttributes(attribute.Int64("query.total", page.TotalElements))
	return page, nil
}

func (s *QueryService) start(ctx context.Context, name string, comb query.Combinator, paged bool) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("query.mode", comb.String()),
		attribute.Bool("query.paged", paged),
	))
}

func (s *QueryService) translate(ctx context.Context, span trace.Span, criteria query.Criteria, comb query.Combinator) (query.Predicate, error) {
	predicate, err := query.Translate(criteria, comb)
	if err != nil {
		var unsupported *query.UnsupportedOperatorError
		if errors.As(err, &unsupported) {
			s.metrics.IncrementRejected()
			s.logger.WarnContext(ctx, "criteria rejected",
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		recordError(span, err)
		return query.Predicate{}, err
	}
	return predicate, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
