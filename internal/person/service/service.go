package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"people/internal/person/metrics"
	"people/internal/person/models"
	"people/internal/person/query"
	dErrors "people/pkg/domain-errors"
	"people/pkg/platform/audit"
	"people/pkg/platform/middleware/metadata"
	"people/pkg/platform/sentinel"
	"people/pkg/requestcontext"
)

// Store is the storage collaborator: CRUD plus predicate execution.
type Store interface {
	Executor
	Create(ctx context.Context, p models.Person) (models.Person, error)
	Update(ctx context.Context, p models.Person) (models.Person, error)
	FindByID(ctx context.Context, id int64) (models.Person, error)
	Delete(ctx context.Context, id int64) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages people and routes listing requests to the query service.
type Service struct {
	store          Store
	queries        *QueryService
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	queryOpts      []QueryOption
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
		s.queryOpts = append(s.queryOpts, WithQueryLogger(logger))
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
		s.queryOpts = append(s.queryOpts, WithQueryMetrics(m))
	}
}

// WithQueryOptions passes options through to the embedded query service.
func WithQueryOptions(opts ...QueryOption) Option {
	return func(s *Service) {
		s.queryOpts = append(s.queryOpts, opts...)
	}
}

// New constructs a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.queries = NewQueryService(store, s.queryOpts...)
	return s
}

// Queries exposes the criteria query service.
func (s *Service) Queries() *QueryService {
	return s.queries
}

// Create stores a new person. A request carrying an id is rejected.
func (s *Service) Create(ctx context.Context, req *models.PersonRequest) (models.Person, error) {
	if req == nil {
		return models.Person{}, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if req.ID != nil {
		return models.Person{}, dErrors.New(dErrors.CodeBadRequest, "a new person cannot already have an id")
	}

	created, err := s.store.Create(ctx, req.ToPerson())
	if err != nil {
		return models.Person{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
	}
	s.metrics.IncrementCreated()
	s.emitAudit(ctx, audit.EventPersonCreated, created.ID)
	return created, nil
}

// Update replaces a person. Without an id the request is treated as a
// create, reported by the second return value.
func (s *Service) Update(ctx context.Context, req *models.PersonRequest) (models.Person, bool, error) {
	if req == nil {
		return models.Person{}, false, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if req.ID == nil {
		created, err := s.Create(ctx, req)
		return created, err == nil, err
	}

	updated, err := s.store.Update(ctx, req.ToPerson())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Person{}, false, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return models.Person{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update person")
	}
	s.emitAudit(ctx, audit.EventPersonUpdated, updated.ID)
	return updated, false, nil
}

func (s *Service) FindOne(ctx context.Context, id int64) (models.Person, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Person{}, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return models.Person{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	return p, nil
}

// FindAll lists one page of every person.
func (s *Service) FindAll(ctx context.Context, pageable models.Pageable) (models.Page, error) {
	return s.queries.FindPageByCriteria(ctx, query.Criteria{}, pageable)
}

// Delete removes a person. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete person")
	}
	s.metrics.IncrementDeleted()
	s.emitAudit(ctx, audit.EventPersonDeleted, id)
	return nil
}

// Search routes a listing request. A keyword searches nationalId and
// fullName for the literal substring and ignores structured criteria.
// Otherwise the criteria are ANDed; empty criteria list everyone.
func (s *Service) Search(ctx context.Context, keyword string, criteria query.Criteria, pageable models.Pageable) (models.Page, error) {
	if keyword != "" {
		return s.queries.FindPageByOrCriteria(ctx, KeywordCriteria(keyword), pageable)
	}
	if criteria.IsEmpty() {
		return s.FindAll(ctx, pageable)
	}
	return s.queries.FindPageByCriteria(ctx, criteria, pageable)
}

// KeywordCriteria builds the OR criteria of a keyword search. The id field
// takes no part in it.
func KeywordCriteria(keyword string) query.Criteria {
	return query.Criteria{
		NationalID: query.Contains(keyword),
		FullName:   query.Contains(keyword),
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.AuditEvent, id int64) {
	requestID := requestcontext.RequestID(ctx)
	subject := strconv.FormatInt(id, 10)
	s.logger.InfoContext(ctx, string(event),
		"person_id", id,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Subject:   subject,
		ActorID:   requestcontext.Subject(ctx),
		RequestID: requestID,
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    metadata.DeviceName(requestcontext.UserAgent(ctx)),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(event),
			"person_id", id,
			"request_id", requestID,
			"error", err,
		)
	}
}
