package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"people/internal/person/models"
	"people/internal/person/query"
	"people/internal/platform/metrics"
	"people/internal/platform/middleware"
	ratelimitmodels "people/internal/ratelimit/models"
	dErrors "people/pkg/domain-errors"
	"people/pkg/platform/httputil"
	"people/pkg/requestcontext"
)

const (
	basePath   = "/api/people"
	entityName = "person"
	appName    = "people"
)

// Service defines the person operations the handler needs.
type Service interface {
	Create(ctx context.Context, req *models.PersonRequest) (models.Person, error)
	Update(ctx context.Context, req *models.PersonRequest) (models.Person, bool, error)
	FindOne(ctx context.Context, id int64) (models.Person, error)
	Search(ctx context.Context, keyword string, criteria query.Criteria, pageable models.Pageable) (models.Page, error)
	Delete(ctx context.Context, id int64) error
}

// RateLimiter builds per-class rate limiting middleware.
type RateLimiter interface {
	RateLimit(class ratelimitmodels.EndpointClass) func(http.Handler) http.Handler
}

// Handler serves the /api/people routes.
type Handler struct {
	service         Service
	logger          *slog.Logger
	metrics         *metrics.Metrics
	jwtValidator    middleware.JWTValidator
	rateLimiter     RateLimiter
	defaultPageSize int
	maxPageSize     int
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithJWTValidator protects the write routes with bearer authentication.
func WithJWTValidator(v middleware.JWTValidator) Option {
	return func(h *Handler) {
		h.jwtValidator = v
	}
}

// WithRateLimiter applies the read budget to lookups and the write budget
// to mutations.
func WithRateLimiter(rl RateLimiter) Option {
	return func(h *Handler) {
		h.rateLimiter = rl
	}
}

// WithPaging overrides the default and maximum page sizes.
func WithPaging(defaultSize, maxSize int) Option {
	return func(h *Handler) {
		h.defaultPageSize = defaultSize
		h.maxPageSize = maxSize
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:         service,
		logger:          logger,
		defaultPageSize: models.DefaultPageSize,
		maxPageSize:     models.MaxPageSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the person routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route(basePath, func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))

		r.Group(func(r chi.Router) {
			if h.rateLimiter != nil {
				r.Use(h.rateLimiter.RateLimit(ratelimitmodels.ClassRead))
			}
			r.Get("/", h.handleList)
			r.Get("/{id}", h.handleGet)
		})

		r.Group(func(r chi.Router) {
			if h.rateLimiter != nil {
				r.Use(h.rateLimiter.RateLimit(ratelimitmodels.ClassWrite))
			}
			if h.jwtValidator != nil {
				r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			}
			r.Post("/", h.handleCreate)
			r.Put("/", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.PersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.ID != nil {
		h.logger.WarnContext(ctx, "create with existing id",
			"request_id", requestID,
			"id", *req.ID,
		)
		setFailureAlert(w, "idexists")
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a new person cannot already have an id"))
		return
	}

	created, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create person", err)
		return
	}

	id := strconv.FormatInt(created.ID, 10)
	w.Header().Set("Location", basePath+"/"+id)
	setAlert(w, "created", id)
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.PersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, created, err := h.service.Update(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update person", err)
		return
	}

	id := strconv.FormatInt(p.ID, 10)
	if created {
		w.Header().Set("Location", basePath+"/"+id)
		setAlert(w, "created", id)
		httputil.WriteJSON(w, http.StatusCreated, p)
		return
	}
	setAlert(w, "updated", id)
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	pageable, err := h.parsePageable(params)
	if err != nil {
		h.writeServiceError(ctx, w, "invalid paging parameters", err)
		return
	}

	keyword := strings.TrimSpace(params.Get("keyword"))
	var criteria query.Criteria
	if keyword == "" {
		criteria, _, err = query.ParseCriteria(params)
		if err != nil {
			h.writeServiceError(ctx, w, "invalid criteria", err)
			return
		}
	}

	page, err := h.service.Search(ctx, keyword, criteria, pageable)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list people", err)
		return
	}

	setPaginationHeaders(w, r.URL, page)
	httputil.WriteJSON(w, http.StatusOK, page.Content)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.FindOne(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get person", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, "failed to delete person", err)
		return
	}
	setAlert(w, "deleted", strconv.FormatInt(id, 10))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.logger.WarnContext(r.Context(), "invalid person id",
			"request_id", requestcontext.RequestID(r.Context()),
			"id", raw,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid person id"))
		return 0, false
	}
	return id, true
}

// writeServiceError logs and renders err. Unsupported operators become a
// 400 with the operator named in the description.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)

	var unsupported *query.UnsupportedOperatorError
	if errors.As(err, &unsupported) {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnsupportedOperator, unsupported.Error()))
		return
	}

	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func setAlert(w http.ResponseWriter, action, param string) {
	w.Header().Set("X-"+appName+"-alert", appName+"."+entityName+"."+action)
	w.Header().Set("X-"+appName+"-params", param)
}

func setFailureAlert(w http.ResponseWriter, key string) {
	w.Header().Set("X-"+appName+"-error", "error."+key)
	w.Header().Set("X-"+appName+"-params", entityName)
}
