package person

import (
	"log/slog"

	"people/internal/person/handler"
	"people/internal/person/service"
)

// Service exposes person management and criteria search.
type Service = service.Service

// Handler wires HTTP endpoints to the person service.
type Handler = handler.Handler

// NewService constructs the person service over a store.
func NewService(store service.Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler constructs the HTTP handler for the /api/people routes.
func NewHandler(s *Service, logger *slog.Logger, opts ...handler.Option) *Handler {
	return handler.New(s, logger, opts...)
}
