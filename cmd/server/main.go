package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	jwttoken "people/internal/jwt_token"
	"people/internal/person"
	personhandler "people/internal/person/handler"
	personmetrics "people/internal/person/metrics"
	personservice "people/internal/person/service"
	"people/internal/platform/config"
	"people/internal/platform/httpserver"
	"people/internal/platform/logger"
	"people/internal/platform/metrics"
	"people/internal/platform/middleware"
	ratelimitmw "people/internal/ratelimit/middleware"
	ratelimitmodels "people/internal/ratelimit/models"
	ratelimitservice "people/internal/ratelimit/service"
	"people/pkg/platform/audit/publisher"
	"people/pkg/platform/middleware/metadata"
)

const (
	jwtAudience     = "people-api"
	auditBufferSize = 256
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	configDir := flag.String("config", ".", "directory holding an optional config.yaml")
	mintToken := flag.String("mint-token", "", "print a one-hour bearer token for the given subject and exit")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, jwtAudience)

	if *mintToken != "" {
		token, err := jwtService.GenerateAccessToken(*mintToken, "people:write", time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, log, jwtService); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger, jwtService *jwttoken.JWTService) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.New(reg)
	personMetrics := personmetrics.New(reg)

	infra, err := openInfra(ctx, cfg, log, personMetrics)
	if err != nil {
		return err
	}
	defer infra.Close()

	auditPublisher := publisher.NewPublisher(infra.auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	svc := person.NewService(infra.store,
		personservice.WithLogger(log),
		personservice.WithMetrics(personMetrics),
		personservice.WithAuditPublisher(auditPublisher),
	)
	limiter := ratelimitservice.New(infra.buckets,
		ratelimitservice.WithLimit(ratelimitmodels.ClassRead, ratelimitmodels.Limit{
			Requests: cfg.RateLimit.ReadRequests, Window: cfg.RateLimit.Window,
		}),
		ratelimitservice.WithLimit(ratelimitmodels.ClassWrite, ratelimitmodels.Limit{
			Requests: cfg.RateLimit.WriteRequests, Window: cfg.RateLimit.Window,
		}),
	)
	rateLimiter := ratelimitmw.New(limiter, log,
		ratelimitmw.WithDisabled(!cfg.RateLimit.Enabled),
		ratelimitmw.WithRegisterer(reg),
	)

	h := person.NewHandler(svc, log,
		personhandler.WithMetrics(httpMetrics),
		personhandler.WithJWTValidator(jwttoken.NewJWTServiceAdapter(jwtService)),
		personhandler.WithPaging(cfg.Paging.DefaultSize, cfg.Paging.MaxSize),
		personhandler.WithRateLimiter(rateLimiter),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	h.Register(r)
	r.Handle("/metrics", metrics.Handler(reg))
	r.Get("/healthz", infra.handleHealth)

	srv := httpserver.New(cfg.Addr, r, httpserver.WithWriteTimeout(cfg.RequestTimeout+5*time.Second))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting people service", "addr", cfg.Addr, "store", infra.storeKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
