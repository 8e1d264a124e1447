package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	personmetrics "people/internal/person/metrics"
	personservice "people/internal/person/service"
	"people/internal/person/store/cache"
	personstore "people/internal/person/store/person"
	"people/internal/platform/config"
	"people/internal/platform/kafka"
	"people/internal/platform/postgres"
	redisclient "people/internal/platform/redis"
	ratelimitservice "people/internal/ratelimit/service"
	"people/internal/ratelimit/store/bucket"
	"people/pkg/platform/audit"
	kafkaaudit "people/pkg/platform/audit/store/kafka"
	memoryaudit "people/pkg/platform/audit/store/memory"
	"people/pkg/platform/httputil"
)

// infra holds the optional backing services selected by configuration.
type infra struct {
	store      personservice.Store
	storeKind  string
	auditStore audit.Store
	buckets    ratelimitservice.BucketStore

	db    *sql.DB
	redis *redisclient.Client
	kafka *kgo.Client
	log   *slog.Logger
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger, m *personmetrics.Metrics) (*infra, error) {
	in := &infra{log: log}

	if cfg.Database.URL == "" {
		in.store = personstore.NewInMemoryStore()
		in.storeKind = "memory"
	} else {
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		in.db = db
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(db); err != nil {
				in.Close()
				return nil, err
			}
		}
		in.store = personstore.NewPostgres(db)
		in.storeKind = "postgres"
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.buckets = bucket.NewInMemoryBucketStore()
	if rc != nil {
		in.redis = rc
		in.buckets = bucket.NewRedisBucketStore(rc.Client)
		in.store = cache.NewCachedStore(in.store, cache.NewRedisCache(rc.Client, cfg.Redis.CacheTTL),
			cache.WithLogger(log),
			cache.WithMetrics(m),
		)
		in.storeKind += "+redis"
	}

	kc, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		in.Close()
		return nil, err
	}
	if kc == nil {
		in.auditStore = memoryaudit.NewInMemoryStore()
		return in, nil
	}
	in.kafka = kc
	if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.AuditTopic); err != nil {
		in.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	in.auditStore = kafkaaudit.New(kc, cfg.Kafka.AuditTopic)
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Warn("failed to close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.log.Warn("failed to close postgres", "error", err)
		}
	}
}

func (in *infra) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"store": in.storeKind}
	healthy := true
	if in.db != nil {
		status["postgres"] = "ok"
		if err := in.db.PingContext(ctx); err != nil {
			status["postgres"] = err.Error()
			healthy = false
		}
	}
	if in.redis != nil {
		status["redis"] = "ok"
		if err := in.redis.Health(ctx); err != nil {
			status["redis"] = err.Error()
			healthy = false
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, status)
}
