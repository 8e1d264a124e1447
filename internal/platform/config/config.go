package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	platformstrings "people/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Paging    PagingConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig selects the Postgres store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrateOnStart  bool
}

// RedisConfig enables the person read-through cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type PagingConfig struct {
	DefaultSize int
	MaxSize     int
}

// RateLimitConfig sets per-IP budgets for the API. Windows are shared
// through Redis when it is configured.
type RateLimitConfig struct {
	Enabled       bool
	ReadRequests  int
	WriteRequests int
	Window        time.Duration
}

const envPrefix = "PEOPLE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("jwt_signing_key", "dev-secret-key-change-in-production")
	v.SetDefault("jwt_issuer", "people")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.audit_topic", "people.audit")

	v.SetDefault("paging.default_size", 20)
	v.SetDefault("paging.max_size", 2000)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.read_requests", 300)
	v.SetDefault("ratelimit.write_requests", 60)
	v.SetDefault("ratelimit.window", time.Minute)
}

// Load reads an optional config.yaml from the given paths, then applies
// PEOPLE_* environment overrides (PEOPLE_DATABASE_URL for database.url).
func Load(paths ...string) (Server, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Server{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Server{
		Addr:            v.GetString("addr"),
		JWTSigningKey:   v.GetString("jwt_signing_key"),
		JWTIssuer:       v.GetString("jwt_issuer"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		LogLevel:        v.GetString("log_level"),
		Database: DatabaseConfig{
			URL:             v.GetString("database.url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			MigrateOnStart:  v.GetBool("database.migrate_on_start"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("redis.url"),
			PoolSize:     v.GetInt("redis.pool_size"),
			MinIdleConns: v.GetInt("redis.min_idle_conns"),
			DialTimeout:  v.GetDuration("redis.dial_timeout"),
			ReadTimeout:  v.GetDuration("redis.read_timeout"),
			WriteTimeout: v.GetDuration("redis.write_timeout"),
			CacheTTL:     v.GetDuration("redis.cache_ttl"),
		},
		Kafka: KafkaConfig{
			Brokers:    platformstrings.SplitDedupe([]string{v.GetString("kafka.brokers")}, ","),
			AuditTopic: v.GetString("kafka.audit_topic"),
		},
		Paging: PagingConfig{
			DefaultSize: v.GetInt("paging.default_size"),
			MaxSize:     v.GetInt("paging.max_size"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("ratelimit.enabled"),
			ReadRequests:  v.GetInt("ratelimit.read_requests"),
			WriteRequests: v.GetInt("ratelimit.write_requests"),
			Window:        v.GetDuration("ratelimit.window"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.Paging.DefaultSize <= 0 || c.Paging.MaxSize < c.Paging.DefaultSize {
		return fmt.Errorf("config: invalid paging sizes default=%d max=%d", c.Paging.DefaultSize, c.Paging.MaxSize)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Window <= 0 || c.RateLimit.ReadRequests <= 0 || c.RateLimit.WriteRequests <= 0) {
		return errors.New("config: rate limit budgets and window must be positive")
	}
	return nil
}
