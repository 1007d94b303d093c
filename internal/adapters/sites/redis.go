package sites

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/message-notifier/internal/domain"
	"github.com/jsamuelsen/message-notifier/internal/platform/config"
	"github.com/jsamuelsen/message-notifier/internal/platform/logging"
)

const redisServiceName = "redis"

// Redis reads the current site from a Redis hash with id, domain and name fields.
// The host application owns the hash; this registry only reads it.
type Redis struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedis creates a registry backed by the given client.
func NewRedis(client *redis.Client, key string, logger *slog.Logger) *Redis {
	if client == nil {
		panic("sites.NewRedis: client is required")
	}

	if key == "" {
		key = config.DefaultSiteKey
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Redis{
		client: client,
		key:    key,
		logger: logger.With(slog.String("component", "sites.Redis")),
	}
}

// NewRedisClient opens a client from configuration. The connection is lazy.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// CurrentSite loads the site hash.
func (r *Redis) CurrentSite(ctx context.Context) (*domain.Site, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, domain.WrapUnavailable(redisServiceName, fmt.Errorf("reading %s: %w", r.key, err))
	}

	if len(fields) == 0 || fields["domain"] == "" {
		return nil, domain.NewNotFoundError("site", r.key)
	}

	site := &domain.Site{
		ID:     fields["id"],
		Domain: fields["domain"],
		Name:   fields["name"],
	}
	if site.Name == "" {
		site.Name = site.Domain
	}

	r.logger.Log(ctx, logging.LevelTrace, "site loaded", slog.String("domain", site.Domain))

	return site, nil
}

// Name returns the health check name.
func (r *Redis) Name() string {
	return redisServiceName
}

// Check pings the server.
func (r *Redis) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return domain.WrapUnavailable(redisServiceName, err)
	}

	return nil
}
