package cache

import (
	"context"
	"fmt"
	"time"

	"emcon-server/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return client, nil
}

const denylistPrefix = "denylist:access_token:"

// DenylistAccessToken marks an access token as revoked until it would have
// expired anyway. Used on logout so a stolen access token dies with the
// session instead of living out its TTL.
func DenylistAccessToken(ctx context.Context, client *redis.Client, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, denylistPrefix+token, "1", ttl).Err()
}

// IsAccessTokenDenylisted reports whether an access token has been revoked.
func IsAccessTokenDenylisted(ctx context.Context, client *redis.Client, token string) (bool, error) {
	n, err := client.Exists(ctx, denylistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const reviewCountsKey = "hospitals:review_counts"
const reviewCountsTTL = 30 * time.Second

// GetCachedReviewCounts returns the cached per-hospital review counts, or nil
// on a miss. The cache is short-lived; ratings are recomputed on every review
// write so a small staleness window is acceptable.
func GetCachedReviewCounts(ctx context.Context, client *redis.Client) (map[string]int, error) {
	raw, err := client.HGetAll(ctx, reviewCountsKey).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	counts := make(map[string]int, len(raw))
	for hospitalID, v := range raw {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			continue
		}
		counts[hospitalID] = n
	}
	return counts, nil
}

// SetCachedReviewCounts stores per-hospital review counts with a short TTL.
func SetCachedReviewCounts(ctx context.Context, client *redis.Client, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(counts))
	for hospitalID, n := range counts {
		fields[hospitalID] = n
	}
	pipe := client.TxPipeline()
	pipe.Del(ctx, reviewCountsKey)
	pipe.HSet(ctx, reviewCountsKey, fields)
	pipe.Expire(ctx, reviewCountsKey, reviewCountsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateReviewCounts drops the cached counts after a review write.
func InvalidateReviewCounts(ctx context.Context, client *redis.Client) error {
	return client.Del(ctx, reviewCountsKey).Err()
}
