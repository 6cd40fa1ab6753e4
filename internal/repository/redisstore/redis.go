// Package redisstore backs the shared summary cache and the high-risk alert channel with Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/transpopilot/backend/internal/config"
	"github.com/transpopilot/backend/internal/domain"
)

// AlertChannel is the pub/sub channel high-risk alerts are published on
const AlertChannel = "fleet:alerts"

const alertTypeHighRisk = "high_risk"

type RedisStore struct {
	client   *redis.Client
	dedupTTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &RedisStore{client: client, dedupTTL: cfg.AlertDedupTTL}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetBytes returns the value at key, or nil when the key does not exist
func (r *RedisStore) GetBytes(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get %s: %w", key, err)
	}
	return val, nil
}

// SetBytes stores value at key with a TTL
func (r *RedisStore) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %s: %w", key, err)
	}
	return nil
}

// Alert is the payload published for a high-risk driver
type Alert struct {
	Type           string           `json:"type"`
	DriverID       string           `json:"driver_id"`
	DriverName     string           `json:"driver_name"`
	BehaviorScore  int              `json:"behavior_score"`
	SafetyRating   int              `json:"safety_rating"`
	IncidentsCount int              `json:"incidents_count"`
	RiskLevel      domain.RiskLevel `json:"risk_level"`
	Trend          domain.Trend     `json:"improvement_trend"`
	ComputedAt     time.Time        `json:"computed_at"`
}

func newAlert(s domain.DriverBehaviorSummary) Alert {
	return Alert{
		Type:           alertTypeHighRisk,
		DriverID:       s.DriverID,
		DriverName:     s.DriverName,
		BehaviorScore:  s.BehaviorScore,
		SafetyRating:   s.SafetyRating,
		IncidentsCount: s.IncidentsCount,
		RiskLevel:      s.RiskLevel,
		Trend:          s.ImprovementTrend,
		ComputedAt:     s.ComputedAt,
	}
}

func alertKey(driverID string) string {
	return fmt.Sprintf("alert:%s:%s", driverID, alertTypeHighRisk)
}

// NotifyHighRisk publishes an alert for the driver unless one was already published
// within the dedup TTL
func (r *RedisStore) NotifyHighRisk(ctx context.Context, s domain.DriverBehaviorSummary) error {
	payload, err := json.Marshal(newAlert(s))
	if err != nil {
		return fmt.Errorf("redis: failed to marshal alert: %w", err)
	}

	fresh, err := r.client.SetNX(ctx, alertKey(s.DriverID), "1", r.dedupTTL).Result()
	if err != nil {
		return fmt.Errorf("redis: alert dedup failed: %w", err)
	}
	if !fresh {
		return nil
	}

	if err := r.client.Publish(ctx, AlertChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis: failed to publish alert: %w", err)
	}
	return nil
}
