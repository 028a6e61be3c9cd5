package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	webhookQueueKey = "incident_events"
)

// RedisWebhookPublisher ставит события об инцидентах в очередь Redis для доставки воркером
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Broadcast публикует событие в очередь Redis
func (p *RedisWebhookPublisher) Broadcast(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
