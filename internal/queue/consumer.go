package queue

import (
	"context"
	"errors"
	"time"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const pollTimeout = 5 * time.Second

type Consumer struct {
	client *redis.Client
	cfg    *config.Config
	log    zerolog.Logger
}

// MessageHandler processes one queued payload. A returned error moves the
// payload to the queue's dead-letter list.
type MessageHandler func(ctx context.Context, data []byte) error

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		cfg:    cfg,
		log:    logger.Get(),
	}
}

func (c *Consumer) ConsumeReportQueue(ctx context.Context, handler MessageHandler) error {
	return c.consume(ctx, c.cfg.Redis.ReportQueue, handler)
}

func (c *Consumer) ConsumeSyncQueue(ctx context.Context, handler MessageHandler) error {
	return c.consume(ctx, c.cfg.Redis.SyncQueue, handler)
}

// DeadLetter parks a payload that failed after it left the queue. It still
// runs when ctx is already cancelled so shutdown does not lose the payload.
func (c *Consumer) DeadLetter(ctx context.Context, queueName string, data []byte) {
	dlqName := queueName + c.cfg.Redis.DLQSuffix
	if err := c.client.LPush(context.WithoutCancel(ctx), dlqName, data).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", dlqName).Msg("Failed to move message to DLQ")
		return
	}
	c.log.Warn().Str("dlq", dlqName).Msg("Message moved to DLQ")
}

func (c *Consumer) consume(ctx context.Context, queueName string, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, pollTimeout, queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to consume message")
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := []byte(result[1])
			if err := handler(ctx, message); err != nil {
				c.log.Error().Err(err).Str("queue", queueName).Msg("Failed to process message")
				c.DeadLetter(ctx, queueName, message)
			}
		}
	}
}
