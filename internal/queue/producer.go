package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	cfg    *config.Config
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

func (p *Producer) EnqueueReportJob(ctx context.Context, job model.ReportJob) error {
	return p.push(ctx, p.cfg.Redis.ReportQueue, job)
}

func (p *Producer) EnqueueSyncJob(ctx context.Context, job model.SyncJob) error {
	return p.push(ctx, p.cfg.Redis.SyncQueue, job)
}

func (p *Producer) push(ctx context.Context, queueName string, job interface{}) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job for %s: %w", queueName, err)
	}
	return p.client.LPush(ctx, queueName, data).Err()
}
