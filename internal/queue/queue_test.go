package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/queue"
)

// redisConfig points at the Redis named by REDIS_TEST_HOST, skipping the
// test when none is available.
func redisConfig(t *testing.T) *config.Config {
	t.Helper()
	host := os.Getenv("REDIS_TEST_HOST")
	if host == "" {
		t.Skip("REDIS_TEST_HOST not set")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("REDIS_TEST_PORT")); err == nil {
		port = p
	}

	suffix := strconv.FormatInt(time.Now().UnixNano(), 10)
	return &config.Config{Redis: config.RedisConfig{
		Host:        host,
		Port:        port,
		DB:          15,
		ReportQueue: "test:reports:" + suffix,
		SyncQueue:   "test:sync:" + suffix,
		DLQSuffix:   ":dlq",
	}}
}

func TestSyncQueueDeadLetter(t *testing.T) {
	cfg := redisConfig(t)
	client, err := queue.NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Client().Del(context.Background(), cfg.Redis.SyncQueue, cfg.Redis.SyncQueue+cfg.Redis.DLQSuffix)
		client.Close()
	})

	producer := queue.NewProducer(client, cfg)
	consumer := queue.NewConsumer(client, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, producer.EnqueueSyncJob(ctx, model.SyncJob{UserID: "teacher-1", ParentGradeBookID: 7}))
	require.NoError(t, producer.EnqueueSyncJob(ctx, model.SyncJob{UserID: "teacher-1", ParentGradeBookID: 8}))

	var seen []int64
	err = consumer.ConsumeSyncQueue(ctx, func(_ context.Context, data []byte) error {
		var job model.SyncJob
		require.NoError(t, json.Unmarshal(data, &job))
		seen = append(seen, job.ParentGradeBookID)
		if len(seen) == 2 {
			cancel()
		}
		if job.ParentGradeBookID == 8 {
			return errors.New("boom")
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{7, 8}, seen, "FIFO order")

	depth, err := client.Depth(context.Background(), cfg.Redis.SyncQueue+cfg.Redis.DLQSuffix)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)
}
