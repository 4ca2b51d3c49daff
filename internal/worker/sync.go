package worker

import (
	"context"
	"encoding/json"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/queue"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
)

// SyncConsumer delivers sync jobs. *queue.Consumer satisfies it.
type SyncConsumer interface {
	ConsumeSyncQueue(ctx context.Context, handler queue.MessageHandler) error
	DeadLetter(ctx context.Context, queueName string, data []byte)
}

// SyncEnqueuer puts a sync job back on the queue. *queue.Producer satisfies it.
type SyncEnqueuer interface {
	EnqueueSyncJob(ctx context.Context, job model.SyncJob) error
}

// SyncWorker consumes parent gradebook sync jobs. Retryable failures are
// re-enqueued up to the configured number of attempts, everything else is
// dead-lettered.
type SyncWorker struct {
	cfg        *config.Config
	syncer     *ParentSyncer
	consumer   SyncConsumer
	requeue    SyncEnqueuer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewSyncWorker(
	cfg *config.Config,
	syncer *ParentSyncer,
	consumer SyncConsumer,
	requeue SyncEnqueuer,
) *SyncWorker {
	return &SyncWorker{
		cfg:        cfg,
		syncer:     syncer,
		consumer:   consumer,
		requeue:    requeue,
		workerPool: NewWorkerPool(cfg.Workers.Sync.Count),
		log:        logger.Named("sync-worker"),
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting sync worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeSyncQueue(ctx, w.handleMessage)
}

func (w *SyncWorker) Stop() {
	w.log.Info().Msg("Stopping sync worker")
	w.workerPool.Stop()
}

func (w *SyncWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.SyncJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal sync job")
		return err
	}

	w.log.Info().
		Str("user_id", job.UserID).
		Int64("parent_gradebook_id", job.ParentGradeBookID).
		Int("attempt", job.Attempt).
		Msg("Processing sync job")

	if !w.workerPool.Submit(func(ctx context.Context) error {
		return w.Process(ctx, job)
	}) {
		return ErrPoolFull
	}
	return nil
}

// Process runs one sync job and decides what happens to it on failure.
func (w *SyncWorker) Process(ctx context.Context, job model.SyncJob) error {
	err := w.syncer.Sync(ctx, job.UserID, job.ParentGradeBookID)
	if err == nil {
		return nil
	}

	log := w.log.With().
		Int64("parent_gradebook_id", job.ParentGradeBookID).
		Int("attempt", job.Attempt).
		Logger()

	if perrors.IsRetryable(err) && job.Attempt+1 < w.cfg.Workers.RetryAttempts {
		next := job
		next.Attempt++
		rerr := w.requeue.EnqueueSyncJob(ctx, next)
		if rerr == nil {
			log.Warn().Err(err).Msg("Sync failed, re-enqueued")
			return err
		}
		log.Error().Err(rerr).Msg("Failed to re-enqueue sync job")
	}

	log.Error().Err(err).Msg("Sync failed, moving to dead letter queue")
	data, merr := json.Marshal(job)
	if merr != nil {
		return merr
	}
	w.consumer.DeadLetter(ctx, w.cfg.Redis.SyncQueue, data)
	return err
}
