package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/logger"

	"github.com/rs/zerolog"
)

// RefreshWorker periodically re-syncs every shared parent gradebook so that
// parents see grades entered since the last share.
type RefreshWorker struct {
	cfg    *config.Config
	repo   db.ParentGradeBookRepository
	syncer *ParentSyncer
	timer  *time.Timer
	now    func() time.Time
	log    zerolog.Logger
}

func NewRefreshWorker(
	cfg *config.Config,
	repo db.ParentGradeBookRepository,
	syncer *ParentSyncer,
) *RefreshWorker {
	return &RefreshWorker{
		cfg:    cfg,
		repo:   repo,
		syncer: syncer,
		now:    time.Now,
		log:    logger.Named("refresh-worker"),
	}
}

func (w *RefreshWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting refresh worker")

	nextRun := w.getNextRunTime()
	w.log.Info().Time("next_run", nextRun).Msg("Scheduled next refresh")

	if w.cfg.Workers.Refresh.RunOnStart {
		w.log.Info().Msg("Running initial refresh on startup")
		if _, err := w.RefreshAll(ctx); err != nil {
			w.log.Error().Err(err).Msg("Initial refresh failed")
		}
	}

	w.timer = time.NewTimer(nextRun.Sub(w.now()))

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Refresh worker context cancelled")
			return ctx.Err()
		case <-w.timer.C:
			w.log.Info().Msg("Starting scheduled refresh")
			if _, err := w.RefreshAll(ctx); err != nil {
				w.log.Error().Err(err).Msg("Scheduled refresh failed")
			}

			nextRun = w.getNextRunTime()
			w.log.Info().Time("next_run", nextRun).Msg("Scheduled next refresh")
			w.timer.Reset(nextRun.Sub(w.now()))
		}
	}
}

func (w *RefreshWorker) Stop() {
	w.log.Info().Msg("Stopping refresh worker")
	if w.timer != nil {
		w.timer.Stop()
	}
}

// getNextRunTime returns the end of the current day for daily intervals,
// or now plus the interval for shorter ones.
func (w *RefreshWorker) getNextRunTime() time.Time {
	now := w.now()
	interval := w.cfg.Workers.Refresh.Interval
	if interval > 0 && interval < 24*time.Hour {
		return now.Add(interval)
	}

	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	if !now.Before(endOfDay) {
		endOfDay = endOfDay.Add(24 * time.Hour)
	}
	return endOfDay
}

// RefreshAll syncs every shared parent gradebook once. A failing gradebook
// does not stop the others. It returns how many were refreshed.
func (w *RefreshWorker) RefreshAll(ctx context.Context) (int, error) {
	startTime := w.now()

	shared, err := w.repo.ListSharedParentGradeBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list shared parent gradebooks: %w", err)
	}

	var refreshed, failed int
	for _, s := range shared {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		if err := w.syncer.Sync(ctx, s.TeacherAspID, s.ParentGradeBook.ID); err != nil {
			failed++
			w.log.Error().
				Err(err).
				Int64("parent_gradebook_id", s.ParentGradeBook.ID).
				Str("teacher", s.TeacherAspID).
				Msg("Failed to refresh parent gradebook")
			continue
		}
		refreshed++
	}

	w.log.Info().
		Dur("duration", w.now().Sub(startTime)).
		Int("refreshed", refreshed).
		Int("failed", failed).
		Msg("Parent gradebook refresh completed")

	if failed > 0 {
		return refreshed, fmt.Errorf("%d of %d parent gradebooks failed to refresh", failed, len(shared))
	}
	return refreshed, nil
}
