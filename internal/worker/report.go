package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/excel"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/queue"
	"github.com/karac38/gdevapps-portal/internal/report"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	"github.com/karac38/gdevapps-portal/internal/storage"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
)

// ReportRepository is what the report worker reads and updates.
type ReportRepository interface {
	db.TokenRepository
	db.ReportJobRepository
}

// ReportConsumer delivers report jobs. *queue.Consumer satisfies it.
type ReportConsumer interface {
	ConsumeReportQueue(ctx context.Context, handler queue.MessageHandler) error
}

// ReportWorker renders queued student reports to xlsx and stores them.
type ReportWorker struct {
	cfg        *config.Config
	repo       ReportRepository
	sheets     *spreadsheet.Service
	engine     *report.Engine
	renderer   *excel.ReportRenderer
	storage    storage.Storage
	consumer   ReportConsumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewReportWorker(
	cfg *config.Config,
	repo ReportRepository,
	sheets *spreadsheet.Service,
	storage storage.Storage,
	consumer ReportConsumer,
) *ReportWorker {
	return &ReportWorker{
		cfg:        cfg,
		repo:       repo,
		sheets:     sheets,
		engine:     report.NewEngine(),
		renderer:   excel.NewReportRenderer(),
		storage:    storage,
		consumer:   consumer,
		workerPool: NewWorkerPool(cfg.Workers.Report.Count),
		log:        logger.Named("report-worker"),
	}
}

func (w *ReportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting report worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeReportQueue(ctx, w.handleMessage)
}

func (w *ReportWorker) Stop() {
	w.log.Info().Msg("Stopping report worker")
	w.workerPool.Stop()
}

func (w *ReportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ReportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal report job")
		return err
	}

	w.log.Info().
		Str("job_id", job.ID).
		Str("gradebook_id", job.GradeBookID).
		Msg("Processing report job")

	if !w.workerPool.Submit(func(ctx context.Context) error {
		return w.Process(ctx, job)
	}) {
		return ErrPoolFull
	}
	return nil
}

// Process renders one report job. The job row ends DONE with the object key,
// or FAILED with the error.
func (w *ReportWorker) Process(ctx context.Context, job model.ReportJob) error {
	log := w.log.With().Str("job_id", job.ID).Logger()

	if err := w.repo.UpdateReportJobStatus(ctx, job.ID, model.JobStatusRunning, nil, nil); err != nil {
		log.Error().Err(err).Msg("Failed to mark job running")
		return err
	}

	key, err := w.export(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("Report export failed")
		msg := err.Error()
		if uerr := w.repo.UpdateReportJobStatus(ctx, job.ID, model.JobStatusFailed, nil, &msg); uerr != nil {
			log.Error().Err(uerr).Msg("Failed to mark job failed")
		}
		return err
	}

	if err := w.repo.UpdateReportJobStatus(ctx, job.ID, model.JobStatusDone, &key, nil); err != nil {
		log.Error().Err(err).Msg("Failed to mark job done")
		return err
	}

	log.Info().Str("object_key", key).Msg("Report exported")
	return nil
}

func (w *ReportWorker) export(ctx context.Context, job model.ReportJob) (string, error) {
	sess, err := auth.LoadSession(ctx, w.repo, job.UserID)
	if err != nil {
		return "", err
	}

	student, err := w.sheets.StudentByEmail(ctx, sess, job.GradeBookID, job.StudentEmail)
	sess = sess.With(student.Credential)
	if err != nil {
		return "", err
	}
	if student.Value == nil {
		return "", fmt.Errorf("%w: %s", perrors.ErrStudentNotFound, job.StudentEmail)
	}

	settings, err := w.sheets.Settings(ctx, sess, job.GradeBookID)
	if err != nil {
		return "", err
	}

	rep, err := w.engine.StudentReport(student.Value, &settings.Value)
	if err != nil {
		return "", err
	}

	data, err := w.renderer.Render(rep)
	if err != nil {
		return "", err
	}

	key := storage.ReportKey(w.cfg.Storage.S3.ReportPrefix, job.GradeBookID, job.ID)
	if err := w.storage.Upload(ctx, key, storage.XLSXContentType, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return key, nil
}
