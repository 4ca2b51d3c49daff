package db

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/model"
)

func (r *repository) CreateReportJob(ctx context.Context, job *model.ReportJob) error {
	query := `INSERT INTO report_jobs (id, user_id, gradebook_id, student_email, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())`
	_, err := r.db.ExecContext(ctx, query, job.ID, job.UserID, job.GradeBookID, job.StudentEmail, job.Status)
	return err
}

func (r *repository) GetReportJob(ctx context.Context, id string) (*model.ReportJob, error) {
	query := `SELECT id, user_id, gradebook_id, student_email, status, object_key, error_message, created_at, updated_at
			  FROM report_jobs WHERE id = ?`

	var job model.ReportJob
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.GradeBookID, &job.StudentEmail, &job.Status,
		&job.ObjectKey, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "report job")
	}
	return &job, nil
}

func (r *repository) UpdateReportJobStatus(ctx context.Context, id string, status model.JobStatus, objectKey, errorMessage *string) error {
	query := `UPDATE report_jobs SET status = ?, object_key = COALESCE(?, object_key), error_message = ?, updated_at = NOW()
			  WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, objectKey, errorMessage, id)
	return err
}
