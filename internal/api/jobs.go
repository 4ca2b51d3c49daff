package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateReportJob queues an xlsx export of one student's report.
func (h *Handler) CreateReportJob(c *gin.Context) {
	var req model.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	job := model.ReportJob{
		ID:           uuid.NewString(),
		UserID:       sess.UserID,
		GradeBookID:  req.GradeBookID,
		StudentEmail: req.StudentEmail,
		Status:       model.JobStatusQueued,
	}
	if err := h.repo.CreateReportJob(ctx, &job); err != nil {
		h.fail(c, err, "Failed to create report job")
		return
	}

	if err := h.queue.EnqueueReportJob(ctx, job); err != nil {
		msg := err.Error()
		if uerr := h.repo.UpdateReportJobStatus(ctx, job.ID, model.JobStatusFailed, nil, &msg); uerr != nil {
			h.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to mark job failed")
		}
		h.fail(c, err, "Failed to queue report job")
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("gradebook_id", job.GradeBookID).
		Msg("Report job enqueued")

	c.JSON(http.StatusAccepted, job)
}

// GetReportJob returns a report job of the calling user. Jobs of other users
// are reported as missing.
func (h *Handler) GetReportJob(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	job, err := h.repo.GetReportJob(c.Request.Context(), c.Param("id"))
	if err == nil && job.UserID != user {
		err = fmt.Errorf("%w: report job %s", perrors.ErrNotFound, job.ID)
	}
	if err != nil {
		h.fail(c, err, "Report job not found")
		return
	}
	c.JSON(http.StatusOK, job)
}

// SyncParentGradeBook queues a refresh of one parent gradebook from its
// main gradebook.
func (h *Handler) SyncParentGradeBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent gradebook ID"})
		return
	}

	user, ok := userID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	pgb, err := h.repo.GetParentGradeBookByID(ctx, id)
	if err == nil && pgb.CreatedBy != user {
		err = fmt.Errorf("%w: parent gradebook %d", perrors.ErrParentGradeBookNotFound, id)
	}
	if err != nil {
		h.fail(c, err, "Parent gradebook not found")
		return
	}

	job := model.SyncJob{UserID: user, ParentGradeBookID: id}
	if err := h.queue.EnqueueSyncJob(ctx, job); err != nil {
		h.fail(c, err, "Failed to queue sync job")
		return
	}

	h.log.Info().
		Int64("parent_gradebook_id", id).
		Str("user_id", user).
		Msg("Sync job enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Sync job queued successfully",
		"job":     job,
	})
}
