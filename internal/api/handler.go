package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/classroom"
	"github.com/karac38/gdevapps-portal/internal/config"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/parentbook"
	"github.com/karac38/gdevapps-portal/internal/registry"
	"github.com/karac38/gdevapps-portal/internal/report"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHeader carries the portal user id the request acts as.
const UserHeader = "X-User-ID"

// JobQueue accepts background jobs. *queue.Producer satisfies it.
type JobQueue interface {
	EnqueueReportJob(ctx context.Context, job model.ReportJob) error
	EnqueueSyncJob(ctx context.Context, job model.SyncJob) error
}

type Handler struct {
	cfg       *config.Config
	repo      db.Repository
	queue     JobQueue
	sheets    *spreadsheet.Service
	registry  *registry.Registry
	classroom *classroom.Client
	sharer    *parentbook.Sharer
	engine    *report.Engine
	log       zerolog.Logger
}

func NewHandler(
	cfg *config.Config,
	repo db.Repository,
	queue JobQueue,
	sheets *spreadsheet.Service,
	registry *registry.Registry,
	classroom *classroom.Client,
	sharer *parentbook.Sharer,
) *Handler {
	return &Handler{
		cfg:       cfg,
		repo:      repo,
		queue:     queue,
		sheets:    sheets,
		registry:  registry,
		classroom: classroom,
		sharer:    sharer,
		engine:    report.NewEngine(),
		log:       logger.Named("api"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// ListClasses returns the teacher's active Classroom courses.
func (h *Handler) ListClasses(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.classroom.ListCourses(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err, "Failed to list classes")
		return
	}
	c.JSON(http.StatusOK, res.Value)
}

// session loads the credential of the user named by UserHeader. It writes
// the error response itself and reports false when there is none.
// userID reads the acting user from the request header.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader(UserHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing " + UserHeader + " header"})
		return "", false
	}
	return id, true
}

func (h *Handler) session(c *gin.Context) (auth.Session, bool) {
	user, ok := userID(c)
	if !ok {
		return auth.Session{}, false
	}

	sess, err := auth.LoadSession(c.Request.Context(), h.repo, user)
	if err != nil {
		h.fail(c, err, "Failed to load session")
		return auth.Session{}, false
	}
	return sess, true
}

// fail logs err and writes the status it maps to.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	status := statusOf(err)

	event := h.log.Warn()
	if status >= http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Msg(msg)

	body := gin.H{"error": msg}
	if status < http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

func statusOf(err error) int {
	var verr perrors.ValidationError
	switch {
	case errors.Is(err, perrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, perrors.ErrNotFound),
		errors.Is(err, perrors.ErrGradeBookNotFound),
		errors.Is(err, perrors.ErrParentGradeBookNotFound),
		errors.Is(err, perrors.ErrStudentNotFound),
		errors.Is(err, perrors.ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, perrors.ErrAlreadyExists),
		errors.Is(err, perrors.ErrAlreadyShared):
		return http.StatusConflict
	case errors.As(err, &verr),
		errors.Is(err, perrors.ErrInvalidLink),
		errors.Is(err, perrors.ErrParentNotLinked),
		errors.Is(err, perrors.ErrNothingToUnshare),
		errors.Is(err, perrors.ErrInvalidSortMode),
		errors.Is(err, perrors.ErrSchemaBounds):
		return http.StatusBadRequest
	case errors.Is(err, perrors.ErrNotImplemented):
		return http.StatusNotImplemented
	case perrors.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
