package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/gin-gonic/gin"
)

type editGradeBookRequest struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

func (h *Handler) ListGradeBooks(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	books, err := h.registry.List(c.Request.Context(), user, c.Query("classroom_id"))
	if err != nil {
		h.fail(c, err, "Failed to list gradebooks")
		return
	}
	if books == nil {
		books = []model.GradeBook{}
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) AddGradeBook(c *gin.Context) {
	var req model.GradeBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.registry.Add(c.Request.Context(), sess, req)
	if err != nil {
		h.fail(c, err, "Failed to add gradebook")
		return
	}
	c.JSON(http.StatusCreated, res.Value)
}

func (h *Handler) GetGradeBook(c *gin.Context) {
	gb, err := h.registry.Get(c.Request.Context(), c.Param("classroom_id"), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Gradebook not found")
		return
	}
	c.JSON(http.StatusOK, gb)
}

func (h *Handler) EditGradeBook(c *gin.Context) {
	var req editGradeBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	gb, err := h.registry.Edit(c.Request.Context(), c.Param("classroom_id"), c.Param("id"), req.Name, req.Link)
	if err != nil {
		h.fail(c, err, "Failed to edit gradebook")
		return
	}
	c.JSON(http.StatusOK, gb)
}

func (h *Handler) RemoveGradeBook(c *gin.Context) {
	if err := h.registry.Remove(c.Request.Context(), c.Param("classroom_id"), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to remove gradebook")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStudents returns every student row of a registered gradebook.
// with_percent=true includes the per-assignment percent of each submission.
func (h *Handler) ListStudents(c *gin.Context) {
	gb, ok := h.gradeBook(c)
	if !ok {
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	withPercent, _ := strconv.ParseBool(c.Query("with_percent"))
	res, err := h.sheets.Students(c.Request.Context(), sess, gb.GoogleUniqueID, withPercent)
	if err != nil {
		h.fail(c, err, "Failed to read students")
		return
	}
	students := res.Value
	if students == nil {
		students = []model.GradebookStudent{}
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	gb, ok := h.gradeBook(c)
	if !ok {
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	student, err := h.student(c, sess, gb.GoogleUniqueID)
	if err != nil {
		h.fail(c, err, "Failed to read student")
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) GetSettings(c *gin.Context) {
	gb, ok := h.gradeBook(c)
	if !ok {
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.sheets.Settings(c.Request.Context(), sess, gb.GoogleUniqueID)
	if err != nil {
		h.fail(c, err, "Failed to read settings")
		return
	}
	c.JSON(http.StatusOK, res.Value)
}

// GetStudentReport builds the grade report of one student synchronously.
func (h *Handler) GetStudentReport(c *gin.Context) {
	gb, ok := h.gradeBook(c)
	if !ok {
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	student, err := h.student(c, sess, gb.GoogleUniqueID)
	if err != nil {
		h.fail(c, err, "Failed to read student")
		return
	}

	settings, err := h.sheets.Settings(ctx, sess, gb.GoogleUniqueID)
	if err != nil {
		h.fail(c, err, "Failed to read settings")
		return
	}

	rep, err := h.engine.StudentReport(student, &settings.Value)
	if err != nil {
		h.fail(c, err, "Failed to build report")
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) gradeBook(c *gin.Context) (*model.GradeBook, bool) {
	gb, err := h.registry.Get(c.Request.Context(), c.Param("classroom_id"), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Gradebook not found")
		return nil, false
	}
	return gb, true
}

func (h *Handler) student(c *gin.Context, sess auth.Session, spreadsheetID string) (*model.GradebookStudent, error) {
	email := c.Param("email")
	res, err := h.sheets.StudentByEmail(c.Request.Context(), sess, spreadsheetID, email)
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%w: %s", perrors.ErrStudentNotFound, email)
	}
	return res.Value, nil
}
