package api

import (
	"net/http"

	"github.com/karac38/gdevapps-portal/internal/model"

	"github.com/gin-gonic/gin"
)

// Share gives a parent read access to a fresh copy of their child's grades.
func (h *Handler) Share(c *gin.Context) {
	var req model.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	res, err := h.sharer.Share(c.Request.Context(), sess, req)
	if err != nil {
		h.fail(c, err, "Failed to share gradebook")
		return
	}

	h.log.Info().
		Str("gradebook_id", req.MainGradeBookID).
		Str("parent_email", req.ParentEmail).
		Msg("Gradebook shared")

	c.JSON(http.StatusCreated, res.Value)
}

// Unshare revokes a parent's access. With only main_gradebook_id set the
// teacher's active parent gradebook for that main gradebook is retired.
func (h *Handler) Unshare(c *gin.Context) {
	var req model.UnshareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.MainGradeBookID == "" && req.ParentGradeBookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "main_gradebook_id or parent_gradebook_id is required"})
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := h.sharer.Unshare(c.Request.Context(), sess, req); err != nil {
		h.fail(c, err, "Failed to unshare gradebook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gradebook unshared"})
}

// ListParentStudents lists the students a parent is linked to.
func (h *Handler) ListParentStudents(c *gin.Context) {
	students, err := h.repo.ListParentStudents(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err, "Failed to list parent students")
		return
	}
	if students == nil {
		students = []model.ParentStudent{}
	}
	c.JSON(http.StatusOK, students)
}
