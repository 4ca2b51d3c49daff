package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/classes", handler.ListClasses)

		gradebooks := v1.Group("/gradebooks")
		{
			gradebooks.GET("", handler.ListGradeBooks)
			gradebooks.POST("", handler.AddGradeBook)
			gradebooks.GET("/:classroom_id/:id", handler.GetGradeBook)
			gradebooks.PUT("/:classroom_id/:id", handler.EditGradeBook)
			gradebooks.DELETE("/:classroom_id/:id", handler.RemoveGradeBook)
			gradebooks.GET("/:classroom_id/:id/settings", handler.GetSettings)
			gradebooks.GET("/:classroom_id/:id/students", handler.ListStudents)
			gradebooks.GET("/:classroom_id/:id/students/:email", handler.GetStudent)
			gradebooks.GET("/:classroom_id/:id/students/:email/report", handler.GetStudentReport)
		}

		v1.POST("/shares", handler.Share)
		v1.POST("/shares/revoke", handler.Unshare)
		v1.GET("/parents/:email/students", handler.ListParentStudents)
		v1.POST("/parent-gradebooks/:id/sync", handler.SyncParentGradeBook)

		v1.POST("/report-jobs", handler.CreateReportJob)
		v1.GET("/report-jobs/:id", handler.GetReportJob)
	}
}
