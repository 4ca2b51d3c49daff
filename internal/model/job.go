package model

import "time"

type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// ReportJob renders one student's report workbook and stores it in object storage.
type ReportJob struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	GradeBookID  string    `json:"gradebook_id" db:"gradebook_id"`
	StudentEmail string    `json:"student_email" db:"student_email"`
	Status       JobStatus `json:"status" db:"status"`
	ObjectKey    *string   `json:"object_key,omitempty" db:"object_key"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SyncJob re-synthesizes one parent gradebook from its main gradebook.
type SyncJob struct {
	UserID            string `json:"user_id"`
	ParentGradeBookID int64  `json:"parent_gradebook_id"`
	Attempt           int    `json:"attempt"`
}

type ShareRequest struct {
	ClassroomID     string `json:"classroom_id"`
	MainGradeBookID string `json:"main_gradebook_id" binding:"required"`
	StudentEmail    string `json:"student_email" binding:"required"`
	ParentEmail     string `json:"parent_email" binding:"required"`
}

type UnshareRequest struct {
	ClassroomID       string `json:"classroom_id"`
	MainGradeBookID   string `json:"main_gradebook_id"`
	ParentGradeBookID string `json:"parent_gradebook_id"`
	ParentEmail       string `json:"parent_email" binding:"required"`
}

type GradeBookRequest struct {
	GoogleUniqueID string `json:"google_unique_id"`
	Name           string `json:"name" binding:"required"`
	Link           string `json:"link" binding:"required"`
	ClassroomID    string `json:"classroom_id" binding:"required"`
	ClassroomName  string `json:"classroom_name"`
}

type ReportRequest struct {
	GradeBookID  string `json:"gradebook_id" binding:"required"`
	StudentEmail string `json:"student_email" binding:"required"`
}

type ClassInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Section string `json:"section,omitempty"`
	Room    string `json:"room,omitempty"`
	Link    string `json:"link,omitempty"`
}
