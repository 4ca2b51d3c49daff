package model

import "time"

// GradeBook is a teacher-registered main gradebook spreadsheet.
type GradeBook struct {
	ID             int64     `json:"id" db:"id"`
	GoogleUniqueID string    `json:"google_unique_id" db:"google_unique_id"`
	Name           string    `json:"name" db:"name"`
	Link           string    `json:"link" db:"link"`
	ClassroomID    string    `json:"classroom_id" db:"classroom_id"`
	ClassroomName  string    `json:"classroom_name" db:"classroom_name"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedDate    time.Time `json:"created_date" db:"created_date"`
}

type ParentGradeBook struct {
	ID              int64     `json:"id" db:"id"`
	GoogleUniqueID  string    `json:"google_unique_id" db:"google_unique_id"`
	Name            string    `json:"name" db:"name"`
	MainGradeBookID int64     `json:"main_gradebook_id" db:"main_gradebook_id"`
	ClassroomName   string    `json:"classroom_name" db:"classroom_name"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedDate     time.Time `json:"created_date" db:"created_date"`
	Link            string    `json:"link" db:"link"`
	IsDeleted       bool      `json:"is_deleted" db:"is_deleted"`
}

type SharedStatus int

const (
	SharedStatusNotShared SharedStatus = 0
	SharedStatusShared    SharedStatus = 1
)

func (s SharedStatus) String() string {
	if s == SharedStatusShared {
		return "SHARED"
	}
	return "NOTSHARED"
}

// ParentSharedGradeBook is one (parent, teacher, parent gradebook) sharing row.
// It is mutated in place on re-share and unshare.
type ParentSharedGradeBook struct {
	ID                int64        `json:"id" db:"id"`
	ParentGradeBookID int64        `json:"parent_gradebook_id" db:"parent_gradebook_id"`
	ParentID          int64        `json:"parent_id" db:"parent_id"`
	TeacherAspID      string       `json:"teacher_asp_id" db:"teacher_asp_id"`
	FolderID          int64        `json:"folder_id" db:"folder_id"`
	SharedStatus      SharedStatus `json:"shared_status" db:"shared_status"`
}

type Parent struct {
	ID        int64  `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	Name      string `json:"name" db:"name"`
	Avatar    string `json:"avatar" db:"avatar"`
	CreatedBy string `json:"created_by" db:"created_by"`
}

type ParentStudent struct {
	ID           int64  `json:"id" db:"id"`
	ParentID     int64  `json:"parent_id" db:"parent_id"`
	StudentEmail string `json:"student_email" db:"student_email"`
	GradeBookID  int64  `json:"gradebook_id" db:"gradebook_id"`
	// Populated on listing.
	ParentEmail       string `json:"parent_email,omitempty" db:"-"`
	GradeBookGoogleID string `json:"gradebook_google_id,omitempty" db:"-"`
}

// Folder is a Drive folder created by the portal: the teacher's root folder
// or a per-student inner folder under it.
type Folder struct {
	ID             int64  `json:"id" db:"id"`
	GoogleFileID   string `json:"google_file_id" db:"google_file_id"`
	FolderName     string `json:"folder_name" db:"folder_name"`
	ParentFolderID *int64 `json:"parent_folder_id,omitempty" db:"parent_folder_id"`
	CreatedBy      string `json:"created_by" db:"created_by"`
}

func (f *Folder) IsRoot() bool {
	return f.ParentFolderID == nil
}

// SharedParentGradeBook is a parent gradebook that is currently shared,
// together with the teacher who owns it.
type SharedParentGradeBook struct {
	ParentGradeBook ParentGradeBook `json:"parent_gradebook"`
	TeacherAspID    string          `json:"teacher_asp_id"`
}

// UserToken is one named login token of a user (access_token, refresh_token, expires_at, ...).
type UserToken struct {
	UserID        string `json:"user_id" db:"user_id"`
	LoginProvider string `json:"login_provider" db:"login_provider"`
	Name          string `json:"name" db:"name"`
	Value         string `json:"value" db:"value"`
}

const (
	TokenAccess      = "access_token"
	TokenRefresh     = "refresh_token"
	TokenExpiresAt   = "expires_at"
	TokenUpdated     = "token_updated"
	TokenUpdatedTime = "token_updated_time"
)
