package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

type GradeBookRepository interface {
	CreateGradeBook(ctx context.Context, gb *model.GradeBook) error
	UpdateGradeBook(ctx context.Context, gb *model.GradeBook) error
	DeleteGradeBook(ctx context.Context, classroomID, googleUniqueID string) error
	GetGradeBookByID(ctx context.Context, id int64) (*model.GradeBook, error)
	GetGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.GradeBook, error)
	GetGradeBook(ctx context.Context, classroomID, googleUniqueID string) (*model.GradeBook, error)
	ListGradeBooks(ctx context.Context, classroomID, userID string) ([]model.GradeBook, error)
}

type ParentGradeBookRepository interface {
	CreateParentGradeBook(ctx context.Context, pgb *model.ParentGradeBook) error
	DeleteParentGradeBook(ctx context.Context, id int64) error
	GetParentGradeBookByID(ctx context.Context, id int64) (*model.ParentGradeBook, error)
	GetParentGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.ParentGradeBook, error)
	GetParentGradeBookByName(ctx context.Context, name string) (*model.ParentGradeBook, error)
	GetParentGradeBookByNameAndMain(ctx context.Context, name string, mainGradeBookID int64) (*model.ParentGradeBook, error)
	FindActiveParentGradeBook(ctx context.Context, mainGradeBookID int64, createdBy string) (*model.ParentGradeBook, error)
	ListSharedParentGradeBooks(ctx context.Context) ([]model.SharedParentGradeBook, error)
}

type ShareRepository interface {
	GetShare(ctx context.Context, parentGradeBookID, parentID int64, teacherAspID string) (*model.ParentSharedGradeBook, error)
	GetShareByStatus(ctx context.Context, parentGradeBookID int64, teacherAspID string, status model.SharedStatus) (*model.ParentSharedGradeBook, error)
	ListShares(ctx context.Context, parentGradeBookID int64) ([]model.ParentSharedGradeBook, error)
	CreateShare(ctx context.Context, share *model.ParentSharedGradeBook) error
	UpdateShare(ctx context.Context, share *model.ParentSharedGradeBook) error
	DeleteShare(ctx context.Context, id int64) error
}

type ParentRepository interface {
	GetParentByEmail(ctx context.Context, email string) (*model.Parent, error)
	GetParentByID(ctx context.Context, id int64) (*model.Parent, error)
	CreateParent(ctx context.Context, p *model.Parent) error
	GetParentStudent(ctx context.Context, parentID int64, studentEmail string, gradeBookID int64) (*model.ParentStudent, error)
	CreateParentStudent(ctx context.Context, ps *model.ParentStudent) error
	ListParentStudents(ctx context.Context, parentEmail string) ([]model.ParentStudent, error)
}

type FolderRepository interface {
	GetRootFolder(ctx context.Context, userID string) (*model.Folder, error)
	GetInnerFolder(ctx context.Context, rootFolderID int64, name string) (*model.Folder, error)
	CreateFolder(ctx context.Context, f *model.Folder) error
	DeleteFolder(ctx context.Context, id int64) error
}

type TokenRepository interface {
	GetAllTokensByUserID(ctx context.Context, userID string) ([]model.UserToken, error)
	UpdateUserToken(ctx context.Context, token model.UserToken) error
}

type ReportJobRepository interface {
	CreateReportJob(ctx context.Context, job *model.ReportJob) error
	GetReportJob(ctx context.Context, id string) (*model.ReportJob, error)
	UpdateReportJobStatus(ctx context.Context, id string, status model.JobStatus, objectKey, errorMessage *string) error
}

// Repository is every persisted record of the portal.
type Repository interface {
	GradeBookRepository
	ParentGradeBookRepository
	ShareRepository
	ParentRepository
	FolderRepository
	TokenRepository
	ReportJobRepository
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, perrors.ErrNotFound)
	}
	return err
}

const gradeBookColumns = `id, google_unique_id, name, link, classroom_id, classroom_name, created_by, created_date`

func scanGradeBook(row interface{ Scan(...interface{}) error }) (*model.GradeBook, error) {
	var gb model.GradeBook
	err := row.Scan(&gb.ID, &gb.GoogleUniqueID, &gb.Name, &gb.Link,
		&gb.ClassroomID, &gb.ClassroomName, &gb.CreatedBy, &gb.CreatedDate)
	if err != nil {
		return nil, err
	}
	return &gb, nil
}

func (r *repository) CreateGradeBook(ctx context.Context, gb *model.GradeBook) error {
	query := `INSERT INTO gradebooks (google_unique_id, name, link, classroom_id, classroom_name, created_by, created_date)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, gb.GoogleUniqueID, gb.Name, gb.Link,
		gb.ClassroomID, gb.ClassroomName, gb.CreatedBy, gb.CreatedDate)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("gradebook %s: %w", gb.GoogleUniqueID, perrors.ErrAlreadyExists)
		}
		return err
	}

	gb.ID, err = res.LastInsertId()
	return err
}

func (r *repository) UpdateGradeBook(ctx context.Context, gb *model.GradeBook) error {
	query := `UPDATE gradebooks SET name = ?, link = ?, google_unique_id = ?, classroom_name = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, gb.Name, gb.Link, gb.GoogleUniqueID, gb.ClassroomName, gb.ID)
	return err
}

func (r *repository) DeleteGradeBook(ctx context.Context, classroomID, googleUniqueID string) error {
	query := `DELETE FROM gradebooks WHERE classroom_id = ? AND google_unique_id = ?`
	_, err := r.db.ExecContext(ctx, query, classroomID, googleUniqueID)
	return err
}

func (r *repository) GetGradeBookByID(ctx context.Context, id int64) (*model.GradeBook, error) {
	query := `SELECT ` + gradeBookColumns + ` FROM gradebooks WHERE id = ?`
	gb, err := scanGradeBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "gradebook")
	}
	return gb, nil
}

func (r *repository) GetGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.GradeBook, error) {
	query := `SELECT ` + gradeBookColumns + ` FROM gradebooks WHERE google_unique_id = ? LIMIT 1`
	gb, err := scanGradeBook(r.db.QueryRowContext(ctx, query, googleUniqueID))
	if err != nil {
		return nil, notFound(err, "gradebook")
	}
	return gb, nil
}

func (r *repository) GetGradeBook(ctx context.Context, classroomID, googleUniqueID string) (*model.GradeBook, error) {
	query := `SELECT ` + gradeBookColumns + ` FROM gradebooks WHERE classroom_id = ? AND google_unique_id = ?`
	gb, err := scanGradeBook(r.db.QueryRowContext(ctx, query, classroomID, googleUniqueID))
	if err != nil {
		return nil, notFound(err, "gradebook")
	}
	return gb, nil
}

func (r *repository) ListGradeBooks(ctx context.Context, classroomID, userID string) ([]model.GradeBook, error) {
	query := `SELECT ` + gradeBookColumns + ` FROM gradebooks WHERE created_by = ?`
	args := []interface{}{userID}
	if classroomID != "" {
		query += ` AND classroom_id = ?`
		args = append(args, classroomID)
	}
	query += ` ORDER BY created_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gradebooks []model.GradeBook
	for rows.Next() {
		gb, err := scanGradeBook(rows)
		if err != nil {
			return nil, err
		}
		gradebooks = append(gradebooks, *gb)
	}

	return gradebooks, rows.Err()
}
