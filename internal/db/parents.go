package db

import (
	"context"

	"github.com/karac38/gdevapps-portal/internal/model"
)

const parentGradeBookColumns = `id, google_unique_id, name, main_gradebook_id, classroom_name, created_by, created_date, link, is_deleted`

func scanParentGradeBook(row interface{ Scan(...interface{}) error }) (*model.ParentGradeBook, error) {
	var p model.ParentGradeBook
	err := row.Scan(&p.ID, &p.GoogleUniqueID, &p.Name, &p.MainGradeBookID, &p.ClassroomName,
		&p.CreatedBy, &p.CreatedDate, &p.Link, &p.IsDeleted)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateParentGradeBook(ctx context.Context, pgb *model.ParentGradeBook) error {
	query := `INSERT INTO parent_gradebooks
			  (google_unique_id, name, main_gradebook_id, classroom_name, created_by, created_date, link, is_deleted)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, pgb.GoogleUniqueID, pgb.Name, pgb.MainGradeBookID,
		pgb.ClassroomName, pgb.CreatedBy, pgb.CreatedDate, pgb.Link, pgb.IsDeleted)
	if err != nil {
		return err
	}

	pgb.ID, err = res.LastInsertId()
	return err
}

func (r *repository) DeleteParentGradeBook(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM parent_gradebooks WHERE id = ?`, id)
	return err
}

func (r *repository) getParentGradeBook(ctx context.Context, where string, args ...interface{}) (*model.ParentGradeBook, error) {
	query := `SELECT ` + parentGradeBookColumns + ` FROM parent_gradebooks WHERE ` + where + ` LIMIT 1`
	pgb, err := scanParentGradeBook(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "parent gradebook")
	}
	return pgb, nil
}

func (r *repository) GetParentGradeBookByID(ctx context.Context, id int64) (*model.ParentGradeBook, error) {
	return r.getParentGradeBook(ctx, `id = ?`, id)
}

func (r *repository) GetParentGradeBookByGoogleID(ctx context.Context, googleUniqueID string) (*model.ParentGradeBook, error) {
	return r.getParentGradeBook(ctx, `google_unique_id = ?`, googleUniqueID)
}

func (r *repository) GetParentGradeBookByName(ctx context.Context, name string) (*model.ParentGradeBook, error) {
	return r.getParentGradeBook(ctx, `name = ?`, name)
}

func (r *repository) GetParentGradeBookByNameAndMain(ctx context.Context, name string, mainGradeBookID int64) (*model.ParentGradeBook, error) {
	return r.getParentGradeBook(ctx, `name = ? AND main_gradebook_id = ?`, name, mainGradeBookID)
}

func (r *repository) FindActiveParentGradeBook(ctx context.Context, mainGradeBookID int64, createdBy string) (*model.ParentGradeBook, error) {
	return r.getParentGradeBook(ctx, `main_gradebook_id = ? AND created_by = ? AND is_deleted = FALSE ORDER BY id`,
		mainGradeBookID, createdBy)
}

func (r *repository) ListSharedParentGradeBooks(ctx context.Context) ([]model.SharedParentGradeBook, error) {
	query := `SELECT DISTINCT p.id, p.google_unique_id, p.name, p.main_gradebook_id, p.classroom_name,
				p.created_by, p.created_date, p.link, p.is_deleted, s.teacher_asp_id
			  FROM parent_gradebooks p
			  JOIN parent_shared_gradebooks s ON s.parent_gradebook_id = p.id
			  WHERE s.shared_status = ? AND p.is_deleted = FALSE`

	rows, err := r.db.QueryContext(ctx, query, model.SharedStatusShared)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shared []model.SharedParentGradeBook
	for rows.Next() {
		var s model.SharedParentGradeBook
		p := &s.ParentGradeBook
		err := rows.Scan(&p.ID, &p.GoogleUniqueID, &p.Name, &p.MainGradeBookID, &p.ClassroomName,
			&p.CreatedBy, &p.CreatedDate, &p.Link, &p.IsDeleted, &s.TeacherAspID)
		if err != nil {
			return nil, err
		}
		shared = append(shared, s)
	}

	return shared, rows.Err()
}

const shareColumns = `id, parent_gradebook_id, parent_id, teacher_asp_id, folder_id, shared_status`

func scanShare(row interface{ Scan(...interface{}) error }) (*model.ParentSharedGradeBook, error) {
	var s model.ParentSharedGradeBook
	if err := row.Scan(&s.ID, &s.ParentGradeBookID, &s.ParentID, &s.TeacherAspID, &s.FolderID, &s.SharedStatus); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetShare(ctx context.Context, parentGradeBookID, parentID int64, teacherAspID string) (*model.ParentSharedGradeBook, error) {
	query := `SELECT ` + shareColumns + ` FROM parent_shared_gradebooks
			  WHERE parent_gradebook_id = ? AND parent_id = ? AND teacher_asp_id = ? LIMIT 1`
	s, err := scanShare(r.db.QueryRowContext(ctx, query, parentGradeBookID, parentID, teacherAspID))
	if err != nil {
		return nil, notFound(err, "share")
	}
	return s, nil
}

func (r *repository) GetShareByStatus(ctx context.Context, parentGradeBookID int64, teacherAspID string, status model.SharedStatus) (*model.ParentSharedGradeBook, error) {
	query := `SELECT ` + shareColumns + ` FROM parent_shared_gradebooks
			  WHERE parent_gradebook_id = ? AND teacher_asp_id = ? AND shared_status = ? LIMIT 1`
	s, err := scanShare(r.db.QueryRowContext(ctx, query, parentGradeBookID, teacherAspID, status))
	if err != nil {
		return nil, notFound(err, "share")
	}
	return s, nil
}

func (r *repository) CreateShare(ctx context.Context, share *model.ParentSharedGradeBook) error {
	query := `INSERT INTO parent_shared_gradebooks (parent_gradebook_id, parent_id, teacher_asp_id, folder_id, shared_status)
			  VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, share.ParentGradeBookID, share.ParentID,
		share.TeacherAspID, share.FolderID, share.SharedStatus)
	if err != nil {
		return err
	}

	share.ID, err = res.LastInsertId()
	return err
}

func (r *repository) UpdateShare(ctx context.Context, share *model.ParentSharedGradeBook) error {
	query := `UPDATE parent_shared_gradebooks SET parent_gradebook_id = ?, folder_id = ?, shared_status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, share.ParentGradeBookID, share.FolderID, share.SharedStatus, share.ID)
	return err
}

func (r *repository) ListShares(ctx context.Context, parentGradeBookID int64) ([]model.ParentSharedGradeBook, error) {
	query := `SELECT ` + shareColumns + ` FROM parent_shared_gradebooks WHERE parent_gradebook_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, parentGradeBookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []model.ParentSharedGradeBook
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *sh)
	}
	return shares, rows.Err()
}

func (r *repository) DeleteShare(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM parent_shared_gradebooks WHERE id = ?`, id)
	return err
}

func (r *repository) GetParentByEmail(ctx context.Context, email string) (*model.Parent, error) {
	query := `SELECT id, email, name, avatar, created_by FROM parents WHERE email = ? LIMIT 1`

	var p model.Parent
	err := r.db.QueryRowContext(ctx, query, email).Scan(&p.ID, &p.Email, &p.Name, &p.Avatar, &p.CreatedBy)
	if err != nil {
		return nil, notFound(err, "parent")
	}
	return &p, nil
}

func (r *repository) GetParentByID(ctx context.Context, id int64) (*model.Parent, error) {
	query := `SELECT id, email, name, avatar, created_by FROM parents WHERE id = ?`

	var p model.Parent
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Email, &p.Name, &p.Avatar, &p.CreatedBy)
	if err != nil {
		return nil, notFound(err, "parent")
	}
	return &p, nil
}

func (r *repository) CreateParent(ctx context.Context, p *model.Parent) error {
	query := `INSERT INTO parents (email, name, avatar, created_by) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, p.Email, p.Name, p.Avatar, p.CreatedBy)
	if err != nil {
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

func (r *repository) GetParentStudent(ctx context.Context, parentID int64, studentEmail string, gradeBookID int64) (*model.ParentStudent, error) {
	query := `SELECT id, parent_id, student_email, gradebook_id FROM parent_students
			  WHERE parent_id = ? AND student_email = ? AND gradebook_id = ? LIMIT 1`

	var ps model.ParentStudent
	err := r.db.QueryRowContext(ctx, query, parentID, studentEmail, gradeBookID).
		Scan(&ps.ID, &ps.ParentID, &ps.StudentEmail, &ps.GradeBookID)
	if err != nil {
		return nil, notFound(err, "parent student")
	}
	return &ps, nil
}

func (r *repository) CreateParentStudent(ctx context.Context, ps *model.ParentStudent) error {
	query := `INSERT INTO parent_students (parent_id, student_email, gradebook_id) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, ps.ParentID, ps.StudentEmail, ps.GradeBookID)
	if err != nil {
		return err
	}

	ps.ID, err = res.LastInsertId()
	return err
}

func (r *repository) ListParentStudents(ctx context.Context, parentEmail string) ([]model.ParentStudent, error) {
	query := `SELECT ps.id, ps.parent_id, ps.student_email, ps.gradebook_id, p.email, g.google_unique_id
			  FROM parent_students ps
			  JOIN parents p ON p.id = ps.parent_id
			  JOIN gradebooks g ON g.id = ps.gradebook_id
			  WHERE p.email = ?
			  ORDER BY ps.id`

	rows, err := r.db.QueryContext(ctx, query, parentEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []model.ParentStudent
	for rows.Next() {
		var ps model.ParentStudent
		err := rows.Scan(&ps.ID, &ps.ParentID, &ps.StudentEmail, &ps.GradeBookID, &ps.ParentEmail, &ps.GradeBookGoogleID)
		if err != nil {
			return nil, err
		}
		links = append(links, ps)
	}

	return links, rows.Err()
}
