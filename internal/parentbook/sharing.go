package parentbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Sharer moves (teacher, parent, gradebook) sharing rows between SHARED and
// NOTSHARED and keeps Drive permissions in line.
type Sharer struct {
	synth         *Synthesizer
	sheets        *spreadsheet.Service
	drive         *drive.Service
	repo          Repository
	defaultAvatar string
	log           zerolog.Logger
}

func NewSharer(synth *Synthesizer, sheets *spreadsheet.Service, drv *drive.Service, repo Repository, defaultAvatar string) *Sharer {
	return &Sharer{
		synth:         synth,
		sheets:        sheets,
		drive:         drv,
		repo:          repo,
		defaultAvatar: defaultAvatar,
		log:           logger.Get(),
	}
}

// Share gives the parent read access to the student's parent gradebook,
// synthesizing it first. Sharing an already shared gradebook fails with
// ErrAlreadyShared and changes nothing.
func (s *Sharer) Share(ctx context.Context, sess auth.Session, req model.ShareRequest) (auth.Result[*model.ParentSharedGradeBook], error) {
	fail := func(err error) (auth.Result[*model.ParentSharedGradeBook], error) {
		return auth.Result[*model.ParentSharedGradeBook]{Credential: sess.Credential}, err
	}

	log := s.log.With().
		Str("user_id", sess.UserID).
		Str("gradebook_id", req.MainGradeBookID).
		Str("parent_email", req.ParentEmail).
		Str("student_email", req.StudentEmail).
		Logger()

	main, err := s.mainGradeBook(ctx, req.ClassroomID, req.MainGradeBookID)
	if err != nil {
		return fail(err)
	}

	root, err := s.drive.EnsureRootFolder(ctx, sess)
	sess = sess.With(root.Credential)
	if err != nil {
		return fail(err)
	}

	parent, err := s.ensureParent(ctx, sess.UserID, req.ParentEmail)
	if err != nil {
		return fail(err)
	}

	inner, err := s.drive.EnsureInnerFolder(ctx, sess, root.Value, req.StudentEmail)
	sess = sess.With(inner.Credential)
	if err != nil {
		return fail(err)
	}

	student, err := s.sheets.StudentByEmail(ctx, sess, main.GoogleUniqueID, req.StudentEmail)
	sess = sess.With(student.Credential)
	if err != nil {
		return fail(err)
	}
	if student.Value == nil {
		return fail(fmt.Errorf("%w: %s", perrors.ErrStudentNotFound, req.StudentEmail))
	}

	name := Name(student.Value.ClassName, req.ParentEmail, req.StudentEmail)
	existing, err := s.repo.GetParentGradeBookByNameAndMain(ctx, name, main.ID)
	if err != nil && !errors.Is(err, perrors.ErrNotFound) {
		return fail(fmt.Errorf("failed to get parent gradebook: %w", err))
	}
	if existing != nil {
		share, err := s.share(ctx, existing.ID, parent.ID, sess.UserID)
		if err != nil {
			return fail(err)
		}
		if share != nil && share.SharedStatus == model.SharedStatusShared {
			state, err := s.drive.FileState(ctx, sess, existing.GoogleUniqueID)
			sess = sess.With(state.Credential)
			if err != nil {
				return fail(err)
			}
			if state.Value.Usable() {
				return fail(fmt.Errorf("%w: %s", perrors.ErrAlreadyShared, existing.GoogleUniqueID))
			}
		}
	}

	saved, err := s.synth.SaveStudent(ctx, sess, main, student.Value, req.ParentEmail)
	sess = sess.With(saved.Credential)
	if err != nil {
		return fail(err)
	}

	pgb, err := s.repo.GetParentGradeBookByGoogleID(ctx, saved.Value)
	if err != nil {
		return fail(fmt.Errorf("failed to load parent gradebook %s: %w", saved.Value, err))
	}

	share, err := s.share(ctx, pgb.ID, parent.ID, sess.UserID)
	if err != nil {
		return fail(err)
	}
	// A row already SHARED here was carried over from a recreated
	// spreadsheet and granted again by SaveStudent.
	granted := share != nil && share.SharedStatus == model.SharedStatusShared
	if share == nil {
		share = &model.ParentSharedGradeBook{
			ParentGradeBookID: pgb.ID,
			ParentID:          parent.ID,
			TeacherAspID:      sess.UserID,
			FolderID:          inner.Value.ID,
			SharedStatus:      model.SharedStatusShared,
		}
		if err := s.repo.CreateShare(ctx, share); err != nil {
			return fail(fmt.Errorf("failed to create share: %w", err))
		}
	} else {
		share.SharedStatus = model.SharedStatusShared
		share.FolderID = inner.Value.ID
		if err := s.repo.UpdateShare(ctx, share); err != nil {
			return fail(fmt.Errorf("failed to update share: %w", err))
		}
	}

	if !granted {
		cred, err := s.drive.GrantPermission(ctx, sess, pgb.GoogleUniqueID, req.ParentEmail, drive.PermissionTypeUser, drive.RoleReader)
		sess = sess.With(cred)
		if err != nil {
			return fail(err)
		}
	}

	if err := s.linkStudent(ctx, parent.ID, req.StudentEmail, main.ID); err != nil {
		return fail(err)
	}

	log.Info().Str("spreadsheet_id", pgb.GoogleUniqueID).Msg("Parent gradebook shared")
	return auth.Result[*model.ParentSharedGradeBook]{Value: share, Credential: sess.Credential}, nil
}

// Unshare stops sharing. With a parent gradebook id it requires a SHARED row,
// flips it to NOTSHARED and revokes the parent's Drive permission. With only
// the main gradebook id it removes the teacher's active parent gradebook
// record and its SHARED row without touching Drive.
func (s *Sharer) Unshare(ctx context.Context, sess auth.Session, req model.UnshareRequest) (*oauth2.Token, error) {
	if req.ParentGradeBookID == "" {
		return sess.Credential, s.unshareByMain(ctx, sess.UserID, req.ClassroomID, req.MainGradeBookID)
	}

	pgb, err := s.repo.GetParentGradeBookByGoogleID(ctx, req.ParentGradeBookID)
	if err != nil {
		return sess.Credential, notFoundAs(err, perrors.ErrParentGradeBookNotFound, req.ParentGradeBookID)
	}
	parent, err := s.repo.GetParentByEmail(ctx, req.ParentEmail)
	if err != nil {
		return sess.Credential, notFoundAs(err, perrors.ErrParentNotFound, req.ParentEmail)
	}

	share, err := s.share(ctx, pgb.ID, parent.ID, sess.UserID)
	if err != nil {
		return sess.Credential, err
	}
	if share == nil || share.SharedStatus != model.SharedStatusShared {
		return sess.Credential, fmt.Errorf("%w: %s for %s", perrors.ErrNothingToUnshare, req.ParentGradeBookID, req.ParentEmail)
	}

	share.SharedStatus = model.SharedStatusNotShared
	if err := s.repo.UpdateShare(ctx, share); err != nil {
		return sess.Credential, fmt.Errorf("failed to update share: %w", err)
	}

	cred, err := s.drive.DeletePermission(ctx, sess, pgb.GoogleUniqueID, req.ParentEmail)
	if err != nil {
		return cred, err
	}

	s.log.Info().
		Str("user_id", sess.UserID).
		Str("spreadsheet_id", pgb.GoogleUniqueID).
		Str("parent_email", req.ParentEmail).
		Msg("Parent gradebook unshared")
	return cred, nil
}

func (s *Sharer) unshareByMain(ctx context.Context, teacherID, classroomID, mainGoogleID string) error {
	main, err := s.mainGradeBook(ctx, classroomID, mainGoogleID)
	if err != nil {
		return err
	}

	pgb, err := s.repo.FindActiveParentGradeBook(ctx, main.ID, teacherID)
	if err != nil {
		return notFoundAs(err, perrors.ErrParentGradeBookNotFound, mainGoogleID)
	}

	share, err := s.repo.GetShareByStatus(ctx, pgb.ID, teacherID, model.SharedStatusShared)
	switch {
	case err == nil:
		if err := s.repo.DeleteShare(ctx, share.ID); err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
	case !errors.Is(err, perrors.ErrNotFound):
		return fmt.Errorf("failed to get share: %w", err)
	}

	if err := s.repo.DeleteParentGradeBook(ctx, pgb.ID); err != nil {
		return fmt.Errorf("failed to delete parent gradebook: %w", err)
	}

	s.log.Info().
		Str("user_id", teacherID).
		Str("spreadsheet_id", pgb.GoogleUniqueID).
		Msg("Parent gradebook record removed")
	return nil
}

// mainGradeBook resolves the registered gradebook. Without a classroom the
// first registration of the spreadsheet is used.
func (s *Sharer) mainGradeBook(ctx context.Context, classroomID, googleID string) (*model.GradeBook, error) {
	var (
		main *model.GradeBook
		err  error
	)
	if classroomID != "" {
		main, err = s.repo.GetGradeBook(ctx, classroomID, googleID)
	} else {
		main, err = s.repo.GetGradeBookByGoogleID(ctx, googleID)
	}
	if err != nil {
		return nil, notFoundAs(err, perrors.ErrGradeBookNotFound, googleID)
	}
	return main, nil
}

func (s *Sharer) ensureParent(ctx context.Context, teacherID, email string) (*model.Parent, error) {
	parent, err := s.repo.GetParentByEmail(ctx, email)
	if err == nil {
		return parent, nil
	}
	if !errors.Is(err, perrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}

	parent = &model.Parent{
		Email:     email,
		Name:      email,
		Avatar:    s.defaultAvatar,
		CreatedBy: teacherID,
	}
	if err := s.repo.CreateParent(ctx, parent); err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}
	return parent, nil
}

// share returns the sharing row, or nil when there is none.
func (s *Sharer) share(ctx context.Context, parentGradeBookID, parentID int64, teacherID string) (*model.ParentSharedGradeBook, error) {
	share, err := s.repo.GetShare(ctx, parentGradeBookID, parentID, teacherID)
	if errors.Is(err, perrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return share, nil
}

func (s *Sharer) linkStudent(ctx context.Context, parentID int64, studentEmail string, gradeBookID int64) error {
	_, err := s.repo.GetParentStudent(ctx, parentID, studentEmail, gradeBookID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, perrors.ErrNotFound) {
		return fmt.Errorf("failed to get parent student: %w", err)
	}

	link := &model.ParentStudent{ParentID: parentID, StudentEmail: studentEmail, GradeBookID: gradeBookID}
	if err := s.repo.CreateParentStudent(ctx, link); err != nil {
		return fmt.Errorf("failed to link parent and student: %w", err)
	}
	return nil
}

// notFoundAs replaces a registry miss with a domain error naming what is missing.
func notFoundAs(err, domain error, key string) error {
	if errors.Is(err, perrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain, key)
	}
	return err
}
