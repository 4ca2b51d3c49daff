// Package parentbook keeps per-student parent gradebooks in step with the
// teacher's main gradebook and shares them with parents.
package parentbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/db"
	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const nameSeparator = " - "

// copiedRanges are copied verbatim from the main gradebook into a new
// parent gradebook.
var copiedRanges = []string{
	gradebook.RangeLetterGrades,
	gradebook.RangeSettings,
	gradebook.RangeStatistics,
}

// Repository is the part of the registry the parentbook package touches.
type Repository interface {
	db.GradeBookRepository
	db.ParentGradeBookRepository
	db.ShareRepository
	db.ParentRepository
}

// Name is the spreadsheet title of the parent gradebook for one
// (class, parent, student) triple. It doubles as its registry key.
func Name(className, parentEmail, studentEmail string) string {
	return className + nameSeparator + parentEmail + nameSeparator + studentEmail
}

// ParseName splits a parent gradebook name built by Name. The class name
// may itself contain the separator; emails cannot.
func ParseName(name string) (className, parentEmail, studentEmail string, ok bool) {
	i := strings.LastIndex(name, nameSeparator)
	if i < 0 {
		return "", "", "", false
	}
	studentEmail = name[i+len(nameSeparator):]
	rest := name[:i]

	j := strings.LastIndex(rest, nameSeparator)
	if j < 0 {
		return "", "", "", false
	}
	return rest[:j], rest[j+len(nameSeparator):], studentEmail, studentEmail != ""
}

// Synthesizer builds and refreshes parent gradebooks.
type Synthesizer struct {
	sheets *spreadsheet.Service
	drive  *drive.Service
	repo   Repository
	now    func() time.Time
	log    zerolog.Logger
}

func NewSynthesizer(sheets *spreadsheet.Service, drv *drive.Service, repo Repository) *Synthesizer {
	return &Synthesizer{
		sheets: sheets,
		drive:  drv,
		repo:   repo,
		now:    time.Now,
		log:    logger.Get(),
	}
}

// Sync reads the student's current row from the main gradebook and saves it
// into the parent gradebook for parentEmail.
func (s *Synthesizer) Sync(ctx context.Context, sess auth.Session, main *model.GradeBook, studentEmail, parentEmail string) (auth.Result[string], error) {
	student, err := s.sheets.StudentByEmail(ctx, sess, main.GoogleUniqueID, studentEmail)
	sess = sess.With(student.Credential)
	if err != nil {
		return auth.Result[string]{Credential: sess.Credential}, err
	}
	if student.Value == nil {
		return auth.Result[string]{Credential: sess.Credential},
			fmt.Errorf("%w: %s in gradebook %s", perrors.ErrStudentNotFound, studentEmail, main.GoogleUniqueID)
	}

	return s.SaveStudent(ctx, sess, main, student.Value, parentEmail)
}

// SaveStudent writes the student snapshot into the parent gradebook for
// parentEmail and returns its spreadsheet id. An existing spreadsheet is
// rewritten in place; a missing or trashed one is created again, filed in
// the student's folder and registered.
func (s *Synthesizer) SaveStudent(ctx context.Context, sess auth.Session, main *model.GradeBook, student *model.GradebookStudent, parentEmail string) (auth.Result[string], error) {
	if !student.HasParent(parentEmail) {
		return auth.Result[string]{Credential: sess.Credential},
			fmt.Errorf("%w: %s is not a parent of %s", perrors.ErrParentNotLinked, parentEmail, student.Email)
	}

	name := Name(student.ClassName, parentEmail, student.Email)
	log := s.log.With().
		Str("user_id", sess.UserID).
		Str("gradebook_id", main.GoogleUniqueID).
		Str("parent_gradebook", name).
		Logger()

	root, err := s.drive.EnsureRootFolder(ctx, sess)
	sess = sess.With(root.Credential)
	if err != nil {
		return auth.Result[string]{Credential: sess.Credential}, err
	}

	existing, err := s.repo.GetParentGradeBookByName(ctx, name)
	if err != nil && !errors.Is(err, perrors.ErrNotFound) {
		return auth.Result[string]{Credential: sess.Credential}, fmt.Errorf("failed to get parent gradebook: %w", err)
	}

	var carried []model.ParentSharedGradeBook
	if existing != nil {
		state, err := s.drive.FileState(ctx, sess, existing.GoogleUniqueID)
		sess = sess.With(state.Credential)
		if err != nil {
			return auth.Result[string]{Credential: sess.Credential}, err
		}

		if state.Value.Usable() {
			cred, err := s.rewrite(ctx, sess, existing.GoogleUniqueID, student)
			if err != nil {
				log.Error().Err(err).Msg("Failed to update parent gradebook")
				return auth.Result[string]{Credential: cred}, err
			}
			log.Info().Str("spreadsheet_id", existing.GoogleUniqueID).Msg("Parent gradebook updated")
			return auth.Result[string]{Value: existing.GoogleUniqueID, Credential: cred}, nil
		}

		log.Warn().
			Str("spreadsheet_id", existing.GoogleUniqueID).
			Stringer("state", state.Value).
			Msg("Parent gradebook gone from Drive, recreating")
		carried, err = s.repo.ListShares(ctx, existing.ID)
		if err != nil {
			return auth.Result[string]{Credential: sess.Credential}, fmt.Errorf("failed to list shares: %w", err)
		}
		if err := s.repo.DeleteParentGradeBook(ctx, existing.ID); err != nil {
			return auth.Result[string]{Credential: sess.Credential}, fmt.Errorf("failed to delete stale parent gradebook: %w", err)
		}
	}

	record, inner, cred, err := s.create(ctx, sess, main, root.Value, name, student)
	sess = sess.With(cred)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create parent gradebook")
		return auth.Result[string]{Credential: sess.Credential}, err
	}

	cred, err = s.carryShares(ctx, sess, record, inner, carried)
	sess = sess.With(cred)
	if err != nil {
		log.Error().Err(err).Msg("Failed to move shares to recreated parent gradebook")
		return auth.Result[string]{Value: record.GoogleUniqueID, Credential: sess.Credential}, err
	}

	log.Info().Str("spreadsheet_id", record.GoogleUniqueID).Msg("Parent gradebook created")
	return auth.Result[string]{Value: record.GoogleUniqueID, Credential: sess.Credential}, nil
}

// carryShares points the share rows of a replaced parent gradebook at its
// replacement and grants read access again to every parent still SHARED.
func (s *Synthesizer) carryShares(
	ctx context.Context,
	sess auth.Session,
	record *model.ParentGradeBook,
	inner *model.Folder,
	shares []model.ParentSharedGradeBook,
) (*oauth2.Token, error) {
	for i := range shares {
		share := &shares[i]
		share.ParentGradeBookID = record.ID
		share.FolderID = inner.ID
		if err := s.repo.UpdateShare(ctx, share); err != nil {
			return sess.Credential, fmt.Errorf("failed to update share: %w", err)
		}
		if share.SharedStatus != model.SharedStatusShared {
			continue
		}

		parent, err := s.repo.GetParentByID(ctx, share.ParentID)
		if err != nil {
			return sess.Credential, fmt.Errorf("failed to get parent %d: %w", share.ParentID, err)
		}
		cred, err := s.drive.GrantPermission(ctx, sess, record.GoogleUniqueID, parent.Email, drive.PermissionTypeUser, drive.RoleReader)
		sess = sess.With(cred)
		if err != nil {
			return sess.Credential, err
		}
		s.log.Info().
			Str("user_id", sess.UserID).
			Str("spreadsheet_id", record.GoogleUniqueID).
			Str("parent_email", parent.Email).
			Msg("Share moved to recreated parent gradebook")
	}
	return sess.Credential, nil
}

func (s *Synthesizer) rewrite(ctx context.Context, sess auth.Session, spreadsheetID string, student *model.GradebookStudent) (*oauth2.Token, error) {
	cred, err := s.sheets.ClearValues(ctx, sess, spreadsheetID, gradebook.SheetGradeBook)
	sess = sess.With(cred)
	if err != nil {
		return sess.Credential, err
	}
	return s.sheets.UpdateValues(ctx, sess, spreadsheetID, gradebook.SheetGradeBook,
		gradebook.ParentSheetRows(student), spreadsheet.InputUserEntered)
}

func (s *Synthesizer) create(
	ctx context.Context,
	sess auth.Session,
	main *model.GradeBook,
	root *model.Folder,
	name string,
	student *model.GradebookStudent,
) (*model.ParentGradeBook, *model.Folder, *oauth2.Token, error) {
	specs := make([]spreadsheet.SheetSpec, 0, len(gradebook.ParentSheets))
	for i, title := range gradebook.ParentSheets {
		specs = append(specs, spreadsheet.SheetSpec{Index: int64(i), Title: title})
	}

	created, err := s.sheets.Create(ctx, sess, name, specs)
	sess = sess.With(created.Credential)
	if err != nil {
		return nil, nil, sess.Credential, err
	}
	id := created.Value.ID

	for _, rng := range copiedRanges {
		cred, err := s.sheets.CopyRange(ctx, sess, main.GoogleUniqueID, id, rng)
		sess = sess.With(cred)
		if err != nil {
			return nil, nil, sess.Credential, fmt.Errorf("failed to copy %s: %w", rng, err)
		}
	}

	cred, err := s.sheets.UpdateValues(ctx, sess, id, gradebook.SheetGradeBook,
		gradebook.ParentSheetRows(student), spreadsheet.InputUserEntered)
	sess = sess.With(cred)
	if err != nil {
		return nil, nil, sess.Credential, err
	}

	inner, err := s.drive.EnsureInnerFolder(ctx, sess, root, student.Email)
	sess = sess.With(inner.Credential)
	if err != nil {
		return nil, nil, sess.Credential, err
	}

	cred, err = s.drive.MoveFile(ctx, sess, id, inner.Value.GoogleFileID)
	sess = sess.With(cred)
	if err != nil {
		return nil, nil, sess.Credential, err
	}

	record := &model.ParentGradeBook{
		GoogleUniqueID:  id,
		Name:            name,
		MainGradeBookID: main.ID,
		ClassroomName:   student.ClassName,
		CreatedBy:       sess.UserID,
		CreatedDate:     s.now().UTC(),
		Link:            created.Value.URL,
	}
	if err := s.repo.CreateParentGradeBook(ctx, record); err != nil {
		return nil, nil, sess.Credential, fmt.Errorf("failed to save parent gradebook: %w", err)
	}

	return record, inner.Value, sess.Credential, nil
}
