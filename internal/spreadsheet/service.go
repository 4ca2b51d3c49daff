package spreadsheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Service reads and writes gradebook spreadsheets on behalf of a session.
// Every remote call goes through the guard; the returned credential is the
// one the caller must use next.
type Service struct {
	api    API
	guard  *auth.Guard
	mapper *gradebook.Mapper
	log    zerolog.Logger
}

func NewService(api API, guard *auth.Guard, mapper *gradebook.Mapper) *Service {
	if mapper == nil {
		mapper = gradebook.NewMapper()
	}
	return &Service{
		api:    api,
		guard:  guard,
		mapper: mapper,
		log:    logger.Get(),
	}
}

// IsGradeBook reports whether the spreadsheet carries every GradeBook sheet.
// When spreadsheetID is empty it is taken from link; a link without an id,
// or a spreadsheet that does not exist, is not a gradebook.
func (s *Service) IsGradeBook(ctx context.Context, sess auth.Session, spreadsheetID, link string) (auth.Result[bool], error) {
	if spreadsheetID == "" {
		id, ok := gradebook.IDFromLink(link)
		if !ok {
			return auth.Result[bool]{Credential: sess.Credential}, nil
		}
		spreadsheetID = id
	}

	res, err := auth.Call(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) ([]string, error) {
		return s.api.SheetTitles(ctx, cred, spreadsheetID)
	})
	if err != nil {
		if errors.Is(err, perrors.ErrNotFound) {
			return auth.Result[bool]{Credential: res.Credential}, nil
		}
		return auth.Result[bool]{Credential: res.Credential}, err
	}
	return auth.Result[bool]{Value: gradebook.HasGradeBookSheets(res.Value), Credential: res.Credential}, nil
}

// CourseInfo reads the class name and id stored in the Settings sheet.
func (s *Service) CourseInfo(ctx context.Context, sess auth.Session, spreadsheetID string) (auth.Result[gradebook.CourseInfo], error) {
	rows, err := s.values(ctx, &sess, spreadsheetID, gradebook.RangeCourseSettings)
	if err != nil {
		return auth.Result[gradebook.CourseInfo]{Credential: sess.Credential}, err
	}
	return auth.Result[gradebook.CourseInfo]{Value: gradebook.ParseCourseInfo(rows), Credential: sess.Credential}, nil
}

// Students returns every named student row of a main gradebook.
func (s *Service) Students(ctx context.Context, sess auth.Session, spreadsheetID string, withPercent bool) (auth.Result[[]model.GradebookStudent], error) {
	grid, info, err := s.gradeBookGrid(ctx, &sess, spreadsheetID)
	if err != nil {
		return auth.Result[[]model.GradebookStudent]{Credential: sess.Credential}, err
	}

	students := s.mapper.Students(grid, spreadsheetID, info, withPercent)
	return auth.Result[[]model.GradebookStudent]{Value: students, Credential: sess.Credential}, nil
}

// StudentByEmail returns the student row with a matching email, or nil.
func (s *Service) StudentByEmail(ctx context.Context, sess auth.Session, spreadsheetID, email string) (auth.Result[*model.GradebookStudent], error) {
	grid, info, err := s.gradeBookGrid(ctx, &sess, spreadsheetID)
	if err != nil {
		return auth.Result[*model.GradebookStudent]{Credential: sess.Credential}, err
	}

	student, ok := s.mapper.Student(grid, spreadsheetID, info, email)
	if !ok {
		s.log.Debug().
			Str("gradebook_id", spreadsheetID).
			Str("student_email", email).
			Msg("Student not found in gradebook")
		return auth.Result[*model.GradebookStudent]{Credential: sess.Credential}, nil
	}
	return auth.Result[*model.GradebookStudent]{Value: &student, Credential: sess.Credential}, nil
}

// Settings reads the settings, course statistics and letter grade bands.
// Works for main and parent gradebooks alike.
func (s *Service) Settings(ctx context.Context, sess auth.Session, spreadsheetID string) (auth.Result[model.GradebookSettings], error) {
	settings, err := s.values(ctx, &sess, spreadsheetID, gradebook.RangeSettings)
	if err != nil {
		return auth.Result[model.GradebookSettings]{Credential: sess.Credential}, err
	}
	averageMedian, err := s.values(ctx, &sess, spreadsheetID, gradebook.RangeAverageMedian)
	if err != nil {
		return auth.Result[model.GradebookSettings]{Credential: sess.Credential}, err
	}
	letters, err := s.values(ctx, &sess, spreadsheetID, gradebook.RangeLetterGrades)
	if err != nil {
		return auth.Result[model.GradebookSettings]{Credential: sess.Credential}, err
	}

	return auth.Result[model.GradebookSettings]{
		Value:      gradebook.ParseSettings(settings, averageMedian, letters),
		Credential: sess.Credential,
	}, nil
}

// ParentStudent reads the student snapshot back from a parent gradebook.
// The parent sheet does not store class identity, so it is passed in.
func (s *Service) ParentStudent(ctx context.Context, sess auth.Session, spreadsheetID string, info gradebook.CourseInfo) (auth.Result[model.GradebookStudent], error) {
	rows, err := s.values(ctx, &sess, spreadsheetID, gradebook.SheetGradeBook)
	if err != nil {
		return auth.Result[model.GradebookStudent]{Credential: sess.Credential}, err
	}
	return auth.Result[model.GradebookStudent]{
		Value:      gradebook.ParseParentSheet(rows, spreadsheetID, info),
		Credential: sess.Credential,
	}, nil
}

// CopyRange copies rng verbatim from one spreadsheet to the same range of another.
func (s *Service) CopyRange(ctx context.Context, sess auth.Session, fromID, toID, rng string) (*oauth2.Token, error) {
	rows, err := s.values(ctx, &sess, fromID, rng)
	if err != nil {
		return sess.Credential, err
	}
	return s.UpdateValues(ctx, sess, toID, rng, rows, InputUserEntered)
}

func (s *Service) UpdateValues(ctx context.Context, sess auth.Session, spreadsheetID, rng string, values [][]interface{}, mode InputMode) (*oauth2.Token, error) {
	return auth.Do(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) error {
		return s.api.UpdateValues(ctx, cred, spreadsheetID, rng, values, mode)
	})
}

func (s *Service) ClearValues(ctx context.Context, sess auth.Session, spreadsheetID, rng string) (*oauth2.Token, error) {
	return auth.Do(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) error {
		return s.api.ClearValues(ctx, cred, spreadsheetID, rng)
	})
}

func (s *Service) Create(ctx context.Context, sess auth.Session, title string, sheets []SheetSpec) (auth.Result[Created], error) {
	return auth.Call(ctx, s.guard, sess, func(ctx context.Context, cred *oauth2.Token) (Created, error) {
		return s.api.Create(ctx, cred, title, sheets)
	})
}

// values fetches one range and moves sess onto the credential that served it.
func (s *Service) values(ctx context.Context, sess *auth.Session, spreadsheetID, rng string) ([][]interface{}, error) {
	res, err := auth.Call(ctx, s.guard, *sess, func(ctx context.Context, cred *oauth2.Token) ([][]interface{}, error) {
		return s.api.GetValues(ctx, cred, spreadsheetID, rng)
	})
	*sess = sess.With(res.Credential)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("gradebook_id", spreadsheetID).
			Str("range", rng).
			Msg("Failed to read range")
		return nil, err
	}
	return res.Value, nil
}

func (s *Service) gradeBookGrid(ctx context.Context, sess *auth.Session, spreadsheetID string) (*gradebook.Grid, gradebook.CourseInfo, error) {
	courseRows, err := s.values(ctx, sess, spreadsheetID, gradebook.RangeCourseSettings)
	if err != nil {
		return nil, gradebook.CourseInfo{}, err
	}
	info := gradebook.ParseCourseInfo(courseRows)

	rows, err := s.values(ctx, sess, spreadsheetID, gradebook.RangeStudents)
	if err != nil {
		return nil, info, err
	}

	grid, err := s.mapper.NormalizeStudents(rows)
	if err != nil {
		return nil, info, fmt.Errorf("gradebook %s: %w", spreadsheetID, err)
	}
	return grid, info, nil
}
