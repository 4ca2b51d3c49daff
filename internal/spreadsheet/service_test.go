package spreadsheet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/fakes"
	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
)

const mainID = "1AbCdEfGhIjKlMnOpQrStUvWxYz012345"

type harness struct {
	sheets    *fakes.Sheets
	store     *fakes.Store
	refresher *fakes.Refresher
	svc       *spreadsheet.Service
	sess      auth.Session
}

func newHarness() *harness {
	h := &harness{
		sheets:    fakes.NewSheets(),
		store:     fakes.NewStore(),
		refresher: &fakes.Refresher{Token: &oauth2.Token{AccessToken: "fresh"}},
		sess: auth.Session{
			UserID:       "teacher-1",
			RefreshToken: "r",
			Credential:   &oauth2.Token{AccessToken: "stale"},
		},
	}
	guard := auth.NewGuard(h.refresher, h.store)
	h.svc = spreadsheet.NewService(h.sheets, guard, nil)

	fakes.SeedGradeBook(h.sheets, mainID, "Math 7", "class-1", fakes.NewSheetBuilder().
		CourseWork(13, "Quiz 1", 43344.0, 10.0, 1.0, "", "").
		CourseWork(15, "Essay", "", 20.0, 1.0, "", "").
		Student(7, fakes.StudentRow{
			Name: "Ann Lee", Final: 0.86, FinalFormatted: "86%", Email: "ann@school.org",
			Parents:  "mom@mail.com",
			Grades:   map[int]interface{}{13: 8.0, 15: "[15/20]"},
			Percents: map[int]interface{}{13: 0.8, 15: 0.75},
		}).
		Student(8, fakes.StudentRow{Name: "Bo Chan", Email: "bo@school.org"}).
		Rows())
	return h
}

func TestIsGradeBook(t *testing.T) {
	h := newHarness()
	h.sheets.AddGradeBook("partialSheetIdentifier0123456789", gradebook.SheetGradeBook, gradebook.SheetSettings)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		link string
		want bool
	}{
		{name: "by id", id: mainID, want: true},
		{name: "by link", link: "https://docs.google.com/spreadsheets/d/" + mainID + "/edit#gid=0", want: true},
		{name: "missing sheets", id: "partialSheetIdentifier0123456789"},
		{name: "link without id", link: "https://example.com/short/abc/"},
		{name: "unknown spreadsheet", id: "doesNotExistAnywhere0123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.svc.IsGradeBook(ctx, h.sess, tt.id, tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestStudents(t *testing.T) {
	h := newHarness()

	res, err := h.svc.Students(context.Background(), h.sess, mainID, false)
	require.NoError(t, err)
	require.Len(t, res.Value, 2)

	ann := res.Value[0]
	assert.Equal(t, "ann@school.org", ann.Email)
	assert.Equal(t, "Math 7", ann.ClassName)
	assert.Equal(t, "class-1", ann.ClassID)
	assert.Equal(t, mainID, ann.GradebookID)
	assert.Len(t, ann.CourseWorks, 2)
	assert.True(t, ann.HasParent("mom@mail.com"))
}

func TestStudentByEmail(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	res, err := h.svc.StudentByEmail(ctx, h.sess, mainID, "ann@school.org")
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	assert.Equal(t, "Ann Lee", res.Value.Name)
	sub, ok := res.Value.Submission("15")
	require.True(t, ok)
	assert.Equal(t, "[15/20]", sub.Grade)

	res, err = h.svc.StudentByEmail(ctx, h.sess, mainID, "ghost@school.org")
	require.NoError(t, err)
	assert.Nil(t, res.Value)
}

func TestSettings(t *testing.T) {
	h := newHarness()

	res, err := h.svc.Settings(context.Background(), h.sess, mainID)
	require.NoError(t, err)

	assert.Equal(t, "Math 7", res.Value.CourseName)
	assert.Equal(t, 2, res.Value.Decimal)
	assert.Equal(t, model.SortByDate, res.Value.StudentReportSortBy)
	assert.Equal(t, 81.23, res.Value.CourseAverage)
	assert.Equal(t, 80.0, res.Value.CourseMedian)
	assert.Len(t, res.Value.LetterGrades, 3)
}

func TestSettingsMissingRanges(t *testing.T) {
	h := newHarness()
	h.sheets.AddGradeBook("empty", gradebook.RequiredSheets...)

	res, err := h.svc.Settings(context.Background(), h.sess, "empty")
	require.NoError(t, err)
	assert.Equal(t, model.GradebookSettings{}, res.Value)
}

func TestCredentialThreadedThroughReads(t *testing.T) {
	h := newHarness()
	h.sheets.Expired["stale"] = true

	res, err := h.svc.Students(context.Background(), h.sess, mainID, true)
	require.NoError(t, err)

	assert.Equal(t, "fresh", res.Credential.AccessToken)
	assert.Len(t, h.refresher.Seen, 1, "later reads reuse the refreshed credential")
	assert.Equal(t, "fresh", h.store.Token("teacher-1", model.TokenAccess))
}

func TestCopyRange(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	created, err := h.svc.Create(ctx, h.sess, "copy target", []spreadsheet.SheetSpec{{Index: 0, Title: gradebook.SheetSettings}})
	require.NoError(t, err)

	_, err = h.svc.CopyRange(ctx, h.sess, mainID, created.Value.ID, gradebook.RangeLetterGrades)
	require.NoError(t, err)

	assert.Equal(t, h.sheets.Values(mainID, gradebook.RangeLetterGrades), h.sheets.Values(created.Value.ID, gradebook.RangeLetterGrades))
	assert.Equal(t, spreadsheet.InputUserEntered, h.sheets.Files[created.Value.ID].Modes[gradebook.RangeLetterGrades])
}

func TestParentStudentRoundTrip(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	student, err := h.svc.StudentByEmail(ctx, h.sess, mainID, "ann@school.org")
	require.NoError(t, err)

	h.sheets.AddGradeBook("parent-1", gradebook.ParentSheets...)
	_, err = h.svc.UpdateValues(ctx, h.sess, "parent-1", gradebook.SheetGradeBook, gradebook.ParentSheetRows(student.Value), spreadsheet.InputUserEntered)
	require.NoError(t, err)

	back, err := h.svc.ParentStudent(ctx, h.sess, "parent-1", gradebook.CourseInfo{ClassName: "Math 7", ClassID: "class-1"})
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", back.Value.Name)
	assert.Equal(t, "ann@school.org", back.Value.Email)
	require.Len(t, back.Value.CourseWorks, 2)
	assert.Equal(t, "Quiz 1", back.Value.CourseWorks[0].Title)
}

func TestReadErrorsPropagate(t *testing.T) {
	h := newHarness()
	boom := errors.New("backend unavailable")
	h.sheets.Fail["GetValues"] = boom

	_, err := h.svc.Students(context.Background(), h.sess, mainID, false)
	assert.ErrorIs(t, err, boom)
}
