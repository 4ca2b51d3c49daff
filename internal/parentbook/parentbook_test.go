package parentbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/karac38/gdevapps-portal/internal/auth"
	"github.com/karac38/gdevapps-portal/internal/drive"
	"github.com/karac38/gdevapps-portal/internal/fakes"
	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/parentbook"
	"github.com/karac38/gdevapps-portal/internal/spreadsheet"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

const (
	mainID  = "1MainGradeBookSpreadsheetId00000001"
	teacher = "teacher-1"
	student = "ann@school.org"
	mom     = "mom@mail.com"
	avatar  = "https://example.com/avatar.png"
)

type env struct {
	sheets *fakes.Sheets
	drive  *fakes.Drive
	store  *fakes.Store
	synth  *parentbook.Synthesizer
	sharer *parentbook.Sharer
	sheet  *spreadsheet.Service
	main   *model.GradeBook
	sess   auth.Session
}

func studentGrid(quizGrade interface{}) [][]interface{} {
	return fakes.NewSheetBuilder().
		CourseWork(13, "Quiz 1", 43344.0, 10.0, 1.0, "", "").
		CourseWork(15, "Essay", 43350.0, 20.0, 2.0, "", "").
		Student(7, fakes.StudentRow{
			Name: "Ann Lee", Final: 0.86, FinalFormatted: "86%", Email: student,
			Parents:  mom + ", dad@mail.com",
			Grades:   map[int]interface{}{13: quizGrade, 15: "[15/20]"},
			Percents: map[int]interface{}{13: 0.8, 15: 0.75},
		}).
		Rows()
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		sheets: fakes.NewSheets(),
		drive:  fakes.NewDrive(),
		store:  fakes.NewStore(),
		sess: auth.Session{
			UserID:       teacher,
			RefreshToken: "r",
			Credential:   &oauth2.Token{AccessToken: "a"},
		},
	}
	e.sheets.Drive = e.drive

	guard := auth.NewGuard(&fakes.Refresher{Token: &oauth2.Token{AccessToken: "fresh"}}, e.store)
	e.sheet = spreadsheet.NewService(e.sheets, guard, nil)
	drv := drive.NewService(e.drive, e.store, guard, "GradeBook Parents")
	e.synth = parentbook.NewSynthesizer(e.sheet, drv, e.store)
	e.sharer = parentbook.NewSharer(e.synth, e.sheet, drv, e.store, avatar)

	fakes.SeedGradeBook(e.sheets, mainID, "Math 7", "class-1", studentGrid(8.0))
	e.main = &model.GradeBook{GoogleUniqueID: mainID, Name: "Math 7 GradeBook", ClassroomID: "class-1", CreatedBy: teacher}
	require.NoError(t, e.store.CreateGradeBook(context.Background(), e.main))
	return e
}

func (e *env) student(t *testing.T) *model.GradebookStudent {
	t.Helper()
	res, err := e.sheet.StudentByEmail(context.Background(), e.sess, mainID, student)
	require.NoError(t, err)
	require.NotNil(t, res.Value)
	return res.Value
}

func (e *env) shareRequest() model.ShareRequest {
	return model.ShareRequest{MainGradeBookID: mainID, StudentEmail: student, ParentEmail: mom}
}

func TestNameRoundTrip(t *testing.T) {
	name := parentbook.Name("Math - Period 2", mom, student)
	assert.Equal(t, "Math - Period 2 - mom@mail.com - ann@school.org", name)

	class, parent, stu, ok := parentbook.ParseName(name)
	require.True(t, ok)
	assert.Equal(t, "Math - Period 2", class)
	assert.Equal(t, mom, parent)
	assert.Equal(t, student, stu)

	_, _, _, ok = parentbook.ParseName("no separators")
	assert.False(t, ok)
}

func TestSaveStudentCreatesParentGradeBook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stu := e.student(t)

	res, err := e.synth.SaveStudent(ctx, e.sess, e.main, stu, mom)
	require.NoError(t, err)
	id := res.Value

	file := e.sheets.Files[id]
	require.NotNil(t, file)
	assert.Equal(t, "Math 7 - mom@mail.com - ann@school.org", file.Title)
	assert.Equal(t, []spreadsheet.SheetSpec{
		{Index: 0, Title: gradebook.SheetGradeBook},
		{Index: 1, Title: gradebook.SheetSettings},
		{Index: 2, Title: gradebook.SheetStatistics},
	}, file.Sheets)

	for _, rng := range []string{gradebook.RangeSettings, gradebook.RangeStatistics, gradebook.RangeLetterGrades} {
		assert.Equal(t, e.sheets.Values(mainID, rng), e.sheets.Values(id, rng), rng)
	}
	assert.Equal(t, gradebook.ParentSheetRows(stu), e.sheets.Values(id, gradebook.SheetGradeBook))
	assert.Equal(t, spreadsheet.InputUserEntered, file.Modes[gradebook.SheetGradeBook])

	record, err := e.store.GetParentGradeBookByGoogleID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, e.main.ID, record.MainGradeBookID)
	assert.Equal(t, "Math 7", record.ClassroomName)
	assert.Equal(t, teacher, record.CreatedBy)
	assert.Contains(t, record.Link, id)
	assert.False(t, record.IsDeleted)

	root, err := e.store.GetRootFolder(ctx, teacher)
	require.NoError(t, err)
	inner, err := e.store.GetInnerFolder(ctx, root.ID, student)
	require.NoError(t, err)
	assert.Equal(t, inner.GoogleFileID, e.drive.File(id).Parent)
}

func TestSaveStudentUpdatesInPlace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.synth.SaveStudent(ctx, e.sess, e.main, e.student(t), mom)
	require.NoError(t, err)

	e.sheets.Put(mainID, gradebook.RangeStudents, studentGrid(10.0))
	updated := e.student(t)

	second, err := e.synth.SaveStudent(ctx, e.sess, e.main, updated, mom)
	require.NoError(t, err)

	assert.Equal(t, first.Value, second.Value)
	assert.Len(t, e.store.ParentGradeBooks, 1)
	assert.Equal(t, gradebook.ParentSheetRows(updated), e.sheets.Values(first.Value, gradebook.SheetGradeBook))
	assert.Contains(t, e.sheets.Calls, "ClearValues "+first.Value+" "+gradebook.SheetGradeBook)

	creates := 0
	for _, c := range e.sheets.Calls {
		if c == "Create  Math 7 - mom@mail.com - ann@school.org" {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestSaveStudentRecreatesTrashedSpreadsheet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.synth.SaveStudent(ctx, e.sess, e.main, e.student(t), mom)
	require.NoError(t, err)
	e.drive.Trash(first.Value)

	second, err := e.synth.SaveStudent(ctx, e.sess, e.main, e.student(t), mom)
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
	require.Len(t, e.store.ParentGradeBooks, 1)
	_, err = e.store.GetParentGradeBookByGoogleID(ctx, first.Value)
	assert.ErrorIs(t, err, perrors.ErrNotFound)
}

func TestSaveStudentRequiresLinkedParent(t *testing.T) {
	e := newEnv(t)

	_, err := e.synth.SaveStudent(context.Background(), e.sess, e.main, e.student(t), "stranger@mail.com")
	assert.ErrorIs(t, err, perrors.ErrParentNotLinked)
	assert.Empty(t, e.store.ParentGradeBooks)
}

func TestSyncUnknownStudent(t *testing.T) {
	e := newEnv(t)

	_, err := e.synth.Sync(context.Background(), e.sess, e.main, "ghost@school.org", mom)
	assert.ErrorIs(t, err, perrors.ErrStudentNotFound)
}

func TestSaveStudentAdoptsRefreshedCredential(t *testing.T) {
	e := newEnv(t)
	e.sheets.Expired["a"] = true
	e.drive.Expired["a"] = true

	res, err := e.synth.SaveStudent(context.Background(), e.sess, e.main, e.student(t), mom)
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Credential.AccessToken)
	assert.Equal(t, "fresh", e.store.Token(teacher, model.TokenAccess))
}

func TestShareLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	shared, err := e.sharer.Share(ctx, e.sess, e.shareRequest())
	require.NoError(t, err)
	assert.Equal(t, model.SharedStatusShared, shared.Value.SharedStatus)
	assert.Equal(t, teacher, shared.Value.TeacherAspID)

	pgb, err := e.store.GetParentGradeBookByID(ctx, shared.Value.ParentGradeBookID)
	require.NoError(t, err)
	assert.Equal(t, []drive.Permission{{Email: mom, Type: "user", Role: "reader"}}, e.drive.File(pgb.GoogleUniqueID).Permissions)

	parent, err := e.store.GetParentByEmail(ctx, mom)
	require.NoError(t, err)
	assert.Equal(t, avatar, parent.Avatar)

	links, err := e.store.ListParentStudents(ctx, mom)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, student, links[0].StudentEmail)

	_, err = e.sharer.Share(ctx, e.sess, e.shareRequest())
	assert.ErrorIs(t, err, perrors.ErrAlreadyShared)
	assert.Len(t, e.drive.File(pgb.GoogleUniqueID).Permissions, 1)

	unshare := model.UnshareRequest{ParentGradeBookID: pgb.GoogleUniqueID, ParentEmail: mom}
	_, err = e.sharer.Unshare(ctx, e.sess, unshare)
	require.NoError(t, err)
	assert.Equal(t, model.SharedStatusNotShared, e.store.Shares[shared.Value.ID].SharedStatus)
	assert.Empty(t, e.drive.File(pgb.GoogleUniqueID).Permissions)

	revoked := e.drive.Count("DeletePermission")
	_, err = e.sharer.Unshare(ctx, e.sess, unshare)
	assert.ErrorIs(t, err, perrors.ErrNothingToUnshare)
	assert.Equal(t, revoked, e.drive.Count("DeletePermission"), "second unshare leaves Drive alone")

	again, err := e.sharer.Share(ctx, e.sess, e.shareRequest())
	require.NoError(t, err)
	assert.Equal(t, shared.Value.ID, again.Value.ID, "share row is reused")
	assert.Equal(t, model.SharedStatusShared, e.store.Shares[shared.Value.ID].SharedStatus)
	assert.Len(t, e.store.Shares, 1)
	assert.Len(t, e.store.ParentStudents, 1)
	assert.Len(t, e.drive.File(pgb.GoogleUniqueID).Permissions, 1)
}

func TestUnshareNeverShared(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	saved, err := e.synth.SaveStudent(ctx, e.sess, e.main, e.student(t), mom)
	require.NoError(t, err)
	require.NoError(t, e.store.CreateParent(ctx, &model.Parent{Email: mom, CreatedBy: teacher}))

	_, err = e.sharer.Unshare(ctx, e.sess, model.UnshareRequest{ParentGradeBookID: saved.Value, ParentEmail: mom})
	assert.ErrorIs(t, err, perrors.ErrNothingToUnshare)
	assert.Zero(t, e.drive.Count("DeletePermission"))
	assert.Empty(t, e.store.Shares)
}

func TestRecreatedParentGradeBookKeepsShares(t *testing.T) {
	tests := []struct {
		name    string
		recover func(e *env) (string, error)
	}{
		{
			name: "sync",
			recover: func(e *env) (string, error) {
				res, err := e.synth.Sync(context.Background(), e.sess, e.main, student, mom)
				return res.Value, err
			},
		},
		{
			name: "share again",
			recover: func(e *env) (string, error) {
				res, err := e.sharer.Share(context.Background(), e.sess, e.shareRequest())
				if err != nil {
					return "", err
				}
				pgb, err := e.store.GetParentGradeBookByID(context.Background(), res.Value.ParentGradeBookID)
				if err != nil {
					return "", err
				}
				return pgb.GoogleUniqueID, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()

			shared, err := e.sharer.Share(ctx, e.sess, e.shareRequest())
			require.NoError(t, err)
			old, err := e.store.GetParentGradeBookByID(ctx, shared.Value.ParentGradeBookID)
			require.NoError(t, err)
			e.drive.Trash(old.GoogleUniqueID)

			newID, err := tt.recover(e)
			require.NoError(t, err)
			require.NotEqual(t, old.GoogleUniqueID, newID)

			assert.Equal(t, []drive.Permission{{Email: mom, Type: "user", Role: "reader"}}, e.drive.File(newID).Permissions)

			pgb, err := e.store.GetParentGradeBookByGoogleID(ctx, newID)
			require.NoError(t, err)
			require.Len(t, e.store.Shares, 1)
			row := e.store.Shares[shared.Value.ID]
			assert.Equal(t, pgb.ID, row.ParentGradeBookID)
			assert.Equal(t, model.SharedStatusShared, row.SharedStatus)

			listed, err := e.store.ListSharedParentGradeBooks(ctx)
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, newID, listed[0].ParentGradeBook.GoogleUniqueID)

			_, err = e.sharer.Share(ctx, e.sess, e.shareRequest())
			assert.ErrorIs(t, err, perrors.ErrAlreadyShared)
			assert.Len(t, e.drive.File(newID).Permissions, 1)
		})
	}
}

func TestShareResolvesClassroomRegistration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	other := &model.GradeBook{GoogleUniqueID: mainID, Name: "Math 7 GradeBook", ClassroomID: "class-2", CreatedBy: teacher}
	require.NoError(t, e.store.CreateGradeBook(ctx, other))

	req := e.shareRequest()
	req.ClassroomID = "class-2"
	shared, err := e.sharer.Share(ctx, e.sess, req)
	require.NoError(t, err)

	pgb, err := e.store.GetParentGradeBookByID(ctx, shared.Value.ParentGradeBookID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, pgb.MainGradeBookID)

	req.ClassroomID = "class-9"
	_, err = e.sharer.Share(ctx, e.sess, req)
	assert.ErrorIs(t, err, perrors.ErrGradeBookNotFound)
}

func TestUnshareByMainKeepsDrivePermission(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	shared, err := e.sharer.Share(ctx, e.sess, e.shareRequest())
	require.NoError(t, err)
	pgb, err := e.store.GetParentGradeBookByID(ctx, shared.Value.ParentGradeBookID)
	require.NoError(t, err)

	_, err = e.sharer.Unshare(ctx, e.sess, model.UnshareRequest{MainGradeBookID: mainID, ParentEmail: mom})
	require.NoError(t, err)

	assert.Empty(t, e.store.ParentGradeBooks)
	assert.Empty(t, e.store.Shares)
	assert.Len(t, e.drive.File(pgb.GoogleUniqueID).Permissions, 1)
	assert.Zero(t, e.drive.Count("DeletePermission"))

	_, err = e.sharer.Unshare(ctx, e.sess, model.UnshareRequest{MainGradeBookID: mainID, ParentEmail: mom})
	assert.ErrorIs(t, err, perrors.ErrParentGradeBookNotFound)
}

func TestShareErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sharer.Share(ctx, e.sess, model.ShareRequest{MainGradeBookID: "unknown", StudentEmail: student, ParentEmail: mom})
	assert.ErrorIs(t, err, perrors.ErrGradeBookNotFound)

	_, err = e.sharer.Share(ctx, e.sess, model.ShareRequest{MainGradeBookID: mainID, StudentEmail: "ghost@school.org", ParentEmail: mom})
	assert.ErrorIs(t, err, perrors.ErrStudentNotFound)

	_, err = e.sharer.Share(ctx, e.sess, model.ShareRequest{MainGradeBookID: mainID, StudentEmail: student, ParentEmail: "stranger@mail.com"})
	assert.ErrorIs(t, err, perrors.ErrParentNotLinked)

	_, err = e.sharer.Unshare(ctx, e.sess, model.UnshareRequest{ParentGradeBookID: "missing", ParentEmail: mom})
	assert.ErrorIs(t, err, perrors.ErrParentGradeBookNotFound)
}
