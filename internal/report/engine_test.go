package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/internal/report"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

func TestParseGrade(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxPoints string
		want      report.Grade
		usable    bool
	}{
		{name: "bracket", text: "[7/10]", maxPoints: "20", want: report.Grade{Kind: report.GradeScored, Score: 7, Total: 10}, usable: true},
		{name: "bracket with spaces", text: " [ 7.5 / 10 ] ", want: report.Grade{Kind: report.GradeScored, Score: 7.5, Total: 10}, usable: true},
		{name: "plain number", text: "8", maxPoints: "10", want: report.Grade{Kind: report.GradeScored, Score: 8, Total: 10}, usable: true},
		{name: "empty", text: "", maxPoints: "10", want: report.Grade{Kind: report.GradeUngraded}},
		{name: "no mark", text: "No Mark", maxPoints: "10", want: report.Grade{Kind: report.GradeUngraded}},
		{name: "exempt upper", text: "E", want: report.Grade{Kind: report.GradeExempt}},
		{name: "exempt lower", text: "e", want: report.Grade{Kind: report.GradeExempt}},
		{name: "broken bracket", text: "[7/", maxPoints: "10", want: report.Grade{Kind: report.GradeScored}},
		{name: "text grade", text: "great", maxPoints: "10", want: report.Grade{Kind: report.GradeScored, Total: 10}, usable: true},
		{name: "zero max points", text: "5", maxPoints: "0", want: report.Grade{Kind: report.GradeScored, Score: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := report.ParseGrade(tt.text, tt.maxPoints)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.usable, got.Usable())
		})
	}
}

func TestLetterFor(t *testing.T) {
	bands := []model.LetterGrade{
		{From: 90, To: 100, Letter: "A"},
		{From: 80, To: 90, Letter: "B"},
		{From: 0, To: 79.99, Letter: "C"},
	}
	assert.Equal(t, "A", report.LetterFor(95, bands))
	assert.Equal(t, "A", report.LetterFor(90, bands), "first matching band wins")
	assert.Equal(t, "B", report.LetterFor(85, bands))
	assert.Equal(t, "C", report.LetterFor(0, bands))
	assert.Equal(t, "", report.LetterFor(79.995, bands))
	assert.Equal(t, "", report.LetterFor(50, nil))
}

func courseWork(id, title, maxPoints, weight, category, term, created string) model.GradebookCourseWork {
	return model.GradebookCourseWork{
		IDInGradeBook: id, Title: title, MaxPoints: maxPoints, Weight: weight,
		Category: category, Term: term, CreationTime: created,
	}
}

func submission(id, grade string, percent float64) model.GradebookStudentSubmission {
	return model.GradebookStudentSubmission{StudentID: "ann@school.org", CourseWorkID: id, Grade: grade, Percent: percent}
}

func settings(sortBy model.ReportSortBy) *model.GradebookSettings {
	return &model.GradebookSettings{
		Decimal:             2,
		Rounding:            "Round up",
		StudentReportSortBy: sortBy,
		LetterGrades: []model.LetterGrade{
			{From: 90, To: 100, Letter: "A"},
			{From: 80, To: 89.99, Letter: "B"},
		},
	}
}

func TestStandardReport(t *testing.T) {
	student := &model.GradebookStudent{
		Email:      "ann@school.org",
		FinalGrade: 85.123,
		CourseWorks: []model.GradebookCourseWork{
			courseWork("13", "Quiz", "10", "", "", "", ""),
			courseWork("15", "Test", "20", "", "", "", ""),
			courseWork("17", "Lab", "0", "", "", "", ""),
			courseWork("19", "Extra", "5", "", "", "", ""),
		},
		Submissions: []model.GradebookStudentSubmission{
			submission("13", "8", 0.8),
			submission("15", "[15/20]", 0.75),
			submission("17", "3", 0.3),
			submission("19", "", 0),
		},
	}

	got, err := report.NewEngine().StudentReport(student, settings(model.SortByNone))
	require.NoError(t, err)

	assert.Equal(t, 85.13, got.FinalGrade)
	assert.Equal(t, "B", got.FinalGradeLetter)
	require.Len(t, got.Sections, 1)

	s := got.Sections[0]
	assert.Equal(t, model.ReportTypeStandard, s.Type)
	assert.True(t, s.IsGraded)
	assert.Equal(t, 30.0, s.TotalPoints, "zero denominators are skipped")
	assert.InDelta(t, 0.8+0.75, s.TotalMark, 1e-9)
	assert.Len(t, s.Submissions, 4)

	// Last-submission-wins: the display fields come from the last usable
	// submission, not an aggregate.
	assert.Equal(t, "0.75", s.StudentMark)
	assert.Equal(t, "75", s.Percent)
}

func TestStandardReportExempt(t *testing.T) {
	student := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{courseWork("13", "Quiz", "10", "", "", "", "")},
		Submissions: []model.GradebookStudentSubmission{submission("13", "e", 0)},
	}

	got, err := report.NewEngine().StudentReport(student, settings(model.SortByNone))
	require.NoError(t, err)

	s := got.Sections[0]
	assert.Equal(t, model.MarkExempted, s.StudentMark)
	assert.False(t, s.IsGraded)
	assert.Zero(t, s.TotalPoints)
}

func TestCategoryReport(t *testing.T) {
	student := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{
			courseWork("13", "B quiz", "10", "2", "Quizzes", "", "2024-01-02 00:00:00"),
			courseWork("15", "A quiz", "10", "3", "Quizzes", "", "2024-01-01 00:00:00"),
			courseWork("17", "Essay", "20", "1", "Writing", "", ""),
			courseWork("19", "Project", "20", "1", "Projects", "", ""),
		},
		Submissions: []model.GradebookStudentSubmission{
			submission("13", "8", 0.8),
			submission("15", "[9/10]", 0.9),
			submission("17", "", 0),
			submission("19", "E", 0),
		},
	}

	got, err := report.NewEngine().StudentReport(student, settings(model.SortByCategory))
	require.NoError(t, err)
	require.Len(t, got.Sections, 3)

	quizzes := got.Sections[0]
	assert.Equal(t, model.ReportTypeCategory, quizzes.Type)
	assert.Equal(t, "Quizzes", quizzes.Category)
	assert.InDelta(t, 4.3, quizzes.AverageStudentGrade, 1e-9)
	assert.Equal(t, 5.0, quizzes.TotalWeight)
	assert.Equal(t, 86.0, quizzes.AverageCatGrade)
	assert.Equal(t, "0.9", quizzes.StudentMark)
	assert.Equal(t, "90", quizzes.Percent)
	assert.Len(t, quizzes.Submissions, 2)

	writing := got.Sections[1]
	assert.Equal(t, "Writing", writing.Category)
	assert.Equal(t, model.MarkNoGrade, writing.StudentMark)
	assert.Equal(t, "-", writing.Percent)
	assert.Zero(t, writing.TotalWeight)
	assert.Zero(t, writing.AverageCatGrade, "no weighted entries reports zero")

	projects := got.Sections[2]
	assert.Equal(t, model.MarkExempted, projects.StudentMark)
}

func TestCategoryReportSortsSubmissions(t *testing.T) {
	student := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{
			courseWork("13", "B quiz", "10", "1", "Quizzes", "", "2024-01-02 00:00:00"),
			courseWork("15", "A quiz", "10", "1", "Quizzes", "", "2024-01-01 00:00:00"),
			courseWork("17", "C quiz", "10", "1", "Quizzes", "", "2024-01-03 00:00:00"),
		},
		Submissions: []model.GradebookStudentSubmission{
			submission("13", "1", 0), submission("15", "2", 0), submission("17", "3", 0),
		},
	}

	byTitle, err := report.NewEngine().StudentReport(student, settings(model.SortByTitle))
	require.NoError(t, err)
	assert.Equal(t, []string{"A quiz", "B quiz", "C quiz"}, titles(byTitle.Sections[0].Submissions))

	byDate, err := report.NewEngine().StudentReport(student, settings(model.SortByDate))
	require.NoError(t, err)
	assert.Equal(t, []string{"15", "13", "17"}, ids(byDate.Sections[0].Submissions))
}

func TestTermReport(t *testing.T) {
	student := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{
			courseWork("13", "Quiz", "10", "", "", "T1", ""),
			courseWork("15", "Test", "20", "", "", "T2", ""),
			courseWork("17", "Lab", "10", "", "", "T1", ""),
		},
		Submissions: []model.GradebookStudentSubmission{
			submission("13", "8", 0.8), submission("15", "10", 0.5), submission("17", "6", 0.6),
		},
	}

	got, err := report.NewEngine().StudentReport(student, settings(model.SortByTerm))
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)

	assert.Equal(t, model.ReportTypeTerm, got.Sections[0].Type)
	assert.Equal(t, "T1", got.Sections[0].Term)
	assert.Equal(t, 20.0, got.Sections[0].TotalPoints)
	assert.InDelta(t, 1.4, got.Sections[0].TotalMark, 1e-9)
	assert.Equal(t, "T2", got.Sections[1].Term)
	assert.Equal(t, 20.0, got.Sections[1].TotalPoints)
}

func TestReportValidation(t *testing.T) {
	plain := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{courseWork("13", "Quiz", "10", "", "", "", "")},
	}

	_, err := report.NewEngine().StudentReport(plain, settings(model.SortByCategory))
	assert.True(t, errors.Is(err, perrors.ErrInvalidSortMode))
	var verr perrors.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = report.NewEngine().StudentReport(plain, settings(model.SortByTerm))
	assert.True(t, errors.Is(err, perrors.ErrInvalidSortMode))

	_, err = report.NewEngine().StudentReport(nil, settings(model.SortByNone))
	assert.Error(t, err)
}

func TestTermAndCategoryReportIsNotImplemented(t *testing.T) {
	student := &model.GradebookStudent{
		CourseWorks: []model.GradebookCourseWork{courseWork("13", "Quiz", "10", "1", "Quizzes", "T1", "")},
	}
	_, err := report.NewEngine().StudentReport(student, settings(model.SortByCategory))
	assert.True(t, errors.Is(err, perrors.ErrNotImplemented))
}

func titles(subs []model.ReportSubmission) []string {
	var out []string
	for _, s := range subs {
		out = append(out, s.Title)
	}
	return out
}

func ids(subs []model.ReportSubmission) []string {
	var out []string
	for _, s := range subs {
		out = append(out, s.CourseWorkID)
	}
	return out
}
