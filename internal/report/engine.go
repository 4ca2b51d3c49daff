package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/karac38/gdevapps-portal/internal/gradebook"
	"github.com/karac38/gdevapps-portal/internal/logger"
	"github.com/karac38/gdevapps-portal/internal/model"
	"github.com/karac38/gdevapps-portal/pkg/errors"

	"github.com/rs/zerolog"
)

// Engine computes student grade reports. It holds no state between calls.
type Engine struct {
	log zerolog.Logger
}

func NewEngine() *Engine {
	return &Engine{
		log: logger.Get(),
	}
}

// StudentReport builds the report for one student. The shape depends on the
// gradebook: categories yield one section per category, terms one per term,
// otherwise a single standard section. Gradebooks with both terms and
// categories are not supported yet.
func (e *Engine) StudentReport(student *model.GradebookStudent, settings *model.GradebookSettings) (*model.StudentReport, error) {
	if student == nil || settings == nil {
		return nil, errors.ValidationError{Field: "student", Message: "student and settings are required"}
	}

	hasCategories := anyCourseWork(student, func(cw model.GradebookCourseWork) string { return cw.Category })
	hasTerms := anyCourseWork(student, func(cw model.GradebookCourseWork) string { return cw.Term })

	log := e.log.With().
		Str("gradebook_id", student.GradebookID).
		Str("student", student.Email).
		Str("sort_by", string(settings.StudentReportSortBy)).
		Logger()

	if settings.StudentReportSortBy == model.SortByCategory && !hasCategories {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSortMode, errors.ValidationError{
			Field:   "student_report_sort_by",
			Value:   settings.StudentReportSortBy,
			Message: "a gradebook without categories can not be sorted by category",
		})
	}
	if settings.StudentReportSortBy == model.SortByTerm && !hasTerms {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSortMode, errors.ValidationError{
			Field:   "student_report_sort_by",
			Value:   settings.StudentReportSortBy,
			Message: "a gradebook without terms can not be sorted by term",
		})
	}

	report := &model.StudentReport{
		Student:          student,
		Settings:         settings,
		FinalGrade:       gradebook.RoundMode(settings.Rounding, settings.Decimal, student.FinalGrade),
		FinalGradeLetter: LetterFor(student.FinalGrade, settings.LetterGrades),
	}

	switch {
	case hasTerms && hasCategories:
		log.Warn().Msg("Term and category report requested")
		return nil, fmt.Errorf("term and category report: %w", errors.ErrNotImplemented)
	case hasTerms:
		report.Sections = e.termReport(student, settings)
	case hasCategories:
		report.Sections = e.categoryReport(student, settings)
	default:
		report.Sections = []model.ReportSection{e.standardReport(student, student.Submissions)}
	}

	log.Debug().Int("sections", len(report.Sections)).Msg("Student report computed")
	return report, nil
}

// standardReport accumulates totals over submissions. StudentMark and Percent
// reflect the last usable submission only.
func (e *Engine) standardReport(student *model.GradebookStudent, subs []model.GradebookStudentSubmission) model.ReportSection {
	section := model.ReportSection{Type: model.ReportTypeStandard}

	for _, sub := range subs {
		cw, _ := student.CourseWork(sub.CourseWorkID)
		g := ParseGrade(sub.Grade, cw.MaxPoints)

		switch g.Kind {
		case GradeExempt:
			section.StudentMark = model.MarkExempted
		case GradeScored:
			section.IsGraded = true
			if g.Usable() {
				section.TotalPoints += g.Total
				section.TotalMark += g.Score / g.Total
				section.StudentMark = formatNumber(g.Score / g.Total)
				section.Percent = formatNumber(sub.Percent * 100)
			}
		}
		section.Submissions = append(section.Submissions, reportSubmission(sub, cw))
	}

	return section
}

func (e *Engine) categoryReport(student *model.GradebookStudent, settings *model.GradebookSettings) []model.ReportSection {
	var sections []model.ReportSection

	for _, category := range distinct(student, func(cw model.GradebookCourseWork) string { return cw.Category }) {
		section := model.ReportSection{
			Type:        model.ReportTypeCategory,
			Category:    category,
			StudentMark: model.MarkNoGrade,
			Percent:     "-",
		}

		for _, sub := range submissionsWhere(student, func(cw model.GradebookCourseWork) bool { return cw.Category == category }) {
			cw, _ := student.CourseWork(sub.CourseWorkID)
			g := ParseGrade(sub.Grade, cw.MaxPoints)

			switch g.Kind {
			case GradeExempt:
				section.StudentMark = model.MarkExempted
			case GradeScored:
				section.IsGraded = true
				if g.Usable() {
					weight := gradebook.ParseFloat(cw.Weight)
					section.AverageStudentGrade += (g.Score * weight) / g.Total
					section.TotalWeight += weight
					section.StudentMark = formatNumber(g.Score / g.Total)
					section.Percent = formatNumber(sub.Percent * 100)
				}
			}
			section.Submissions = append(section.Submissions, reportSubmission(sub, cw))
		}

		if section.TotalWeight != 0 {
			section.AverageCatGrade = gradebook.Round(section.AverageStudentGrade/section.TotalWeight*100, settings.Decimal)
		}
		sortSubmissions(section.Submissions, settings.StudentReportSortBy)
		sections = append(sections, section)
	}

	return sections
}

// termReport produces one standard section per term.
func (e *Engine) termReport(student *model.GradebookStudent, settings *model.GradebookSettings) []model.ReportSection {
	var sections []model.ReportSection

	for _, term := range distinct(student, func(cw model.GradebookCourseWork) string { return cw.Term }) {
		subs := submissionsWhere(student, func(cw model.GradebookCourseWork) bool { return cw.Term == term })
		section := e.standardReport(student, subs)
		section.Type = model.ReportTypeTerm
		section.Term = term
		sortSubmissions(section.Submissions, settings.StudentReportSortBy)
		sections = append(sections, section)
	}

	return sections
}

func anyCourseWork(student *model.GradebookStudent, field func(model.GradebookCourseWork) string) bool {
	for _, cw := range student.CourseWorks {
		if strings.TrimSpace(field(cw)) != "" {
			return true
		}
	}
	return false
}

// distinct returns non-empty field values in order of first appearance.
func distinct(student *model.GradebookStudent, field func(model.GradebookCourseWork) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, cw := range student.CourseWorks {
		v := field(cw)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func submissionsWhere(student *model.GradebookStudent, keep func(model.GradebookCourseWork) bool) []model.GradebookStudentSubmission {
	ids := make(map[string]bool)
	for _, cw := range student.CourseWorks {
		if keep(cw) {
			ids[cw.IDInGradeBook] = true
		}
	}

	var out []model.GradebookStudentSubmission
	for _, sub := range student.Submissions {
		if ids[sub.CourseWorkID] {
			out = append(out, sub)
		}
	}
	return out
}

func reportSubmission(sub model.GradebookStudentSubmission, cw model.GradebookCourseWork) model.ReportSubmission {
	return model.ReportSubmission{
		CourseWorkID: sub.CourseWorkID,
		StudentID:    sub.StudentID,
		Title:        cw.Title,
		DueDate:      cw.DueDate,
		CreationTime: cw.CreationTime,
		MaxPoints:    cw.MaxPoints,
		Grade:        sub.Grade,
		Percent:      sub.Percent,
		Note:         sub.Note,
	}
}

func sortSubmissions(subs []model.ReportSubmission, by model.ReportSortBy) {
	switch by {
	case model.SortByDate:
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].CreationTime < subs[j].CreationTime })
	case model.SortByTitle:
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Title < subs[j].Title })
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
