package excel

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/karac38/gdevapps-portal/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	ReportSheet = "Report"

	defaultHeadingColor = "4A86E8"
	defaultSchoolColor  = "000000"
	defaultRowColor     = "FFFFFF"
	defaultAltRowColor  = "F3F3F3"
)

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// SubmissionHeader is the column header of every section table.
var SubmissionHeader = []interface{}{"Title", "Due Date", "Max Points", "Grade", "Percent"}

// ReportRenderer writes a student report as an xlsx workbook, styled with the
// gradebook's report colors.
type ReportRenderer struct{}

func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{}
}

type reportStyles struct {
	school, heading, label, first, second int
}

func (r *ReportRenderer) Render(report *model.StudentReport) ([]byte, error) {
	if report == nil || report.Student == nil {
		return nil, fmt.Errorf("render report: no student")
	}
	settings := model.GradebookSettings{}
	if report.Settings != nil {
		settings = *report.Settings
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, err
	}

	styles, err := newReportStyles(f, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	w := &sheetWriter{f: f}
	student := report.Student

	w.row(styles.school, settings.SchoolName)
	w.row(styles.label, "Course", courseTitle(settings))
	w.row(styles.label, "Teacher", settings.TeacherName)
	w.row(styles.label, "Student", student.Name)
	w.row(styles.label, "Email", student.Email)
	w.row(styles.label, "Final Grade", report.FinalGrade, report.FinalGradeLetter)
	if settings.ShowCourseAverage {
		w.row(styles.label, "Course Average", settings.CourseAverage)
	}
	if settings.ShowCourseMedian {
		w.row(styles.label, "Course Median", settings.CourseMedian)
	}

	for _, section := range report.Sections {
		w.skip()
		w.row(styles.heading, sectionTitle(section), section.StudentMark, section.Percent, sectionAverage(section))
		w.row(styles.label, SubmissionHeader...)
		for i, sub := range section.Submissions {
			style := styles.first
			if i%2 == 1 {
				style = styles.second
			}
			w.row(style, sub.Title, sub.DueDate, sub.MaxPoints, sub.Grade, sub.Percent)
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("failed to write report: %w", w.err)
	}

	if err := f.SetColWidth(ReportSheet, "A", "A", 36); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(ReportSheet, "B", "E", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func newReportStyles(f *excelize.File, s model.GradebookSettings) (reportStyles, error) {
	var out reportStyles
	var err error

	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	if out.school, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: color(s.ReportSchoolNameColor, defaultSchoolColor)},
	}); err != nil {
		return out, err
	}
	if out.heading, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: fill(color(s.ReportHeadingColor, defaultHeadingColor)),
	}); err != nil {
		return out, err
	}
	if out.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return out, err
	}
	if out.first, err = f.NewStyle(&excelize.Style{
		Fill: fill(color(s.ReportAlternatingColorFirst, defaultRowColor)),
	}); err != nil {
		return out, err
	}
	out.second, err = f.NewStyle(&excelize.Style{
		Fill: fill(color(s.ReportAlternatingColorSecond, defaultAltRowColor)),
	})
	return out, err
}

// color returns the sheet color without its leading '#', or def when the
// setting is not a six digit hex color.
func color(setting, def string) string {
	c := strings.TrimPrefix(strings.TrimSpace(setting), "#")
	if !hexColor.MatchString(c) {
		return def
	}
	return strings.ToUpper(c)
}

func courseTitle(s model.GradebookSettings) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.CourseCode, s.CourseName, s.CoursePeriod} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

func sectionTitle(s model.ReportSection) string {
	switch s.Type {
	case model.ReportTypeCategory:
		return s.Category
	case model.ReportTypeTerm:
		return "Term " + s.Term
	default:
		return "Assignments"
	}
}

func sectionAverage(s model.ReportSection) interface{} {
	if s.Type == model.ReportTypeCategory {
		return s.AverageCatGrade
	}
	return ""
}

// sheetWriter appends styled rows and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	r   int
	err error
}

func (w *sheetWriter) skip() { w.r++ }

func (w *sheetWriter) row(style int, values ...interface{}) {
	if w.err != nil {
		return
	}
	w.r++

	start, err := excelize.CoordinatesToCellName(1, w.r)
	if err != nil {
		w.err = err
		return
	}
	end, err := excelize.CoordinatesToCellName(len(values), w.r)
	if err != nil {
		w.err = err
		return
	}

	if err := w.f.SetSheetRow(ReportSheet, start, &values); err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(ReportSheet, start, end, style)
}
