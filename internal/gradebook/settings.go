package gradebook

import (
	"github.com/karac38/gdevapps-portal/internal/model"
)

// ParseSettings builds GradebookSettings from the three Settings/Statistics
// ranges. Any missing range or cell leaves the corresponding defaults.
func ParseSettings(settings, averageMedian, letterGrades [][]interface{}) model.GradebookSettings {
	var out model.GradebookSettings

	l := SettingsLayout
	if g, err := Normalize(settings, l.Rows, l.Cols); err == nil && g.DataRows() > 0 {
		v := func(row int) string { return g.Cell(row, l.ValueCol) }

		out.CourseCode = v(l.CourseCode)
		out.CourseName = v(l.CourseName)
		out.CoursePeriod = v(l.CoursePeriod)
		out.TeacherName = v(l.TeacherName)
		out.SchoolName = v(l.SchoolName)
		out.SchoolPhone = v(l.SchoolPhone)
		out.Decimal = ParseInt(v(l.Decimal))
		out.Rounding = v(l.Rounding)
		out.ShowCourseAverage = ParseYes(v(l.ShowAverage))
		out.ShowCourseMedian = ParseYes(v(l.ShowMedian))
		out.SendEmailsAsNoReply = ParseYes(v(l.NoReply))
		out.StudentReportSortBy = model.ReportSortBy(v(l.SortBy))
		out.ReportSchoolNameColor = v(l.SchoolNameColor)
		out.ReportHeadingColor = v(l.HeadingColor)
		out.ReportAlternatingColorFirst = v(l.AlternatingFirst)
		out.ReportAlternatingColorSecond = v(l.AlternatingSecond)
		out.Terms = ParseInt(v(l.Terms))
	}

	am := AverageMedianLayout
	if g, err := Normalize(averageMedian, am.Rows, am.Cols); err == nil && g.DataRows() > 0 {
		out.CourseAverage = Round(ParseFloat(g.Cell(am.Row, am.AverageCol)), out.Decimal)
		out.CourseMedian = Round(ParseFloat(g.Cell(am.Row, am.MedianCol)), out.Decimal)
	}

	out.LetterGrades = ParseLetterGrades(letterGrades)
	return out
}

// ParseLetterGrades reads (From, To, Letter) triples, one band per returned row.
func ParseLetterGrades(rows [][]interface{}) []model.LetterGrade {
	l := LetterGradesLayout
	g, err := Normalize(rows, l.Rows, l.Cols)
	if err != nil || g.DataRows() == 0 {
		return nil
	}

	bands := make([]model.LetterGrade, 0, g.DataRows())
	for r := 0; r < g.DataRows(); r++ {
		bands = append(bands, model.LetterGrade{
			From:   ParseFloat(g.Cell(r, l.FromCol)),
			To:     ParseFloat(g.Cell(r, l.ToCol)),
			Letter: g.Cell(r, l.Letter),
		})
	}
	return bands
}
