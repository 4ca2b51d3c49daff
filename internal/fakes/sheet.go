package fakes

import (
	"github.com/karac38/gdevapps-portal/internal/gradebook"
)

// SheetBuilder assembles a raw GradeBook sheet the way the Sheets API returns
// it: ragged rows, trailing empty cells omitted.
type SheetBuilder struct {
	rows [][]interface{}
}

type StudentRow struct {
	Photo          string
	Name           string
	FinalFormatted string
	Final          interface{}
	Email          string
	Parents        string
	Comment        string
	// Grades and Percents are keyed by course work column.
	Grades   map[int]interface{}
	Percents map[int]interface{}
}

func NewSheetBuilder() *SheetBuilder {
	return &SheetBuilder{}
}

func (b *SheetBuilder) set(r, c int, v interface{}) {
	for len(b.rows) <= r {
		b.rows = append(b.rows, []interface{}{})
	}
	for len(b.rows[r]) <= c {
		b.rows[r] = append(b.rows[r], "")
	}
	b.rows[r][c] = v
}

// CourseWork writes a header column. due may be a serial number or "".
func (b *SheetBuilder) CourseWork(col int, title string, due interface{}, maxPoints, weight interface{}, category, term string) *SheetBuilder {
	l := gradebook.GradeBookLayout
	b.set(l.TitleRow, col, title)
	b.set(l.DueDateRow, col, due)
	b.set(l.MaxPointsRow, col, maxPoints)
	b.set(l.WeightRow, col, weight)
	b.set(l.CategoryRow, col, category)
	if term != "" {
		b.set(l.TermRow, col+1, term)
	}
	return b
}

func (b *SheetBuilder) Student(row int, s StudentRow) *SheetBuilder {
	l := gradebook.GradeBookLayout
	b.set(row, l.PhotoCol, s.Photo)
	b.set(row, l.NameCol, s.Name)
	b.set(row, l.FinalFormattedCol, s.FinalFormatted)
	b.set(row, l.FinalCol, s.Final)
	b.set(row, l.EmailCol, s.Email)
	b.set(row, l.ParentEmailsCol, s.Parents)
	b.set(row, l.CommentCol, s.Comment)
	for c, g := range s.Grades {
		b.set(row, c, g)
	}
	for c, p := range s.Percents {
		b.set(row, c+1, p)
	}
	return b
}

// Pad makes sure the sheet has at least n rows.
func (b *SheetBuilder) Pad(n int) *SheetBuilder {
	for len(b.rows) < n {
		b.rows = append(b.rows, []interface{}{})
	}
	return b
}

func (b *SheetBuilder) Rows() [][]interface{} {
	return b.rows
}

// SettingsRows returns a Settings!A1:B25 block with the given values by row.
func SettingsRows(values map[int]interface{}) [][]interface{} {
	rows := make([][]interface{}, gradebook.SettingsLayout.Rows)
	for i := range rows {
		rows[i] = []interface{}{"", ""}
	}
	for r, v := range values {
		rows[r][gradebook.SettingsLayout.ValueCol] = v
	}
	return rows
}

// SeedGradeBook stores a complete main gradebook in sheets: the four
// required sheets, class identity, the student grid and settings ranges.
func SeedGradeBook(sheets *Sheets, id, className, classID string, students [][]interface{}) {
	sheets.AddGradeBook(id, gradebook.RequiredSheets...)
	sheets.Put(id, gradebook.RangeCourseSettings, [][]interface{}{{className}, {classID}})
	sheets.Put(id, gradebook.RangeStudents, students)
	sheets.Put(id, gradebook.RangeSettings, SettingsRows(map[int]interface{}{
		gradebook.SettingsLayout.CourseName: className,
		gradebook.SettingsLayout.Decimal:    2.0,
		gradebook.SettingsLayout.Rounding:   "Round",
		gradebook.SettingsLayout.SortBy:     "Date",
	}))
	sheets.Put(id, gradebook.RangeAverageMedian, [][]interface{}{{81.234, "", "", "", 79.996}})
	sheets.Put(id, gradebook.RangeLetterGrades, [][]interface{}{
		{90.0, 100.0, "A"},
		{80.0, 89.99, "B"},
		{0.0, 79.99, "C"},
	})
	sheets.Put(id, gradebook.RangeStatistics, [][]interface{}{{"Average", 81.234}})
}
