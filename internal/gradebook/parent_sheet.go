package gradebook

import (
	"strings"
	"time"

	"github.com/karac38/gdevapps-portal/internal/model"
)

// ParentSheetRows renders the GradeBook sheet of a parent gradebook for one
// student. Every course work row repeats the student's final grade.
func ParentSheetRows(student *model.GradebookStudent) [][]interface{} {
	w := ParentSheetLayout.Width
	rows := make([][]interface{}, 0, 2+len(student.CourseWorks))

	rows = append(rows, []interface{}{
		"Student name", student.Name, "Max points", "Weight", "Category", "Term",
		"Date", "Grade", "Percent", "Final Grade", "Final Grade Formatted", "ClassroomId", "Id",
	})

	email := make([]interface{}, w)
	for i := range email {
		email[i] = ""
	}
	email[0] = "Student email"
	email[1] = student.Email
	rows = append(rows, email)

	for _, cw := range student.CourseWorks {
		var grade interface{} = ""
		var percent interface{} = ""
		if sub, ok := student.Submission(cw.IDInGradeBook); ok {
			grade = sub.Grade
			percent = sub.Percent
		}
		rows = append(rows, []interface{}{
			"Title",
			cw.Title,
			cw.MaxPoints,
			cw.Weight,
			cw.Category,
			cw.Term,
			cw.DueDate,
			grade,
			percent,
			student.FinalGrade,
			student.FinalGradeFormatted,
			cw.IDInClassroom,
			cw.IDInGradeBook,
		})
	}

	return rows
}

// ParseParentSheet reads a student back from a parent gradebook's GradeBook
// sheet. Class name and id are not stored in the sheet and come from info.
func ParseParentSheet(rows [][]interface{}, gradebookID string, info CourseInfo) model.GradebookStudent {
	l := ParentSheetLayout
	student := model.GradebookStudent{
		GradebookID: gradebookID,
		ClassName:   info.ClassName,
		ClassID:     info.ClassID,
	}

	cell := func(row []interface{}, c int) string {
		if c >= len(row) {
			return ""
		}
		return Stringify(row[c])
	}

	for i, row := range rows {
		switch {
		case i == l.NameRow:
			student.Name = cell(row, l.ValueCol)
		case i == l.EmailRow:
			student.Email = cell(row, l.ValueCol)
		case len(row) > 2:
			cw := model.GradebookCourseWork{
				Title:         cell(row, l.TitleCol),
				MaxPoints:     cell(row, l.MaxPointsCol),
				Weight:        cell(row, l.WeightCol),
				Category:      cell(row, l.CategoryCol),
				Term:          cell(row, l.TermCol),
				DueDate:       sheetDate(cell(row, l.DateCol)),
				ClassID:       info.ClassID,
				IDInClassroom: cell(row, l.ClassroomIDCol),
				IDInGradeBook: cell(row, l.IDCol),
			}
			cw.CreationTime = cw.DueDate

			grade := cell(row, l.GradeCol)
			if grade == "" {
				grade = model.MarkNoMark
			}

			student.CourseWorks = append(student.CourseWorks, cw)
			student.Submissions = append(student.Submissions, model.GradebookStudentSubmission{
				StudentID:    student.Email,
				StudentName:  student.Name,
				ClassID:      info.ClassID,
				CourseWorkID: cw.IDInGradeBook,
				Grade:        grade,
				Percent:      ParseFloat(cell(row, l.PercentCol)),
			})
			student.FinalGrade = ParseFloat(cell(row, l.FinalCol))
			student.FinalGradeFormatted = cell(row, l.FinalFormatCol)
		}
	}

	return student
}

// sheetDate accepts a serial date or text already in DateLayout.
func sheetDate(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if _, err := time.Parse(DateLayout, text); err == nil {
		return text
	}
	return SerialText(text)
}
