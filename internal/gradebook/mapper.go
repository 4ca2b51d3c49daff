package gradebook

import (
	"strconv"
	"strings"
	"time"

	"github.com/karac38/gdevapps-portal/internal/model"
)

// CourseInfo is the class identity stored in the Settings sheet.
type CourseInfo struct {
	ClassName string
	ClassID   string
}

// Mapper turns a normalized GradeBook grid into domain entities.
type Mapper struct {
	layout Layout
	now    func() time.Time
}

func NewMapper() *Mapper {
	return &Mapper{
		layout: GradeBookLayout,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for CreationTime defaults.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	m.now = now
	return m
}

func (m *Mapper) Layout() Layout { return m.layout }

// NormalizeStudents normalizes a raw GradeBook sheet with the mapper's bounds.
func (m *Mapper) NormalizeStudents(rows [][]interface{}) (*Grid, error) {
	return Normalize(rows, m.layout.MaxRows, m.layout.MaxCols)
}

// ParseCourseInfo reads class name and id from RangeCourseSettings.
// Missing values yield empty strings.
func ParseCourseInfo(rows [][]interface{}) CourseInfo {
	l := CourseInfoLayout
	g, err := Normalize(rows, l.Rows, l.Cols)
	if err != nil {
		return CourseInfo{}
	}
	return CourseInfo{
		ClassName: g.Cell(l.ClassNameRow, l.ValueCol),
		ClassID:   g.Cell(l.ClassIDRow, l.ValueCol),
	}
}

// CourseWorks reads the header block. Columns with an empty title are skipped.
func (m *Mapper) CourseWorks(g *Grid, classID string) []model.GradebookCourseWork {
	l := m.layout
	var works []model.GradebookCourseWork

	for c := l.CourseWorkStartCol; c < g.MaxCols(); c += l.CourseWorkStep {
		title := g.Cell(l.TitleRow, c)
		if title == "" {
			continue
		}

		dueDate := g.Cell(l.DueDateRow, c)
		var creation string
		if dueDate == "" {
			creation = m.now().UTC().Format(DateLayout)
		} else {
			dueDate = SerialText(dueDate)
			creation = dueDate
		}

		works = append(works, model.GradebookCourseWork{
			Title:         title,
			DueDate:       dueDate,
			CreationTime:  creation,
			MaxPoints:     g.Cell(l.MaxPointsRow, c),
			Weight:        g.Cell(l.WeightRow, c),
			Category:      g.Cell(l.CategoryRow, c),
			Term:          g.Cell(l.TermRow, c+1),
			ClassID:       classID,
			IDInGradeBook: strconv.Itoa(c),
		})
	}

	return works
}

// Students reads every student row. Rows with an empty name are filler and
// are skipped. withPercent also reads the percent column next to each grade.
func (m *Mapper) Students(g *Grid, gradebookID string, info CourseInfo, withPercent bool) []model.GradebookStudent {
	works := m.CourseWorks(g, info.ClassID)

	var students []model.GradebookStudent
	for r := m.layout.StudentStartRow; r < g.DataRows(); r++ {
		if s, ok := m.studentAt(g, r, gradebookID, info, works, withPercent); ok {
			students = append(students, s)
		}
	}
	return students
}

// Student returns the row whose email matches exactly, with percents.
func (m *Mapper) Student(g *Grid, gradebookID string, info CourseInfo, email string) (model.GradebookStudent, bool) {
	l := m.layout
	works := m.CourseWorks(g, info.ClassID)

	for r := l.StudentStartRow; r < g.DataRows(); r++ {
		if g.Cell(r, l.NameCol) == "" || g.Cell(r, l.EmailCol) != email {
			continue
		}
		return m.studentAt(g, r, gradebookID, info, works, true)
	}
	return model.GradebookStudent{}, false
}

func (m *Mapper) studentAt(
	g *Grid,
	r int,
	gradebookID string,
	info CourseInfo,
	works []model.GradebookCourseWork,
	withPercent bool,
) (model.GradebookStudent, bool) {
	l := m.layout

	name := g.Cell(r, l.NameCol)
	if name == "" {
		return model.GradebookStudent{}, false
	}
	email := g.Cell(r, l.EmailCol)

	var submissions []model.GradebookStudentSubmission
	for c := l.CourseWorkStartCol; c < g.RowLen(r); c += l.CourseWorkStep {
		sub := model.GradebookStudentSubmission{
			StudentID:    email,
			StudentName:  name,
			ClassID:      info.ClassID,
			CourseWorkID: strconv.Itoa(c),
			Grade:        g.Cell(r, c),
		}
		if withPercent {
			sub.Percent = ParseFloat(g.Cell(r, c+1))
		}
		submissions = append(submissions, sub)
	}

	return model.GradebookStudent{
		GradebookID:         gradebookID,
		Email:               email,
		Name:                name,
		Photo:               g.Cell(r, l.PhotoCol),
		Comment:             g.Cell(r, l.CommentCol),
		FinalGrade:          ParseFloat(g.Cell(r, l.FinalCol)),
		FinalGradeFormatted: g.Cell(r, l.FinalFormattedCol),
		ClassID:             info.ClassID,
		ClassName:           info.ClassName,
		Parents:             splitParents(g.Cell(r, l.ParentEmailsCol), l.ParentEmailSplitter),
		CourseWorks:         works,
		Submissions:         submissions,
	}, true
}

func splitParents(text, sep string) []model.GradebookParent {
	var parents []model.GradebookParent
	for _, p := range strings.Split(text, sep) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parents = append(parents, model.GradebookParent{Email: p})
	}
	return parents
}
